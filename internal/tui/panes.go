// internal/tui/panes.go
//
// The insights and campaign panes. Both are pure renderings of store
// state: the insights pane re-aggregates the latest intake on every view,
// and the campaign pane gates the team row on the self completion signal.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/lodestar/internal/campaign"
	"github.com/kingrea/lodestar/internal/scoring"
)

var (
	paneTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	primaryStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFB454"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	lockedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

// insightMetrics aggregates the latest intake submission against the
// taxonomy. An empty slice of records is valid input: every trait comes
// back in the insufficient-data state.
func (a *App) insightMetrics() []scoring.TraitMetric {
	var records []scoring.RatingRecord
	if payload, ok := a.records.IntakeLatest(); ok {
		if record, ok := scoring.RecordFromIntake(payload); ok {
			records = append(records, record)
		}
	}
	return scoring.Aggregate(a.taxonomy.Traits, records)
}

func (a *App) renderInsightsPane(width int) string {
	metrics := a.insightMetrics()
	findings := scoring.Classify(metrics)
	primary, hasPrimary := scoring.Primary(findings)

	lines := []string{paneTitleStyle.Render("Insights")}
	for _, m := range metrics {
		if m.Insufficient() {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("%-14s insufficient data", m.Trait)))
			continue
		}
		lines = append(lines, fmt.Sprintf(
			"%-14s effort %5.1f · efficacy %5.1f · score %5.1f",
			m.Trait, m.Effort, m.Efficacy, m.Score,
		))
	}

	lines = append(lines, "", paneTitleStyle.Render(fmt.Sprintf("Gap Findings (%d)", len(findings))))
	if len(findings) == 0 {
		lines = append(lines, mutedStyle.Render("No anomalous traits flagged."))
	}
	for _, f := range findings {
		row := fmt.Sprintf("%-14s Δ %5.1f · %s", f.Trait, f.Delta, f.Directionality)
		if hasPrimary && f.Trait == primary.Trait {
			row = primaryStyle.Render("★ " + row)
			lines = append(lines, row)
			lines = append(lines, mutedStyle.Render("  "+scoring.Insight(f, a.taxonomy.Insights)))
			continue
		}
		lines = append(lines, "  "+row)
	}

	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}

func (a *App) renderCampaignPane(width int) string {
	lines := []string{paneTitleStyle.Render("Campaign Bundle")}

	authored := a.records.CampaignAuthored()
	summary, hasBundle := a.records.BundleSummary()
	if !hasBundle {
		if len(authored) == 0 {
			lines = append(lines,
				mutedStyle.Render("No authored trait list on record."),
				mutedStyle.Render("Press a to adopt the default taxonomy, then g to generate."),
			)
		} else {
			lines = append(lines,
				fmt.Sprintf("Authored traits: %d (%d statements)", len(authored), authored.FlatCount()),
				mutedStyle.Render(fmt.Sprintf("Links will be served from %s.", a.config.LinkOrigin())),
				mutedStyle.Render("Press g to generate the instrument bundle."),
			)
		}
		return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
	}

	lines = append(lines,
		fmt.Sprintf("Bundle %s · created %s", summary.BundleID, summary.CreatedAt.Format("2006-01-02 15:04")),
		"",
		"Self assessment",
		fmt.Sprintf("  link     %s", summary.SelfLink),
		fmt.Sprintf("  password %s", summary.SelfPassword),
		"",
		"Team assessment",
	)
	if campaign.TeamUnlocked(a.records, summary) {
		lines = append(lines,
			fmt.Sprintf("  link     %s", summary.TeamLink),
			fmt.Sprintf("  password %s", summary.TeamPassword),
		)
	} else {
		lines = append(lines, lockedStyle.Render("  locked until the self assessment is completed"))
	}

	if cred, ok := a.records.DashboardCredential(); ok {
		lines = append(lines,
			"",
			"Results dashboard",
			fmt.Sprintf("  login    %s", cred.Email),
			fmt.Sprintf("  password %s", cred.Password),
		)
	}

	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}
