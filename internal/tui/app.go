// internal/tui/app.go
//
// This is the main TUI for Lodestar. It uses bubbletea, which follows
// The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen
//
// Everything shown here is derived from the record store on each refresh;
// the TUI never computes journey state itself.

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/lodestar/internal/campaign"
	"github.com/kingrea/lodestar/internal/config"
	"github.com/kingrea/lodestar/internal/docstore"
	"github.com/kingrea/lodestar/internal/logbook"
	"github.com/kingrea/lodestar/internal/phase"
	"github.com/kingrea/lodestar/internal/report"
	"github.com/kingrea/lodestar/internal/scoring"
	"github.com/kingrea/lodestar/internal/store"
	"github.com/kingrea/lodestar/internal/taxonomy"
)

// appState represents which "screen" we're on
type appState int

const (
	stateMainMenu appState = iota // journey board with the main menu
	stateInsights                 // trait metrics and gap findings
	stateCampaign                 // instrument bundle links and passwords
)

const railRefreshInterval = 3 * time.Second

// BundleGenerator is the slice of the campaign generator the TUI needs.
type BundleGenerator interface {
	Generate(ctx context.Context) (store.BundleSummary, error)
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithGenerator overrides the bundle generator used by the campaign pane.
func WithGenerator(gen BundleGenerator) AppOption {
	return func(a *App) {
		if gen != nil {
			a.generator = gen
		}
	}
}

// WithRoute sets the navigation route fed to the phase deriver. The
// default is the empty route, which resolves to journey progression.
func WithRoute(route phase.Route) AppOption {
	return func(a *App) { a.route = route }
}

type derivationMsg struct {
	derivation phase.Derivation
}

type bundleResultMsg struct {
	summary store.BundleSummary
	err     error
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state     appState
	config    *config.Config
	records   *store.Records
	deriver   *phase.Deriver
	taxonomy  taxonomy.File
	logbook   *logbook.Logbook
	generator BundleGenerator
	exporter  *report.Exporter
	route     phase.Route

	mainMenu   list.Model
	derivation phase.Derivation
	statusMsg  string

	width  int
	height int
}

// menuItem implements list.Item interface for our menu items
type menuItem struct {
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// NewApp creates a new App instance
func NewApp(projectDir string, opts ...AppOption) (*App, error) {
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	if err := taxonomy.Ensure(cfg.TaxonomyPath()); err != nil {
		return nil, err
	}
	tax, err := taxonomy.Load(cfg.TaxonomyPath())
	if err != nil {
		return nil, err
	}
	records := store.Open(cfg.RecordsPath())
	deriver := phase.NewDeriver(records)
	lb, err := logbook.New(cfg.JourneyLogPath())
	if err != nil {
		return nil, err
	}

	mainMenu := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "✦ LODESTAR"
	mainMenu.SetShowStatusBar(false)
	mainMenu.SetFilteringEnabled(false)

	app := &App{
		state:    stateMainMenu,
		config:   cfg,
		records:  records,
		deriver:  deriver,
		taxonomy: tax,
		logbook:  lb,
		generator: campaign.NewGenerator(
			docstore.NewClient(cfg.DocstoreURL()),
			records,
			cfg.LinkOrigin(),
		),
		mainMenu: mainMenu,
		exporter: report.NewExporter(cfg.ReportsDir()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.derivation = app.deriver.Derive(app.route)
	app.mainMenu.SetItems(buildMainMenu(app.derivation))
	lb.Info("Session opened · journey phase: %s", app.derivation.Current.FriendlyName())
	return app, nil
}

// buildMainMenu creates the main menu items based on the derived journey state
func buildMainMenu(d phase.Derivation) []list.Item {
	items := []list.Item{
		menuItem{
			title: fmt.Sprintf("Continue Journey (%s)", d.Current.FriendlyName()),
			desc:  continueDescription(d),
		},
		menuItem{title: "View Insights", desc: "Trait metrics and gap findings"},
		menuItem{title: "Campaign Bundle", desc: "Instrument links and passwords"},
		menuItem{title: "Exit", desc: "Quit Lodestar"},
	}
	return items
}

// continueDescription points at the current phase, or past it when the
// route pinned the user on a phase that is already complete.
func continueDescription(d phase.Derivation) string {
	target := d.Current
	if d.Completion[target] && !target.IsTerminal() {
		target = target.Next()
	}
	link := d.Links[target]
	if strings.TrimSpace(link) == "" {
		return "Next step not yet reachable"
	}
	return fmt.Sprintf("Open %s", link)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.fetchDerivation()
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mainMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-12))
		return a, nil

	case derivationMsg:
		previous := a.derivation.Current
		a.derivation = msg.derivation
		if a.derivation.Current != previous {
			a.logbook.PhaseEntered(a.derivation.Current.FriendlyName())
		}
		a.mainMenu.SetItems(buildMainMenu(a.derivation))
		return a, a.scheduleDerivationRefresh()

	case bundleResultMsg:
		return a.handleBundleResult(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.state == stateMainMenu {
				return a, tea.Quit
			}
		case "esc":
			if a.state != stateMainMenu {
				return a.returnToMainMenu()
			}
		case "r":
			a.statusMsg = "Refreshing journey state..."
			return a, a.fetchDerivation()
		case "g":
			if a.state == stateCampaign {
				a.statusMsg = "Generating instrument bundle..."
				return a, a.generateBundle()
			}
		case "a":
			if a.state == stateCampaign {
				return a.adoptDefaultTraits()
			}
		case "e":
			if a.state == stateInsights {
				return a.exportInsights()
			}
		case "enter":
			if a.state == stateMainMenu {
				return a.handleMainMenuSelection()
			}
		}
	}

	var cmds []tea.Cmd
	if a.state == stateMainMenu {
		var menuCmd tea.Cmd
		a.mainMenu, menuCmd = a.mainMenu.Update(msg)
		if menuCmd != nil {
			cmds = append(cmds, menuCmd)
		}
	}
	return a, tea.Batch(cmds...)
}

// handleMainMenuSelection processes menu item selection
func (a *App) handleMainMenuSelection() (tea.Model, tea.Cmd) {
	item, ok := a.mainMenu.SelectedItem().(menuItem)
	if !ok {
		return a, nil
	}

	switch {
	case strings.HasPrefix(item.title, "Continue Journey"):
		a.logbook.Info("Menu · Continue Journey selected (%s)", a.derivation.Current.FriendlyName())
		a.statusMsg = continueDescription(a.derivation)
		return a, nil

	case item.title == "View Insights":
		a.logbook.Info("Menu · View Insights selected")
		a.state = stateInsights
		a.statusMsg = "e → export report    Esc → back"
		return a, nil

	case item.title == "Campaign Bundle":
		a.logbook.Info("Menu · Campaign Bundle selected")
		a.state = stateCampaign
		a.statusMsg = "g → generate bundle    a → adopt default traits    Esc → back"
		return a, nil

	case item.title == "Exit":
		a.logbook.Info("Menu · Exit selected")
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) handleBundleResult(msg bundleResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		var partial *campaign.PartialWriteError
		if errors.As(msg.err, &partial) {
			a.logbook.BundlePartial(partial.OrphanedSelfID, partial.Err)
			a.statusMsg = fmt.Sprintf("Team write failed; self document %s orphaned", partial.OrphanedSelfID)
			return a, a.fetchDerivation()
		}
		a.statusMsg = fmt.Sprintf("Bundle generation failed: %v", msg.err)
		a.logbook.Error("bundle generation failed: %v", msg.err)
		return a, a.fetchDerivation()
	}
	a.logbook.BundleGenerated(msg.summary.BundleID, msg.summary.SelfInstrumentID, msg.summary.TeamInstrumentID)
	a.statusMsg = fmt.Sprintf("Bundle %s generated", msg.summary.BundleID)
	return a, a.fetchDerivation()
}

// adoptDefaultTraits seeds the authored trait list from the taxonomy so a
// bundle can be generated without the authoring surface.
func (a *App) adoptDefaultTraits() (tea.Model, tea.Cmd) {
	if len(a.records.CampaignAuthored()) > 0 {
		a.statusMsg = "Authored trait list already on record"
		return a, nil
	}
	if err := a.records.SetCampaignAuthored(a.taxonomy.Traits.Clone()); err != nil {
		a.statusMsg = fmt.Sprintf("Adopting default traits failed: %v", err)
		return a, nil
	}
	a.logbook.Info("Default taxonomy adopted as authored trait list")
	a.statusMsg = "Default traits adopted"
	return a, a.fetchDerivation()
}

// exportInsights writes the current pane contents as a Markdown report.
func (a *App) exportInsights() (tea.Model, tea.Cmd) {
	metrics := a.insightMetrics()
	findings := scoring.Classify(metrics)
	path, err := a.exporter.Export(a.derivation.Current.FriendlyName(), metrics, findings, a.taxonomy.Insights)
	if err != nil {
		a.statusMsg = fmt.Sprintf("Report export failed: %v", err)
		return a, nil
	}
	a.logbook.Info("Insights report exported to %s", path)
	a.statusMsg = fmt.Sprintf("Report written to %s", path)
	return a, nil
}

// returnToMainMenu transitions back to the journey board
func (a *App) returnToMainMenu() (tea.Model, tea.Cmd) {
	a.state = stateMainMenu
	a.statusMsg = ""
	a.mainMenu.SetItems(buildMainMenu(a.derivation))
	return a, nil
}

func (a *App) fetchDerivation() tea.Cmd {
	return func() tea.Msg {
		return derivationMsg{derivation: a.deriver.Derive(a.route)}
	}
}

func (a *App) scheduleDerivationRefresh() tea.Cmd {
	return tea.Tick(railRefreshInterval, func(time.Time) tea.Msg {
		return derivationMsg{derivation: a.deriver.Derive(a.route)}
	})
}

func (a *App) generateBundle() tea.Cmd {
	return func() tea.Msg {
		summary, err := a.generator.Generate(context.Background())
		return bundleResultMsg{summary: summary, err: err}
	}
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	railWidth := max(32, width/3)
	mainWidth := width - railWidth - 4
	if mainWidth < 40 {
		mainWidth = width - 4
		railWidth = 0
	}

	var content string
	switch a.state {
	case stateMainMenu:
		a.mainMenu.SetSize(max(20, mainWidth-4), max(10, a.height-12))
		content = a.mainMenu.View()
	case stateInsights:
		content = a.renderInsightsPane(mainWidth - 4)
	case stateCampaign:
		content = a.renderCampaignPane(mainWidth - 4)
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFB454")).
		MarginBottom(1).
		Render("✦ LODESTAR")
	mainBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, mainWidth)).
		Render(content)

	var body string
	if railWidth > 0 {
		railBox := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Width(max(20, railWidth)).
			Render(a.renderPhaseRail(railWidth - 4))
		body = lipgloss.JoinHorizontal(lipgloss.Top, mainBox, railBox)
	} else {
		body = mainBox
	}

	sections := []string{header, body}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

// renderPhaseRail lists every journey phase with its completion tick; the
// derived current phase is highlighted.
func (a *App) renderPhaseRail(width int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("Journey")
	current := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFB454"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	lines := []string{title}
	for _, p := range phase.Order {
		tick := "·"
		if a.derivation.Completion[p] {
			tick = "✓"
		}
		line := fmt.Sprintf("%s %s", tick, p.FriendlyName())
		if link := a.derivation.Links[p]; strings.TrimSpace(link) == "" {
			line += " (pending)"
		}
		if p == a.derivation.Current {
			line = current.Render("▸ " + line)
		} else {
			line = dim.Render("  " + line)
		}
		lines = append(lines, line)
	}
	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}

func (a *App) renderLogPanel() string {
	lines, total := a.logbook.Tail(6)
	if total == 0 {
		return ""
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · journey (%d entries)", total))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
