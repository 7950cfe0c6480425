package scoring

import (
	"sort"

	"github.com/kingrea/lodestar/internal/taxonomy"
)

// Directionality names which side of the effort/efficacy relationship
// dominates for a flagged trait.
type Directionality string

const (
	EffortExceedsEfficacy Directionality = "effort-exceeds-efficacy"
	EfficacyExceedsEffort Directionality = "efficacy-exceeds-effort"
)

// Gap thresholds. A trait is flagged on a large raw delta, or on the
// distinct "high visible commitment, low perceived impact" pattern where
// the delta alone can look moderate.
const (
	deltaThreshold    = 30
	highEffortFloor   = 70
	lowEfficacyCeling = 50
)

// GapFinding is one flagged trait, recomputed per classification pass.
type GapFinding struct {
	Trait          string
	Effort         float64
	Efficacy       float64
	Delta          float64
	Directionality Directionality
}

// Classify flags anomalous traits, ordered by descending delta. Ties keep
// input order. Traits with insufficient data are never classified.
func Classify(metrics []TraitMetric) []GapFinding {
	var findings []GapFinding
	for _, m := range metrics {
		if m.Insufficient() {
			continue
		}
		flagged := m.Delta > deltaThreshold ||
			(m.Effort > highEffortFloor && m.Efficacy < lowEfficacyCeling)
		if !flagged {
			continue
		}
		findings = append(findings, GapFinding{
			Trait:          m.Trait,
			Effort:         m.Effort,
			Efficacy:       m.Efficacy,
			Delta:          m.Delta,
			Directionality: directionality(m),
		})
	}
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Delta > findings[j].Delta
	})
	return findings
}

// Primary returns the highest-delta finding, surfaced to callers as the
// "primary opportunity". ok is false when nothing was flagged.
func Primary(findings []GapFinding) (GapFinding, bool) {
	if len(findings) == 0 {
		return GapFinding{}, false
	}
	return findings[0], true
}

// Insight selects the configured template for a finding's directionality.
func Insight(finding GapFinding, templates taxonomy.InsightTemplates) string {
	if finding.Directionality == EffortExceedsEfficacy {
		return templates.EffortExceedsEfficacy
	}
	return templates.EfficacyExceedsEffort
}

func directionality(m TraitMetric) Directionality {
	if m.Effort > m.Efficacy {
		return EffortExceedsEfficacy
	}
	return EfficacyExceedsEffort
}
