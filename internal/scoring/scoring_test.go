package scoring

import (
	"math"
	"testing"

	"github.com/kingrea/lodestar/internal/taxonomy"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func twoTraitSet() taxonomy.Set {
	return taxonomy.Set{
		{Name: "Communication", Statements: []string{"s0", "s1"}},
		{Name: "Accountability", Statements: []string{"s2", "s3", "s4"}},
	}
}

func TestAggregateSingleStatementExample(t *testing.T) {
	set := taxonomy.Set{{Name: "Vision", Statements: []string{"s0"}}}
	records := []RatingRecord{{
		RespondentID: "r1",
		Answers:      map[int]Rating{0: {Efficacy: 80, Effort: 20}},
	}}
	metrics := Aggregate(set, records)
	if len(metrics) != 1 {
		t.Fatalf("want 1 metric, got %d", len(metrics))
	}
	m := metrics[0]
	if m.Insufficient() {
		t.Fatalf("trait should have data")
	}
	if !almostEqual(m.Efficacy, 80) || !almostEqual(m.Effort, 20) {
		t.Fatalf("averages wrong: %+v", m)
	}
	if !almostEqual(m.Delta, 60) {
		t.Fatalf("delta = %v, want 60", m.Delta)
	}
	if !almostEqual(m.Score, 60) {
		t.Fatalf("score = %v, want 60", m.Score)
	}
}

func TestAggregateFlattensRespondentByStatement(t *testing.T) {
	// Trait 2 occupies flat indices 2..4. One respondent answers all three
	// statements, another answers only one: the average runs over four
	// values, not two respondent means.
	set := twoTraitSet()
	records := []RatingRecord{
		{RespondentID: "a", Answers: map[int]Rating{
			2: {Efficacy: 60, Effort: 40},
			3: {Efficacy: 80, Effort: 40},
			4: {Efficacy: 100, Effort: 40},
		}},
		{RespondentID: "b", Answers: map[int]Rating{
			2: {Efficacy: 0, Effort: 80},
		}},
	}
	metrics := Aggregate(set, records)
	m := metrics[1]
	if m.Samples != 4 {
		t.Fatalf("samples = %d, want 4", m.Samples)
	}
	if !almostEqual(m.Efficacy, 60) {
		t.Fatalf("efficacy = %v, want 60", m.Efficacy)
	}
	if !almostEqual(m.Effort, 50) {
		t.Fatalf("effort = %v, want 50", m.Effort)
	}
	if !almostEqual(m.Score, (2*60.0+50.0)/3) {
		t.Fatalf("score identity violated: %+v", m)
	}
	if !almostEqual(m.Delta, 10) || m.Delta < 0 {
		t.Fatalf("delta = %v, want 10", m.Delta)
	}
}

func TestAggregatePerStatementMetrics(t *testing.T) {
	set := twoTraitSet()
	records := []RatingRecord{
		{RespondentID: "a", Answers: map[int]Rating{
			0: {Efficacy: 40, Effort: 60},
			1: {Efficacy: 80, Effort: 20},
		}},
	}
	m := Aggregate(set, records)[0]
	if len(m.Statements) != 2 {
		t.Fatalf("want 2 statement metrics, got %d", len(m.Statements))
	}
	s0 := m.Statements[0]
	if s0.Index != 0 || !almostEqual(s0.Efficacy, 40) || !almostEqual(s0.Delta, 20) {
		t.Fatalf("statement 0 wrong: %+v", s0)
	}
	s1 := m.Statements[1]
	if !almostEqual(s1.Score, (2*80.0+20.0)/3) {
		t.Fatalf("statement 1 score wrong: %+v", s1)
	}
}

func TestAggregateInsufficientDataIsExplicit(t *testing.T) {
	set := twoTraitSet()
	// Only the first trait receives answers.
	records := []RatingRecord{
		{RespondentID: "a", Answers: map[int]Rating{0: {Efficacy: 50, Effort: 50}}},
	}
	metrics := Aggregate(set, records)
	m := metrics[1]
	if !m.Insufficient() {
		t.Fatalf("trait without answers must report insufficient data")
	}
	if !math.IsNaN(m.Efficacy) || !math.IsNaN(m.Score) {
		t.Fatalf("insufficient trait should carry NaN, not zero: %+v", m)
	}
}

func TestAggregateSkipsOutOfRangeValues(t *testing.T) {
	set := taxonomy.Set{{Name: "Vision", Statements: []string{"s0"}}}
	records := []RatingRecord{
		{RespondentID: "a", Answers: map[int]Rating{0: {Efficacy: 120, Effort: 50}}},
		{RespondentID: "b", Answers: map[int]Rating{0: {Efficacy: math.NaN(), Effort: 50}}},
		{RespondentID: "c", Answers: map[int]Rating{0: {Efficacy: 60, Effort: 40}}},
	}
	m := Aggregate(set, records)[0]
	if m.Samples != 1 {
		t.Fatalf("invalid values must be excluded, samples = %d", m.Samples)
	}
	if !almostEqual(m.Efficacy, 60) {
		t.Fatalf("efficacy polluted by invalid values: %v", m.Efficacy)
	}
}

func TestAggregateNoRecords(t *testing.T) {
	metrics := Aggregate(twoTraitSet(), nil)
	for _, m := range metrics {
		if !m.Insufficient() {
			t.Fatalf("empty input should yield insufficient metrics")
		}
	}
}

func TestClassifyThresholds(t *testing.T) {
	metrics := []TraitMetric{
		{Trait: "BigDelta", Efficacy: 20, Effort: 55, Delta: 35, Samples: 5},
		{Trait: "Quiet", Efficacy: 60, Effort: 65, Delta: 5, Samples: 5},
		{Trait: "Grinding", Efficacy: 45, Effort: 72, Delta: 27, Samples: 5},
	}
	findings := Classify(metrics)
	if len(findings) != 2 {
		t.Fatalf("want 2 findings, got %d: %+v", len(findings), findings)
	}
	// BigDelta crosses the delta threshold; Grinding crosses the
	// high-effort/low-efficacy clause despite a moderate delta.
	if findings[0].Trait != "BigDelta" || findings[1].Trait != "Grinding" {
		t.Fatalf("unexpected order: %+v", findings)
	}
	for _, f := range findings {
		if f.Directionality != EffortExceedsEfficacy {
			t.Fatalf("directionality wrong: %+v", f)
		}
	}
}

func TestClassifyBoundaryIsExclusive(t *testing.T) {
	metrics := []TraitMetric{
		{Trait: "Edge", Efficacy: 50, Effort: 80, Delta: 30, Samples: 3},
	}
	// delta == 30 does not cross "> 30", effort 80 > 70 but efficacy 50 is
	// not < 50: not flagged.
	if findings := Classify(metrics); len(findings) != 0 {
		t.Fatalf("boundary values must not be flagged: %+v", findings)
	}
}

func TestClassifyTiesPreserveInputOrder(t *testing.T) {
	metrics := []TraitMetric{
		{Trait: "First", Efficacy: 20, Effort: 60, Delta: 40, Samples: 1},
		{Trait: "Second", Efficacy: 60, Effort: 20, Delta: 40, Samples: 1},
	}
	findings := Classify(metrics)
	if len(findings) != 2 || findings[0].Trait != "First" || findings[1].Trait != "Second" {
		t.Fatalf("ties must keep input order: %+v", findings)
	}
	if findings[1].Directionality != EfficacyExceedsEffort {
		t.Fatalf("directionality wrong for efficacy-led trait: %+v", findings[1])
	}
}

func TestClassifySkipsInsufficientTraits(t *testing.T) {
	nan := math.NaN()
	metrics := []TraitMetric{
		{Trait: "NoData", Efficacy: nan, Effort: nan, Delta: nan, Samples: 0},
	}
	if findings := Classify(metrics); len(findings) != 0 {
		t.Fatalf("insufficient traits must never be classified: %+v", findings)
	}
}

func TestClassifyEndToEndFromAggregate(t *testing.T) {
	set := taxonomy.Set{{Name: "Vision", Statements: []string{"s0"}}}
	records := []RatingRecord{{
		RespondentID: "r1",
		Answers:      map[int]Rating{0: {Efficacy: 80, Effort: 20}},
	}}
	findings := Classify(Aggregate(set, records))
	if len(findings) != 1 {
		t.Fatalf("delta 60 must be flagged: %+v", findings)
	}
	if findings[0].Directionality != EfficacyExceedsEffort {
		t.Fatalf("directionality = %s, want efficacy-exceeds-effort", findings[0].Directionality)
	}
}

func TestPrimaryOpportunity(t *testing.T) {
	if _, ok := Primary(nil); ok {
		t.Fatalf("no findings should yield no primary")
	}
	findings := []GapFinding{
		{Trait: "Top", Delta: 50},
		{Trait: "Rest", Delta: 35},
	}
	primary, ok := Primary(findings)
	if !ok || primary.Trait != "Top" {
		t.Fatalf("primary should be the highest delta: %+v", primary)
	}
}

func TestInsightTemplateSelection(t *testing.T) {
	templates := taxonomy.InsightTemplates{
		EffortExceedsEfficacy: "effort-template",
		EfficacyExceedsEffort: "efficacy-template",
	}
	if got := Insight(GapFinding{Directionality: EffortExceedsEfficacy}, templates); got != "effort-template" {
		t.Fatalf("wrong template: %s", got)
	}
	if got := Insight(GapFinding{Directionality: EfficacyExceedsEffort}, templates); got != "efficacy-template" {
		t.Fatalf("wrong template: %s", got)
	}
}
