// Package scoring reduces raw per-statement ratings into trait-level metrics
// and flags traits whose effort/efficacy relationship looks anomalous. Every
// function here is pure: aggregation is recomputed from the supplied records
// on each call and nothing is cached or persisted.
package scoring

import (
	"math"

	"github.com/kingrea/lodestar/internal/taxonomy"
)

// Rating is one respondent's answer to one statement. Both axes are 0-100.
type Rating struct {
	Efficacy float64 `json:"efficacy"`
	Effort   float64 `json:"effort"`
}

// RatingRecord is one respondent's full submission for one instrument.
// Answers are keyed by flat statement index (0-based across all traits in
// authoring order). Records are written once and never mutated; the
// aggregator only reads them.
type RatingRecord struct {
	RespondentID string         `json:"respondentId"`
	InstrumentID string         `json:"instrumentId"`
	Answers      map[int]Rating `json:"answers"`
}

// StatementMetric carries the derived numbers for a single statement.
type StatementMetric struct {
	Index    int
	Efficacy float64
	Effort   float64
	Delta    float64
	Score    float64
	Samples  int
}

// TraitMetric carries the derived numbers for one trait plus its statements.
// When no rating contributed to the trait the numeric fields are NaN and
// Insufficient reports true; callers must check before comparing values.
type TraitMetric struct {
	Trait      string
	Efficacy   float64
	Effort     float64
	Delta      float64
	Score      float64
	Samples    int
	Statements []StatementMetric
}

// Insufficient reports whether the trait had zero contributing ratings.
func (m TraitMetric) Insufficient() bool {
	return m.Samples == 0
}

// Aggregate reduces records into one TraitMetric per trait in set order.
//
// For a trait whose statements occupy flat indices [off, off+k), every
// present answer at those indices contributes one (efficacy, effort) pair:
// the trait average runs over the flattened respondent x statement values,
// not per-respondent means. Absent indices and out-of-range values are
// excluded, never coerced to zero — coercion would drag averages down.
// Aggregate never fails; malformed input simply contributes nothing.
func Aggregate(set taxonomy.Set, records []RatingRecord) []TraitMetric {
	offsets := set.Offsets()
	metrics := make([]TraitMetric, len(set))
	for i, trait := range set {
		off := offsets[i]
		k := len(trait.Statements)

		var effSum, effortSum float64
		samples := 0
		statements := make([]StatementMetric, k)
		for j := 0; j < k; j++ {
			var sEff, sEffort float64
			sSamples := 0
			for _, record := range records {
				rating, ok := record.Answers[off+j]
				if !ok || !validRating(rating) {
					continue
				}
				sEff += rating.Efficacy
				sEffort += rating.Effort
				sSamples++
			}
			statements[j] = statementMetric(off+j, sEff, sEffort, sSamples)
			effSum += sEff
			effortSum += sEffort
			samples += sSamples
		}

		metrics[i] = traitMetric(trait.Name, effSum, effortSum, samples, statements)
	}
	return metrics
}

// composite weights perceived impact twice as heavily as visible effort.
func composite(efficacy, effort float64) float64 {
	return (2*efficacy + effort) / 3
}

func statementMetric(index int, effSum, effortSum float64, samples int) StatementMetric {
	if samples == 0 {
		nan := math.NaN()
		return StatementMetric{Index: index, Efficacy: nan, Effort: nan, Delta: nan, Score: nan}
	}
	eff := effSum / float64(samples)
	effort := effortSum / float64(samples)
	return StatementMetric{
		Index:    index,
		Efficacy: eff,
		Effort:   effort,
		Delta:    math.Abs(effort - eff),
		Score:    composite(eff, effort),
		Samples:  samples,
	}
}

func traitMetric(name string, effSum, effortSum float64, samples int, statements []StatementMetric) TraitMetric {
	if samples == 0 {
		nan := math.NaN()
		return TraitMetric{Trait: name, Efficacy: nan, Effort: nan, Delta: nan, Score: nan, Statements: statements}
	}
	eff := effSum / float64(samples)
	effort := effortSum / float64(samples)
	return TraitMetric{
		Trait:      name,
		Efficacy:   eff,
		Effort:     effort,
		Delta:      math.Abs(effort - eff),
		Score:      composite(eff, effort),
		Samples:    samples,
		Statements: statements,
	}
}

// validRating rejects non-finite and out-of-range values. Such answers are
// treated as missing data, the same as an absent index.
func validRating(r Rating) bool {
	return inRange(r.Efficacy) && inRange(r.Effort)
}

func inRange(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= 100
}
