// Package taxonomy defines the trait/statement configuration an assessment
// campaign is authored from. Trait names and statement texts are data, not
// logic: they ship as a YAML file under .lodestar/taxonomy/ and are immutable
// once authored into an instrument bundle.
package taxonomy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Trait is one named leadership trait with its ordered statement list.
// Statement counts may differ between traits; nothing downstream assumes a
// fixed count.
type Trait struct {
	Name       string   `yaml:"name" json:"trait"`
	Statements []string `yaml:"statements" json:"statements"`
}

// Set is the ordered list of traits a campaign is authored from.
type Set []Trait

// InsightTemplates holds the two fixed insight texts attached to gap
// findings, keyed by directionality. Template text is configuration.
type InsightTemplates struct {
	EffortExceedsEfficacy string `yaml:"effort_exceeds_efficacy"`
	EfficacyExceedsEffort string `yaml:"efficacy_exceeds_effort"`
}

// File models the on-disk taxonomy document.
type File struct {
	Version  int              `yaml:"version"`
	Traits   Set              `yaml:"traits"`
	Insights InsightTemplates `yaml:"insights"`
}

// DefaultYAML is written to .lodestar/taxonomy/traits.yaml on first run.
const DefaultYAML = `# lodestar trait taxonomy
version: 1

insights:
  effort_exceeds_efficacy: >-
    Your visible investment here outpaces the impact others perceive.
    Consider where the energy is going and what your team actually needs.
  efficacy_exceeds_effort: >-
    Others see more impact here than your own investment suggests.
    This may be an underused strength worth leaning into.

traits:
  - name: Communication
    statements:
      - The leader communicates goals clearly.
      - The leader listens before responding.
      - The leader shares context behind decisions.
      - The leader gives timely, specific feedback.
      - The leader adapts their message to the audience.
  - name: Accountability
    statements:
      - The leader owns outcomes, good or bad.
      - The leader follows through on commitments.
      - The leader addresses problems directly.
      - The leader holds themselves to the same standard as the team.
      - The leader admits mistakes openly.
  - name: Empowerment
    statements:
      - The leader delegates meaningful work.
      - The leader trusts the team to make decisions.
      - The leader removes obstacles for them.
      - The leader invests in their growth.
      - The leader credits the team publicly.
`

// Load reads a taxonomy file from disk. A missing file yields the built-in
// default set so a fresh project works before any customization.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return parse([]byte(DefaultYAML))
		}
		return File{}, fmt.Errorf("taxonomy: read %s: %w", path, err)
	}
	file, err := parse(data)
	if err != nil {
		return File{}, fmt.Errorf("taxonomy: parse %s: %w", path, err)
	}
	return file, nil
}

// Ensure writes the default taxonomy file if none exists yet.
func Ensure(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(DefaultYAML), 0o644)
}

func parse(data []byte) (File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, err
	}
	if file.Version == 0 {
		file.Version = 1
	}
	if err := file.Traits.Validate(); err != nil {
		return File{}, err
	}
	return file, nil
}

// Validate ensures every trait is named and carries at least one statement.
func (s Set) Validate() error {
	for i, trait := range s {
		if strings.TrimSpace(trait.Name) == "" {
			return fmt.Errorf("taxonomy: trait %d has no name", i)
		}
		if len(trait.Statements) == 0 {
			return fmt.Errorf("taxonomy: trait %s has no statements", trait.Name)
		}
		for j, statement := range trait.Statements {
			if strings.TrimSpace(statement) == "" {
				return fmt.Errorf("taxonomy: trait %s statement %d is empty", trait.Name, j)
			}
		}
	}
	return nil
}

// FlatCount returns the total number of statements across all traits.
func (s Set) FlatCount() int {
	total := 0
	for _, trait := range s {
		total += len(trait.Statements)
	}
	return total
}

// Offsets returns, per trait, the flat index of its first statement.
// Statements are numbered 0-based across all traits in authoring order.
func (s Set) Offsets() []int {
	offsets := make([]int, len(s))
	next := 0
	for i, trait := range s {
		offsets[i] = next
		next += len(trait.Statements)
	}
	return offsets
}

// Clone returns a deep copy so authored sets cannot be mutated through
// shared slices.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for i, trait := range s {
		out[i] = Trait{
			Name:       trait.Name,
			Statements: append([]string(nil), trait.Statements...),
		}
	}
	return out
}
