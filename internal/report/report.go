// internal/report/report.go
//
// Insights reports are Markdown documents with a YAML frontmatter block,
// written under .lodestar/reports so a coach or the leader can keep a
// point-in-time snapshot of the metrics outside the TUI.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/lodestar/internal/scoring"
	"github.com/kingrea/lodestar/internal/taxonomy"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("report: missing frontmatter")
	// ErrMalformedFrontMatter indicates the YAML block could not be parsed.
	ErrMalformedFrontMatter = errors.New("report: malformed frontmatter")
)

// Metadata is the frontmatter carried by every exported report.
type Metadata struct {
	Kind        string    `yaml:"kind"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Phase       string    `yaml:"phase"`
	Traits      int       `yaml:"traits"`
	Findings    int       `yaml:"findings"`
}

// Exporter writes insights reports into a directory.
type Exporter struct {
	dir string
	now func() time.Time
}

// Option customizes an Exporter.
type Option func(*Exporter)

// WithClock overrides the clock used for file names and metadata.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// NewExporter builds an exporter rooted at dir.
func NewExporter(dir string, opts ...Option) *Exporter {
	e := &Exporter{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export renders the metrics and findings into a Markdown report and
// writes it to a timestamped file, returning the file path.
func (e *Exporter) Export(phase string, metrics []scoring.TraitMetric, findings []scoring.GapFinding, templates taxonomy.InsightTemplates) (string, error) {
	now := e.now().UTC()
	meta := Metadata{
		Kind:        "insights",
		GeneratedAt: now,
		Phase:       phase,
		Traits:      len(metrics),
		Findings:    len(findings),
	}
	body := renderBody(metrics, findings, templates)
	doc, err := WriteFrontMatter(meta, body)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("report: ensure report dir: %w", err)
	}
	path := filepath.Join(e.dir, fmt.Sprintf("insights-%s.md", now.Format("20060102T150405")))
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return "", fmt.Errorf("report: write report: %w", err)
	}
	return path, nil
}

func renderBody(metrics []scoring.TraitMetric, findings []scoring.GapFinding, templates taxonomy.InsightTemplates) []byte {
	var b strings.Builder
	b.WriteString("# Insights\n\n## Trait Metrics\n\n")
	b.WriteString("| Trait | Effort | Efficacy | Delta | Score | Samples |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, m := range metrics {
		if m.Insufficient() {
			fmt.Fprintf(&b, "| %s | — | — | — | — | 0 |\n", m.Trait)
			continue
		}
		fmt.Fprintf(&b, "| %s | %.1f | %.1f | %.1f | %.1f | %d |\n",
			m.Trait, m.Effort, m.Efficacy, m.Delta, m.Score, m.Samples)
	}

	b.WriteString("\n## Gap Findings\n\n")
	if len(findings) == 0 {
		b.WriteString("No anomalous traits flagged.\n")
		return []byte(b.String())
	}
	primary, _ := scoring.Primary(findings)
	for _, f := range findings {
		marker := "-"
		if f.Trait == primary.Trait {
			marker = "- **Primary opportunity:**"
		}
		fmt.Fprintf(&b, "%s %s (Δ %.1f, %s)\n", marker, f.Trait, f.Delta, f.Directionality)
		fmt.Fprintf(&b, "  %s\n", scoring.Insight(f, templates))
	}
	return []byte(b.String())
}

// WriteFrontMatter renders metadata + body with YAML fences.
func WriteFrontMatter(meta Metadata, body []byte) ([]byte, error) {
	if meta.Kind == "" {
		return nil, fmt.Errorf("report: metadata kind is required")
	}
	metaBytes, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("report: marshal frontmatter: %w", err)
	}
	var out bytes.Buffer
	out.WriteString("---\n")
	out.Write(metaBytes)
	out.WriteString("---\n")
	out.Write(body)
	return out.Bytes(), nil
}

// ParseFrontMatter extracts the metadata block and body from a document
// that starts with `---` YAML fences.
func ParseFrontMatter(content []byte) (Metadata, []byte, error) {
	if len(content) == 0 {
		return Metadata{}, nil, ErrMissingFrontMatter
	}
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return Metadata{}, nil, ErrMissingFrontMatter
	}
	rest := normalized[4:]
	parts := bytes.SplitN(rest, []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return Metadata{}, nil, ErrMalformedFrontMatter
	}
	var meta Metadata
	if err := yaml.Unmarshal(parts[0], &meta); err != nil {
		return Metadata{}, nil, fmt.Errorf("report: parse frontmatter: %w", err)
	}
	return meta, parts[1], nil
}
