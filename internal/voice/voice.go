// Package voice rewrites leader-directed assessment statements into
// first-person form, so the self instrument reads "I share context" where
// the team instrument reads "The leader shares context".
//
// The rewrite is a regex heuristic, not a grammar engine. It is deliberately
// kept behind the Rewriter interface so a real NLP pass could replace it
// without touching call sites. After substitution, agreement is repaired for
// the common copulas and auxiliaries ("I is"/"I are" to "I am", "I has" to
// "I have") and the trailing "-s" of regular verbs is collapsed. Verbs
// outside that list stay best-effort.
package voice

import (
	"regexp"
	"strings"
	"unicode"
)

// Rewriter converts one statement into first-person voice.
type Rewriter interface {
	Rewrite(statement string) string
}

// rule is one ordered whole-word substitution.
type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// FirstPerson is the default substitution-based rewriter.
type FirstPerson struct {
	rules []rule
}

// Order matters: "themselves" must be handled before "them", and "theirs"
// before "their".
var pronounRules = []struct {
	term        string
	replacement string
}{
	{"themselves", "myself"},
	{"theirs", "mine"},
	{"their", "my"},
	{"them", "me"},
	{"they", "I"},
}

var (
	firstPersonToken = regexp.MustCompile(`(?i)\b(i|me|my|mine|myself)\b`)
	trailingVerbS    = regexp.MustCompile(`\bI ([A-Za-z]{2,})s\b`)
)

// agreementRules repair subject agreement once the subject has become "I".
// They run before the trailing "-s" collapse so irregular forms ("has",
// "does") are rewritten whole instead of being clipped.
var agreementRules = []rule{
	{regexp.MustCompile(`\bI (?:is|are)\b`), "I am"},
	{regexp.MustCompile(`\bI were\b`), "I was"},
	{regexp.MustCompile(`\bI has\b`), "I have"},
	{regexp.MustCompile(`\bI does\b`), "I do"},
}

// NewFirstPerson builds a rewriter. leaderTerms are extra leader-referential
// phrases (typically the leader's name) replaced with "I"; the generic
// "the leader"/"this leader" forms are always included.
func NewFirstPerson(leaderTerms ...string) *FirstPerson {
	terms := make([]string, 0, len(leaderTerms)+2)
	for _, term := range leaderTerms {
		if strings.TrimSpace(term) != "" {
			terms = append(terms, strings.TrimSpace(term))
		}
	}
	terms = append(terms, "the leader", "this leader")

	rules := make([]rule, 0, len(terms)+len(pronounRules))
	for _, term := range terms {
		rules = append(rules, rule{
			pattern:     wholeWord(term),
			replacement: "I",
		})
	}
	for _, pr := range pronounRules {
		rules = append(rules, rule{
			pattern:     wholeWord(pr.term),
			replacement: pr.replacement,
		})
	}
	return &FirstPerson{rules: rules}
}

// Rewrite applies the substitution sequence. Deterministic, no I/O.
// Empty or whitespace-only input returns the empty string.
func (f *FirstPerson) Rewrite(statement string) string {
	text := strings.TrimSpace(statement)
	if text == "" {
		return ""
	}

	for _, r := range f.rules {
		text = r.pattern.ReplaceAllString(text, r.replacement)
	}

	// A statement with no first-person token left has no subject we can
	// claim; give it one explicitly.
	if !firstPersonToken.MatchString(text) {
		text = "I " + lowerFirst(text)
	}

	for _, r := range agreementRules {
		text = r.pattern.ReplaceAllString(text, r.replacement)
	}

	// Regular verb collapse: "I shares" -> "I share". "I was" is the one
	// agreement output ending in s and must survive.
	text = trailingVerbS.ReplaceAllStringFunc(text, func(m string) string {
		if m == "I was" {
			return m
		}
		return strings.TrimSuffix(m, "s")
	})

	return text
}

func wholeWord(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
}

func lowerFirst(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return text
	}
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
