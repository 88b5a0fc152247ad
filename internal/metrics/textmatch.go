package metrics

import (
	"fmt"
	"strings"
	"unicode"
)

// Matcher is the pluggable comparison strategy behind next_step_match.
type Matcher interface {
	Name() string
	Match(gold, pred string) bool
}

// NewMatcher resolves a matcher strategy by name. An empty name selects the
// normalized strategy.
func NewMatcher(name string) (Matcher, error) {
	switch name {
	case "exact":
		return exactMatcher{}, nil
	case "normalized", "":
		return normalizedMatcher{}, nil
	case "tokens":
		return tokenMatcher{threshold: 0.6}, nil
	default:
		return nil, fmt.Errorf("metrics: unknown matcher %q", name)
	}
}

// exactMatcher requires byte-for-byte equality.
type exactMatcher struct{}

func (exactMatcher) Name() string { return "exact" }

func (exactMatcher) Match(gold, pred string) bool { return gold == pred }

// normalizedMatcher compares after case folding, punctuation stripping, and
// whitespace collapsing. Minor textual variance in next_step is tolerated
// here, never by the executor.
type normalizedMatcher struct{}

func (normalizedMatcher) Name() string { return "normalized" }

func (normalizedMatcher) Match(gold, pred string) bool {
	return normalize(gold) == normalize(pred)
}

// tokenMatcher accepts when the Jaccard overlap of normalized token sets
// meets the threshold.
type tokenMatcher struct {
	threshold float64
}

func (tokenMatcher) Name() string { return "tokens" }

func (m tokenMatcher) Match(gold, pred string) bool {
	a := tokenSet(gold)
	b := tokenSet(pred)
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	if len(a) == 0 || len(b) == 0 {
		return false
	}

	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection)/float64(union) >= m.threshold
}

func normalize(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
		// Punctuation is dropped.
	}
	return strings.TrimSpace(b.String())
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(normalize(s)) {
		set[tok] = struct{}{}
	}
	return set
}
