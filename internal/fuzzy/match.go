package fuzzy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownScorer is returned by ScorerByName
var ErrUnknownScorer = errors.New("unknown scorer")

const (
	// DefaultThreshold is the minimum score BestMatch accepts
	DefaultThreshold = 70
	// DefaultLimit is the number of suggestions TopMatches returns
	DefaultLimit = 5
)

// Match is a scored candidate
type Match struct {
	Candidate string
	Score     int
}

// Matcher resolves a query against a candidate list.
type Matcher struct {
	Threshold int
	Limit     int
	Scorer    Scorer
}

// NewMatcher creates a matcher using WRatio.
func NewMatcher(threshold, limit int) *Matcher {
	return &Matcher{
		Threshold: threshold,
		Limit:     limit,
		Scorer:    WRatio,
	}
}

// NewDefaultMatcher creates a matcher with the default threshold and limit
func NewDefaultMatcher() *Matcher {
	return NewMatcher(DefaultThreshold, DefaultLimit)
}

// ScorerByName maps a configuration name onto a scorer.
func ScorerByName(name string) (Scorer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "weighted", "wratio":
		return WRatio, nil
	case "token_sort":
		return TokenSortRatio, nil
	case "token_set":
		return TokenSetRatio, nil
	case "ratio":
		return Ratio, nil
	case "partial":
		return PartialRatio, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownScorer, name)
	}
}

func (m *Matcher) scorer() Scorer {
	if m.Scorer == nil {
		return WRatio
	}
	return m.Scorer
}

// Extract scores every candidate and returns up to limit matches by
// descending score. Equal scores keep the order of candidates.
func (m *Matcher) Extract(query string, candidates []string, limit int) []Match {
	if len(candidates) == 0 || limit <= 0 {
		return nil
	}

	score := m.scorer()
	processed := Process(query)

	matches := make([]Match, 0, len(candidates))
	for _, candidate := range candidates {
		matches = append(matches, Match{
			Candidate: candidate,
			Score:     score(processed, Process(candidate)),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Best returns the highest scoring candidate, the first one on ties.
func (m *Matcher) Best(query string, candidates []string) (Match, bool) {
	matches := m.Extract(query, candidates, 1)
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}

// BestMatch returns the closest candidate when it scores at least the
// threshold, and the query itself otherwise, so an unknown name can be used
// as a new key.
func (m *Matcher) BestMatch(query string, candidates []string) string {
	best, ok := m.Best(query, candidates)
	if !ok || best.Score < m.Threshold {
		return query
	}
	return best.Candidate
}

// TopMatches returns up to Limit candidates ordered by descending score
func (m *Matcher) TopMatches(query string, candidates []string) []string {
	limit := m.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	matches := m.Extract(query, candidates, limit)
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.Candidate)
	}
	return out
}
