// Package fuzzy scores approximate string similarity on a 0-100 scale and
// picks the closest website names for a possibly misspelled query.
//
// The scorers follow the fuzzywuzzy family: Ratio is the SequenceMatcher
// similarity, the Partial variants compare against the best-aligned window of
// the longer string, the Token variants ignore word order, and WRatio blends
// them with length-dependent weights.
package fuzzy

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/unicode/norm"
)

// Scorer returns a similarity between 0 and 100.
type Scorer func(a, b string) int

const (
	unbaseScale = 0.95
	partialMin  = 1.5
	partialFar  = 8.0
)

// Process normalizes a string before scoring: NFC, lower case, every rune
// that is not a letter, digit or underscore becomes a space, then trimmed.
func Process(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(' ')
		}
	}
	return strings.TrimSpace(b.String())
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func intr(f float64) int {
	return int(math.RoundToEven(f))
}

func seqRatio(a, b []string) float64 {
	return difflib.NewMatcher(a, b).Ratio()
}

// Ratio is the plain SequenceMatcher similarity of a and b.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	return intr(100 * seqRatio(runes(a), runes(b)))
}

// PartialRatio scores the shorter string against the best matching window of
// the longer one.
func PartialRatio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	shorter, longer := runes(a), runes(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	best := 0.0
	for _, block := range difflib.NewMatcher(shorter, longer).GetMatchingBlocks() {
		start := block.B - block.A
		if start < 0 {
			start = 0
		}
		end := start + len(shorter)
		if end > len(longer) {
			end = len(longer)
		}

		r := seqRatio(shorter, longer[start:end])
		if r > 0.995 {
			return 100
		}
		if r > best {
			best = r
		}
	}

	return intr(100 * best)
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// TokenSortRatio compares both strings after sorting their words.
func TokenSortRatio(a, b string) int {
	return Ratio(sortedTokens(Process(a)), sortedTokens(Process(b)))
}

// PartialTokenSortRatio is TokenSortRatio using PartialRatio.
func PartialTokenSortRatio(a, b string) int {
	return PartialRatio(sortedTokens(Process(a)), sortedTokens(Process(b)))
}

func tokenSet(a, b string, ratio Scorer) int {
	pa, pb := Process(a), Process(b)
	if pa == "" || pb == "" {
		return 0
	}

	setA := tokenSetOf(pa)
	setB := tokenSetOf(pb)

	var sect, onlyA, onlyB []string
	for token := range setA {
		if setB[token] {
			sect = append(sect, token)
		} else {
			onlyA = append(onlyA, token)
		}
	}
	for token := range setB {
		if !setA[token] {
			onlyB = append(onlyB, token)
		}
	}
	sort.Strings(sect)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	sortedSect := strings.Join(sect, " ")
	combinedA := strings.TrimSpace(sortedSect + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(sortedSect + " " + strings.Join(onlyB, " "))

	return max(
		ratio(sortedSect, combinedA),
		ratio(sortedSect, combinedB),
		ratio(combinedA, combinedB),
	)
}

func tokenSetOf(s string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.Fields(s) {
		set[token] = true
	}
	return set
}

// TokenSetRatio compares the shared words of both strings against each
// string's remainder, so extra words on one side cost little.
func TokenSetRatio(a, b string) int {
	return tokenSet(a, b, Ratio)
}

// PartialTokenSetRatio is TokenSetRatio using PartialRatio.
func PartialTokenSetRatio(a, b string) int {
	return tokenSet(a, b, PartialRatio)
}

// WRatio is the weighted blend used for website lookup. Strings of similar
// length are compared whole and word-order-insensitively; when one is at
// least 1.5 times longer, the partial scorers also count, scaled down (more
// so past a factor of 8).
func WRatio(a, b string) int {
	pa, pb := Process(a), Process(b)
	if pa == "" || pb == "" {
		return 0
	}

	base := float64(Ratio(pa, pb))

	la, lb := float64(len([]rune(pa))), float64(len([]rune(pb)))
	lenRatio := math.Max(la, lb) / math.Min(la, lb)

	if lenRatio < partialMin {
		tsor := float64(TokenSortRatio(pa, pb)) * unbaseScale
		tser := float64(TokenSetRatio(pa, pb)) * unbaseScale
		return intr(math.Max(base, math.Max(tsor, tser)))
	}

	partialScale := 0.90
	if lenRatio > partialFar {
		partialScale = 0.6
	}

	partial := float64(PartialRatio(pa, pb)) * partialScale
	ptsor := float64(PartialTokenSortRatio(pa, pb)) * unbaseScale * partialScale
	ptser := float64(PartialTokenSetRatio(pa, pb)) * unbaseScale * partialScale
	return intr(math.Max(math.Max(base, partial), math.Max(ptsor, ptser)))
}
