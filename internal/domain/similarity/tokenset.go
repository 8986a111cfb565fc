// Package similarity scores how alike two free-text fields are.
//
// The token-set ratio is tolerant of word order, repeated words and partial
// overlap. Both strings are normalised (lowercased, punctuation replaced by
// spaces), split into unique tokens, and three representations are compared:
//
//	sect      = sorted(intersection)
//	combined1 = sect + sorted(tokens only in a)
//	combined2 = sect + sorted(tokens only in b)
//
// The result is the best of ratio(sect, combined1), ratio(sect, combined2)
// and ratio(combined1, combined2), scaled to 0-100 and rounded to an integer.
package similarity

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Func compares two strings and returns a score in [0, 100].
type Func func(a, b string) float64

// TokenSetRatio returns the token-set similarity of a and b in [0, 100].
//
// Two strings that are both empty after normalisation score 100; one empty
// side scores 0.
func TokenSetRatio(a, b string) float64 {
	pa := Normalize(a)
	pb := Normalize(b)

	if pa == "" && pb == "" {
		return 100
	}
	if pa == "" || pb == "" {
		return 0
	}

	tokensA := uniqueTokens(pa)
	tokensB := uniqueTokens(pb)

	var sect, onlyA, onlyB []string
	for tok := range tokensA {
		if tokensB[tok] {
			sect = append(sect, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tokensB {
		if !tokensA[tok] {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(sect)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	sorted := strings.Join(sect, " ")
	combinedA := strings.TrimSpace(sorted + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(sorted + " " + strings.Join(onlyB, " "))

	best := Ratio(sorted, combinedA)
	if r := Ratio(sorted, combinedB); r > best {
		best = r
	}
	if r := Ratio(combinedA, combinedB); r > best {
		best = r
	}
	return best
}

// Ratio is the normalised indel similarity of a and b in [0, 100], rounded
// half-to-even to a whole number. Equal strings score 100, otherwise an
// empty side scores 0.
func Ratio(a, b string) float64 {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	r := levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	return math.RoundToEven(100 * r)
}

// Normalize lowercases s, drops Latin-1 supplement runes, replaces every
// rune that is not a letter, digit or underscore with a space and trims the
// result.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 128 && r <= 255:
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteByte(' ')
		}
	}
	return strings.TrimSpace(b.String())
}

func uniqueTokens(s string) map[string]bool {
	fields := strings.Fields(s)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
