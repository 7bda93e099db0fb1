/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Lyric matching happens in three modes, from least to most forgiving:
// strict compares raw strings, loose compares after normalization, and
// fuzzy allows a bounded edit distance between the normalized strings.

type matchMode int

const (
	modeStrict matchMode = iota
	modeLoose
	modeFuzzy
)

const (
	minFuzzyThreshold = 0
	maxFuzzyThreshold = 10
)

func (m matchMode) String() string {
	switch m {
	case modeStrict:
		return "strict"
	case modeFuzzy:
		return "fuzzy"
	default:
		return "loose"
	}
}

func parseMatchMode(name string) (matchMode, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "strict":
		return modeStrict, true
	case "loose":
		return modeLoose, true
	case "fuzzy":
		return modeFuzzy, true
	default:
		return modeLoose, false
	}
}

// matchPolicy governs how strictly a contestant's line is compared to
// the original lyric.
type matchPolicy struct {
	mode      matchMode
	threshold int
}

// isCJK reports whether r falls in the CJK Unified Ideograph blocks
// (base, Extension A, or Compatibility Ideographs).
func isCJK(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF:
		return true
	case r >= 0x3400 && r <= 0x4DBF:
		return true
	case r >= 0xF900 && r <= 0xFAFF:
		return true
	}
	return false
}

// normalizeText canonicalizes a lyric line for loose and fuzzy comparison.
// Full-width and half-width variants are folded via NFKC, then everything
// except letters, digits, and CJK ideographs is dropped, and letters are
// lowercased. The result is idempotent and never longer than the input.
func normalizeText(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	for _, r := range norm.NFKC.String(s) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !isCJK(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// editDistance returns the Levenshtein distance between a and b, counted
// over code points with unit insert/delete/substitute costs. Works with
// two rolling rows, so memory is proportional to the shorter string.
func editDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	// Keep the row dimension on the shorter string.
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}

	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// judgeText decides whether a contestant's reproduced line passes against
// the original under the given policy. Pure and deterministic; nil-safe in
// the sense that empty strings are compared like any others.
func judgeText(original, contestant string, policy matchPolicy) bool {
	switch policy.mode {
	case modeStrict:
		return original == contestant
	case modeFuzzy:
		return editDistance(normalizeText(original), normalizeText(contestant)) <= policy.threshold
	default:
		return normalizeText(original) == normalizeText(contestant)
	}
}
