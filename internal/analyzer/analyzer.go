// Package analyzer scores password candidates: Shannon entropy over the
// character distribution, strength labels derived from entropy, and
// aggregate statistics over streamed batches.
package analyzer

import (
	"math"

	"github.com/bimmerbailey/refinery/internal/config"
)

// Strength thresholds in bits. Each bound belongs to the higher bin.
const (
	WeakThreshold     = 2.5
	ModerateThreshold = 3.5
	StrongThreshold   = 4.5
)

// Entropy returns the Shannon entropy of s in bits, computed over Unicode
// code points: H = -Σ p·log2(p). The empty string has entropy 0.
func Entropy(s string) float64 {
	if s == "" {
		return 0
	}

	counts := make(map[rune]int, len(s))
	n := 0
	for _, r := range s {
		counts[r]++
		n++
	}

	if len(counts) == 1 {
		return 0
	}

	h := 0.0
	total := float64(n)
	for _, c := range counts {
		p := float64(c) / total
		h -= p * math.Log2(p)
	}
	return h
}

// EntropyAll sets the entropy of every record of a batch in place. Order
// and length are unchanged.
func EntropyAll(records []config.Record) {
	for i := range records {
		records[i].Entropy = Entropy(records[i].Text)
	}
}

// Classify maps an entropy value to a strength label. NaN and negative
// values fall into the weakest bin.
func Classify(entropy float64) config.Strength {
	switch {
	case entropy >= StrongThreshold:
		return config.StrengthStrong
	case entropy >= ModerateThreshold:
		return config.StrengthModerate
	case entropy >= WeakThreshold:
		return config.StrengthWeak
	default:
		return config.StrengthVeryWeak
	}
}
