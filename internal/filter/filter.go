// Package filter provides the compliance predicates applied to password
// candidates.
//
// Two character-set rules exist and are deliberately distinct:
// IsStructurallyValid accepts any printable ASCII (space included), while
// IsPasswordLike only accepts letters, digits and a fixed set of common
// symbols. The compliance pass requires both, together with the noise and
// whitespace rejections. All predicates are pure and safe for concurrent use.
package filter

import (
	"unicode"

	"github.com/bimmerbailey/refinery/internal/config"
)

// IsStructurallyValid reports whether every character of s is printable
// ASCII (0x20-0x7E) and s is 8 to 63 characters long.
func IsStructurallyValid(s string) bool {
	return structuralRegex.MatchString(s)
}

// IsNoise reports whether s looks like a URL, a domain or a known corpus
// artifact rather than a password. Matching is case-insensitive.
func IsNoise(s string) bool {
	return noiseRegex.MatchString(s)
}

// HasWhitespace reports whether s contains any whitespace character.
func HasWhitespace(s string) bool {
	for _, r := range s {
		if unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

// IsPasswordLike reports whether s is 8 to 63 characters drawn only from
// ASCII letters, digits and common punctuation.
func IsPasswordLike(s string) bool {
	return passwordLikeRegex.MatchString(s)
}

// IsPIN reports whether s is a 4 or 6 digit PIN.
func IsPIN(s string) bool {
	return pinRegex.MatchString(s)
}

// IsCompliant reports whether s passes every compliance rule. Any non-ASCII
// character fails the structural rule and therefore the whole pass.
func IsCompliant(s string) bool {
	for _, rule := range complianceRules {
		if !rule.Match(s) {
			return false
		}
	}
	return true
}

// FailedRules returns the names of the compliance rules s does not satisfy,
// in evaluation order. It is empty for a compliant candidate.
func FailedRules(s string) []string {
	var failed []string
	for _, rule := range complianceRules {
		if !rule.Match(s) {
			failed = append(failed, rule.Name)
		}
	}
	return failed
}

// ClassesOf returns the character-class flags of s.
func ClassesOf(s string) config.Classes {
	return config.Classes{
		Upper:   upperRegex.MatchString(s),
		Lower:   lowerRegex.MatchString(s),
		Digit:   digitRegex.MatchString(s),
		Special: specialRegex.MatchString(s),
	}
}

// Compliant returns the records of batch that pass the compliance rules, in
// their original order. The input slice is not modified.
func Compliant(batch []config.Record) []config.Record {
	out := make([]config.Record, 0, len(batch))
	for _, r := range batch {
		if IsCompliant(r.Text) {
			out = append(out, r)
		}
	}
	return out
}

// MinEntropy returns the records whose entropy is at least threshold.
func MinEntropy(batch []config.Record, threshold float64) []config.Record {
	out := make([]config.Record, 0, len(batch))
	for _, r := range batch {
		if r.Entropy >= threshold {
			out = append(out, r)
		}
	}
	return out
}
