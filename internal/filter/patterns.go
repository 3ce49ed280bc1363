package filter

import (
	"regexp"
)

// Length bounds shared by the structural and password-like rules.
const (
	MinLength = 8
	MaxLength = 63
)

// SpecialChars is the set counted by the special-character class flag.
const SpecialChars = `!@#$%^&*(),.?":{}|<>`

// Patterns compiled once at startup and only read afterwards.
var (
	// 8 to 63 printable ASCII characters, space included.
	structuralRegex = regexp.MustCompile(`^[\x20-\x7E]{8,63}$`)

	// URLs, domains and corpus artifacts such as leak-source names and
	// layout markers.
	noiseRegex = regexp.MustCompile(`(?i)(?:http://|https://|www\.|\.com\b|\.net\b|\.org\b|rockyou|friendster|layout)`)

	// Letters, digits and common symbols only; no space.
	passwordLikeRegex = regexp.MustCompile("^[A-Za-z0-9!@#$%^&*()_\\-+=\\[\\]{};:'\",.<>?/\\\\|~`]{8,63}$")

	// Exactly 4 or 6 ASCII digits.
	pinRegex = regexp.MustCompile(`^(?:[0-9]{4}|[0-9]{6})$`)

	upperRegex   = regexp.MustCompile(`[A-Z]`)
	lowerRegex   = regexp.MustCompile(`[a-z]`)
	digitRegex   = regexp.MustCompile(`[0-9]`)
	specialRegex = regexp.MustCompile(`[` + regexp.QuoteMeta(SpecialChars) + `]`)
)

// Rule is a named predicate over a candidate.
type Rule struct {
	Name        string
	Match       func(string) bool
	Description string
}

// BuiltInRules lists the compliance predicates by name. The compliance pass
// is the conjunction of all of them.
var BuiltInRules = map[string]Rule{
	"structural": {
		Name:        "structural",
		Match:       IsStructurallyValid,
		Description: "8-63 printable ASCII characters",
	},
	"no_noise": {
		Name:        "no_noise",
		Match:       func(s string) bool { return !IsNoise(s) },
		Description: "no URL, domain or corpus artifact",
	},
	"no_whitespace": {
		Name:        "no_whitespace",
		Match:       func(s string) bool { return !HasWhitespace(s) },
		Description: "no whitespace anywhere",
	},
	"password_like": {
		Name:        "password_like",
		Match:       IsPasswordLike,
		Description: "8-63 letters, digits and common symbols",
	},
}

// complianceOrder is the evaluation order of the compliance pass. Cheap
// rules that reject most non-passwords come first.
var complianceOrder = []string{"structural", "no_noise", "no_whitespace", "password_like"}

var complianceRules = func() []Rule {
	rules := make([]Rule, 0, len(complianceOrder))
	for _, name := range complianceOrder {
		rules = append(rules, BuiltInRules[name])
	}
	return rules
}()

// ComplianceRules returns the rules a candidate must all satisfy to pass
// compliance filtering, in evaluation order.
func ComplianceRules() []Rule {
	return append([]Rule(nil), complianceRules...)
}
