package filter

import (
	"strings"
	"testing"

	"github.com/bimmerbailey/refinery/internal/config"
)

func TestIsCompliantBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"7 chars too short", strings.Repeat("a", 7), false},
		{"8 chars minimum", strings.Repeat("a", 8), true},
		{"63 chars maximum", strings.Repeat("a", 63), true},
		{"64 chars too long", strings.Repeat("a", 64), false},
		{"non-ASCII", "cafeébabe", false},
		{"non-ASCII long", "pässwörd-mit-umlauten", false},
		{"lowercase word", "password", true},
		{"mixed with symbols", "Tr0ub4dor&3", true},
		{"short PIN", "123456", false},
		{"too short", "short", false},
		{"space inside", "pass word1", false},
		{"tab inside", "pass\tword1", false},
		{"url", "http://example", false},
		{"https url", "HTTPS://secure", false},
		{"www prefix", "www.example", false},
		{"dot com", "mysite.com", false},
		{"dot net mid", "mysite.net!x", false},
		{"dot org upper", "charity.ORG", false},
		{"dot com not word bounded", "passw.comedy", true},
		{"leak source", "RockYou2009", false},
		{"leak source lowercase", "friendster1", false},
		{"layout marker", "mylayout99", false},
		{"symbol outside password-like set", "password\x7f", false},
		{"printable but not password-like", "pass word", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCompliant(tt.input); got != tt.want {
				t.Errorf("IsCompliant(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestStructuralAndPasswordLikeDiffer(t *testing.T) {
	// Space is printable ASCII but not password-like.
	s := "correct horse"
	if !IsStructurallyValid(s) {
		t.Errorf("IsStructurallyValid(%q) = false, want true", s)
	}
	if IsPasswordLike(s) {
		t.Errorf("IsPasswordLike(%q) = true, want false", s)
	}
	if IsCompliant(s) {
		t.Errorf("IsCompliant(%q) = true, want false", s)
	}
}

func TestHasWhitespace(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"nospace", false},
		{"a b", true},
		{"a\tb", true},
		{"a\u2003b", true},
		{"", false},
	}

	for _, tt := range tests {
		if got := HasWhitespace(tt.input); got != tt.want {
			t.Errorf("HasWhitespace(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsPIN(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1234", true},
		{"123456", true},
		{"12345", false},
		{"1234567", false},
		{"12a4", false},
	}

	for _, tt := range tests {
		if got := IsPIN(tt.input); got != tt.want {
			t.Errorf("IsPIN(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestClassesOf(t *testing.T) {
	tests := []struct {
		input string
		want  config.Classes
	}{
		{"ABC", config.Classes{Upper: true}},
		{"abc", config.Classes{Lower: true}},
		{"123456", config.Classes{Digit: true}},
		{"!!!", config.Classes{Special: true}},
		{"Aa1!", config.Classes{Upper: true, Lower: true, Digit: true, Special: true}},
		{"Tr0ub4dor&3", config.Classes{Upper: true, Lower: true, Digit: true, Special: true}},
		{"under_score", config.Classes{Lower: true}},
		{"", config.Classes{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ClassesOf(tt.input); got != tt.want {
				t.Errorf("ClassesOf(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCompliantPreservesOrder(t *testing.T) {
	batch := []config.Record{
		{Text: "password"},
		{Text: "123456"},
		{Text: "short"},
		{Text: "Tr0ub4dor&3"},
		{Text: "cafébabe"},
	}

	got := Compliant(batch)

	want := []string{"password", "Tr0ub4dor&3"}
	if len(got) != len(want) {
		t.Fatalf("Compliant() returned %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Text != want[i] {
			t.Errorf("record %d = %q, want %q", i, got[i].Text, want[i])
		}
	}
	if len(batch) != 5 {
		t.Errorf("input batch was modified")
	}
}

func TestMinEntropy(t *testing.T) {
	batch := []config.Record{
		{Text: "a", Entropy: 0},
		{Text: "b", Entropy: 2.0},
		{Text: "c", Entropy: 2.5},
		{Text: "d", Entropy: 3.1},
	}

	got := MinEntropy(batch, 2.5)
	if len(got) != 2 || got[0].Text != "c" || got[1].Text != "d" {
		t.Errorf("MinEntropy() = %+v, want records c and d", got)
	}
}

func TestComplianceRulesMatchIsCompliant(t *testing.T) {
	inputs := []string{"password", "pass word", "www.example", "Tr0ub4dor&3", "aaaaaaa", "cafébabe"}
	for _, s := range inputs {
		all := true
		for _, rule := range ComplianceRules() {
			if !rule.Match(s) {
				all = false
			}
		}
		if all != IsCompliant(s) {
			t.Errorf("rules disagree with IsCompliant for %q", s)
		}
	}
}

func TestFailedRules(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Tr0ub4dor&3", nil},
		{"short", []string{"structural", "password_like"}},
		{"pass word1", []string{"no_whitespace", "password_like"}},
		{"www.rockyou.com", []string{"no_noise"}},
		{"cafébabe", []string{"structural", "password_like"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := FailedRules(tt.input)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("FailedRules(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if IsCompliant(tt.input) != (len(got) == 0) {
				t.Errorf("IsCompliant(%q) disagrees with FailedRules %v", tt.input, got)
			}
		})
	}
}

func TestComplianceRulesOrder(t *testing.T) {
	rules := ComplianceRules()
	var names []string
	for _, r := range rules {
		names = append(names, r.Name)
		if r.Description == "" {
			t.Errorf("rule %q has no description", r.Name)
		}
	}
	if strings.Join(names, ",") != "structural,no_noise,no_whitespace,password_like" {
		t.Errorf("ComplianceRules() order = %v", names)
	}
	if len(rules) != len(BuiltInRules) {
		t.Errorf("compliance pass uses %d of %d built-in rules", len(rules), len(BuiltInRules))
	}

	rules[0] = Rule{Name: "mutated"}
	if ComplianceRules()[0].Name != "structural" {
		t.Error("ComplianceRules() must return a copy")
	}
}

func TestSpecialCharsDriveClassFlag(t *testing.T) {
	for _, r := range SpecialChars {
		if !ClassesOf(string(r)).Special {
			t.Errorf("ClassesOf(%q).Special = false, want true", r)
		}
	}
	for _, s := range []string{"_", "-", "~", "a", "1", " "} {
		if ClassesOf(s).Special {
			t.Errorf("ClassesOf(%q).Special = true, want false", s)
		}
	}
}
