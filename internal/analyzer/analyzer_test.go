package analyzer

import (
	"math"
	"strings"
	"testing"

	"github.com/bimmerbailey/refinery/internal/config"
)

func approxEqual(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-6*math.Max(math.Abs(a), math.Abs(b))
}

func TestEntropy(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"empty string", "", 0},
		{"single repeated character", "aaaaa", 0},
		{"single character", "x", 0},
		{"two symbols", "ab", 1},
		{"four symbols", "abcd", 2},
		{"two symbols repeated", "aaaabbbb", 1},
		{"three symbols", "abc", math.Log2(3)},
		{"eight symbols", "abcdefgh", 3},
		{"code points not bytes", "éé", 0},
		{"two multibyte symbols", "éè", 1},
		{"skewed distribution", "aaab", 0.8112781244591328},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Entropy(tt.input)
			if !approxEqual(got, tt.want) {
				t.Errorf("Entropy(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got < 0 {
				t.Errorf("Entropy(%q) is negative: %v", tt.input, got)
			}
		})
	}
}

func TestEntropyUniformAlphabet(t *testing.T) {
	alphabet := "abcdefghijklmnopqrstuvwxyz0123456789"
	for k := 1; k <= len(alphabet); k++ {
		s := strings.Repeat(alphabet[:k], 3)
		want := math.Log2(float64(k))
		if got := Entropy(s); !approxEqual(got, want) {
			t.Errorf("k=%d: Entropy(%q) = %v, want %v", k, s, got, want)
		}
	}
}

func TestEntropyAllMatchesScalar(t *testing.T) {
	inputs := []string{"password", "123456", "short", "Tr0ub4dor&3", "cafébabe", ""}
	batch := make([]config.Record, len(inputs))
	for i, s := range inputs {
		batch[i] = config.Record{Text: s, Entropy: -1}
	}

	EntropyAll(batch)

	if len(batch) != len(inputs) {
		t.Fatalf("EntropyAll() changed batch length to %d, want %d", len(batch), len(inputs))
	}
	for i, s := range inputs {
		if batch[i].Text != s {
			t.Errorf("record %d text = %q, want %q", i, batch[i].Text, s)
		}
		if want := Entropy(s); !approxEqual(batch[i].Entropy, want) {
			t.Errorf("EntropyAll() record %d entropy = %v, want %v", i, batch[i].Entropy, want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		entropy float64
		want    config.Strength
	}{
		{math.Inf(-1), config.StrengthVeryWeak},
		{-1, config.StrengthVeryWeak},
		{0, config.StrengthVeryWeak},
		{2.49, config.StrengthVeryWeak},
		{2.499, config.StrengthVeryWeak},
		{2.5, config.StrengthWeak},
		{3.49, config.StrengthWeak},
		{3.5, config.StrengthModerate},
		{4.49, config.StrengthModerate},
		{4.5, config.StrengthStrong},
		{10, config.StrengthStrong},
		{math.Inf(1), config.StrengthStrong},
		{math.NaN(), config.StrengthVeryWeak},
	}

	for _, tt := range tests {
		if got := Classify(tt.entropy); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.entropy, got, tt.want)
		}
	}
}

func TestAccumulator(t *testing.T) {
	acc := NewAccumulator()
	acc.Add([]config.Record{{Text: "password"}, {Text: "123456"}})
	acc.Add([]config.Record{{Text: "Tr0ub4dor&3"}, {Text: "aaaaaaaa"}, {Text: "1234"}})

	stats := acc.Stats()

	if stats.TotalCandidates != 5 {
		t.Errorf("TotalCandidates = %d, want 5", stats.TotalCandidates)
	}
	if stats.PINCount != 2 {
		t.Errorf("PINCount = %d, want 2", stats.PINCount)
	}
	if stats.CompliantCount != 3 {
		t.Errorf("CompliantCount = %d, want 3 (password, Tr0ub4dor&3, aaaaaaaa)", stats.CompliantCount)
	}
	if stats.MinEntropy != 0 {
		t.Errorf("MinEntropy = %v, want 0", stats.MinEntropy)
	}
	if stats.MinLength != 4 || stats.MaxLength != 11 {
		t.Errorf("length range = [%d, %d], want [4, 11]", stats.MinLength, stats.MaxLength)
	}
	if stats.DigitCount != 3 || stats.UpperCount != 1 || stats.SpecialCount != 1 || stats.LowerCount != 3 {
		t.Errorf("class counts = upper %d lower %d digit %d special %d",
			stats.UpperCount, stats.LowerCount, stats.DigitCount, stats.SpecialCount)
	}

	sum := 0
	for _, n := range stats.StrengthCounts {
		sum += n
	}
	if sum != 5 {
		t.Errorf("strength counts sum to %d, want 5", sum)
	}
	if stats.StrengthCounts[config.StrengthVeryWeak] < 1 {
		t.Errorf("expected aaaaaaaa to count as very weak, got %v", stats.StrengthCounts)
	}
	if !approxEqual(stats.ComplianceRate, 0.6) {
		t.Errorf("ComplianceRate = %v, want 0.6", stats.ComplianceRate)
	}

	wantFailures := map[string]int{"structural": 2, "password_like": 2}
	for name, want := range wantFailures {
		if got := stats.RuleFailures[name]; got != want {
			t.Errorf("RuleFailures[%q] = %d, want %d", name, got, want)
		}
	}
	if stats.RuleFailures["no_noise"] != 0 || stats.RuleFailures["no_whitespace"] != 0 {
		t.Errorf("unexpected rule failures: %v", stats.RuleFailures)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	if stats.TotalCandidates != 0 || stats.MeanEntropy != 0 || len(stats.StrengthCounts) != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}

func TestScoreCandidate(t *testing.T) {
	s := ScoreCandidate("Tr0ub4dor&3")

	if s.Length != 11 {
		t.Errorf("Length = %d, want 11", s.Length)
	}
	if !s.Compliant || !s.Structural || s.PIN {
		t.Errorf("unexpected rule results: %+v", s)
	}
	if s.Strength != Classify(s.Entropy) {
		t.Errorf("Strength = %v, not derived from entropy %v", s.Strength, s.Entropy)
	}
	want := config.Classes{Upper: true, Lower: true, Digit: true, Special: true}
	if s.Classes != want {
		t.Errorf("Classes = %+v, want %+v", s.Classes, want)
	}
	if len(s.FailedRules) != 0 {
		t.Errorf("FailedRules = %v, want none", s.FailedRules)
	}
}

func TestScoreCandidateFailedRules(t *testing.T) {
	s := ScoreCandidate("http://x.org")

	if s.Compliant {
		t.Error("URL candidate should not be compliant")
	}
	if strings.Join(s.FailedRules, ",") != "no_noise" {
		t.Errorf("FailedRules = %v, want [no_noise]", s.FailedRules)
	}
}
