package analyzer

import (
	"math"
	"unicode/utf8"

	"github.com/bimmerbailey/refinery/internal/config"
	"github.com/bimmerbailey/refinery/internal/filter"
)

// Stats holds aggregate statistics for the candidates of one or more
// wordlists.
type Stats struct {
	Sources         []string                `json:"sources,omitempty" yaml:"sources,omitempty"`
	TotalCandidates int                     `json:"total_candidates" yaml:"total_candidates"`
	StrengthCounts  map[config.Strength]int `json:"strength_counts" yaml:"strength_counts"`
	MeanEntropy     float64                 `json:"mean_entropy" yaml:"mean_entropy"`
	MinEntropy      float64                 `json:"min_entropy" yaml:"min_entropy"`
	MaxEntropy      float64                 `json:"max_entropy" yaml:"max_entropy"`
	MinLength       int                     `json:"min_length" yaml:"min_length"`
	MaxLength       int                     `json:"max_length" yaml:"max_length"`
	UpperCount      int                     `json:"has_upper" yaml:"has_upper"`
	LowerCount      int                     `json:"has_lower" yaml:"has_lower"`
	DigitCount      int                     `json:"has_digit" yaml:"has_digit"`
	SpecialCount    int                     `json:"has_special" yaml:"has_special"`
	StructuralCount int                     `json:"structurally_valid" yaml:"structurally_valid"`
	CompliantCount  int                     `json:"compliant" yaml:"compliant"`
	PINCount        int                     `json:"pin_like" yaml:"pin_like"`
	ComplianceRate  float64                 `json:"compliance_rate" yaml:"compliance_rate"`
	RuleFailures    map[string]int          `json:"rule_failures" yaml:"rule_failures"` // candidates failing each compliance rule
}

// Accumulator folds batches into Stats without retaining candidates, so
// memory stays bounded by the batch size.
type Accumulator struct {
	stats      Stats
	entropySum float64
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		stats: Stats{
			StrengthCounts: make(map[config.Strength]int),
			RuleFailures:   make(map[string]int),
		},
	}
}

// Add folds a batch of records into the running statistics.
func (a *Accumulator) Add(batch []config.Record) {
	s := &a.stats
	for _, r := range batch {
		e := Entropy(r.Text)
		length := utf8.RuneCountInString(r.Text)

		if s.TotalCandidates == 0 {
			s.MinEntropy, s.MaxEntropy = e, e
			s.MinLength, s.MaxLength = length, length
		} else {
			s.MinEntropy = math.Min(s.MinEntropy, e)
			s.MaxEntropy = math.Max(s.MaxEntropy, e)
			s.MinLength = min(s.MinLength, length)
			s.MaxLength = max(s.MaxLength, length)
		}
		s.TotalCandidates++
		a.entropySum += e

		s.StrengthCounts[Classify(e)]++

		c := filter.ClassesOf(r.Text)
		if c.Upper {
			s.UpperCount++
		}
		if c.Lower {
			s.LowerCount++
		}
		if c.Digit {
			s.DigitCount++
		}
		if c.Special {
			s.SpecialCount++
		}

		if filter.IsStructurallyValid(r.Text) {
			s.StructuralCount++
		}
		failed := filter.FailedRules(r.Text)
		if len(failed) == 0 {
			s.CompliantCount++
		}
		for _, name := range failed {
			s.RuleFailures[name]++
		}
		if filter.IsPIN(r.Text) {
			s.PINCount++
		}
	}
}

// Stats returns a snapshot of the statistics gathered so far.
func (a *Accumulator) Stats() Stats {
	out := a.stats
	out.StrengthCounts = make(map[config.Strength]int, len(a.stats.StrengthCounts))
	for k, v := range a.stats.StrengthCounts {
		out.StrengthCounts[k] = v
	}
	out.RuleFailures = make(map[string]int, len(a.stats.RuleFailures))
	for k, v := range a.stats.RuleFailures {
		out.RuleFailures[k] = v
	}
	if out.TotalCandidates > 0 {
		out.MeanEntropy = a.entropySum / float64(out.TotalCandidates)
		out.ComplianceRate = float64(out.CompliantCount) / float64(out.TotalCandidates)
	}
	return out
}

// ComputeStats calculates aggregate statistics for a set of records.
func ComputeStats(records []config.Record) Stats {
	acc := NewAccumulator()
	acc.Add(records)
	return acc.Stats()
}

// Score is the full report for a single candidate.
type Score struct {
	Text        string          `json:"password" yaml:"password"`
	Length      int             `json:"length" yaml:"length"`
	Entropy     float64         `json:"entropy" yaml:"entropy"`
	Strength    config.Strength `json:"strength" yaml:"strength"`
	Classes     config.Classes  `json:"classes" yaml:"classes"`
	Structural  bool            `json:"structurally_valid" yaml:"structurally_valid"`
	Compliant   bool            `json:"compliant" yaml:"compliant"`
	PIN         bool            `json:"pin_like" yaml:"pin_like"`
	FailedRules []string        `json:"failed_rules,omitempty" yaml:"failed_rules,omitempty"`
}

// ScoreCandidate evaluates a single candidate against every rule.
func ScoreCandidate(s string) Score {
	e := Entropy(s)
	score := Score{
		Text:       s,
		Length:     utf8.RuneCountInString(s),
		Entropy:    e,
		Strength:   Classify(e),
		Classes:    filter.ClassesOf(s),
		Structural: filter.IsStructurallyValid(s),
		PIN:        filter.IsPIN(s),
	}
	score.FailedRules = filter.FailedRules(s)
	score.Compliant = len(score.FailedRules) == 0
	return score
}
