// Package config provides configuration types and helpers for refinery.
package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Defaults for a refine run.
const (
	DefaultBatchSize = 100_000
	DefaultOutput    = "refined_list.txt"
	DefaultEncoding  = "utf-8"
)

// Config holds the application-wide configuration.
type Config struct {
	Format  string       `mapstructure:"format"`
	Verbose bool         `mapstructure:"verbose"`
	NoColor bool         `mapstructure:"no_color"`
	Refine  RefineConfig `mapstructure:"refine"`
}

// RefineConfig holds the options of a single refine run. Once validated it
// is treated as read-only for the whole run.
type RefineConfig struct {
	Output     string  `mapstructure:"output"`
	MinEntropy float64 `mapstructure:"min_entropy"` // 0 disables the threshold
	Compliant  bool    `mapstructure:"compliant"`
	BatchSize  int     `mapstructure:"batch_size"`
	Metadata   bool    `mapstructure:"metadata"`
	Markdown   bool    `mapstructure:"markdown"` // only meaningful with Metadata
	Encoding   string  `mapstructure:"encoding"`
}

// DefaultRefineConfig returns the options used when nothing is configured.
func DefaultRefineConfig() RefineConfig {
	return RefineConfig{
		Output:    DefaultOutput,
		BatchSize: DefaultBatchSize,
		Encoding:  DefaultEncoding,
	}
}

// Validate reports the first invalid option.
func (c RefineConfig) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.MinEntropy < 0 {
		return fmt.Errorf("minimum entropy must not be negative, got %g", c.MinEntropy)
	}
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("output path is empty")
	}
	return nil
}

// Strength is the ordinal strength label derived from a candidate's entropy.
type Strength int

const (
	StrengthVeryWeak Strength = iota
	StrengthWeak
	StrengthModerate
	StrengthStrong
)

// String returns the display label of a Strength.
func (s Strength) String() string {
	switch s {
	case StrengthVeryWeak:
		return "Very Weak"
	case StrengthWeak:
		return "Weak"
	case StrengthModerate:
		return "Moderate"
	case StrengthStrong:
		return "Strong"
	default:
		return "Unknown"
	}
}

// MarshalJSON implements json.Marshaler for Strength.
func (s Strength) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler for Strength.
func (s *Strength) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	return s.UnmarshalText([]byte(str))
}

// MarshalText implements encoding.TextMarshaler so strengths can be used as
// map keys in JSON and YAML output.
func (s Strength) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strength) UnmarshalText(text []byte) error {
	v, ok := ParseStrength(string(text))
	if !ok {
		return fmt.Errorf("unknown strength %q", text)
	}
	*s = v
	return nil
}

// ParseStrength converts a label to a Strength. Case, spaces, dashes and
// underscores are ignored, so "very weak", "Very-Weak" and "VERY_WEAK" all
// parse.
func ParseStrength(s string) (Strength, bool) {
	key := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(s))
	switch key {
	case "veryweak":
		return StrengthVeryWeak, true
	case "weak":
		return StrengthWeak, true
	case "moderate":
		return StrengthModerate, true
	case "strong":
		return StrengthStrong, true
	default:
		return StrengthVeryWeak, false
	}
}

// Strengths lists every label from weakest to strongest.
func Strengths() []Strength {
	return []Strength{StrengthVeryWeak, StrengthWeak, StrengthModerate, StrengthStrong}
}

// Classes holds the character-class flags of a candidate.
type Classes struct {
	Upper   bool `json:"has_upper" yaml:"has_upper"`
	Lower   bool `json:"has_lower" yaml:"has_lower"`
	Digit   bool `json:"has_digit" yaml:"has_digit"`
	Special bool `json:"has_special" yaml:"has_special"`
}

// Record is a single candidate read from a wordlist together with the
// fields derived from it. Classes and Strength are only meaningful when
// Annotated is set.
type Record struct {
	Text      string   `json:"password"`
	Line      int      `json:"line"`
	Entropy   float64  `json:"entropy"`
	Annotated bool     `json:"-"`
	Classes   Classes  `json:"classes"`
	Strength  Strength `json:"strength"`
}
