// Package output renders refined candidates and reports. Refined batches are
// written in one of four append-only modes (raw list, markdown table, grid
// table, CSV rows); reports are written as text, JSON, table or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bimmerbailey/refinery/internal/analyzer"
	"github.com/bimmerbailey/refinery/internal/config"
	"github.com/bimmerbailey/refinery/internal/filter"
	"gopkg.in/yaml.v3"
)

// Format represents a report format type.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
)

// ParseFormat converts a string to a Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	case "yaml", "yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// Writer handles writing formatted reports.
type Writer struct {
	w      io.Writer
	format Format
	colors *Palette
}

// New creates a new report Writer. Strength labels in text output are
// coloured with colors; a nil palette writes plain text.
func New(w io.Writer, format Format, colors *Palette) *Writer {
	return &Writer{w: w, format: format, colors: colors}
}

// WriteJSON outputs any value as indented JSON.
func (wr *Writer) WriteJSON(v interface{}) error {
	enc := json.NewEncoder(wr.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML outputs any value as YAML.
func (wr *Writer) WriteYAML(v interface{}) error {
	enc := yaml.NewEncoder(wr.w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// WriteScores outputs candidate scores in the configured format.
func (wr *Writer) WriteScores(scores []analyzer.Score) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(scores)
	case FormatYAML:
		return wr.WriteYAML(scores)
	case FormatTable:
		return wr.writeScoreTable(scores)
	default:
		return wr.writeScoreText(scores)
	}
}

func (wr *Writer) writeScoreText(scores []analyzer.Score) error {
	for i, s := range scores {
		if i > 0 {
			fmt.Fprintln(wr.w)
		}
		fmt.Fprintf(wr.w, "Candidate: %s\n", s.Text)
		fmt.Fprintf(wr.w, "  Length:    %d\n", s.Length)
		fmt.Fprintf(wr.w, "  Entropy:   %.2f bits\n", s.Entropy)
		fmt.Fprintf(wr.w, "  Strength:  %s\n", wr.colors.Strength(s.Strength))
		fmt.Fprintf(wr.w, "  Classes:   upper=%t lower=%t digit=%t special=%t\n",
			s.Classes.Upper, s.Classes.Lower, s.Classes.Digit, s.Classes.Special)
		fmt.Fprintf(wr.w, "  Printable: %t\n", s.Structural)
		if len(s.FailedRules) > 0 {
			fmt.Fprintf(wr.w, "  Compliant: false (failed: %s)\n", strings.Join(s.FailedRules, ", "))
		} else {
			fmt.Fprintln(wr.w, "  Compliant: true")
		}
		if s.PIN {
			fmt.Fprintln(wr.w, "  PIN-like:  true")
		}
	}
	return nil
}

func (wr *Writer) writeScoreTable(scores []analyzer.Score) error {
	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CANDIDATE\tLEN\tENTROPY\tSTRENGTH\tUPPER\tLOWER\tDIGIT\tSPECIAL\tCOMPLIANT")
	fmt.Fprintln(tw, "---------\t---\t-------\t--------\t-----\t-----\t-----\t-------\t---------")

	for _, s := range scores {
		text := s.Text
		if len(text) > 40 {
			text = text[:37] + "..."
		}
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%s\t%t\t%t\t%t\t%t\t%t\n",
			text, s.Length, s.Entropy, s.Strength,
			s.Classes.Upper, s.Classes.Lower, s.Classes.Digit, s.Classes.Special, s.Compliant)
	}

	return tw.Flush()
}

// WriteStats outputs aggregate wordlist statistics in the configured format.
func (wr *Writer) WriteStats(stats analyzer.Stats) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(stats)
	case FormatYAML:
		return wr.WriteYAML(stats)
	case FormatTable:
		return wr.writeStatsTable(stats)
	default:
		return wr.writeStatsText(stats)
	}
}

func (wr *Writer) writeStatsText(stats analyzer.Stats) error {
	if len(stats.Sources) > 0 {
		fmt.Fprintf(wr.w, "Sources: %s\n", strings.Join(stats.Sources, ", "))
	}
	fmt.Fprintf(wr.w, "Total Candidates: %d\n", stats.TotalCandidates)
	if stats.TotalCandidates == 0 {
		return nil
	}

	fmt.Fprintf(wr.w, "Length Range: %d - %d\n", stats.MinLength, stats.MaxLength)
	fmt.Fprintf(wr.w, "Entropy: mean %.2f, min %.2f, max %.2f\n", stats.MeanEntropy, stats.MinEntropy, stats.MaxEntropy)

	fmt.Fprintln(wr.w, "\nStrength Distribution:")
	for _, s := range config.Strengths() {
		count := stats.StrengthCounts[s]
		fmt.Fprintf(wr.w, "  %s: %d (%s)\n", wr.colors.Strength(s), count, percent(count, stats.TotalCandidates))
	}

	fmt.Fprintln(wr.w, "\nCharacter Classes:")
	fmt.Fprintf(wr.w, "  Upper:   %d\n", stats.UpperCount)
	fmt.Fprintf(wr.w, "  Lower:   %d\n", stats.LowerCount)
	fmt.Fprintf(wr.w, "  Digit:   %d\n", stats.DigitCount)
	fmt.Fprintf(wr.w, "  Special: %d\n", stats.SpecialCount)

	fmt.Fprintln(wr.w, "\nRules:")
	fmt.Fprintf(wr.w, "  Printable ASCII (8-63): %d\n", stats.StructuralCount)
	fmt.Fprintf(wr.w, "  WPA2 Compliant:         %d\n", stats.CompliantCount)
	fmt.Fprintf(wr.w, "  PIN-like:               %d\n", stats.PINCount)
	fmt.Fprintf(wr.w, "Compliance Rate: %.2f%%\n", stats.ComplianceRate*100)

	fmt.Fprintln(wr.w, "\nCompliance Failures:")
	for _, rule := range filter.ComplianceRules() {
		fmt.Fprintf(wr.w, "  %-14s %d  (%s)\n", rule.Name+":", stats.RuleFailures[rule.Name], rule.Description)
	}
	return nil
}

func (wr *Writer) writeStatsTable(stats analyzer.Stats) error {
	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tVALUE")
	fmt.Fprintln(tw, "------\t-----")
	fmt.Fprintf(tw, "total_candidates\t%d\n", stats.TotalCandidates)
	fmt.Fprintf(tw, "min_length\t%d\n", stats.MinLength)
	fmt.Fprintf(tw, "max_length\t%d\n", stats.MaxLength)
	fmt.Fprintf(tw, "mean_entropy\t%.2f\n", stats.MeanEntropy)
	fmt.Fprintf(tw, "min_entropy\t%.2f\n", stats.MinEntropy)
	fmt.Fprintf(tw, "max_entropy\t%.2f\n", stats.MaxEntropy)
	for _, s := range config.Strengths() {
		fmt.Fprintf(tw, "strength[%s]\t%d\n", s, stats.StrengthCounts[s])
	}
	fmt.Fprintf(tw, "has_upper\t%d\n", stats.UpperCount)
	fmt.Fprintf(tw, "has_lower\t%d\n", stats.LowerCount)
	fmt.Fprintf(tw, "has_digit\t%d\n", stats.DigitCount)
	fmt.Fprintf(tw, "has_special\t%d\n", stats.SpecialCount)
	fmt.Fprintf(tw, "structurally_valid\t%d\n", stats.StructuralCount)
	fmt.Fprintf(tw, "compliant\t%d\n", stats.CompliantCount)
	fmt.Fprintf(tw, "pin_like\t%d\n", stats.PINCount)
	fmt.Fprintf(tw, "compliance_rate\t%.2f%%\n", stats.ComplianceRate*100)
	for _, rule := range filter.ComplianceRules() {
		fmt.Fprintf(tw, "failed[%s]\t%d\n", rule.Name, stats.RuleFailures[rule.Name])
	}
	return tw.Flush()
}

func percent(n, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(n)/float64(total)*100)
}
