package output

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bimmerbailey/refinery/internal/config"
)

// Mode selects how refined batches are rendered.
type Mode int

const (
	ModeRaw      Mode = iota // one candidate per line
	ModeMarkdown             // markdown table per batch
	ModeGrid                 // bordered human-readable table per batch
	ModeCSV                  // delimited rows, header once per run
)

// String returns the name of a Mode.
func (m Mode) String() string {
	switch m {
	case ModeRaw:
		return "raw"
	case ModeMarkdown:
		return "markdown"
	case ModeGrid:
		return "grid"
	case ModeCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// Columns is the fixed column order shared by every annotated mode.
var Columns = []string{"password", "entropy", "strength", "has_upper", "has_lower", "has_digit", "has_special"}

// Check and cross glyphs used for flags in grid tables.
const (
	glyphYes = "✓"
	glyphNo  = "✗"
)

// RecordWriter appends refined batches to a destination. It never seeks or
// rewrites what has already been written.
type RecordWriter struct {
	w    *bufio.Writer
	mode Mode
}

// NewRecordWriter creates a RecordWriter for the given mode.
func NewRecordWriter(w io.Writer, mode Mode) *RecordWriter {
	return &RecordWriter{w: bufio.NewWriter(w), mode: mode}
}

// WriteBatch renders one batch and flushes it to the destination. first
// marks the first write of the run: the CSV header is only emitted then, and
// markdown blocks after the first are preceded by a blank line.
func (rw *RecordWriter) WriteBatch(records []config.Record, first bool) error {
	if len(records) == 0 {
		return nil
	}

	var err error
	switch rw.mode {
	case ModeMarkdown:
		err = rw.writeMarkdown(records, first)
	case ModeGrid:
		err = rw.writeGrid(records)
	case ModeCSV:
		err = rw.writeCSV(records, first)
	default:
		err = rw.writeRaw(records)
	}
	if err != nil {
		return err
	}
	return rw.w.Flush()
}

func (rw *RecordWriter) writeRaw(records []config.Record) error {
	for _, r := range records {
		if _, err := rw.w.WriteString(r.Text); err != nil {
			return err
		}
		if err := rw.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

func (rw *RecordWriter) writeCSV(records []config.Record, first bool) error {
	cw := csv.NewWriter(rw.w)
	if first {
		if err := cw.Write(Columns); err != nil {
			return err
		}
	}
	for _, r := range records {
		if err := cw.Write(recordFields(r, strconv.FormatBool)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (rw *RecordWriter) writeMarkdown(records []config.Record, first bool) error {
	if !first {
		if err := rw.w.WriteByte('\n'); err != nil {
			return err
		}
	}

	writeRow := func(cells []string) error {
		_, err := fmt.Fprintf(rw.w, "| %s |\n", strings.Join(cells, " | "))
		return err
	}

	if err := writeRow(Columns); err != nil {
		return err
	}
	sep := make([]string, len(Columns))
	for i := range sep {
		sep[i] = "---"
	}
	sep[1] = "---:"
	if err := writeRow(sep); err != nil {
		return err
	}

	for _, r := range records {
		cells := recordFields(r, strconv.FormatBool)
		cells[0] = escapeMarkdown(cells[0])
		if err := writeRow(cells); err != nil {
			return err
		}
	}
	return nil
}

func (rw *RecordWriter) writeGrid(records []config.Record) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, recordFields(r, glyph))
	}

	widths := make([]int, len(Columns))
	for i, c := range Columns {
		widths[i] = utf8.RuneCountInString(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	border := func(fill string) string {
		var b strings.Builder
		b.WriteString("+")
		for _, w := range widths {
			b.WriteString(strings.Repeat(fill, w+2))
			b.WriteString("+")
		}
		b.WriteString("\n")
		return b.String()
	}
	line := func(cells []string) string {
		var b strings.Builder
		b.WriteString("|")
		for i, cell := range cells {
			pad := widths[i] - utf8.RuneCountInString(cell)
			b.WriteString(" ")
			if i == 1 {
				b.WriteString(strings.Repeat(" ", pad))
				b.WriteString(cell)
			} else {
				b.WriteString(cell)
				b.WriteString(strings.Repeat(" ", pad))
			}
			b.WriteString(" |")
		}
		b.WriteString("\n")
		return b.String()
	}

	if _, err := rw.w.WriteString(border("-") + line(Columns) + border("=")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := rw.w.WriteString(line(row) + border("-")); err != nil {
			return err
		}
	}
	return nil
}

// recordFields returns the cells of r in column order, rendering flags with
// flag.
func recordFields(r config.Record, flag func(bool) string) []string {
	return []string{
		r.Text,
		strconv.FormatFloat(r.Entropy, 'f', 2, 64),
		r.Strength.String(),
		flag(r.Classes.Upper),
		flag(r.Classes.Lower),
		flag(r.Classes.Digit),
		flag(r.Classes.Special),
	}
}

func glyph(b bool) string {
	if b {
		return glyphYes
	}
	return glyphNo
}

// escapeMarkdown keeps pipes and backslashes in candidates from breaking
// table cells.
func escapeMarkdown(s string) string {
	return strings.NewReplacer(`\`, `\\`, "|", `\|`).Replace(s)
}
