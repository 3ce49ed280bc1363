package output

import (
	"os"

	"github.com/bimmerbailey/refinery/internal/config"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// ColorMode determines when to use colored output.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // Auto-detect based on TTY
	ColorAlways                  // Always use colors
	ColorNever                   // Never use colors
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// shouldColorize determines if output should be colorized based on mode and TTY detection.
func shouldColorize(mode ColorMode, w interface{}) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	case ColorAuto:
		if f, ok := w.(*os.File); ok {
			return isTerminal(f)
		}
		return false
	}
	return false
}

// Palette colours console status lines and strength labels. A nil Palette
// renders plain text.
type Palette struct {
	success *color.Color
	failure *color.Color
	info    *color.Color

	veryWeak, weak, moderate, strong *color.Color
}

// NewPalette creates a Palette for writer w. Colour is enabled according to
// mode, independently of the global color.NoColor setting.
func NewPalette(mode ColorMode, w interface{}) *Palette {
	p := &Palette{
		success:  color.New(color.FgGreen, color.Bold),
		failure:  color.New(color.FgRed, color.Bold),
		info:     color.New(color.FgCyan),
		veryWeak: color.New(color.FgRed),
		weak:     color.New(color.FgYellow),
		moderate: color.New(color.FgBlue),
		strong:   color.New(color.FgGreen),
	}

	enable := shouldColorize(mode, w)
	for _, c := range p.all() {
		if enable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *Palette) all() []*color.Color {
	return []*color.Color{p.success, p.failure, p.info, p.veryWeak, p.weak, p.moderate, p.strong}
}

func sprint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

// Success colours a success message.
func (p *Palette) Success(s string) string {
	if p == nil {
		return s
	}
	return sprint(p.success, s)
}

// Failure colours an error message.
func (p *Palette) Failure(s string) string {
	if p == nil {
		return s
	}
	return sprint(p.failure, s)
}

// Info colours an informational message.
func (p *Palette) Info(s string) string {
	if p == nil {
		return s
	}
	return sprint(p.info, s)
}

// Strength colours a strength label by severity.
func (p *Palette) Strength(s config.Strength) string {
	label := s.String()
	if p == nil {
		return label
	}
	switch s {
	case config.StrengthVeryWeak:
		return sprint(p.veryWeak, label)
	case config.StrengthWeak:
		return sprint(p.weak, label)
	case config.StrengthModerate:
		return sprint(p.moderate, label)
	case config.StrengthStrong:
		return sprint(p.strong, label)
	default:
		return label
	}
}
