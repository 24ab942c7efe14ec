package shell

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

const (
	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"
)

// ColorPrinter writes diagnostics, in bold red when colour is enabled.
type ColorPrinter struct {
	w      io.Writer
	prefix string
	color  *color.Color
}

// NewColorPrinter creates a printer for w. Mode is one of always, auto or
// never; auto colours only when isTerminal is set.
func NewColorPrinter(w io.Writer, prefix, mode string, isTerminal bool) *ColorPrinter {
	c := color.New(color.FgRed, color.Bold)
	if ShouldColor(mode, isTerminal) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}

	return &ColorPrinter{
		w:      w,
		prefix: prefix,
		color:  c,
	}
}

// ShouldColor reports whether output should be coloured.
func ShouldColor(mode string, isTerminal bool) bool {
	switch mode {
	case ColorNever:
		return false
	case ColorAlways:
		return true
	default:
		return isTerminal
	}
}

// Printf writes one diagnostic line.
func (c *ColorPrinter) Printf(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	fmt.Fprintln(c.w, c.color.Sprintf("%s: %s", c.prefix, msg))
}
