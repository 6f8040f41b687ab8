package utils

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
)

// DiagnosticLevel represents the level of diagnostic output
type DiagnosticLevel int

const (
	DiagnosticSilent DiagnosticLevel = iota
	DiagnosticError
	DiagnosticWarn
	DiagnosticInfo
	DiagnosticVerbose
	DiagnosticDebug
)

// DiagnosticSystem provides structured, user-friendly output
type DiagnosticSystem struct {
	level    DiagnosticLevel
	showTime bool
	output   io.Writer
	errorOut io.Writer
	indent   int

	red, yellow, blue, green, gray, magenta, cyan *color.Color
}

// NewDiagnosticSystem creates a diagnostic system writing to stdout and stderr.
func NewDiagnosticSystem(level DiagnosticLevel) *DiagnosticSystem {
	return NewDiagnosticSystemWithWriters(level, os.Stdout, os.Stderr, shouldUseColors())
}

// NewDiagnosticSystemWithWriters creates a diagnostic system on the given writers.
func NewDiagnosticSystemWithWriters(level DiagnosticLevel, out, errOut io.Writer, useColors bool) *DiagnosticSystem {
	d := &DiagnosticSystem{
		level:    level,
		showTime: level >= DiagnosticDebug,
		output:   out,
		errorOut: errOut,
		red:      color.New(color.FgRed),
		yellow:   color.New(color.FgYellow),
		blue:     color.New(color.FgBlue),
		green:    color.New(color.FgGreen),
		gray:     color.New(color.FgHiBlack),
		magenta:  color.New(color.FgMagenta),
		cyan:     color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{d.red, d.yellow, d.blue, d.green, d.gray, d.magenta, d.cyan} {
		if useColors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return d
}

// Level returns the configured level.
func (d *DiagnosticSystem) Level() DiagnosticLevel {
	return d.level
}

// Error outputs error messages (always shown unless silent)
func (d *DiagnosticSystem) Error(format string, args ...any) {
	if d.level >= DiagnosticError {
		d.writeMessage(d.errorOut, "ERROR", d.red, format, args...)
	}
}

// Warn outputs warning messages
func (d *DiagnosticSystem) Warn(format string, args ...any) {
	if d.level >= DiagnosticWarn {
		d.writeMessage(d.output, "WARN", d.yellow, format, args...)
	}
}

// Info outputs informational messages
func (d *DiagnosticSystem) Info(format string, args ...any) {
	if d.level >= DiagnosticInfo {
		d.writeMessage(d.output, "INFO", d.blue, format, args...)
	}
}

// Verbose outputs detailed messages (verbose mode only)
func (d *DiagnosticSystem) Verbose(format string, args ...any) {
	if d.level >= DiagnosticVerbose {
		d.writeMessage(d.output, "VERBOSE", d.gray, format, args...)
	}
}

// Debug outputs debug messages (highest verbosity)
func (d *DiagnosticSystem) Debug(format string, args ...any) {
	if d.level >= DiagnosticDebug {
		d.writeMessage(d.output, "DEBUG", d.magenta, format, args...)
	}
}

// Header outputs the tool banner line.
func (d *DiagnosticSystem) Header(message string) {
	if d.level >= DiagnosticInfo {
		d.cyan.Fprintf(d.output, "Relay: %s\n", message)
	}
}

// PhaseHeader outputs a phase header
func (d *DiagnosticSystem) PhaseHeader(phase string) {
	if d.level >= DiagnosticInfo {
		d.blue.Fprintf(d.output, "%s:\n", phase)
	}
}

// PhaseItem outputs a phase item with checkmark
func (d *DiagnosticSystem) PhaseItem(format string, args ...any) {
	if d.level >= DiagnosticInfo {
		d.green.Fprint(d.output, "✓ ")
		fmt.Fprintf(d.output, format+"\n", args...)
	}
}

// PhaseProgress outputs a write step with a pencil and anything else as a list item.
func (d *DiagnosticSystem) PhaseProgress(format string, args ...any) {
	if d.level < DiagnosticInfo {
		return
	}
	message := fmt.Sprintf(format, args...)
	if strings.HasPrefix(message, "Writing") || strings.HasPrefix(message, "Removing") {
		d.magenta.Fprint(d.output, "✏ ")
		fmt.Fprintln(d.output, message)
		return
	}
	fmt.Fprintf(d.output, "- %s\n", message)
}

// List outputs a bulleted list item
func (d *DiagnosticSystem) List(format string, args ...any) {
	if d.level >= DiagnosticInfo {
		fmt.Fprintf(d.output, "%s- %s\n", d.getIndent(), fmt.Sprintf(format, args...))
	}
}

// Indent increases the indentation level
func (d *DiagnosticSystem) Indent() {
	d.indent++
}

// Unindent decreases the indentation level
func (d *DiagnosticSystem) Unindent() {
	if d.indent > 0 {
		d.indent--
	}
}

// Summary outputs a final summary with statistics in key order.
func (d *DiagnosticSystem) Summary(title string, stats map[string]any) {
	if d.level < DiagnosticInfo {
		return
	}
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(d.output, "\n%s\n", title)
	for _, k := range keys {
		fmt.Fprintf(d.output, "   %s: %v\n", k, stats[k])
	}
	fmt.Fprintln(d.output)
}

// GenerationComplete outputs the completion message
func (d *DiagnosticSystem) GenerationComplete() {
	if d.level >= DiagnosticInfo {
		fmt.Fprintln(d.output)
		d.green.Fprintln(d.output, "Relay: Generation complete!")
	}
}

func (d *DiagnosticSystem) writeMessage(w io.Writer, level string, c *color.Color, format string, args ...any) {
	var b strings.Builder
	b.WriteString(d.getIndent())
	if d.showTime {
		b.WriteString(time.Now().Format("15:04:05 "))
	}
	b.WriteString(c.Sprintf("[%s]", level))
	b.WriteString(" ")
	b.WriteString(fmt.Sprintf(format, args...))
	b.WriteString("\n")
	fmt.Fprint(w, b.String())
}

func (d *DiagnosticSystem) getIndent() string {
	return strings.Repeat("  ", d.indent)
}

// shouldUseColors determines if colors should be used
func shouldUseColors() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	return !color.NoColor
}
