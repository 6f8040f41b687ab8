package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/toyz/relay/internal/errors"
)

// DiagnosticReporter prints generator errors with their source location
// and suggestions.
type DiagnosticReporter struct {
	out     io.Writer
	verbose bool
	red     *color.Color
	yellow  *color.Color
	gray    *color.Color
}

// NewDiagnosticReporter creates a reporter writing to stderr.
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return NewDiagnosticReporterWithWriter(os.Stderr, verbose)
}

// NewDiagnosticReporterWithWriter creates a reporter writing to out.
func NewDiagnosticReporterWithWriter(out io.Writer, verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		out:     out,
		verbose: verbose,
		red:     color.New(color.FgRed, color.Bold),
		yellow:  color.New(color.FgYellow),
		gray:    color.New(color.FgHiBlack),
	}
}

// ReportError prints err. Collected errors are printed one by one.
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}
	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) && len(multi.Errors) > 1 {
		r.red.Fprintf(r.out, "%d errors found\n", len(multi.Errors))
		for _, e := range multi.Errors {
			r.report(e)
		}
		return
	}
	r.report(err)
}

func (r *DiagnosticReporter) report(err error) {
	var re errors.RelayError
	if !stderrors.As(err, &re) {
		r.red.Fprint(r.out, "error: ")
		fmt.Fprintln(r.out, err)
		return
	}

	r.red.Fprintf(r.out, "%s error: ", re.ErrorCode())
	fmt.Fprintln(r.out, err)
	for _, s := range re.Suggestions() {
		r.yellow.Fprintf(r.out, "  hint: %s\n", s)
	}
	if r.verbose {
		if base, ok := re.(interface{ ContextKeys() []string }); ok {
			ctx := re.Context()
			for _, k := range base.ContextKeys() {
				r.gray.Fprintf(r.out, "  %s: %v\n", k, ctx[k])
			}
		}
	}
}

// ReportWarning prints a single warning line.
func (r *DiagnosticReporter) ReportWarning(message string) {
	r.yellow.Fprint(r.out, "! ")
	fmt.Fprintln(r.out, message)
}
