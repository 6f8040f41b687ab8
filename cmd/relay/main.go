// Command relay generates the component registration files of annotated
// packages.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/relay/internal/cli"
	"github.com/toyz/relay/internal/logging"
	"github.com/toyz/relay/internal/utils"
	"github.com/toyz/relay/pkg/relay"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("relay", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		moduleFlag  = flags.String("module", "", "Module path for imports (defaults to the go.mod module)")
		verboseFlag = flags.Bool("verbose", false, "Enable verbose output")
		quietFlag   = flags.Bool("quiet", false, "Only show errors")
		cleanFlag   = flags.Bool("clean", false, "Delete the "+relay.GeneratedFileName+" files relay wrote")
		scanFlag    = flags.String("scan", "", "Print the type ids found under a namespace and exit")
	)

	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: relay [options] <directory-paths...>\n\n")
		fmt.Fprintf(stderr, "Relay component generator\n")
		fmt.Fprintf(stderr, "Scans directories for //relay:: annotations and writes %s into each annotated package.\n\n", relay.GeneratedFileName)
		fmt.Fprintf(stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(stderr, "\nDirectory Patterns:\n")
		fmt.Fprintf(stderr, "  ./...              Scan the directory and all subdirectories\n")
		fmt.Fprintf(stderr, "  ./pkg/controllers  Scan only the given directory\n")
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  relay ./...\n")
		fmt.Fprintf(stderr, "  relay -clean ./...\n")
		fmt.Fprintf(stderr, "  relay -scan examples.demo .\n")
	}

	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	level := utils.DiagnosticInfo
	switch {
	case *quietFlag:
		level = utils.DiagnosticError
	case *verboseFlag:
		level = utils.DiagnosticVerbose
	}
	diagnostics := utils.NewDiagnosticSystemWithWriters(level, stdout, stderr, useColors(stdout))
	reporter := cli.NewDiagnosticReporterWithWriter(stderr, *verboseFlag)

	if *scanFlag != "" {
		return scan(*scanFlag, flags.Args(), stdout, stderr, *verboseFlag, reporter)
	}

	dirs := flags.Args()
	if len(dirs) == 0 {
		fmt.Fprintf(stderr, "Error: at least one directory path is required\n\n")
		flags.Usage()
		return 1
	}

	if *cleanFlag {
		diagnostics.Header("Cleaning generated files")
		result, err := cli.NewCleaner().CleanGeneratedFiles(dirs)
		if err != nil {
			reporter.ReportError(err)
			return 1
		}
		for _, path := range result.Removed {
			diagnostics.PhaseProgress("Removing %s", path)
		}
		for _, path := range result.Skipped {
			reporter.ReportWarning(fmt.Sprintf("%s was not written by relay, kept", path))
		}
		diagnostics.Summary("Clean complete", map[string]any{"removed": len(result.Removed)})
		return 0
	}

	if *verboseFlag {
		diagnostics.PhaseHeader("Configuration")
		diagnostics.List("Target directories: %s", strings.Join(dirs, ", "))
		if *moduleFlag != "" {
			diagnostics.List("Module: %s", *moduleFlag)
		}
	}

	generator := cli.NewGenerator(diagnostics)
	if err := generator.Run(cli.Config{Directories: dirs, ModuleName: *moduleFlag}); err != nil {
		reporter.ReportError(err)
		return 1
	}

	summary := generator.Summary()
	diagnostics.Summary("Summary", map[string]any{
		"packages scanned": summary.PackagesScanned,
		"files generated":  len(summary.GeneratedFiles),
		"files removed":    len(summary.RemovedFiles),
		"controllers":      summary.Controllers,
		"services":         summary.Services,
		"routes":           summary.Routes,
	})
	diagnostics.GenerationComplete()
	return 0
}

// scan prints the ids a source scan of namespace finds below root.
func scan(namespace string, args []string, stdout, stderr io.Writer, verbose bool, reporter *cli.DiagnosticReporter) int {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	scanner := relay.NewSourceScanner(root, logging.New(level, "text", stderr))
	ids, err := scanner.Scan(namespace)
	if err != nil {
		reporter.ReportError(err)
		return 1
	}
	for _, id := range ids {
		fmt.Fprintln(stdout, id)
	}
	return 0
}

func useColors(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && f == os.Stdout && !color.NoColor
}
