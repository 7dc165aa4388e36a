package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"dexopt/internal/cfg"
	"dexopt/internal/cse"
	"dexopt/internal/opt"
	"dexopt/internal/parser"
)

var (
	workers   int
	noCleanup bool
	verbose   bool
)

func main() {
	root := &cobra.Command{
		Use:   "dexopt <file.dasm>",
		Short: "Run common subexpression elimination over assembly methods",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			run(args[0])
		},
	}
	root.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "methods optimized concurrently")
	root.Flags().BoolVar(&noCleanup, "no-cleanup", false, "skip copy propagation and local DCE after CSE")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(path string) {
	verbosity := 0
	if verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	start := time.Now()

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read file: %v\n", err)
		os.Exit(1)
	}

	prog, err := parser.Parse(path, string(source))
	if err != nil {
		fmt.Fprint(os.Stderr, parser.FormatError(string(source), err))
		color.Red("Compilation failed after %s", formatDuration(time.Since(start)))
		os.Exit(1)
	}

	stats := opt.RunParallel(prog.Methods, prog.Resolver, workers, !noCleanup)

	for _, m := range prog.Methods {
		fmt.Print(cfg.Print(m))
	}
	color.Green("Optimized %d methods in %s (%s=%d, %s=%d)",
		len(prog.Methods), formatDuration(time.Since(start)),
		cse.MetricResultsCaptured, stats.ResultsCaptured,
		cse.MetricEliminatedInstructions, stats.InstructionsEliminated)
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
