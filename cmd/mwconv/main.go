package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mwconv/internal/errors"
	"mwconv/internal/logger"
	"mwconv/internal/version"
)

// newRootCmd builds the command tree. Tests build a fresh tree per run.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mwconv",
		Short:         "Wikitext-flavored markup converter",
		Long:          `mwconv tokenizes markup, expands templates and attribute values, and records where generated attributes came from`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupGlobals(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newTokenizeCmd())
	rootCmd.AddCommand(newVersionCmd())

	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics per document (0 = unlimited)")
	flags.String("log-level", "warn", "log level (debug|info|warn|error)")
	flags.Bool("log-json", false, "log as JSON")
	flags.String("config", "", "path to mwconv.toml (default: search upwards from the input)")
	flags.String("trace", "", "trace output file (- for stderr, .ndjson for NDJSON)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.Int("trace-ring-size", 4096, "events kept in ring mode")
	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")
	return rootCmd
}

// main executes the root command and exits with status 1 on error.
func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd, err)
		os.Exit(1)
	}
}

func printError(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", color.RedString("error:"), err)
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.CyanString("hint:"), hint)
	}
}

func setupGlobals(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	level, err := flags.GetString("log-level")
	if err != nil {
		return err
	}
	jsonLogs, err := flags.GetBool("log-json")
	if err != nil {
		return err
	}
	if err := logger.Initialize(jsonLogs, level); err != nil {
		return err
	}

	mode, err := flags.GetString("color")
	if err != nil {
		return err
	}
	switch strings.ToLower(mode) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return errors.Newf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
