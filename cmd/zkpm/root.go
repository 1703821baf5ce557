package main

import (
	"github.com/spf13/cobra"
)

var (
	flagFormat    string
	flagRecursive bool
	flagIgnore    []string
	flagSemantic  bool
)

var rootCmd = &cobra.Command{
	Use:     "zkpm <library> <target>",
	Short:   "zkpm - static analysis for zero-knowledge arithmetic-circuit source",
	Version: version,
	Long: `zkpm detects unconstrained witness assignments and related soundness
pitfalls in zero-knowledge circuit source files: unconstrained <-- hints
left without a matching <== or === constraint, component-input aliasing,
self-equality constraints, and constraints placed on a var instead of a
signal.

Invoking zkpm with a pattern-library path and a target path runs a scan
directly, with no "scan" subcommand name required.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScan,
}

func init() {
	rootCmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text, json, or sarif")
	rootCmd.Flags().BoolVarP(&flagRecursive, "recursive", "r", false, "Recurse into subdirectories")
	rootCmd.Flags().StringArrayVar(&flagIgnore, "ignore", nil, "Ignore pattern (repeatable)")
	rootCmd.Flags().BoolVar(&flagSemantic, "semantic", false, "Enable semantic (Layer B) analysis")
	rootCmd.Flags().BoolVarP(new(bool), "version", "V", false, "Print version and exit")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.SetVersionTemplate("zkpm v{{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
