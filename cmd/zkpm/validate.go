package main

import (
	"fmt"

	"github.com/praetorian-inc/zkpm/pkg/library"
	"github.com/praetorian-inc/zkpm/pkg/matcher"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <library>",
	Short: "Validate a pattern library without scanning anything",
	Long:  "Load a pattern-library YAML file, enforce its resource caps, and compile every pattern, reporting the first error found.",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	loader := library.NewLoader()
	lib, err := loader.Load(args[0])
	if err != nil {
		return err
	}

	if _, err := matcher.New(lib, matcher.DefaultConfig()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d patterns, %d invariants, OK\n", args[0], len(lib.Patterns), len(lib.Invariants))
	return nil
}
