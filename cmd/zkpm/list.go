package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/praetorian-inc/zkpm/pkg/library"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <library>",
	Short: "List the patterns in a pattern library",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	loader := library.NewLoader()
	lib, err := loader.Load(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSEVERITY\tMESSAGE")
	for _, p := range lib.Patterns {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Kind, p.Severity, p.Message)
	}
	return tw.Flush()
}
