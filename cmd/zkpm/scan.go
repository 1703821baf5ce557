package main

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"github.com/praetorian-inc/zkpm/pkg/config"
	"github.com/praetorian-inc/zkpm/pkg/library"
	"github.com/praetorian-inc/zkpm/pkg/matcher"
	"github.com/praetorian-inc/zkpm/pkg/report"
	"github.com/praetorian-inc/zkpm/pkg/scanner"
	"github.com/spf13/cobra"
)

// regexOnlyWarningEmitted gates the one-shot stderr note about non-semantic
// mode to once per process lifetime (spec.md §6).
var regexOnlyWarningEmitted atomic.Bool

func runScan(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: zkpm [flags] <library> <target>")
	}
	libPath, target := args[0], args[1]

	format, err := report.ParseFormat(flagFormat)
	if err != nil {
		return err
	}

	cfg := config.Load()

	if !flagSemantic && regexOnlyWarningEmitted.CompareAndSwap(false, true) {
		fmt.Fprintln(os.Stderr, "regex-only mode may produce false positives from comments/strings. Use --semantic for higher-confidence findings.")
	}

	loader := library.NewLoader()
	loader.MaxFileSize = cfg.Limits.MaxPatternFileSize
	lib, err := loader.Load(libPath)
	if err != nil {
		return err
	}

	mcfg := matcher.DefaultConfig()
	mcfg.MaxFileSize = cfg.Limits.MaxFileSize
	mcfg.MaxPatterns = cfg.Limits.MaxPatterns
	mcfg.MaxMatches = cfg.Limits.MaxMatches
	mcfg.SemanticEnabled = flagSemantic

	m, err := matcher.New(lib, mcfg)
	if err != nil {
		return err
	}

	ignorePatterns := append([]string{}, config.LoadIgnorePatterns()...)
	ignorePatterns = append(ignorePatterns, flagIgnore...)
	ignore, err := scanner.NewIgnoreSet(ignorePatterns)
	if err != nil {
		return fmt.Errorf("compiling ignore patterns: %w", err)
	}

	s := scanner.New(m, scanner.Config{Recursive: flagRecursive, Ignore: ignore})
	result, err := s.Scan(target)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case report.JSON:
		err = report.WriteJSON(out, result)
	case report.Sarif:
		err = report.WriteSarif(out, result, version)
	default:
		err = report.WriteText(out, result, cfg.Output.ShowIcons, isatty.IsTerminal(os.Stdout.Fd()))
	}
	if err != nil {
		return err
	}

	if cfg.Output.FailOnCritical && (result.Summary.Critical > 0 || result.Summary.High > 0) {
		return errCriticalFindings
	}
	return nil
}
