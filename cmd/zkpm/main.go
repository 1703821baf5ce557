package main

import (
	"fmt"
	"os"
)

// version and commit are overridden at build time via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCodeFor(err))
	}
}
