// Command codesearch is the thin CLI front end over pkg/codesearch's
// operations API: index, search, status, watch, and check.
package main

import (
	"fmt"
	"os"

	"github.com/opencodesearch/codesearch/cmd/codesearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
