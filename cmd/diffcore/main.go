// Command diffcore is the host-side driver for the diff engine.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/diffcore/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
