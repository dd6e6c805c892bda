// Command stenoctl inspects steno strokes, outlines, dictionary keys and the
// stroke tape.
package main

import (
	"os"

	"stenod/cmd/stenoctl/commands"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
