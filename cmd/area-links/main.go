package main

import (
	"os"

	"github.com/cristianoliveira/area-links/cmd"
	"github.com/cristianoliveira/area-links/internal/colors"
)

func main() {
	os.Exit(run(os.Args[1:], cmd.Execute))
}

// run executes the command line and returns the exit code. Startup traces
// are skipped for the browser, whose screen they would corrupt.
func run(args []string, execute func() error) int {
	trace := !isTUI(args)
	if trace {
		colors.Trace(colors.Event{Level: colors.LevelInfo, Component: "startup", Action: "started"})
	}
	if err := execute(); err != nil {
		if trace {
			colors.TraceError("startup", "failed", 0, err)
		}
		return 1
	}
	if trace {
		colors.Trace(colors.Event{Level: colors.LevelInfo, Component: "startup", Action: "completed"})
	}
	return 0
}

func isTUI(args []string) bool {
	for _, a := range args {
		if len(a) > 0 && a[0] == '-' {
			continue
		}
		return a == "browse"
	}
	return false
}
