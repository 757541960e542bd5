package main

import (
	"context"
	"fmt"

	"github.com/cristianoliveira/area-links/cmd"
	"github.com/cristianoliveira/area-links/internal/tui/app"
	"github.com/cristianoliveira/area-links/internal/tui/state"
	"github.com/spf13/cobra"
)

type browseClient interface {
	Browse(ctx context.Context, urls []string) error
}

const browseCommandLong = `Open pages in the terminal browser and select links with the mouse.

USAGE:
    area-links browse [URL...]

Press 'a' to select links to open in new tabs, 'c' to select links to copy,
then drag a box over the page. Press '?' for every key.

EXAMPLES:
    # Open two pages
    area-links browse https://news.ycombinator.com example.org`

// NewBrowseCmd creates the browse command with explicit dependencies.
func NewBrowseCmd(client browseClient) *cobra.Command {
	if client == nil {
		panic("NewBrowseCmd: client dependency cannot be nil")
	}

	return &cobra.Command{
		Use:   "browse [URL...]",
		Short: "Open pages and select links with the mouse",
		Long:  browseCommandLong,
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := make([]string, 0, len(args))
			for _, a := range args {
				urls = append(urls, state.NormalizeURL(a))
			}
			return client.Browse(cmd.Context(), urls)
		},
	}
}

// tuiBrowser runs the full screen browser.
type tuiBrowser struct {
	runner  app.ProgramRunner
	options func(runtimeOptions) runtimeOptions
}

// Browse wires a runtime whose page changes refresh the screen and runs
// the TUI until it quits.
func (b tuiBrowser) Browse(ctx context.Context, urls []string) error {
	notifier := app.NewNotifier()
	opts := runtimeOptions{notify: notifier.Notify}
	if b.options != nil {
		opts = b.options(opts)
	}
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			rt.logger.Warn("close history store failed", "error", err)
		}
	}()

	if len(urls) == 0 {
		urls = []string{"about:blank"}
	}
	err = app.Run(ctx, app.Deps{
		Session:      rt.session,
		Orchestrator: rt.orch,
		Menu:         rt.menu,
		Notifier:     notifier,
		Logger:       rt.logger.With("component", "tui"),
		Runner:       b.runner,
	}, urls)
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}

var browseCmd = NewBrowseCmd(tuiBrowser{})

func init() {
	cmd.RootCmd.AddCommand(browseCmd)
}
