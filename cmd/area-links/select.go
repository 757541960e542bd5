package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cristianoliveira/area-links/cmd"
	"github.com/cristianoliveira/area-links/internal/formatter"
	"github.com/cristianoliveira/area-links/internal/frame"
	"github.com/cristianoliveira/area-links/internal/geometry"
	"github.com/cristianoliveira/area-links/internal/protocol"
	"github.com/cristianoliveira/area-links/internal/selection"
	"github.com/cristianoliveira/area-links/internal/tui/state"
	"github.com/spf13/cobra"
)

// SelectRequest describes one headless selection.
type SelectRequest struct {
	URL   string
	Mode  protocol.Mode
	Width int
	// From and To are page cells, column then row. A nil From selects the
	// whole page.
	From, To *geometry.Point
	// Print writes copied links to Out instead of the clipboard. Hook
	// output goes to ErrOut.
	Print  bool
	Out    io.Writer
	ErrOut io.Writer
}

// SelectResult is what the selection produced.
type SelectResult struct {
	// Opened lists the tabs opened from the selection, in tab order.
	Opened []string
	// Alerts are the messages the page raised, such as a refused copy.
	Alerts []string
}

type selectClient interface {
	Select(ctx context.Context, req SelectRequest) (SelectResult, error)
}

const selectCommandLong = `Select the links inside a box of a page without opening the browser.

USAGE:
    area-links select URL [OPTIONS]

The box is given in page cells as COLUMN,ROW, both counted from 0. Without
--from and --to the whole page is selected. The same settings as in the
browser apply: tab limit, exclusions, duplicates and history.

OPTIONS:
    --copy          Copy the links instead of opening them
    --print         With --copy, print the links instead of using the clipboard
    --from X,Y      First corner of the box
    --to X,Y        Opposite corner of the box
    --width N       Page width in cells (default 80)
    -f, --format F  Print opened links as a preset (plain, numbered,
                    markdown, hosts) or a {{variable}} template

EXAMPLES:
    # Open every link on the first ten rows
    area-links select example.org --from 0,0 --to 79,9

    # Print the links of a page
    area-links select example.org --copy --print`

// NewSelectCmd creates the select command with explicit dependencies.
func NewSelectCmd(client selectClient) *cobra.Command {
	if client == nil {
		panic("NewSelectCmd: client dependency cannot be nil")
	}

	var (
		copyMode bool
		printOut bool
		from, to string
		width    int
		format   string
	)
	selectCmd := &cobra.Command{
		Use:   "select URL",
		Short: "Select the links inside a box of a page",
		Long:  selectCommandLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := SelectRequest{
				URL:    state.NormalizeURL(args[0]),
				Mode:   protocol.ModeOpen,
				Width:  width,
				Print:  printOut,
				Out:    cmd.OutOrStdout(),
				ErrOut: cmd.ErrOrStderr(),
			}
			if copyMode {
				req.Mode = protocol.ModeCopy
			}
			if _, err := formatter.Links(format, nil); err != nil {
				return fmt.Errorf("--format: %w", err)
			}
			if (from == "") != (to == "") {
				return fmt.Errorf("--from and --to must be given together")
			}
			if from != "" {
				start, err := parseCell(from)
				if err != nil {
					return fmt.Errorf("--from: %w", err)
				}
				end, err := parseCell(to)
				if err != nil {
					return fmt.Errorf("--to: %w", err)
				}
				req.From, req.To = &start, &end
			}

			res, err := client.Select(cmd.Context(), req)
			if err != nil {
				return err
			}
			for _, alert := range res.Alerts {
				fmt.Fprintln(cmd.ErrOrStderr(), alert)
			}
			return printLinks(cmd.OutOrStdout(), format, res.Opened)
		},
	}
	selectCmd.Flags().BoolVar(&copyMode, "copy", false, "Copy the links instead of opening them")
	selectCmd.Flags().BoolVar(&printOut, "print", false, "With --copy, print the links instead of using the clipboard")
	selectCmd.Flags().StringVar(&from, "from", "", "First corner of the box as COLUMN,ROW")
	selectCmd.Flags().StringVar(&to, "to", "", "Opposite corner of the box as COLUMN,ROW")
	selectCmd.Flags().IntVar(&width, "width", 80, "Page width in cells")
	selectCmd.Flags().StringVarP(&format, "format", "f", "plain", "How opened links are printed: a preset or {{variable}} template")
	return selectCmd
}

// parseCell reads "x,y" as a page cell.
func parseCell(s string) (geometry.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geometry.Point{}, fmt.Errorf("want COLUMN,ROW, got %q", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil || x < 0 {
		return geometry.Point{}, fmt.Errorf("invalid column %q", xs)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil || y < 0 {
		return geometry.Point{}, fmt.Errorf("invalid row %q", ys)
	}
	return geometry.Point{X: float64(x), Y: float64(y)}, nil
}

// headlessSelector drives a selection through the same controller and
// background as the browser, with the mouse replaced by the box corners.
type headlessSelector struct {
	options func(runtimeOptions) runtimeOptions
}

// Select loads the page, arms a selection, drags the box and delivers the
// resulting messages to the background.
func (h headlessSelector) Select(ctx context.Context, req SelectRequest) (SelectResult, error) {
	frames := &frame.Manual{}
	opts := runtimeOptions{frames: frames.Request, width: req.Width, height: 1, hookOutput: req.ErrOut}
	if req.Print {
		opts.clipboard = writerClipboard{w: req.Out}
	}
	if h.options != nil {
		opts = h.options(opts)
	}
	rt, err := newRuntime(opts)
	if err != nil {
		return SelectResult{}, err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			rt.logger.Warn("close history store failed", "error", err)
		}
	}()

	origin, err := rt.session.Open(ctx, req.URL)
	if err != nil {
		return SelectResult{}, err
	}
	rt.session.Wait()
	if _, loadErr := rt.session.LoadState(origin.ID); loadErr != nil {
		return SelectResult{}, loadErr
	}
	p := rt.session.Page(origin.ID)
	if p == nil {
		return SelectResult{}, fmt.Errorf("load %s: no document", req.URL)
	}

	from := geometry.Point{}
	to := geometry.Point{X: float64(max(req.Width-1, 0)), Y: float64(max(p.Document().Height()-1, 0))}
	if req.From != nil && req.To != nil {
		from, to = *req.From, *req.To
	}
	rt.session.SetViewport(req.Width, int(max(from.Y, to.Y))+1)

	if err := rt.orch.TriggerSelection(ctx, origin, req.Mode); err != nil {
		return SelectResult{}, err
	}
	c := rt.session.Controller(origin.ID)
	if c == nil || !c.Active() {
		return SelectResult{}, fmt.Errorf("selection did not start in %s", req.URL)
	}

	// Cell centres, so a box along one row still crosses its links.
	start := geometry.Point{X: from.X + 0.5, Y: from.Y + 0.5}
	end := geometry.Point{X: to.X + 0.5, Y: to.Y + 0.5}
	c.MouseDown(selection.MouseEvent{Point: start, Button: selection.ButtonPrimary, Buttons: selection.PrimaryMask})
	c.MouseMove(selection.MouseEvent{Point: end, Buttons: selection.PrimaryMask})
	frames.Flush()
	c.MouseUp(selection.MouseEvent{Point: end, Button: selection.ButtonPrimary})

	_, flushErr := rt.session.Flush(ctx)
	rt.session.Wait()
	if flushErr != nil {
		return SelectResult{}, flushErr
	}

	res := SelectResult{Alerts: p.TakeAlerts()}
	for _, tab := range rt.session.Tabs() {
		if tab.ID != origin.ID {
			res.Opened = append(res.Opened, tab.URL)
		}
	}
	rt.logger.Info("headless selection done", "url", req.URL, "mode", req.Mode.String(), "opened", len(res.Opened))
	return res, nil
}

var selectCmd = NewSelectCmd(headlessSelector{})

func init() {
	cmd.RootCmd.AddCommand(selectCmd)
}
