package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cristianoliveira/area-links/cmd"
	"github.com/cristianoliveira/area-links/internal/colors"
	"github.com/cristianoliveira/area-links/internal/formatter"
	"github.com/cristianoliveira/area-links/internal/history"
	"github.com/cristianoliveira/area-links/internal/search"
	"github.com/spf13/cobra"
)

type historyClient interface {
	Load(ctx context.Context, kind history.Kind) ([]string, error)
	Save(ctx context.Context, kind history.Kind, urls []string) error
	Clear(ctx context.Context, kind history.Kind) error
}

const (
	historyCommandLong = `Manage the lists of links opened and copied from selections.

USAGE:
    area-links history <subcommand> [LIST]

LIST is "links" (opened links, the default) or "copies".

SUBCOMMANDS:
    list      Print a list, newest first (--search to filter)
    clear     Empty a list
    import    Add links from a file or stdin to a list

EXAMPLES:
    # Show the copied links
    area-links history list copies

    # Numbered list of the opened links
    area-links history list --format numbered

    # Opened links from GitHub issues
    area-links history list --mode regex -s 'github\.com/.*/issues/'

    # Forget the opened links
    area-links history clear links`
	importCommandLong = `Add links to a history list, one URL per line. Blank lines and lines
starting with '#' are skipped. Imported links go in front of the list and the
list keeps its size limit.

USAGE:
    area-links history import [LIST] [FILE]

With no FILE, or when FILE is -, links are read from stdin.`
)

// openHistory opens the configured store for one subcommand. The returned
// func closes it.
var openHistory = func() (historyClient, func(), error) {
	store, err := newStore("")
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// NewHistoryCmd creates the history command with explicit dependencies.
func NewHistoryCmd(open func() (historyClient, func(), error)) *cobra.Command {
	if open == nil {
		panic("NewHistoryCmd: open dependency cannot be nil")
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the opened and copied link history",
		Long:  historyCommandLong,
	}

	withClient := func(fn func(client historyClient) error) error {
		client, closeFn, err := open()
		if err != nil {
			return err
		}
		defer closeFn()
		return fn(client)
	}

	var (
		query      string
		searchMode string
		ignoreCase bool
		format     string
	)
	listCmd := &cobra.Command{
		Use:   "list [LIST]",
		Short: "Print a history list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args)
			if err != nil {
				return err
			}
			provider, err := search.New(searchMode,
				search.WithCaseInsensitive(ignoreCase),
				search.WithFields([]string{search.FieldURL}))
			if err != nil {
				return err
			}
			if rp, ok := provider.(*search.RegexProvider); ok && query != "" {
				if err := rp.Validate(query); err != nil {
					return fmt.Errorf("invalid --search pattern: %w", err)
				}
			}
			return withClient(func(client historyClient) error {
				f := listFilter{provider: provider, query: query, format: format}
				return runHistoryList(cmd.Context(), client, kind, f, cmd.OutOrStdout())
			})
		},
	}
	listCmd.Flags().StringVarP(&query, "search", "s", "", "Only print links matching the query")
	listCmd.Flags().StringVar(&searchMode, "mode", "substring", "How --search matches: substring, regex or token")
	listCmd.Flags().BoolVarP(&ignoreCase, "ignore-case", "i", false, "Match --search ignoring case")
	listCmd.Flags().StringVarP(&format, "format", "f", "plain", "Preset (plain, numbered, markdown, hosts) or {{variable}} template")
	historyCmd.AddCommand(listCmd)

	historyCmd.AddCommand(&cobra.Command{
		Use:   "clear [LIST]",
		Short: "Empty a history list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args)
			if err != nil {
				return err
			}
			return withClient(func(client historyClient) error {
				if err := client.Clear(cmd.Context(), kind); err != nil {
					return fmt.Errorf("clear %s: %w", kind, err)
				}
				colors.Success(fmt.Sprintf("cleared %s", kind))
				return nil
			})
		},
	})

	historyCmd.AddCommand(&cobra.Command{
		Use:   "import [LIST] [FILE]",
		Short: "Add links from a file to a history list",
		Long:  importCommandLong,
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args)
			if err != nil {
				return err
			}
			in := cmd.InOrStdin()
			if len(args) == 2 && args[1] != "-" {
				f, err := os.Open(args[1])
				if err != nil {
					return fmt.Errorf("open %s: %w", args[1], err)
				}
				defer f.Close()
				in = f
			}
			return withClient(func(client historyClient) error {
				n, err := runHistoryImport(cmd.Context(), client, kind, in)
				if err != nil {
					return err
				}
				colors.Success(fmt.Sprintf("imported %d links into %s", n, kind))
				return nil
			})
		},
	})

	return historyCmd
}

func kindArg(args []string) (history.Kind, error) {
	if len(args) == 0 {
		return history.KindLinks, nil
	}
	return history.ParseKind(args[0])
}

// listFilter narrows and formats the printed links. A nil provider prints
// them all.
type listFilter struct {
	provider search.Provider
	query    string
	format   string
}

func runHistoryList(ctx context.Context, client historyClient, kind history.Kind, f listFilter, w io.Writer) error {
	urls, err := client.Load(ctx, kind)
	if err != nil {
		return fmt.Errorf("load %s: %w", kind, err)
	}
	if len(urls) == 0 {
		colors.Info(fmt.Sprintf("%s is empty", kind))
		return nil
	}
	if f.provider != nil {
		urls = search.Filter(f.provider, urls, f.query)
		if len(urls) == 0 {
			colors.Info(fmt.Sprintf("no %s match %q", kind, f.query))
			return nil
		}
	}
	return printLinks(w, f.format, urls)
}

// printLinks writes links one per line through a formatter preset or
// template. An empty format prints them as they are.
func printLinks(w io.Writer, format string, links []string) error {
	if format == "" {
		format = "plain"
	}
	lines, err := formatter.Links(format, links)
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return nil
}

// runHistoryImport merges the links read from r in front of the stored
// list and returns how many new links were read.
func runHistoryImport(ctx context.Context, client historyClient, kind history.Kind, r io.Reader) (int, error) {
	var fresh []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fresh = append(fresh, line)
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read links: %w", err)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	existing, err := client.Load(ctx, kind)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", kind, err)
	}
	if err := client.Save(ctx, kind, history.Merge(fresh, existing, history.Limit)); err != nil {
		return 0, fmt.Errorf("save %s: %w", kind, err)
	}
	return len(fresh), nil
}

var historyCmd = NewHistoryCmd(openHistory)

func init() {
	cmd.RootCmd.AddCommand(historyCmd)
}
