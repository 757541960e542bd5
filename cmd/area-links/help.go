package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/cristianoliveira/area-links/cmd"
	"github.com/cristianoliveira/area-links/internal/colors"
	"github.com/spf13/cobra"
)

// commandOrder is the order commands are listed in the help text.
var commandOrder = []string{
	"browse",
	"select",
	"history",
	"migrate",
	"config",
	"help",
	"version",
}

// helpOutputWriter is the writer used by PrintHelp. Can be changed for testing.
var helpOutputWriter io.Writer

// PrintHelp prints the help information for the given root command.
func PrintHelp(cmd *cobra.Command) {
	w := helpOutputWriter
	if w == nil {
		w = cmd.OutOrStdout()
	}
	printHelp(cmd, w)
}

func printHelp(cmd *cobra.Command, w io.Writer) {
	var cmdLines []string
	for _, name := range commandOrder {
		var found *cobra.Command
		for _, c := range cmd.Commands() {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			continue
		}
		cmdLines = append(cmdLines, fmt.Sprintf("    %s%-16s%s %s%s%s", colors.Cyan, found.Name(), colors.Reset, colors.Green, found.Short, colors.Reset))
	}

	versionStr := cmd.Version
	if versionStr == "" {
		versionStr = "0.0.0"
	}
	header, reset := colors.Blue, colors.Reset

	fmt.Fprintf(w, `%sarea-links v%s%s

%sSelect links in a page by dragging a box around them.%s

%sUSAGE:%s
    area-links [COMMAND] [OPTIONS]

%sCOMMANDS:%s
%s

%sOPTIONS:%s
    --debug         Print debug traces to stderr
    -q, --quiet     Only log errors
    -h, --help      Show help message
`, header, versionStr, reset, colors.Cyan, reset, header, reset, header, reset, strings.Join(cmdLines, "\n"), header, reset)
}

// NewHelpCmd creates the help command.
func NewHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "help [COMMAND]",
		Short: "Show this help message",
		Long:  `Show this help message, or the help of COMMAND.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				PrintHelp(cmd.Root())
				return nil
			}
			target, _, err := cmd.Root().Find(args)
			if err != nil || target == nil || target == cmd.Root() {
				PrintHelp(cmd.Root())
				return nil
			}
			return target.Help()
		},
	}
}

var helpCmd = NewHelpCmd()

func init() {
	cmd.RootCmd.SetHelpCommand(helpCmd)
	defaultHelp := cmd.RootCmd.HelpFunc()
	cmd.RootCmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		if c == c.Root() {
			PrintHelp(c)
			return
		}
		defaultHelp(c, args)
	})
}
