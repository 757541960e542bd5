// Package cmd holds the root command of area-links.
package cmd

import (
	"os"

	"github.com/cristianoliveira/area-links/internal/colors"
	"github.com/cristianoliveira/area-links/internal/config"
	"github.com/cristianoliveira/area-links/internal/logging"
	"github.com/cristianoliveira/area-links/internal/version"
	"github.com/spf13/cobra"
)

var (
	debugFlag bool
	quietFlag bool
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:           "area-links",
	Short:         "Select links in a page by dragging a box around them.",
	Long:          `Select links in a page by dragging a box around them, then open or copy them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initRuntime(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.ShutdownGlobal()
	},
}

// Execute runs the root command. It is called by main.main().
func Execute() error {
	err := RootCmd.Execute()
	if err != nil {
		colors.Error(err.Error())
	}
	return err
}

// initRuntime loads the configuration and starts the file logger. Flags
// override config and environment values.
func initRuntime(cmd *cobra.Command) error {
	config.Load()
	if cmd.Flags().Changed("debug") {
		config.Set("debug", boolString(debugFlag))
	}
	if cmd.Flags().Changed("quiet") {
		config.Set("quiet", boolString(quietFlag))
	}
	colors.SetDebug(config.GetBool("debug", false))
	colors.SetQuiet(config.GetBool("quiet", false) && !config.GetBool("debug", false))

	if err := logging.InitGlobal(); err != nil {
		colors.Warning("file logging disabled: " + err.Error())
	}
	logging.Debug("command started", "command", cmd.CommandPath(), "pid", os.Getpid())
	return nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func init() {
	RootCmd.Version = version.String()
	RootCmd.CompletionOptions.HiddenDefaultCmd = true

	RootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Print debug traces to stderr")
	RootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Only log errors")
}
