package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/cristianoliveira/area-links/cmd"
	"github.com/cristianoliveira/area-links/internal/config"
	"github.com/cristianoliveira/area-links/internal/settings"
	"github.com/spf13/cobra"
)

type configClient interface {
	All() []config.Entry
	Describe(key string) string
	Path() string
	Settings() settings.Settings
}

const configCommandLong = `Inspect the configuration.

Values come from the built-in defaults, then the TOML file, then
AREA_LINKS_* environment variables.

USAGE:
    area-links config <subcommand>

SUBCOMMANDS:
    show      Print every resolved value
    get KEY   Print one value and what it does
    path      Print the configuration file path
    check     Validate the selection settings`

// loadedConfig reads the process configuration.
type loadedConfig struct{}

func (loadedConfig) All() []config.Entry         { return config.All() }
func (loadedConfig) Describe(key string) string  { return config.Describe(key) }
func (loadedConfig) Path() string                { return config.Path() }
func (loadedConfig) Settings() settings.Settings { return settings.FromConfig() }

// NewConfigCmd creates the config command with explicit dependencies.
func NewConfigCmd(client configClient) *cobra.Command {
	if client == nil {
		panic("NewConfigCmd: client dependency cannot be nil")
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
		Long:  configCommandLong,
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print every resolved value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printConfig(cmd.OutOrStdout(), client.All())
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "get KEY",
		Short: "Print one value and what it does",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, e := range client.All() {
				if e.Key != args[0] {
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), e.Value)
				if doc := client.Describe(e.Key); doc != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), defaultValueStyle.Render(doc))
				}
				return nil
			}
			return fmt.Errorf("unknown config key %q", args[0])
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), client.Path())
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate the selection settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := client.Settings()
			if err := settings.Validate(&s); err != nil {
				return fmt.Errorf("invalid settings: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "settings ok")
			return nil
		},
	})

	return configCmd
}

var defaultValueStyle = lipgloss.NewStyle().Faint(true)

// printConfig renders the entries as a borderless table. Values still at
// their default are dimmed.
func printConfig(w io.Writer, entries []config.Entry) error {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("KEY", "VALUE", "SOURCE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row >= 0 && row < len(entries) && entries[row].Default {
				return defaultValueStyle
			}
			return lipgloss.NewStyle()
		})
	for _, e := range entries {
		source := "set"
		if e.Default {
			source = "default"
		}
		t.Row(e.Key, e.Value, source)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

var configCmd = NewConfigCmd(loadedConfig{})

func init() {
	cmd.RootCmd.AddCommand(configCmd)
}
