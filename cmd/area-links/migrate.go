package main

import (
	"fmt"

	"github.com/cristianoliveira/area-links/cmd"
	"github.com/cristianoliveira/area-links/internal/storage"
	"github.com/cristianoliveira/area-links/internal/storage/sqlite"
	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command.
func NewMigrateCmd() *cobra.Command {
	var (
		sqlitePathFlag string
		dryRunFlag     bool
	)
	migrateCmd := &cobra.Command{
		Use:   "migrate FILE",
		Short: "Import history exported from the browser extension",
		Long: `Import the link and copy history of a browser extension export.

FILE is a JSON object with "linkHistory" and "copyHistory" arrays, as found in
the extension's local storage. Entries that are not absolute http(s) URLs are
skipped with a warning. The history already stored is newer and keeps its
place; imported entries fill the remaining room of each list.

Use --dry-run to see what would be imported without writing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sqlitePath := sqlitePathFlag
			if sqlitePath == "" {
				p, err := storage.DBPath()
				if err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				sqlitePath = p
			}

			store, err := sqlite.NewHistoryStorage(sqlitePath)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			defer store.Close()

			stats, err := store.Import(cmd.Context(), sqlite.ImportOptions{Path: args[0], DryRun: dryRunFlag})
			if err != nil {
				return err
			}

			if dryRunFlag {
				cmd.Printf("dry run, nothing written\n")
			} else {
				cmd.Printf("migration completed\n")
			}
			cmd.Printf("total=%d imported=%d skipped=%d\n", stats.TotalRows, stats.ImportedRows, stats.SkippedRows)
			for _, warning := range stats.Warnings {
				cmd.Printf("warning: %s\n", warning)
			}
			return nil
		},
	}
	migrateCmd.Flags().StringVar(&sqlitePathFlag, "sqlite-path", "", "Path to the history database (default: <state_dir>/history.db)")
	migrateCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Report what would be imported without writing")
	return migrateCmd
}

var migrateCmd = NewMigrateCmd()

func init() {
	cmd.RootCmd.AddCommand(migrateCmd)
}
