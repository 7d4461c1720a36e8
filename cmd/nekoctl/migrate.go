package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/neko-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/neko-engine/internal/adapters/repository/sqlite"
	"github.com/comitanigiacomo/neko-engine/internal/config"
)

func newMigrateCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema for the configured driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if dryRun {
				files, err := repository.Migrations()
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintln(out, f)
				}
				return nil
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			switch cfg.Database.Driver {
			case config.DriverPostgres:
				db, err := repository.NewPostgresDB(cmd.Context(), cfg.Database.DSN())
				if err != nil {
					return err
				}
				defer db.Close()
				if err := repository.Migrate(cmd.Context(), db); err != nil {
					return err
				}
			case config.DriverSQLite:
				s, err := sqlite.Open(cfg.Database.SQLitePath)
				if err != nil {
					return err
				}
				if err := s.Close(); err != nil {
					return err
				}
			default:
				return fmt.Errorf("driver %q has no schema", cfg.Database.Driver)
			}

			fmt.Fprintf(out, "schema up to date (%s)\n", cfg.Database.Driver)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the migrations without connecting")
	return cmd
}
