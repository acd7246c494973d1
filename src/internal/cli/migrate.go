package cli

import (
	"fmt"
	"io"

	"github.com/api-sage/open-finance-kit/src/internal/adapter/repository/postgres"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the payment journal tables in DATABASE_DSN",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.DatabaseDSN == "" {
			return &missingConfigError{keys: []string{"DATABASE_DSN"}}
		}

		db, err := postgres.Open(cmd.Context(), cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := postgres.RunMigrations(cmd.Context(), db, cfg.MigrationsDir)
		if err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}

		return render(cmd.OutOrStdout(), map[string][]string{"applied": applied}, func(w io.Writer) error {
			if len(applied) == 0 {
				_, err := fmt.Fprintf(w, "%s database is up to date\n", green("✓"))
				return err
			}
			for _, version := range applied {
				fmt.Fprintf(w, "%s applied %s\n", green("✓"), version)
			}
			return nil
		})
	},
}
