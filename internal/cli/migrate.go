package cli

import (
	"fmt"

	"github.com/Shivanand-hulikatti/meetapp/internal/database"
	"github.com/spf13/cobra"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := rootOpts.load()
			if err != nil {
				return err
			}

			switch cfg.Database.Driver {
			case "postgres":
				err = database.MigratePostgres(cfg.Database.DSN)
			case "sqlite":
				db, openErr := database.OpenSQLite(cfg.Database.DSN)
				if openErr != nil {
					return openErr
				}
				defer db.Close()
				err = database.Migrate(db, "sqlite")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s database is up to date\n", cfg.Database.Driver)
			return nil
		},
	}
}
