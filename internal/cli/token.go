package cli

import (
	"fmt"

	"github.com/Shivanand-hulikatti/meetapp/internal/auth"
	"github.com/spf13/cobra"
)

// NewTokenCommand creates the command that mints a bearer token for a user.
// Accounts have no passwords, so this is how clients get credentials.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Print a bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.load()
			if err != nil {
				return err
			}
			token, err := auth.NewService(cfg.JWT.Secret, cfg.JWT.TTL).GenerateToken(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
