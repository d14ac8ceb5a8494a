// Package cli wires configuration, storage, transports and services into
// the meetapp commands.
package cli

import (
	"github.com/Shivanand-hulikatti/meetapp/internal/config"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

func (o *RootOptions) load() (config.Config, error) {
	return config.Load(o.ConfigPath)
}

// NewRootCommand creates the root command for the meetapp CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "meetapp",
		Short: "Meetup scheduling API",
		Long: `meetapp serves the meetup API: organizers publish meetups, users
subscribe to them and organizers are mailed about new subscribers.

Settings come from an optional YAML file (--config), a .env file and
MEETAPP_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewWorkerCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}
