package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/Shivanand-hulikatti/meetapp/internal/logger"
	"github.com/Shivanand-hulikatti/meetapp/internal/mailer"
	"github.com/Shivanand-hulikatti/meetapp/internal/queue"
	"github.com/spf13/cobra"
)

// NewWorkerCommand creates the command that mails notifications queued by
// "serve" when notify.transport is amqp.
func NewWorkerCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Deliver queued notifications by mail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := rootOpts.load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.App.Env)

			m, err := mailer.New(mailerConfig(cfg))
			if err != nil {
				return fmt.Errorf("mailer: %w", err)
			}
			client, err := queue.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, log)
			if err != nil {
				return err
			}
			defer client.Close()

			err = client.Consume(ctx, m.Send)
			log.Info("worker stopped")
			return err
		},
	}
}
