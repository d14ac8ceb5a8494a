package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Shivanand-hulikatti/meetapp/internal/config"
	"github.com/Shivanand-hulikatti/meetapp/internal/database"
	"github.com/Shivanand-hulikatti/meetapp/internal/mailer"
	"github.com/Shivanand-hulikatti/meetapp/internal/notify"
	"github.com/Shivanand-hulikatti/meetapp/internal/queue"
	"github.com/Shivanand-hulikatti/meetapp/internal/repository"
	"github.com/Shivanand-hulikatti/meetapp/internal/service"
	"github.com/Shivanand-hulikatti/meetapp/internal/sqlitestore"
)

type stores struct {
	meetups service.MeetupStore
	subs    service.SubscriptionStore
	users   service.UserStore
	close   func()
}

// openStores connects to the configured database, optionally migrating it
// first.
func openStores(ctx context.Context, cfg config.Config, log *slog.Logger, migrate bool) (*stores, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		db, err := database.OpenSQLite(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := database.Migrate(db, "sqlite"); err != nil {
				db.Close()
				return nil, err
			}
		}
		s := sqlitestore.New(db)
		log.Info("using sqlite", "dsn", cfg.Database.DSN)
		return &stores{meetups: s, subs: s, users: s, close: func() { db.Close() }}, nil

	case "postgres":
		if migrate {
			if err := database.MigratePostgres(cfg.Database.DSN); err != nil {
				return nil, err
			}
		}
		pool, err := database.NewPool(ctx, database.PoolConfig{
			DSN:      cfg.Database.DSN,
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		}, log)
		if err != nil {
			return nil, err
		}
		return &stores{
			meetups: repository.NewMeetupRepository(pool),
			subs:    repository.NewSubscriptionRepository(pool),
			users:   repository.NewUserRepository(pool),
			close:   pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func mailerConfig(cfg config.Config) mailer.Config {
	return mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}
}

// newSender picks the notification transport. The returned close func is
// never nil.
func newSender(cfg config.Config, log *slog.Logger) (notify.Sender, func(), error) {
	switch cfg.Notify.Transport {
	case "mail":
		m, err := mailer.New(mailerConfig(cfg))
		if err != nil {
			return nil, nil, err
		}
		return m, func() {}, nil
	case "amqp":
		c, err := queue.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, log)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	case "log":
		return notify.LogSender{Log: log}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported notify transport %q", cfg.Notify.Transport)
	}
}
