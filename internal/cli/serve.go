package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/meetapp/internal/auth"
	"github.com/Shivanand-hulikatti/meetapp/internal/handler"
	"github.com/Shivanand-hulikatti/meetapp/internal/logger"
	"github.com/Shivanand-hulikatti/meetapp/internal/metrics"
	"github.com/Shivanand-hulikatti/meetapp/internal/notify"
	"github.com/Shivanand-hulikatti/meetapp/internal/service"
	"github.com/Shivanand-hulikatti/meetapp/internal/timerange"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

type ServeOptions struct {
	*RootOptions
	Migrate bool
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Migrate, "migrate", true, "apply pending migrations on start")
	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.App.Env)
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// ── 1. Storage ───────────────────────────────────────────────────────
	st, err := openStores(ctx, cfg, log, opts.Migrate)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer st.close()

	// ── 2. Notifications ─────────────────────────────────────────────────
	var m *metrics.Metrics
	var dispatchOpts []notify.Option
	subOpts := []service.SubscriptionOption{service.WithLocation(loc)}
	if cfg.Metrics.Enabled {
		m = metrics.New()
		dispatchOpts = append(dispatchOpts, notify.WithResultRecorder(m))
		subOpts = append(subOpts, service.WithOutcomeRecorder(m))
	}

	sender, closeSender, err := newSender(cfg, log)
	if err != nil {
		return fmt.Errorf("notifications: %w", err)
	}
	defer closeSender()

	dispatcher := notify.NewDispatcher(sender, log, cfg.Notify.Buffer, cfg.Notify.Workers, dispatchOpts...)
	dispatcher.Start(context.Background())

	// ── 3. Rate limiting ─────────────────────────────────────────────────
	var limiter handler.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		limiter = handler.NewRedisLimiter(rdb, cfg.Redis.RateLimit, cfg.Redis.RateLimitWindow)
		log.Info("rate limiting subscriptions", "limit", cfg.Redis.RateLimit, "window", cfg.Redis.RateLimitWindow)
	}

	// ── 4. Wire up layers ────────────────────────────────────────────────
	clock := timerange.SystemClock{}
	router := handler.NewRouter(handler.RouterConfig{
		Log:           log,
		Tokens:        auth.NewService(cfg.JWT.Secret, cfg.JWT.TTL),
		Limiter:       limiter,
		Metrics:       m,
		Meetups:       service.NewMeetupService(st.meetups, clock, loc),
		Subscriptions: service.NewSubscriptionService(st.meetups, st.subs, st.users, dispatcher, log, subOpts...),
		Users:         service.NewUserService(st.users),
	})

	// ── 5. Start server with graceful shutdown ───────────────────────────
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Warn("pending notifications abandoned", "err", err)
	}
	log.Info("server stopped")
	return nil
}
