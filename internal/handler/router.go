package handler

import (
	"log/slog"
	"net/http"

	"github.com/Shivanand-hulikatti/meetapp/internal/auth"
	"github.com/Shivanand-hulikatti/meetapp/internal/metrics"
	"github.com/Shivanand-hulikatti/meetapp/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig collects what the router needs. Limiter and Metrics are
// optional.
type RouterConfig struct {
	Log           *slog.Logger
	Tokens        *auth.Service
	Limiter       Limiter
	Metrics       *metrics.Metrics
	Meetups       *service.MeetupService
	Subscriptions *service.SubscriptionService
	Users         *service.UserService
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig) http.Handler {
	meetups := NewMeetupHandler(cfg.Meetups, cfg.Log)
	subs := NewSubscriptionHandler(cfg.Subscriptions, cfg.Log)
	users := NewUserHandler(cfg.Users, cfg.Log)

	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(cfg.Log))         // structured access log
	r.Use(CORS)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Get("/health", HealthCheck)
	r.Post("/users", users.Register)

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(cfg.Tokens))

		r.Route("/meetups", func(r chi.Router) {
			r.Get("/", meetups.List)
			r.Post("/", meetups.Create)
			r.Get("/{id}", meetups.Get)
			r.Put("/{id}", meetups.Update)
			r.Delete("/{id}", meetups.Cancel)
			r.Post("/{id}/close", meetups.Close)
		})
		r.Get("/organizing", meetups.Organizing)

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/", subs.List)
			r.With(optionalRateLimit(cfg.Limiter, cfg.Log)...).Post("/", subs.Subscribe)
		})
	})

	return r
}

func optionalRateLimit(l Limiter, log *slog.Logger) []func(http.Handler) http.Handler {
	if l == nil {
		return nil
	}
	return []func(http.Handler) http.Handler{RateLimit(l, log)}
}
