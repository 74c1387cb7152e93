package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	v1 "github.com/gosuda/gabinete/internal/api/v1"
	"github.com/gosuda/gabinete/internal/api/ws"
	"github.com/gosuda/gabinete/internal/auth"
	"github.com/gosuda/gabinete/internal/config"
	"github.com/gosuda/gabinete/internal/events"
	slackmsg "github.com/gosuda/gabinete/internal/messenger/slack"
	"github.com/gosuda/gabinete/internal/notify"
	"github.com/gosuda/gabinete/internal/postal"
	"github.com/gosuda/gabinete/internal/prefs"
	"github.com/gosuda/gabinete/internal/server/middleware"
	"github.com/gosuda/gabinete/internal/storage"
	"github.com/gosuda/gabinete/internal/store/postgres"
	redisstore "github.com/gosuda/gabinete/internal/store/redis"
	"github.com/gosuda/gabinete/internal/ticket"
)

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	cfg        *config.Config
}

// services are the application services behind the HTTP surface.
type services struct {
	auth    *auth.Service
	tickets v1.Tickets
	notify  *notify.Service
	prefs   *prefs.Store
	postal  *postal.Client
	hub     *ws.Hub
}

// New creates a Server with all routes wired. ctx bounds the background
// sweepers of the rate limiters.
func New(ctx context.Context, cfg *config.Config, store *postgres.Store, pubsub *redisstore.PubSub, objects *storage.S3Store, producer *events.Producer) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(hlog.NewHandler(log.Logger))
	router.Use(hlog.AccessHandler(accessLog))
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	svc := buildServices(cfg, store, pubsub, producer)

	s := &Server{
		router: router,
		cfg:    cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// Mount API routes on /api/v1 with two sub-groups:
	// 1. Unauthenticated group for auth and public office pages, limited per IP.
	// 2. Authenticated group for everything else, limited per tenant.
	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst))

			publicConfig := huma.DefaultConfig("Gabinete Public API", "1.0.0")
			publicConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			publicConfig.OpenAPIPath = "/public/openapi"
			publicConfig.DocsPath = "/public/docs"
			publicConfig.SchemasPath = "/public/schemas"
			publicAPI := humachi.New(r, publicConfig)
			registerPublicRoutes(publicAPI, store, svc)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.Secret))
			r.Use(middleware.RequireTenant())
			r.Use(middleware.RateLimit(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst))

			apiConfig := huma.DefaultConfig("Gabinete API", "1.0.0")
			apiConfig.Servers = []*huma.Server{
				{URL: "/api/v1"},
			}
			api := humachi.New(r, apiConfig)
			registerAPIRoutes(api, store, objects, cfg.Storage.Bucket, svc)
		})
	})

	// Postal code lookup, public and limited per IP.
	router.Route("/api/cep", func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		r.Get("/{cep}", postal.Handler(svc.postal))
	})

	// WebSocket routes. Browsers pass the token as ?access_token=.
	router.Route("/ws", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT.Secret, middleware.WithQueryToken()))
		r.Use(middleware.RequireTenant())
		registerWSRoutes(r, svc.hub)
	})

	// Liveness and readiness (unauthenticated).
	router.Get("/healthz", healthz)
	router.Get("/readyz", readyz(map[string]Pinger{
		"postgres": store,
		"redis":    pubsub,
	}))

	return s
}

func buildServices(cfg *config.Config, store *postgres.Store, pubsub *redisstore.PubSub, producer *events.Producer) services {
	// Both sinks stay nil interfaces when no chat platform is configured.
	var (
		ticketAlerts    ticket.Alerter
		broadcastAlerts notify.BroadcastAlerter
	)
	if alerts := buildAlerts(cfg); alerts != nil {
		ticketAlerts, broadcastAlerts = alerts, alerts
	}

	notifySvc := notify.NewService(store.Notifications(), pubsub, broadcastAlerts)
	fx := ticket.Effects{
		Audit:    store.Audit(),
		Realtime: pubsub,
		Events:   producer,
		Notifier: notifySvc,
		Alerts:   ticketAlerts,
	}

	query := ticket.NewQuery(store.Tickets())

	return services{
		auth: auth.NewService(store.Profiles(), store.Tenants(), cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL),
		tickets: v1.Tickets{
			Query:     query,
			Lifecycle: ticket.NewLifecycle(store.Tickets(), store.Profiles(), fx),
			Service:   ticket.NewService(query, store.Tickets(), store.Comments(), store.Categories(), store.Profiles(), fx),
		},
		notify: notifySvc,
		prefs:  prefs.NewStore(pubsub),
		postal: postal.NewClient(cfg.Postal.BaseURL, cfg.Postal.Timeout),
		hub:    ws.NewHub(pubsub),
	}
}

// buildAlerts registers the staff chat targets. It returns nil when no
// platform is configured.
func buildAlerts(cfg *config.Config) *notify.OfficeAlerts {
	registry := notify.NewRegistry()
	if cfg.Slack.BotToken != "" && cfg.Slack.Channel != "" {
		registry.Register(slackmsg.NewFromToken(cfg.Slack.BotToken), cfg.Slack.Channel)
		log.Info().Str("channel", cfg.Slack.Channel).Msg("slack office alerts enabled")
	}
	if registry.Len() == 0 {
		return nil
	}
	return notify.NewOfficeAlerts(registry)
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	ev := hlog.FromRequest(r).Info()
	if status >= http.StatusInternalServerError {
		ev = hlog.FromRequest(r).Error()
	}
	ev.Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", chimw.GetReqID(r.Context())).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
