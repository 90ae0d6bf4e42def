package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/wolfman30/propdesk-ai-platform/internal/http/middleware"
	"github.com/wolfman30/propdesk-ai-platform/internal/leads"
	"github.com/wolfman30/propdesk-ai-platform/internal/webchat"
	"github.com/wolfman30/propdesk-ai-platform/pkg/logging"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	WebChatHandler     *webchat.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// ChatRateLimiter throttles the public chat and lead endpoints per client IP.
	ChatRateLimiter *httpmiddleware.RateLimiter

	// AdminJWTSecret enables /admin routes when set.
	AdminJWTSecret string

	ReadinessChecks map[string]ReadinessCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health checks, metrics)
	r.Group(func(public chi.Router) {
		public.Get("/health", health)
		public.Get("/ready", readiness(cfg.ReadinessChecks))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Widget-facing routes, scoped by X-Agency-Id
	r.Group(func(tenant chi.Router) {
		tenant.Use(requireAgencyID)
		if cfg.ChatRateLimiter != nil {
			tenant.Use(httpmiddleware.RateLimit(cfg.ChatRateLimiter))
		}

		if cfg.LeadsHandler != nil {
			tenant.Post("/leads/web", cfg.LeadsHandler.CreateWebLead)
		}
		if cfg.WebChatHandler != nil {
			tenant.Route("/chat", func(chat chi.Router) {
				chat.Post("/conversations", cfg.WebChatHandler.StartConversation)
				chat.Get("/conversations/{conversationID}", cfg.WebChatHandler.GetConversation)
				chat.Post("/conversations/{conversationID}/messages", cfg.WebChatHandler.PostMessage)
				chat.Get("/ws", cfg.WebChatHandler.HandleWebSocket)
			})
		}
	})

	// Agency back-office routes (HMAC JWT, optionally scoped to one agency)
	if cfg.AdminJWTSecret != "" {
		r.Route("/admin/agencies/{agencyID}", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))
			admin.Use(httpmiddleware.RequireAgencyScope)
			admin.Use(middleware.Compress(5))
			if cfg.LeadsHandler != nil {
				admin.Get("/leads", cfg.LeadsHandler.ListLeads)
				admin.Get("/leads/{leadID}", cfg.LeadsHandler.GetLead)
			}
			if cfg.WebChatHandler != nil {
				admin.Get("/conversations", cfg.WebChatHandler.ListConversations)
			}
		})
	}

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func readiness(checks map[string]ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		overall := "ok"
		if status != http.StatusOK {
			overall = "unavailable"
		}
		writeJSON(w, status, map[string]any{"status": overall, "checks": results})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
