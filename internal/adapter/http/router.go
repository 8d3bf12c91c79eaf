package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fintally/claimcore/internal/adapter/http/handler"
	"github.com/fintally/claimcore/internal/adapter/http/middleware"
	"github.com/fintally/claimcore/internal/infrastructure/auth"
	"github.com/fintally/claimcore/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ClaimHandler         *handler.ClaimHandler
	ApprovalHandler      *handler.ApprovalHandler
	RuleHandler          *handler.RuleHandler
	ReimbursementHandler *handler.ReimbursementHandler
	RateHandler          *handler.RateHandler
	BudgetHandler        *handler.BudgetHandler
	HealthHandler        *handler.HealthHandler
	IdempotencyStore     usecase.IdempotencyStore
	JWTManager           *auth.JWTManager
	RateLimiter          *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Claims
		r.Route("/claims", func(r chi.Router) {
			r.Post("/", cfg.ClaimHandler.Create)
			r.Get("/", cfg.ClaimHandler.List)
			r.Get("/stats", cfg.ClaimHandler.Stats)
			r.Get("/{id}", cfg.ClaimHandler.Get)
			r.Post("/{id}/items", cfg.ClaimHandler.AddItem)
			r.Delete("/{id}/items/{itemID}", cfg.ClaimHandler.RemoveItem)
			r.Post("/{id}/submit", cfg.ClaimHandler.Submit)
			r.Get("/{id}/events", cfg.ClaimHandler.Events)
			r.Post("/{id}/decisions", cfg.ApprovalHandler.Decide)
			r.Post("/{id}/escalate", cfg.ApprovalHandler.Escalate)
			r.Get("/{id}/approvals", cfg.ApprovalHandler.Plan)
			r.Post("/{id}/reimburse", cfg.ReimbursementHandler.Process)
			r.Get("/{id}/reimbursements", cfg.ReimbursementHandler.ListByClaim)
		})

		// Approval inbox
		r.Get("/approvals/pending", cfg.ApprovalHandler.ListPending)

		// Rules
		r.Route("/rules", func(r chi.Router) {
			r.Post("/", cfg.RuleHandler.Create)
			r.Get("/", cfg.RuleHandler.List)
			r.Get("/{id}", cfg.RuleHandler.Get)
			r.Delete("/{id}", cfg.RuleHandler.Deactivate)
		})

		// Reimbursements
		r.Route("/reimbursements", func(r chi.Router) {
			r.Get("/{id}", cfg.ReimbursementHandler.Get)
			r.Post("/{id}/batch", cfg.ReimbursementHandler.AttachBatch)
		})

		// Exchange rates
		r.Route("/rates", func(r chi.Router) {
			r.Post("/", cfg.RateHandler.Ingest)
			r.Get("/convert", cfg.RateHandler.Convert)
		})

		// Budgets
		r.Post("/budgets", cfg.BudgetHandler.Create)
	})

	return r
}
