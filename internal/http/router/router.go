package router

import (
	"encoding/json"
	"net/http"

	"github.com/atlasfield/fieldtrack-api/internal/auth"
	"github.com/atlasfield/fieldtrack-api/internal/config"
	"github.com/atlasfield/fieldtrack-api/internal/database"
	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/atlasfield/fieldtrack-api/internal/http/handler"
	"github.com/atlasfield/fieldtrack-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/atlasfield/fieldtrack-api/docs" // generated swagger docs
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	ticketHandler    *handler.TicketHandler
	timeEntryHandler *handler.TimeEntryHandler
	expenseHandler   *handler.ExpenseHandler
	exportHandler    *handler.ExportHandler
	userHandler      *handler.UserHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	ticketHandler *handler.TicketHandler,
	timeEntryHandler *handler.TimeEntryHandler,
	expenseHandler *handler.ExpenseHandler,
	exportHandler *handler.ExportHandler,
	userHandler *handler.UserHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		ticketHandler:    ticketHandler,
		timeEntryHandler: timeEntryHandler,
		expenseHandler:   expenseHandler,
		exportHandler:    exportHandler,
		userHandler:      userHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Liveness probe
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Readiness probe with connection pool stats
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats":   stats,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes, all authenticated
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)

		r.Get("/auth/me", rt.userHandler.Me)
		r.With(rt.authMiddleware.RequireRole(domain.RoleAdmin, domain.RoleApprover)).
			Get("/users", rt.userHandler.List)

		// Time entries
		r.Route("/time-entries", func(r chi.Router) {
			r.Get("/", rt.timeEntryHandler.List)
			r.Post("/", rt.timeEntryHandler.Create)
			r.Get("/{id}", rt.timeEntryHandler.GetByID)
			r.Put("/{id}", rt.timeEntryHandler.Update)
			r.Delete("/{id}", rt.timeEntryHandler.Delete)
		})

		// Service tickets
		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", rt.ticketHandler.List)
			r.Get("/next-number", rt.ticketHandler.NextNumber)
			r.Get("/ready-for-export", rt.ticketHandler.ReadyForExport)
			r.Get("/{id}", rt.ticketHandler.GetByID)

			// Approval and later pipeline actions
			approvers := rt.authMiddleware.RequireRole(domain.RoleAdmin, domain.RoleApprover)
			r.With(approvers).Post("/", rt.ticketHandler.Create)
			r.With(approvers).Put("/{id}/number", rt.ticketHandler.UpdateNumber)
			r.With(approvers).Put("/{id}/status", rt.ticketHandler.UpdateStatus)
			r.With(approvers).Post("/{id}/discard", rt.ticketHandler.Discard)
			r.With(approvers).Post("/{id}/restore", rt.ticketHandler.Restore)
			r.With(rt.authMiddleware.RequireAdmin).Delete("/{id}", rt.ticketHandler.Delete)

			// Expense line items
			r.Get("/{id}/expenses", rt.expenseHandler.ListByTicket)
			r.Post("/{id}/expenses", rt.expenseHandler.Create)

			// Export documents
			r.Get("/{id}/exports", rt.exportHandler.ListByTicket)
			r.With(approvers).Post("/{id}/exports", rt.exportHandler.Upload)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Put("/{id}", rt.expenseHandler.Update)
			r.Delete("/{id}", rt.expenseHandler.Delete)
		})

		r.Route("/exports", func(r chi.Router) {
			r.Get("/{id}/download", rt.exportHandler.Download)
			r.With(rt.authMiddleware.RequireAdmin).Delete("/{id}", rt.exportHandler.Delete)
		})
	})

	return r
}
