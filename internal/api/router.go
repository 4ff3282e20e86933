package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/api/handlers"
	custommiddleware "github.com/avandermeer/Fund-Accounting-Backend/internal/api/middleware"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/config"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/service"
)

// Services bundles the service-layer dependencies the router wires into
// handlers.
type Services struct {
	System      *service.SystemService
	Investor    *service.InvestorService
	Nav         *service.NavService
	FundFlow    *service.FundFlowService
	Tax         *service.TaxService
	Transaction *service.TransactionService
	Validation  *service.ValidationService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/investors", func(r chi.Router) {
			investorHandler := handlers.NewInvestorHandler(svc.Investor, svc.Transaction)
			r.Get("/", investorHandler.Investors)
			r.Post("/", investorHandler.CreateInvestor)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", investorHandler.Investor)
				r.Get("/position", investorHandler.Position)
				r.Get("/transactions", investorHandler.Transactions)
			})
		})

		r.Route("/nav", func(r chi.Router) {
			navHandler := handlers.NewNavHandler(svc.Nav)
			r.Get("/", navHandler.History)
			r.Get("/latest", navHandler.Latest)
			r.With(custommiddleware.APIKeyMiddleware).Post("/", navHandler.Compute)
		})

		r.Route("/fund-flows", func(r chi.Router) {
			fundFlowHandler := handlers.NewFundFlowHandler(svc.FundFlow)
			r.Get("/", fundFlowHandler.FundFlows)
			r.Post("/", fundFlowHandler.Submit)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", fundFlowHandler.FundFlow)
				r.Post("/cancel", fundFlowHandler.Cancel)

				// Administrative lifecycle transitions
				r.Group(func(r chi.Router) {
					r.Use(custommiddleware.APIKeyMiddleware)
					r.Post("/approve", fundFlowHandler.Approve)
					r.Post("/awaiting-funds", fundFlowHandler.AwaitingFunds)
					r.Post("/match", fundFlowHandler.Match)
					r.Post("/process", fundFlowHandler.Process)
					r.Post("/reject", fundFlowHandler.Reject)
				})
			})
		})

		r.Route("/tax-events", func(r chi.Router) {
			taxEventHandler := handlers.NewTaxEventHandler(svc.Tax)
			r.Get("/", taxEventHandler.TaxEvents)
			r.Get("/quarterly-summary", taxEventHandler.QuarterlySummary)
		})

		r.Route("/transactions", func(r chi.Router) {
			transactionHandler := handlers.NewTransactionHandler(svc.Transaction)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", transactionHandler.Transaction)
				r.With(custommiddleware.APIKeyMiddleware).Post("/reverse", transactionHandler.Reverse)
			})
		})

		r.Route("/validation", func(r chi.Router) {
			validationHandler := handlers.NewValidationHandler(svc.Validation)
			r.Get("/run", validationHandler.Run)
		})
	})

	return r
}
