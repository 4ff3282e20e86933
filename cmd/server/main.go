package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avandermeer/Fund-Accounting-Backend/internal/api"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/apperrors"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/brokerage"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/config"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/database"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/repository"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/scheduler"
	"github.com/avandermeer/Fund-Accounting-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection and apply migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	investorRepo := repository.NewInvestorRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	fundFlowRepo := repository.NewFundFlowRepository(db)
	taxEventRepo := repository.NewTaxEventRepository(db)
	brokerageRepo := repository.NewBrokerageRepository(db)

	// The brokerage client is optional: without a stored config the NAV
	// close job is disabled and portfolio values come from the admin API.
	brokerageClient := newBrokerageClient(brokerageRepo, cfg.Brokerage.FernetKey)

	// Create services
	systemService := service.NewSystemService(db)

	taxPolicy, err := service.NewTaxPolicy(cfg.Tax)
	if err != nil {
		log.Fatalf("Failed to configure tax policy: %v", err)
	}
	log.Printf("Tax policy: %s at rate %.2f", taxPolicy.Name(), taxPolicy.Rate())

	taxService := service.NewTaxService(taxEventRepo, taxPolicy)
	navService := service.NewNavService(snapshotRepo, investorRepo, balanceFetcher(brokerageClient))
	validationService := service.NewValidationService(
		investorRepo,
		snapshotRepo,
		transactionRepo,
		navService,
		positionFetcher(brokerageClient),
	)
	fundFlowService := service.NewFundFlowService(
		db,
		fundFlowRepo,
		investorRepo,
		transactionRepo,
		taxService,
		navService,
		validationService,
	)
	investorService := service.NewInvestorService(investorRepo, taxService, navService)
	transactionService := service.NewTransactionService(db, transactionRepo, investorRepo)

	// Scheduled jobs: daily NAV close and nightly validation sweep
	jobs, err := scheduler.New(cfg.Schedule, navService, validationService)
	if err != nil {
		log.Fatalf("Failed to configure scheduler: %v", err)
	}
	jobs.Start()
	defer jobs.Stop()

	// Create router
	router := api.NewRouter(api.Services{
		System:      systemService,
		Investor:    investorService,
		Nav:         navService,
		FundFlow:    fundFlowService,
		Tax:         taxService,
		Transaction: transactionService,
		Validation:  validationService,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// newBrokerageClient builds the brokerage client from the stored encrypted
// config, or returns nil when none is configured.
func newBrokerageClient(repo *repository.BrokerageRepository, fernetKey string) *brokerage.Client {
	bc, err := repo.GetConfig()
	if err != nil {
		if !errors.Is(err, apperrors.ErrBrokerageConfigNotFound) {
			log.Printf("Failed to load brokerage config: %v", err)
		}
		log.Println("No brokerage configured; daily NAV close disabled")
		return nil
	}

	client, err := brokerage.NewClient(bc, fernetKey)
	if err != nil {
		log.Printf("Failed to initialize brokerage client: %v", err)
		return nil
	}

	if warn := brokerage.TokenWarning(bc); warn != "" {
		log.Printf("Brokerage: %s", warn)
	}
	return client
}

// A nil *brokerage.Client must become a nil interface value, not a non-nil
// interface wrapping a nil pointer.

func balanceFetcher(c *brokerage.Client) service.BalanceFetcher {
	if c == nil {
		return nil
	}
	return c
}

func positionFetcher(c *brokerage.Client) service.PositionFetcher {
	if c == nil {
		return nil
	}
	return c
}
