package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"papertrade/configs"
	"papertrade/internal/database"
	delivery "papertrade/internal/delivery/http"
	"papertrade/internal/infra"
	"papertrade/internal/repository"
	"papertrade/internal/service"
	"papertrade/web"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Load configuration
	cfg := configs.Load()

	ctx := context.Background()

	// Initialize database
	db, err := infra.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	tradeRepo := repository.NewTradeRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	ledgerStore := repository.NewLedgerStore(db)

	// Initialize services
	quoteClient := service.NewQuoteClient(cfg.Quote.BaseURL, cfg.Quote.Timeout)
	policy := service.NewPasswordPolicy(cfg.Auth.Password)
	credService := service.NewCredentialService(userRepo, policy, cfg.Trading.StartingCash, cfg.Auth.BcryptCost)
	sessionService := service.NewSessionService(sessionRepo, cfg.Auth.SessionTTL)
	ledgerService := service.NewLedgerService(ledgerStore, userRepo, tradeRepo, quoteClient)

	// Start the session purge scheduler
	scheduler := infra.NewScheduler(sessionService)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Parse HTML templates
	templates, err := web.Templates()
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	// Initialize handlers and routes
	webHandler := delivery.NewWebHandler(templates, credService, ledgerService, sessionService, quoteClient)
	apiHandler := delivery.NewAPIHandler(credService, ledgerService, sessionService, quoteClient)

	e := echo.New()
	e.HideBanner = true
	delivery.SetupRoutes(e, &delivery.RouterConfig{
		Web:      webHandler,
		API:      apiHandler,
		Sessions: sessionService,
	})

	// Application server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Ops server with health endpoints on a separate port
	opsSrv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Server.OpsPort),
		Handler:     opsRouter(db),
		ReadTimeout: 5 * time.Second,
	}

	log.Printf("Papertrade starting on %s (ops on %s)", srv.Addr, opsSrv.Addr)
	log.Printf("Environment: %s", cfg.Server.Env)
	log.Printf("Starting cash: %s", cfg.Trading.StartingCash.StringFixed(2))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	go func() {
		if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start ops server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Ops server forced to shutdown: %v", err)
	}

	log.Println("[OK] Server exited gracefully")
}

// opsRouter serves liveness and readiness probes
func opsRouter(db interface{ Ping(context.Context) error }) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","service":"papertrade","timestamp":%q}`, time.Now().Format(time.RFC3339))
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"status":"unhealthy","database":"unreachable"}`)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"ready","database":"healthy"}`)
	})

	return r
}
