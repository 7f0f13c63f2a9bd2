// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"qrstats/internal/auth"
	"qrstats/internal/config"
	"qrstats/internal/handler"
	"qrstats/internal/service"
	"qrstats/internal/shortener"
	"qrstats/internal/workers"
	customLogger "qrstats/pkg/logger"
)

// collisionWarnThreshold is the birthday-bound collision chance above which startup warns
const collisionWarnThreshold = 0.01

func main() {
	// Health check for Docker: probe the running server
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		os.Exit(healthcheck())
	}

	// Load environment variables from .env file (development only)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appLogger := customLogger.NewLogger("info", os.Getenv("ENVIRONMENT"))
	defer appLogger.Sync()
	appLogger.Info("Starting qrstats")

	cfg, err := config.LoadConfig()
	if err != nil {
		appLogger.Fatal("Failed to load configuration", "error", err)
	}
	appLogger.SetLevel(cfg.LogLevel)

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatal("Server stopped with error", "error", err)
	}
	appLogger.Info("Server exited successfully")
}

func run(cfg *config.Config, appLogger *customLogger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := openBackend(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", cfg.StoreBackend, err)
	}
	defer stores.Close()

	router, counterPool, err := newApp(cfg, stores, appLogger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appLogger.Info("Server starting",
			"port", cfg.ServerPort,
			"backend", cfg.StoreBackend,
			"id_strategy", cfg.IDStrategy,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		appLogger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Server forced to shutdown", "error", err)
		}

		// Drain accepted increments once no more redirects can arrive
		if err := counterPool.Stop(shutdownCtx); err != nil {
			appLogger.Error("Counter pool did not drain", "error", err)
		}
		return nil
	})

	return g.Wait()
}

// newApp wires the domain services over the selected stores and starts the counter pool
func newApp(cfg *config.Config, stores *backend, appLogger *customLogger.Logger) (*gin.Engine, *workers.CounterPool, error) {
	generator, err := shortener.NewGenerator(cfg.IDStrategy, cfg.IDLength)
	if err != nil {
		return nil, nil, err
	}
	if p := shortener.StrategyCollisionProbability(cfg.IDStrategy, cfg.IDLength, cfg.ExpectedTargets); p > collisionWarnThreshold {
		appLogger.Warn("Identifier space is small for the expected number of targets, allocations will retry often",
			"id_strategy", cfg.IDStrategy,
			"id_length", cfg.IDLength,
			"expected_targets", cfg.ExpectedTargets,
			"collision_probability", p,
		)
	}
	allocator := shortener.NewAllocator(generator, stores.records, cfg.MaxAllocationAttempts, appLogger)
	gate := auth.NewGate(auth.NewBcryptHasher(cfg.BcryptCost))

	counterPool := workers.NewCounterPool(stores.counters, cfg.CounterWorkers, cfg.CounterQueueSize, cfg.CounterTimeout, appLogger)
	counterPool.Start()

	targetService := service.NewTargetService(stores.records, stores.counters, allocator, gate, counterPool, cfg.BaseURL, appLogger)
	targetHandler := handler.NewTargetHandler(targetService, appLogger)

	return handler.NewRouter(targetHandler, cfg, appLogger), counterPool, nil
}

func healthcheck() int {
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8081"
	}

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://localhost:%s/health", port))
	if err != nil {
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 1
	}
	return 0
}
