package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"nannyledger/internal/auth"
	"nannyledger/internal/cache"
	"nannyledger/internal/cli"
	apphttp "nannyledger/internal/http"
	applog "nannyledger/internal/log"
	"nannyledger/internal/middleware/ratelimit"
	"nannyledger/internal/services"
	"nannyledger/internal/session"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	seeded, err := repo.SeedSettings(ctx, cfg.SeedSettings())
	if err != nil {
		logger.Error("Failed to seed settings", applog.FieldError, err)
		os.Exit(1)
	}
	if seeded {
		logger.Info("Settings seeded from environment", applog.FieldOperation, applog.OpStartup)
	}

	// Events are optional; a nil Publisher interface disables them.
	var publisher services.Publisher
	amqpClient, err := cli.ConnectAMQP(cfg)
	if err != nil {
		logger.Error("Failed to connect to AMQP", applog.FieldError, err, applog.FieldErrorType, applog.ErrorTypeAMQP)
		os.Exit(1)
	}
	if amqpClient != nil {
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("Publishing ledger events", "exchange", cfg.AMQPExchange)
	}

	store, closeStore, err := cli.NewSessionStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize session store", applog.FieldError, err, applog.FieldErrorType, applog.ErrorTypeSession)
		os.Exit(1)
	}
	defer closeStore()

	gate, err := auth.NewGate(cfg.AppPasswordHash, cfg.AppPassword)
	if err != nil {
		logger.Error("Failed to initialize password gate", applog.FieldError, err, applog.FieldErrorType, applog.ErrorTypeAuth)
		os.Exit(1)
	}

	limiter := ratelimit.NewLimiter(ratelimit.DefaultConfig())
	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:     ":" + cfg.Port,
		Title:    cfg.AppTitle,
		Ledger:   services.NewLedgerService(repo, publisher),
		Gate:     gate,
		Sessions: session.NewManager(store, cfg.SessionTTL, cfg.CookieSecure),
		Limiter:  limiter,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", applog.FieldError, err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting nannyledger server",
			"port", cfg.Port,
			"session_backend", cfg.SessionBackend,
			"events", amqpClient != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		limiter.Run(gctx, 5*time.Minute)
		return nil
	})

	if mem, ok := store.(*session.MemoryStore); ok {
		janitor := cache.NewJanitor(mem.Cleaner())
		g.Go(func() error {
			janitor.Run(gctx, 10*time.Minute)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
