package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"nannyledger/internal/amqp"
	"nannyledger/internal/backend"
	"nannyledger/internal/cli"
	applog "nannyledger/internal/log"
	"nannyledger/internal/services"
	"nannyledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)
	logger.Info("Starting ledger-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the ledger worker",
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	mirrorCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid mirror configuration", applog.FieldError, err, applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}
	mirror, err := backend.NewFactory(logger.Logger).CreateMirror(ctx, mirrorCfg)
	if err != nil {
		logger.Error("Failed to initialize ledger mirror",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeSheets,
			"backend", cfg.MirrorBackend)
		os.Exit(1)
	}

	amqpClient, err := cli.ConnectAMQP(cfg)
	if err != nil {
		logger.Error("Failed to connect to AMQP", applog.FieldError, err, applog.FieldErrorType, applog.ErrorTypeAMQP)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// The worker only reads; it never publishes.
	ledger := services.NewLedgerService(repo, nil)
	mw := worker.NewMirrorWorker(ledger, mirror)

	if err := mw.MirrorAll(ctx); err != nil {
		logger.Error("Initial mirror failed, continuing with event consumption",
			applog.FieldOperation, applog.OpMirror,
			applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Consuming ledger events", "queue", cfg.AMQPQueue, "mirror", cfg.MirrorBackend)
		if err := amqpClient.Consume(gctx, mw.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	// Catches up on events published while the worker was down.
	g.Go(func() error {
		mw.Resync(gctx, 15*time.Minute)
		return nil
	})

	if err := g.Wait(); err != nil {
		code := exitCode(err)
		if code == exitBrokerLost {
			logger.Error("Broker connection lost, exiting so the supervisor can reconnect",
				applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeAMQP)
		} else {
			logger.Error("Event consumption failed",
				applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeAMQP)
		}
		os.Exit(code)
	}
	logger.Info("ledger-worker stopped")
}

const (
	exitFailure = 1
	// exitBrokerLost is EX_TEMPFAIL: the worker itself is fine and a restart
	// should succeed once RabbitMQ is back.
	exitBrokerLost = 75
)

func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	case amqp.IsConnectionError(err):
		return exitBrokerLost
	default:
		return exitFailure
	}
}
