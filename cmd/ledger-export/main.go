// Command ledger-export writes the projected ledger as CSV, the same file the
// web export serves.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"nannyledger/internal/cli"
	applog "nannyledger/internal/log"
	"nannyledger/internal/services"
)

func main() {
	out := flag.String("o", "-", "output file, - for stdout")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentExport)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	if err := run(context.Background(), services.NewLedgerService(repo, nil), *out); err != nil {
		logger.Error("Export failed", applog.FieldOperation, applog.OpExport, applog.FieldError, err)
		repo.Close()
		os.Exit(1)
	}
	if *out != "-" {
		logger.Info("Ledger exported", "path", *out)
	}
}

func run(ctx context.Context, ledger *services.LedgerService, path string) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	bw := bufio.NewWriter(w)
	if err := ledger.WriteCSV(ctx, bw); err != nil {
		return err
	}
	return bw.Flush()
}
