package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/stockwise/backend/internal/bootstrap"
	"github.com/stockwise/backend/internal/domain/integration"
	"github.com/stockwise/backend/internal/infrastructure/config"
	"github.com/stockwise/backend/internal/infrastructure/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one resync and returns the process exit code: 0 when the
// run succeeded, 1 otherwise
func run(args []string, stdout, stderr io.Writer) int {
	syncType, err := parseArgs(args, stderr)
	if err != nil {
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	baseLog, err := bootstrap.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync(baseLog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, baseLog)
	if err != nil {
		baseLog.Error("Failed to initialize application", zap.Error(err))
		return 1
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			app.Logger.Error("Error releasing resources", zap.Error(err))
		}
	}()

	report, err := app.Orchestrator.Run(ctx, syncType)
	if report != nil {
		if encErr := writeReport(stdout, report); encErr != nil {
			app.Logger.Warn("Failed to write sync report", zap.Error(encErr))
		}
	}
	if err != nil {
		app.Logger.Error("Sync failed", zap.String("type", syncType.String()), zap.Error(err))
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (integration.SyncType, error) {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }
	if err := fs.Parse(args); err != nil {
		return "", err
	}

	if fs.NArg() != 1 {
		printUsage(stderr)
		return "", integration.ErrInvalidSyncType
	}
	syncType, err := integration.ParseSyncType(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Unknown sync type %q\n\n", fs.Arg(0))
		printUsage(stderr)
		return "", err
	}
	return syncType, nil
}

func writeReport(w io.Writer, report any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: sync <type>

Runs one resync against the commerce platform and exits 0 on success, 1 on failure.

Types:
  full        Locations, catalog, inventory and sales
  products    Catalog items and variations
  locations   Locations only
  sales       Completed orders in the trailing sales window
  inventory   Current stock counts

Environment variables:
  STOCKWISE_COMMERCE_ACCESS_TOKEN   Commerce platform access token
  STOCKWISE_DATABASE_HOST           Database host (default: localhost)
  STOCKWISE_DATABASE_PORT           Database port (default: 5432)
  STOCKWISE_DATABASE_USER           Database user
  STOCKWISE_DATABASE_PASSWORD       Database password
  STOCKWISE_DATABASE_DBNAME         Database name
  STOCKWISE_SYNC_SALES_WINDOW_DAYS  Days of sales history pulled per resync
`)
}
