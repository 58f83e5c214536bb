// Command quantdesk-history syncs daily price bars for the configured
// symbols from the Alpaca market-data API into the Parquet history store.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"quantdesk/internal/config"
	"quantdesk/internal/history"
	"quantdesk/internal/util"
)

func main() {
	var (
		cfgPath  = flag.String("config", defaultConfigPath(), "path to YAML config")
		startStr = flag.String("start", "", "start date (YYYY-MM-DD), defaults to config history.start_date")
		endStr   = flag.String("end", "", "end date (YYYY-MM-DD), defaults to yesterday")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	if cfg.History.DataDir == "" {
		log.Fatal("history.data_dir is not configured")
	}
	symbols := flag.Args()
	if len(symbols) == 0 {
		symbols = cfg.History.Symbols
	}
	if cfg.History.Benchmark != "" {
		symbols = append(symbols, cfg.History.Benchmark)
	}
	if len(symbols) == 0 {
		log.Fatal("no symbols: pass them as arguments or set history.symbols")
	}

	start, err := resolveDate(*startStr, cfg.History.StartDate, time.Now().AddDate(-1, 0, 0))
	if err != nil {
		log.Fatalf("parsing start date: %v", err)
	}
	end, err := resolveDate(*endStr, "", time.Now().AddDate(0, 0, -1))
	if err != nil {
		log.Fatalf("parsing end date: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := history.NewStore(cfg.History.DataDir)
	fetcher := history.NewFetcher(
		cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL,
		store, cfg.History.RateLimitPerMin,
	)

	if err := fetcher.Sync(ctx, symbols, start, end); err != nil {
		log.Fatalf("syncing history: %v", err)
	}
	slog.Info("history sync complete", "symbols", len(symbols), "start", start.Format("2006-01-02"), "end", end.Format("2006-01-02"))
}

func defaultConfigPath() string {
	if p := os.Getenv("QUANTDESK_CONFIG"); p != "" {
		return p
	}
	return "config/quantdesk.yaml"
}

func resolveDate(flagVal, cfgVal string, fallback time.Time) (time.Time, error) {
	v := flagVal
	if v == "" {
		v = cfgVal
	}
	if v == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", v)
}
