// Command quantdesk-trader connects the configured broker account, prints an
// account and portfolio risk report, and optionally assesses and places a
// single risk-gated order.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"quantdesk/internal/broker"
	"quantdesk/internal/config"
	"quantdesk/internal/domain"
	"quantdesk/internal/gateway"
	"quantdesk/internal/history"
	"quantdesk/internal/journal"
	"quantdesk/internal/risk"
	"quantdesk/internal/util"
)

func main() {
	var (
		cfgPath    = flag.String("config", defaultConfigPath(), "path to YAML config")
		symbol     = flag.String("symbol", "", "symbol to trade; empty prints the report only")
		qty        = flag.Int64("qty", 0, "order quantity in shares")
		side       = flag.String("side", "buy", "order side: buy or sell")
		orderType  = flag.String("type", "market", "order type: market, limit, stop, stop_limit")
		limitPrice = flag.Float64("limit", 0, "limit price, required for limit and stop_limit orders")
		stopPrice  = flag.Float64("stop", 0, "stop price, required for stop and stop_limit orders")
		tif        = flag.String("tif", "day", "time in force: day, gtc, ioc, fok")
		price      = flag.Float64("price", 0, "expected execution price for risk checks (defaults to the limit price)")
		assessOnly = flag.Bool("assess-only", false, "assess the trade without placing it")
		force      = flag.Bool("force", false, "place the order even when the risk level is critical")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager, err := risk.NewManager(riskLimits(cfg.Risk))
	if err != nil {
		log.Fatalf("configuring risk limits: %v", err)
	}

	var opts []gateway.Option
	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			log.Fatalf("opening order journal: %v", err)
		}
		defer j.Close()
		opts = append(opts, gateway.WithRecorder(j))
	}
	gw := gateway.New(logger, opts...)

	brokerID := cfg.Trading.BrokerID
	creds := broker.Credentials{
		APIKey:    cfg.Alpaca.APIKey,
		APISecret: cfg.Alpaca.APISecret,
		Paper:     cfg.Trading.PaperMode,
		BaseURL:   cfg.Alpaca.BaseURL,
	}
	if !gw.AddConnection(ctx, brokerID, broker.Type(cfg.Trading.BrokerType), creds) {
		log.Fatalf("failed to connect broker %q (%s)", brokerID, cfg.Trading.BrokerType)
	}
	defer gw.RemoveConnection(brokerID)

	account, err := gw.GetAccount(ctx, brokerID)
	if err != nil {
		log.Fatalf("fetching account: %v", err)
	}
	positions, err := gw.GetPositions(ctx, brokerID)
	if err != nil {
		log.Fatalf("fetching positions: %v", err)
	}

	printAccount(account, positions)
	printPortfolioRisk(manager, cfg, account, positions)

	if *symbol == "" {
		return
	}

	req := &domain.OrderRequest{
		Symbol:      *symbol,
		Quantity:    *qty,
		Side:        domain.OrderSide(*side),
		Type:        domain.OrderType(*orderType),
		TimeInForce: domain.TimeInForce(*tif),
	}
	if *limitPrice > 0 {
		d := decimal.NewFromFloat(*limitPrice)
		req.LimitPrice = &d
	}
	if *stopPrice > 0 {
		d := decimal.NewFromFloat(*stopPrice)
		req.StopPrice = &d
	}

	checkPrice := *price
	if checkPrice == 0 {
		checkPrice = *limitPrice
	}
	if checkPrice <= 0 {
		log.Fatal("a positive -price (or -limit) is required for risk checks")
	}

	assessment, err := manager.AssessTradeRisk(
		req.Symbol, req.Quantity, checkPrice, req.Side,
		account.PortfolioValue.InexactFloat64(), positions, nil,
	)
	if err != nil {
		log.Fatalf("assessing trade: %v", err)
	}
	printAssessment(assessment)

	// Daily P&L tracking lives with the persistence layer; the CLI assumes
	// a flat day.
	ok, reasons := manager.ValidateOrder(req, checkPrice, risk.AccountSettings{TradingEnabled: true}, risk.PortfolioState{
		PortfolioValue: account.PortfolioValue.InexactFloat64(),
		DailyPL:        0,
		BuyingPower:    account.BuyingPower.InexactFloat64(),
	})
	if !ok {
		for _, r := range reasons {
			fmt.Printf("validation failed: %s\n", r)
		}
		os.Exit(1)
	}

	if *assessOnly {
		return
	}
	if assessment.Level == risk.LevelCritical && !*force {
		fmt.Println("risk level is critical; re-run with -force to place anyway")
		os.Exit(1)
	}

	result, err := gw.PlaceOrder(ctx, brokerID, req)
	if err != nil {
		log.Fatalf("placing order: %v", err)
	}
	fmt.Printf("order %s %s (%d %s %s)\n",
		result.OrderID, result.Status, result.Quantity, result.Side, result.Symbol)
}

func defaultConfigPath() string {
	if p := os.Getenv("QUANTDESK_CONFIG"); p != "" {
		return p
	}
	return "config/quantdesk.yaml"
}

// riskLimits maps config values onto the defaults, keeping any zero field at
// its default.
func riskLimits(rc config.Risk) risk.Limits {
	limits := risk.DefaultLimits()
	if rc.MaxPositionPct > 0 {
		limits.MaxPositionPct = rc.MaxPositionPct
	}
	if rc.MaxPortfolioRiskPct > 0 {
		limits.MaxPortfolioRiskPct = rc.MaxPortfolioRiskPct
	}
	if rc.MaxDailyLossPct > 0 {
		limits.MaxDailyLossPct = rc.MaxDailyLossPct
	}
	if rc.MaxSectorPct > 0 {
		limits.MaxSectorPct = rc.MaxSectorPct
	}
	if rc.MaxCorrelation > 0 {
		limits.MaxCorrelation = rc.MaxCorrelation
	}
	if rc.MaxLeverage > 0 {
		limits.MaxLeverage = rc.MaxLeverage
	}
	return limits
}

func printAccount(account *domain.AccountInfo, positions []domain.Position) {
	fmt.Printf("account %s  equity=%s  cash=%s  buying_power=%s\n",
		account.AccountNumber, account.Equity, account.Cash, account.BuyingPower)
	for _, p := range positions {
		fmt.Printf("  %-6s %s @ %s  mv=%s  pnl=%s\n",
			p.Symbol, p.Quantity, p.AvgCost, p.MarketValue, p.UnrealizedPL)
	}
}

func printPortfolioRisk(manager *risk.Manager, cfg *config.Config, account *domain.AccountInfo, positions []domain.Position) {
	pv := account.PortfolioValue.InexactFloat64()
	if pv <= 0 {
		return
	}

	var metrics *risk.Metrics
	var err error
	if cfg.History.DataDir != "" {
		metrics, err = portfolioRiskFromHistory(manager, cfg, positions, pv)
	} else {
		metrics, err = manager.PortfolioRisk(positions, pv)
	}
	if err != nil {
		slog.Warn("portfolio risk computation failed", "error", err)
		return
	}

	fmt.Printf("portfolio risk: exposure=%.2f leverage=%.2f herfindahl=%.3f var=%.2f sharpe=%.2f maxdd=%.1f%% beta=%.2f\n",
		metrics.TotalExposure, metrics.LeverageRatio, metrics.ConcentrationRisk,
		metrics.DailyVaR, metrics.SharpeRatio, metrics.MaxDrawdown*100, metrics.Beta)
	for sector, pct := range metrics.SectorConcentration {
		fmt.Printf("  sector %-12s %.1f%%\n", sector, pct*100)
	}
}

// portfolioRiskFromHistory computes the historical metrics from the last
// year of stored daily bars, falling back to placeholders when the store has
// no usable data.
func portfolioRiskFromHistory(manager *risk.Manager, cfg *config.Config, positions []domain.Position, pv float64) (*risk.Metrics, error) {
	store := history.NewStore(cfg.History.DataDir)
	end := time.Now()
	start := end.AddDate(-1, 0, 0)

	returns, err := history.PortfolioReturns(store, positions, start, end)
	if err != nil {
		return nil, err
	}

	var benchmark []float64
	if cfg.History.Benchmark != "" {
		closes, err := store.Closes(cfg.History.Benchmark, start, end)
		if err == nil {
			benchmark = risk.Returns(closes)
		}
	}
	return manager.PortfolioRiskWithReturns(positions, pv, returns, benchmark)
}

func printAssessment(a *risk.Assessment) {
	fmt.Printf("risk %s (score %.0f)  max_position=%d", a.Level, a.Score, a.MaxPositionSize)
	if a.StopLoss != nil && a.TakeProfit != nil {
		fmt.Printf("  stop=%.2f target=%.2f", *a.StopLoss, *a.TakeProfit)
	}
	fmt.Println()
	for _, w := range a.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	for _, r := range a.Recommendations {
		fmt.Printf("  recommendation: %s\n", r)
	}
}
