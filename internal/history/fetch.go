package history

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"quantdesk/internal/domain"
	"quantdesk/internal/util"
)

// Fetcher pulls daily bars from the Alpaca market-data API into a Store.
// Fetches are idempotent reads, so transient failures retry with backoff.
type Fetcher struct {
	client    *marketdata.Client
	store     *Store
	limiter   *util.RateLimiter
	batchSize int
	log       *slog.Logger
}

// NewFetcher creates a Fetcher with the given Alpaca credentials and target
// store. ratePerMin bounds API calls per minute.
func NewFetcher(apiKey, apiSecret, dataURL string, store *Store, ratePerMin int) *Fetcher {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return &Fetcher{
		client:    marketdata.NewClient(opts),
		store:     store,
		limiter:   util.NewRateLimiter(ratePerMin),
		batchSize: 200,
		log:       slog.Default().With("component", "history-fetcher"),
	}
}

// Sync fetches daily bars for the given symbols over [start, end] and merges
// them into the store.
func (f *Fetcher) Sync(ctx context.Context, symbols []string, start, end time.Time) error {
	for i := 0; i < len(symbols); i += f.batchSize {
		batch := symbols[i:min(i+f.batchSize, len(symbols))]

		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}

		var bars []domain.Bar
		err := util.Retry(ctx, 3, time.Second, func() error {
			var err error
			bars, err = f.fetchBatch(batch, start, end)
			return err
		})
		if err != nil {
			return fmt.Errorf("fetching bars for batch starting %s: %w", batch[0], err)
		}

		if err := f.store.WriteBars(bars); err != nil {
			return fmt.Errorf("storing bars: %w", err)
		}
		f.log.Info("batch synced", "symbols", len(batch), "bars", len(bars))
	}
	return nil
}

func (f *Fetcher) fetchBatch(symbols []string, start, end time.Time) ([]domain.Bar, error) {
	multiBars, err := f.client.GetMultiBars(symbols, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("GetMultiBars: %w", err)
	}

	var bars []domain.Bar
	for symbol, symbolBars := range multiBars {
		for _, b := range symbolBars {
			bars = append(bars, domain.Bar{
				Symbol:    strings.ToUpper(symbol),
				Timestamp: b.Timestamp,
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
				Volume:    int64(b.Volume),
			})
		}
	}
	return bars, nil
}
