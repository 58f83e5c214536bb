package history

import (
	"time"

	"quantdesk/internal/domain"
	"quantdesk/internal/risk"
)

// PortfolioReturns builds a daily portfolio return series over [start, end]
// by weighting each position's return series with its current share of total
// market value. Symbols with no stored history are skipped; series of
// different lengths are truncated to the shortest. Returns nil when no
// position has usable history.
func PortfolioReturns(store *Store, positions []domain.Position, start, end time.Time) ([]float64, error) {
	type series struct {
		weight  float64
		returns []float64
	}

	var all []series
	var totalMV float64
	shortest := -1
	for _, p := range positions {
		totalMV += p.MarketValue.InexactFloat64()
	}
	if totalMV <= 0 {
		return nil, nil
	}

	for _, p := range positions {
		closes, err := store.Closes(p.Symbol, start, end)
		if err != nil {
			return nil, err
		}
		returns := risk.Returns(closes)
		if len(returns) == 0 {
			continue
		}
		all = append(all, series{
			weight:  p.MarketValue.InexactFloat64() / totalMV,
			returns: returns,
		})
		if shortest < 0 || len(returns) < shortest {
			shortest = len(returns)
		}
	}
	if len(all) == 0 {
		return nil, nil
	}

	// Align on the most recent observations.
	portfolio := make([]float64, shortest)
	for _, s := range all {
		offset := len(s.returns) - shortest
		for i := 0; i < shortest; i++ {
			portfolio[i] += s.weight * s.returns[offset+i]
		}
	}
	return portfolio, nil
}
