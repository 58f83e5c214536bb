package risk

import (
	"quantdesk/internal/domain"
)

// Metrics summarizes portfolio-wide risk.
type Metrics struct {
	TotalExposure float64
	LeverageRatio float64
	// SectorConcentration maps sector name to its fraction of portfolio
	// value. Positions with no sector metadata are grouped under "unknown".
	SectorConcentration map[string]float64
	// ConcentrationRisk is the Herfindahl index of position weights,
	// in (0,1]; 1.0 means a single position holds the whole portfolio.
	ConcentrationRisk float64

	// DailyVaR, MaxDrawdown, SharpeRatio, and Beta are historical-return
	// statistics. PortfolioRisk fills them with placeholder values;
	// PortfolioRiskWithReturns computes them from return series.
	DailyVaR    float64
	MaxDrawdown float64
	SharpeRatio float64
	Beta        float64
}

// Placeholder values reported when no return history is available.
const (
	placeholderVaRPct      = 0.02
	placeholderMaxDrawdown = 0.15
	placeholderSharpe      = 1.5
	placeholderBeta        = 1.0
)

// PortfolioRisk computes structural risk metrics from the current positions.
// The historical fields (DailyVaR, MaxDrawdown, SharpeRatio, Beta) are
// placeholders; use PortfolioRiskWithReturns when return history exists.
func (m *Manager) PortfolioRisk(positions []domain.Position, portfolioValue float64) (*Metrics, error) {
	if portfolioValue <= 0 {
		return nil, &InvalidInputError{Field: "portfolio_value", Reason: "must be positive"}
	}

	metrics := &Metrics{
		SectorConcentration: make(map[string]float64),
		DailyVaR:            placeholderVaRPct * portfolioValue,
		MaxDrawdown:         placeholderMaxDrawdown,
		SharpeRatio:         placeholderSharpe,
		Beta:                placeholderBeta,
	}

	for _, p := range positions {
		mv := p.MarketValue.InexactFloat64()
		metrics.TotalExposure += mv

		sector := p.Sector
		if sector == "" {
			sector = "unknown"
		}
		metrics.SectorConcentration[sector] += mv / portfolioValue

		weight := mv / portfolioValue
		metrics.ConcentrationRisk += weight * weight
	}
	metrics.LeverageRatio = metrics.TotalExposure / portfolioValue

	return metrics, nil
}

// PortfolioRiskWithReturns is PortfolioRisk with the historical fields
// computed from daily portfolio returns. Beta is computed against
// benchmarkReturns when it has the same length as portfolioReturns,
// otherwise it stays at the placeholder.
func (m *Manager) PortfolioRiskWithReturns(
	positions []domain.Position,
	portfolioValue float64,
	portfolioReturns []float64,
	benchmarkReturns []float64,
) (*Metrics, error) {
	metrics, err := m.PortfolioRisk(positions, portfolioValue)
	if err != nil {
		return nil, err
	}
	if len(portfolioReturns) == 0 {
		return metrics, nil
	}

	metrics.DailyVaR = DailyVaR(portfolioReturns, 0.95) * portfolioValue
	metrics.MaxDrawdown = MaxDrawdown(portfolioReturns)
	metrics.SharpeRatio = SharpeRatio(portfolioReturns)
	if len(benchmarkReturns) == len(portfolioReturns) {
		metrics.Beta = Beta(portfolioReturns, benchmarkReturns)
	}
	return metrics, nil
}
