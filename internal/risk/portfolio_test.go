package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantdesk/internal/domain"
)

func TestPortfolioRiskEmpty(t *testing.T) {
	m := newTestManager(t)

	metrics, err := m.PortfolioRisk(nil, 100_000)
	require.NoError(t, err)

	assert.Zero(t, metrics.TotalExposure)
	assert.Zero(t, metrics.LeverageRatio)
	assert.Zero(t, metrics.ConcentrationRisk)
	assert.Empty(t, metrics.SectorConcentration)

	// Placeholders until return history exists.
	assert.Equal(t, 2000.0, metrics.DailyVaR)
	assert.Equal(t, 0.15, metrics.MaxDrawdown)
	assert.Equal(t, 1.5, metrics.SharpeRatio)
	assert.Equal(t, 1.0, metrics.Beta)
}

func TestPortfolioRiskSectorsAndConcentration(t *testing.T) {
	m := newTestManager(t)

	positions := []domain.Position{
		position("AAPL", "technology", 30_000),
		position("MSFT", "technology", 20_000),
		position("XOM", "energy", 10_000),
		position("ZZZ", "", 40_000),
	}

	metrics, err := m.PortfolioRisk(positions, 100_000)
	require.NoError(t, err)

	assert.Equal(t, 100_000.0, metrics.TotalExposure)
	assert.InDelta(t, 1.0, metrics.LeverageRatio, 1e-9)

	assert.InDelta(t, 0.50, metrics.SectorConcentration["technology"], 1e-9)
	assert.InDelta(t, 0.10, metrics.SectorConcentration["energy"], 1e-9)
	assert.InDelta(t, 0.40, metrics.SectorConcentration["unknown"], 1e-9)

	// Herfindahl: 0.3² + 0.2² + 0.1² + 0.4² = 0.30.
	assert.InDelta(t, 0.30, metrics.ConcentrationRisk, 1e-9)
}

func TestPortfolioRiskSinglePositionHerfindahl(t *testing.T) {
	m := newTestManager(t)

	metrics, err := m.PortfolioRisk(
		[]domain.Position{position("AAPL", "technology", 100_000)},
		100_000,
	)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, metrics.ConcentrationRisk, 1e-9)
}

func TestPortfolioRiskInvalidPortfolioValue(t *testing.T) {
	m := newTestManager(t)

	_, err := m.PortfolioRisk(nil, 0)
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestPortfolioRiskWithReturns(t *testing.T) {
	m := newTestManager(t)

	returns := []float64{0.01, -0.02, 0.015, -0.005, 0.02, -0.01, 0.005, 0.01}

	metrics, err := m.PortfolioRiskWithReturns(nil, 100_000, returns, nil)
	require.NoError(t, err)

	// Historical fields replace the placeholders.
	assert.Equal(t, DailyVaR(returns, 0.95)*100_000, metrics.DailyVaR)
	assert.Equal(t, MaxDrawdown(returns), metrics.MaxDrawdown)
	assert.Equal(t, SharpeRatio(returns), metrics.SharpeRatio)
	// No benchmark: beta keeps the placeholder.
	assert.Equal(t, 1.0, metrics.Beta)
}

func TestPortfolioRiskWithReturnsBenchmark(t *testing.T) {
	m := newTestManager(t)

	returns := []float64{0.01, -0.02, 0.015, -0.005, 0.02}
	benchmark := []float64{0.005, -0.01, 0.0075, -0.0025, 0.01}

	metrics, err := m.PortfolioRiskWithReturns(nil, 100_000, returns, benchmark)
	require.NoError(t, err)

	// The portfolio moves exactly twice the benchmark.
	assert.InDelta(t, 2.0, metrics.Beta, 1e-9)
}

func TestPortfolioRiskWithReturnsEmptySeries(t *testing.T) {
	m := newTestManager(t)

	metrics, err := m.PortfolioRiskWithReturns(nil, 100_000, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, metrics.DailyVaR)
	assert.Equal(t, 1.0, metrics.Beta)
}
