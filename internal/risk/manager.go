// Package risk evaluates proposed trades against configurable exposure
// limits and aggregates portfolio-wide risk metrics. All functions are pure
// computations over caller-supplied snapshots; the package performs no I/O.
package risk

import (
	"fmt"
	"math"
	"sync"

	"quantdesk/internal/domain"
)

// Limits holds the configurable risk thresholds. Percentages are fractions
// of portfolio value (0.10 = 10%).
type Limits struct {
	// MaxPositionPct caps a single position's share of portfolio value.
	MaxPositionPct float64
	// MaxPortfolioRiskPct is the risk budget per trade.
	MaxPortfolioRiskPct float64
	// MaxDailyLossPct halts trading once breached.
	MaxDailyLossPct float64
	// MaxSectorPct caps aggregate exposure to a single sector.
	MaxSectorPct float64
	// MaxCorrelation and MaxLeverage are accepted and stored but not yet
	// enforced by any check; see DESIGN.md.
	MaxCorrelation float64
	MaxLeverage    float64
}

// DefaultLimits returns the standard limit set.
func DefaultLimits() Limits {
	return Limits{
		MaxPositionPct:      0.10,
		MaxPortfolioRiskPct: 0.02,
		MaxDailyLossPct:     0.05,
		MaxSectorPct:        0.30,
		MaxCorrelation:      0.70,
		MaxLeverage:         2.0,
	}
}

// validate rejects non-positive thresholds.
func (l Limits) validate() error {
	if l.MaxPositionPct <= 0 {
		return &InvalidInputError{Field: "max_position_pct", Reason: "must be positive"}
	}
	if l.MaxPortfolioRiskPct <= 0 {
		return &InvalidInputError{Field: "max_portfolio_risk_pct", Reason: "must be positive"}
	}
	if l.MaxDailyLossPct <= 0 {
		return &InvalidInputError{Field: "max_daily_loss_pct", Reason: "must be positive"}
	}
	if l.MaxSectorPct <= 0 {
		return &InvalidInputError{Field: "max_sector_pct", Reason: "must be positive"}
	}
	return nil
}

// InvalidInputError reports a malformed input to a risk computation, such as
// a non-positive price or portfolio value.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// MarketData is optional per-symbol metadata that sharpens an assessment.
// A nil *MarketData means no metadata is available.
type MarketData struct {
	// Sector enables the sector-concentration check when non-empty.
	Sector string
	// Volatility is annualized (0.25 = 25%/yr); nil when unknown.
	Volatility *float64
	// ExpectedReturn is annualized; nil when unknown.
	ExpectedReturn *float64
}

// Level buckets a risk score.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Score thresholds for risk levels.
const (
	scoreCritical = 70
	scoreHigh     = 50
	scoreMedium   = 30
)

// Assessment is the outcome of evaluating one proposed trade. Warnings and
// recommendations preserve generation order.
type Assessment struct {
	Level           Level
	Score           float64
	Warnings        []string
	Recommendations []string
	// MaxPositionSize is the largest share count the position-size limit
	// permits at the assessed price.
	MaxPositionSize int64
	StopLoss        *float64
	TakeProfit      *float64
}

// Manager evaluates trades against its configured limits. It is safe for
// concurrent use; limits may be updated at runtime.
type Manager struct {
	mu     sync.RWMutex
	limits Limits
}

// NewManager creates a Manager with the given limits.
func NewManager(limits Limits) (*Manager, error) {
	if err := limits.validate(); err != nil {
		return nil, err
	}
	return &Manager{limits: limits}, nil
}

// Limits returns a copy of the current limits.
func (m *Manager) Limits() Limits {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.limits
}

// UpdateLimits replaces the current limits.
func (m *Manager) UpdateLimits(limits Limits) error {
	if err := limits.validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.limits = limits
	m.mu.Unlock()
	return nil
}

// AssessTradeRisk scores a proposed trade against the current portfolio.
// It always returns an assessment, even a critical one; blocking critical
// trades is the caller's policy decision.
func (m *Manager) AssessTradeRisk(
	symbol string,
	quantity int64,
	price float64,
	side domain.OrderSide,
	portfolioValue float64,
	positions []domain.Position,
	md *MarketData,
) (*Assessment, error) {
	if quantity <= 0 {
		return nil, &InvalidInputError{Field: "quantity", Reason: "must be positive"}
	}
	if price <= 0 {
		return nil, &InvalidInputError{Field: "price", Reason: "must be positive"}
	}
	if portfolioValue <= 0 {
		return nil, &InvalidInputError{Field: "portfolio_value", Reason: "must be positive"}
	}

	limits := m.Limits()

	var (
		riskFactors     []float64
		warnings        []string
		recommendations []string
	)

	positionValue := float64(quantity) * price
	portfolioPct := positionValue / portfolioValue

	// Position-size check.
	switch {
	case portfolioPct > limits.MaxPositionPct:
		riskFactors = append(riskFactors, 50)
		warnings = append(warnings, fmt.Sprintf(
			"Position size %.1f%% exceeds maximum %.1f%% of portfolio",
			portfolioPct*100, limits.MaxPositionPct*100))
		capped := int64(math.Floor(portfolioValue * limits.MaxPositionPct / price))
		recommendations = append(recommendations, fmt.Sprintf(
			"Consider reducing quantity to %d shares", capped))
	case portfolioPct > 0.8*limits.MaxPositionPct:
		riskFactors = append(riskFactors, 30)
		warnings = append(warnings, fmt.Sprintf(
			"Position size %.1f%% is approaching the %.1f%% maximum",
			portfolioPct*100, limits.MaxPositionPct*100))
	}

	// Symbol-concentration check: existing exposure in this symbol plus the
	// new position against the per-trade risk budget.
	totalExposure := positionValue
	for _, p := range positions {
		if p.Symbol == symbol {
			totalExposure += p.MarketValue.InexactFloat64()
		}
	}
	if totalExposure > limits.MaxPortfolioRiskPct*portfolioValue {
		riskFactors = append(riskFactors, 40)
		warnings = append(warnings, fmt.Sprintf(
			"Total exposure to %s exceeds the portfolio risk budget", symbol))
	}

	// Sector-concentration check.
	if md != nil && md.Sector != "" {
		sectorExposure := positionValue
		for _, p := range positions {
			if p.Sector == md.Sector {
				sectorExposure += p.MarketValue.InexactFloat64()
			}
		}
		sectorPct := sectorExposure / portfolioValue

		var contribution float64
		switch {
		case sectorPct > limits.MaxSectorPct:
			contribution = 50
		case sectorPct > 0.8*limits.MaxSectorPct:
			contribution = 25
		}
		if contribution > 0 {
			riskFactors = append(riskFactors, contribution)
		}
		if contribution > 30 {
			warnings = append(warnings, fmt.Sprintf(
				"Sector concentration in %s at %.1f%% exceeds maximum %.1f%%",
				md.Sector, sectorPct*100, limits.MaxSectorPct*100))
		}
	}

	// Volatility check.
	if md != nil && md.Volatility != nil && *md.Volatility > 0.5 {
		riskFactors = append(riskFactors, 35)
		warnings = append(warnings, fmt.Sprintf(
			"High volatility: %.0f%% annualized", *md.Volatility*100))
		recommendations = append(recommendations,
			"Consider reducing position size due to high volatility")
	}

	var score float64
	for _, f := range riskFactors {
		score += f
	}
	score = math.Min(100, score)

	sizing := positionSizing(price, portfolioValue, md, limits)
	stop, target := riskLevels(price, side, md)

	return &Assessment{
		Level:           levelForScore(score),
		Score:           score,
		Warnings:        warnings,
		Recommendations: recommendations,
		MaxPositionSize: sizing.MaxQuantity,
		StopLoss:        &stop,
		TakeProfit:      &target,
	}, nil
}

// levelForScore maps a score to its level bucket.
func levelForScore(score float64) Level {
	switch {
	case score >= scoreCritical:
		return LevelCritical
	case score >= scoreHigh:
		return LevelHigh
	case score >= scoreMedium:
		return LevelMedium
	default:
		return LevelLow
	}
}
