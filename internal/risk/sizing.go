package risk

import (
	"math"

	"quantdesk/internal/domain"
)

// Sizing is the recommended share count for a new position together with the
// figures it was derived from. RecommendedQuantity never exceeds MaxQuantity.
type Sizing struct {
	RecommendedQuantity int64
	MaxQuantity         int64
	// RiskAmount is the per-trade risk budget in account currency.
	RiskAmount    float64
	PositionValue float64
	PortfolioPct  float64
}

// Defaults used by the Kelly estimate when market data omits a field.
const (
	defaultVolatility     = 0.2
	defaultExpectedReturn = 0.1
)

// PositionSizing computes a conservative position size for the symbol at the
// given price. Three candidates are evaluated and the smallest wins: a fixed
// percentage of portfolio value, a capped Kelly fraction, and a
// volatility-scaled variant of the fixed percentage.
func (m *Manager) PositionSizing(price, portfolioValue float64, md *MarketData) (*Sizing, error) {
	if price <= 0 {
		return nil, &InvalidInputError{Field: "price", Reason: "must be positive"}
	}
	if portfolioValue <= 0 {
		return nil, &InvalidInputError{Field: "portfolio_value", Reason: "must be positive"}
	}
	s := positionSizing(price, portfolioValue, md, m.Limits())
	return &s, nil
}

func positionSizing(price, portfolioValue float64, md *MarketData, limits Limits) Sizing {
	fixedQty := int64(math.Floor(portfolioValue * limits.MaxPositionPct / price))

	// Kelly-like estimate: fraction = expectedReturn / volatility², capped
	// at 25% of the portfolio.
	riskQty := fixedQty
	if md != nil {
		vol := defaultVolatility
		if md.Volatility != nil {
			vol = *md.Volatility
		}
		er := defaultExpectedReturn
		if md.ExpectedReturn != nil {
			er = *md.ExpectedReturn
		}
		kelly := er / (vol * vol)
		kelly = math.Max(0, math.Min(kelly, 0.25))
		riskQty = int64(math.Floor(portfolioValue * kelly / price))
	}

	// Scale the fixed-percentage quantity down as volatility rises above
	// the 20% baseline, floored at 20% of the original size.
	volQty := fixedQty
	if md != nil && md.Volatility != nil {
		mult := math.Max(0.2, 1-(*md.Volatility-0.2))
		volQty = int64(math.Floor(float64(fixedQty) * mult))
	}

	recommended := min3(fixedQty, riskQty, volQty)
	positionValue := float64(recommended) * price

	return Sizing{
		RecommendedQuantity: recommended,
		MaxQuantity:         fixedQty,
		RiskAmount:          portfolioValue * limits.MaxPortfolioRiskPct,
		PositionValue:       positionValue,
		PortfolioPct:        positionValue / portfolioValue,
	}
}

// RiskLevels derives stop-loss and take-profit prices for an entry at the
// given price. Without market data the bands are fixed at 5% and 15%. With a
// known volatility the stop sits two daily standard deviations away and the
// target enforces a 1:2 risk-reward ratio.
func (m *Manager) RiskLevels(price float64, side domain.OrderSide, md *MarketData) (stopLoss, takeProfit float64, err error) {
	if price <= 0 {
		return 0, 0, &InvalidInputError{Field: "price", Reason: "must be positive"}
	}
	stopLoss, takeProfit = riskLevels(price, side, md)
	return stopLoss, takeProfit, nil
}

func riskLevels(price float64, side domain.OrderSide, md *MarketData) (stopLoss, takeProfit float64) {
	if md == nil || md.Volatility == nil {
		if side == domain.OrderSideSell {
			return price * 1.05, price * 0.85
		}
		return price * 0.95, price * 1.15
	}

	dailyVol := *md.Volatility / math.Sqrt(252)
	stopDistance := 2 * dailyVol * price
	profitDistance := 2 * stopDistance

	if side == domain.OrderSideSell {
		return price + stopDistance, price - profitDistance
	}
	return price - stopDistance, price + profitDistance
}

func min3(a, b, c int64) int64 {
	return min(a, min(b, c))
}
