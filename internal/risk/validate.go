package risk

import (
	"quantdesk/internal/domain"
)

// AccountSettings are the per-account flags consulted during order
// validation.
type AccountSettings struct {
	TradingEnabled bool
}

// PortfolioState is the account snapshot an order is validated against.
type PortfolioState struct {
	PortfolioValue float64
	// DailyPL is today's realized plus unrealized P&L; negative when losing.
	DailyPL     float64
	BuyingPower float64
}

// ValidateOrder gates an order before submission. All checks run and their
// failures accumulate; the order passes only when the reasons list is empty.
// price is the expected execution price (limit price, or a quote for market
// orders).
func (m *Manager) ValidateOrder(
	req *domain.OrderRequest,
	price float64,
	settings AccountSettings,
	portfolio PortfolioState,
) (bool, []string) {
	limits := m.Limits()
	var reasons []string

	if !settings.TradingEnabled {
		reasons = append(reasons, "Trading is disabled for this account")
	}

	if portfolio.DailyPL < -(portfolio.PortfolioValue * limits.MaxDailyLossPct) {
		reasons = append(reasons, "Daily loss limit reached")
	}

	notional := float64(req.Quantity) * price
	if notional > portfolio.PortfolioValue*limits.MaxPositionPct {
		reasons = append(reasons, "Order value exceeds maximum position size")
	}

	if req.Side == domain.OrderSideBuy && notional > portfolio.BuyingPower {
		reasons = append(reasons, "Insufficient buying power")
	}

	return len(reasons) == 0, reasons
}
