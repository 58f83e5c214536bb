package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"quantdesk/internal/domain"
)

func validationOrder(qty int64) *domain.OrderRequest {
	return &domain.OrderRequest{
		Symbol:      "AAPL",
		Quantity:    qty,
		Side:        domain.OrderSideBuy,
		Type:        domain.OrderTypeMarket,
		TimeInForce: domain.TimeInForceDay,
	}
}

func healthyPortfolio() PortfolioState {
	return PortfolioState{PortfolioValue: 100_000, DailyPL: 0, BuyingPower: 50_000}
}

func TestValidateOrderPasses(t *testing.T) {
	m := newTestManager(t)

	ok, reasons := m.ValidateOrder(validationOrder(10), 100,
		AccountSettings{TradingEnabled: true}, healthyPortfolio())
	assert.True(t, ok)
	assert.Empty(t, reasons)
}

func TestValidateOrderTradingDisabled(t *testing.T) {
	m := newTestManager(t)

	ok, reasons := m.ValidateOrder(validationOrder(10), 100,
		AccountSettings{TradingEnabled: false}, healthyPortfolio())
	assert.False(t, ok)
	assert.Equal(t, []string{"Trading is disabled for this account"}, reasons)
}

func TestValidateOrderDailyLossLimit(t *testing.T) {
	m := newTestManager(t)

	portfolio := healthyPortfolio()
	portfolio.DailyPL = -6000 // beyond 5% of 100k

	ok, reasons := m.ValidateOrder(validationOrder(10), 100,
		AccountSettings{TradingEnabled: true}, portfolio)
	assert.False(t, ok)
	assert.Contains(t, reasons, "Daily loss limit reached")

	// A loss exactly at the limit does not trip the check.
	portfolio.DailyPL = -5000
	ok, _ = m.ValidateOrder(validationOrder(10), 100,
		AccountSettings{TradingEnabled: true}, portfolio)
	assert.True(t, ok)
}

func TestValidateOrderPositionSize(t *testing.T) {
	m := newTestManager(t)

	// 150 shares at $100 is 15% of portfolio, over the 10% cap, but still
	// within buying power.
	ok, reasons := m.ValidateOrder(validationOrder(150), 100,
		AccountSettings{TradingEnabled: true}, healthyPortfolio())
	assert.False(t, ok)
	assert.Equal(t, []string{"Order value exceeds maximum position size"}, reasons)
}

func TestValidateOrderBuyingPower(t *testing.T) {
	m := newTestManager(t)

	portfolio := healthyPortfolio()
	portfolio.BuyingPower = 500

	ok, reasons := m.ValidateOrder(validationOrder(10), 100,
		AccountSettings{TradingEnabled: true}, portfolio)
	assert.False(t, ok)
	assert.Equal(t, []string{"Insufficient buying power"}, reasons)
}

func TestValidateOrderSellIgnoresBuyingPower(t *testing.T) {
	m := newTestManager(t)

	req := validationOrder(10)
	req.Side = domain.OrderSideSell
	portfolio := healthyPortfolio()
	portfolio.BuyingPower = 0

	ok, reasons := m.ValidateOrder(req, 100,
		AccountSettings{TradingEnabled: true}, portfolio)
	assert.True(t, ok)
	assert.Empty(t, reasons)
}

func TestValidateOrderAccumulatesReasons(t *testing.T) {
	m := newTestManager(t)

	portfolio := PortfolioState{PortfolioValue: 100_000, DailyPL: -10_000, BuyingPower: 100}

	ok, reasons := m.ValidateOrder(validationOrder(200), 100,
		AccountSettings{TradingEnabled: false}, portfolio)
	assert.False(t, ok)
	assert.Equal(t, []string{
		"Trading is disabled for this account",
		"Daily loss limit reached",
		"Order value exceeds maximum position size",
		"Insufficient buying power",
	}, reasons)
}
