package broker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"quantdesk/internal/domain"
)

// Compile-time interface check.
var _ Adapter = (*SimulatorAdapter)(nil)

// SimulatorAdapter implements the Adapter interface for paper trading and
// tests. It fills orders immediately against seeded last prices, tracking
// cash and positions in memory without external API calls.
type SimulatorAdapter struct {
	mu        sync.Mutex
	connected bool
	cash      decimal.Decimal
	positions map[string]*domain.Position
	orders    map[string]*domain.OrderResult
	prices    map[string]decimal.Decimal
	now       func() time.Time
}

// NewSimulatorAdapter creates a SimulatorAdapter with the given starting
// cash balance.
func NewSimulatorAdapter(startingCash decimal.Decimal) *SimulatorAdapter {
	return &SimulatorAdapter{
		cash:      startingCash,
		positions: make(map[string]*domain.Position),
		orders:    make(map[string]*domain.OrderResult),
		prices:    make(map[string]decimal.Decimal),
		now:       time.Now,
	}
}

// Name returns "simulator".
func (s *SimulatorAdapter) Name() string { return "simulator" }

// SetPrice seeds the last trade price used to fill market orders and value
// positions in symbol.
func (s *SimulatorAdapter) SetPrice(symbol string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[symbol] = price
	if p, ok := s.positions[symbol]; ok {
		s.revalue(p)
	}
}

// Connect marks the simulator as connected. It never fails: there is no
// upstream session to validate.
func (s *SimulatorAdapter) Connect(ctx context.Context, _ Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	return nil
}

// GetAccount computes the simulated account snapshot from cash and current
// position values.
func (s *SimulatorAdapter) GetAccount(ctx context.Context) (*domain.AccountInfo, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	equity := s.cash
	for _, p := range s.positions {
		equity = equity.Add(p.MarketValue)
	}
	return &domain.AccountInfo{
		AccountNumber:         "SIM000001",
		BuyingPower:           s.cash,
		Cash:                  s.cash,
		PortfolioValue:        equity,
		DayTradingBuyingPower: s.cash,
		Equity:                equity,
	}, nil
}

// PlaceOrder fills the order immediately at the limit, stop, or seeded last
// price and adjusts cash and positions.
func (s *SimulatorAdapter) PlaceOrder(ctx context.Context, req *domain.OrderRequest) (*domain.OrderResult, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.fillPrice(req)
	if !ok {
		return nil, &OrderRejectedError{
			Broker: s.Name(),
			Reason: "no market price for " + req.Symbol,
		}
	}

	qty := decimal.NewFromInt(req.Quantity)
	notional := qty.Mul(price)

	if req.Side == domain.OrderSideBuy {
		if notional.GreaterThan(s.cash) {
			return nil, &OrderRejectedError{
				Broker: s.Name(),
				Reason: "insufficient buying power",
			}
		}
		s.cash = s.cash.Sub(notional)
		s.applyBuy(req.Symbol, qty, price)
	} else {
		held := decimal.Zero
		if p, ok := s.positions[req.Symbol]; ok {
			held = p.Quantity
		}
		if qty.GreaterThan(held) {
			return nil, &OrderRejectedError{
				Broker: s.Name(),
				Reason: "insufficient position to sell",
			}
		}
		s.cash = s.cash.Add(notional)
		s.applySell(req.Symbol, qty)
	}

	submitted := s.now()
	result := &domain.OrderResult{
		OrderID:        uuid.NewString(),
		Status:         domain.OrderStatusFilled,
		Symbol:         req.Symbol,
		Quantity:       req.Quantity,
		Side:           req.Side,
		FilledPrice:    &price,
		FilledQuantity: req.Quantity,
		SubmittedAt:    &submitted,
	}
	s.orders[result.OrderID] = result
	return result, nil
}

// GetOrder returns a previously placed order.
func (s *SimulatorAdapter) GetOrder(ctx context.Context, orderID string) (*domain.OrderResult, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, &APIError{Broker: s.Name(), Op: "get_order", Message: "order not found: " + orderID, StatusCode: 404}
	}
	cp := *o
	return &cp, nil
}

// CancelOrder rejects cancellation: simulated fills are immediate, so there
// is never an open order to cancel.
func (s *SimulatorAdapter) CancelOrder(ctx context.Context, orderID string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[orderID]; !ok {
		return &APIError{Broker: s.Name(), Op: "cancel_order", Message: "order not found: " + orderID, StatusCode: 404}
	}
	return &APIError{Broker: s.Name(), Op: "cancel_order", Message: "order already filled", StatusCode: 422}
}

// GetPositions returns copies of all simulated positions.
func (s *SimulatorAdapter) GetPositions(ctx context.Context) ([]domain.Position, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Position, 0, len(s.positions))
	for _, p := range s.positions {
		out = append(out, *p)
	}
	return out, nil
}

// GetOrders lists placed orders. The simulator fills immediately, so the
// "open" filter always returns an empty list.
func (s *SimulatorAdapter) GetOrders(ctx context.Context, statusFilter string) ([]domain.OrderResult, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if statusFilter == "open" {
		return nil, nil
	}
	out := make([]domain.OrderResult, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *SimulatorAdapter) ready(ctx context.Context) error {
	s.mu.Lock()
	connected := s.connected
	s.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}
	return ctx.Err()
}

// fillPrice picks the execution price: limit price, then stop price, then
// the seeded last trade price.
func (s *SimulatorAdapter) fillPrice(req *domain.OrderRequest) (decimal.Decimal, bool) {
	if req.LimitPrice != nil {
		return *req.LimitPrice, true
	}
	if req.StopPrice != nil {
		return *req.StopPrice, true
	}
	price, ok := s.prices[req.Symbol]
	return price, ok
}

func (s *SimulatorAdapter) applyBuy(symbol string, qty, price decimal.Decimal) {
	p, ok := s.positions[symbol]
	if !ok {
		p = &domain.Position{
			Symbol:  symbol,
			Side:    domain.PositionSideLong,
			AvgCost: price,
		}
		s.positions[symbol] = p
	}
	// Weighted-average cost over the combined quantity.
	oldCost := p.AvgCost.Mul(p.Quantity)
	p.Quantity = p.Quantity.Add(qty)
	p.AvgCost = oldCost.Add(qty.Mul(price)).Div(p.Quantity)
	s.revalue(p)
}

func (s *SimulatorAdapter) applySell(symbol string, qty decimal.Decimal) {
	p := s.positions[symbol]
	p.Quantity = p.Quantity.Sub(qty)
	if p.Quantity.IsZero() {
		delete(s.positions, symbol)
		return
	}
	s.revalue(p)
}

// revalue recomputes market value and unrealized P&L from the last price,
// falling back to average cost when no price has been seeded.
func (s *SimulatorAdapter) revalue(p *domain.Position) {
	last, ok := s.prices[p.Symbol]
	if !ok {
		last = p.AvgCost
	}
	p.MarketValue = p.Quantity.Mul(last)
	cost := p.Quantity.Mul(p.AvgCost)
	p.UnrealizedPL = p.MarketValue.Sub(cost)
	if !cost.IsZero() {
		p.UnrealizedPLPercent = p.UnrealizedPL.Div(cost)
	}
}
