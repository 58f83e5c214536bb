package broker

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	alpacaapi "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"

	"quantdesk/internal/domain"
)

// Compile-time interface check.
var _ Adapter = (*AlpacaAdapter)(nil)

const (
	alpacaLiveURL  = "https://api.alpaca.markets"
	alpacaPaperURL = "https://paper-api.alpaca.markets"

	defaultRequestTimeout = 10 * time.Second
)

// AlpacaAdapter implements the Adapter interface on the Alpaca trading API.
// The zero value is unconnected; Connect builds the API client and validates
// the credentials.
type AlpacaAdapter struct {
	client  *alpacaapi.Client
	timeout time.Duration
}

// NewAlpacaAdapter creates an unconnected AlpacaAdapter. A non-positive
// timeout selects the default request timeout.
func NewAlpacaAdapter(timeout time.Duration) *AlpacaAdapter {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &AlpacaAdapter{timeout: timeout}
}

// Name returns "alpaca".
func (a *AlpacaAdapter) Name() string { return "alpaca" }

// Connect builds the Alpaca client for the environment selected by creds and
// validates the session with a single account fetch. The adapter is
// connected only after this returns nil.
func (a *AlpacaAdapter) Connect(ctx context.Context, creds Credentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	baseURL := creds.BaseURL
	if baseURL == "" {
		if creds.Paper {
			baseURL = alpacaPaperURL
		} else {
			baseURL = alpacaLiveURL
		}
	}

	client := alpacaapi.NewClient(alpacaapi.ClientOpts{
		APIKey:    creds.APIKey,
		APISecret: creds.APISecret,
		BaseURL:   baseURL,
		HTTPClient: &http.Client{
			Timeout: a.timeout,
		},
	})

	if _, err := client.GetAccount(); err != nil {
		return a.wrapErr("connect", err)
	}

	a.client = client
	return nil
}

// GetAccount returns the current account snapshot.
func (a *AlpacaAdapter) GetAccount(ctx context.Context) (*domain.AccountInfo, error) {
	if err := a.ready(ctx); err != nil {
		return nil, err
	}
	acct, err := a.client.GetAccount()
	if err != nil {
		return nil, a.wrapErr("get_account", err)
	}
	return &domain.AccountInfo{
		AccountNumber:         acct.AccountNumber,
		BuyingPower:           acct.BuyingPower,
		Cash:                  acct.Cash,
		PortfolioValue:        acct.PortfolioValue,
		DayTradingBuyingPower: acct.DaytradingBuyingPower,
		Equity:                acct.Equity,
	}, nil
}

// PlaceOrder submits the order to Alpaca. Cancellation is only honored
// before submission: an order already on the wire cannot be un-sent, so the
// in-flight call runs to its own timeout.
func (a *AlpacaAdapter) PlaceOrder(ctx context.Context, req *domain.OrderRequest) (*domain.OrderResult, error) {
	if err := a.ready(ctx); err != nil {
		return nil, err
	}

	qty := decimal.NewFromInt(req.Quantity)
	order, err := a.client.PlaceOrder(alpacaapi.PlaceOrderRequest{
		Symbol:      req.Symbol,
		Qty:         &qty,
		Side:        alpacaSide(req.Side),
		Type:        alpacaOrderType(req.Type),
		TimeInForce: alpacaTIF(req.TimeInForce),
		LimitPrice:  req.LimitPrice,
		StopPrice:   req.StopPrice,
	})
	if err != nil {
		var apiErr *alpacaapi.APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusForbidden || apiErr.StatusCode == http.StatusUnprocessableEntity) {
			return nil, &OrderRejectedError{Broker: a.Name(), Reason: apiErr.Message}
		}
		return nil, a.wrapErr("place_order", err)
	}
	return alpacaOrderResult(order), nil
}

// GetOrder returns the current state of an order.
func (a *AlpacaAdapter) GetOrder(ctx context.Context, orderID string) (*domain.OrderResult, error) {
	if err := a.ready(ctx); err != nil {
		return nil, err
	}
	order, err := a.client.GetOrder(orderID)
	if err != nil {
		return nil, a.wrapErr("get_order", err)
	}
	return alpacaOrderResult(order), nil
}

// CancelOrder requests cancellation of an open order.
func (a *AlpacaAdapter) CancelOrder(ctx context.Context, orderID string) error {
	if err := a.ready(ctx); err != nil {
		return err
	}
	if err := a.client.CancelOrder(orderID); err != nil {
		return a.wrapErr("cancel_order", err)
	}
	return nil
}

// GetPositions returns all open positions in the account.
func (a *AlpacaAdapter) GetPositions(ctx context.Context) ([]domain.Position, error) {
	if err := a.ready(ctx); err != nil {
		return nil, err
	}
	positions, err := a.client.GetPositions()
	if err != nil {
		return nil, a.wrapErr("get_positions", err)
	}

	out := make([]domain.Position, 0, len(positions))
	for _, p := range positions {
		pos := domain.Position{
			Symbol:   p.Symbol,
			Quantity: p.Qty,
			Side:     domain.PositionSideLong,
			AvgCost:  p.AvgEntryPrice,
		}
		if p.Side == "short" {
			pos.Side = domain.PositionSideShort
		}
		if p.MarketValue != nil {
			pos.MarketValue = *p.MarketValue
		}
		if p.UnrealizedPL != nil {
			pos.UnrealizedPL = *p.UnrealizedPL
		}
		if p.UnrealizedPLPC != nil {
			pos.UnrealizedPLPercent = *p.UnrealizedPLPC
		}
		out = append(out, pos)
	}
	return out, nil
}

// GetOrders lists orders filtered by status; an empty filter lists all.
func (a *AlpacaAdapter) GetOrders(ctx context.Context, statusFilter string) ([]domain.OrderResult, error) {
	if err := a.ready(ctx); err != nil {
		return nil, err
	}
	if statusFilter == "" {
		statusFilter = "all"
	}
	orders, err := a.client.GetOrders(alpacaapi.GetOrdersRequest{
		Status: statusFilter,
		Limit:  500,
	})
	if err != nil {
		return nil, a.wrapErr("get_orders", err)
	}

	out := make([]domain.OrderResult, 0, len(orders))
	for i := range orders {
		out = append(out, *alpacaOrderResult(&orders[i]))
	}
	return out, nil
}

// ready reports ErrNotConnected before Connect succeeds and propagates an
// already-cancelled context.
func (a *AlpacaAdapter) ready(ctx context.Context) error {
	if a.client == nil {
		return ErrNotConnected
	}
	return ctx.Err()
}

// wrapErr normalizes SDK failures into the adapter's stable error surface.
func (a *AlpacaAdapter) wrapErr(op string, err error) error {
	out := &APIError{
		Broker:  a.Name(),
		Op:      op,
		Message: err.Error(),
		Err:     err,
	}
	var apiErr *alpacaapi.APIError
	if errors.As(err, &apiErr) {
		out.StatusCode = apiErr.StatusCode
		out.Message = apiErr.Message
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		out.Timeout = true
	}
	return out
}

func alpacaOrderResult(o *alpacaapi.Order) *domain.OrderResult {
	res := &domain.OrderResult{
		OrderID:        o.ID,
		Status:         domain.OrderStatus(o.Status),
		Symbol:         o.Symbol,
		Side:           domain.OrderSide(o.Side),
		FilledPrice:    o.FilledAvgPrice,
		FilledQuantity: o.FilledQty.IntPart(),
	}
	if o.Qty != nil {
		res.Quantity = o.Qty.IntPart()
	}
	if !o.SubmittedAt.IsZero() {
		submitted := o.SubmittedAt
		res.SubmittedAt = &submitted
	}
	return res
}

func alpacaSide(s domain.OrderSide) alpacaapi.Side {
	if s == domain.OrderSideSell {
		return alpacaapi.Sell
	}
	return alpacaapi.Buy
}

func alpacaOrderType(t domain.OrderType) alpacaapi.OrderType {
	switch t {
	case domain.OrderTypeLimit:
		return alpacaapi.Limit
	case domain.OrderTypeStop:
		return alpacaapi.Stop
	case domain.OrderTypeStopLimit:
		return alpacaapi.StopLimit
	default:
		return alpacaapi.Market
	}
}

func alpacaTIF(t domain.TimeInForce) alpacaapi.TimeInForce {
	switch t {
	case domain.TimeInForceGTC:
		return alpacaapi.GTC
	case domain.TimeInForceIOC:
		return alpacaapi.IOC
	case domain.TimeInForceFOK:
		return alpacaapi.FOK
	default:
		return alpacaapi.Day
	}
}
