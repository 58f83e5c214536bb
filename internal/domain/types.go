// Package domain defines the value objects exchanged between the risk
// manager, the broker gateway, and the broker adapters.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide indicates whether an order buys or sells.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderType is the execution style of an order.
type OrderType string

const (
	OrderTypeMarket    OrderType = "market"
	OrderTypeLimit     OrderType = "limit"
	OrderTypeStop      OrderType = "stop"
	OrderTypeStopLimit OrderType = "stop_limit"
)

// TimeInForce controls how long an order remains active.
type TimeInForce string

const (
	TimeInForceDay TimeInForce = "day"
	TimeInForceGTC TimeInForce = "gtc"
	TimeInForceIOC TimeInForce = "ioc"
	TimeInForceFOK TimeInForce = "fok"
)

// OrderStatus values reported by brokers. The set is open: adapters pass
// through broker-specific statuses beyond these.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRejected  OrderStatus = "rejected"
)

// OrderRequest is a proposed order in broker-neutral form.
type OrderRequest struct {
	Symbol      string
	Quantity    int64
	Side        OrderSide
	Type        OrderType
	TimeInForce TimeInForce
	LimitPrice  *decimal.Decimal
	StopPrice   *decimal.Decimal
}

// Validate returns the list of violated order constraints, empty when the
// request is well formed. Limit price is required for limit and stop-limit
// orders; stop price is required for stop and stop-limit orders.
func (r *OrderRequest) Validate() []string {
	var violations []string
	if r.Symbol == "" {
		violations = append(violations, "symbol is required")
	}
	if r.Quantity <= 0 {
		violations = append(violations, "quantity must be positive")
	}
	switch r.Side {
	case OrderSideBuy, OrderSideSell:
	default:
		violations = append(violations, "side must be buy or sell")
	}
	needsLimit := r.Type == OrderTypeLimit || r.Type == OrderTypeStopLimit
	needsStop := r.Type == OrderTypeStop || r.Type == OrderTypeStopLimit
	if needsLimit && r.LimitPrice == nil {
		violations = append(violations, "limit_price is required for "+string(r.Type)+" orders")
	}
	if needsStop && r.StopPrice == nil {
		violations = append(violations, "stop_price is required for "+string(r.Type)+" orders")
	}
	return violations
}

// OrderResult is a broker's response to a submitted order. It is a snapshot:
// once returned it is never mutated.
type OrderResult struct {
	OrderID        string
	Status         OrderStatus
	Symbol         string
	Quantity       int64
	Side           OrderSide
	FilledPrice    *decimal.Decimal
	FilledQuantity int64
	SubmittedAt    *time.Time
}

// PositionSide indicates the direction of an open position.
type PositionSide string

const (
	PositionSideLong  PositionSide = "long"
	PositionSideShort PositionSide = "short"
)

// Position is an on-demand snapshot of a holding at a broker.
type Position struct {
	Symbol              string
	Quantity            decimal.Decimal
	Side                PositionSide
	AvgCost             decimal.Decimal
	MarketValue         decimal.Decimal
	UnrealizedPL        decimal.Decimal
	UnrealizedPLPercent decimal.Decimal

	// Sector is optional reference metadata used by sector-concentration
	// checks; empty when unknown.
	Sector string
}

// AccountInfo is a snapshot of an account's financial metrics.
type AccountInfo struct {
	AccountNumber         string
	BuyingPower           decimal.Decimal
	Cash                  decimal.Decimal
	PortfolioValue        decimal.Decimal
	DayTradingBuyingPower decimal.Decimal
	Equity                decimal.Decimal
}

// Bar is one daily OHLCV observation used by the price history store.
type Bar struct {
	Symbol    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}
