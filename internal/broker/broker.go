// Package broker defines the Adapter interface and provides implementations
// for executing orders and managing accounts across different brokerages.
package broker

import (
	"context"

	"quantdesk/internal/domain"
)

// Credentials authenticate an adapter against its brokerage. Paper selects
// the broker's practice environment; BaseURL, when set, overrides the
// environment-derived endpoint.
type Credentials struct {
	APIKey    string
	APISecret string
	Paper     bool
	BaseURL   string
}

// Adapter abstracts one brokerage session. Connect must be called first; it
// establishes and validates the session, and every other method reports
// ErrNotConnected until it succeeds. Adapters translate broker-specific
// failures into *APIError and *OrderRejectedError rather than leaking SDK
// error types.
type Adapter interface {
	// Name returns the broker identifier (e.g. "alpaca", "simulator").
	Name() string

	// Connect establishes the brokerage session and validates the
	// credentials by fetching the account once.
	Connect(ctx context.Context, creds Credentials) error

	// GetAccount returns a snapshot of the account's financial metrics.
	GetAccount(ctx context.Context) (*domain.AccountInfo, error)

	// PlaceOrder sends an order to the brokerage for execution.
	PlaceOrder(ctx context.Context, req *domain.OrderRequest) (*domain.OrderResult, error)

	// GetOrder returns the current state of an order by its ID.
	GetOrder(ctx context.Context, orderID string) (*domain.OrderResult, error)

	// CancelOrder requests cancellation of an open order by its ID.
	CancelOrder(ctx context.Context, orderID string) error

	// GetPositions returns all current positions held at the brokerage.
	GetPositions(ctx context.Context) ([]domain.Position, error)

	// GetOrders lists orders, optionally filtered by status ("open",
	// "closed"); an empty filter lists all.
	GetOrders(ctx context.Context, statusFilter string) ([]domain.OrderResult, error)
}
