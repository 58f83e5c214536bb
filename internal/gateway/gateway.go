// Package gateway maintains live broker connections and presents one
// uniform order, account, and position API regardless of the concrete
// broker behind each connection.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"quantdesk/internal/broker"
	"quantdesk/internal/domain"
)

// BrokerNotFoundError is reported when a broker ID has no registered
// connection. It is distinct from a connection failure: the caller should
// re-add the broker account.
type BrokerNotFoundError struct {
	BrokerID string
}

func (e *BrokerNotFoundError) Error() string {
	return fmt.Sprintf("broker connection %q not registered", e.BrokerID)
}

// InvalidOrderError is reported when an order request fails pre-trade
// validation, before any broker call is made.
type InvalidOrderError struct {
	Violations []string
}

func (e *InvalidOrderError) Error() string {
	return "invalid order: " + strings.Join(e.Violations, "; ")
}

// Recorder receives accepted order results for journaling. Implementations
// must tolerate being called concurrently.
type Recorder interface {
	RecordOrder(ctx context.Context, brokerID string, res *domain.OrderResult) error
}

// Gateway routes commands to registered broker connections. The registry is
// keyed by a caller-supplied opaque broker ID, holds exactly one connected
// adapter per key, and is safe for concurrent use. Connections are not
// persisted: a restart drops them all and callers must re-add.
type Gateway struct {
	mu    sync.RWMutex
	conns map[string]broker.Adapter

	newAdapter func(broker.Type) (broker.Adapter, error)
	recorder   Recorder
	log        *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithRecorder journals every accepted order result to r. Journal failures
// are logged, never surfaced: a submitted order is already the broker's.
func WithRecorder(r Recorder) Option {
	return func(g *Gateway) { g.recorder = r }
}

// WithFactory overrides the adapter factory, mainly for tests.
func WithFactory(f func(broker.Type) (broker.Adapter, error)) Option {
	return func(g *Gateway) { g.newAdapter = f }
}

// New creates a Gateway with an empty connection registry.
func New(log *slog.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		conns:      make(map[string]broker.Adapter),
		newAdapter: broker.New,
		log:        log.With("component", "gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddConnection builds an adapter for brokerType, connects it with creds,
// and registers it under brokerID. On any failure the registry is left
// untouched and false is returned; failures are logged, never thrown.
// Re-adding an existing brokerID atomically replaces its adapter.
func (g *Gateway) AddConnection(ctx context.Context, brokerID string, brokerType broker.Type, creds broker.Credentials) bool {
	adapter, err := g.newAdapter(brokerType)
	if err != nil {
		g.log.Warn("building adapter failed", "brokerID", brokerID, "type", brokerType, "error", err)
		return false
	}
	if err := adapter.Connect(ctx, creds); err != nil {
		g.log.Warn("broker connect failed", "brokerID", brokerID, "type", brokerType, "error", err)
		return false
	}

	g.mu.Lock()
	g.conns[brokerID] = adapter
	g.mu.Unlock()

	g.log.Info("broker connected", "brokerID", brokerID, "type", brokerType)
	return true
}

// RemoveConnection drops the connection for brokerID. Removing an unknown ID
// is a no-op.
func (g *Gateway) RemoveConnection(brokerID string) {
	g.mu.Lock()
	_, existed := g.conns[brokerID]
	delete(g.conns, brokerID)
	g.mu.Unlock()

	if existed {
		g.log.Info("broker disconnected", "brokerID", brokerID)
	}
}

// TestConnection builds a throwaway adapter and attempts to connect with
// creds, discarding it regardless of outcome. The registry is not touched.
func (g *Gateway) TestConnection(ctx context.Context, brokerType broker.Type, creds broker.Credentials) bool {
	adapter, err := g.newAdapter(brokerType)
	if err != nil {
		g.log.Warn("building adapter failed", "type", brokerType, "error", err)
		return false
	}
	if err := adapter.Connect(ctx, creds); err != nil {
		g.log.Debug("test connect failed", "type", brokerType, "error", err)
		return false
	}
	return true
}

// PlaceOrder validates req and submits it through the connection registered
// for brokerID. Validation failures reject the order before any broker call.
// Deeper risk checks are the risk manager's job and run upstream.
func (g *Gateway) PlaceOrder(ctx context.Context, brokerID string, req *domain.OrderRequest) (*domain.OrderResult, error) {
	adapter, err := g.adapter(brokerID)
	if err != nil {
		return nil, err
	}
	if violations := req.Validate(); len(violations) > 0 {
		return nil, &InvalidOrderError{Violations: violations}
	}

	res, err := adapter.PlaceOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	if g.recorder != nil {
		if err := g.recorder.RecordOrder(ctx, brokerID, res); err != nil {
			g.log.Error("journaling order failed", "brokerID", brokerID, "orderID", res.OrderID, "error", err)
		}
	}

	g.log.Info("order placed",
		"brokerID", brokerID,
		"orderID", res.OrderID,
		"symbol", req.Symbol,
		"side", req.Side,
		"qty", req.Quantity,
		"status", res.Status,
	)
	return res, nil
}

// GetAccount returns the account snapshot for the given connection.
func (g *Gateway) GetAccount(ctx context.Context, brokerID string) (*domain.AccountInfo, error) {
	adapter, err := g.adapter(brokerID)
	if err != nil {
		return nil, err
	}
	return adapter.GetAccount(ctx)
}

// GetOrder returns the current state of an order on the given connection.
func (g *Gateway) GetOrder(ctx context.Context, brokerID, orderID string) (*domain.OrderResult, error) {
	adapter, err := g.adapter(brokerID)
	if err != nil {
		return nil, err
	}
	return adapter.GetOrder(ctx, orderID)
}

// CancelOrder requests cancellation of an open order on the given connection.
func (g *Gateway) CancelOrder(ctx context.Context, brokerID, orderID string) error {
	adapter, err := g.adapter(brokerID)
	if err != nil {
		return err
	}
	return adapter.CancelOrder(ctx, orderID)
}

// GetPositions returns all positions held on the given connection.
func (g *Gateway) GetPositions(ctx context.Context, brokerID string) ([]domain.Position, error) {
	adapter, err := g.adapter(brokerID)
	if err != nil {
		return nil, err
	}
	return adapter.GetPositions(ctx)
}

// GetOrders lists orders on the given connection, optionally filtered by
// status.
func (g *Gateway) GetOrders(ctx context.Context, brokerID, statusFilter string) ([]domain.OrderResult, error) {
	adapter, err := g.adapter(brokerID)
	if err != nil {
		return nil, err
	}
	return adapter.GetOrders(ctx, statusFilter)
}

func (g *Gateway) adapter(brokerID string) (broker.Adapter, error) {
	g.mu.RLock()
	adapter, ok := g.conns[brokerID]
	g.mu.RUnlock()
	if !ok {
		return nil, &BrokerNotFoundError{BrokerID: brokerID}
	}
	return adapter, nil
}
