// Package journal persists accepted order results to SQLite so that placed
// orders survive a restart and can be reconciled against the broker later.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"quantdesk/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	order_id        TEXT PRIMARY KEY,
	broker_id       TEXT NOT NULL,
	symbol          TEXT NOT NULL,
	side            TEXT NOT NULL,
	quantity        INTEGER NOT NULL,
	status          TEXT NOT NULL,
	filled_quantity INTEGER NOT NULL,
	filled_price    TEXT,
	submitted_at    TEXT,
	recorded_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_broker ON orders(broker_id, recorded_at);
`

// Entry is one journaled order.
type Entry struct {
	OrderID        string
	BrokerID       string
	Symbol         string
	Side           domain.OrderSide
	Quantity       int64
	Status         domain.OrderStatus
	FilledQuantity int64
	FilledPrice    *decimal.Decimal
	SubmittedAt    *time.Time
	RecordedAt     time.Time
}

// Journal records order results in a SQLite database.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the journal database at dbPath and ensures the
// schema exists.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}
	return &Journal{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// RecordOrder upserts the order result under the given broker ID. Re-recording
// an order ID refreshes its status and fill fields.
func (j *Journal) RecordOrder(ctx context.Context, brokerID string, res *domain.OrderResult) error {
	var filledPrice any
	if res.FilledPrice != nil {
		filledPrice = res.FilledPrice.String()
	}
	var submittedAt any
	if res.SubmittedAt != nil {
		submittedAt = res.SubmittedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO orders
			(order_id, broker_id, symbol, side, quantity, status, filled_quantity, filled_price, submitted_at, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(order_id) DO UPDATE SET
			status = excluded.status,
			filled_quantity = excluded.filled_quantity,
			filled_price = excluded.filled_price,
			recorded_at = excluded.recorded_at`,
		res.OrderID, brokerID, res.Symbol, string(res.Side), res.Quantity,
		string(res.Status), res.FilledQuantity, filledPrice, submittedAt,
		j.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording order %s: %w", res.OrderID, err)
	}
	return nil
}

// GetOrder retrieves a journaled order by its ID. Returns sql.ErrNoRows
// wrapped when the order is unknown.
func (j *Journal) GetOrder(ctx context.Context, orderID string) (*Entry, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT order_id, broker_id, symbol, side, quantity, status, filled_quantity, filled_price, submitted_at, recorded_at
		FROM orders WHERE order_id = ?`, orderID)
	entry, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("reading order %s: %w", orderID, err)
	}
	return entry, nil
}

// ListOrders returns the most recently recorded orders for a broker
// connection, newest first, up to limit.
func (j *Journal) ListOrders(ctx context.Context, brokerID string, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT order_id, broker_id, symbol, side, quantity, status, filled_quantity, filled_price, submitted_at, recorded_at
		FROM orders WHERE broker_id = ?
		ORDER BY recorded_at DESC LIMIT ?`, brokerID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing orders for %s: %w", brokerID, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("listing orders for %s: %w", brokerID, err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		e           Entry
		side        string
		status      string
		filledPrice sql.NullString
		submittedAt sql.NullString
		recordedAt  string
	)
	err := row.Scan(&e.OrderID, &e.BrokerID, &e.Symbol, &side, &e.Quantity,
		&status, &e.FilledQuantity, &filledPrice, &submittedAt, &recordedAt)
	if err != nil {
		return nil, err
	}
	e.Side = domain.OrderSide(side)
	e.Status = domain.OrderStatus(status)

	if filledPrice.Valid {
		price, err := decimal.NewFromString(filledPrice.String)
		if err != nil {
			return nil, fmt.Errorf("parsing filled price %q: %w", filledPrice.String, err)
		}
		e.FilledPrice = &price
	}
	if submittedAt.Valid {
		ts, err := time.Parse(time.RFC3339Nano, submittedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing submitted_at %q: %w", submittedAt.String, err)
		}
		e.SubmittedAt = &ts
	}
	e.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing recorded_at %q: %w", recordedAt, err)
	}
	return &e, nil
}
