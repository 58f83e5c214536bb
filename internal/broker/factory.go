package broker

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type identifies a supported brokerage. The set is closed: adding a broker
// means adding one constant and one Adapter implementation.
type Type string

const (
	TypeAlpaca    Type = "alpaca"
	TypeSimulator Type = "simulator"
)

// Starting cash for freshly created simulator adapters.
var simulatorStartingCash = decimal.NewFromInt(100_000)

// New builds an unconnected adapter for the given broker type, or an
// *UnsupportedBrokerError for types outside the supported set.
func New(t Type) (Adapter, error) {
	switch t {
	case TypeAlpaca:
		return NewAlpacaAdapter(defaultRequestTimeout), nil
	case TypeSimulator:
		return NewSimulatorAdapter(simulatorStartingCash), nil
	default:
		return nil, &UnsupportedBrokerError{Type: string(t)}
	}
}

// NewWithTimeout is New with an explicit per-request timeout for adapters
// that perform network I/O.
func NewWithTimeout(t Type, timeout time.Duration) (Adapter, error) {
	if t == TypeAlpaca {
		return NewAlpacaAdapter(timeout), nil
	}
	return New(t)
}
