package broker

import (
	"errors"
	"fmt"
)

// ErrNotConnected is reported when an adapter method is called before a
// successful Connect.
var ErrNotConnected = errors.New("broker: not connected")

// APIError wraps a failure from the underlying brokerage API so that callers
// never see SDK-specific error types. Timeout marks failures caused by the
// request deadline; such calls are at-most-once and must not be blindly
// retried.
type APIError struct {
	Broker  string
	Op      string
	Message string
	// StatusCode is the HTTP status from the broker, 0 when unavailable.
	StatusCode int
	Timeout    bool
	Err        error
}

func (e *APIError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: %s: timeout: %s", e.Broker, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Broker, e.Op, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// OrderRejectedError is reported when the brokerage refuses an order, as
// opposed to the API call itself failing.
type OrderRejectedError struct {
	Broker string
	Reason string
}

func (e *OrderRejectedError) Error() string {
	return fmt.Sprintf("%s: order rejected: %s", e.Broker, e.Reason)
}

// UnsupportedBrokerError is reported by the factory for broker types outside
// the supported set.
type UnsupportedBrokerError struct {
	Type string
}

func (e *UnsupportedBrokerError) Error() string {
	return fmt.Sprintf("unsupported broker type %q", e.Type)
}
