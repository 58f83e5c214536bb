package broker

import (
	"errors"
	"testing"
	"time"
)

func TestNewSupportedTypes(t *testing.T) {
	cases := []struct {
		brokerType Type
		wantName   string
	}{
		{TypeAlpaca, "alpaca"},
		{TypeSimulator, "simulator"},
	}
	for _, tc := range cases {
		adapter, err := New(tc.brokerType)
		if err != nil {
			t.Fatalf("New(%q): %v", tc.brokerType, err)
		}
		if got := adapter.Name(); got != tc.wantName {
			t.Errorf("New(%q).Name() = %q, want %q", tc.brokerType, got, tc.wantName)
		}
	}
}

func TestNewUnsupportedType(t *testing.T) {
	_, err := New("ibkr")
	var unsupported *UnsupportedBrokerError
	if !errors.As(err, &unsupported) {
		t.Fatalf("New(ibkr) error = %v, want *UnsupportedBrokerError", err)
	}
	if unsupported.Type != "ibkr" {
		t.Errorf("Type = %q, want %q", unsupported.Type, "ibkr")
	}
}

func TestNewWithTimeout(t *testing.T) {
	adapter, err := NewWithTimeout(TypeAlpaca, 5*time.Second)
	if err != nil {
		t.Fatalf("NewWithTimeout: %v", err)
	}
	if adapter.Name() != "alpaca" {
		t.Errorf("Name() = %q, want %q", adapter.Name(), "alpaca")
	}

	if _, err := NewWithTimeout("ibkr", time.Second); err == nil {
		t.Error("NewWithTimeout(ibkr): want error")
	}
}
