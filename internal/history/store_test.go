package history

import (
	"testing"
	"time"

	"quantdesk/internal/domain"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func bar(symbol string, ts time.Time, close float64) domain.Bar {
	return domain.Bar{
		Symbol:    symbol,
		Timestamp: ts,
		Open:      close - 1,
		High:      close + 1,
		Low:       close - 2,
		Close:     close,
		Volume:    1000,
	}
}

func TestStoreWriteReadRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	bars := []domain.Bar{
		bar("AAPL", day(2026, 1, 5), 100),
		bar("AAPL", day(2026, 1, 6), 102),
		bar("AAPL", day(2026, 1, 7), 101),
	}
	if err := s.WriteBars(bars); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	got, err := s.ReadBars("AAPL", day(2026, 1, 1), day(2026, 1, 31))
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("bars = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp.Before(got[i-1].Timestamp) {
			t.Fatal("bars are not in chronological order")
		}
	}
	if got[0].Close != 100 || got[2].Close != 101 {
		t.Errorf("closes = %v %v, want 100 101", got[0].Close, got[2].Close)
	}
}

func TestStoreRangeFilter(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.WriteBars([]domain.Bar{
		bar("AAPL", day(2026, 1, 5), 100),
		bar("AAPL", day(2026, 2, 5), 105),
		bar("AAPL", day(2026, 3, 5), 110),
	}); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	got, err := s.ReadBars("AAPL", day(2026, 2, 1), day(2026, 2, 28))
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(got) != 1 || got[0].Close != 105 {
		t.Errorf("got %v, want the single February bar", got)
	}
}

func TestStoreRewriteIsIdempotent(t *testing.T) {
	s := NewStore(t.TempDir())

	bars := []domain.Bar{
		bar("AAPL", day(2026, 1, 5), 100),
		bar("AAPL", day(2026, 1, 6), 102),
	}
	if err := s.WriteBars(bars); err != nil {
		t.Fatalf("first WriteBars: %v", err)
	}
	// Re-sync of an overlapping range: one duplicate day with a corrected
	// close, one new day.
	if err := s.WriteBars([]domain.Bar{
		bar("AAPL", day(2026, 1, 6), 103),
		bar("AAPL", day(2026, 1, 7), 104),
	}); err != nil {
		t.Fatalf("second WriteBars: %v", err)
	}

	got, err := s.Closes("AAPL", day(2026, 1, 1), day(2026, 1, 31))
	if err != nil {
		t.Fatalf("Closes: %v", err)
	}
	want := []float64{100, 103, 104}
	if len(got) != len(want) {
		t.Fatalf("closes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("closes[%d] = %v, want %v (incoming rows must win)", i, got[i], want[i])
		}
	}
}

func TestStoreSpansYears(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.WriteBars([]domain.Bar{
		bar("SPY", day(2025, 12, 30), 500),
		bar("SPY", day(2026, 1, 2), 505),
	}); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	got, err := s.ReadBars("SPY", day(2025, 12, 1), day(2026, 1, 31))
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("bars across year files = %d, want 2", len(got))
	}
}

func TestStoreSymbolCaseInsensitive(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.WriteBars([]domain.Bar{bar("aapl", day(2026, 1, 5), 100)}); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}
	got, err := s.ReadBars("AAPL", day(2026, 1, 1), day(2026, 1, 31))
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("bars = %d, want 1: symbols are stored upper-cased", len(got))
	}
}

func TestStoreMissingSymbol(t *testing.T) {
	s := NewStore(t.TempDir())

	got, err := s.ReadBars("ZZZZ", day(2026, 1, 1), day(2026, 1, 31))
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("bars for unknown symbol = %d, want 0", len(got))
	}
}

func TestListSymbols(t *testing.T) {
	s := NewStore(t.TempDir())

	if symbols, err := s.ListSymbols(); err != nil || symbols != nil {
		t.Errorf("ListSymbols(empty store) = %v, %v; want nil, nil", symbols, err)
	}

	if err := s.WriteBars([]domain.Bar{
		bar("MSFT", day(2026, 1, 5), 400),
		bar("AAPL", day(2026, 1, 5), 100),
	}); err != nil {
		t.Fatalf("WriteBars: %v", err)
	}

	symbols, err := s.ListSymbols()
	if err != nil {
		t.Fatalf("ListSymbols: %v", err)
	}
	if len(symbols) != 2 || symbols[0] != "AAPL" || symbols[1] != "MSFT" {
		t.Errorf("symbols = %v, want [AAPL MSFT]", symbols)
	}
}
