// Package history stores daily price bars in Parquet files and turns them
// into the return series the risk package's historical metrics need.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"quantdesk/internal/domain"
)

// Store keeps one Parquet file per symbol and year under
// <DataDir>/daily/<SYMBOL>/<YYYY>.parquet. Writes merge with existing rows,
// deduplicating by timestamp, so re-syncing a range is idempotent.
type Store struct {
	DataDir string
}

// NewStore creates a Store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{DataDir: dataDir}
}

// BarRecord is the on-disk Parquet schema for daily bars.
type BarRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    int64   `parquet:"volume"`
}

// WriteBars merges the given bars into the per-symbol year files.
func (s *Store) WriteBars(bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	type key struct {
		symbol string
		year   int
	}
	groups := make(map[key][]BarRecord)
	for _, b := range bars {
		k := key{symbol: strings.ToUpper(b.Symbol), year: b.Timestamp.Year()}
		groups[k] = append(groups[k], BarRecord{
			Symbol:    strings.ToUpper(b.Symbol),
			Timestamp: b.Timestamp.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}

	for k, records := range groups {
		path := s.barPath(k.symbol, k.year)

		existing, _ := readParquetFile(path)
		merged := mergeRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing bars for %s/%d: %w", k.symbol, k.year, err)
		}
	}
	return nil
}

// ReadBars returns the bars for symbol within [start, end], ordered by
// timestamp. Missing year files are skipped.
func (s *Store) ReadBars(symbol string, start, end time.Time) ([]domain.Bar, error) {
	var bars []domain.Bar
	for year := start.Year(); year <= end.Year(); year++ {
		records, err := readParquetFile(s.barPath(strings.ToUpper(symbol), year))
		if err != nil {
			continue
		}
		for _, r := range records {
			ts := time.UnixMilli(r.Timestamp)
			if ts.Before(start) || ts.After(end) {
				continue
			}
			bars = append(bars, domain.Bar{
				Symbol:    r.Symbol,
				Timestamp: ts,
				Open:      r.Open,
				High:      r.High,
				Low:       r.Low,
				Close:     r.Close,
				Volume:    r.Volume,
			})
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}

// Closes returns the ordered daily closing prices for symbol within
// [start, end].
func (s *Store) Closes(symbol string, start, end time.Time) ([]float64, error) {
	bars, err := s.ReadBars(symbol, start, end)
	if err != nil {
		return nil, err
	}
	closes := make([]float64, 0, len(bars))
	for _, b := range bars {
		closes = append(closes, b.Close)
	}
	return closes, nil
}

// ListSymbols lists all symbols with stored bar data.
func (s *Store) ListSymbols() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.DataDir, "daily"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

func (s *Store) barPath(symbol string, year int) string {
	return filepath.Join(s.DataDir, "daily", symbol, fmt.Sprintf("%d.parquet", year))
}

func writeParquetFile(path string, records []BarRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile(path string) ([]BarRecord, error) {
	return parquet.ReadFile[BarRecord](path)
}

// mergeRecords deduplicates by timestamp, preferring incoming rows, and
// sorts the result chronologically.
func mergeRecords(existing, incoming []BarRecord) []BarRecord {
	seen := make(map[int64]BarRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Timestamp] = r
	}
	for _, r := range incoming {
		seen[r.Timestamp] = r
	}

	merged := make([]BarRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Timestamp < merged[j].Timestamp })
	return merged
}
