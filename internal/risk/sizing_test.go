package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantdesk/internal/domain"
)

func TestPositionSizingNoMarketData(t *testing.T) {
	m := newTestManager(t)

	s, err := m.PositionSizing(100, 100_000, nil)
	require.NoError(t, err)

	// floor(100000 * 0.10 / 100) shares.
	assert.Equal(t, int64(100), s.MaxQuantity)
	assert.Equal(t, int64(100), s.RecommendedQuantity)
	assert.Equal(t, 2000.0, s.RiskAmount)
	assert.Equal(t, 10_000.0, s.PositionValue)
	assert.InDelta(t, 0.10, s.PortfolioPct, 1e-9)
}

func TestPositionSizingKellyCapDoesNotRaiseSize(t *testing.T) {
	m := newTestManager(t)

	// Default expected return and volatility give a raw Kelly fraction of
	// 2.5, clamped to 0.25; the fixed-percentage candidate still wins.
	s, err := m.PositionSizing(100, 100_000, &MarketData{})
	require.NoError(t, err)
	assert.Equal(t, int64(100), s.RecommendedQuantity)
}

func TestPositionSizingVolatilityScaling(t *testing.T) {
	m := newTestManager(t)

	cases := []struct {
		vol  float64
		want int64
	}{
		// mult = max(0.2, 1-(vol-0.2))
		{0.2, 100},
		{0.4, 80},
		{0.7, 50},
		{1.2, 20},
		{2.0, 20}, // floored at 20% of the fixed size
	}
	for _, tc := range cases {
		vol := tc.vol
		er := 0.5 // keep the Kelly candidate out of the way
		s, err := m.PositionSizing(100, 100_000, &MarketData{Volatility: &vol, ExpectedReturn: &er})
		require.NoError(t, err)
		if s.RecommendedQuantity != tc.want {
			t.Errorf("vol=%.1f: recommended = %d, want %d", tc.vol, s.RecommendedQuantity, tc.want)
		}
	}
}

func TestPositionSizingMonotoneInVolatility(t *testing.T) {
	m := newTestManager(t)

	prev := int64(math.MaxInt64)
	for _, vol := range []float64{0.1, 0.3, 0.5, 0.8, 1.5} {
		v := vol
		s, err := m.PositionSizing(50, 250_000, &MarketData{Volatility: &v})
		require.NoError(t, err)
		assert.LessOrEqual(t, s.RecommendedQuantity, prev, "vol=%.1f", vol)
		assert.LessOrEqual(t, s.RecommendedQuantity, s.MaxQuantity)
		prev = s.RecommendedQuantity
	}
}

func TestPositionSizingInvalidInput(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.PositionSizing(0, 100_000, nil); err == nil {
		t.Error("PositionSizing with zero price: want error")
	}
	if _, err := m.PositionSizing(100, -1, nil); err == nil {
		t.Error("PositionSizing with negative portfolio value: want error")
	}
}

func TestRiskLevelsFixedBands(t *testing.T) {
	m := newTestManager(t)

	stop, target, err := m.RiskLevels(100, domain.OrderSideBuy, nil)
	require.NoError(t, err)
	assert.InDelta(t, 95.0, stop, 1e-9)
	assert.InDelta(t, 115.0, target, 1e-9)

	stop, target, err = m.RiskLevels(100, domain.OrderSideSell, nil)
	require.NoError(t, err)
	assert.InDelta(t, 105.0, stop, 1e-9)
	assert.InDelta(t, 85.0, target, 1e-9)
}

func TestRiskLevelsVolatilityBands(t *testing.T) {
	m := newTestManager(t)

	vol := 0.3
	md := &MarketData{Volatility: &vol}

	stop, target, err := m.RiskLevels(100, domain.OrderSideBuy, md)
	require.NoError(t, err)

	// Stop sits two daily standard deviations below the entry.
	wantStopDist := 2 * (vol / math.Sqrt(252)) * 100
	assert.InDelta(t, 100-wantStopDist, stop, 1e-9)
	assert.InDelta(t, 100+2*wantStopDist, target, 1e-9)

	// A buy protects below and targets above.
	assert.Less(t, stop, 100.0)
	assert.Greater(t, target, 100.0)

	// Reward distance is twice the risk distance.
	assert.InDelta(t, 2*(100-stop), target-100, 1e-9)
}

func TestRiskLevelsVolatilityBandsSell(t *testing.T) {
	m := newTestManager(t)

	vol := 0.5
	stop, target, err := m.RiskLevels(200, domain.OrderSideSell, &MarketData{Volatility: &vol})
	require.NoError(t, err)

	// A short protects above and targets below.
	assert.Greater(t, stop, 200.0)
	assert.Less(t, target, 200.0)
	assert.InDelta(t, 2*(stop-200), 200-target, 1e-9)
}
