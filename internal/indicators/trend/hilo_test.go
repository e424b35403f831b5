package trend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boterrors "github.com/quantumtrades/hilo-trend-bot/internal/errors"
	"github.com/quantumtrades/hilo-trend-bot/pkg/types"
)

func risingSeries(n int) []types.OHLCV {
	series := make([]types.OHLCV, n)
	for i := range series {
		close := 100.0 + 2.0*float64(i)
		series[i] = types.OHLCV{Open: close - 1, High: close + 1, Low: close - 1, Close: close}
	}
	return series
}

// TestHiLo_InsufficientData tests that a short series fails with the typed error
func TestHiLo_InsufficientData(t *testing.T) {
	hilo := NewHiLo(20)

	_, err := hilo.Compute(risingSeries(10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, boterrors.ErrInsufficientData))
}

// TestHiLo_InvalidPeriod tests that a non-positive period is rejected
func TestHiLo_InvalidPeriod(t *testing.T) {
	hilo := NewHiLo(0)

	_, err := hilo.Compute(risingSeries(10))
	assert.Error(t, err)
}

// TestHiLo_MonotonicRise tests that a steady uptrend classifies bullish on every eligible bar
func TestHiLo_MonotonicRise(t *testing.T) {
	hilo := NewHiLo(20)
	series := risingSeries(50)

	points, err := hilo.Compute(series)
	require.NoError(t, err)
	require.Len(t, points, 50)

	for i := 0; i < 20; i++ {
		assert.False(t, points[i].Defined, "bar %d should be warm-up", i)
	}
	for i := 20; i < 50; i++ {
		assert.True(t, points[i].Defined, "bar %d should be defined", i)
		assert.Equal(t, StateBullish, points[i].State, "bar %d should be bullish", i)
	}

	assert.Equal(t, 30, Streak(points))
}

// TestHiLo_Idempotent tests that recomputing the same series gives identical output
func TestHiLo_Idempotent(t *testing.T) {
	hilo := NewHiLo(20)
	series := risingSeries(50)

	first, err := hilo.Compute(series)
	require.NoError(t, err)
	second, err := hilo.Compute(series)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// TestHiLo_LastBarLag tests that a bar's own high and low never affect its own classification
func TestHiLo_LastBarLag(t *testing.T) {
	hilo := NewHiLo(20)
	series := risingSeries(50)

	baseline, err := hilo.Last(series)
	require.NoError(t, err)

	// Distort only the final bar's range. Its averages feed the bar after
	// it, which does not exist, so the classification must not move.
	perturbed := make([]types.OHLCV, len(series))
	copy(perturbed, series)
	perturbed[49].High += 1000
	perturbed[49].Low -= 1000

	got, err := hilo.Last(perturbed)
	require.NoError(t, err)
	assert.Equal(t, baseline, got)
}

// TestHiLo_NeutralHoldsReference tests the neutral seed and hold behavior
func TestHiLo_NeutralHoldsReference(t *testing.T) {
	hilo := NewHiLo(2)
	series := []types.OHLCV{
		{High: 10, Low: 8, Close: 9},
		{High: 10, Low: 8, Close: 9},
		{High: 10, Low: 8, Close: 9},      // in band: neutral, seeds from low band
		{High: 12, Low: 11, Close: 11.5},  // above band: bullish, reference = low band
		{High: 12, Low: 11, Close: 11},    // in band: neutral, holds bullish reference
		{High: 9, Low: 7, Close: 7},       // below band: bearish, reference = high band
	}

	points, err := hilo.Compute(series)
	require.NoError(t, err)

	assert.Equal(t, StateNeutral, points[2].State)
	assert.Equal(t, 8.0, points[2].Reference)

	assert.Equal(t, StateBullish, points[3].State)
	assert.Equal(t, 8.0, points[3].Reference)

	assert.Equal(t, StateNeutral, points[4].State)
	assert.Equal(t, 8.0, points[4].Reference, "neutral must hold the previous reference")

	assert.Equal(t, StateBearish, points[5].State)
	assert.Equal(t, 12.0, points[5].Reference)
}

// TestHiLo_EMAMode tests the EMA band variant on a clean uptrend
func TestHiLo_EMAMode(t *testing.T) {
	hilo := NewHiLoWithMA(20, MATypeEMA)

	last, err := hilo.Last(risingSeries(50))
	require.NoError(t, err)
	assert.True(t, last.Defined)
	assert.Equal(t, StateBullish, last.State)
}

// TestTrendChange_Flip tests flip detection across the last two bars
func TestTrendChange_Flip(t *testing.T) {
	points := []Point{
		{State: StateBullish, Defined: true},
		{State: StateBearish, Defined: true},
	}

	changed, from, to := TrendChange(points)
	assert.True(t, changed)
	assert.Equal(t, StateBullish, from)
	assert.Equal(t, StateBearish, to)
}

// TestTrendChange_ThroughNeutral tests that flips through neutral bars are not reported
func TestTrendChange_ThroughNeutral(t *testing.T) {
	points := []Point{
		{State: StateBullish, Defined: true},
		{State: StateNeutral, Defined: true},
	}

	changed, _, _ := TrendChange(points)
	assert.False(t, changed)
}

// TestStreak_CountsFromEnd tests streak counting across a state change
func TestStreak_CountsFromEnd(t *testing.T) {
	points := []Point{
		{State: StateBearish, Defined: true},
		{State: StateBullish, Defined: true},
		{State: StateBullish, Defined: true},
		{State: StateBullish, Defined: true},
	}

	assert.Equal(t, 3, Streak(points))
}

// TestStreak_NeutralLast tests that a neutral final bar yields a zero streak
func TestStreak_NeutralLast(t *testing.T) {
	points := []Point{
		{State: StateBullish, Defined: true},
		{State: StateNeutral, Defined: true},
	}

	assert.Equal(t, 0, Streak(points))
}
