package exchange

import (
	"testing"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumtrades/hilo-trend-bot/pkg/types"
)

func fourHourBars(start time.Time, n int) []types.OHLCV {
	bars := make([]types.OHLCV, n)
	for i := range bars {
		base := 100.0 + float64(i)
		bars[i] = types.OHLCV{
			Timestamp: start.Add(time.Duration(i) * 4 * time.Hour),
			Open:      base,
			High:      base + 2,
			Low:       base - 2,
			Close:     base + 1,
			Volume:    10,
		}
	}
	return bars
}

// TestResampleBars_MergesPairs tests 4h to 8h aggregation semantics
func TestResampleBars_MergesPairs(t *testing.T) {
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	bars := fourHourBars(start, 4)

	merged := resampleBars(bars, 8*time.Hour)
	require.Len(t, merged, 2)

	first := merged[0]
	assert.Equal(t, start, first.Timestamp)
	assert.Equal(t, 100.0, first.Open, "open comes from the first bar of the bucket")
	assert.Equal(t, 103.0, first.High, "high is the bucket maximum")
	assert.Equal(t, 98.0, first.Low, "low is the bucket minimum")
	assert.Equal(t, 102.0, first.Close, "close comes from the last bar of the bucket")
	assert.Equal(t, 20.0, first.Volume, "volume accumulates across the bucket")

	second := merged[1]
	assert.Equal(t, start.Add(8*time.Hour), second.Timestamp)
	assert.Equal(t, 102.0, second.Open)
	assert.Equal(t, 104.0, second.Close)
}

// TestResampleBars_KeepsPartialTrailingBucket tests that the forming bar survives
func TestResampleBars_KeepsPartialTrailingBucket(t *testing.T) {
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	bars := fourHourBars(start, 3)

	merged := resampleBars(bars, 8*time.Hour)
	require.Len(t, merged, 2)

	assert.Equal(t, 103.0, merged[1].Close)
	assert.Equal(t, 10.0, merged[1].Volume)
}

// TestResampleBars_Empty tests the empty input edge case
func TestResampleBars_Empty(t *testing.T) {
	assert.Nil(t, resampleBars(nil, 8*time.Hour))
}

// TestParseLatestPriceResponse_ExtractsLastPrice tests ticker payload parsing
func TestParseLatestPriceResponse_ExtractsLastPrice(t *testing.T) {
	resp := &bybit_api.ServerResponse{
		RetCode: 0,
		Result: map[string]interface{}{
			"list": []map[string]interface{}{
				{"symbol": "BTCUSDT", "lastPrice": "64123.50"},
			},
		},
	}

	price, err := parseLatestPriceResponse(resp, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 64123.50, price)
}

// TestParseLatestPriceResponse_APIError tests that a non-zero retCode surfaces
func TestParseLatestPriceResponse_APIError(t *testing.T) {
	resp := &bybit_api.ServerResponse{RetCode: 10001, RetMsg: "params error"}

	_, err := parseLatestPriceResponse(resp, "BTCUSDT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "params error")
}

// TestParseLatestPriceResponse_EmptyList tests the no-data edge case
func TestParseLatestPriceResponse_EmptyList(t *testing.T) {
	resp := &bybit_api.ServerResponse{
		RetCode: 0,
		Result:  map[string]interface{}{"list": []map[string]interface{}{}},
	}

	_, err := parseLatestPriceResponse(resp, "XRPUSDT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "XRPUSDT")
}

// TestIntervalMap_CoversMonitorTimeframes tests the interval table against the scan set
func TestIntervalMap_CoversMonitorTimeframes(t *testing.T) {
	// 8h is resampled from 4h; everything else must map directly.
	for _, tf := range []string{"15m", "30m", "1h", "6h", "12h", "1d"} {
		_, ok := bybitIntervals[tf]
		assert.True(t, ok, "missing interval mapping for %s", tf)
	}
	_, ok := bybitIntervals["4h"]
	assert.True(t, ok, "8h resampling needs the 4h feed")
}
