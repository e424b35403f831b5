package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	"github.com/quantumtrades/hilo-trend-bot/pkg/types"
)

// bybitIntervals maps the bot's timeframe notation to the Bybit kline
// interval codes.
var bybitIntervals = map[string]string{
	"15m": "15",
	"30m": "30",
	"1h":  "60",
	"2h":  "120",
	"4h":  "240",
	"6h":  "360",
	"12h": "720",
	"1d":  "D",
}

// BybitProvider implements MarketDataProvider on the Bybit v5 market API.
// Kline endpoints are public, so API credentials are optional.
type BybitProvider struct {
	httpClient *bybit_api.Client
	category   string
}

// BybitConfig holds the configuration for the Bybit provider
type BybitConfig struct {
	APIKey    string
	APISecret string
	Category  string // "spot", "linear", "inverse"
	Testnet   bool
}

// NewBybitProvider creates a market data provider backed by Bybit.
func NewBybitProvider(config BybitConfig) *BybitProvider {
	baseURL := bybit_api.MAINNET
	if config.Testnet {
		baseURL = bybit_api.TESTNET
	}

	category := config.Category
	if category == "" {
		category = "spot"
	}

	return &BybitProvider{
		httpClient: bybit_api.NewBybitHttpClient(
			config.APIKey,
			config.APISecret,
			bybit_api.WithBaseURL(baseURL),
		),
		category: category,
	}
}

func (p *BybitProvider) GetName() string {
	return "bybit"
}

// GetKlines fetches kline data and maps it to OHLCV bars, oldest first.
// Bybit has no native 8h interval; those bars are built from 4h pairs.
func (p *BybitProvider) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	if interval == "8h" {
		bars, err := p.GetKlines(ctx, symbol, "4h", 2*limit)
		if err != nil {
			return nil, err
		}
		return resampleBars(bars, 8*time.Hour), nil
	}

	code, ok := bybitIntervals[interval]
	if !ok {
		return nil, fmt.Errorf("unsupported interval %q", interval)
	}
	if limit <= 0 {
		limit = 200
	}
	if limit > 1000 {
		limit = 1000
	}

	reqParams := map[string]interface{}{
		"category": p.category,
		"symbol":   symbol,
		"interval": code,
		"limit":    limit,
	}

	result, err := p.httpClient.NewUtaBybitServiceWithParams(reqParams).GetMarketKline(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get klines: %w", err)
	}

	bars, err := parseKlineResponse(result)
	if err != nil {
		return nil, fmt.Errorf("failed to parse kline response: %w", err)
	}

	// Bybit returns newest first; the indicator wants chronological order.
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})

	return bars, nil
}

// GetLatestPrice returns the last traded price from the tickers endpoint.
func (p *BybitProvider) GetLatestPrice(ctx context.Context, symbol string) (float64, error) {
	params := map[string]interface{}{
		"category": p.category,
		"symbol":   symbol,
	}

	result, err := p.httpClient.NewUtaBybitServiceWithParams(params).GetMarketTickers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest price: %w", err)
	}

	return parseLatestPriceResponse(result, symbol)
}

func parseLatestPriceResponse(response interface{}, symbol string) (float64, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return 0, fmt.Errorf("invalid response type")
	}
	if serverResp.RetCode != 0 {
		return 0, fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal result: %w", err)
	}

	var tickerResult struct {
		List []struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
		} `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &tickerResult); err != nil {
		return 0, fmt.Errorf("failed to unmarshal ticker result: %w", err)
	}
	if len(tickerResult.List) == 0 {
		return 0, fmt.Errorf("no ticker data for %s", symbol)
	}

	return parseFloat64(tickerResult.List[0].LastPrice), nil
}

func parseKlineResponse(response interface{}) ([]types.OHLCV, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return nil, fmt.Errorf("invalid response type")
	}
	if serverResp.RetCode != 0 {
		return nil, fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var klineResult struct {
		Symbol string     `json:"symbol"`
		List   [][]string `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &klineResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal kline result: %w", err)
	}

	bars := make([]types.OHLCV, 0, len(klineResult.List))
	for _, item := range klineResult.List {
		if len(item) < 6 {
			continue // Skip incomplete rows
		}

		// Bybit kline row: [startTime, open, high, low, close, volume, turnover]
		bars = append(bars, types.OHLCV{
			Timestamp: time.UnixMilli(parseInt64(item[0])),
			Open:      parseFloat64(item[1]),
			High:      parseFloat64(item[2]),
			Low:       parseFloat64(item[3]),
			Close:     parseFloat64(item[4]),
			Volume:    parseFloat64(item[5]),
		})
	}

	return bars, nil
}

// resampleBars merges chronological bars into buckets of the given width,
// aligned to the epoch. Partial trailing buckets are kept so the engine
// always sees the forming bar.
func resampleBars(bars []types.OHLCV, width time.Duration) []types.OHLCV {
	if len(bars) == 0 {
		return nil
	}

	var out []types.OHLCV
	var current *types.OHLCV
	var bucket int64

	for _, bar := range bars {
		b := bar.Timestamp.UnixMilli() / width.Milliseconds()
		if current == nil || b != bucket {
			if current != nil {
				out = append(out, *current)
			}
			merged := bar
			merged.Timestamp = time.UnixMilli(b * width.Milliseconds()).UTC()
			current = &merged
			bucket = b
			continue
		}
		if bar.High > current.High {
			current.High = bar.High
		}
		if bar.Low < current.Low {
			current.Low = bar.Low
		}
		current.Close = bar.Close
		current.Volume += bar.Volume
	}
	out = append(out, *current)

	return out
}

func parseFloat64(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
