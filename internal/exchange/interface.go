package exchange

import (
	"context"

	"github.com/quantumtrades/hilo-trend-bot/pkg/types"
)

// MarketDataProvider supplies OHLCV history and last prices for the trend
// engine. Implementations are read-only collaborators; a failed or timed out
// call degrades the requesting timeframe, it never aborts a tick.
type MarketDataProvider interface {
	// GetKlines returns up to limit bars for the symbol at the given
	// interval, oldest first.
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error)

	// GetLatestPrice returns the most recent trade price for the symbol.
	GetLatestPrice(ctx context.Context, symbol string) (float64, error)

	// GetName returns the provider name for logging
	GetName() string
}
