package bot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumtrades/hilo-trend-bot/internal/criteria"
	"github.com/quantumtrades/hilo-trend-bot/internal/executor"
	"github.com/quantumtrades/hilo-trend-bot/internal/logger"
	"github.com/quantumtrades/hilo-trend-bot/internal/monitor"
	"github.com/quantumtrades/hilo-trend-bot/internal/notifications"
	"github.com/quantumtrades/hilo-trend-bot/internal/portfolio"
	"github.com/quantumtrades/hilo-trend-bot/pkg/types"
)

type fakeProvider struct {
	series []types.OHLCV
}

func (f *fakeProvider) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.OHLCV, error) {
	return f.series, nil
}

func (f *fakeProvider) GetLatestPrice(ctx context.Context, symbol string) (float64, error) {
	return f.series[len(f.series)-1].Close, nil
}

func (f *fakeProvider) GetName() string { return "fake" }

type fakePredictor struct {
	probability float64
}

func (f *fakePredictor) Predict(ctx context.Context, features monitor.FeatureVector) (float64, error) {
	return f.probability, nil
}

func (f *fakePredictor) GetName() string { return "fake" }

func trendSeries(n int, step float64) []types.OHLCV {
	series := make([]types.OHLCV, n)
	price := 100.0
	for i := range series {
		series[i] = types.OHLCV{Open: price, High: price + 0.5, Low: price - 0.5, Close: price}
		price += step
	}
	return series
}

func newTestBot(t *testing.T, provider *fakeProvider, predictor *fakePredictor) (*Bot, *executor.Executor) {
	t.Helper()
	dir := t.TempDir()

	log, err := logger.NewLogger(dir, "test")
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	registry, err := portfolio.NewManager(
		portfolio.Bounds{Min: 0, Max: 5},
		portfolio.NewFileStore(filepath.Join(dir, "portfolio.json")),
		log,
	)
	require.NoError(t, err)
	require.True(t, registry.Add(portfolio.Instrument{
		Name: "Bitcoin", Symbol: "BTCUSDT", DailyPeriod: 10,
	}, "test"))

	exec, err := executor.NewExecutor(executor.Config{
		InitialCapital:       1000,
		PerOperationFraction: 0.10,
		StopLossPercent:      0.25,
		TestMode:             true,
	}, executor.NewFileStore(filepath.Join(dir, "state.json")), nil, log)
	require.NoError(t, err)

	engine := criteria.NewEngine(criteria.Config{
		MLEnabled:            true,
		StopLossEnabled:      true,
		ProbabilityThreshold: 0.70,
		MinAligned:           5,
		StopLossPercent:      0.25,
		DailyCheckTime:       "21:00:01",
		DailyCheckTolerance:  time.Minute,
		Location:             time.UTC,
	}, predictor, log)

	mon := monitor.NewMonitor(provider, log, time.Second)

	return New(registry, mon, engine, exec, notifications.NopNotifier{}, log, time.Minute), exec
}

// TestBot_Tick_OpensOnMLSignal tests the full pipeline from scan to open order
func TestBot_Tick_OpensOnMLSignal(t *testing.T) {
	provider := &fakeProvider{series: trendSeries(60, 1.0)}
	b, exec := newTestBot(t, provider, &fakePredictor{probability: 0.90})

	b.RunTick(context.Background())

	position, open := exec.GetPosition("Bitcoin")
	require.True(t, open, "a strong aligned signal must open a position")
	assert.Equal(t, executor.SideLong, position.Side)
	assert.Equal(t, 159.0, position.EntryPrice, "entry at the daily close")
}

// TestBot_Tick_HoldsWithoutSignal tests that a weak signal leaves the book flat
func TestBot_Tick_HoldsWithoutSignal(t *testing.T) {
	provider := &fakeProvider{series: trendSeries(60, 1.0)}
	b, exec := newTestBot(t, provider, &fakePredictor{probability: 0.40})

	b.RunTick(context.Background())

	assert.Empty(t, exec.OpenPositions())
}

// TestBot_Tick_NoDuplicateOpen tests that a repeated signal never stacks positions
func TestBot_Tick_NoDuplicateOpen(t *testing.T) {
	provider := &fakeProvider{series: trendSeries(60, 1.0)}
	b, exec := newTestBot(t, provider, &fakePredictor{probability: 0.90})

	b.RunTick(context.Background())
	b.RunTick(context.Background())

	assert.Len(t, exec.OpenPositions(), 1)
	assert.Len(t, exec.History(0), 1, "the second tick must not re-open")
}

// TestBot_Tick_StopLossCloses tests the drawdown-triggered close across ticks
func TestBot_Tick_StopLossCloses(t *testing.T) {
	provider := &fakeProvider{series: trendSeries(60, 1.0)}
	b, exec := newTestBot(t, provider, &fakePredictor{probability: 0.90})

	b.RunTick(context.Background())
	_, open := exec.GetPosition("Bitcoin")
	require.True(t, open)

	// The market collapses: 60 falling bars ending far below the stop.
	provider.series = trendSeries(60, -1.0)
	b.RunTick(context.Background())

	_, open = exec.GetPosition("Bitcoin")
	assert.False(t, open, "a stop-loss breach must close the position")

	history := exec.History(0)
	require.Len(t, history, 2)
	closeRecord := history[1]
	assert.Equal(t, executor.OrderTypeClose, closeRecord.Type)
	assert.Less(t, closeRecord.PnL, 0.0)
}
