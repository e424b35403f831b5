package monitor

import (
	"context"
	"time"

	"github.com/quantumtrades/hilo-trend-bot/internal/exchange"
	"github.com/quantumtrades/hilo-trend-bot/internal/indicators/trend"
)

// Target describes one instrument to scan: its market symbol, the daily
// HiLo period and any per-timeframe optimized periods.
type Target struct {
	Name        string
	Symbol      string
	DailyPeriod int
	Periods     map[Timeframe]int
}

// period returns the optimized period for a timeframe, falling back to the
// instrument's daily period.
func (t Target) period(tf Timeframe) int {
	if p, ok := t.Periods[tf]; ok && p > 0 {
		return p
	}
	return t.DailyPeriod
}

// TimeframeResult is the indicator reading for one timeframe. Degraded
// timeframes (missing or short series) carry state 0, streak 0 and
// Degraded=true.
type TimeframeResult struct {
	Timeframe Timeframe
	Period    int
	State     trend.State
	Reference float64
	Price     float64
	Streak    int
	Changed   bool
	Degraded  bool
}

// Snapshot is the full multi-timeframe reading for one instrument at one
// decision tick. Timeframes always holds one entry per configured
// timeframe, in the fixed order of AllTimeframes.
type Snapshot struct {
	Instrument string
	Symbol     string
	Timestamp  time.Time
	Timeframes map[Timeframe]TimeframeResult
}

// Daily returns the daily timeframe result.
func (s *Snapshot) Daily() TimeframeResult {
	return s.Timeframes[Timeframe1d]
}

// Price returns the daily close, the reference price for order decisions.
func (s *Snapshot) Price() float64 {
	return s.Daily().Price
}

// Alignment returns how many sub-daily timeframes are bullish and how many
// are bearish. Neutral and degraded timeframes are not counted.
func (s *Snapshot) Alignment() (bullish, bearish int) {
	for _, tf := range SubDailyTimeframes {
		switch s.Timeframes[tf].State {
		case trend.StateBullish:
			bullish++
		case trend.StateBearish:
			bearish++
		}
	}
	return bullish, bearish
}

// Feature is one {state, streak} pair of the estimator input vector.
type Feature struct {
	Timeframe Timeframe
	State     int
	Streak    int
}

// FeatureVector is the compact per-tick summary consumed by the probability
// estimator, in the fixed sub-daily timeframe order.
type FeatureVector []Feature

// Features assembles the estimator input from a snapshot. The layout is
// deterministic: one entry per sub-daily timeframe, in order, with degraded
// timeframes contributing zeros.
func Features(s *Snapshot) FeatureVector {
	vector := make(FeatureVector, 0, len(SubDailyTimeframes))
	for _, tf := range SubDailyTimeframes {
		result := s.Timeframes[tf]
		vector = append(vector, Feature{
			Timeframe: tf,
			State:     int(result.State),
			Streak:    result.Streak,
		})
	}
	return vector
}

// Logger is the subset of the file logger the monitor uses.
type Logger interface {
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
}

// Monitor runs the HiLo activator across all configured timeframes of an
// instrument and assembles the snapshot the decision engine consumes.
type Monitor struct {
	provider     exchange.MarketDataProvider
	log          Logger
	fetchTimeout time.Duration
}

// NewMonitor creates a multi-timeframe monitor on the given provider.
func NewMonitor(provider exchange.MarketDataProvider, log Logger, fetchTimeout time.Duration) *Monitor {
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	return &Monitor{
		provider:     provider,
		log:          log,
		fetchTimeout: fetchTimeout,
	}
}

// Scan evaluates every timeframe of one instrument. A timeframe whose
// series is unavailable or shorter than its period degrades to a neutral
// zero entry; Scan always returns a complete snapshot and never fails the
// whole instrument on a single feed.
func (m *Monitor) Scan(ctx context.Context, target Target) *Snapshot {
	snapshot := &Snapshot{
		Instrument: target.Name,
		Symbol:     target.Symbol,
		Timestamp:  time.Now(),
		Timeframes: make(map[Timeframe]TimeframeResult, len(AllTimeframes)),
	}

	for _, tf := range AllTimeframes {
		snapshot.Timeframes[tf] = m.scanTimeframe(ctx, target, tf)
	}

	return snapshot
}

func (m *Monitor) scanTimeframe(ctx context.Context, target Target, tf Timeframe) TimeframeResult {
	period := target.period(tf)
	result := TimeframeResult{Timeframe: tf, Period: period, Degraded: true}

	fetchCtx, cancel := context.WithTimeout(ctx, m.fetchTimeout)
	defer cancel()

	series, err := m.provider.GetKlines(fetchCtx, target.Symbol, string(tf), BarLimit(tf))
	if err != nil {
		m.log.Warning("%s %s: market data unavailable: %v", target.Name, tf, err)
		return result
	}
	if len(series) < period {
		m.log.Warning("%s %s: %d bars, need %d", target.Name, tf, len(series), period)
		return result
	}

	hilo := trend.NewHiLo(period)
	points, err := hilo.Compute(series)
	if err != nil {
		m.log.Warning("%s %s: indicator failed: %v", target.Name, tf, err)
		return result
	}

	last := points[len(points)-1]
	if !last.Defined {
		m.log.Warning("%s %s: series too short to classify", target.Name, tf)
		return result
	}
	changed, _, _ := trend.TrendChange(points)

	result.Degraded = false
	result.State = last.State
	result.Reference = last.Reference
	result.Price = series[len(series)-1].Close
	result.Streak = trend.Streak(points)
	result.Changed = changed

	m.log.Info("%s %s: %s (streak %d, price %.4f)",
		target.Name, tf, last.State, result.Streak, result.Price)

	return result
}
