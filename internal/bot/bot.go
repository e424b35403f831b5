package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/quantumtrades/hilo-trend-bot/internal/criteria"
	"github.com/quantumtrades/hilo-trend-bot/internal/executor"
	"github.com/quantumtrades/hilo-trend-bot/internal/indicators/trend"
	"github.com/quantumtrades/hilo-trend-bot/internal/logger"
	"github.com/quantumtrades/hilo-trend-bot/internal/monitor"
	"github.com/quantumtrades/hilo-trend-bot/internal/monitoring"
	"github.com/quantumtrades/hilo-trend-bot/internal/notifications"
	"github.com/quantumtrades/hilo-trend-bot/internal/portfolio"
	"github.com/quantumtrades/hilo-trend-bot/pkg/reporting"
)

// Bot drives the evaluation pipeline: registry, monitor, criteria and
// executor in that order. One tick processes each active instrument fully
// before moving to the next; instruments share no mutable state besides the
// registry, so a failed instrument never aborts the batch.
type Bot struct {
	registry *portfolio.Manager
	monitor  *monitor.Monitor
	criteria *criteria.Engine
	executor *executor.Executor
	notifier notifications.Notifier
	log      *logger.Logger

	tickInterval time.Duration

	lastSummarySent time.Time
}

// New assembles the bot from its collaborators.
func New(
	registry *portfolio.Manager,
	mon *monitor.Monitor,
	engine *criteria.Engine,
	exec *executor.Executor,
	notifier notifications.Notifier,
	log *logger.Logger,
	tickInterval time.Duration,
) *Bot {
	return &Bot{
		registry:     registry,
		monitor:      mon,
		criteria:     engine,
		executor:     exec,
		notifier:     notifier,
		log:          log,
		tickInterval: tickInterval,
	}
}

// Run executes ticks on the configured interval until the context is
// cancelled. The first tick runs immediately.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("bot started, tick interval %s", b.tickInterval)

	b.RunTick(ctx)

	ticker := time.NewTicker(b.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.log.Info("bot stopped")
			return ctx.Err()
		case <-ticker.C:
			b.RunTick(ctx)
		}
	}
}

// RunTick evaluates every active instrument once and logs the summary.
func (b *Bot) RunTick(ctx context.Context) {
	start := time.Now()
	active := b.registry.Active()
	b.log.Status("tick started: %d active instruments", len(active))

	for _, inst := range active {
		if ctx.Err() != nil {
			return
		}
		b.evaluateInstrument(ctx, inst)
	}

	b.logSummary()
	monitoring.ObserveTickDuration(time.Since(start))
}

// evaluateInstrument runs the full pipeline for one instrument. Ordering
// is fixed: aggregation completes before criteria evaluation, and criteria
// evaluation before any controller mutation.
func (b *Bot) evaluateInstrument(ctx context.Context, inst portfolio.Instrument) {
	snapshot := b.monitor.Scan(ctx, target(inst))

	price := snapshot.Price()
	if price <= 0 {
		b.log.Warning("%s: no usable price, skipping", inst.Name)
		monitoring.RecordError("data")
		return
	}
	monitoring.SetCurrentPrice(inst.Name, price)

	if position, open := b.executor.GetPosition(inst.Name); open {
		b.manageOpenPosition(ctx, inst, snapshot, &position, price)
		return
	}

	verdict := b.criteria.Evaluate(ctx, snapshot, nil)
	if !verdict.Fire {
		b.log.Info("%s: criteria not satisfied, waiting", inst.Name)
		return
	}
	reporting.PrintSnapshot(snapshot)

	side := sideFor(verdict.Direction)
	if side == "" {
		b.log.Warning("%s: verdict fired without direction, skipping", inst.Name)
		return
	}

	if _, err := b.executor.Open(inst.Name, side, price, verdict.Reasons()); err != nil {
		b.log.Error("%s: open failed: %v", inst.Name, err)
		monitoring.RecordError("position")
	}
}

// manageOpenPosition marks to market and enforces the stop loss. Closing
// and opening never happen for the same instrument in one tick: a reversal
// must pass through flat and wait for the next evaluation.
func (b *Bot) manageOpenPosition(ctx context.Context, inst portfolio.Instrument, snapshot *monitor.Snapshot, position *executor.Position, price float64) {
	if _, err := b.executor.MarkToMarket(inst.Name, price); err != nil {
		b.log.Warning("%s: mark to market failed: %v", inst.Name, err)
	}

	verdict := b.criteria.Evaluate(ctx, snapshot, position)

	if b.executor.CheckStopLoss(inst.Name, price) {
		reason := criteria.CriterionStopLoss
		for _, r := range verdict.Results {
			if r.Name == criteria.CriterionStopLoss && r.Reason != "" {
				reason = fmt.Sprintf("%s: %s", r.Name, r.Reason)
			}
		}
		if _, err := b.executor.Close(inst.Name, price, reason); err != nil {
			b.log.Error("%s: stop loss close failed: %v", inst.Name, err)
			monitoring.RecordError("position")
		}
		return
	}

	b.log.Info("%s: stop loss ok, holding position (entry $%.2f, now $%.2f)",
		inst.Name, position.EntryPrice, price)
}

func (b *Bot) logSummary() {
	positions := b.executor.OpenPositions()
	b.log.Status("open positions: %d", len(positions))
	for name, pos := range positions {
		b.log.Status("  %s: %s entry $%.2f, unrealized $%+.2f",
			name, pos.Side, pos.EntryPrice, pos.UnrealizedPnL)
	}

	perf := b.executor.Performance()
	b.log.Status("performance: %d orders, hit rate %.2f%%, avg P&L %+.2f%%, total $%+.2f",
		perf.TotalOrders, perf.HitRate, perf.AvgPnLPercent, perf.TotalPnL)

	// One summary notification per day is enough; every tick would spam.
	if time.Since(b.lastSummarySent) >= 24*time.Hour {
		b.lastSummarySent = time.Now()
		if err := b.notifier.SendAlert("info", fmt.Sprintf(
			"*Daily Summary*\nOpen positions: %d\nOrders: %d\nHit rate: %.2f%%\nTotal P&L: $%+.2f",
			len(positions), perf.TotalOrders, perf.HitRate, perf.TotalPnL)); err != nil {
			b.log.Warning("summary notification failed: %v", err)
		}
	}
}

// target converts a registry entry into the monitor's scan descriptor.
func target(inst portfolio.Instrument) monitor.Target {
	periods := make(map[monitor.Timeframe]int, len(inst.TimeframePeriods))
	for tf, p := range inst.TimeframePeriods {
		periods[monitor.Timeframe(tf)] = p
	}
	return monitor.Target{
		Name:        inst.Name,
		Symbol:      inst.Symbol,
		DailyPeriod: inst.DailyPeriod,
		Periods:     periods,
	}
}

// sideFor maps a trend direction to an order side.
func sideFor(state trend.State) executor.Side {
	switch state {
	case trend.StateBullish:
		return executor.SideLong
	case trend.StateBearish:
		return executor.SideShort
	}
	return ""
}
