package executor

import (
	"fmt"
	"sync"
	"time"

	boterrors "github.com/quantumtrades/hilo-trend-bot/internal/errors"
	"github.com/quantumtrades/hilo-trend-bot/internal/logger"
	"github.com/quantumtrades/hilo-trend-bot/internal/monitoring"
	"github.com/quantumtrades/hilo-trend-bot/internal/notifications"
)

// Config holds the execution parameters of the controller.
type Config struct {
	InitialCapital       float64
	PerOperationFraction float64
	StopLossPercent      float64
	TestMode             bool
}

// Executor owns the per-instrument position lifecycle: open, mark to
// market, stop-loss check, close and P&L realization. All mutations are
// serialized per instrument and persisted before they are reported.
type Executor struct {
	mu       sync.RWMutex
	config   Config
	state    *State
	store    Store
	notifier notifications.Notifier
	log      *logger.Logger
}

// NewExecutor creates the controller and loads any persisted state.
func NewExecutor(config Config, store Store, notifier notifications.Notifier, log *logger.Logger) (*Executor, error) {
	state, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load executor state: %w", err)
	}
	if state == nil {
		state = &State{Positions: make(map[string]*Position)}
	}
	if state.Positions == nil {
		state.Positions = make(map[string]*Position)
	}

	e := &Executor{
		config:   config,
		state:    state,
		store:    store,
		notifier: notifier,
		log:      log,
	}
	monitoring.SetOpenPositions(len(state.Positions))
	return e, nil
}

// Open transitions an instrument from Flat to Open. It fails with
// ErrDuplicatePosition when a position is already open, before any
// mutation. Quantity is derived from the configured per-operation capital
// allocation at the given price.
func (e *Executor) Open(instrument string, side Side, price float64, reason string) (*OrderRecord, error) {
	if price <= 0 {
		return nil, boterrors.NewValidationError("executor", "open",
			fmt.Sprintf("invalid price %.4f for %s", price, instrument))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.state.Positions[instrument]; exists {
		return nil, boterrors.NewDuplicatePositionError(instrument)
	}

	allocation := e.config.InitialCapital * e.config.PerOperationFraction
	quantity := allocation / price

	now := time.Now()
	position := &Position{
		Instrument:      instrument,
		Side:            side,
		EntryPrice:      price,
		Quantity:        quantity,
		EntryValue:      allocation,
		EntryTime:       now,
		StopReference:   price,
		StopLossPercent: e.config.StopLossPercent,
		OpeningReason:   reason,
	}

	record := OrderRecord{
		ID:         len(e.state.History) + 1,
		Instrument: instrument,
		Type:       OrderTypeOpen,
		Side:       side,
		Price:      price,
		Quantity:   quantity,
		Value:      allocation,
		Timestamp:  now,
		Reason:     reason,
		Simulated:  e.config.TestMode,
	}

	e.state.Positions[instrument] = position
	e.state.History = append(e.state.History, record)

	if err := e.save(); err != nil {
		// All-or-nothing: a failed save rolls back the in-memory mutation.
		delete(e.state.Positions, instrument)
		e.state.History = e.state.History[:len(e.state.History)-1]
		return nil, err
	}

	e.log.LogOrderExecution(string(side), instrument, price, quantity, allocation, reason)
	monitoring.RecordOrder(string(OrderTypeOpen))
	monitoring.SetOpenPositions(len(e.state.Positions))
	e.notify("trade", fmt.Sprintf("*%s OPENED: %s*\nPrice: $%.2f\nQuantity: %.8f\nReason: %s",
		side, instrument, price, quantity, reason))

	return &record, nil
}

// MarkToMarket refreshes the derived P&L fields of an open position. It is
// read-only with respect to the lifecycle: no transition, no history entry.
func (e *Executor) MarkToMarket(instrument string, price float64) (*Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	position, exists := e.state.Positions[instrument]
	if !exists {
		return nil, boterrors.NewNoOpenPositionError(instrument, "markToMarket")
	}

	position.CurrentPrice = price
	position.UnrealizedPnL = realizedPnL(position, price)

	snapshot := *position
	return &snapshot, nil
}

// Close transitions an instrument from Open to Flat, realizing P&L. It
// fails with ErrNoOpenPosition when nothing is open.
func (e *Executor) Close(instrument string, price float64, reason string) (*OrderRecord, error) {
	if price <= 0 {
		return nil, boterrors.NewValidationError("executor", "close",
			fmt.Sprintf("invalid price %.4f for %s", price, instrument))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	position, exists := e.state.Positions[instrument]
	if !exists {
		return nil, boterrors.NewNoOpenPositionError(instrument, "close")
	}

	exitValue := position.Quantity * price
	pnl := realizedPnL(position, price)
	pnlPercent := pnl / position.EntryValue * 100

	record := OrderRecord{
		ID:         len(e.state.History) + 1,
		Instrument: instrument,
		Type:       OrderTypeClose,
		Side:       position.Side,
		Price:      price,
		Quantity:   position.Quantity,
		Value:      exitValue,
		Timestamp:  time.Now(),
		Reason:     reason,
		Simulated:  e.config.TestMode,
		EntryPrice: position.EntryPrice,
		PnL:        pnl,
		PnLPercent: pnlPercent,
	}

	delete(e.state.Positions, instrument)
	e.state.History = append(e.state.History, record)

	if err := e.save(); err != nil {
		e.state.Positions[instrument] = position
		e.state.History = e.state.History[:len(e.state.History)-1]
		return nil, err
	}

	e.log.LogPositionClose(instrument, position.EntryPrice, price, pnl, pnlPercent)
	monitoring.RecordOrder(string(OrderTypeClose))
	monitoring.RecordRealizedPnL(pnl)
	monitoring.SetOpenPositions(len(e.state.Positions))
	e.notify("trade", fmt.Sprintf("*CLOSED: %s*\nEntry: $%.2f → Exit: $%.2f\nP&L: $%+.2f (%+.2f%%)\nReason: %s",
		instrument, position.EntryPrice, price, pnl, pnlPercent, reason))

	return &record, nil
}

// CheckStopLoss reports whether the open position's loss from its stop
// reference has reached the configured percentage. It never mutates state;
// a true result requires the caller to invoke Close explicitly.
func (e *Executor) CheckStopLoss(instrument string, price float64) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	position, exists := e.state.Positions[instrument]
	if !exists {
		return false
	}
	return LossFraction(position, price) >= position.StopLossPercent
}

// LossFraction computes the fractional drawdown of a position from its
// stop reference. Positive values are losses; the sign flips for shorts.
func LossFraction(position *Position, price float64) float64 {
	if position.StopReference <= 0 {
		return 0
	}
	loss := (position.StopReference - price) / position.StopReference
	if position.Side == SideShort {
		loss = -loss
	}
	return loss
}

// UpdateStopReference moves the stop reference of an open position, the
// trailing-stop hook used when the trend keeps running in favor.
func (e *Executor) UpdateStopReference(instrument string, price float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	position, exists := e.state.Positions[instrument]
	if !exists {
		return boterrors.NewNoOpenPositionError(instrument, "updateStopReference")
	}

	previous := position.StopReference
	position.StopReference = price
	if err := e.save(); err != nil {
		position.StopReference = previous
		return err
	}
	return nil
}

// GetPosition returns a copy of the open position, if any.
func (e *Executor) GetPosition(instrument string) (Position, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	position, exists := e.state.Positions[instrument]
	if !exists {
		return Position{}, false
	}
	return *position, true
}

// OpenPositions returns a copy of all open positions keyed by instrument.
func (e *Executor) OpenPositions() map[string]Position {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]Position, len(e.state.Positions))
	for name, position := range e.state.Positions {
		out[name] = *position
	}
	return out
}

// History returns the most recent records, newest last.
func (e *Executor) History(limit int) []OrderRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()

	history := e.state.History
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]OrderRecord, len(history))
	copy(out, history)
	return out
}

// Performance aggregates hit rate and P&L over the closed records.
func (e *Executor) Performance() PerformanceStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := PerformanceStats{TotalOrders: len(e.state.History)}

	var pctSum float64
	for _, record := range e.state.History {
		if record.Type != OrderTypeClose {
			continue
		}
		stats.TotalClosed++
		stats.TotalPnL += record.PnL
		pctSum += record.PnLPercent
		if record.PnL > 0 {
			stats.Winning++
		} else {
			stats.Losing++
		}
	}

	if stats.TotalClosed > 0 {
		stats.HitRate = float64(stats.Winning) / float64(stats.TotalClosed) * 100
		stats.AvgPnLPercent = pctSum / float64(stats.TotalClosed)
	}
	return stats
}

// realizedPnL values a position against an exit price, signed by side.
func realizedPnL(position *Position, price float64) float64 {
	pnl := position.Quantity * (price - position.EntryPrice)
	if position.Side == SideShort {
		pnl = -pnl
	}
	return pnl
}

func (e *Executor) save() error {
	e.state.LastUpdated = time.Now()
	if err := e.store.Save(e.state); err != nil {
		return boterrors.WrapError(err, boterrors.ErrorCategoryPosition, "executor", "save")
	}
	return nil
}

func (e *Executor) notify(level, message string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.SendAlert(level, message); err != nil {
		e.log.Warning("notification failed: %v", err)
	}
}
