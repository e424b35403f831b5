package criteria

import (
	"context"
	"fmt"
	"time"

	"github.com/quantumtrades/hilo-trend-bot/internal/executor"
	"github.com/quantumtrades/hilo-trend-bot/internal/indicators/trend"
	"github.com/quantumtrades/hilo-trend-bot/internal/monitor"
	"github.com/quantumtrades/hilo-trend-bot/internal/monitoring"
	"github.com/quantumtrades/hilo-trend-bot/internal/prediction"
)

// Criterion identifiers used in verdicts, metrics and notifications.
const (
	CriterionDailyCheck = "criterion_1_daily_check"
	CriterionML         = "criterion_2_ml_alignment"
	CriterionStopLoss   = "criterion_3_stop_loss"
)

// Config holds the evaluation parameters. Validate at startup via the
// global config; the engine assumes values are already in range.
type Config struct {
	DailyCheckEnabled bool
	MLEnabled         bool
	StopLossEnabled   bool

	ProbabilityThreshold float64
	MinAligned           int
	StopLossPercent      float64

	DailyCheckTime      string
	DailyCheckTolerance time.Duration
	Location            *time.Location
}

// Result is the outcome of one criterion: whether it fired, a
// human-readable reason, and the numeric evidence behind it.
type Result struct {
	Name        string  `json:"name"`
	Satisfied   bool    `json:"satisfied"`
	Reason      string  `json:"reason"`
	Probability float64 `json:"probability,omitempty"`
	Aligned     int     `json:"aligned,omitempty"`
	Loss        float64 `json:"loss,omitempty"`
}

// Verdict is the OR-combination of the three criteria for one instrument
// at one tick. Satisfied lists every criterion that fired, not just the
// first; simultaneous triggers are meaningful for auditing.
type Verdict struct {
	Instrument string      `json:"instrument"`
	Timestamp  time.Time   `json:"timestamp"`
	Fire       bool        `json:"fire"`
	Direction  trend.State `json:"direction"`
	Satisfied  []string    `json:"satisfied"`
	Results    []Result    `json:"results"`
}

// Reasons joins the reasons of all fired criteria for order records.
func (v *Verdict) Reasons() string {
	out := ""
	for _, r := range v.Results {
		if !r.Satisfied {
			continue
		}
		if out != "" {
			out += " | "
		}
		out += r.Reason
	}
	return out
}

// Logger is the subset of the file logger the engine uses.
type Logger interface {
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
}

// Engine evaluates the three order-gating criteria. Criteria degrade
// independently: a missing collaborator marks its criterion not satisfied
// and never blocks the other two.
type Engine struct {
	config    Config
	predictor prediction.Predictor
	log       Logger
	now       func() time.Time
}

// NewEngine creates a criteria engine. The predictor may be nil, in which
// case criterion 2 always reports not satisfied.
func NewEngine(config Config, predictor prediction.Predictor, log Logger) *Engine {
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &Engine{
		config:    config,
		predictor: predictor,
		log:       log,
		now:       time.Now,
	}
}

// Evaluate runs all three criteria against the snapshot and the current
// position, if any. Aggregation has already completed by the time this is
// called; the verdict reads only the snapshot, never the market.
func (e *Engine) Evaluate(ctx context.Context, snapshot *monitor.Snapshot, position *executor.Position) *Verdict {
	verdict := &Verdict{
		Instrument: snapshot.Instrument,
		Timestamp:  e.now(),
	}

	c1 := e.evaluateDailyCheck(snapshot)
	c2 := e.evaluateML(ctx, snapshot)
	c3 := e.evaluateStopLoss(snapshot, position)
	verdict.Results = []Result{c1, c2, c3}

	for _, r := range verdict.Results {
		if r.Satisfied {
			verdict.Fire = true
			verdict.Satisfied = append(verdict.Satisfied, r.Name)
			monitoring.RecordCriterionFired(r.Name)
		}
	}

	verdict.Direction = e.direction(snapshot, c2)
	monitoring.RecordEvaluation(snapshot.Instrument, verdict.Fire)

	return verdict
}

// evaluateDailyCheck is criterion 1: the evaluation time falls within the
// tolerance window of the configured daily check time, and the daily
// timeframe carries a defined trend. This gates on "non-neutral at the
// right time", not on an actual flip versus the prior day.
func (e *Engine) evaluateDailyCheck(snapshot *monitor.Snapshot) Result {
	result := Result{Name: CriterionDailyCheck}
	if !e.config.DailyCheckEnabled {
		result.Reason = "daily check disabled"
		return result
	}

	now := e.now().In(e.config.Location)
	target, err := time.ParseInLocation("15:04:05", e.config.DailyCheckTime, e.config.Location)
	if err != nil {
		result.Reason = fmt.Sprintf("invalid daily check time %q", e.config.DailyCheckTime)
		return result
	}

	nowSeconds := now.Hour()*3600 + now.Minute()*60 + now.Second()
	targetSeconds := target.Hour()*3600 + target.Minute()*60 + target.Second()
	diff := nowSeconds - targetSeconds
	if diff < 0 {
		diff = -diff
	}

	if float64(diff) > e.config.DailyCheckTolerance.Seconds() {
		result.Reason = fmt.Sprintf("outside check window (now %s, target %s)",
			now.Format("15:04:05"), e.config.DailyCheckTime)
		return result
	}

	daily := snapshot.Daily()
	if daily.Degraded {
		result.Reason = "daily timeframe data unavailable"
		return result
	}
	if daily.State == trend.StateNeutral {
		result.Reason = "daily state neutral at check time"
		return result
	}

	result.Satisfied = true
	result.Reason = fmt.Sprintf("daily %s confirmed at %s", daily.State, now.Format("15:04:05"))
	return result
}

// evaluateML is criterion 2: the reversal probability clears the threshold
// and enough sub-daily timeframes share a non-zero sign.
func (e *Engine) evaluateML(ctx context.Context, snapshot *monitor.Snapshot) Result {
	result := Result{Name: CriterionML}
	if !e.config.MLEnabled {
		result.Reason = "ML criterion disabled"
		return result
	}
	if e.predictor == nil {
		result.Reason = "probability estimator not configured"
		return result
	}

	probability, err := e.predictor.Predict(ctx, monitor.Features(snapshot))
	if err != nil {
		// Degrade, never throw: an unavailable estimator must not block
		// the other criteria.
		e.log.Warning("%s: estimator unavailable: %v", snapshot.Instrument, err)
		result.Reason = fmt.Sprintf("estimator unavailable: %v", err)
		return result
	}
	result.Probability = probability

	if probability < e.config.ProbabilityThreshold {
		result.Reason = fmt.Sprintf("probability %.2f%% < %.0f%%",
			probability*100, e.config.ProbabilityThreshold*100)
		return result
	}

	bullish, bearish := snapshot.Alignment()
	result.Aligned = bullish
	direction := "bullish"
	if bearish > bullish {
		result.Aligned = bearish
		direction = "bearish"
	}

	if result.Aligned < e.config.MinAligned {
		result.Reason = fmt.Sprintf("timeframes not aligned (+%d/-%d, need %d)",
			bullish, bearish, e.config.MinAligned)
		return result
	}

	result.Satisfied = true
	result.Reason = fmt.Sprintf("ML %.2f%% ≥ %.0f%%, %d timeframes %s",
		probability*100, e.config.ProbabilityThreshold*100, result.Aligned, direction)
	return result
}

// evaluateStopLoss is criterion 3: only meaningful with an open position,
// fires when the drawdown from the stop reference reaches the threshold.
func (e *Engine) evaluateStopLoss(snapshot *monitor.Snapshot, position *executor.Position) Result {
	result := Result{Name: CriterionStopLoss}
	if !e.config.StopLossEnabled {
		result.Reason = "stop loss disabled"
		return result
	}
	if position == nil {
		result.Reason = "no open position"
		return result
	}

	price := snapshot.Price()
	if price <= 0 {
		result.Reason = "current price unavailable"
		return result
	}

	loss := executor.LossFraction(position, price)
	result.Loss = loss

	threshold := position.StopLossPercent
	if threshold <= 0 {
		threshold = e.config.StopLossPercent
	}

	if loss >= threshold {
		result.Satisfied = true
		result.Reason = fmt.Sprintf("stop loss hit: loss %.2f%% ≥ %.0f%%", loss*100, threshold*100)
		return result
	}

	result.Reason = fmt.Sprintf("stop loss ok: loss %.2f%% < %.0f%%", loss*100, threshold*100)
	return result
}

// direction picks the trade direction for a firing verdict: the ML
// majority when criterion 2 fired, otherwise the daily state.
func (e *Engine) direction(snapshot *monitor.Snapshot, ml Result) trend.State {
	if ml.Satisfied {
		bullish, bearish := snapshot.Alignment()
		if bearish > bullish {
			return trend.StateBearish
		}
		return trend.StateBullish
	}
	return snapshot.Daily().State
}
