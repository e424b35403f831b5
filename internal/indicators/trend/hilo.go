package trend

import (
	"fmt"

	boterrors "github.com/quantumtrades/hilo-trend-bot/internal/errors"
	"github.com/quantumtrades/hilo-trend-bot/pkg/types"
)

// State is the per-bar trend classification of the HiLo activator.
type State int

const (
	StateBearish State = -1
	StateNeutral State = 0
	StateBullish State = 1
)

func (s State) String() string {
	switch s {
	case StateBullish:
		return "BULLISH"
	case StateBearish:
		return "BEARISH"
	default:
		return "NEUTRAL"
	}
}

// MAType selects the averaging mode for the high/low bands.
type MAType string

const (
	MATypeSMA MAType = "SMA"
	MATypeEMA MAType = "EMA"
)

// Point is the indicator output for a single bar. Bars before the warm-up
// window have Defined=false and must be ignored by consumers.
type Point struct {
	State     State
	Reference float64
	Defined   bool
}

// HiLo is the HiLo activator: moving averages of highs and lows, lagged by
// one bar, classify each close as bullish, bearish or neutral. The reference
// level carries the opposite band and holds through neutral bars.
type HiLo struct {
	period int
	maType MAType
}

// NewHiLo creates a HiLo activator for the given lookback period.
func NewHiLo(period int) *HiLo {
	return &HiLo{period: period, maType: MATypeSMA}
}

// NewHiLoWithMA creates a HiLo activator with an explicit averaging mode.
func NewHiLoWithMA(period int, maType MAType) *HiLo {
	return &HiLo{period: period, maType: maType}
}

func (h *HiLo) Period() int { return h.period }

func (h *HiLo) String() string {
	return fmt.Sprintf("HiLo(%d, %s)", h.period, h.maType)
}

// Compute classifies every bar of the series. It is a pure function: the
// same series and period always produce the same output, and bar i is
// classified against averages ending at bar i-1, never against its own
// high/low.
func (h *HiLo) Compute(series []types.OHLCV) ([]Point, error) {
	if h.period <= 0 {
		return nil, boterrors.NewValidationError("indicator", "compute",
			fmt.Sprintf("invalid HiLo period %d", h.period))
	}
	if len(series) < h.period {
		return nil, boterrors.NewInsufficientDataError("indicator", len(series), h.period)
	}

	highAvg := h.average(series, func(b types.OHLCV) float64 { return b.High })
	lowAvg := h.average(series, func(b types.OHLCV) float64 { return b.Low })

	points := make([]Point, len(series))
	for i := h.period; i < len(series); i++ {
		close := series[i].Close
		hi := highAvg[i-1]
		lo := lowAvg[i-1]

		switch {
		case close > hi:
			points[i] = Point{State: StateBullish, Reference: lo, Defined: true}
		case close < lo:
			points[i] = Point{State: StateBearish, Reference: hi, Defined: true}
		default:
			// Neutral holds the previous reference. The first eligible bar
			// has no previous reference and seeds from the low band.
			ref := lo
			if i > h.period && points[i-1].Defined {
				ref = points[i-1].Reference
			}
			points[i] = Point{State: StateNeutral, Reference: ref, Defined: true}
		}
	}

	return points, nil
}

// Last computes the series and returns the final bar's point.
func (h *HiLo) Last(series []types.OHLCV) (Point, error) {
	points, err := h.Compute(series)
	if err != nil {
		return Point{}, err
	}
	return points[len(points)-1], nil
}

// average builds the per-bar moving average of the extracted field. Index i
// holds the average of the window ending at bar i; entries before the first
// full window are zero and never read because classification starts at
// period and looks back one bar.
func (h *HiLo) average(series []types.OHLCV, field func(types.OHLCV) float64) []float64 {
	out := make([]float64, len(series))

	if h.maType == MATypeEMA {
		alpha := 2.0 / (float64(h.period) + 1.0)
		ema := field(series[0])
		out[0] = ema
		for i := 1; i < len(series); i++ {
			ema = alpha*field(series[i]) + (1-alpha)*ema
			out[i] = ema
		}
		return out
	}

	sum := 0.0
	for i, bar := range series {
		sum += field(bar)
		if i >= h.period {
			sum -= field(series[i-h.period])
		}
		if i >= h.period-1 {
			out[i] = sum / float64(h.period)
		}
	}
	return out
}

// TrendChange reports whether the last two bars show a confirmed state flip.
// Flips through neutral are not reported; both bars must carry a defined,
// non-neutral state.
func TrendChange(points []Point) (changed bool, from, to State) {
	if len(points) < 2 {
		return false, StateNeutral, StateNeutral
	}
	prev := points[len(points)-2]
	curr := points[len(points)-1]
	if !prev.Defined || !curr.Defined {
		return false, StateNeutral, StateNeutral
	}
	if prev.State == StateNeutral || curr.State == StateNeutral {
		return false, StateNeutral, StateNeutral
	}
	if prev.State != curr.State {
		return true, prev.State, curr.State
	}
	return false, StateNeutral, StateNeutral
}

// Streak counts contiguous bars sharing the last bar's non-neutral state,
// walking backward from the end. A neutral last bar yields 0.
func Streak(points []Point) int {
	if len(points) == 0 {
		return 0
	}
	last := points[len(points)-1]
	if !last.Defined || last.State == StateNeutral {
		return 0
	}
	count := 0
	for i := len(points) - 1; i >= 0; i-- {
		if !points[i].Defined || points[i].State != last.State {
			break
		}
		count++
	}
	return count
}
