package monitor

// Timeframe is a sampling interval over which OHLCV bars are grouped.
type Timeframe string

const (
	Timeframe15m Timeframe = "15m"
	Timeframe30m Timeframe = "30m"
	Timeframe1h  Timeframe = "1h"
	Timeframe6h  Timeframe = "6h"
	Timeframe8h  Timeframe = "8h"
	Timeframe12h Timeframe = "12h"
	Timeframe1d  Timeframe = "1d"
)

// AllTimeframes is the fixed evaluation order. Downstream consumers,
// including the probability estimator, rely on this layout being stable.
var AllTimeframes = []Timeframe{
	Timeframe15m,
	Timeframe30m,
	Timeframe1h,
	Timeframe6h,
	Timeframe8h,
	Timeframe12h,
	Timeframe1d,
}

// SubDailyTimeframes are the intraday timeframes used for the alignment
// check and the estimator feature vector, in the same fixed order.
var SubDailyTimeframes = []Timeframe{
	Timeframe15m,
	Timeframe30m,
	Timeframe1h,
	Timeframe6h,
	Timeframe8h,
	Timeframe12h,
}

// barLimits gives the history depth requested per timeframe. The intraday
// feeds only need enough bars to cover the largest optimized period plus
// the warm-up window.
var barLimits = map[Timeframe]int{
	Timeframe15m: 500,
	Timeframe30m: 500,
	Timeframe1h:  500,
	Timeframe6h:  400,
	Timeframe8h:  400,
	Timeframe12h: 400,
	Timeframe1d:  365,
}

// BarLimit returns the number of bars fetched for a timeframe.
func BarLimit(tf Timeframe) int {
	if n, ok := barLimits[tf]; ok {
		return n
	}
	return 200
}
