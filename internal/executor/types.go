package executor

import "time"

// Side is the direction of an open exposure.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// OrderType distinguishes the two lifecycle records of a position.
type OrderType string

const (
	OrderTypeOpen  OrderType = "OPEN"
	OrderTypeClose OrderType = "CLOSE"
)

// Position is one open exposure. At most one open position may exist per
// instrument; the executor enforces this before any mutation.
type Position struct {
	Instrument      string    `json:"instrument"`
	Side            Side      `json:"side"`
	EntryPrice      float64   `json:"entry_price"`
	Quantity        float64   `json:"quantity"`
	EntryValue      float64   `json:"entry_value"`
	EntryTime       time.Time `json:"entry_time"`
	StopReference   float64   `json:"stop_reference"`
	StopLossPercent float64   `json:"stop_loss_percent"`
	OpeningReason   string    `json:"opening_reason"`

	// Mark-to-market fields, derived, not persisted as truth
	CurrentPrice  float64 `json:"current_price,omitempty"`
	UnrealizedPnL float64 `json:"unrealized_pnl,omitempty"`
}

// OrderRecord is one immutable history entry, appended at open and at
// close. Realized P&L fields are only set on close records.
type OrderRecord struct {
	ID         int       `json:"id"`
	Instrument string    `json:"instrument"`
	Type       OrderType `json:"type"`
	Side       Side      `json:"side"`
	Price      float64   `json:"price"`
	Quantity   float64   `json:"quantity"`
	Value      float64   `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
	Reason     string    `json:"reason"`
	Simulated  bool      `json:"simulated"`

	EntryPrice float64 `json:"entry_price,omitempty"`
	PnL        float64 `json:"pnl,omitempty"`
	PnLPercent float64 `json:"pnl_percent,omitempty"`
}

// PerformanceStats aggregates the closed records of the order history.
type PerformanceStats struct {
	TotalOrders   int     `json:"total_orders"`
	TotalClosed   int     `json:"total_closed"`
	Winning       int     `json:"winning"`
	Losing        int     `json:"losing"`
	HitRate       float64 `json:"hit_rate"`
	TotalPnL      float64 `json:"total_pnl"`
	AvgPnLPercent float64 `json:"avg_pnl_percent"`
}

// State is the durable executor state: open positions by instrument plus
// the append-only order history.
type State struct {
	Positions   map[string]*Position `json:"positions"`
	History     []OrderRecord        `json:"history"`
	LastUpdated time.Time            `json:"last_updated"`
}

// Store persists the executor state. Implementations must write
// atomically; a torn state file would break the uniqueness invariant on
// restart.
type Store interface {
	Load() (*State, error)
	Save(state *State) error
}
