package portfolio

import "time"

// Instrument is one catalog entry: a tradable asset with its HiLo
// parameters and allocation. Entries are never deleted, only deactivated,
// so historical provenance survives.
type Instrument struct {
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	SourceID    string  `json:"source_id"`
	DailyPeriod int     `json:"daily_period"`
	Tier        int     `json:"tier"`
	Allocation  float64 `json:"allocation"`
	Active      bool    `json:"active"`

	// Per-timeframe optimized periods, keyed by timeframe notation.
	// Timeframes without an entry fall back to DailyPeriod.
	TimeframePeriods map[string]int `json:"timeframe_periods,omitempty"`

	AddedAt       time.Time `json:"added_at"`
	AddedReason   string    `json:"added_reason,omitempty"`
	RemovedAt     time.Time `json:"removed_at,omitempty"`
	RemovedReason string    `json:"removed_reason,omitempty"`
}

// AuditType classifies registry mutations in the audit log.
type AuditType string

const (
	AuditTypeAdd          AuditType = "add"
	AuditTypeRemove       AuditType = "remove"
	AuditTypePeriodUpdate AuditType = "period_update"
)

// AuditRecord is one immutable entry of the registry change history.
type AuditRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	Type        AuditType `json:"type"`
	Description string    `json:"description"`
	Instrument  string    `json:"instrument"`
	Reason      string    `json:"reason,omitempty"`
	OldPeriod   int       `json:"old_period,omitempty"`
	NewPeriod   int       `json:"new_period,omitempty"`
}

// Stats summarizes the registry state.
type Stats struct {
	Total           int         `json:"total"`
	Active          int         `json:"active"`
	Inactive        int         `json:"inactive"`
	TierCounts      map[int]int `json:"tier_counts"`
	TotalAllocation float64     `json:"total_allocation"`
	LastUpdated     time.Time   `json:"last_updated"`
}

// registryState is the persisted shape of the registry.
type registryState struct {
	Instruments []Instrument  `json:"instruments"`
	Audit       []AuditRecord `json:"audit"`
	LastUpdated time.Time     `json:"last_updated"`
}

// store persists the registry state atomically.
type store interface {
	Load() (*registryState, error)
	Save(state *registryState) error
}
