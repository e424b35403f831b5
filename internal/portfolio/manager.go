package portfolio

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Bounds are the active-count invariants of the registry: the manager
// never lets count(active) leave [Min, Max].
type Bounds struct {
	Min int
	Max int
}

// Logger is the subset of the file logger the manager uses.
type Logger interface {
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
}

// Manager is the audited catalog of tradable instruments. Add, Remove and
// UpdatePeriod are the only sanctioned writers; every successful mutation
// appends an audit record and persists before returning true.
type Manager struct {
	mu     sync.RWMutex
	bounds Bounds
	state  *registryState
	store  store
	log    Logger
}

// NewManager creates a registry manager over the given store. Loading an
// empty store yields an empty registry.
func NewManager(bounds Bounds, st store, log Logger) (*Manager, error) {
	state, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	if state == nil {
		state = &registryState{}
	}
	return &Manager{
		bounds: bounds,
		state:  state,
		store:  st,
		log:    log,
	}, nil
}

// Active returns the active instruments, in catalog order.
func (m *Manager) Active() []Instrument {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Instrument, 0, len(m.state.Instruments))
	for _, inst := range m.state.Instruments {
		if inst.Active {
			out = append(out, inst)
		}
	}
	return out
}

// Get returns the instrument with the given name, active or not.
func (m *Manager) Get(name string) (Instrument, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.indexOf(name)
	if idx < 0 {
		return Instrument{}, false
	}
	return m.state.Instruments[idx], true
}

// Add appends a new instrument. It returns false, appending nothing, if
// the instrument already exists or the active count is at the maximum.
func (m *Manager) Add(inst Instrument, reason string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(inst.Name) >= 0 {
		m.log.Warning("registry: %s already exists", inst.Name)
		return false
	}
	if m.activeCount() >= m.bounds.Max {
		m.log.Warning("registry: at maximum of %d active instruments", m.bounds.Max)
		return false
	}

	inst.Active = true
	inst.AddedAt = time.Now()
	inst.AddedReason = reason

	m.state.Instruments = append(m.state.Instruments, inst)
	m.appendAudit(AuditRecord{
		Type:        AuditTypeAdd,
		Description: fmt.Sprintf("added %s (period %d, tier %d)", inst.Name, inst.DailyPeriod, inst.Tier),
		Instrument:  inst.Name,
		Reason:      reason,
	})

	if err := m.save(); err != nil {
		m.state.Instruments = m.state.Instruments[:len(m.state.Instruments)-1]
		m.state.Audit = m.state.Audit[:len(m.state.Audit)-1]
		m.log.Warning("registry: failed to persist add of %s: %v", inst.Name, err)
		return false
	}

	m.log.Info("registry: added %s", inst.Name)
	return true
}

// Remove deactivates an instrument. It returns false, appending nothing,
// if the instrument is missing, already inactive, or removing it would
// drop the active count below the minimum. The entry stays in the catalog.
func (m *Manager) Remove(name, reason string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(name)
	if idx < 0 {
		m.log.Warning("registry: %s not found", name)
		return false
	}
	inst := &m.state.Instruments[idx]
	if !inst.Active {
		m.log.Warning("registry: %s already inactive", name)
		return false
	}
	if m.activeCount() <= m.bounds.Min {
		m.log.Warning("registry: at minimum of %d active instruments", m.bounds.Min)
		return false
	}

	inst.Active = false
	inst.RemovedAt = time.Now()
	inst.RemovedReason = reason

	m.appendAudit(AuditRecord{
		Type:        AuditTypeRemove,
		Description: fmt.Sprintf("removed %s: %s", name, reason),
		Instrument:  inst.Name,
		Reason:      reason,
	})

	if err := m.save(); err != nil {
		inst.Active = true
		inst.RemovedAt = time.Time{}
		inst.RemovedReason = ""
		m.state.Audit = m.state.Audit[:len(m.state.Audit)-1]
		m.log.Warning("registry: failed to persist removal of %s: %v", name, err)
		return false
	}

	m.log.Info("registry: removed %s", name)
	return true
}

// UpdatePeriod changes an instrument's daily HiLo period. Updating to the
// current period is a no-op returning false.
func (m *Manager) UpdatePeriod(name string, period int, reason string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if period <= 0 {
		m.log.Warning("registry: invalid period %d for %s", period, name)
		return false
	}

	idx := m.indexOf(name)
	if idx < 0 {
		m.log.Warning("registry: %s not found", name)
		return false
	}
	inst := &m.state.Instruments[idx]
	if inst.DailyPeriod == period {
		m.log.Warning("registry: %s already uses period %d", name, period)
		return false
	}

	old := inst.DailyPeriod
	inst.DailyPeriod = period

	m.appendAudit(AuditRecord{
		Type:        AuditTypePeriodUpdate,
		Description: fmt.Sprintf("%s: period %d → %d", name, old, period),
		Instrument:  inst.Name,
		Reason:      reason,
		OldPeriod:   old,
		NewPeriod:   period,
	})

	if err := m.save(); err != nil {
		inst.DailyPeriod = old
		m.state.Audit = m.state.Audit[:len(m.state.Audit)-1]
		m.log.Warning("registry: failed to persist period update of %s: %v", name, err)
		return false
	}

	m.log.Info("registry: %s period updated to %d", name, period)
	return true
}

// AuditLog returns the most recent audit records, newest last.
func (m *Manager) AuditLog(limit int) []AuditRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	audit := m.state.Audit
	if limit > 0 && len(audit) > limit {
		audit = audit[len(audit)-limit:]
	}
	out := make([]AuditRecord, len(audit))
	copy(out, audit)
	return out
}

// Stats summarizes the catalog.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{
		Total:       len(m.state.Instruments),
		TierCounts:  make(map[int]int),
		LastUpdated: m.state.LastUpdated,
	}
	for _, inst := range m.state.Instruments {
		if !inst.Active {
			continue
		}
		stats.Active++
		stats.TierCounts[inst.Tier]++
		stats.TotalAllocation += inst.Allocation
	}
	stats.Inactive = stats.Total - stats.Active
	return stats
}

func (m *Manager) indexOf(name string) int {
	for i, inst := range m.state.Instruments {
		if strings.EqualFold(inst.Name, name) {
			return i
		}
	}
	return -1
}

func (m *Manager) activeCount() int {
	count := 0
	for _, inst := range m.state.Instruments {
		if inst.Active {
			count++
		}
	}
	return count
}

func (m *Manager) appendAudit(record AuditRecord) {
	record.Timestamp = time.Now()
	m.state.Audit = append(m.state.Audit, record)
}

func (m *Manager) save() error {
	m.state.LastUpdated = time.Now()
	return m.store.Save(m.state)
}
