package executor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFileStore_RoundTrip tests save and reload of the full state
func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "executor_state.json")
	store := NewFileStore(path)

	state := &State{
		Positions: map[string]*Position{
			"Bitcoin": {
				Instrument:      "Bitcoin",
				Side:            SideLong,
				EntryPrice:      50000,
				Quantity:        0.002,
				EntryValue:      100,
				EntryTime:       time.Now(),
				StopReference:   50000,
				StopLossPercent: 0.25,
			},
		},
		History: []OrderRecord{
			{ID: 1, Instrument: "Bitcoin", Type: OrderTypeOpen, Side: SideLong, Price: 50000},
		},
	}

	require.NoError(t, store.Save(state))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Contains(t, loaded.Positions, "Bitcoin")
	assert.Equal(t, 50000.0, loaded.Positions["Bitcoin"].EntryPrice)
	require.Len(t, loaded.History, 1)
	assert.Equal(t, OrderTypeOpen, loaded.History[0].Type)

	// The write is atomic: no leftover temp file.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// TestFileStore_MissingFile tests that a fresh deployment starts with empty state
func TestFileStore_MissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope.json"))

	state, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Empty(t, state.Positions)
	assert.Empty(t, state.History)
}
