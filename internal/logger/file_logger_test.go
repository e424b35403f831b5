package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLogFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name+"_"+time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// TestLogger_WritesLeveledEntries tests that each level lands in the daily file
func TestLogger_WritesLeveledEntries(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLogger(dir, "test")
	require.NoError(t, err)

	log.Info("starting %s", "engine")
	log.Warning("feed %s degraded", "6h")
	log.Error("save failed: %v", os.ErrPermission)
	log.Status("tick complete")
	require.NoError(t, log.Close())

	content := readLogFile(t, dir, "test")
	assert.Contains(t, content, "INFO")
	assert.Contains(t, content, "starting engine")
	assert.Contains(t, content, "WARN")
	assert.Contains(t, content, "feed 6h degraded")
	assert.Contains(t, content, "ERROR")
	assert.Contains(t, content, "STATUS")
}

// TestLogger_OrderExecution tests the trade-specific formatter
func TestLogger_OrderExecution(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLogger(dir, "trades")
	require.NoError(t, err)

	log.LogOrderExecution("LONG", "Bitcoin", 50000, 0.002, 100, "daily bullish confirmed")
	log.LogPositionClose("Bitcoin", 50000, 55000, 10, 10)
	require.NoError(t, log.Close())

	content := readLogFile(t, dir, "trades")
	assert.Contains(t, content, "TRADE")
	assert.Contains(t, content, "Bitcoin")
	assert.Contains(t, content, "daily bullish confirmed")
}
