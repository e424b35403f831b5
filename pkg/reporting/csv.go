package reporting

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/quantumtrades/hilo-trend-bot/internal/executor"
)

// WriteHistoryCSV writes the order history as CSV. An .xlsx path delegates
// to the Excel writer.
func WriteHistoryCSV(records []executor.OrderRecord, stats executor.PerformanceStats, path string) error {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return WriteHistoryXLSX(records, stats, path)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{
		"ID",
		"Timestamp",
		"Instrument",
		"Type",
		"Side",
		"Price",
		"Quantity",
		"Value",
		"PnL",
		"PnL_%",
		"Simulated",
		"Reason",
	}); err != nil {
		return err
	}

	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.ID),
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			rec.Instrument,
			string(rec.Type),
			string(rec.Side),
			strconv.FormatFloat(rec.Price, 'f', -1, 64),
			strconv.FormatFloat(rec.Quantity, 'f', -1, 64),
			strconv.FormatFloat(rec.Value, 'f', 2, 64),
			strconv.FormatFloat(rec.PnL, 'f', 2, 64),
			strconv.FormatFloat(rec.PnLPercent, 'f', 2, 64),
			strconv.FormatBool(rec.Simulated),
			rec.Reason,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
