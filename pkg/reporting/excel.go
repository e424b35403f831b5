package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/quantumtrades/hilo-trend-bot/internal/executor"
)

// WriteHistoryXLSX writes the order history to an Excel workbook with an
// Orders sheet and a Summary sheet.
func WriteHistoryXLSX(records []executor.OrderRecord, stats executor.PerformanceStats, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const ordersSheet = "Orders"
	const summarySheet = "Summary"

	fx.SetSheetName(fx.GetSheetName(0), ordersSheet)
	fx.NewSheet(summarySheet)

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	headers := []string{"ID", "Timestamp", "Instrument", "Type", "Side", "Price", "Quantity", "Value", "P&L", "P&L %", "Simulated", "Reason"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(ordersSheet, cell, h)
		fx.SetCellStyle(ordersSheet, cell, cell, headerStyle)
	}

	for row, rec := range records {
		values := []interface{}{
			rec.ID,
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			rec.Instrument,
			string(rec.Type),
			string(rec.Side),
			rec.Price,
			rec.Quantity,
			rec.Value,
			rec.PnL,
			rec.PnLPercent,
			rec.Simulated,
			rec.Reason,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			fx.SetCellValue(ordersSheet, cell, v)
		}
	}

	fx.SetColWidth(ordersSheet, "A", "A", 24)
	fx.SetColWidth(ordersSheet, "B", "B", 20)
	fx.SetColWidth(ordersSheet, "L", "L", 50)

	summary := [][]interface{}{
		{"Total Orders", stats.TotalOrders},
		{"Winning Closes", stats.Winning},
		{"Losing Closes", stats.Losing},
		{"Hit Rate %", stats.HitRate},
		{"Avg P&L %", stats.AvgPnLPercent},
		{"Total P&L $", stats.TotalPnL},
	}
	for row, pair := range summary {
		keyCell, _ := excelize.CoordinatesToCellName(1, row+1)
		valCell, _ := excelize.CoordinatesToCellName(2, row+1)
		fx.SetCellValue(summarySheet, keyCell, pair[0])
		fx.SetCellValue(summarySheet, valCell, pair[1])
		fx.SetCellStyle(summarySheet, keyCell, keyCell, headerStyle)
	}
	fx.SetColWidth(summarySheet, "A", "A", 18)

	return fx.SaveAs(path)
}
