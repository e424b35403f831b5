package reporting

import (
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/quantumtrades/hilo-trend-bot/internal/executor"
	"github.com/quantumtrades/hilo-trend-bot/internal/monitor"
	"github.com/quantumtrades/hilo-trend-bot/internal/portfolio"
)

// PrintStartupBanner renders the runtime parameters as a table on startup.
func PrintStartupBanner(exchangeName string, instruments int, capital, fraction, stopLoss float64, testMode bool) {
	mode := "LIVE"
	if testMode {
		mode = "SIMULATION"
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("HILO TREND BOT")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"🏪 Exchange", exchangeName},
		{"📊 Instruments", fmt.Sprintf("%d", instruments)},
		{"💰 Initial Capital", fmt.Sprintf("$%.2f", capital)},
		{"📈 Per-Operation Fraction", fmt.Sprintf("%.1f%%", fraction*100)},
		{"🛑 Stop Loss", fmt.Sprintf("%.1f%%", stopLoss*100)},
		{"🔧 Mode", mode},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 24, Align: text.AlignLeft},
		{Number: 2, WidthMin: 20, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

// PrintSnapshot renders one instrument's per-timeframe trend states.
func PrintSnapshot(s *monitor.Snapshot) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("%s (%s)", s.Instrument, s.Symbol))
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Timeframe", "Period", "State", "Reference", "Streak"})

	for _, tf := range monitor.AllTimeframes {
		res, ok := s.Timeframes[tf]
		if !ok {
			continue
		}
		if res.Degraded {
			t.AppendRow(table.Row{string(tf), res.Period, "⚠️ degraded", "-", "-"})
			continue
		}
		t.AppendRow(table.Row{
			string(tf),
			res.Period,
			stateLabel(res),
			fmt.Sprintf("$%.4f", res.Reference),
			res.Streak,
		})
	}

	t.Render()
	fmt.Println()
}

// PrintPositions renders the open position book.
func PrintPositions(positions map[string]executor.Position) {
	if len(positions) == 0 {
		fmt.Println("📭 No open positions")
		return
	}

	names := make([]string, 0, len(positions))
	for name := range positions {
		names = append(names, name)
	}
	sort.Strings(names)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("OPEN POSITIONS")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Instrument", "Side", "Entry", "Current", "Quantity", "Unrealized"})

	for _, name := range names {
		pos := positions[name]
		t.AppendRow(table.Row{
			name,
			string(pos.Side),
			fmt.Sprintf("$%.4f", pos.EntryPrice),
			fmt.Sprintf("$%.4f", pos.CurrentPrice),
			fmt.Sprintf("%.6f", pos.Quantity),
			fmt.Sprintf("$%+.2f", pos.UnrealizedPnL),
		})
	}

	t.Render()
	fmt.Println()
}

// PrintPerformance renders the realized performance summary.
func PrintPerformance(stats executor.PerformanceStats) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("PERFORMANCE")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"🔄 Total Orders", stats.TotalOrders},
		{"✅ Winning Closes", stats.Winning},
		{"❌ Losing Closes", stats.Losing},
		{"🎯 Hit Rate", fmt.Sprintf("%.2f%%", stats.HitRate)},
		{"📊 Avg P&L", fmt.Sprintf("%+.2f%%", stats.AvgPnLPercent)},
		{"💰 Total P&L", fmt.Sprintf("$%+.2f", stats.TotalPnL)},
	})

	t.Render()
	fmt.Println()
}

// PrintRegistry renders the instrument registry summary.
func PrintRegistry(stats portfolio.Stats, instruments []portfolio.Instrument) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("REGISTRY (%d active / %d total)", stats.Active, stats.Total))
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Instrument", "Symbol", "Daily Period", "Tier", "Allocation"})

	for _, inst := range instruments {
		t.AppendRow(table.Row{
			inst.Name,
			inst.Symbol,
			inst.DailyPeriod,
			inst.Tier,
			fmt.Sprintf("%.0f%%", inst.Allocation*100),
		})
	}

	t.Render()
	fmt.Println()
}

func stateLabel(res monitor.TimeframeResult) string {
	switch {
	case res.State > 0:
		return "🟢 BULLISH"
	case res.State < 0:
		return "🔴 BEARISH"
	}
	return "⚪ NEUTRAL"
}
