package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/quantumtrades/hilo-trend-bot/internal/bot"
	"github.com/quantumtrades/hilo-trend-bot/internal/config"
	"github.com/quantumtrades/hilo-trend-bot/internal/criteria"
	"github.com/quantumtrades/hilo-trend-bot/internal/exchange"
	"github.com/quantumtrades/hilo-trend-bot/internal/executor"
	"github.com/quantumtrades/hilo-trend-bot/internal/logger"
	"github.com/quantumtrades/hilo-trend-bot/internal/monitor"
	"github.com/quantumtrades/hilo-trend-bot/internal/monitoring"
	"github.com/quantumtrades/hilo-trend-bot/internal/notifications"
	"github.com/quantumtrades/hilo-trend-bot/internal/portfolio"
	"github.com/quantumtrades/hilo-trend-bot/internal/prediction"
	"github.com/quantumtrades/hilo-trend-bot/pkg/reporting"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	botLog, err := logger.NewLogger(cfg.LogDir, "hilo_bot")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer botLog.Close()

	provider := exchange.NewBybitProvider(exchange.BybitConfig{
		APIKey:    cfg.Exchange.APIKey,
		APISecret: cfg.Exchange.Secret,
		Category:  cfg.Exchange.Category,
		Testnet:   cfg.Exchange.Testnet,
	})

	var predictor prediction.Predictor
	if cfg.Predictor.Endpoint != "" {
		predictor = prediction.NewHTTPPredictor(cfg.Predictor.Endpoint, cfg.Predictor.Timeout)
		botLog.Info("predictor endpoint: %s", cfg.Predictor.Endpoint)
	} else {
		botLog.Warning("no predictor endpoint configured, ML criterion will degrade")
	}

	var notifier notifications.Notifier = notifications.NopNotifier{}
	if cfg.Notifications.TelegramToken != "" && cfg.Notifications.TelegramChatID != "" {
		notifier = notifications.NewTelegramNotifier(cfg.Notifications.TelegramToken, cfg.Notifications.TelegramChatID)
		botLog.Info("telegram notifications enabled")
	}

	registry, err := portfolio.NewManager(
		portfolio.Bounds{Min: cfg.Portfolio.MinInstruments, Max: cfg.Portfolio.MaxInstruments},
		portfolio.NewFileStore(cfg.Portfolio.ConfigPath),
		botLog,
	)
	if err != nil {
		log.Fatalf("Failed to load instrument registry: %v", err)
	}
	seedRegistry(registry, botLog)

	exec, err := executor.NewExecutor(
		executor.Config{
			InitialCapital:       cfg.Execution.InitialCapital,
			PerOperationFraction: cfg.Execution.PerOperationFraction,
			StopLossPercent:      cfg.Criteria.StopLossPercent,
			TestMode:             cfg.Execution.TestMode,
		},
		executor.NewFileStore(filepath.Join(cfg.Execution.DataDir, "executor_state.json")),
		notifier,
		botLog,
	)
	if err != nil {
		log.Fatalf("Failed to initialize executor: %v", err)
	}

	location, err := time.LoadLocation(cfg.Criteria.DailyCheckLocation)
	if err != nil {
		log.Fatalf("Failed to load location %q: %v", cfg.Criteria.DailyCheckLocation, err)
	}

	engine := criteria.NewEngine(criteria.Config{
		DailyCheckEnabled:    cfg.Criteria.DailyCheckEnabled,
		MLEnabled:            cfg.Criteria.MLEnabled,
		StopLossEnabled:      cfg.Criteria.StopLossEnabled,
		ProbabilityThreshold: cfg.Criteria.ProbabilityThreshold,
		MinAligned:           cfg.Criteria.MinAligned,
		StopLossPercent:      cfg.Criteria.StopLossPercent,
		DailyCheckTime:       cfg.Criteria.DailyCheckTime,
		DailyCheckTolerance:  cfg.Criteria.DailyCheckTolerance,
		Location:             location,
	}, predictor, botLog)

	mon := monitor.NewMonitor(provider, botLog, cfg.FetchTimeout)

	metricsServer := monitoring.StartMetricsServer(cfg.Monitoring.PrometheusPort)
	botLog.Info("prometheus metrics on :%d/metrics", cfg.Monitoring.PrometheusPort)

	active := registry.Active()
	reporting.PrintStartupBanner(
		provider.GetName(),
		len(active),
		cfg.Execution.InitialCapital,
		cfg.Execution.PerOperationFraction,
		cfg.Criteria.StopLossPercent,
		cfg.Execution.TestMode,
	)
	reporting.PrintRegistry(registry.Stats(), active)

	b := bot.New(registry, mon, engine, exec, notifier, botLog, cfg.TickInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		botLog.Info("received signal %v, shutting down", sig)
		cancel()
	}()

	if err := b.Run(ctx); err != nil && err != context.Canceled {
		botLog.Error("bot stopped with error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		botLog.Warning("metrics server shutdown: %v", err)
	}

	exportHistory(exec, cfg.Execution.DataDir, cfg.Execution.ExportFormat, botLog)

	reporting.PrintPositions(exec.OpenPositions())
	reporting.PrintPerformance(exec.Performance())
	fmt.Println("👋 Shutdown complete")
}

// seedRegistry populates an empty registry with the default watch list.
func seedRegistry(registry *portfolio.Manager, botLog *logger.Logger) {
	if len(registry.Active()) > 0 {
		return
	}

	defaults := []portfolio.Instrument{
		{Name: "Bitcoin", Symbol: "BTCUSDT", SourceID: "bitcoin", DailyPeriod: 3, Tier: 1, Allocation: 0.25},
		{Name: "Ethereum", Symbol: "ETHUSDT", SourceID: "ethereum", DailyPeriod: 45, Tier: 1, Allocation: 0.20},
		{Name: "Binance Coin", Symbol: "BNBUSDT", SourceID: "binancecoin", DailyPeriod: 70, Tier: 1, Allocation: 0.15},
		{Name: "Solana", Symbol: "SOLUSDT", SourceID: "solana", DailyPeriod: 7, Tier: 2, Allocation: 0.10},
		{Name: "Chainlink", Symbol: "LINKUSDT", SourceID: "chainlink", DailyPeriod: 40, Tier: 2, Allocation: 0.10},
		{Name: "Uniswap", Symbol: "UNIUSDT", SourceID: "uniswap", DailyPeriod: 65, Tier: 2, Allocation: 0.08},
		{Name: "Algorand", Symbol: "ALGOUSDT", SourceID: "algorand", DailyPeriod: 40, Tier: 3, Allocation: 0.07},
		{Name: "VeChain", Symbol: "VETUSDT", SourceID: "vechain", DailyPeriod: 25, Tier: 3, Allocation: 0.05},
	}

	botLog.Info("registry empty, seeding %d default instruments", len(defaults))
	for _, inst := range defaults {
		if !registry.Add(inst, "default watch list") {
			botLog.Warning("failed to seed instrument %s", inst.Name)
		}
	}
}

func exportHistory(exec *executor.Executor, dataDir, format string, botLog *logger.Logger) {
	history := exec.History(0)
	if len(history) == 0 {
		return
	}

	path := filepath.Join(dataDir, fmt.Sprintf("orders_%s.%s", time.Now().Format("2006-01-02"), format))
	if err := reporting.WriteHistoryCSV(history, exec.Performance(), path); err != nil {
		botLog.Warning("order history export failed: %v", err)
		return
	}
	botLog.Info("order history exported to %s", path)
}
