package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	boterrors "github.com/quantumtrades/hilo-trend-bot/internal/errors"
)

type Config struct {
	Environment string
	LogDir      string

	Exchange struct {
		APIKey   string
		Secret   string
		Category string
		Testnet  bool
	}

	Criteria struct {
		DailyCheckEnabled bool
		MLEnabled         bool
		StopLossEnabled   bool

		ProbabilityThreshold float64
		MinAligned           int
		StopLossPercent      float64

		DailyCheckTime      string // "HH:MM:SS" in DailyCheckLocation
		DailyCheckTolerance time.Duration
		DailyCheckLocation  string
	}

	Execution struct {
		InitialCapital       float64
		PerOperationFraction float64
		TestMode             bool
		DataDir              string
		ExportFormat         string // "xlsx" or "csv"
	}

	Portfolio struct {
		ConfigPath     string
		MinInstruments int
		MaxInstruments int
	}

	Predictor struct {
		Endpoint string
		Timeout  time.Duration
	}

	Monitoring struct {
		PrometheusPort int
	}

	Notifications struct {
		TelegramToken  string
		TelegramChatID string
	}

	TickInterval time.Duration
	FetchTimeout time.Duration
}

// Load reads the configuration from the environment. Call Validate before
// using the result; configuration errors fail the process at startup, not
// per tick.
func Load() *Config {
	cfg := &Config{
		Environment:  getEnv("ENV", "development"),
		LogDir:       getEnv("LOG_DIR", "logs"),
		TickInterval: getEnvDuration("TICK_INTERVAL", 15*time.Minute),
		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 30*time.Second),
	}

	cfg.Exchange.APIKey = getEnv("BYBIT_API_KEY", "")
	cfg.Exchange.Secret = getEnv("BYBIT_API_SECRET", "")
	cfg.Exchange.Category = getEnv("BYBIT_CATEGORY", "spot")
	cfg.Exchange.Testnet = getEnvBool("BYBIT_TESTNET", false)

	cfg.Criteria.DailyCheckEnabled = getEnvBool("CRITERION_DAILY_ENABLED", true)
	cfg.Criteria.MLEnabled = getEnvBool("CRITERION_ML_ENABLED", true)
	cfg.Criteria.StopLossEnabled = getEnvBool("CRITERION_STOP_LOSS_ENABLED", true)
	cfg.Criteria.ProbabilityThreshold = getEnvFloat("ML_PROBABILITY_THRESHOLD", 0.70)
	cfg.Criteria.MinAligned = getEnvInt("ML_MIN_ALIGNED_TIMEFRAMES", 5)
	cfg.Criteria.StopLossPercent = getEnvFloat("STOP_LOSS_PERCENT", 0.25)
	cfg.Criteria.DailyCheckTime = getEnv("DAILY_CHECK_TIME", "21:00:01")
	cfg.Criteria.DailyCheckTolerance = getEnvDuration("DAILY_CHECK_TOLERANCE", time.Minute)
	cfg.Criteria.DailyCheckLocation = getEnv("DAILY_CHECK_LOCATION", "America/Sao_Paulo")

	cfg.Execution.InitialCapital = getEnvFloat("INITIAL_CAPITAL", 1000.0)
	cfg.Execution.PerOperationFraction = getEnvFloat("PER_OPERATION_FRACTION", 0.10)
	cfg.Execution.TestMode = getEnvBool("TEST_MODE", true)
	cfg.Execution.DataDir = getEnv("DATA_DIR", "data")
	cfg.Execution.ExportFormat = strings.ToLower(getEnv("EXPORT_FORMAT", "xlsx"))

	cfg.Portfolio.ConfigPath = getEnv("PORTFOLIO_CONFIG", "portfolio_config.json")
	cfg.Portfolio.MinInstruments = getEnvInt("MIN_INSTRUMENTS", 5)
	cfg.Portfolio.MaxInstruments = getEnvInt("MAX_INSTRUMENTS", 12)

	cfg.Predictor.Endpoint = getEnv("PREDICTOR_ENDPOINT", "")
	cfg.Predictor.Timeout = getEnvDuration("PREDICTOR_TIMEOUT", 10*time.Second)

	cfg.Monitoring.PrometheusPort = getEnvInt("PROMETHEUS_PORT", 8080)

	cfg.Notifications.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.Notifications.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", "")

	return cfg
}

// Validate fails fast on out-of-range thresholds and malformed settings.
func (c *Config) Validate() error {
	if c.Criteria.ProbabilityThreshold < 0 || c.Criteria.ProbabilityThreshold > 1 {
		return boterrors.NewConfigurationError("config", "validate",
			fmt.Sprintf("ML probability threshold %.2f outside [0,1]", c.Criteria.ProbabilityThreshold))
	}
	if c.Criteria.StopLossPercent <= 0 || c.Criteria.StopLossPercent > 1 {
		return boterrors.NewConfigurationError("config", "validate",
			fmt.Sprintf("stop loss percent %.2f outside (0,1]", c.Criteria.StopLossPercent))
	}
	if c.Criteria.MinAligned < 1 {
		return boterrors.NewConfigurationError("config", "validate",
			fmt.Sprintf("min aligned timeframes %d < 1", c.Criteria.MinAligned))
	}
	if c.Criteria.DailyCheckTolerance <= 0 {
		return boterrors.NewConfigurationError("config", "validate",
			"daily check tolerance must be positive")
	}
	if _, err := time.Parse("15:04:05", c.Criteria.DailyCheckTime); err != nil {
		return boterrors.NewConfigurationError("config", "validate",
			fmt.Sprintf("daily check time %q not HH:MM:SS", c.Criteria.DailyCheckTime))
	}
	if _, err := time.LoadLocation(c.Criteria.DailyCheckLocation); err != nil {
		return boterrors.NewConfigurationError("config", "validate",
			fmt.Sprintf("unknown daily check location %q", c.Criteria.DailyCheckLocation))
	}
	if c.Execution.InitialCapital <= 0 {
		return boterrors.NewConfigurationError("config", "validate",
			"initial capital must be positive")
	}
	if c.Execution.PerOperationFraction <= 0 || c.Execution.PerOperationFraction > 1 {
		return boterrors.NewConfigurationError("config", "validate",
			fmt.Sprintf("per-operation fraction %.2f outside (0,1]", c.Execution.PerOperationFraction))
	}
	if c.Execution.ExportFormat != "xlsx" && c.Execution.ExportFormat != "csv" {
		return boterrors.NewConfigurationError("config", "validate",
			fmt.Sprintf("export format %q is not xlsx or csv", c.Execution.ExportFormat))
	}
	if c.Portfolio.MinInstruments < 0 || c.Portfolio.MaxInstruments < c.Portfolio.MinInstruments {
		return boterrors.NewConfigurationError("config", "validate",
			fmt.Sprintf("instrument bounds min=%d max=%d invalid", c.Portfolio.MinInstruments, c.Portfolio.MaxInstruments))
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
