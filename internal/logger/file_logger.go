package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger is the file logger for the trend engine's trading activity. One
// log file per day; all components of a run share the same logger.
type Logger struct {
	name    string
	logDir  string
	logFile *os.File
	logger  *log.Logger
	mu      sync.Mutex
}

// LogLevel represents different types of log entries
type LogLevel string

const (
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARN"
	LogLevelError   LogLevel = "ERROR"
	LogLevelTrade   LogLevel = "TRADE"
	LogLevelStatus  LogLevel = "STATUS"
)

// NewLogger creates a file logger writing to logDir/<name>_<date>.log.
func NewLogger(logDir, name string) (*Logger, error) {
	if logDir == "" {
		logDir = "logs"
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.log", name, time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(logDir, filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := &Logger{
		name:    name,
		logDir:  logDir,
		logFile: file,
		logger:  log.New(file, "", 0),
	}

	l.writeSessionHeader()
	return l, nil
}

func (l *Logger) writeSessionHeader() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logger.Printf(`
================================================================================
🚀 HILO TREND SESSION STARTED: %s
Started: %s
================================================================================`,
		l.name, time.Now().Format("2006-01-02 15:04:05"))
}

// Log writes a formatted log entry with the specified level
func (l *Logger) Log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] [%s] %s", timestamp, level, message)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LogLevelInfo, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(LogLevelWarning, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LogLevelError, format, args...)
}

// Trade logs an order execution
func (l *Logger) Trade(format string, args ...interface{}) {
	l.Log(LogLevelTrade, format, args...)
}

// Status logs market status information
func (l *Logger) Status(format string, args ...interface{}) {
	l.Log(LogLevelStatus, format, args...)
}

// LogOrderExecution logs the full detail of an executed order.
func (l *Logger) LogOrderExecution(side, instrument string, price, quantity, value float64, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	l.logger.Printf(`
[%s] [TRADE] ==================== %s EXECUTED ====================
🪙 Instrument: %s
💰 Price: $%.2f
📦 Quantity: %.8f
💵 Value: $%.2f
📋 Reason: %s
=============================================================`,
		timestamp, side, instrument, price, quantity, value, reason)
}

// LogPositionClose logs a completed round trip with its realized result.
func (l *Logger) LogPositionClose(instrument string, entryPrice, exitPrice, pnl, pnlPercent float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	emoji := "📈"
	if pnl < 0 {
		emoji = "📉"
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	l.logger.Printf(`
[%s] [TRADE] ==================== POSITION CLOSED ====================
🪙 Instrument: %s
🎯 Entry: $%.2f | Exit: $%.2f
%s P&L: $%+.2f (%+.2f%%)
=============================================================`,
		timestamp, instrument, entryPrice, exitPrice, emoji, pnl, pnlPercent)
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		l.logger.Printf(`
================================================================================
🛑 SESSION ENDED: %s
================================================================================
`, time.Now().Format("2006-01-02 15:04:05"))
		return l.logFile.Close()
	}
	return nil
}
