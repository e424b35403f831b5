package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	// Critical errors that should stop the bot
	ErrorCategoryFatal         ErrorCategory = "FATAL"
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"

	// Errors that degrade a single instrument or timeframe
	ErrorCategoryData      ErrorCategory = "DATA"
	ErrorCategoryNetwork   ErrorCategory = "NETWORK"
	ErrorCategoryTimeout   ErrorCategory = "TIMEOUT"
	ErrorCategoryEstimator ErrorCategory = "ESTIMATOR"

	// Invariant violations surfaced to the caller
	ErrorCategoryPosition   ErrorCategory = "POSITION"
	ErrorCategoryRegistry   ErrorCategory = "REGISTRY"
	ErrorCategoryValidation ErrorCategory = "VALIDATION"
)

// Sentinel kinds for the controller and indicator invariants. Callers match
// these with errors.Is.
var (
	ErrDuplicatePosition = errors.New("position already open for instrument")
	ErrNoOpenPosition    = errors.New("no open position for instrument")
	ErrInsufficientData  = errors.New("insufficient data for indicator period")
)

// BotError is a categorized error with component and operation context.
type BotError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
}

func (e *BotError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

func (e *BotError) Unwrap() error {
	return e.Underlying
}

// IsFatal returns whether this error should stop the bot
func (e *BotError) IsFatal() bool {
	return e.Category == ErrorCategoryFatal || e.Category == ErrorCategoryConfiguration
}

// IsDegradable reports whether the error should be absorbed as degraded
// data instead of aborting the batch.
func (e *BotError) IsDegradable() bool {
	switch e.Category {
	case ErrorCategoryData, ErrorCategoryNetwork, ErrorCategoryTimeout, ErrorCategoryEstimator:
		return true
	}
	return false
}

// NewBotError creates a new categorized bot error
func NewBotError(category ErrorCategory, component, operation, message string) *BotError {
	return &BotError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
	}
}

// WrapError wraps an existing error with bot error context
func WrapError(err error, category ErrorCategory, component, operation string) *BotError {
	if err == nil {
		return nil
	}
	return &BotError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
	}
}

// Common error constructors

func NewValidationError(component, operation, message string) *BotError {
	return NewBotError(ErrorCategoryValidation, component, operation, message)
}

func NewConfigurationError(component, operation, message string) *BotError {
	return NewBotError(ErrorCategoryConfiguration, component, operation, message)
}

func NewDataError(component, operation string, err error) *BotError {
	return WrapError(err, ErrorCategoryData, component, operation)
}

func NewEstimatorError(component, operation string, err error) *BotError {
	return WrapError(err, ErrorCategoryEstimator, component, operation)
}

// NewInsufficientDataError reports a series shorter than the indicator
// period. It unwraps to ErrInsufficientData.
func NewInsufficientDataError(component string, have, need int) *BotError {
	return &BotError{
		Category:   ErrorCategoryData,
		Component:  component,
		Operation:  "compute",
		Message:    fmt.Sprintf("series has %d bars, need %d", have, need),
		Underlying: ErrInsufficientData,
	}
}

// NewDuplicatePositionError reports an open attempt against an instrument
// that already holds an open position. It unwraps to ErrDuplicatePosition.
func NewDuplicatePositionError(instrument string) *BotError {
	return &BotError{
		Category:   ErrorCategoryPosition,
		Component:  "executor",
		Operation:  "open",
		Message:    instrument,
		Underlying: ErrDuplicatePosition,
	}
}

// NewNoOpenPositionError reports a close or mark against an instrument with
// no open position. It unwraps to ErrNoOpenPosition.
func NewNoOpenPositionError(instrument, operation string) *BotError {
	return &BotError{
		Category:   ErrorCategoryPosition,
		Component:  "executor",
		Operation:  operation,
		Message:    instrument,
		Underlying: ErrNoOpenPosition,
	}
}
