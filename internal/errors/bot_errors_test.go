package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBotError_SentinelMatching tests errors.Is through the typed constructors
func TestBotError_SentinelMatching(t *testing.T) {
	err := NewDuplicatePositionError("Bitcoin")
	assert.True(t, errors.Is(err, ErrDuplicatePosition))
	assert.False(t, errors.Is(err, ErrNoOpenPosition))

	err = NewNoOpenPositionError("Bitcoin", "close")
	assert.True(t, errors.Is(err, ErrNoOpenPosition))

	err = NewInsufficientDataError("indicator", 5, 20)
	assert.True(t, errors.Is(err, ErrInsufficientData))
	assert.Contains(t, err.Error(), "5")
	assert.Contains(t, err.Error(), "20")
}

// TestBotError_WrapPreservesUnderlying tests unwrapping through WrapError
func TestBotError_WrapPreservesUnderlying(t *testing.T) {
	underlying := fmt.Errorf("connection reset")
	err := WrapError(underlying, ErrorCategoryNetwork, "exchange", "getKlines")

	require.Error(t, err)
	assert.True(t, errors.Is(err, underlying))
	assert.Contains(t, err.Error(), "exchange")
}

// TestBotError_Categories tests the fatal and degradable classifications
func TestBotError_Categories(t *testing.T) {
	fatal := NewConfigurationError("config", "validate", "bad threshold")
	var botErr *BotError
	require.True(t, errors.As(fatal, &botErr))
	assert.True(t, botErr.IsFatal())
	assert.False(t, botErr.IsDegradable())

	degradable := NewEstimatorError("criteria", "predict", fmt.Errorf("timeout"))
	require.True(t, errors.As(degradable, &botErr))
	assert.False(t, botErr.IsFatal())
	assert.True(t, botErr.IsDegradable())
}
