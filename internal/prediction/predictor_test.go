package prediction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumtrades/hilo-trend-bot/internal/monitor"
)

func sampleFeatures() monitor.FeatureVector {
	return monitor.FeatureVector{
		{Timeframe: monitor.Timeframe15m, State: 1, Streak: 4},
		{Timeframe: monitor.Timeframe30m, State: -1, Streak: 2},
		{Timeframe: monitor.Timeframe1h, State: 0, Streak: 0},
	}
}

// TestHTTPPredictor_Predict tests the request layout and response parsing
func TestHTTPPredictor_Predict(t *testing.T) {
	var received map[string]map[string]int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]float64{"probability": 0.82})
	}))
	defer server.Close()

	predictor := NewHTTPPredictor(server.URL, time.Second)
	probability, err := predictor.Predict(context.Background(), sampleFeatures())
	require.NoError(t, err)
	assert.Equal(t, 0.82, probability)

	features := received["features"]
	assert.Equal(t, 1, features["15m_state"])
	assert.Equal(t, 4, features["15m_streak"])
	assert.Equal(t, -1, features["30m_state"])
	assert.Equal(t, 0, features["1h_state"])
}

// TestHTTPPredictor_ServerError tests error propagation on non-200 responses
func TestHTTPPredictor_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	predictor := NewHTTPPredictor(server.URL, time.Second)
	_, err := predictor.Predict(context.Background(), sampleFeatures())
	assert.Error(t, err)
}

// TestHTTPPredictor_OutOfRangeProbability tests rejection of nonsense model output
func TestHTTPPredictor_OutOfRangeProbability(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]float64{"probability": 1.7})
	}))
	defer server.Close()

	predictor := NewHTTPPredictor(server.URL, time.Second)
	_, err := predictor.Predict(context.Background(), sampleFeatures())
	assert.Error(t, err)
}

// TestHTTPPredictor_Unreachable tests the degradation path when the model is down
func TestHTTPPredictor_Unreachable(t *testing.T) {
	predictor := NewHTTPPredictor("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := predictor.Predict(context.Background(), sampleFeatures())
	assert.Error(t, err)
}
