package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/quantumtrades/hilo-trend-bot/internal/monitor"
)

// Predictor estimates the probability of a trend reversal from the
// multi-timeframe feature vector. The model itself is an external
// collaborator; an unavailable predictor degrades criterion 2, it never
// blocks the other criteria.
type Predictor interface {
	// Predict returns a reversal probability in [0,1].
	Predict(ctx context.Context, features monitor.FeatureVector) (float64, error)

	// GetName returns the predictor name for logging
	GetName() string
}

// HTTPPredictor calls a model served over HTTP. The request carries the
// feature vector keyed by timeframe, matching the layout the training
// pipeline exports.
type HTTPPredictor struct {
	endpoint string
	client   *http.Client
}

// NewHTTPPredictor creates a predictor client for the given endpoint.
func NewHTTPPredictor(endpoint string, timeout time.Duration) *HTTPPredictor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPPredictor{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *HTTPPredictor) GetName() string {
	return "http"
}

type predictRequest struct {
	Features map[string]int `json:"features"`
}

type predictResponse struct {
	Probability float64 `json:"probability"`
}

func (p *HTTPPredictor) Predict(ctx context.Context, features monitor.FeatureVector) (float64, error) {
	if p.endpoint == "" {
		return 0, fmt.Errorf("predictor endpoint not configured")
	}

	req := predictRequest{Features: make(map[string]int, 2*len(features))}
	for _, f := range features {
		req.Features[string(f.Timeframe)+"_state"] = f.State
		req.Features[string(f.Timeframe)+"_streak"] = f.Streak
	}

	body, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal features: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("predictor call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("predictor returned status %d", resp.StatusCode)
	}

	var result predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode predictor response: %w", err)
	}

	if result.Probability < 0 || result.Probability > 1 {
		return 0, fmt.Errorf("predictor returned probability %f outside [0,1]", result.Probability)
	}

	return result.Probability, nil
}
