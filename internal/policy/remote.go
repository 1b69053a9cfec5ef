package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/flapcast/flapcast/internal/api"
	"github.com/flapcast/flapcast/internal/sampler"
)

// Remote queries an external prediction backend over HTTP. It is optional
// equipment: the fallback provider treats its absence or latency as a
// non-event, never an error the game sees.
type Remote struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewRemote builds a client for the backend at baseURL (no trailing slash
// needed). The http client carries no timeout of its own; callers bound each
// request through the context.
func NewRemote(baseURL string, logger zerolog.Logger) *Remote {
	return &Remote{
		baseURL: baseURL,
		client:  &http.Client{},
		logger:  logger.With().Str("component", "remote_provider").Logger(),
	}
}

// Predict implements Provider by POSTing the snapshot to /predict
func (r *Remote) Predict(ctx context.Context, bird sampler.BirdState, pipes []sampler.Pipe) (*Prediction, error) {
	body, err := json.Marshal(api.RequestFromSampler(bird, pipes))
	if err != nil {
		return nil, fmt.Errorf("encoding predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying remote backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote backend returned status %d", resp.StatusCode)
	}

	var decoded api.PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding predict response: %w", err)
	}
	if decoded.Status != api.StatusSuccess {
		return nil, fmt.Errorf("remote backend failed: %s", decoded.Message)
	}

	r.logger.Debug().
		Dur("latency", time.Since(start)).
		Str("method", decoded.Method).
		Int("trajectories", len(decoded.Trajectories)).
		Msg("Remote prediction received")

	return fromWire(decoded), nil
}

// fromWire rebuilds a Prediction from the wire shape. Remote trajectories
// carry positions only; probabilities stay empty.
func fromWire(resp api.PredictResponse) *Prediction {
	trajectories := make([]sampler.Trajectory, len(resp.Trajectories))
	for i, path := range resp.Trajectories {
		states := make([]sampler.BirdState, 0, len(path))
		// The first point is the current position, not a future state.
		for step, y := range path {
			if step == 0 {
				continue
			}
			states = append(states, sampler.BirdState{Y: y, Step: step})
		}
		trajectories[i] = sampler.Trajectory{States: states}
	}
	return &Prediction{
		Trajectories: trajectories,
		Heatmap:      resp.Heatmap,
		Action:       api.ParseAction(resp.RecommendedAction),
		Source:       resp.Method,
	}
}
