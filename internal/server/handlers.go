package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/flapcast/flapcast/internal/api"
	"github.com/flapcast/flapcast/internal/monitoring"
)

// Response shaping limits, matching what the browser game renders
const (
	maxResponsePaths = 20
	maxResponseLen   = 10
)

// handlePredict serves one frame's prediction
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, api.PredictResponse{
			Status:  api.StatusError,
			Message: "predict requires POST",
			Method:  "fallback",
		})
		return
	}

	var req api.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, api.PredictResponse{
			Status:  api.StatusError,
			Message: "malformed request: " + err.Error(),
			Method:  "fallback",
		})
		return
	}

	resp, status := s.predict(r.Context(), req)
	writeJSON(w, status, resp)
}

// predict runs the provider and shapes the wire response
func (s *Server) predict(ctx context.Context, req api.PredictRequest) (api.PredictResponse, int) {
	start := time.Now()
	p, err := s.currentProvider().Predict(ctx, req.BirdState(), req.SamplerPipes())
	s.monitor.Observe(time.Since(start))
	if err != nil {
		s.logger.Error().Err(err).Msg("Prediction failed")
		return api.PredictResponse{
			Status:  api.StatusError,
			Message: err.Error(),
			Method:  "fallback",
		}, http.StatusInternalServerError
	}

	return api.PredictResponse{
		Status:            api.StatusSuccess,
		Trajectories:      api.TrajectoryPayload(req.BirdY, p.Trajectories, maxResponsePaths, maxResponseLen),
		Heatmap:           p.Heatmap,
		RecommendedAction: api.ActionString(p.Action),
		Method:            api.MethodBoltzmann,
	}, http.StatusOK
}

// healthResponse reports liveness plus aggregate prediction timings
type healthResponse struct {
	Status      string           `json:"status"`
	Message     string           `json:"message"`
	Predictions monitoring.Stats `json:"predictions"`
}

// handleHealth is the liveness probe
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "healthy",
		Message:     "flapcast prediction server running",
		Predictions: s.monitor.Snapshot(),
	})
}
