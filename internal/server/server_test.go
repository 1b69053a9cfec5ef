package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flapcast/flapcast/internal/api"
	"github.com/flapcast/flapcast/internal/policy"
	"github.com/flapcast/flapcast/internal/sampler"
	"github.com/flapcast/flapcast/internal/testutil"
)

// stubProvider lets handler tests script provider behavior
type stubProvider struct {
	prediction *policy.Prediction
	err        error
	panic      bool
}

func (s *stubProvider) Predict(_ context.Context, _ sampler.BirdState, _ []sampler.Pipe) (*policy.Prediction, error) {
	if s.panic {
		panic("provider exploded")
	}
	return s.prediction, s.err
}

func defaultPrediction() *policy.Prediction {
	trajectories := make([]sampler.Trajectory, 30)
	for i := range trajectories {
		states := make([]sampler.BirdState, 15)
		for j := range states {
			states[j] = sampler.BirdState{Y: 300 + float64(i+j), Step: j + 1}
		}
		trajectories[i] = sampler.Trajectory{States: states}
	}
	heatmap := make([]float64, sampler.HeightBins)
	heatmap[10] = 1
	return &policy.Prediction{
		Trajectories: trajectories,
		Heatmap:      heatmap,
		Action:       sampler.ActionFlap,
		Source:       "local",
	}
}

func newTestServer(p policy.Provider) *httptest.Server {
	return httptest.NewServer(New(p, "*", testutil.NopLogger()).Handler())
}

func predictBody(t *testing.T) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(api.PredictRequest{
		BirdY:    300,
		Velocity: 2.5,
		Pipes:    []api.PipePayload{{X: 400, TopHeight: 200, BottomY: 400}},
	})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestPredictEndpoint(t *testing.T) {
	srv := newTestServer(&stubProvider{prediction: defaultPrediction()})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/predict", "application/json", predictBody(t))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var decoded api.PredictResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))

	assert.Equal(t, api.StatusSuccess, decoded.Status)
	assert.Equal(t, api.MethodBoltzmann, decoded.Method)
	assert.Equal(t, "flap", decoded.RecommendedAction)
	assert.Len(t, decoded.Heatmap, sampler.HeightBins)

	// The cloud is capped to what the game renders.
	require.Len(t, decoded.Trajectories, 20)
	for _, path := range decoded.Trajectories {
		assert.LessOrEqual(t, len(path), 10)
		assert.Equal(t, 300.0, path[0], "paths start at the current position")
	}
}

func TestPredictEndpointErrors(t *testing.T) {
	tests := []struct {
		name       string
		provider   policy.Provider
		method     string
		body       string
		wantStatus int
	}{
		{"malformed json", &stubProvider{prediction: defaultPrediction()}, http.MethodPost, "{not json", http.StatusBadRequest},
		{"get not allowed", &stubProvider{prediction: defaultPrediction()}, http.MethodGet, "", http.StatusMethodNotAllowed},
		{"provider failure", &stubProvider{err: errors.New("cloud failed")}, http.MethodPost, `{"birdY":300,"velocity":0,"pipes":[]}`, http.StatusInternalServerError},
		{"provider panic", &stubProvider{panic: true}, http.MethodPost, `{"birdY":300,"velocity":0,"pipes":[]}`, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(tt.provider)
			defer srv.Close()

			req, err := http.NewRequest(tt.method, srv.URL+"/predict", strings.NewReader(tt.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var decoded api.PredictResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
			assert.Equal(t, api.StatusError, decoded.Status)
			assert.NotEmpty(t, decoded.Message)
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&stubProvider{prediction: defaultPrediction()})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, "healthy", decoded["status"])
	assert.Contains(t, decoded, "predictions")
}

func TestPreflight(t *testing.T) {
	srv := newTestServer(&stubProvider{prediction: defaultPrediction()})
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/predict", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}

func TestSetProviderSwapsBackend(t *testing.T) {
	faller := defaultPrediction()
	faller.Action = sampler.ActionFall

	s := New(&stubProvider{prediction: defaultPrediction()}, "*", testutil.NopLogger())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	decide := func() string {
		resp, err := http.Post(srv.URL+"/predict", "application/json", predictBody(t))
		require.NoError(t, err)
		defer resp.Body.Close()

		var decoded api.PredictResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
		return decoded.RecommendedAction
	}

	assert.Equal(t, "flap", decide())

	s.SetProvider(&stubProvider{prediction: faller})
	assert.Equal(t, "fall", decide())
}

func TestStreamEndpoint(t *testing.T) {
	srv := newTestServer(&stubProvider{prediction: defaultPrediction()})
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Two frames over one connection.
	for i := 0; i < 2; i++ {
		require.NoError(t, conn.WriteJSON(api.PredictRequest{BirdY: 300, Velocity: 1}))

		var resp api.PredictResponse
		require.NoError(t, conn.ReadJSON(&resp))
		assert.Equal(t, api.StatusSuccess, resp.Status)
		assert.NotEmpty(t, resp.Trajectories)
	}
}

func TestPredictWithLocalProvider(t *testing.T) {
	// Full stack: real sampler, rollout, autoplay, provider and server.
	ph := sampler.DefaultPhysics()
	gen := sampler.NewGenerator(ph, 1.0, 1)
	smp := testutil.NewTestSampler(t)
	roll, err := sampler.NewRollout(gen, smp, ph, 15)
	require.NoError(t, err)
	auto := policy.NewAutoplay(gen, roll, smp, ph, 4)
	local := policy.NewLocal(roll, auto, ph, 30, testutil.NewTestRNG(13))

	srv := newTestServer(local)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/predict", "application/json", predictBody(t))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var decoded api.PredictResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))

	assert.Equal(t, api.StatusSuccess, decoded.Status)
	require.Len(t, decoded.Trajectories, 20)

	var sum float64
	for _, b := range decoded.Heatmap {
		sum += b
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}
