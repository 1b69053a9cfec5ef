// Package api defines the JSON wire contract of the prediction service,
// shared by the server and the in-game client. The shapes match what the
// browser game already sends and expects.
package api

import "github.com/flapcast/flapcast/internal/sampler"

// BirdScreenX is the bird's fixed horizontal canvas position. Pipes travel
// on the wire in canvas coordinates; the sampler works in bird-relative
// distances.
const BirdScreenX = 150

// Response status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// MethodBoltzmann identifies the local Boltzmann rollout approximation in
// responses, so clients can tell which backend answered.
const MethodBoltzmann = "boltzmann"

// PipePayload is one obstacle in canvas coordinates
type PipePayload struct {
	X         float64 `json:"x"`
	TopHeight float64 `json:"topHeight"`
	BottomY   float64 `json:"bottomY"`
}

// PredictRequest is the per-tick snapshot the game uploads
type PredictRequest struct {
	BirdY    float64       `json:"birdY"`
	Velocity float64       `json:"velocity"`
	Pipes    []PipePayload `json:"pipes"`
}

// PredictResponse carries the trajectory cloud, the height heatmap and the
// recommended action back to the game
type PredictResponse struct {
	Status            string      `json:"status"`
	Message           string      `json:"message,omitempty"`
	Trajectories      [][]float64 `json:"trajectories,omitempty"`
	Heatmap           []float64   `json:"heatmap,omitempty"`
	RecommendedAction string      `json:"recommendedAction,omitempty"`
	Method            string      `json:"method"`
}

// BirdState converts the request into a sampler state
func (r PredictRequest) BirdState() sampler.BirdState {
	return sampler.BirdState{Y: r.BirdY, Velocity: r.Velocity}
}

// SamplerPipes converts wire pipes into bird-relative sampler pipes
func (r PredictRequest) SamplerPipes() []sampler.Pipe {
	pipes := make([]sampler.Pipe, len(r.Pipes))
	for i, p := range r.Pipes {
		pipes[i] = sampler.Pipe{
			X:         p.X - BirdScreenX,
			GapTop:    p.TopHeight,
			GapBottom: p.BottomY,
		}
	}
	return pipes
}

// RequestFromSampler builds the wire request for a local snapshot
func RequestFromSampler(bird sampler.BirdState, pipes []sampler.Pipe) PredictRequest {
	payload := make([]PipePayload, len(pipes))
	for i, p := range pipes {
		payload[i] = PipePayload{
			X:         p.X + BirdScreenX,
			TopHeight: p.GapTop,
			BottomY:   p.GapBottom,
		}
	}
	return PredictRequest{BirdY: bird.Y, Velocity: bird.Velocity, Pipes: payload}
}

// TrajectoryPayload flattens a trajectory cloud into per-path Y positions,
// each path prefixed with the current position and truncated to maxLen
// points, with at most maxPaths paths. These caps keep the response the
// size the browser game already handles.
func TrajectoryPayload(startY float64, trajectories []sampler.Trajectory, maxPaths, maxLen int) [][]float64 {
	if len(trajectories) > maxPaths {
		trajectories = trajectories[:maxPaths]
	}
	out := make([][]float64, len(trajectories))
	for i, t := range trajectories {
		path := make([]float64, 0, maxLen)
		path = append(path, startY)
		for _, s := range t.States {
			if len(path) >= maxLen {
				break
			}
			path = append(path, s.Y)
		}
		out[i] = path
	}
	return out
}

// ActionString renders an action for the wire
func ActionString(a sampler.Action) string {
	if a == sampler.ActionFlap {
		return "flap"
	}
	return "fall"
}

// ParseAction reads an action off the wire; anything unknown falls back to
// the natural state
func ParseAction(s string) sampler.Action {
	if s == "flap" {
		return sampler.ActionFlap
	}
	return sampler.ActionFall
}
