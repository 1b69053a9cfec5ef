package policy

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/flapcast/flapcast/internal/sampler"
)

// Fallback races the remote backend against the local approximation. The
// remote gets a fixed window; if it answers in time its prediction wins,
// otherwise the local result proceeds silently. A slow or missing backend
// is absence, not an error.
type Fallback struct {
	remote  Provider
	local   Provider
	timeout time.Duration
	logger  zerolog.Logger
}

// NewFallback wires the two providers together. timeout bounds how long a
// frame is willing to wait for the remote answer.
func NewFallback(remote, local Provider, timeout time.Duration, logger zerolog.Logger) *Fallback {
	return &Fallback{
		remote:  remote,
		local:   local,
		timeout: timeout,
		logger:  logger.With().Str("component", "fallback_provider").Logger(),
	}
}

// Predict implements Provider
func (f *Fallback) Predict(ctx context.Context, bird sampler.BirdState, pipes []sampler.Pipe) (*Prediction, error) {
	remoteCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	remoteCh := make(chan *Prediction, 1)
	go func() {
		p, err := f.remote.Predict(remoteCtx, bird, pipes)
		if err != nil {
			f.logger.Debug().Err(err).Msg("Remote prediction unavailable, local result will be used")
			p = nil
		}
		remoteCh <- p
	}()

	local, localErr := f.local.Predict(ctx, bird, pipes)

	select {
	case p := <-remoteCh:
		if p != nil {
			return p, nil
		}
	case <-remoteCtx.Done():
	}
	if localErr != nil {
		return nil, localErr
	}
	return local, nil
}
