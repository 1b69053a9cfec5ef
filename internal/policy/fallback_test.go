package policy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flapcast/flapcast/internal/sampler"
	"github.com/flapcast/flapcast/internal/testutil"
)

// stubProvider returns a canned prediction after an optional delay
type stubProvider struct {
	prediction *Prediction
	err        error
	delay      time.Duration
}

func (s *stubProvider) Predict(ctx context.Context, _ sampler.BirdState, _ []sampler.Pipe) (*Prediction, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.prediction, s.err
}

func TestFallbackPrefersFastRemote(t *testing.T) {
	remote := &stubProvider{prediction: &Prediction{Source: "remote"}}
	local := &stubProvider{prediction: &Prediction{Source: "local"}}
	fb := NewFallback(remote, local, 100*time.Millisecond, testutil.NopLogger())

	p, err := fb.Predict(context.Background(), sampler.BirdState{Y: 300}, nil)
	require.NoError(t, err)
	assert.Equal(t, "remote", p.Source)
}

func TestFallbackUsesLocalWhenRemoteIsSlow(t *testing.T) {
	remote := &stubProvider{prediction: &Prediction{Source: "remote"}, delay: time.Second}
	local := &stubProvider{prediction: &Prediction{Source: "local"}}
	fb := NewFallback(remote, local, 20*time.Millisecond, testutil.NopLogger())

	p, err := fb.Predict(context.Background(), sampler.BirdState{Y: 300}, nil)
	require.NoError(t, err)
	assert.Equal(t, "local", p.Source)
}

func TestFallbackUsesLocalWhenRemoteErrors(t *testing.T) {
	remote := &stubProvider{err: errors.New("connection refused")}
	local := &stubProvider{prediction: &Prediction{Source: "local"}}
	fb := NewFallback(remote, local, 5*time.Second, testutil.NopLogger())

	start := time.Now()
	p, err := fb.Predict(context.Background(), sampler.BirdState{Y: 300}, nil)
	require.NoError(t, err)
	assert.Equal(t, "local", p.Source)
	assert.Less(t, time.Since(start), time.Second, "a failed remote must not burn the whole window")
}

func TestFallbackSurfacesLocalError(t *testing.T) {
	remote := &stubProvider{err: errors.New("unreachable")}
	localErr := errors.New("bad cloud size")
	local := &stubProvider{err: localErr}
	fb := NewFallback(remote, local, 10*time.Millisecond, testutil.NopLogger())

	_, err := fb.Predict(context.Background(), sampler.BirdState{Y: 300}, nil)
	assert.ErrorIs(t, err, localErr)
}
