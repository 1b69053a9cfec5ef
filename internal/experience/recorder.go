// Package experience records per-tick autoplay decisions so sessions can be
// replayed or analyzed offline. One JSON-lines file per episode.
package experience

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Record captures one tick's decision: the state the policy saw, what it
// chose, and the sampling internals behind the choice.
type Record struct {
	Tick     int       `json:"tick"`
	Y        float64   `json:"y"`
	Velocity float64   `json:"velocity"`
	Action   string    `json:"action"`
	Energies []float64 `json:"energies,omitempty"`
	Probs    []float64 `json:"probs,omitempty"`
	Score    int       `json:"score"`
}

// Recorder buffers records in memory and flushes them to one file per
// episode. Safe for concurrent use, though the frame loop is the only
// expected writer.
type Recorder struct {
	dir       string
	logger    zerolog.Logger
	mu        sync.Mutex
	episodeID string
	records   []Record
}

// NewRecorder creates a recorder writing episodes under dir
func NewRecorder(dir string, logger zerolog.Logger) *Recorder {
	return &Recorder{
		dir:    dir,
		logger: logger.With().Str("component", "recorder").Logger(),
	}
}

// Begin starts a new episode, discarding any unflushed records. runID names
// the output file; empty means a fresh UUID.
func (r *Recorder) Begin(runID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if runID == "" {
		runID = uuid.NewString()
	}
	r.episodeID = runID
	r.records = r.records[:0]
}

// Collect appends one tick's record to the current episode
func (r *Recorder) Collect(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// Len returns the number of buffered records
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Flush writes the buffered episode to disk as JSON lines and clears the
// buffer. Returns the file path written. Flushing an empty episode is a
// no-op.
func (r *Recorder) Flush() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.records) == 0 {
		return "", nil
	}
	if r.episodeID == "" {
		r.episodeID = uuid.NewString()
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating episode dir: %w", err)
	}

	path := filepath.Join(r.dir, r.episodeID+".jsonl")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating episode file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, rec := range r.records {
		if err := enc.Encode(rec); err != nil {
			return "", fmt.Errorf("encoding record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("flushing episode file: %w", err)
	}

	r.logger.Info().
		Str("episode_id", r.episodeID).
		Int("records", len(r.records)).
		Str("path", path).
		Msg("Episode flushed")

	r.records = r.records[:0]
	return path, nil
}
