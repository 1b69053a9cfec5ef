package experience

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flapcast/flapcast/internal/testutil"
)

func TestRecorderFlush(t *testing.T) {
	dir := t.TempDir()
	r := NewRecorder(dir, testutil.NopLogger())
	r.Begin("run-abc")

	r.Collect(Record{Tick: 1, Y: 300, Velocity: 0.25, Action: "fall", Score: 0})
	r.Collect(Record{Tick: 2, Y: 293.75, Velocity: -6.25, Action: "flap", Score: 0,
		Energies: []float64{0, -0.125}, Probs: []float64{0.47, 0.53}})
	require.Equal(t, 2, r.Len())

	path, err := r.Flush()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run-abc.jsonl"), path)
	assert.Zero(t, r.Len(), "flush clears the buffer")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, records, 2)
	assert.Equal(t, "fall", records[0].Action)
	assert.Equal(t, "flap", records[1].Action)
	assert.Equal(t, []float64{0, -0.125}, records[1].Energies)
}

func TestRecorderEmptyFlushIsNoop(t *testing.T) {
	dir := t.TempDir()
	r := NewRecorder(dir, testutil.NopLogger())
	r.Begin("empty-run")

	path, err := r.Flush()
	require.NoError(t, err)
	assert.Empty(t, path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecorderBeginResetsBuffer(t *testing.T) {
	r := NewRecorder(t.TempDir(), testutil.NopLogger())
	r.Begin("first")
	r.Collect(Record{Tick: 1})
	r.Begin("second")
	assert.Zero(t, r.Len())
}

func TestRecorderGeneratesEpisodeID(t *testing.T) {
	dir := t.TempDir()
	r := NewRecorder(dir, testutil.NopLogger())
	r.Collect(Record{Tick: 1, Action: "fall"})

	path, err := r.Flush()
	require.NoError(t, err)
	assert.NotEmpty(t, path)
	assert.FileExists(t, path)
}
