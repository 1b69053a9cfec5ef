package sampler

import "github.com/flapcast/flapcast/internal/common"

// HeightBins is the number of vertical buckets the heatmap discretizes the
// screen into.
const HeightBins = 20

// Heatmap aggregation window: the near future is what the player can still
// react to, and paths beyond the first twenty add noise without adding
// shape.
const (
	heatmapPaths  = 20
	heatmapFrames = 5
)

// Heatmap folds a trajectory cloud into a per-height-bin occupancy
// distribution. At most heatmapPaths trajectories contribute; each counts
// heatmapFrames positions starting from the current one, then the bins are
// normalized. All zeros stays all zeros.
func Heatmap(start BirdState, trajectories []Trajectory, ph Physics) []float64 {
	if len(trajectories) > heatmapPaths {
		trajectories = trajectories[:heatmapPaths]
	}
	bins := make([]float64, HeightBins)
	var total float64
	count := func(y float64) {
		idx := common.ClampInt(int(y/ph.ScreenHeight*HeightBins), 0, HeightBins-1)
		bins[idx]++
		total++
	}
	for _, t := range trajectories {
		count(start.Y)
		frames := len(t.States)
		if frames > heatmapFrames-1 {
			frames = heatmapFrames - 1
		}
		for _, s := range t.States[:frames] {
			count(s.Y)
		}
	}
	if total > 0 {
		for i := range bins {
			bins[i] /= total
		}
	}
	return bins
}
