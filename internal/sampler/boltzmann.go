package sampler

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var (
	// ErrNoCandidates is returned when sampling is attempted on an empty set
	ErrNoCandidates = errors.New("no candidates to sample")
	// ErrInvalidTemperature is returned for a non-positive temperature; the
	// zero-temperature argmin limit is deliberately unsupported
	ErrInvalidTemperature = errors.New("temperature must be positive")
)

// Sampler draws candidates from the Boltzmann distribution induced by the
// energy function: p(c) proportional to exp(-energy(c)/temperature). This is
// the one primitive both the trajectory cloud and the autoplay policy are
// built on.
type Sampler struct {
	weights Weights
	physics Physics
}

// NewSampler validates the weights and builds a sampler. Temperature must be
// strictly positive; zero would need an argmin special case and is rejected
// at configuration time instead.
func NewSampler(w Weights, ph Physics) (*Sampler, error) {
	if w.Temperature <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTemperature, w.Temperature)
	}
	return &Sampler{weights: w, physics: ph}, nil
}

// Weights returns the weights the sampler was built with
func (s *Sampler) Weights() Weights {
	return s.weights
}

// Energies scores every candidate against the given pipes
func (s *Sampler) Energies(cands []Candidate, pipes []Pipe) []float64 {
	energies := make([]float64, len(cands))
	for i, c := range cands {
		energies[i] = Energy(c.State, pipes, s.weights, s.physics)
	}
	return energies
}

// Probabilities computes the normalized Boltzmann distribution over the
// candidate energies. The minimum energy is subtracted before exponentiating
// so a large collision penalty cannot underflow every weight to zero.
func (s *Sampler) Probabilities(energies []float64) ([]float64, error) {
	if len(energies) == 0 {
		return nil, ErrNoCandidates
	}
	minEnergy := energies[0]
	for _, e := range energies[1:] {
		if e < minEnergy {
			minEnergy = e
		}
	}

	probs := make([]float64, len(energies))
	var sum float64
	for i, e := range energies {
		probs[i] = math.Exp(-(e - minEnergy) / s.weights.Temperature)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs, nil
}

// Sample draws one candidate according to its Boltzmann probability using an
// inverse-CDF draw against rng. It returns the chosen index alongside the
// energies and probabilities so callers can record them without rescoring.
func (s *Sampler) Sample(cands []Candidate, pipes []Pipe, rng *rand.Rand) (int, []float64, []float64, error) {
	if len(cands) == 0 {
		return 0, nil, nil, ErrNoCandidates
	}
	energies := s.Energies(cands, pipes)
	probs, err := s.Probabilities(energies)
	if err != nil {
		return 0, nil, nil, err
	}

	threshold := rng.Float64()
	var cumulative float64
	for i, p := range probs {
		cumulative += p
		if threshold <= cumulative {
			return i, energies, probs, nil
		}
	}
	// Floating-point slack can leave the cumulative sum a hair under 1.
	return len(cands) - 1, energies, probs, nil
}
