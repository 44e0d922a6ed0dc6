// Package diplomacy advances foreign relations each turn: relationship
// drift, treaty upkeep, espionage, world incidents, and treaty proposals.
package diplomacy

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/politburo/internal/state"
)

// Attractors are the relationship scores each bloc drifts toward.
var Attractors = map[state.Bloc]int{
	state.BlocSocialist:  40,
	state.BlocNonAligned: 0,
	state.BlocCapitalist: -30,
	state.BlocRival:      -60,
}

const (
	driftRate      = 0.10 // share of the gap to the attractor closed per turn
	noiseAmplitude = 2.0
	noiseFrequency = 0.35
)

// driftNoise yields a smooth bounded term per country and turn.
type driftNoise struct {
	field opensimplex.Noise
}

func newDriftNoise(seed int64) driftNoise {
	return driftNoise{field: opensimplex.NewNormalized(seed)}
}

// at returns a value in [-noiseAmplitude, noiseAmplitude].
func (n driftNoise) at(countryIdx, turn int) float64 {
	total, amp, norm := 0.0, 1.0, 0.0
	freq := noiseFrequency
	for i := 0; i < 2; i++ {
		total += n.field.Eval2(float64(countryIdx)*7.3*freq, float64(turn)*freq) * amp
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	v := (total/norm)*2 - 1
	return state.ClampFloat(v*noiseAmplitude, -noiseAmplitude, noiseAmplitude)
}

// DriftAmount computes a country's relationship change for this turn
// given a noise sample already bounded to [-2, 2].
func DriftAmount(c *state.ForeignCountry, stability int, noise float64) int {
	gap := float64(Attractors[c.Bloc] - c.Relationship)
	d := gap*driftRate +
		float64(stability-50)/25 +
		float64(c.TradeVolume)/25 +
		state.ClampFloat(noise, -noiseAmplitude, noiseAmplitude)
	return int(math.Round(d))
}
