package sim

import "math/rand"

// FogState is the current visibility tier.
type FogState struct {
	Level int
}

// sampleFog draws a level uniformly from 0..MaxLevel.
func sampleFog(cfg *Config, rng *rand.Rand) FogState {
	return FogState{Level: rng.Intn(cfg.Fog.MaxLevel + 1)}
}

// Resample redraws the level with probability ResampleProbability. The new
// level may equal the old one. Returns true when a redraw happened.
func (f *FogState) Resample(cfg *Config, rng *rand.Rand) bool {
	if rng.Float64() >= cfg.Fog.ResampleProbability {
		return false
	}
	*f = sampleFog(cfg, rng)
	return true
}
