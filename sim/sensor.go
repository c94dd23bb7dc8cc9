package sim

import (
	"math"
	"math/rand"
)

// EgoPose locates the sensor origin: the centre of the ego lane at position 0.
type EgoPose struct {
	Lane int
}

// SensorModel is a fan of ray-marched range beams limited by fog.
type SensorModel struct {
	cfg    *Config
	angles []float64
}

// NewSensorModel precomputes beam angles evenly spaced over
// [-HalfSpread, +HalfSpread]. A single beam points at -HalfSpread.
func NewSensorModel(cfg *Config) *SensorModel {
	n := cfg.Sensor.Beams
	angles := make([]float64, n)
	lo := -cfg.Sensor.HalfSpread
	if n == 1 {
		angles[0] = lo
	} else {
		span := 2 * cfg.Sensor.HalfSpread
		for i := range angles {
			angles[i] = lo + span*float64(i)/float64(n-1)
		}
	}
	return &SensorModel{cfg: cfg, angles: angles}
}

// Angles returns the beam angles in radians, 0 = straight ahead.
func (s *SensorModel) Angles() []float64 {
	return s.angles
}

// Sense returns one noisy reading per beam, each in [0, MaxRange(fogLevel)].
func (s *SensorModel) Sense(pose EgoPose, fogLevel int, vehicles []*Vehicle, rng *rand.Rand) []float64 {
	readings := s.Raycast(pose, fogLevel, vehicles)
	s.perturb(readings, fogLevel, rng)
	return readings
}

// Raycast returns the noise-free beam readings. A beam that hits nothing,
// or leaves the corridor sideways first, reads MaxRange(fogLevel).
func (s *SensorModel) Raycast(pose EgoPose, fogLevel int, vehicles []*Vehicle) []float64 {
	maxRange := s.cfg.MaxRange(fogLevel)
	step := s.cfg.Sensor.StepSize
	width := float64(s.cfg.NumLanes)
	originX := float64(pose.Lane) + 0.5

	readings := make([]float64, len(s.angles))
	for i, angle := range s.angles {
		readings[i] = maxRange
		dx, dy := math.Sin(angle), math.Cos(angle)
	march:
		for t := 0.0; t < maxRange; {
			t += step
			x := originX + dx*t
			y := dy * t
			if x < 0 || x >= width {
				break
			}
			if y < 0 {
				continue
			}
			for _, v := range vehicles {
				lane := float64(v.Lane)
				if lane <= x && x < lane+1 && v.Position <= y && y < v.Position+s.cfg.BodyLength {
					readings[i] = math.Min(t, maxRange)
					break march
				}
			}
		}
	}
	return readings
}

// perturb applies multiplicative Gaussian noise whose scale grows with fog,
// then clips to the fog range.
func (s *SensorModel) perturb(readings []float64, fogLevel int, rng *rand.Rand) {
	maxRange := s.cfg.MaxRange(fogLevel)
	sigma := s.cfg.Sensor.BaseNoiseScale * (1 + s.cfg.Sensor.FogNoiseMultiplier*float64(fogLevel))
	for i, r := range readings {
		readings[i] = clamp(r*(1+rng.NormFloat64()*sigma), 0, maxRange)
	}
}
