package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// IDMConfig groups Intelligent Driver Model parameters.
type IDMConfig struct {
	A     float64 // maximum acceleration
	B     float64 // comfortable deceleration (positive)
	T     float64 // desired time headway
	S0    float64 // minimum standstill gap
	Delta float64 // free-road acceleration exponent
}

// MOBILConfig groups lane-change parameters.
type MOBILConfig struct {
	SafeBrakeLimit     float64 // max braking imposed on the new follower (positive)
	IncentiveThreshold float64 // minimum own acceleration gain to change lane
	ChangeProbability  float64 // per-tick probability that a vehicle considers a change
	GuardZone          float64 // vehicles closer than this to the ego never change lane
}

// SpawnConfig groups population management parameters.
type SpawnConfig struct {
	ProbabilityPerLane float64 // per-lane spawn probability when the gap allows
	MinGap             float64 // free gap below the visible horizon required to spawn
	DespawnMargin      float64 // slack around the corridor before a vehicle is culled
}

// FogConfig groups visibility parameters.
type FogConfig struct {
	MaxLevel            int             // fog levels are 0..MaxLevel
	MaxRangeByLevel     map[int]float64 // sensing range per level, non-increasing
	ResampleProbability float64         // per-tick probability of drawing a new level
}

// SensorConfig groups range sensor parameters.
type SensorConfig struct {
	Beams              int     // number of beams (L)
	HalfSpread         float64 // beams span [-HalfSpread, +HalfSpread] radians
	StepSize           float64 // ray-march increment
	BaseNoiseScale     float64 // stddev of multiplicative noise at fog 0
	FogNoiseMultiplier float64 // noise growth per fog level
}

// PopulationConfig groups initial traffic parameters.
type PopulationConfig struct {
	MinVehicles  int // random vehicles at reset, lower bound (inclusive)
	MaxVehicles  int // random vehicles at reset, upper bound (inclusive)
	SlowVehicles int // slow vehicles placed just ahead of the ego
}

// Config is the immutable parameter bundle for one simulation.
type Config struct {
	NumLanes       int
	CorridorLength float64
	BodyLength     float64
	MinSpeed       float64
	MaxSpeed       float64
	SpeedStep      float64 // ego speed change per accelerate/decelerate action
	MaxSteps       int

	IDM        IDMConfig
	MOBIL      MOBILConfig
	Spawn      SpawnConfig
	Fog        FogConfig
	Sensor     SensorConfig
	Population PopulationConfig
}

// DefaultFogDecay is the per-level range attenuation used by FogRanges.
const DefaultFogDecay = 0.6

// FogRanges builds a max-range table base·decay^level for levels 0..maxLevel.
func FogRanges(base, decay float64, maxLevel int) map[int]float64 {
	ranges := make(map[int]float64, maxLevel+1)
	for level := 0; level <= maxLevel; level++ {
		ranges[level] = base * math.Pow(decay, float64(level))
	}
	return ranges
}

// DefaultConfig returns the standard foggy two-lane corridor.
func DefaultConfig() Config {
	const corridor = 40.0
	return Config{
		NumLanes:       2,
		CorridorLength: corridor,
		BodyLength:     1.0,
		MinSpeed:       1.0,
		MaxSpeed:       5.0,
		SpeedStep:      1.0,
		MaxSteps:       400,
		IDM:            IDMConfig{A: 1.2, B: 2.0, T: 1.0, S0: 1.0, Delta: 4},
		MOBIL: MOBILConfig{
			SafeBrakeLimit:     3.0,
			IncentiveThreshold: 0.3,
			ChangeProbability:  0.2,
			GuardZone:          3.0,
		},
		Spawn: SpawnConfig{ProbabilityPerLane: 0.2, MinGap: 5.0, DespawnMargin: 5.0},
		Fog: FogConfig{
			MaxLevel:            2,
			MaxRangeByLevel:     FogRanges(corridor, DefaultFogDecay, 2),
			ResampleProbability: 0.2,
		},
		Sensor: SensorConfig{
			Beams:              9,
			HalfSpread:         math.Pi / 4,
			StepSize:           0.5,
			BaseNoiseScale:     0.02,
			FogNoiseMultiplier: 0.03,
		},
		Population: PopulationConfig{MinVehicles: 5, MaxVehicles: 9, SlowVehicles: 3},
	}
}

// MaxRange returns the sensing range for a fog level. Validate guarantees
// every level in [0, Fog.MaxLevel] is present.
func (c *Config) MaxRange(level int) float64 {
	return c.Fog.MaxRangeByLevel[level]
}

// VisibleHorizon is the furthest position at which traffic can be seen.
func (c *Config) VisibleHorizon(level int) float64 {
	return math.Min(c.CorridorLength, c.MaxRange(level))
}

// Validate checks the configuration. Every returned error wraps ErrConfiguration.
func (c *Config) Validate() error {
	if c.NumLanes < 1 {
		return configErr("num_lanes must be >= 1, got %d", c.NumLanes)
	}
	positive := []namedValue{
		{"corridor_length", c.CorridorLength},
		{"body_length", c.BodyLength},
		{"speed_step", c.SpeedStep},
		{"idm.a", c.IDM.A},
		{"idm.b", c.IDM.B},
		{"idm.delta", c.IDM.Delta},
		{"sensor.step_size", c.Sensor.StepSize},
		{"spawn.despawn_margin", c.Spawn.DespawnMargin},
	}
	for _, nv := range positive {
		if err := validateFinitePositive(nv.name, nv.val); err != nil {
			return err
		}
	}
	nonNegative := []namedValue{
		{"min_speed", c.MinSpeed},
		{"idm.t", c.IDM.T},
		{"idm.s0", c.IDM.S0},
		{"mobil.safe_brake_limit", c.MOBIL.SafeBrakeLimit},
		{"mobil.guard_zone", c.MOBIL.GuardZone},
		{"spawn.min_gap", c.Spawn.MinGap},
		{"sensor.half_spread", c.Sensor.HalfSpread},
		{"sensor.base_noise_scale", c.Sensor.BaseNoiseScale},
		{"sensor.fog_noise_multiplier", c.Sensor.FogNoiseMultiplier},
	}
	for _, nv := range nonNegative {
		if err := validateFiniteNonNegative(nv.name, nv.val); err != nil {
			return err
		}
	}
	if math.IsNaN(c.MOBIL.IncentiveThreshold) || math.IsInf(c.MOBIL.IncentiveThreshold, 0) {
		return configErr("mobil.incentive_threshold must be a finite number, got %f", c.MOBIL.IncentiveThreshold)
	}
	if math.IsNaN(c.MaxSpeed) || c.MaxSpeed < c.MinSpeed+1 {
		return configErr("max_speed must be at least min_speed+1 (%f), got %f", c.MinSpeed+1, c.MaxSpeed)
	}
	if worst := worstCaseDeceleration(c); !isFinite(worst) {
		return configErr("idm parameters overflow: worst-case acceleration magnitude is %f (reduce idm.delta or raise idm.a*idm.b)", worst)
	}
	probabilities := []namedValue{
		{"mobil.change_probability", c.MOBIL.ChangeProbability},
		{"spawn.probability_per_lane", c.Spawn.ProbabilityPerLane},
		{"fog.resample_probability", c.Fog.ResampleProbability},
	}
	for _, nv := range probabilities {
		if math.IsNaN(nv.val) || nv.val < 0 || nv.val > 1 {
			return configErr("%s must be in [0, 1], got %f", nv.name, nv.val)
		}
	}
	if c.Fog.MaxLevel < 0 {
		return configErr("fog.max_level must be non-negative, got %d", c.Fog.MaxLevel)
	}
	prev := math.Inf(1)
	for level := 0; level <= c.Fog.MaxLevel; level++ {
		r, ok := c.Fog.MaxRangeByLevel[level]
		if !ok {
			return configErr("fog.max_range_by_level has no entry for reachable level %d", level)
		}
		if err := validateFinitePositive(fmt.Sprintf("fog.max_range_by_level[%d]", level), r); err != nil {
			return err
		}
		if r > prev {
			return configErr("fog.max_range_by_level must be non-increasing: level %d range %f exceeds %f", level, r, prev)
		}
		prev = r
	}
	if c.Sensor.Beams < 1 {
		return configErr("sensor.beams must be >= 1, got %d", c.Sensor.Beams)
	}
	if c.Population.MinVehicles < 0 || c.Population.MaxVehicles < c.Population.MinVehicles {
		return configErr("population bounds must satisfy 0 <= min <= max, got [%d, %d]",
			c.Population.MinVehicles, c.Population.MaxVehicles)
	}
	if c.Population.SlowVehicles < 0 {
		return configErr("population.slow_vehicles must be non-negative, got %d", c.Population.SlowVehicles)
	}
	if c.MaxSteps < 1 {
		return configErr("max_steps must be >= 1, got %d", c.MaxSteps)
	}
	if c.Spawn.ProbabilityPerLane == 0 {
		logrus.Warnf("spawn.probability_per_lane is 0; traffic will only drain")
	}
	return nil
}

type namedValue struct {
	name string
	val  float64
}

func configErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return configErr("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return configErr("%s must be positive, got %f", name, val)
	}
	return nil
}

func validateFiniteNonNegative(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return configErr("%s must be a finite number, got %f", name, val)
	}
	if val < 0 {
		return configErr("%s must be non-negative, got %f", name, val)
	}
	return nil
}
