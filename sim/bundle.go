package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigBundle holds Config overrides loadable from YAML.
// Nil pointer fields mean "not set in YAML" and keep the base value.
type ConfigBundle struct {
	NumLanes       *int     `yaml:"num_lanes"`
	CorridorLength *float64 `yaml:"corridor_length"`
	BodyLength     *float64 `yaml:"body_length"`
	MinSpeed       *float64 `yaml:"min_speed"`
	MaxSpeed       *float64 `yaml:"max_speed"`
	SpeedStep      *float64 `yaml:"speed_step"`
	MaxSteps       *int     `yaml:"max_steps"`

	IDM        IDMBundle        `yaml:"idm"`
	MOBIL      MOBILBundle      `yaml:"mobil"`
	Spawn      SpawnBundle      `yaml:"spawn"`
	Fog        FogBundle        `yaml:"fog"`
	Sensor     SensorBundle     `yaml:"sensor"`
	Population PopulationBundle `yaml:"population"`
}

// IDMBundle overrides IDMConfig.
type IDMBundle struct {
	A     *float64 `yaml:"a"`
	B     *float64 `yaml:"b"`
	T     *float64 `yaml:"t"`
	S0    *float64 `yaml:"s0"`
	Delta *float64 `yaml:"delta"`
}

// MOBILBundle overrides MOBILConfig.
type MOBILBundle struct {
	SafeBrakeLimit     *float64 `yaml:"safe_brake_limit"`
	IncentiveThreshold *float64 `yaml:"incentive_threshold"`
	ChangeProbability  *float64 `yaml:"change_probability"`
	GuardZone          *float64 `yaml:"guard_zone"`
}

// SpawnBundle overrides SpawnConfig.
type SpawnBundle struct {
	ProbabilityPerLane *float64 `yaml:"probability_per_lane"`
	MinGap             *float64 `yaml:"min_gap"`
	DespawnMargin      *float64 `yaml:"despawn_margin"`
}

// FogBundle overrides FogConfig. When MaxRangeByLevel is absent but
// MaxLevel or Decay is set, the range table is regenerated from the
// corridor length.
type FogBundle struct {
	MaxLevel            *int            `yaml:"max_level"`
	Decay               *float64        `yaml:"decay"`
	MaxRangeByLevel     map[int]float64 `yaml:"max_range_by_level"`
	ResampleProbability *float64        `yaml:"resample_probability"`
}

// SensorBundle overrides SensorConfig.
type SensorBundle struct {
	Beams              *int     `yaml:"beams"`
	HalfSpread         *float64 `yaml:"half_spread"`
	StepSize           *float64 `yaml:"step_size"`
	BaseNoiseScale     *float64 `yaml:"base_noise_scale"`
	FogNoiseMultiplier *float64 `yaml:"fog_noise_multiplier"`
}

// PopulationBundle overrides PopulationConfig.
type PopulationBundle struct {
	MinVehicles  *int `yaml:"min_vehicles"`
	MaxVehicles  *int `yaml:"max_vehicles"`
	SlowVehicles *int `yaml:"slow_vehicles"`
}

// LoadConfigBundle reads and parses a YAML config override file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadConfigBundle(path string) (*ConfigBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config bundle: %w", err)
	}
	var bundle ConfigBundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing config bundle: %w", err)
	}
	return &bundle, nil
}

// ApplyTo returns base with every set field of the bundle overridden.
// The result is not validated.
func (b *ConfigBundle) ApplyTo(base Config) Config {
	cfg := base
	setInt(&cfg.NumLanes, b.NumLanes)
	setFloat(&cfg.CorridorLength, b.CorridorLength)
	setFloat(&cfg.BodyLength, b.BodyLength)
	setFloat(&cfg.MinSpeed, b.MinSpeed)
	setFloat(&cfg.MaxSpeed, b.MaxSpeed)
	setFloat(&cfg.SpeedStep, b.SpeedStep)
	setInt(&cfg.MaxSteps, b.MaxSteps)

	setFloat(&cfg.IDM.A, b.IDM.A)
	setFloat(&cfg.IDM.B, b.IDM.B)
	setFloat(&cfg.IDM.T, b.IDM.T)
	setFloat(&cfg.IDM.S0, b.IDM.S0)
	setFloat(&cfg.IDM.Delta, b.IDM.Delta)

	setFloat(&cfg.MOBIL.SafeBrakeLimit, b.MOBIL.SafeBrakeLimit)
	setFloat(&cfg.MOBIL.IncentiveThreshold, b.MOBIL.IncentiveThreshold)
	setFloat(&cfg.MOBIL.ChangeProbability, b.MOBIL.ChangeProbability)
	setFloat(&cfg.MOBIL.GuardZone, b.MOBIL.GuardZone)

	setFloat(&cfg.Spawn.ProbabilityPerLane, b.Spawn.ProbabilityPerLane)
	setFloat(&cfg.Spawn.MinGap, b.Spawn.MinGap)
	setFloat(&cfg.Spawn.DespawnMargin, b.Spawn.DespawnMargin)

	setInt(&cfg.Fog.MaxLevel, b.Fog.MaxLevel)
	setFloat(&cfg.Fog.ResampleProbability, b.Fog.ResampleProbability)
	switch {
	case b.Fog.MaxRangeByLevel != nil:
		cfg.Fog.MaxRangeByLevel = make(map[int]float64, len(b.Fog.MaxRangeByLevel))
		for level, r := range b.Fog.MaxRangeByLevel {
			cfg.Fog.MaxRangeByLevel[level] = r
		}
	case b.Fog.MaxLevel != nil || b.Fog.Decay != nil || b.CorridorLength != nil:
		decay := DefaultFogDecay
		setFloat(&decay, b.Fog.Decay)
		cfg.Fog.MaxRangeByLevel = FogRanges(cfg.CorridorLength, decay, cfg.Fog.MaxLevel)
	}

	setInt(&cfg.Sensor.Beams, b.Sensor.Beams)
	setFloat(&cfg.Sensor.HalfSpread, b.Sensor.HalfSpread)
	setFloat(&cfg.Sensor.StepSize, b.Sensor.StepSize)
	setFloat(&cfg.Sensor.BaseNoiseScale, b.Sensor.BaseNoiseScale)
	setFloat(&cfg.Sensor.FogNoiseMultiplier, b.Sensor.FogNoiseMultiplier)

	setInt(&cfg.Population.MinVehicles, b.Population.MinVehicles)
	setInt(&cfg.Population.MaxVehicles, b.Population.MaxVehicles)
	setInt(&cfg.Population.SlowVehicles, b.Population.SlowVehicles)
	return cfg
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
