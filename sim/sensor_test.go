package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fogdrive/fogdrive/sim/internal/testutil"
)

func TestSensorModel_Angles_EvenlySpacedAndSymmetric(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSensorModel(&cfg)

	angles := s.Angles()
	require.Len(t, angles, 9)
	assert.InDelta(t, -math.Pi/4, angles[0], 1e-12)
	assert.InDelta(t, math.Pi/4, angles[8], 1e-12)
	assert.Equal(t, 0.0, angles[4])
}

func TestSensorModel_SingleBeam_PointsAtLowerEdge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sensor.Beams = 1
	s := NewSensorModel(&cfg)

	assert.Equal(t, []float64{-cfg.Sensor.HalfSpread}, s.Angles())
}

func TestSensorModel_Raycast_EmptyRoad_ReadsMaxRange(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSensorModel(&cfg)

	for level := 0; level <= cfg.Fog.MaxLevel; level++ {
		readings := s.Raycast(EgoPose{Lane: 0}, level, nil)
		for i, r := range readings {
			assert.Equal(t, cfg.MaxRange(level), r, "fog %d beam %d", level, i)
		}
	}
}

func TestSensorModel_Raycast_CentreBeamHitsVehicleAhead(t *testing.T) {
	// GIVEN a vehicle 10 units ahead in the ego lane
	cfg := DefaultConfig()
	s := NewSensorModel(&cfg)
	vehicles := []*Vehicle{{Lane: 1, Position: 10}}

	// WHEN raycasting from lane 1 in clear weather
	readings := s.Raycast(EgoPose{Lane: 1}, 0, vehicles)

	// THEN the straight-ahead beam stops at the rear bumper
	assert.InDelta(t, 10.0, readings[4], 1e-9)
}

func TestSensorModel_Raycast_HitBeyondFogRange_Invisible(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSensorModel(&cfg)
	maxRange := cfg.MaxRange(2)
	vehicles := []*Vehicle{{Lane: 0, Position: maxRange + 2}}

	readings := s.Raycast(EgoPose{Lane: 0}, 2, vehicles)

	assert.Equal(t, maxRange, readings[4])
}

func TestSensorModel_Raycast_VehicleBehindEgo_NotSeen(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSensorModel(&cfg)
	vehicles := []*Vehicle{{Lane: 0, Position: -3}, {Lane: 1, Position: -0.5}}

	readings := s.Raycast(EgoPose{Lane: 0}, 0, vehicles)

	for i, r := range readings {
		assert.Equal(t, cfg.MaxRange(0), r, "beam %d", i)
	}
}

func TestSensorModel_Raycast_BeamLeavingCorridorSideways_ReadsMaxRange(t *testing.T) {
	// GIVEN ego in the left lane and a vehicle far ahead in the right lane
	cfg := DefaultConfig()
	s := NewSensorModel(&cfg)
	vehicles := []*Vehicle{{Lane: 1, Position: 30}}

	readings := s.Raycast(EgoPose{Lane: 0}, 0, vehicles)

	// THEN the leftmost beam exits through x=0 before reaching anything
	assert.Equal(t, cfg.MaxRange(0), readings[0])
	// AND the rightmost beam exits through x=NumLanes long before y=30
	assert.Equal(t, cfg.MaxRange(0), readings[8])
}

func TestSensorModel_Raycast_AdjacentLaneSeenByOuterBeam(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSensorModel(&cfg)
	vehicles := []*Vehicle{{Lane: 1, Position: 1}}

	readings := s.Raycast(EgoPose{Lane: 0}, 0, vehicles)

	assert.Less(t, readings[8], cfg.MaxRange(0))
	assert.Equal(t, cfg.MaxRange(0), readings[0])
}

func TestSensorModel_Sense_NoisyReadingsStayInRange(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSensorModel(&cfg)
	rng := NewPartitionedRNG(NewSimulationKey(3)).ForSubsystem(SubsystemSensor)
	vehicles := []*Vehicle{{Lane: 0, Position: 6}, {Lane: 1, Position: 12}}

	for level := 0; level <= cfg.Fog.MaxLevel; level++ {
		for i := 0; i < 200; i++ {
			readings := s.Sense(EgoPose{Lane: 0}, level, vehicles, rng)
			require.Len(t, readings, cfg.Sensor.Beams)
			testutil.AssertAllWithin(t, "readings", readings, 0, cfg.MaxRange(level))
		}
	}
}

func TestSensorModel_Sense_NoiseIsMultiplicative(t *testing.T) {
	// A zero reading stays zero whatever the noise draw.
	cfg := DefaultConfig()
	cfg.Sensor.BaseNoiseScale = 0.5
	s := NewSensorModel(&cfg)
	rng := NewPartitionedRNG(NewSimulationKey(3)).ForSubsystem(SubsystemSensor)
	readings := []float64{0, 0, 0}

	s.perturb(readings, 2, rng)

	assert.Equal(t, []float64{0, 0, 0}, readings)
}
