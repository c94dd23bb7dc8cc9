package sim

import "testing"

// testConfig returns DefaultConfig with randomized lane changes and
// spawning switched off, so single-phase tests are fully scripted.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MOBIL.ChangeProbability = 0
	cfg.Spawn.ProbabilityPerLane = 0
	return cfg
}

// newTestTraffic builds a TrafficSimulator over an empty registry.
func newTestTraffic(t *testing.T, cfg *Config) *TrafficSimulator {
	t.Helper()
	rng := NewPartitionedRNG(NewSimulationKey(1)).ForSubsystem(SubsystemTraffic)
	return NewTrafficSimulator(cfg, NewVehicleRegistry(cfg), rng, nil)
}

// addVehicle admits a vehicle whose speed and desired speed are equal,
// which makes it a free-flow cruiser when it has no leader.
func addVehicle(r *VehicleRegistry, lane int, position, speed float64) *Vehicle {
	return r.Add(&Vehicle{Lane: lane, Position: position, Speed: speed, DesiredSpeed: speed})
}
