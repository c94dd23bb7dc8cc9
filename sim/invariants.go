package sim

import "fmt"

// CheckInvariants returns an error describing the first post-tick invariant
// that state violates under cfg, or nil.
func CheckInvariants(cfg *Config, state CoreState) error {
	if state.Ego.Lane < 0 || state.Ego.Lane >= cfg.NumLanes {
		return fmt.Errorf("ego lane %d outside [0, %d)", state.Ego.Lane, cfg.NumLanes)
	}
	if state.Ego.Speed < cfg.MinSpeed || state.Ego.Speed > cfg.MaxSpeed {
		return fmt.Errorf("ego speed %v outside [%v, %v]", state.Ego.Speed, cfg.MinSpeed, cfg.MaxSpeed)
	}
	if state.Fog < 0 || state.Fog > cfg.Fog.MaxLevel {
		return fmt.Errorf("fog level %d outside [0, %d]", state.Fog, cfg.Fog.MaxLevel)
	}
	lower := -cfg.Spawn.DespawnMargin
	upper := cfg.CorridorLength + cfg.Spawn.DespawnMargin
	for _, v := range state.Vehicles {
		switch {
		case !isFinite(v.Speed) || !isFinite(v.Position):
			return fmt.Errorf("vehicle %d has non-finite state (speed=%v, position=%v)", v.ID, v.Speed, v.Position)
		case v.Lane < 0 || v.Lane >= cfg.NumLanes:
			return fmt.Errorf("vehicle %d lane %d outside [0, %d)", v.ID, v.Lane, cfg.NumLanes)
		case v.Speed < cfg.MinSpeed || v.Speed > cfg.MaxSpeed:
			return fmt.Errorf("vehicle %d speed %v outside [%v, %v]", v.ID, v.Speed, cfg.MinSpeed, cfg.MaxSpeed)
		case v.Position <= lower || v.Position >= upper:
			return fmt.Errorf("vehicle %d position %v outside (%v, %v)", v.ID, v.Position, lower, upper)
		}
	}
	return nil
}
