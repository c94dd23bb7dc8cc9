package sim

// positionTolerance separates "strictly ahead/behind" from "level with".
// Vehicles closer than this are neither leader nor follower of each other.
const positionTolerance = 1e-6

// LaneChangeModel decides lane changes with the MOBIL safety and incentive
// criteria.
type LaneChangeModel struct {
	cfg *Config
	idm *LongitudinalModel
}

// NewLaneChangeModel creates a MOBIL model that scores candidates with idm.
func NewLaneChangeModel(cfg *Config, idm *LongitudinalModel) *LaneChangeModel {
	return &LaneChangeModel{cfg: cfg, idm: idm}
}

// LaneChangeOutcome explains a Decide result.
type LaneChangeOutcome string

const (
	OutcomeAccepted    LaneChangeOutcome = "accepted"
	OutcomeOffCorridor LaneChangeOutcome = "off-corridor"
	OutcomeUnsafe      LaneChangeOutcome = "unsafe"
	OutcomeNoIncentive LaneChangeOutcome = "no-incentive"
)

// Decide reports whether moving v by offset lanes is both safe and beneficial.
func (m *LaneChangeModel) Decide(v *Vehicle, offset int, view LaneView) bool {
	return m.Evaluate(v, offset, view) == OutcomeAccepted
}

// Evaluate runs the MOBIL criteria and returns the first one that fails,
// or OutcomeAccepted.
func (m *LaneChangeModel) Evaluate(v *Vehicle, offset int, view LaneView) LaneChangeOutcome {
	target := v.Lane + offset
	if target < 0 || target >= m.cfg.NumLanes {
		return OutcomeOffCorridor
	}

	current := m.idm.Accelerate(v, leaderOf(v, view.Lane(v.Lane)))

	targetCars := view.Lane(target)
	targetLeader := leaderOf(v, targetCars)
	targetFollower := followerOf(v, targetCars)

	if targetFollower != nil {
		leader := leaderOf(targetFollower, targetCars)
		if v.Position > targetFollower.Position && (leader == nil || v.Position < leader.Position) {
			leader = v
		}
		if m.idm.Accelerate(targetFollower, leader) < -m.cfg.MOBIL.SafeBrakeLimit {
			return OutcomeUnsafe
		}
	}

	gain := m.idm.Accelerate(v, targetLeader) - current
	if gain < m.cfg.MOBIL.IncentiveThreshold {
		return OutcomeNoIncentive
	}
	return OutcomeAccepted
}

// leaderOf returns the nearest vehicle in lane strictly ahead of v.
// lane must be sorted by ascending position.
func leaderOf(v *Vehicle, lane []*Vehicle) *Vehicle {
	for _, other := range lane {
		if other.Position > v.Position+positionTolerance {
			return other
		}
	}
	return nil
}

// followerOf returns the nearest vehicle in lane strictly behind v.
// lane must be sorted by ascending position.
func followerOf(v *Vehicle, lane []*Vehicle) *Vehicle {
	for i := len(lane) - 1; i >= 0; i-- {
		if lane[i].Position < v.Position-positionTolerance {
			return lane[i]
		}
	}
	return nil
}
