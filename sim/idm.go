package sim

import "math"

const (
	// minGap floors the bumper-to-bumper gap so overlapping vehicles never
	// divide by zero or by a negative number.
	minGap = 0.1

	// desiredSpeedFloor keeps the free-road ratio v/v0 finite.
	desiredSpeedFloor = 1e-3
)

// LongitudinalModel computes car-following accelerations with the
// Intelligent Driver Model.
type LongitudinalModel struct {
	cfg *Config
}

// NewLongitudinalModel creates an IDM bound to cfg.
func NewLongitudinalModel(cfg *Config) *LongitudinalModel {
	return &LongitudinalModel{cfg: cfg}
}

// Accelerate returns the IDM acceleration of v following leader.
// A nil leader means free road: the interaction term vanishes.
func (m *LongitudinalModel) Accelerate(v, leader *Vehicle) float64 {
	p := m.cfg.IDM
	speed := math.Max(m.cfg.MinSpeed, v.Speed)
	desired := math.Max(m.cfg.MinSpeed+desiredSpeedFloor, v.DesiredSpeed)

	freeRoad := math.Pow(speed/desired, p.Delta)
	if leader == nil {
		return p.A * (1 - freeRoad)
	}

	gap := math.Max(minGap, leader.Position-v.Position-m.cfg.BodyLength)
	closing := speed - leader.Speed
	desiredGap := p.S0 + speed*p.T + (speed*closing)/(2*math.Sqrt(p.A*p.B))
	interaction := desiredGap / gap
	return p.A * (1 - freeRoad - interaction*interaction)
}

// worstCaseDeceleration bounds the magnitude of any IDM output under cfg:
// the free-road ratio is at most MaxSpeed over the desired-speed floor and
// the interaction term is largest at the gap floor with maximal closing speed.
func worstCaseDeceleration(cfg *Config) float64 {
	p := cfg.IDM
	freeRoad := math.Pow(cfg.MaxSpeed/(cfg.MinSpeed+desiredSpeedFloor), p.Delta)
	closing := cfg.MaxSpeed - cfg.MinSpeed
	desiredGap := p.S0 + cfg.MaxSpeed*p.T + cfg.MaxSpeed*closing/(2*math.Sqrt(p.A*p.B))
	interaction := desiredGap / minGap
	return p.A * (1 + freeRoad + interaction*interaction)
}
