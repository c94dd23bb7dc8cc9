package sim

import "math"

// Vehicle is one autonomously driven traffic participant.
// Position is measured ahead of the ego in the ego-relative frame.
type Vehicle struct {
	ID           int64 // stable registry handle, never reused within a run
	Lane         int
	Position     float64
	Speed        float64
	DesiredSpeed float64

	// Per-tick scratch, written and consumed inside a single Advance.
	pendingLane  int
	pendingAccel float64
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// clamp bounds x to [lo, hi].
func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
