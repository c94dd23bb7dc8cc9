// Package trace provides decision-trace recording for traffic analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// LaneChangeRecord captures one MOBIL evaluation of a candidate offset.
type LaneChangeRecord struct {
	Tick      int
	VehicleID int64
	FromLane  int
	Offset    int
	Position  float64
	Accepted  bool
	Reason    string // MOBIL outcome, e.g. "accepted", "unsafe", "no-incentive"
}

// SpawnRecord captures a vehicle admitted at the visible horizon.
type SpawnRecord struct {
	Tick      int
	VehicleID int64
	Lane      int
	Position  float64
	Speed     float64
	FreeGap   float64 // horizon minus furthest vehicle at decision time
}
