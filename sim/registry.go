package sim

import (
	"math/rand"
	"sort"
)

// LaneView indexes vehicles by lane, each lane sorted by ascending position.
// It is a transient index: rebuild it whenever lanes or positions change.
type LaneView [][]*Vehicle

// Lane returns the sorted vehicles of a lane, or nil for an out-of-range lane.
func (lv LaneView) Lane(lane int) []*Vehicle {
	if lane < 0 || lane >= len(lv) {
		return nil
	}
	return lv[lane]
}

// VehicleRegistry owns the live traffic set in insertion order.
type VehicleRegistry struct {
	cfg      *Config
	vehicles []*Vehicle
	nextID   int64
}

// NewVehicleRegistry creates an empty registry for the given configuration.
func NewVehicleRegistry(cfg *Config) *VehicleRegistry {
	return &VehicleRegistry{cfg: cfg}
}

// Vehicles returns the live vehicles in registry order. Callers must not
// append to or reorder the returned slice.
func (r *VehicleRegistry) Vehicles() []*Vehicle {
	return r.vehicles
}

// Len returns the number of live vehicles.
func (r *VehicleRegistry) Len() int {
	return len(r.vehicles)
}

// Add admits a pre-built vehicle and assigns it a fresh handle.
func (r *VehicleRegistry) Add(v *Vehicle) *Vehicle {
	v.ID = r.nextID
	r.nextID++
	r.vehicles = append(r.vehicles, v)
	return v
}

// Spawn builds and admits a vehicle in lane with position drawn from
// U(posMin, posMax). The lane must be valid; this is not checked.
func (r *VehicleRegistry) Spawn(lane int, posMin, posMax float64, rng *rand.Rand) *Vehicle {
	position := uniform(rng, posMin, posMax)
	desired := uniform(rng, r.cfg.MinSpeed+1, r.cfg.MaxSpeed)
	speed := clamp(desired*uniform(rng, 0.6, 0.9), r.cfg.MinSpeed, r.cfg.MaxSpeed)
	return r.Add(&Vehicle{
		Lane:         lane,
		Position:     position,
		Speed:        speed,
		DesiredSpeed: desired,
	})
}

// GroupByLane builds a LaneView from current lanes and positions.
// Equal positions keep registry order.
func (r *VehicleRegistry) GroupByLane() LaneView {
	view := make(LaneView, r.cfg.NumLanes)
	for _, v := range r.vehicles {
		view[v.Lane] = append(view[v.Lane], v)
	}
	for _, lane := range view {
		sort.SliceStable(lane, func(i, j int) bool {
			return lane[i].Position < lane[j].Position
		})
	}
	return view
}

// Cull removes vehicles outside the open window (lower, upper), keeping
// survivor order. It returns the number of vehicles removed.
func (r *VehicleRegistry) Cull(lower, upper float64) int {
	kept := r.vehicles[:0]
	for _, v := range r.vehicles {
		if lower < v.Position && v.Position < upper {
			kept = append(kept, v)
		}
	}
	removed := len(r.vehicles) - len(kept)
	for i := len(kept); i < len(r.vehicles); i++ {
		r.vehicles[i] = nil
	}
	r.vehicles = kept
	return removed
}

// Snapshot copies the live vehicles by value in registry order.
func (r *VehicleRegistry) Snapshot() []Vehicle {
	out := make([]Vehicle, len(r.vehicles))
	for i, v := range r.vehicles {
		out[i] = *v
		out[i].pendingLane = 0
		out[i].pendingAccel = 0
	}
	return out
}
