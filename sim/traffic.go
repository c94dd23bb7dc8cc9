package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/fogdrive/fogdrive/sim/trace"
)

// laneOffsets are the candidate MOBIL moves, shuffled per attempt.
var laneOffsets = [2]int{-1, +1}

// TickReport summarizes what one Advance did to the population.
type TickReport struct {
	LaneChanges int
	Culled      int
	Spawned     int
}

// TrafficSimulator advances the traffic population one tick at a time.
// Phases run in a fixed order and each phase only observes the results of
// the phases before it.
type TrafficSimulator struct {
	cfg      *Config
	registry *VehicleRegistry
	idm      *LongitudinalModel
	mobil    *LaneChangeModel
	rng      *rand.Rand
	trace    *trace.SimulationTrace
	tick     int
}

// NewTrafficSimulator wires the car-following and lane-change models around
// registry. rng must be the traffic subsystem stream. tr may be nil.
func NewTrafficSimulator(cfg *Config, registry *VehicleRegistry, rng *rand.Rand, tr *trace.SimulationTrace) *TrafficSimulator {
	idm := NewLongitudinalModel(cfg)
	return &TrafficSimulator{
		cfg:      cfg,
		registry: registry,
		idm:      idm,
		mobil:    NewLaneChangeModel(cfg, idm),
		rng:      rng,
		trace:    tr,
	}
}

// Registry returns the owned vehicle registry.
func (ts *TrafficSimulator) Registry() *VehicleRegistry {
	return ts.registry
}

// Advance runs one tick for an ego travelling at egoSpeed under fogLevel.
func (ts *TrafficSimulator) Advance(egoSpeed float64, fogLevel int) TickReport {
	ts.tick++
	var report TickReport

	report.LaneChanges = ts.changeLanes()
	ts.accelerate()
	ts.integrate(egoSpeed)
	report.Culled = ts.registry.Cull(-ts.cfg.Spawn.DespawnMargin, ts.cfg.CorridorLength+ts.cfg.Spawn.DespawnMargin)
	report.Spawned = ts.spawn(fogLevel)

	logrus.Debugf("[tick %07d] traffic: %d vehicles, %d lane changes, %d culled, %d spawned",
		ts.tick, ts.registry.Len(), report.LaneChanges, report.Culled, report.Spawned)
	return report
}

// changeLanes arbitrates lane changes against the pre-tick snapshot, then
// applies them all at once. Returns the number of vehicles that moved.
func (ts *TrafficSimulator) changeLanes() int {
	view := ts.registry.GroupByLane()
	vehicles := ts.registry.Vehicles()
	for _, v := range vehicles {
		v.pendingLane = v.Lane
		if v.Position < ts.cfg.MOBIL.GuardZone {
			continue
		}
		if ts.rng.Float64() >= ts.cfg.MOBIL.ChangeProbability {
			continue
		}
		offsets := laneOffsets
		ts.rng.Shuffle(len(offsets), func(i, j int) { offsets[i], offsets[j] = offsets[j], offsets[i] })
		for _, d := range offsets {
			outcome := ts.mobil.Evaluate(v, d, view)
			ts.trace.RecordLaneChange(trace.LaneChangeRecord{
				Tick:      ts.tick,
				VehicleID: v.ID,
				FromLane:  v.Lane,
				Offset:    d,
				Position:  v.Position,
				Accepted:  outcome == OutcomeAccepted,
				Reason:    string(outcome),
			})
			if outcome == OutcomeAccepted {
				v.pendingLane = v.Lane + d
				break
			}
		}
	}

	changed := 0
	for _, v := range vehicles {
		if v.pendingLane != v.Lane {
			changed++
		}
		v.Lane = v.pendingLane
	}
	return changed
}

// accelerate computes every vehicle's IDM acceleration from the post-change
// snapshot. The lane leader follows nobody.
func (ts *TrafficSimulator) accelerate() {
	for _, lane := range ts.registry.GroupByLane() {
		for i, v := range lane {
			var leader *Vehicle
			if i+1 < len(lane) {
				leader = lane[i+1]
			}
			a := ts.idm.Accelerate(v, leader)
			if !isFinite(a) {
				panic(fmt.Sprintf("TrafficSimulator.accelerate: non-finite acceleration %v for vehicle %d", a, v.ID))
			}
			v.pendingAccel = a
		}
	}
}

// integrate applies accelerations and moves vehicles in the ego frame: a
// vehicle slower than the ego falls back toward it.
func (ts *TrafficSimulator) integrate(egoSpeed float64) {
	for _, v := range ts.registry.Vehicles() {
		v.Speed = clamp(v.Speed+v.pendingAccel, ts.cfg.MinSpeed, ts.cfg.MaxSpeed)
		v.Position -= egoSpeed - v.Speed
		v.pendingAccel = 0
		if !isFinite(v.Speed) || !isFinite(v.Position) {
			panic(fmt.Sprintf("TrafficSimulator.integrate: non-finite state (speed=%v, position=%v) for vehicle %d",
				v.Speed, v.Position, v.ID))
		}
	}
}

// spawn admits at most one vehicle per lane just beyond the visible horizon
// when the lane has at least MinGap of free road below it.
func (ts *TrafficSimulator) spawn(fogLevel int) int {
	horizon := ts.cfg.VisibleHorizon(fogLevel)
	upper := math.Min(horizon+ts.cfg.Spawn.MinGap, ts.cfg.CorridorLength+ts.cfg.Spawn.DespawnMargin)

	spawned := 0
	for lane := 0; lane < ts.cfg.NumLanes; lane++ {
		gap := horizon - ts.furthestAhead(lane)
		if gap < ts.cfg.Spawn.MinGap {
			continue
		}
		if ts.rng.Float64() >= ts.cfg.Spawn.ProbabilityPerLane {
			continue
		}
		v := ts.registry.Spawn(lane, horizon, upper, ts.rng)
		spawned++
		ts.trace.RecordSpawn(trace.SpawnRecord{
			Tick:      ts.tick,
			VehicleID: v.ID,
			Lane:      lane,
			Position:  v.Position,
			Speed:     v.Speed,
			FreeGap:   gap,
		})
	}
	return spawned
}

// furthestAhead returns the largest non-negative position in lane, or 0.
func (ts *TrafficSimulator) furthestAhead(lane int) float64 {
	furthest := 0.0
	for _, v := range ts.registry.Vehicles() {
		if v.Lane == lane && v.Position >= 0 && v.Position > furthest {
			furthest = v.Position
		}
	}
	return furthest
}
