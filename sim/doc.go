// Package sim provides the traffic microsimulation and sensing engine for
// fogdrive: an ego vehicle on a fog-limited two-lane corridor surrounded by
// IDM/MOBIL-controlled traffic.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - core.go: Core, the step-at-a-time engine (Initialize, AdvanceTick,
//     QueryRanges, QueryCollision)
//   - traffic.go: one tick of traffic, phase by phase
//   - idm.go / mobil.go: car-following and lane-change rules
//   - sensor.go: fog-limited ray-marched range sensor
//
// # Frames and Units
//
// Positions are ego-relative: a vehicle's Position is its distance ahead of
// the ego. Speeds are distance per tick. A vehicle slower than the ego
// falls back toward it each tick.
//
// # Determinism
//
// All randomness flows from one PartitionedRNG per Core, split into
// population, traffic, fog and sensor streams. The same seed and action
// sequence reproduce the same states bit for bit on a given platform.
//
// # Sub-packages
//   - sim/env/: episodic wrapper with discrete actions and normalized observations
//   - sim/policy/: scripted driving policies used by the CLI
//   - sim/trace/: lane-change and spawn decision traces
package sim
