// Tracks per-episode statistics such as ego speed, traffic density and
// population churn.

package sim

import (
	"fmt"
	"io"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates statistics about one episode for final reporting.
// A nil *Metrics ignores observations.
type Metrics struct {
	RunID string

	Ticks       int
	Collisions  int
	LaneChanges int
	Spawned     int
	Culled      int
	FogChanges  int
	Distance    float64

	EgoSpeeds     []float64 // ego speed after each tick
	VehicleCounts []float64 // live vehicles after each tick
}

// MetricsSummary holds derived statistics computed from Metrics.
type MetricsSummary struct {
	MeanEgoSpeed   float64
	StdEgoSpeed    float64
	MeanVehicles   float64
	P95Vehicles    float64
	PeakVehicles   float64
	ChurnPerTick   float64 // (spawned + culled) / ticks
	CollisionRatio float64 // collisions / ticks
}

// NewMetrics creates an empty collector labelled with runID.
func NewMetrics(runID string) *Metrics {
	return &Metrics{
		RunID:         runID,
		EgoSpeeds:     make([]float64, 0),
		VehicleCounts: make([]float64, 0),
	}
}

func (m *Metrics) observe(c *Core, fogChanged, collision bool) {
	if m == nil {
		return
	}
	m.Ticks++
	m.LaneChanges += c.lastReport.LaneChanges
	m.Spawned += c.lastReport.Spawned
	m.Culled += c.lastReport.Culled
	if fogChanged {
		m.FogChanges++
	}
	if collision {
		m.Collisions++
	}
	m.Distance = c.ego.DistanceTraveled
	m.EgoSpeeds = append(m.EgoSpeeds, c.ego.Speed)
	m.VehicleCounts = append(m.VehicleCounts, float64(c.traffic.Registry().Len()))
}

// Summary computes derived statistics. Empty metrics yield a zero summary.
func (m *Metrics) Summary() MetricsSummary {
	var s MetricsSummary
	if m == nil || m.Ticks == 0 {
		return s
	}
	s.MeanEgoSpeed = stat.Mean(m.EgoSpeeds, nil)
	if len(m.EgoSpeeds) > 1 {
		s.StdEgoSpeed = stat.StdDev(m.EgoSpeeds, nil)
	}
	if len(m.VehicleCounts) > 0 {
		sorted := slices.Clone(m.VehicleCounts)
		slices.Sort(sorted)
		s.MeanVehicles = stat.Mean(sorted, nil)
		s.P95Vehicles = stat.Quantile(0.95, stat.Empirical, sorted, nil)
		s.PeakVehicles = floats.Max(sorted)
	}
	s.ChurnPerTick = float64(m.Spawned+m.Culled) / float64(m.Ticks)
	s.CollisionRatio = float64(m.Collisions) / float64(m.Ticks)
	return s
}

// Print writes a human-readable report of the episode to w.
func (m *Metrics) Print(w io.Writer) {
	s := m.Summary()
	fmt.Fprintln(w, "=== Episode Metrics ===")
	fmt.Fprintf(w, "Run ID             : %s\n", m.RunID)
	fmt.Fprintf(w, "Ticks              : %d\n", m.Ticks)
	fmt.Fprintf(w, "Distance Traveled  : %.2f\n", m.Distance)
	fmt.Fprintf(w, "Collisions         : %d\n", m.Collisions)
	fmt.Fprintf(w, "Lane Changes       : %d\n", m.LaneChanges)
	fmt.Fprintf(w, "Spawned / Culled   : %d / %d\n", m.Spawned, m.Culled)
	fmt.Fprintf(w, "Fog Changes        : %d\n", m.FogChanges)
	if m.Ticks > 0 {
		fmt.Fprintf(w, "Ego Speed          : %.2f ± %.2f\n", s.MeanEgoSpeed, s.StdEgoSpeed)
		fmt.Fprintf(w, "Vehicles (mean/p95/peak): %.2f / %.0f / %.0f\n", s.MeanVehicles, s.P95Vehicles, s.PeakVehicles)
		fmt.Fprintf(w, "Churn Per Tick     : %.3f\n", s.ChurnPerTick)
	}
}
