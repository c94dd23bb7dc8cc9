package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	Evaluations       int
	AcceptedCount     int
	RejectedCount     int
	RejectionReasons  map[string]int // MOBIL outcome → count, excludes accepted
	TotalSpawns       int
	SpawnDistribution map[int]int // lane → spawn count
	MeanSpawnGap      float64
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		RejectionReasons:  make(map[string]int),
		SpawnDistribution: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.Evaluations = len(st.LaneChanges)
	for _, lc := range st.LaneChanges {
		if lc.Accepted {
			summary.AcceptedCount++
		} else {
			summary.RejectedCount++
			summary.RejectionReasons[lc.Reason]++
		}
	}

	if len(st.Spawns) > 0 {
		totalGap := 0.0
		for _, s := range st.Spawns {
			summary.SpawnDistribution[s.Lane]++
			totalGap += s.FreeGap
		}
		summary.MeanSpawnGap = totalGap / float64(len(st.Spawns))
	}
	summary.TotalSpawns = len(st.Spawns)

	return summary
}
