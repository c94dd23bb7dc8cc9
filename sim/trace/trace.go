package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every lane-change evaluation and spawn.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
	RunID string // episode identifier stamped by the caller
}

// SimulationTrace collects decision records during an episode.
// A nil *SimulationTrace is a valid no-op recorder.
type SimulationTrace struct {
	Config      TraceConfig
	LaneChanges []LaneChangeRecord
	Spawns      []SpawnRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
// Returns nil when the level disables tracing.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	if config.Level == TraceLevelNone || config.Level == "" {
		return nil
	}
	return &SimulationTrace{
		Config:      config,
		LaneChanges: make([]LaneChangeRecord, 0),
		Spawns:      make([]SpawnRecord, 0),
	}
}

// Enabled reports whether records are being kept.
func (st *SimulationTrace) Enabled() bool {
	return st != nil
}

// RecordLaneChange appends a lane-change evaluation record.
func (st *SimulationTrace) RecordLaneChange(record LaneChangeRecord) {
	if st == nil {
		return
	}
	st.LaneChanges = append(st.LaneChanges, record)
}

// RecordSpawn appends a spawn record.
func (st *SimulationTrace) RecordSpawn(record SpawnRecord) {
	if st == nil {
		return
	}
	st.Spawns = append(st.Spawns, record)
}
