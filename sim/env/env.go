// Package env wraps the simulation core as an episodic decision process:
// discrete actions in, normalized observations and scalar rewards out.
package env

import (
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fogdrive/fogdrive/sim"
	"github.com/fogdrive/fogdrive/sim/trace"
)

// Action is one of the five discrete ego commands.
type Action int

const (
	ActionMaintain Action = iota
	ActionAccelerate
	ActionDecelerate
	ActionLaneLeft
	ActionLaneRight

	// NumActions is the size of the discrete action space.
	NumActions = 5
)

var actionNames = [NumActions]string{"maintain", "accelerate", "decelerate", "lane-left", "lane-right"}

func (a Action) String() string {
	if a < 0 || int(a) >= NumActions {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// Delta maps a to the ego lane/speed command it stands for.
func (a Action) Delta() (sim.EgoDelta, error) {
	switch a {
	case ActionMaintain:
		return sim.EgoDelta{}, nil
	case ActionAccelerate:
		return sim.EgoDelta{Speed: +1}, nil
	case ActionDecelerate:
		return sim.EgoDelta{Speed: -1}, nil
	case ActionLaneLeft:
		return sim.EgoDelta{Lane: -1}, nil
	case ActionLaneRight:
		return sim.EgoDelta{Lane: +1}, nil
	default:
		return sim.EgoDelta{}, fmt.Errorf("%w: action %d outside [0, %d)", sim.ErrInvalidAction, int(a), NumActions)
	}
}

// Reward shaping constants.
const (
	CollisionPenalty = 50.0
	CompletionBonus  = 100.0
)

// StepResult is the outcome of one Step.
type StepResult struct {
	Observation []float64
	Reward      float64
	Terminated  bool // collision
	Truncated   bool // step limit reached
	Collision   bool
	State       sim.CoreState
}

// Options configures optional per-episode instrumentation.
type Options struct {
	TraceLevel      trace.TraceLevel
	CheckInvariants bool
}

// Env runs episodes over a fixed Config. Each Reset builds a fresh core.
type Env struct {
	cfg  sim.Config
	opts Options

	core    *sim.Core
	metrics *sim.Metrics
	trace   *trace.SimulationTrace
	runID   string
	done    bool
}

// New validates cfg and returns an Env that must be Reset before stepping.
func New(cfg sim.Config, opts Options) (*Env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !trace.IsValidTraceLevel(string(opts.TraceLevel)) {
		return nil, fmt.Errorf("%w: unknown trace level %q", sim.ErrConfiguration, opts.TraceLevel)
	}
	cfg.Fog.MaxRangeByLevel = maps.Clone(cfg.Fog.MaxRangeByLevel)
	return &Env{cfg: cfg, opts: opts}, nil
}

// ObservationSize is the length of every observation vector:
// NumLanes one-hot entries, speed, fog, then one entry per beam.
func (e *Env) ObservationSize() int {
	return e.cfg.NumLanes + 2 + e.cfg.Sensor.Beams
}

// Reset starts a new episode from seed and returns the first observation.
func (e *Env) Reset(seed int64) ([]float64, error) {
	e.runID = uuid.NewString()
	e.metrics = sim.NewMetrics(e.runID)
	e.trace = trace.NewSimulationTrace(trace.TraceConfig{Level: e.opts.TraceLevel, RunID: e.runID})
	core, err := sim.NewCore(e.cfg, seed, e.trace, e.metrics)
	if err != nil {
		return nil, err
	}
	e.core = core
	e.done = false
	logrus.Infof("episode %s reset with seed %d", e.runID, seed)
	return e.observe(), nil
}

// Step applies action and advances the episode one tick. Stepping an
// episode that has already ended is an error.
func (e *Env) Step(action Action) (StepResult, error) {
	if e.core == nil {
		return StepResult{}, errors.New("step before reset")
	}
	if e.done {
		return StepResult{}, fmt.Errorf("episode %s already ended; call Reset", e.runID)
	}
	delta, err := action.Delta()
	if err != nil {
		return StepResult{}, err
	}
	state, err := e.core.AdvanceTick(delta)
	if err != nil {
		return StepResult{}, err
	}
	if e.opts.CheckInvariants {
		cfg := e.core.Config()
		if err := sim.CheckInvariants(&cfg, state); err != nil {
			panic(fmt.Sprintf("invariant violated at tick %d: %v", state.Ego.StepCount, err))
		}
	}

	collision := e.core.QueryCollision()
	res := StepResult{
		Terminated: collision,
		Truncated:  e.core.Truncated(),
		Collision:  collision,
		State:      state,
	}
	res.Reward = Reward(state.Ego.Speed, res.Terminated, res.Truncated)
	res.Observation = e.observe()
	e.done = res.Terminated || res.Truncated
	if e.done {
		logrus.Infof("episode %s ended at tick %d: collision=%v distance=%.2f",
			e.runID, state.Ego.StepCount, collision, state.Ego.DistanceTraveled)
	}
	return res, nil
}

// Reward is the post-action ego speed, minus CollisionPenalty on a
// collision, plus CompletionBonus when the step limit is reached without one.
func Reward(speed float64, terminated, truncated bool) float64 {
	r := speed
	if terminated {
		r -= CollisionPenalty
	}
	if truncated && !terminated {
		r += CompletionBonus
	}
	return r
}

// observe builds the normalized observation. Every entry lies in [0, 1].
func (e *Env) observe() []float64 {
	cfg := &e.cfg
	state := e.core.State()
	obs := make([]float64, 0, e.ObservationSize())

	for lane := 0; lane < cfg.NumLanes; lane++ {
		if lane == state.Ego.Lane {
			obs = append(obs, 1)
		} else {
			obs = append(obs, 0)
		}
	}
	obs = append(obs, (state.Ego.Speed-cfg.MinSpeed)/(cfg.MaxSpeed-cfg.MinSpeed))
	if cfg.Fog.MaxLevel > 0 {
		obs = append(obs, float64(state.Fog)/float64(cfg.Fog.MaxLevel))
	} else {
		obs = append(obs, 0)
	}
	maxRange := cfg.MaxRange(state.Fog)
	for _, r := range e.core.QueryRanges() {
		obs = append(obs, r/maxRange)
	}
	return obs
}

// Core exposes the running core, or nil before the first Reset.
func (e *Env) Core() *sim.Core { return e.core }

// Metrics returns the current episode's metrics.
func (e *Env) Metrics() *sim.Metrics { return e.metrics }

// Trace returns the current episode's decision trace, nil when disabled.
func (e *Env) Trace() *trace.SimulationTrace { return e.trace }

// RunID identifies the current episode.
func (e *Env) RunID() string { return e.runID }
