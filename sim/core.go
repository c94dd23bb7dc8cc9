package sim

import (
	"fmt"
	"maps"

	"github.com/sirupsen/logrus"

	"github.com/fogdrive/fogdrive/sim/trace"
)

// EgoState is the controlled vehicle. It only changes through AdvanceTick.
type EgoState struct {
	Lane             int
	Speed            float64
	DistanceTraveled float64
	StepCount        int
}

// EgoDelta is one ego action: each component must be -1, 0 or +1.
// Lane moves are clamped at the corridor edges; speed moves by SpeedStep
// and is clamped to [MinSpeed, MaxSpeed].
type EgoDelta struct {
	Lane  int
	Speed int
}

// Validate rejects components outside {-1, 0, +1}.
func (d EgoDelta) Validate() error {
	if d.Lane < -1 || d.Lane > 1 {
		return fmt.Errorf("%w: lane delta must be in {-1, 0, +1}, got %d", ErrInvalidAction, d.Lane)
	}
	if d.Speed < -1 || d.Speed > 1 {
		return fmt.Errorf("%w: speed delta must be in {-1, 0, +1}, got %d", ErrInvalidAction, d.Speed)
	}
	return nil
}

// CoreState is the raw observable state after a tick.
type CoreState struct {
	Ego      EgoState
	Fog      int
	Vehicles []Vehicle // registry order
}

// Core composes ego state, fog, traffic and the range sensor into the
// step-at-a-time environment engine.
type Core struct {
	cfg     Config
	rng     *PartitionedRNG
	traffic *TrafficSimulator
	sensor  *SensorModel
	metrics *Metrics

	ego        EgoState
	fog        FogState
	lastReport TickReport
}

// Initialize validates cfg and builds the initial population from seed.
func Initialize(cfg Config, seed int64) (*Core, error) {
	return NewCore(cfg, seed, nil, nil)
}

// NewCore is Initialize with optional decision tracing and metrics
// collection. Either may be nil.
func NewCore(cfg Config, seed int64, tr *trace.SimulationTrace, metrics *Metrics) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Fog.MaxRangeByLevel = maps.Clone(cfg.Fog.MaxRangeByLevel)
	c := &Core{
		cfg:     cfg,
		rng:     NewPartitionedRNG(NewSimulationKey(seed)),
		metrics: metrics,
	}
	registry := NewVehicleRegistry(&c.cfg)
	c.traffic = NewTrafficSimulator(&c.cfg, registry, c.rng.ForSubsystem(SubsystemTraffic), tr)
	c.sensor = NewSensorModel(&c.cfg)

	c.populate(registry)
	c.fog = sampleFog(&c.cfg, c.rng.ForSubsystem(SubsystemFog))

	logrus.Infof("initialized core: seed=%d ego_lane=%d fog=%d vehicles=%d",
		seed, c.ego.Lane, c.fog.Level, registry.Len())
	return c, nil
}

// populate places the ego and the initial traffic, including a short queue
// of slow vehicles directly ahead of the ego.
func (c *Core) populate(registry *VehicleRegistry) {
	rng := c.rng.ForSubsystem(SubsystemPopulation)
	cfg := &c.cfg

	c.ego = EgoState{
		Lane:  rng.Intn(cfg.NumLanes),
		Speed: (cfg.MinSpeed + cfg.MaxSpeed) / 2,
	}

	n := cfg.Population.MinVehicles + rng.Intn(cfg.Population.MaxVehicles-cfg.Population.MinVehicles+1)
	for i := 0; i < n; i++ {
		lane := rng.Intn(cfg.NumLanes)
		position := uniform(rng, 4.0, cfg.CorridorLength)
		speed := uniform(rng, cfg.MinSpeed, cfg.MaxSpeed-1)
		desired := uniform(rng, max(speed, cfg.MinSpeed+1), cfg.MaxSpeed)
		registry.Add(&Vehicle{Lane: lane, Position: position, Speed: speed, DesiredSpeed: desired})
	}

	for i := 0; i < cfg.Population.SlowVehicles; i++ {
		position := uniform(rng, 2.0, 4.0)
		desired := uniform(rng, cfg.MinSpeed+0.5, cfg.MaxSpeed-1)
		registry.Add(&Vehicle{Lane: c.ego.Lane, Position: position, Speed: cfg.MinSpeed, DesiredSpeed: desired})
	}
}

// Config returns the validated configuration the core runs with.
func (c *Core) Config() Config {
	return c.cfg
}

// AdvanceTick applies delta to the ego, advances traffic one tick and
// possibly redraws the fog. An invalid delta leaves the state untouched.
func (c *Core) AdvanceTick(delta EgoDelta) (CoreState, error) {
	if err := delta.Validate(); err != nil {
		return CoreState{}, err
	}

	c.ego.StepCount++
	c.ego.DistanceTraveled += c.ego.Speed
	c.ego.Speed = clamp(c.ego.Speed+float64(delta.Speed)*c.cfg.SpeedStep, c.cfg.MinSpeed, c.cfg.MaxSpeed)
	c.ego.Lane = min(max(c.ego.Lane+delta.Lane, 0), c.cfg.NumLanes-1)

	c.lastReport = c.traffic.Advance(c.ego.Speed, c.fog.Level)
	fogChanged := c.fog.Resample(&c.cfg, c.rng.ForSubsystem(SubsystemFog))

	collision := c.QueryCollision()
	if collision {
		logrus.Debugf("[tick %07d] collision in lane %d", c.ego.StepCount, c.ego.Lane)
	}
	c.metrics.observe(c, fogChanged, collision)

	return c.State(), nil
}

// State returns a snapshot of the current raw state.
func (c *Core) State() CoreState {
	return CoreState{
		Ego:      c.ego,
		Fog:      c.fog.Level,
		Vehicles: c.traffic.Registry().Snapshot(),
	}
}

// LastReport returns the population changes made by the latest tick.
func (c *Core) LastReport() TickReport {
	return c.lastReport
}

// QueryRanges returns the current noisy sensor readings. It draws only from
// the sensor stream, so traffic evolution does not depend on how often it
// is called.
func (c *Core) QueryRanges() []float64 {
	return c.sensor.Sense(EgoPose{Lane: c.ego.Lane}, c.fog.Level,
		c.traffic.Registry().Vehicles(), c.rng.ForSubsystem(SubsystemSensor))
}

// QueryCollision reports whether a vehicle in the ego lane overlaps the ego
// body, i.e. sits strictly between 0 and BodyLength.
func (c *Core) QueryCollision() bool {
	for _, v := range c.traffic.Registry().Vehicles() {
		if v.Lane == c.ego.Lane && 0 < v.Position && v.Position < c.cfg.BodyLength {
			return true
		}
	}
	return false
}

// Truncated reports whether the episode reached MaxSteps.
func (c *Core) Truncated() bool {
	return c.ego.StepCount >= c.cfg.MaxSteps
}
