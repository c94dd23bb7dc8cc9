package policy

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/fogdrive/fogdrive/sim"
	"github.com/fogdrive/fogdrive/sim/env"
)

// Policy chooses the next action from a normalized observation as laid out
// by env.Env: lane one-hot, speed, fog, then one entry per sensor beam.
type Policy interface {
	Act(obs []float64) env.Action
}

// Maintain never changes speed or lane.
type Maintain struct{}

func (Maintain) Act(_ []float64) env.Action {
	return env.ActionMaintain
}

// Random picks actions uniformly from its own generator.
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a Random policy seeded independently of the simulation.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Act(_ []float64) env.Action {
	return env.Action(r.rng.Intn(env.NumActions))
}

// Cautious brakes when the forward beam is short, escaping toward the freer
// side when that side is clearly open, and otherwise speeds up.
type Cautious struct {
	numLanes int
	beams    int

	// BrakeBelow is the normalized forward range under which it reacts.
	BrakeBelow float64
	// EscapeMargin is how much freer a side must be than straight ahead.
	EscapeMargin float64
}

// NewCautious creates a Cautious policy for the observation layout of cfg.
func NewCautious(cfg *sim.Config) *Cautious {
	return &Cautious{
		numLanes:     cfg.NumLanes,
		beams:        cfg.Sensor.Beams,
		BrakeBelow:   0.35,
		EscapeMargin: 0.2,
	}
}

func (c *Cautious) Act(obs []float64) env.Action {
	lane := 0
	for i := 0; i < c.numLanes; i++ {
		if obs[i] == 1 {
			lane = i
		}
	}
	speed := obs[c.numLanes]
	ranges := obs[c.numLanes+2 : c.numLanes+2+c.beams]
	forward := ranges[c.beams/2]

	if forward >= c.BrakeBelow {
		if speed < 1 {
			return env.ActionAccelerate
		}
		return env.ActionMaintain
	}

	// Beams are ordered from the left edge of the fan to the right edge.
	left, right := mean(ranges[:c.beams/2]), mean(ranges[c.beams-c.beams/2:])
	switch {
	case lane > 0 && left >= right && left > forward+c.EscapeMargin:
		return env.ActionLaneLeft
	case lane < c.numLanes-1 && right > forward+c.EscapeMargin:
		return env.ActionLaneRight
	default:
		return env.ActionDecelerate
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// validPolicies lists the names accepted by NewPolicy.
var validPolicies = map[string]bool{
	"maintain": true,
	"random":   true,
	"cautious": true,
}

// IsValidPolicy reports whether name is accepted by NewPolicy.
func IsValidPolicy(name string) bool {
	return validPolicies[name]
}

// ValidPolicyNames returns the accepted policy names in sorted order.
func ValidPolicyNames() []string {
	names := make([]string, 0, len(validPolicies))
	for name := range validPolicies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewPolicy creates a driving policy by name.
// Valid names: "maintain", "random", "cautious". seed is used by "random".
func NewPolicy(name string, cfg *sim.Config, seed int64) Policy {
	switch name {
	case "maintain":
		return Maintain{}
	case "random":
		return NewRandom(seed)
	case "cautious":
		return NewCautious(cfg)
	default:
		panic(fmt.Sprintf("unknown policy %q; valid policies: %v", name, ValidPolicyNames()))
	}
}
