package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fogdrive/fogdrive/sim"
	"github.com/fogdrive/fogdrive/sim/env"
)

// obsFor builds a default-layout observation: 2 lanes, speed, fog, 9 beams.
func obsFor(lane int, speed float64, ranges [9]float64) []float64 {
	obs := []float64{0, 0, speed, 0}
	obs[lane] = 1
	return append(obs, ranges[:]...)
}

func clearRoad() [9]float64 {
	return [9]float64{1, 1, 1, 1, 1, 1, 1, 1, 1}
}

func TestNewPolicy_KnownNames(t *testing.T) {
	cfg := sim.DefaultConfig()
	for _, name := range ValidPolicyNames() {
		t.Run(name, func(t *testing.T) {
			require.True(t, IsValidPolicy(name))
			assert.NotNil(t, NewPolicy(name, &cfg, 1))
		})
	}
}

func TestNewPolicy_UnknownName_Panics(t *testing.T) {
	cfg := sim.DefaultConfig()
	assert.False(t, IsValidPolicy("reckless"))
	assert.Panics(t, func() { NewPolicy("reckless", &cfg, 1) })
}

func TestMaintain_AlwaysMaintains(t *testing.T) {
	assert.Equal(t, env.ActionMaintain, Maintain{}.Act(obsFor(0, 0.5, clearRoad())))
}

func TestRandom_SameSeed_SameActions(t *testing.T) {
	a, b := NewRandom(5), NewRandom(5)
	obs := obsFor(0, 0.5, clearRoad())
	for i := 0; i < 100; i++ {
		act := a.Act(obs)
		require.Equal(t, act, b.Act(obs))
		require.GreaterOrEqual(t, int(act), 0)
		require.Less(t, int(act), env.NumActions)
	}
}

func TestCautious_Act(t *testing.T) {
	cfg := sim.DefaultConfig()
	p := NewCautious(&cfg)

	blockedAhead := clearRoad()
	blockedAhead[4] = 0.1

	blockedEverywhere := [9]float64{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}

	tests := []struct {
		name string
		obs  []float64
		want env.Action
	}{
		{"clear road below top speed", obsFor(0, 0.5, clearRoad()), env.ActionAccelerate},
		{"clear road at top speed", obsFor(0, 1, clearRoad()), env.ActionMaintain},
		{"blocked in left lane escapes right", obsFor(0, 0.5, blockedAhead), env.ActionLaneRight},
		{"blocked in right lane escapes left", obsFor(1, 0.5, blockedAhead), env.ActionLaneLeft},
		{"boxed in brakes", obsFor(0, 0.5, blockedEverywhere), env.ActionDecelerate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Act(tt.obs))
		})
	}
}

func TestPolicies_DriveFullEpisodes(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.MaxSteps = 80
	e, err := env.New(cfg, env.Options{CheckInvariants: true})
	require.NoError(t, err)

	for _, name := range ValidPolicyNames() {
		t.Run(name, func(t *testing.T) {
			p := NewPolicy(name, &cfg, 2)
			obs, err := e.Reset(2)
			require.NoError(t, err)
			for {
				res, err := e.Step(p.Act(obs))
				require.NoError(t, err)
				obs = res.Observation
				if res.Terminated || res.Truncated {
					break
				}
			}
			assert.LessOrEqual(t, e.Metrics().Ticks, cfg.MaxSteps)
		})
	}
}
