package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fogdrive/fogdrive/sim"
	"github.com/fogdrive/fogdrive/sim/env"
	"github.com/fogdrive/fogdrive/sim/policy"
	"github.com/fogdrive/fogdrive/sim/trace"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario_ParsesAllSections(t *testing.T) {
	path := writeScenario(t, `
seed: 7
episodes: 3
policy: random
trace: decisions
check_invariants: true
config:
  max_steps: 50
  fog:
    resample_probability: 0.5
`)
	s, err := LoadScenario(path)
	require.NoError(t, err)

	require.NotNil(t, s.Seed)
	assert.Equal(t, int64(7), *s.Seed)
	assert.Equal(t, 3, *s.Episodes)
	assert.Equal(t, "random", s.Policy)
	assert.Equal(t, "decisions", s.Trace)
	assert.True(t, *s.CheckInvariants)
	assert.Equal(t, 50, *s.Config.MaxSteps)
}

func TestLoadScenario_UnknownField_Rejected(t *testing.T) {
	path := writeScenario(t, "seeds: 7\n")
	_, err := LoadScenario(path)
	assert.Error(t, err)
}

func TestResolve_FlagsOverrideScenarioOnlyWhenSet(t *testing.T) {
	// GIVEN a scenario that sets seed, episodes and policy
	seed, episodes := int64(7), 3
	s := &Scenario{Seed: &seed, Episodes: &episodes, Policy: "random"}
	flags := RunOptions{Seed: 100, Episodes: 1, Policy: "cautious", Trace: "none", Config: sim.DefaultConfig()}

	// WHEN only --seed was passed on the command line
	changed := func(name string) bool { return name == "seed" }
	got := resolve(flags, changed, s)

	// THEN the flag wins for seed and the scenario wins elsewhere
	assert.Equal(t, int64(100), got.Seed)
	assert.Equal(t, 3, got.Episodes)
	assert.Equal(t, "random", got.Policy)
	assert.Equal(t, "none", got.Trace)
}

func TestResolve_NilScenario_KeepsFlags(t *testing.T) {
	flags := RunOptions{Seed: 1, Episodes: 2, Policy: "maintain", Config: sim.DefaultConfig()}
	got := resolve(flags, func(string) bool { return false }, nil)
	assert.Equal(t, flags, got)
}

func TestRunEpisode_EndsAndAccumulatesReward(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.MaxSteps = 40
	e, err := env.New(cfg, env.Options{TraceLevel: trace.TraceLevelDecisions, CheckInvariants: true})
	require.NoError(t, err)

	result, err := RunEpisode(e, policy.Maintain{}, 5)
	require.NoError(t, err)

	assert.LessOrEqual(t, result.Steps, cfg.MaxSteps)
	assert.Equal(t, e.RunID(), result.RunID)
	if !result.Collision {
		// Maintain holds speed 3 for every step and collects the bonus.
		assert.Equal(t, cfg.MaxSteps, result.Steps)
		assert.InDelta(t, 3*float64(cfg.MaxSteps)+env.CompletionBonus, result.TotalReward, 1e-9)
	}

	var buf bytes.Buffer
	printEpisode(&buf, e, result)
	assert.Contains(t, buf.String(), "=== Episode Metrics ===")
	assert.Contains(t, buf.String(), "=== Decision Trace ===")
}

func TestDescribe_UsesLiveConfig(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Sensor.Beams = 5
	cfg.MaxSteps = 123

	var buf bytes.Buffer
	Describe(&buf, &cfg)
	out := buf.String()

	assert.Contains(t, out, "[0,1]^9")
	assert.Contains(t, out, "Discrete(5)")
	assert.Contains(t, out, "reaching 123 steps")
	assert.Contains(t, out, "lane-right")
}
