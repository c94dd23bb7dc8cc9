package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fogdrive/fogdrive/sim"
	"github.com/fogdrive/fogdrive/sim/env"
	"github.com/fogdrive/fogdrive/sim/policy"
	"github.com/fogdrive/fogdrive/sim/trace"
)

func loadExample(t *testing.T, name string) RunOptions {
	t.Helper()
	s, err := LoadScenario(filepath.Join("..", "examples", name))
	require.NoError(t, err, "failed to load %s", name)
	flags := RunOptions{Seed: 42, Episodes: 1, Policy: "cautious", Trace: "none", Config: sim.DefaultConfig()}
	opts := resolve(flags, func(string) bool { return false }, s)
	require.NoError(t, opts.Config.Validate(), "%s: validation failed", name)
	require.True(t, policy.IsValidPolicy(opts.Policy))
	require.True(t, trace.IsValidTraceLevel(opts.Trace))
	return opts
}

func TestExampleScenarios_ClearDay(t *testing.T) {
	opts := loadExample(t, "clear-day.yaml")

	assert.Equal(t, 0, opts.Config.Fog.MaxLevel)
	assert.Equal(t, map[int]float64{0: 40}, opts.Config.Fog.MaxRangeByLevel)
	assert.Equal(t, 3, opts.Episodes)
}

func TestExampleScenarios_DenseFog(t *testing.T) {
	opts := loadExample(t, "dense-fog.yaml")

	assert.Len(t, opts.Config.Fog.MaxRangeByLevel, 4)
	assert.Equal(t, 5.0, opts.Config.MaxRange(3))
	assert.True(t, opts.CheckInvariants)
	assert.Equal(t, "decisions", opts.Trace)
}

func TestExampleScenarios_RushHour_RunsToCompletion(t *testing.T) {
	opts := loadExample(t, "rush-hour.yaml")
	require.Equal(t, 3, opts.Config.NumLanes)

	e, err := env.New(opts.Config, env.Options{CheckInvariants: true})
	require.NoError(t, err)
	result, err := RunEpisode(e, policy.NewPolicy(opts.Policy, &opts.Config, opts.Seed), opts.Seed)

	require.NoError(t, err)
	assert.Positive(t, result.Steps)
}
