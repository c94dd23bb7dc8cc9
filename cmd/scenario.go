package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fogdrive/fogdrive/sim"
)

// Scenario is a YAML run description. Every field is optional; CLI flags
// that were set explicitly take precedence over it.
type Scenario struct {
	Seed            *int64           `yaml:"seed"`
	Episodes        *int             `yaml:"episodes"`
	Policy          string           `yaml:"policy"`
	Trace           string           `yaml:"trace"`
	CheckInvariants *bool            `yaml:"check_invariants"`
	Config          sim.ConfigBundle `yaml:"config"`
}

// LoadScenario reads a scenario file with strict field checking, so typos
// are reported instead of silently ignored.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	return &s, nil
}

// RunOptions is the fully resolved configuration of a run command.
type RunOptions struct {
	Seed            int64
	Episodes        int
	Policy          string
	Trace           string
	CheckInvariants bool
	Config          sim.Config
}

// flagSet reports which CLI flags were set explicitly.
type flagSet func(name string) bool

// resolve merges a scenario (may be nil) under the flag values in flags.
// A scenario value wins only where the matching flag was not set.
func resolve(flags RunOptions, changed flagSet, s *Scenario) RunOptions {
	out := flags
	if s == nil {
		return out
	}
	if s.Seed != nil && !changed("seed") {
		out.Seed = *s.Seed
	}
	if s.Episodes != nil && !changed("episodes") {
		out.Episodes = *s.Episodes
	}
	if s.Policy != "" && !changed("policy") {
		out.Policy = s.Policy
	}
	if s.Trace != "" && !changed("trace") {
		out.Trace = s.Trace
	}
	if s.CheckInvariants != nil && !changed("check-invariants") {
		out.CheckInvariants = *s.CheckInvariants
	}
	out.Config = s.Config.ApplyTo(flags.Config)
	return out
}
