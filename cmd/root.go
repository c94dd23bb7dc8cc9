package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fogdrive/fogdrive/sim"
	"github.com/fogdrive/fogdrive/sim/env"
	"github.com/fogdrive/fogdrive/sim/policy"
	"github.com/fogdrive/fogdrive/sim/trace"
)

var (
	// CLI flags for the run command
	seed            int64  // Seed of the first episode; episode i uses seed+i
	episodes        int    // Number of episodes to run
	policyName      string // Driving policy for the ego vehicle
	traceLevel      string // Decision trace verbosity
	checkInvariants bool   // Verify post-tick invariants every step
	maxSteps        int    // Episode step limit override
	scenarioPath    string // Optional YAML scenario
	logLevel        string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "fogdrive",
	Short: "Foggy two-lane traffic microsimulation",
}

// runCmd drives one or more episodes with a scripted policy
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run episodes with a scripted driving policy",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		var scenario *Scenario
		if scenarioPath != "" {
			s, err := LoadScenario(scenarioPath)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			scenario = s
		}
		opts := resolveRunOptions(cmd, scenario)

		if !policy.IsValidPolicy(opts.Policy) {
			logrus.Fatalf("Unknown policy %q. Valid: %s", opts.Policy, strings.Join(policy.ValidPolicyNames(), ", "))
		}
		if !trace.IsValidTraceLevel(opts.Trace) {
			logrus.Fatalf("Unknown trace level %q. Valid: none, decisions", opts.Trace)
		}
		if opts.Episodes < 1 {
			logrus.Fatalf("--episodes must be >= 1, got %d", opts.Episodes)
		}

		e, err := env.New(opts.Config, env.Options{
			TraceLevel:      trace.TraceLevel(opts.Trace),
			CheckInvariants: opts.CheckInvariants,
		})
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		logrus.Infof("Starting %d episode(s): seed=%d policy=%s max_steps=%d",
			opts.Episodes, opts.Seed, opts.Policy, opts.Config.MaxSteps)
		for i := 0; i < opts.Episodes; i++ {
			episodeSeed := opts.Seed + int64(i)
			p := policy.NewPolicy(opts.Policy, &opts.Config, episodeSeed)
			result, err := RunEpisode(e, p, episodeSeed)
			if err != nil {
				logrus.Fatalf("Episode %d failed: %v", i, err)
			}
			printEpisode(os.Stdout, e, result)
		}
		logrus.Info("Run complete.")
	},
}

// resolveRunOptions combines flag values, the scenario and the --max-steps
// override, in increasing order of precedence.
func resolveRunOptions(cmd *cobra.Command, scenario *Scenario) RunOptions {
	flags := RunOptions{
		Seed:            seed,
		Episodes:        episodes,
		Policy:          policyName,
		Trace:           traceLevel,
		CheckInvariants: checkInvariants,
		Config:          sim.DefaultConfig(),
	}
	opts := resolve(flags, cmd.Flags().Changed, scenario)
	if cmd.Flags().Changed("max-steps") {
		opts.Config.MaxSteps = maxSteps
	}
	return opts
}

// EpisodeResult summarizes one finished episode.
type EpisodeResult struct {
	RunID       string
	Seed        int64
	Steps       int
	TotalReward float64
	Collision   bool
	Distance    float64
}

// RunEpisode resets e with seed and steps it with p until the episode ends.
func RunEpisode(e *env.Env, p policy.Policy, seed int64) (EpisodeResult, error) {
	obs, err := e.Reset(seed)
	if err != nil {
		return EpisodeResult{}, err
	}
	result := EpisodeResult{RunID: e.RunID(), Seed: seed}
	for {
		res, err := e.Step(p.Act(obs))
		if err != nil {
			return result, err
		}
		result.Steps++
		result.TotalReward += res.Reward
		result.Collision = res.Collision
		result.Distance = res.State.Ego.DistanceTraveled
		obs = res.Observation
		if res.Terminated || res.Truncated {
			return result, nil
		}
	}
}

func printEpisode(w io.Writer, e *env.Env, r EpisodeResult) {
	fmt.Fprintf(w, "Episode %s (seed %d): steps=%d reward=%.2f collision=%v distance=%.2f\n",
		r.RunID, r.Seed, r.Steps, r.TotalReward, r.Collision, r.Distance)
	e.Metrics().Print(w)
	if tr := e.Trace(); tr.Enabled() {
		s := trace.Summarize(tr)
		fmt.Fprintln(w, "=== Decision Trace ===")
		fmt.Fprintf(w, "Lane-change evaluations: %d (accepted %d, rejected %d)\n",
			s.Evaluations, s.AcceptedCount, s.RejectedCount)
		for _, reason := range []string{"off-corridor", "unsafe", "no-incentive"} {
			if n := s.RejectionReasons[reason]; n > 0 {
				fmt.Fprintf(w, "  %-14s: %d\n", reason, n)
			}
		}
		fmt.Fprintf(w, "Spawns: %d (mean free gap %.2f)\n", s.TotalSpawns, s.MeanSpawnGap)
	}
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed of the first episode; episode i uses seed+i")
	runCmd.Flags().IntVar(&episodes, "episodes", 1, "Number of episodes to run")
	runCmd.Flags().StringVar(&policyName, "policy", "cautious", "Driving policy ("+strings.Join(policy.ValidPolicyNames(), ", ")+")")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Decision trace level (none, decisions)")
	runCmd.Flags().BoolVar(&checkInvariants, "check-invariants", false, "Verify post-tick invariants every step")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "Episode step limit (overrides the scenario)")
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to a YAML scenario file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(describeCmd)
}
