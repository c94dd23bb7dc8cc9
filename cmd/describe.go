package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fogdrive/fogdrive/sim"
	"github.com/fogdrive/fogdrive/sim/env"
)

// describeCmd prints the decision process the run command exposes, using
// the live configuration values.
var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Describe the state, action and reward structure",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		cfg := sim.DefaultConfig()
		if scenarioPath != "" {
			s, err := LoadScenario(scenarioPath)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			cfg = s.Config.ApplyTo(cfg)
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		Describe(os.Stdout, &cfg)
	},
}

func init() {
	describeCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to a YAML scenario file")
}

// Describe writes a plain-text summary of the episode process for cfg.
func Describe(w io.Writer, cfg *sim.Config) {
	obsLen := cfg.NumLanes + 2 + cfg.Sensor.Beams

	fmt.Fprintln(w, "fogdrive: foggy corridor driving")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STATE")
	fmt.Fprintf(w, "  Observation in [0,1]^%d:\n", obsLen)
	fmt.Fprintf(w, "    lane one-hot      %d dims\n", cfg.NumLanes)
	fmt.Fprintf(w, "    speed             (speed - %.1f) / %.1f\n", cfg.MinSpeed, cfg.MaxSpeed-cfg.MinSpeed)
	fmt.Fprintf(w, "    fog               level / %d\n", cfg.Fog.MaxLevel)
	fmt.Fprintf(w, "    ranges            %d beams over [%.3f, %.3f] rad, divided by the fog range\n",
		cfg.Sensor.Beams, -cfg.Sensor.HalfSpread, cfg.Sensor.HalfSpread)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "ACTIONS")
	fmt.Fprintf(w, "  Discrete(%d):\n", env.NumActions)
	for a := env.Action(0); int(a) < env.NumActions; a++ {
		d, _ := a.Delta()
		fmt.Fprintf(w, "    %d = %-11s lane %+d, speed %+.1f\n", int(a), a, d.Lane, float64(d.Speed)*cfg.SpeedStep)
	}
	fmt.Fprintf(w, "  Speed is clipped to [%.1f, %.1f]; lane to [0, %d].\n", cfg.MinSpeed, cfg.MaxSpeed, cfg.NumLanes-1)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "DYNAMICS")
	fmt.Fprintf(w, "  Traffic follows IDM (a=%.2f, b=%.2f, T=%.2f, s0=%.2f, delta=%.0f).\n",
		cfg.IDM.A, cfg.IDM.B, cfg.IDM.T, cfg.IDM.S0, cfg.IDM.Delta)
	fmt.Fprintf(w, "  Each vehicle past %.1f attempts a MOBIL lane change with probability %.2f\n",
		cfg.MOBIL.GuardZone, cfg.MOBIL.ChangeProbability)
	fmt.Fprintf(w, "  (safe braking limit %.2f, incentive threshold %.2f).\n",
		cfg.MOBIL.SafeBrakeLimit, cfg.MOBIL.IncentiveThreshold)
	fmt.Fprintf(w, "  Vehicles spawn beyond the visible horizon with probability %.2f per lane\n", cfg.Spawn.ProbabilityPerLane)
	fmt.Fprintf(w, "  when the lane has at least %.1f of free road, and leave outside (%.1f, %.1f).\n",
		cfg.Spawn.MinGap, -cfg.Spawn.DespawnMargin, cfg.CorridorLength+cfg.Spawn.DespawnMargin)
	fmt.Fprintf(w, "  Fog is redrawn uniformly from 0..%d with probability %.2f per step.\n",
		cfg.Fog.MaxLevel, cfg.Fog.ResampleProbability)
	for level := 0; level <= cfg.Fog.MaxLevel; level++ {
		fmt.Fprintf(w, "    fog %d: sensor range %.2f, noise scale %.4f\n", level, cfg.MaxRange(level),
			cfg.Sensor.BaseNoiseScale*(1+cfg.Sensor.FogNoiseMultiplier*float64(level)))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "INITIAL STATE")
	fmt.Fprintf(w, "  Ego lane uniform, speed %.1f, fog uniform.\n", (cfg.MinSpeed+cfg.MaxSpeed)/2)
	fmt.Fprintf(w, "  %d to %d random vehicles plus %d slow vehicles just ahead of the ego.\n",
		cfg.Population.MinVehicles, cfg.Population.MaxVehicles, cfg.Population.SlowVehicles)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "REWARD")
	fmt.Fprintln(w, "  r = ego speed after the action")
	fmt.Fprintf(w, "      - %.0f on collision (episode terminates)\n", env.CollisionPenalty)
	fmt.Fprintf(w, "      + %.0f on reaching %d steps without collision (episode truncates)\n",
		env.CompletionBonus, cfg.MaxSteps)
}
