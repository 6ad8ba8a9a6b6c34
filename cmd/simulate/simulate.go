// Package simulate is a subcommand of the root command. It runs the core
// timing engine in-process against an in-process feeder stub, for
// development, testing and single-binary deployment.
package simulate

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"oosim/internal/app"
	"oosim/internal/config"
	"oosim/internal/feeder"
	"oosim/internal/progress"
	"oosim/internal/sim"
	"oosim/internal/stats"
	"oosim/internal/trace"
)

const cmdName = "simulate"

var examples = []string{
	fmt.Sprintf("  Run with a config file:               $ %s %s --config core.yaml", app.Name, cmdName),
	fmt.Sprintf("  Bound the run and dump stats to disk:  $ %s %s --config core.yaml --max-cycles 5000000 --stats-out stats.txt", app.Name, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Run the timing simulator in-process against a synthetic instruction stream",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var (
	flagConfig    string
	flagCores     int
	flagMaxCycles uint64
	flagStatsOut  string
	flagLive      bool
)

func init() {
	Cmd.Flags().StringVar(&flagConfig, "config", "", "path to the core/uncore YAML configuration file (required)")
	Cmd.Flags().IntVar(&flagCores, "cores", 0, "number of synthetic-feeder cores to simulate; 0 uses the config file's core count")
	Cmd.Flags().Uint64Var(&flagMaxCycles, "max-cycles", 0, "stop after this many cycles; 0 uses the config file's max_cycles")
	Cmd.Flags().StringVar(&flagStatsOut, "stats-out", "-", "where to write the final stats dump; '-' means stderr")
	Cmd.Flags().BoolVar(&flagLive, "live", false, "show a live per-core cycle/IPC dashboard while running")
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if flagConfig == "" {
		return fmt.Errorf("--config is required")
	}
	if flagCores < 0 {
		return fmt.Errorf("--cores must not be negative")
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if flagCores > 0 {
		cfg.Cores = expandOrTrimCores(cfg.Cores, flagCores)
	}
	maxCycles := flagMaxCycles
	if maxCycles == 0 {
		maxCycles = cfg.MaxCycles
	}

	var sink trace.Sink = trace.Discard{}
	if debugFlag := cmd.Root().PersistentFlags().Lookup(app.FlagDebugName); debugFlag != nil && debugFlag.Changed {
		sink = trace.SlogSink{}
	}

	feeders := make([]feeder.Feeder, len(cfg.Cores))
	for i := range cfg.Cores {
		feeders[i] = feeder.NewStub(1_000_000)
	}

	simulator, err := sim.New(cfg, feeders, sink)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	var dashboard = progress.NewMultiSpinner()
	if flagLive {
		for _, c := range simulator.Cores() {
			_ = dashboard.AddSpinner(fmt.Sprintf("core %d", c.ID))
		}
		dashboard.Start()
		defer dashboard.Finish()
	}

	simulator.Run(maxCycles, func(cycle uint64) {
		if !flagLive {
			return
		}
		for _, c := range simulator.Cores() {
			retired := c.Stats().Get("instructions_retired")
			ipc := 0.0
			if c.Cycle() > 0 {
				ipc = float64(retired) / float64(c.Cycle())
			}
			label := fmt.Sprintf("core %d", c.ID)
			_ = dashboard.Status(label, fmt.Sprintf("cycle=%d ipc=%.3f", c.Cycle(), ipc))
			_ = dashboard.Detail(label, topStallReason(c.Stats()))
		}
	})

	slog.Info("simulation complete", slog.Uint64("cycles", simulator.UncoreStats().Get("cycles")))
	return writeStats(simulator)
}

// topStallReason formats the stall_reason bucket with the most
// occurrences so far this run as "stall=<name>(<count>)", e.g.
// "stall=rob_full(12)", for display alongside a core's cycle/IPC summary.
// It returns "" while a core hasn't stalled at all yet.
func topStallReason(db *stats.DB) string {
	buckets := db.DistBuckets("stall_reason")
	best, bestCount := "", uint64(0)
	for reason, count := range buckets {
		if count > bestCount || (count == bestCount && reason < best) {
			best, bestCount = reason, count
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf("stall=%s(%d)", best, bestCount)
}

// expandOrTrimCores repeats or truncates the configured core templates to
// match requested, so --cores N can scale a single-core YAML file up or
// down without hand-duplicating sections.
func expandOrTrimCores(cores []config.CoreConfig, requested int) []config.CoreConfig {
	if len(cores) == 0 || requested == len(cores) {
		return cores
	}
	out := make([]config.CoreConfig, requested)
	for i := range out {
		out[i] = cores[i%len(cores)]
	}
	return out
}

func writeStats(s *sim.Simulator) error {
	var w *os.File
	if flagStatsOut == "-" {
		w = os.Stderr
	} else {
		f, err := os.Create(flagStatsOut)
		if err != nil {
			return fmt.Errorf("opening stats output %s: %w", flagStatsOut, err)
		}
		defer f.Close()
		w = f
	}
	for i, db := range s.CoreStats() {
		if err := stats.RenderText(w, fmt.Sprintf("core %d", i), db); err != nil {
			return err
		}
	}
	return stats.RenderText(w, "uncore", s.UncoreStats())
}
