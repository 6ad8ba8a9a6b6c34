// Package harness is a subcommand of the root command. It spawns N feeder
// processes and one simulator process, rendezvousing them through a
// shared-memory handshake before releasing them to run.
package harness

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"oosim/internal/app"
	"oosim/internal/feeder"
)

const cmdName = "harness"

var examples = []string{
	fmt.Sprintf("  Run a 4-process multi-process simulation:  $ %s %s --benchmark_cfg run.yaml --num_processes 4", app.Name, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Spawn a multi-process feeder/simulator run and rendezvous the children",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var (
	flagBenchmarkCfg  string
	flagNumProcesses  int
	flagArriveTimeout time.Duration
)

func init() {
	Cmd.Flags().StringVar(&flagBenchmarkCfg, "benchmark_cfg", "", "path to the benchmark configuration file (required)")
	Cmd.Flags().IntVar(&flagNumProcesses, "num_processes", 1, "number of feeder processes to spawn")
	Cmd.Flags().DurationVar(&flagArriveTimeout, "arrive_timeout", 30*time.Second, "how long to wait for every child to reach the handshake before giving up")
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if flagBenchmarkCfg == "" {
		return fmt.Errorf("--benchmark_cfg is required")
	}
	if flagNumProcesses < 1 {
		return fmt.Errorf("--num_processes must be at least 1")
	}
	return nil
}

// childProc tracks one spawned child so its exit can be reported once the
// run finishes.
type childProc struct {
	name string
	cmd  *exec.Cmd
}

func runCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadBenchmarkConfig(flagBenchmarkCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	// participants = every feeder process plus the one simulator process
	hs, err := feeder.NewHandshake(cfg.RunID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	defer hs.Close()
	if err := hs.Init(uint64(flagNumProcesses + 1)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	self, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	var children []childProc
	for i := 0; i < flagNumProcesses; i++ {
		args := append([]string{}, cfg.FeederArgs...)
		args = append(args, "--run-id", cfg.RunID, "--slot", strconv.Itoa(i))
		c := exec.Command(cfg.FeederExe, args...) // #nosec G204
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Start(); err != nil {
			return fmt.Errorf("spawning feeder %d: %w", i, err)
		}
		children = append(children, childProc{name: fmt.Sprintf("feeder-%d", i), cmd: c})
	}

	simArgs := []string{"simulate", "--config", cfg.SimConfig}
	simCmd := exec.Command(self, simArgs...) // #nosec G204
	simCmd.Stdout = os.Stdout
	simCmd.Stderr = os.Stderr
	if err := simCmd.Start(); err != nil {
		killAll(children)
		return fmt.Errorf("spawning simulator: %w", err)
	}
	children = append(children, childProc{name: "simulator", cmd: simCmd})

	slog.Info("harness: waiting for children to reach the handshake", slog.Int("participants", flagNumProcesses+1))
	ctx, cancel := context.WithTimeout(context.Background(), flagArriveTimeout)
	defer cancel()
	if err := hs.Wait(ctx); err != nil {
		slog.Error("harness: timed out waiting for children to arrive", slog.String("error", err.Error()))
		killAll(children)
		return err
	}
	slog.Info("harness: all children arrived, run proceeding")

	return waitAll(children)
}

// waitAll blocks on every child concurrently and returns a non-nil error
// (after every child has been given a chance to exit) if any of them
// failed, so the process exits 1 on any child failure.
func waitAll(children []childProc) error {
	var wg sync.WaitGroup
	errs := make([]error, len(children))
	for i, ch := range children {
		wg.Add(1)
		go func(i int, ch childProc) {
			defer wg.Done()
			errs[i] = ch.cmd.Wait()
		}(i, ch)
	}
	wg.Wait()

	var failed []string
	for i, err := range errs {
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", children[i].name, err))
			slog.Error("harness: child exited with error", slog.String("child", children[i].name), slog.String("error", err.Error()))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("harness: %d of %d children failed: %s", len(failed), len(children), strings.Join(failed, "; "))
	}
	return nil
}

func killAll(children []childProc) {
	for _, ch := range children {
		if ch.cmd.Process != nil {
			_ = ch.cmd.Process.Kill()
		}
	}
}
