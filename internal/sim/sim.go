// Package sim implements the top-level Simulator: it wires each core's
// oracle to a feeder, shares a single uncore across every core, and owns
// the master tick loop that steps every core one cycle at a time.
package sim

import (
	"fmt"

	"oosim/internal/config"
	"oosim/internal/core"
	"oosim/internal/dvfs"
	"oosim/internal/feeder"
	"oosim/internal/oracle"
	"oosim/internal/stats"
	"oosim/internal/trace"
	"oosim/internal/uncore"
)

// dvfsSampleWindow is the number of core cycles between DVFS policy
// samples; sampling every cycle would make the phase-detection window
// meaningless, since IPC over one cycle is always 0 or 1 per issue slot.
const dvfsSampleWindow = 10000

// minRunAheadWindow bounds how small an oracle's shadow queue can be
// regardless of a core's configured ROB size, since a window narrower
// than the fetch/decode/alloc buffers themselves would starve fetch
// every cycle.
const minRunAheadWindow = 64

// Simulator owns every core in a run plus the uncore they share.
type Simulator struct {
	cfg    *config.Config
	cores  []*core.Core
	uncore *uncore.Uncore

	coreStats   []*stats.DB
	uncoreStats *stats.DB

	dvfsPolicies []dvfs.Policy
	clockRatios  []int
	lastRetired  []uint64
}

// New builds a Simulator from cfg, one feeder per configured core. len(feeders)
// must equal len(cfg.Cores).
func New(cfg *config.Config, feeders []feeder.Feeder, sink trace.Sink) (*Simulator, error) {
	if len(feeders) != len(cfg.Cores) {
		return nil, fmt.Errorf("sim: %d feeders for %d configured cores", len(feeders), len(cfg.Cores))
	}
	u, err := uncore.New(cfg.Uncore)
	if err != nil {
		return nil, fmt.Errorf("sim: building uncore: %w", err)
	}

	s := &Simulator{
		cfg:         cfg,
		uncore:      u,
		uncoreStats: stats.NewDB(),
	}
	for i, cc := range cfg.Cores {
		window := cc.ROBSize * 2
		if window < minRunAheadWindow {
			window = minRunAheadWindow
		}
		o := oracle.New(feeders[i], window)
		statsDB := stats.NewDB()
		c, err := core.New(i, cc, o, statsDB, sink)
		if err != nil {
			return nil, fmt.Errorf("sim: building core %d (%s): %w", i, cc.Name, err)
		}
		c.SetUncore(u)

		s.cores = append(s.cores, c)
		s.coreStats = append(s.coreStats, statsDB)
		s.dvfsPolicies = append(s.dvfsPolicies, dvfs.New(cc.DVFS, cfg.ClockRatio))
		s.clockRatios = append(s.clockRatios, cfg.ClockRatio)
		s.lastRetired = append(s.lastRetired, 0)
	}
	return s, nil
}

// CoreStats returns the per-core Stats DB, in core index order.
func (s *Simulator) CoreStats() []*stats.DB { return s.coreStats }

// UncoreStats returns the shared uncore's Stats DB.
func (s *Simulator) UncoreStats() *stats.DB { return s.uncoreStats }

// Cores returns the simulator's cores, in index order, for callers that
// need read-only per-core status (e.g. a live progress dashboard).
func (s *Simulator) Cores() []*core.Core { return s.cores }

// Run advances every core one cycle at a time until every core reports
// Done or cycle reaches maxCycles (0 means unbounded: run until every
// core's feeder is exhausted or a deadlock is reported). onTick, if
// non-nil, is called once per cycle after every core has ticked, letting
// a caller drive a live dashboard without this package depending on any
// particular rendering library.
func (s *Simulator) Run(maxCycles uint64, onTick func(cycle uint64)) {
	var cycle uint64
	for {
		allDone := true
		for _, c := range s.cores {
			if c.Done() {
				continue
			}
			allDone = false
			c.Tick()
		}
		cycle++
		s.uncoreStats.Inc("cycles", 1)

		if cycle%dvfsSampleWindow == 0 {
			s.sampleDVFS()
		}
		if onTick != nil {
			onTick(cycle)
		}
		if allDone {
			return
		}
		for _, db := range s.coreStats {
			if db.DistBuckets("core_event")["deadlock_suspected"] > 0 {
				return
			}
		}
		if maxCycles > 0 && cycle >= maxCycles {
			return
		}
	}
}

// sampleDVFS feeds each core's recent IPC to its DVFS policy and records
// any resulting clock-ratio change. The simulator's cores all still tick
// in the same lock-step clock domain; a ratio change is recorded as a stat
// so a "sample" policy's phase-detection behavior is observable, but it does
// not yet change how often a core's Tick is actually called relative to its
// peers.
func (s *Simulator) sampleDVFS() {
	for i := range s.cores {
		retired := s.coreStats[i].Get("instructions_retired")
		delta := retired - s.lastRetired[i]
		s.lastRetired[i] = retired
		ipc := float64(delta) / float64(dvfsSampleWindow)

		newRatio := s.dvfsPolicies[i].Sample(ipc, s.clockRatios[i])
		if newRatio != s.clockRatios[i] {
			s.clockRatios[i] = newRatio
			s.coreStats[i].Set("clock_ratio", uint64(newRatio))
		}
	}
}
