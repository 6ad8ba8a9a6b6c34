package core

import (
	"log/slog"

	"oosim/internal/bpred"
	"oosim/internal/cache"
	"oosim/internal/config"
	"oosim/internal/memdep"
	"oosim/internal/mop"
	"oosim/internal/oracle"
	"oosim/internal/repeater"
	"oosim/internal/stats"
	"oosim/internal/trace"
	"oosim/internal/uncore"
)

// Core is one out-of-order superscalar pipeline: fetch, decode,
// allocate/rename, execute and commit, plus the structures they share.
// One Core exists per simulated hardware thread; internal/sim drives its
// Tick once per core cycle, per the core:uncore clock ratio.
type Core struct {
	ID     int
	cfg    config.CoreConfig
	oracle *oracle.Oracle
	bpredM *bpred.Meta
	memdep memdep.Predictor

	il1  *cache.Cache
	dl1  *cache.Cache
	itlb *cache.TLB
	dtlb *cache.TLB

	rob *ROB
	rs  *RS
	ldq *LDQ
	stq *STQ

	// regProducer is the rename table: logical register name to the uop
	// currently set to produce it, consulted and updated by linkDataflow
	// at allocate time to wire each uop's real source dependencies.
	regProducer map[int]regProducerEntry

	fuALU    *FUPipe
	fuBr     *FUPipe
	fuFP     *FUPipe
	fuAgu    *FUPipe
	loadFill *FUPipe

	pendingFills []pendingFill
	uncore       *uncore.Uncore
	repeater     repeater.Policy

	// pendingPredictions holds the full fetch-time prediction (including
	// the per-direction-predictor votes needed to train them) for every
	// branch still in flight, keyed by sequence number until it commits.
	pendingPredictions map[mop.SeqNum]bpred.Prediction

	actionID mop.ActionID
	cycle    uint64

	// fetchPC/fetchPCValid track the PC fetch believes comes next, driven
	// by its own branch predictions rather than the oracle's true stream;
	// fetchPCValid is false only before the very first fetch of a run,
	// when there is nothing yet to predict from.
	fetchPC      uint64
	fetchPCValid bool

	fetchBuf  []*mop.Mop // fetched this cycle, awaiting decode
	decodeBuf []*mop.Mop // decoded this cycle, awaiting allocate

	branchesThisCycle int

	stats *stats.DB
	trace trace.Sink

	deadlockCounter uint64
	lastRetireCycle uint64

	done bool
}

// SetUncore wires this core's private hierarchy to the shared uncore,
// used for DL1-miss latency. A Core with no uncore wired falls back to a
// fixed memory latency estimate, which keeps the core package usable on
// its own in tests.
func (c *Core) SetUncore(u *uncore.Uncore) { c.uncore = u }

// New constructs a Core from its configuration, fetching its instruction
// stream from the given Oracle.
func New(id int, cfg config.CoreConfig, o *oracle.Oracle, statsDB *stats.DB, sink trace.Sink) (*Core, error) {
	il1Spec, err := config.ParseCacheSpec(cfg.IL1)
	if err != nil {
		return nil, err
	}
	dl1Spec, err := config.ParseCacheSpec(cfg.DL1)
	if err != nil {
		return nil, err
	}
	itlbSpec, err := config.ParseTLBSpec(cfg.ITLB)
	if err != nil {
		return nil, err
	}
	dtlbSpec, err := config.ParseTLBSpec(cfg.DTLB)
	if err != nil {
		return nil, err
	}

	c := &Core{
		ID:                 id,
		cfg:                cfg,
		oracle:             o,
		bpredM:             bpred.NewMeta([]string{cfg.BPredDirection}, cfg.BPredFusion, cfg.BTBSets, cfg.BTBWays, cfg.IndirectSets, cfg.RASSize, cfg.RASKind),
		memdep:             memdep.New(cfg.MemDep),
		repeater:           repeater.New(cfg.Repeater),
		il1:                cache.New(il1Spec, "none", "none"),
		dl1:                cache.New(dl1Spec, "none", "stream"),
		itlb:               cache.NewTLB(itlbSpec, 12),
		dtlb:               cache.NewTLB(dtlbSpec, 12),
		rob:                NewROB(cfg.ROBSize),
		rs:                 NewRS(cfg.RSSize),
		ldq:                NewLDQ(cfg.LDQSize),
		stq:                NewSTQ(cfg.STQSize),
		regProducer:        make(map[int]regProducerEntry),
		fuALU:              NewFUPipe(),
		fuBr:               NewFUPipe(),
		fuFP:               NewFUPipe(),
		fuAgu:              NewFUPipe(),
		loadFill:           NewFUPipe(),
		stats:              statsDB,
		trace:              sink,
		pendingPredictions: make(map[mop.SeqNum]bpred.Prediction),
	}
	if c.trace == nil {
		c.trace = trace.Discard{}
	}
	return c, nil
}

// Done reports whether this core has retired every instruction the
// oracle will ever produce.
func (c *Core) Done() bool {
	return c.done
}

// Cycle returns the number of cycles this core has ticked so far.
func (c *Core) Cycle() uint64 { return c.cycle }

// Stats returns this core's Stats DB, for callers (a live dashboard, the
// harness's exit reporting) that need to read counters without reaching
// into the core's internals.
func (c *Core) Stats() *stats.DB { return c.stats }

// Tick advances the core by exactly one cycle, running commit before
// execute before allocate before decode before fetch — the classic
// reverse-pipeline-order evaluation that lets a stage see this cycle's
// downstream effects (e.g. a freed ROB slot) before upstream stages
// decide how much to admit.
func (c *Core) Tick() {
	c.cycle++
	c.branchesThisCycle = 0

	c.commitStage()
	c.executeStage()
	c.allocStage()
	c.decodeStage()
	c.fetchStage()

	c.stats.Inc("cycles", 1)
	c.checkDeadlock()

	if c.rob.Empty() && c.oracle.AtEOF() && len(c.fetchBuf) == 0 && len(c.decodeBuf) == 0 {
		c.done = true
	}
}

// checkDeadlock records a core_event=deadlock_suspected stat on every
// cycle on which nothing has retired for more than deadlockThreshold
// cycles while the ROB is non-empty; a stall that persists far longer
// than any real backpressure condition should ever last indicates a bug
// in pipeline bookkeeping rather than legitimate congestion, and is
// reported at Info level rather than silently hanging the simulation
// forever.
func (c *Core) checkDeadlock() {
	if c.cycle-c.lastRetireCycle > deadlockThreshold && !c.rob.Empty() {
		c.stats.IncDist("core_event", "deadlock_suspected")
		if c.cycle-c.lastRetireCycle == deadlockThreshold+1 {
			slog.Info("core deadlock suspected", slog.Int("core", c.ID), slog.Uint64("cycle", c.cycle))
		}
	}
}

const deadlockThreshold = 100000
