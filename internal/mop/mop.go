// Package mop defines the instruction/micro-op data model shared by every
// pipeline stage: the oracle, fetch, decode, allocate, execute and commit.
package mop

// ActionID is a per-core monotonically increasing tag. Every in-flight Mop
// and every event queued against a latency model (cache access, bus
// transfer, FU pipe) carries the ActionID that was current when it was
// created. A squash bumps the core's current ActionID; any event that
// arrives carrying a stale ActionID is a no-op rather than a crash or a
// silent corruption of now-unrelated state.
type ActionID uint64

// SeqNum is the oracle-assigned, strictly increasing program-order sequence
// number of a Mop. It is assigned once, when the oracle first functionally
// executes the Mop; a branch mispredict recovery replays the same Mop
// (and the same SeqNum) to the timing core rather than re-running it
// through the oracle a second time, since the oracle's own resolution of
// it was already correct.
type SeqNum uint64

// Class distinguishes the handful of op shapes the pipeline must special
// case: memory ops need LDQ/STQ slots, branches need BTB/RAS interaction,
// fused ops need slot accounting at commit.
type Class int

const (
	ClassALU Class = iota
	ClassLoad
	ClassStore
	ClassStoreAddress // STA half of a fused or split store
	ClassStoreData    // STD half of a fused or split store
	ClassBranch
	ClassFP
	ClassNop
)

func (c Class) String() string {
	switch c {
	case ClassALU:
		return "alu"
	case ClassLoad:
		return "load"
	case ClassStore:
		return "store"
	case ClassStoreAddress:
		return "sta"
	case ClassStoreData:
		return "std"
	case ClassBranch:
		return "branch"
	case ClassFP:
		return "fp"
	case ClassNop:
		return "nop"
	default:
		return "unknown"
	}
}

// IsMemory reports whether this uop needs an LDQ or STQ slot.
func (c Class) IsMemory() bool {
	return c == ClassLoad || c == ClassStore || c == ClassStoreAddress || c == ClassStoreData
}

// Uop is one decoded micro-operation. A Mop decodes into one or more Uops;
// fused Mops (load+op, sta+std, load+op+store, fp load+op) carry more than
// one Uop while consuming a single ROB/commit slot.
type Uop struct {
	Class   Class
	Ports   []int // eligible execution ports, in preference order
	Latency int   // functional-unit pipe latency in cycles, 0 if memory-timed elsewhere

	// Dataflow linkage. SrcRegs/DstRegs are the logical register names
	// this uop reads/writes, supplied by the feeder at decode time;
	// allocate/rename walks them to build WaitingOn and Odep below.
	SrcRegs []int
	DstRegs []int

	// Memory-only fields.
	IsLoad  bool
	IsStore bool
	Addr    uint64 // valid once the address-generation uop has executed
	Size    int    // access size in bytes

	// Scheduling state, mutated in place by exec. WaitingOn is the count
	// of not-yet-executed producers this uop's source registers were
	// linked to at allocate time; it reaches 0 (issue-eligible) either
	// immediately, if every source was already available, or as each
	// producer in Odep completes and decrements it. Odep is this uop's
	// own list of consumers to notify the same way once it completes.
	WaitingOn    int
	Odep         []*Uop
	Ready        bool
	Issued       bool
	Executed     bool
	WhenReady    uint64
	WhenIssued   uint64
	WhenExecuted uint64
}

// Mop is one macro-instruction as carried through the pipeline. Mop.Seq is
// the oracle's program-order key; the oracle, fetch and commit stages all
// index in-flight instructions by it.
type Mop struct {
	Seq    SeqNum
	PC     uint64
	NextPC uint64 // architectural fall-through, set by decode
	Size   int    // instruction byte length

	Uops []Uop
	BOM  bool // beginning-of-macro-op marker on Uops[0]
	EOM  bool // end-of-macro-op marker on Uops[len-1]

	IsBranch    bool
	IsCall      bool
	IsReturn    bool
	IsIndirect  bool
	Taken       bool   // resolved outcome, supplied by the feeder
	TargetPC    uint64 // resolved target, supplied by the feeder

	// Prediction made at fetch time, compared against Taken/TargetPC at
	// commit to decide whether a squash is needed and to train the
	// predictor.
	PredTaken       bool
	PredTarget      uint64
	PredTargetValid bool

	// Per-instance action tag: the core's ActionID at fetch time. A Mop
	// whose Action differs from the core's current ActionID is stale and
	// must be dropped wherever it is found (RS, LDQ, STQ, ROB, FU pipe).
	Action ActionID

	// SpecMode marks a Mop the oracle synthesized because fetch asked for
	// a PC that diverged from the true next instruction: a placeholder for
	// wrong-path work the hardware would have issued down a mispredicted
	// branch before it resolves. It carries no real functional content and
	// is always squashed before it could retire.
	SpecMode bool

	// Pipeline timestamps: each When* field, once set, is non-decreasing
	// and non-zero only after the corresponding stage has processed this
	// Mop.
	WhenFetched    uint64
	WhenDecoded    uint64
	WhenAllocated  uint64
	WhenCommitted  uint64

	// ROB/LDQ/STQ slot indices, assigned by allocate; -1 means "no slot of
	// this kind".
	ROBIndex int
	LDQIndex int
	STQIndex int
}

// NumROBSlots returns the number of ROB entries this Mop consumes at
// commit. Fused macro-ops (more than one Uop) still retire as a single
// unit and consume exactly one slot; non-fused single-uop Mops also
// consume one. The distinction matters only for decode/allocate width
// accounting, where a fused Mop occupies one decode/rename slot while
// carrying multiple Uops through exec.
func (m *Mop) NumROBSlots() int {
	return 1
}

// IsFused reports whether this Mop carries more than one Uop (sta+std,
// load+op, load+op+store, fp-load+op).
func (m *Mop) IsFused() bool {
	return len(m.Uops) > 1
}

// Stale reports whether this Mop's action tag no longer matches the core's
// current action id, meaning it belongs to a squashed path.
func (m *Mop) Stale(current ActionID) bool {
	return m.Action != current
}

// AllUopsExecuted reports whether every constituent Uop has completed
// execution, the precondition for this Mop to be eligible for commit.
func (m *Mop) AllUopsExecuted() bool {
	for i := range m.Uops {
		if !m.Uops[i].Executed {
			return false
		}
	}
	return true
}
