package feeder

import "oosim/internal/mop"

// Stub is a deterministic in-process Feeder that synthesizes a Mop stream
// without any external process, used by `oosim simulate` for development,
// testing and single-binary deployment. It generates a simple
// straight-line-with-branches instruction stream long enough to exercise
// the pipeline, rather than reading a real trace.
type Stub struct {
	pc       uint64
	nextSeq  mop.SeqNum
	maxMops  int
	produced int

	branchEvery  int // every Nth Mop is a branch back branchSpan bytes
	branchSpan   uint64
	loopsTaken   int
	loopsWanted  int
}

// numLogicalRegs bounds the register names Stub hands out; small enough
// that the rename table in core/rename.go sees real producer reuse (and
// so real RAW dependency chains) rather than every uop looking
// independent.
const numLogicalRegs = 16

// NewStub builds a Stub feeder that will emit at most maxMops Mops,
// periodically emitting a backward branch to exercise fetch redirection
// and the bpred/oracle recovery paths.
func NewStub(maxMops int) *Stub {
	return &Stub{
		pc:          0x400000,
		maxMops:     maxMops,
		branchEvery: 16,
		branchSpan:  16 * 4,
		loopsWanted: 4,
	}
}

func (s *Stub) GetNextMop() (*mop.Mop, bool) {
	if s.produced >= s.maxMops {
		return nil, false
	}
	s.produced++
	seq := s.nextSeq
	s.nextSeq++

	m := &mop.Mop{
		Seq:    seq,
		PC:     s.pc,
		NextPC: s.pc + 4,
		Size:   4,
	}

	// Each ALU uop reads the register the previous one wrote and writes
	// the next slot in the ring, so allocate-time dataflow linkage has a
	// genuine read-after-write chain to link rather than independent
	// uops that are always immediately issue-eligible.
	dst := s.produced % numLogicalRegs
	src := (s.produced - 1 + numLogicalRegs) % numLogicalRegs

	isBranch := s.branchEvery > 0 && s.produced%s.branchEvery == 0 && s.loopsTaken < s.loopsWanted
	if isBranch {
		m.IsBranch = true
		target := s.pc - s.branchSpan
		m.TargetPC = target
		m.Taken = true
		m.Uops = []mop.Uop{{Class: mop.ClassBranch, Latency: 1, SrcRegs: []int{src}}}
		s.loopsTaken++
		s.pc = target
	} else {
		m.Uops = []mop.Uop{{Class: mop.ClassALU, Latency: 1, SrcRegs: []int{src}, DstRegs: []int{dst}}}
		s.pc = m.NextPC
	}
	m.BOM = true
	m.EOM = true
	return m, true
}

func (s *Stub) CommitStore(addr uint64, size int, data []byte) {}
func (s *Stub) NotifyMmap(addr uint64, length uint64, prot int) {}
func (s *Stub) NotifyMunmap(addr uint64, length uint64)         {}
func (s *Stub) UpdateBrk(newBrk uint64)                         {}
func (s *Stub) MapStack(base, size uint64)                      {}
func (s *Stub) WarmLLC()                                        {}
func (s *Stub) SliceStart()                                     {}
func (s *Stub) SliceEnd()                                       {}
