// Package oracle implements the run-ahead execution engine that sits
// between a feeder.Feeder and the timing core: it fetches instructions
// arbitrarily far ahead of the timing core's actual commit point,
// resolves their data values and branch outcomes immediately (functional
// execution, not timed), and hands them to the core's fetch stage one at
// a time in program order. When the core discovers a branch mispredict it
// calls Recover to roll the oracle back to the mispredicting branch's
// successor and refetch from there; when the core squashes the entire
// pipeline (e.g. an exception) it calls CompleteFlush.
package oracle

import (
	"oosim/internal/feeder"
	"oosim/internal/mop"
)

// Oracle owns the shadow Mop queue: a window of Mops fetched and
// functionally executed ahead of the core's timing model.
type Oracle struct {
	src feeder.Feeder

	shadow   *shadowQueue
	mem      *SpeculativeMemory
	nextSeq  mop.SeqNum
	action   mop.ActionID
	eof      bool

	// specMode is set once fetch has asked ConsumeAt for a PC that
	// diverged from the true next Mop's PC, and cleared by Recover: while
	// set, ConsumeAt synthesizes bogus straight-line Mops at whatever PC
	// it is asked for instead of touching the feeder at all, since the
	// true stream can't be resumed until the core resolves the
	// mispredict and calls Recover.
	specMode bool
}

// New constructs an Oracle reading from src, with a shadow window capable
// of holding windowSize in-flight Mops.
func New(src feeder.Feeder, windowSize int) *Oracle {
	return &Oracle{
		src:    src,
		shadow: newShadowQueue(windowSize),
		mem:    NewSpeculativeMemory(),
	}
}

// ActionID returns the oracle's current action tag; every Mop it hands out
// carries this value until the next Recover/CompleteFlush bumps it.
func (o *Oracle) ActionID() mop.ActionID { return o.action }

// AtEOF reports whether the underlying feeder has run dry and the shadow
// queue is empty, meaning fetch can never again receive a new Mop from
// this oracle.
func (o *Oracle) AtEOF() bool {
	return o.eof && o.shadow.empty()
}

// Exec pulls the next Mop from the feeder, stamps its sequence number and
// action tag, records its memory accesses in the speculative side table
// and pushes it onto the shadow queue. Its branch outcome and addresses
// arrive already resolved from the feeder, long before the timing core
// executes it. The timing core's fetch stage calls Consume to actually
// receive Mops; Exec is driven internally by Consume when the shadow
// queue needs refilling, and can also be called directly to prime the
// window before simulation starts.
func (o *Oracle) Exec() (*mop.Mop, bool) {
	if o.eof {
		return nil, false
	}
	m, ok := o.src.GetNextMop()
	if !ok {
		o.eof = true
		return nil, false
	}
	m.Seq = o.nextSeq
	o.nextSeq++
	m.Action = o.action
	for i := range m.Uops {
		// Addresses are resolved by the feeder before the Mop reaches the
		// oracle; the oracle's job is only to keep its speculative memory
		// side table consistent with what it has handed out so far.
		if m.Uops[i].IsLoad {
			_, _ = o.mem.Load(m.Uops[i].Addr, m.Uops[i].Size)
		}
		if m.Uops[i].IsStore {
			o.mem.Store(m.Uops[i].Addr, m.Uops[i].Size, nil)
		}
	}
	o.shadow.push(m)
	return m, true
}

// Consume returns the next Mop in program order for the timing core's
// fetch stage, refilling the shadow queue from the feeder as needed. It
// returns ok=false if the oracle has no Mop ready (shadow window
// exhausted because the feeder is temporarily dry, or true EOF).
func (o *Oracle) Consume() (*mop.Mop, bool) {
	if m, ok := o.shadow.peekUnconsumed(); ok {
		o.shadow.advanceConsumed()
		return m, true
	}
	if _, ok := o.Exec(); !ok {
		return nil, false
	}
	return o.Consume()
}

// ConsumeAt is Consume's speculation-aware counterpart: fetch calls it
// with the PC it actually intends to fetch from, which may be wrong if
// an earlier branch's prediction diverges from where the program really
// goes. If requestedPC matches the true next Mop's PC (or the oracle is
// already synthesizing wrong-path work), this behaves like Consume; on a
// mismatch it enters spec_mode and returns a synthesized placeholder Mop
// for requestedPC instead of ever touching the feeder, so fetch can keep
// moving down the wrong path until the core notices the mispredict and
// calls Recover. Every synthesized Mop is a straight-line one-uop ALU nop
// with no real functional content — it exists only to occupy pipeline
// slots the hardware would have occupied the same way, and carries
// SpecMode so it is never allowed to retire architecturally.
func (o *Oracle) ConsumeAt(requestedPC uint64) (*mop.Mop, bool) {
	if o.specMode {
		return o.synthesize(requestedPC), true
	}
	m, ok := o.peekNext()
	if !ok {
		return nil, false
	}
	if m.PC != requestedPC {
		o.specMode = true
		return o.synthesize(requestedPC), true
	}
	o.shadow.advanceConsumed()
	return m, true
}

// peekNext returns the oldest unconsumed shadow entry, refilling from the
// feeder first if the shadow queue has nothing left to offer.
func (o *Oracle) peekNext() (*mop.Mop, bool) {
	if m, ok := o.shadow.peekUnconsumed(); ok {
		return m, true
	}
	if _, ok := o.Exec(); !ok {
		return nil, false
	}
	return o.peekNext()
}

// synthesize builds a wrong-path placeholder Mop at pc. It is never
// pushed onto the shadow queue (Commit/Recover have nothing real to track
// for it) and carries its own action tag so the pipeline's ordinary
// action-id discipline recognizes and discards it the moment the real
// squash arrives.
func (o *Oracle) synthesize(pc uint64) *mop.Mop {
	seq := o.nextSeq
	o.nextSeq++
	return &mop.Mop{
		Seq:      seq,
		PC:       pc,
		NextPC:   pc + 4,
		Action:   o.action,
		SpecMode: true,
		BOM:      true,
		EOM:      true,
		Uops:     []mop.Uop{{Class: mop.ClassNop, Latency: 1}},
	}
}

// Commit notifies the oracle that the core has retired the Mop with the
// given sequence number, letting the shadow queue drop it. The
// speculative memory side table is left unchanged.
func (o *Oracle) Commit(seq mop.SeqNum) {
	o.shadow.retire(seq)
}

// Recover rolls the oracle back to just after mispredictSeq: every Mop
// fetched after it is dropped from the shadow queue and the feeder's
// architectural state is not affected (the feeder already resolved the
// correct control flow; this only rewinds the oracle's own lookahead
// bookkeeping and action tag so stale in-flight Mops are recognizable as
// such wherever the timing core still holds references to them).
func (o *Oracle) Recover(mispredictSeq mop.SeqNum) {
	o.shadow.truncateAfter(mispredictSeq)
	o.action++
	o.specMode = false
}

// CompleteFlush discards the entire shadow queue and bumps the action id,
// used for a full-pipeline squash (e.g. an exception) rather than a
// single branch mispredict.
func (o *Oracle) CompleteFlush() {
	o.shadow.clear()
	o.action++
	o.specMode = false
}
