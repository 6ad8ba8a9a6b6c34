// Package feeder defines the oracle's upstream collaborator contract and
// two implementations: an in-process deterministic stub used by `oosim
// simulate`, and a shared-memory-backed process feeder that reads from an
// external feeder process. No command constructs the process feeder.
package feeder

import "oosim/internal/mop"

// Feeder is the instruction source the oracle drives one Mop at a time.
// It mirrors an external feeder's interface: get_next_Mop, commit_store,
// notify_mmap/munmap, update_brk, map_stack, warm_llc, slice_start/end.
// The feeder's own decoding/disassembly internals are out of scope; only
// this contract is.
type Feeder interface {
	// GetNextMop returns the next Mop in program order for this core, or
	// ok=false at end of stream.
	GetNextMop() (m *mop.Mop, ok bool)
	// CommitStore notifies the feeder that a store at addr/size has left
	// the STQ and is now architecturally visible, so the feeder's own
	// memory-image shadow (if any) can be updated.
	CommitStore(addr uint64, size int, data []byte)
	// NotifyMmap/NotifyMunmap keep the feeder's address-space view in
	// sync with the simulated program's mmap/munmap calls.
	NotifyMmap(addr uint64, length uint64, prot int)
	NotifyMunmap(addr uint64, length uint64)
	// UpdateBrk reports a new program break.
	UpdateBrk(newBrk uint64)
	// MapStack reports the stack region's base and size once the feeder
	// has set it up, so the cache hierarchy can optionally warm it.
	MapStack(base, size uint64)
	// WarmLLC requests the feeder replay a warm-up trace into the LLC
	// before timing measurement starts.
	WarmLLC()
	// SliceStart/SliceEnd bracket a region-of-interest for statistics
	// collection. Both implementations in this package treat them as
	// no-ops, and the Stats DB neither resets nor freezes its counters in
	// response to them.
	SliceStart()
	SliceEnd()
}
