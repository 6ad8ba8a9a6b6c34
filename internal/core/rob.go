// Package core implements the per-cycle out-of-order pipeline stages:
// fetch, decode, allocate/rename, execute and commit, plus the structures
// they share (ROB, RS, LDQ, STQ, FU pipelines).
package core

import "oosim/internal/mop"

// ROB is the reorder buffer: a circular queue of in-flight Mops in
// program order, the core's commit-order source of truth.
type ROB struct {
	entries []*mop.Mop
	head    int // oldest (next to commit)
	tail    int // next free slot
	count   int
}

// NewROB builds a ROB with the given number of entries.
func NewROB(size int) *ROB {
	return &ROB{entries: make([]*mop.Mop, size)}
}

func (r *ROB) Size() int    { return len(r.entries) }
func (r *ROB) Count() int   { return r.count }
func (r *ROB) Free() int    { return len(r.entries) - r.count }
func (r *ROB) Full() bool   { return r.count == len(r.entries) }
func (r *ROB) Empty() bool  { return r.count == 0 }

// Allocate reserves the next ROB slot for m and returns its index, or
// ok=false if the ROB is full (local backpressure, not an error).
func (r *ROB) Allocate(m *mop.Mop) (index int, ok bool) {
	if r.Full() {
		return -1, false
	}
	index = r.tail
	r.entries[index] = m
	m.ROBIndex = index
	r.tail = (r.tail + 1) % len(r.entries)
	r.count++
	return index, true
}

// Head returns the oldest entry, or nil if the ROB is empty.
func (r *ROB) Head() *mop.Mop {
	if r.Empty() {
		return nil
	}
	return r.entries[r.head]
}

// RetireHead removes and returns the oldest entry; callers must have
// confirmed it is ready to commit first.
func (r *ROB) RetireHead() *mop.Mop {
	if r.Empty() {
		return nil
	}
	m := r.entries[r.head]
	r.entries[r.head] = nil
	r.head = (r.head + 1) % len(r.entries)
	r.count--
	return m
}

// SquashAfter drops every entry newer than the one at robIndex
// (inclusive or exclusive controlled by keepMispredictor): used on a
// branch mispredict or full-pipeline flush to roll the ROB's tail back.
// Entries are walked from the tail backward toward robIndex so this is
// safe even when the ROB has wrapped.
func (r *ROB) SquashAfter(robIndex int, keepMispredictor bool) {
	n := len(r.entries)
	// distance from robIndex to tail going forward
	keep := robIndex
	if keepMispredictor {
		keep = (robIndex + 1) % n
	}
	newCount := 0
	idx := r.head
	for i := 0; i < r.count; i++ {
		if idx == keep {
			break
		}
		newCount++
		idx = (idx + 1) % n
	}
	for i := keep; i != r.tail; i = (i + 1) % n {
		r.entries[i] = nil
	}
	r.tail = keep
	r.count = newCount
}

// ForEach walks every live ROB entry from oldest to newest.
func (r *ROB) ForEach(fn func(*mop.Mop)) {
	idx := r.head
	for i := 0; i < r.count; i++ {
		fn(r.entries[idx])
		idx = (idx + 1) % len(r.entries)
	}
}
