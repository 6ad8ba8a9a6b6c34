package cache

import "oosim/internal/mop"

// MSHR (miss-status-handling register) tracks one outstanding line-fill
// request, merging later requests to the same line (up to MSHRTargets)
// rather than issuing a second fill. Every MSHR carries the action id
// that was current when it was allocated; a fill completion callback that
// arrives for a stale action id is a silent no-op rather than touching
// now-unrelated cache/core state.
type MSHR struct {
	Valid      bool
	LineAddr   uint64
	Action     mop.ActionID
	IssuedAt   uint64
	Targets    []Target
	maxTargets int
}

// Target is one request merged into an MSHR, to be replayed against the
// cache/core once the fill completes.
type Target struct {
	Addr   uint64
	Size   int
	IsLoad bool
	Action mop.ActionID
	// Complete is invoked once the fill lands, with the MSHR's own action
	// id passed back so the caller can discard the callback if a squash
	// happened between allocation and fill.
	Complete func(fillAction mop.ActionID)
}

// MSHRFile is the fixed-size set of MSHRs a cache level owns.
type MSHRFile struct {
	entries []MSHR
}

// NewMSHRFile builds a file of n MSHRs, each able to merge up to
// targetsPerMSHR requests.
func NewMSHRFile(n, targetsPerMSHR int) *MSHRFile {
	entries := make([]MSHR, n)
	for i := range entries {
		entries[i].maxTargets = targetsPerMSHR
	}
	return &MSHRFile{entries: entries}
}

// Lookup finds an in-flight MSHR for lineAddr, if any.
func (f *MSHRFile) Lookup(lineAddr uint64) (*MSHR, bool) {
	for i := range f.entries {
		if f.entries[i].Valid && f.entries[i].LineAddr == lineAddr {
			return &f.entries[i], true
		}
	}
	return nil, false
}

// Allocate reserves a free MSHR for lineAddr at the given action id and
// cycle, returning (nil, false) if the file is full — callers treat
// a full MSHR file as local backpressure to signal upward, not an error.
func (f *MSHRFile) Allocate(lineAddr uint64, action mop.ActionID, cycle uint64) (*MSHR, bool) {
	for i := range f.entries {
		if !f.entries[i].Valid {
			f.entries[i] = MSHR{
				Valid:      true,
				LineAddr:   lineAddr,
				Action:     action,
				IssuedAt:   cycle,
				maxTargets: f.entries[i].maxTargets,
			}
			return &f.entries[i], true
		}
	}
	return nil, false
}

// AddTarget merges a request into an already-allocated MSHR, returning
// false if it is already carrying its maximum number of merged targets.
func (m *MSHR) AddTarget(t Target) bool {
	if len(m.Targets) >= m.maxTargets {
		return false
	}
	m.Targets = append(m.Targets, t)
	return true
}

// Complete fires every merged target's callback (skipping any whose
// action id no longer matches, per the action-id cancellation discipline)
// and frees the MSHR.
func (m *MSHR) Complete() {
	for _, t := range m.Targets {
		if t.Action != m.Action {
			continue
		}
		if t.Complete != nil {
			t.Complete(m.Action)
		}
	}
	m.Valid = false
	m.Targets = nil
}

// Free returns the number of unallocated MSHRs in the file.
func (f *MSHRFile) Free() int {
	n := 0
	for i := range f.entries {
		if !f.entries[i].Valid {
			n++
		}
	}
	return n
}
