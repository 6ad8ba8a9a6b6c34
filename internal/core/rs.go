package core

import "oosim/internal/mop"

// rsEntry is one reservation-station slot: a Uop waiting for its source
// operands to become ready before it can be selected for issue.
type rsEntry struct {
	valid  bool
	uop    *mop.Uop
	owner  *mop.Mop
	action mop.ActionID
}

// RS is the reservation station: a pool of entries scheduled by the
// classic two-phase wakeup/select discipline. Readiness itself
// (Uop.WaitingOn) is maintained outside the RS, by the producer→consumer
// links built at allocate time (see rename.go) and walked to completion
// in execute.go; Select's only job is to pick up to width entries whose
// uop is already at WaitingOn == 0, in slot order (a simple,
// deterministic stand-in for age-based priority; since Allocate reuses the
// lowest free slot, slot order is not necessarily age order).
type RS struct {
	entries []rsEntry
}

// NewRS builds an RS with the given number of entries.
func NewRS(size int) *RS {
	return &RS{entries: make([]rsEntry, size)}
}

func (rs *RS) Free() int {
	n := 0
	for i := range rs.entries {
		if !rs.entries[i].valid {
			n++
		}
	}
	return n
}

// Allocate reserves a slot for uop. uop.WaitingOn must already reflect
// the number of unresolved source producers (set by linkDataflow before
// this is called); 0 means every source is already available.
func (rs *RS) Allocate(owner *mop.Mop, uop *mop.Uop, action mop.ActionID) bool {
	for i := range rs.entries {
		if !rs.entries[i].valid {
			rs.entries[i] = rsEntry{valid: true, uop: uop, owner: owner, action: action}
			return true
		}
	}
	return false
}

// Issued pairs an issued Uop with the Mop that owns it, since a caller
// dispatching into a functional-unit pipe needs both.
type Issued struct {
	Uop   *mop.Uop
	Owner *mop.Mop
}

// Select picks up to width ready (WaitingOn == 0), non-stale entries, in
// slot order, and removes them from the RS (issue is a one-way trip out
// of the RS, following the classic schedule-then-issue flow).
func (rs *RS) Select(width int, currentAction mop.ActionID) []Issued {
	var issued []Issued
	for i := range rs.entries {
		if len(issued) >= width {
			break
		}
		e := &rs.entries[i]
		if !e.valid {
			continue
		}
		if e.action != currentAction {
			e.valid = false // stale entry from a squashed path, drop silently
			continue
		}
		if e.uop.WaitingOn == 0 {
			issued = append(issued, Issued{Uop: e.uop, Owner: e.owner})
			e.valid = false
		}
	}
	return issued
}

// SquashStale invalidates every entry whose action tag no longer matches
// currentAction.
func (rs *RS) SquashStale(currentAction mop.ActionID) {
	for i := range rs.entries {
		if rs.entries[i].valid && rs.entries[i].action != currentAction {
			rs.entries[i].valid = false
		}
	}
}
