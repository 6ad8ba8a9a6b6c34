package core

import (
	"container/heap"

	"oosim/internal/mop"
)

// fuEvent is one in-flight functional-unit execution, draining out of its
// pipe at pipeExitTime.
type fuEvent struct {
	pipeExitTime uint64
	uop          *mop.Uop
	owner        *mop.Mop
	action       mop.ActionID
}

// fuEventHeap is a binary min-heap of fuEvents ordered by pipeExitTime,
// giving O(log n) insertion and O(log n) removal of the next-to-drain
// event regardless of how many are in flight — the same shape used for
// the STQ search pipe (see ldq_stq.go).
type fuEventHeap []fuEvent

func (h fuEventHeap) Len() int            { return len(h) }
func (h fuEventHeap) Less(i, j int) bool  { return h[i].pipeExitTime < h[j].pipeExitTime }
func (h fuEventHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *fuEventHeap) Push(x interface{}) { *h = append(*h, x.(fuEvent)) }
func (h *fuEventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// FUPipe is one functional-unit pipeline: uops enter at issue time and
// drain out after their latency elapses, in completion order rather than
// issue order (a pipe can have several uops of different latencies
// in flight at once).
type FUPipe struct {
	h fuEventHeap
}

// NewFUPipe constructs an empty FU pipeline.
func NewFUPipe() *FUPipe {
	fp := &FUPipe{}
	heap.Init(&fp.h)
	return fp
}

// Issue inserts uop into the pipe, to drain at now+latency.
func (p *FUPipe) Issue(now uint64, latency int, owner *mop.Mop, uop *mop.Uop, action mop.ActionID) {
	if latency < 1 {
		latency = 1
	}
	heap.Push(&p.h, fuEvent{pipeExitTime: now + uint64(latency), uop: uop, owner: owner, action: action})
}

// Drain pops and returns every event whose pipeExitTime is <= now, in
// completion order, skipping (and discarding) stale entries whose action
// no longer matches currentAction.
func (p *FUPipe) Drain(now uint64, currentAction mop.ActionID) []fuEvent {
	var out []fuEvent
	for p.h.Len() > 0 && p.h[0].pipeExitTime <= now {
		ev := heap.Pop(&p.h).(fuEvent)
		if ev.action != currentAction {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Len returns the number of in-flight events, for occupancy stats.
func (p *FUPipe) Len() int { return p.h.Len() }
