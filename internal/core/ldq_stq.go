package core

import (
	"container/heap"

	"oosim/internal/memdep"
	"oosim/internal/mop"
)

// ldqEntry is one in-flight load's memory-ordering state.
type ldqEntry struct {
	valid     bool
	owner     *mop.Mop
	uop       *mop.Uop
	action    mop.ActionID
	addrValid bool
	addr      uint64
	size      int
	forwarded bool
	completed bool

	// storeColor is the STQ index of the youngest store that had already
	// allocated when this load allocated: the STQ search starts here and
	// walks toward the head, so it finds the nearest (youngest) older
	// store that overlaps rather than the oldest one. -1 means no store
	// had allocated yet, so there is nothing to search.
	storeColor int
}

// stqEntry is one in-flight store's memory-ordering state. STA and STD
// halves of a fused store share the same STQIndex; addrValid/dataValid
// track each half independently so a load probing the STQ can tell
// whether it's safe to forward yet.
type stqEntry struct {
	valid      bool
	owner      *mop.Mop
	action     mop.ActionID
	addrValid  bool
	dataValid  bool
	addr       uint64
	size       int
	data       []byte
	senior     bool // committed from the ROB but not yet drained to memory
}

// LDQ is the load queue: a circular buffer of ldqEntry indexed by
// allocation order (program order among live loads).
type LDQ struct {
	entries []ldqEntry
	head    int
	tail    int
	count   int
}

func NewLDQ(size int) *LDQ { return &LDQ{entries: make([]ldqEntry, size)} }

func (q *LDQ) Free() int  { return len(q.entries) - q.count }
func (q *LDQ) Full() bool { return q.count == len(q.entries) }

// Allocate reserves the next LDQ slot for a load uop, returning its
// index. storeColor is the STQ's current Color() (the youngest store
// already allocated at this moment), recorded so the STQ search this
// load eventually issues starts from the right place.
func (q *LDQ) Allocate(owner *mop.Mop, uop *mop.Uop, action mop.ActionID, storeColor int) (int, bool) {
	if q.Full() {
		return -1, false
	}
	idx := q.tail
	q.entries[idx] = ldqEntry{valid: true, owner: owner, uop: uop, action: action, storeColor: storeColor}
	q.tail = (q.tail + 1) % len(q.entries)
	q.count++
	return idx, true
}

// SetAddress records the resolved address for a load once its AGU uop
// executes.
func (q *LDQ) SetAddress(idx int, addr uint64, size int) {
	q.entries[idx].addr = addr
	q.entries[idx].size = size
	q.entries[idx].addrValid = true
}

// Retire removes the oldest LDQ entry, used as loads commit from the ROB
// in program order.
func (q *LDQ) Retire() {
	if q.count == 0 {
		return
	}
	q.entries[q.head].valid = false
	q.head = (q.head + 1) % len(q.entries)
	q.count--
}

// SquashStale invalidates every entry whose action no longer matches.
func (q *LDQ) SquashStale(currentAction mop.ActionID) {
	for i := range q.entries {
		if q.entries[i].valid && q.entries[i].action != currentAction {
			q.entries[i].valid = false
		}
	}
}

// STQ is the store queue, holding both senior (committed, draining to
// memory) and junior (not yet committed) stores.
type STQ struct {
	entries []stqEntry
	head    int
	tail    int
	count   int

	search searchHeap
}

func NewSTQ(size int) *STQ { return &STQ{entries: make([]stqEntry, size)} }

func (q *STQ) Free() int  { return len(q.entries) - q.count }
func (q *STQ) Full() bool { return q.count == len(q.entries) }

// Color returns the index of the youngest store currently allocated, or
// -1 if the STQ is empty: the store_color a load allocating right now
// should remember so its eventual STQ search starts in the right place.
func (q *STQ) Color() int {
	if q.count == 0 {
		return -1
	}
	return (q.tail - 1 + len(q.entries)) % len(q.entries)
}

// Allocate reserves the next STQ slot, shared by a store's STA and STD
// uops (both call Allocate with the same owner; the second call reuses
// the first's index rather than consuming a second slot).
func (q *STQ) Allocate(owner *mop.Mop, action mop.ActionID) int {
	if owner.STQIndex >= 0 {
		return owner.STQIndex
	}
	idx := q.tail
	q.entries[idx] = stqEntry{valid: true, owner: owner, action: action}
	q.tail = (q.tail + 1) % len(q.entries)
	q.count++
	owner.STQIndex = idx
	return idx
}

func (q *STQ) SetAddress(idx int, addr uint64, size int) {
	q.entries[idx].addr = addr
	q.entries[idx].size = size
	q.entries[idx].addrValid = true
}

func (q *STQ) SetData(idx int, data []byte) {
	q.entries[idx].data = data
	q.entries[idx].dataValid = true
}

// MarkSenior flags a store as committed from the ROB; it now only waits
// to drain to the memory hierarchy, and blocks nothing in the STQ from a
// program-order standpoint.
func (q *STQ) MarkSenior(idx int) {
	q.entries[idx].senior = true
}

// DrainSenior returns and removes the oldest senior store, if any, so the
// commit stage can send it to the cache hierarchy; returns ok=false if
// the oldest STQ entry either doesn't exist or isn't senior yet.
func (q *STQ) DrainSenior() (addr uint64, size int, data []byte, ok bool) {
	if q.count == 0 || !q.entries[q.head].senior {
		return 0, 0, nil, false
	}
	e := q.entries[q.head]
	q.entries[q.head].valid = false
	q.head = (q.head + 1) % len(q.entries)
	q.count--
	return e.addr, e.size, e.data, true
}

// SquashStale invalidates every non-senior entry whose action no longer
// matches; senior (already-committed) stores survive any squash since
// they are architecturally real.
func (q *STQ) SquashStale(currentAction mop.ActionID) {
	for i := range q.entries {
		if q.entries[i].valid && !q.entries[i].senior && q.entries[i].action != currentAction {
			q.entries[i].valid = false
		}
	}
}

// ForwardResult is the outcome of probing the STQ for a load.
type ForwardResult int

const (
	// ForwardNone means no older store overlaps; the load should go to
	// the cache hierarchy.
	ForwardNone ForwardResult = iota
	// ForwardHit means an older store with a known address and known data
	// fully covers the load; its data can be forwarded directly.
	ForwardHit
	// ForwardStall means an older store overlaps (or might, per memdep)
	// but its data isn't ready yet; the load must wait.
	ForwardStall
)

// Probe searches the STQ starting at storeColor (the youngest store that
// had already allocated when the load allocated, see ldqEntry.storeColor)
// and walks backward toward the head, so the first candidate it finds
// overlapping [addr, addr+size) is the youngest older store, not the
// oldest one. memdep is consulted when a candidate store's address is
// not yet resolved: if it predicts no-conflict, the search continues past
// that store instead of stalling on it. A store that only partially
// overlaps the load's range (neither disjoint nor a full superset) always
// stalls rather than forwarding, since this model has no byte-level
// merge of old and new data.
func (q *STQ) Probe(storeColor int, loadPC, addr uint64, size int, dep memdep.Predictor) ForwardResult {
	if storeColor < 0 {
		return ForwardNone
	}
	n := len(q.entries)
	idx := storeColor
	for {
		e := &q.entries[idx]
		if e.valid && e.owner != nil {
			if !e.addrValid {
				if !dep.PredictNoConflict(loadPC, e.owner.PC) {
					return ForwardStall
				}
			} else {
				switch classifyOverlap(e.addr, e.size, addr, size) {
				case overlapFull:
					if !e.dataValid {
						return ForwardStall
					}
					return ForwardHit
				case overlapPartial:
					return ForwardStall
				}
			}
		}
		if idx == q.head {
			break
		}
		idx = (idx - 1 + n) % n
	}
	return ForwardNone
}

// overlapKind classifies how a store's byte range relates to a load's.
type overlapKind int

const (
	overlapNone overlapKind = iota
	overlapPartial
	overlapFull
)

// classifyOverlap reports whether [storeAddr, storeAddr+storeSize) fully
// contains, partially overlaps, or is disjoint from [loadAddr,
// loadAddr+loadSize).
func classifyOverlap(storeAddr uint64, storeSize int, loadAddr uint64, loadSize int) overlapKind {
	storeEnd := storeAddr + uint64(storeSize)
	loadEnd := loadAddr + uint64(loadSize)
	if loadAddr >= storeEnd || storeAddr >= loadEnd {
		return overlapNone
	}
	if loadAddr >= storeAddr && loadEnd <= storeEnd {
		return overlapFull
	}
	return overlapPartial
}

// searchEvent is one outstanding STQ-search-pipe completion, scheduled to
// resolve at a future cycle the way a real STQ CAM lookup takes a fixed
// number of pipeline stages rather than completing combinationally.
type searchEvent struct {
	completeAt uint64
	ldqIndex   int
}

type searchHeap []searchEvent

func (h searchHeap) Len() int            { return len(h) }
func (h searchHeap) Less(i, j int) bool  { return h[i].completeAt < h[j].completeAt }
func (h searchHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *searchHeap) Push(x interface{}) { *h = append(*h, x.(searchEvent)) }
func (h *searchHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// ScheduleSearch enqueues a STQ search-pipe completion for ldqIndex,
// landing searchLatency cycles from now. The search pipe is a min-heap
// keyed by completion time for the same reason FUPipe is (see
// fupipe.go): many searches can be in flight with different latencies and
// completion order is what matters, not issue order.
func (q *STQ) ScheduleSearch(now uint64, searchLatency, ldqIndex int) {
	if searchLatency < 1 {
		searchLatency = 1
	}
	heap.Push(&q.search, searchEvent{completeAt: now + uint64(searchLatency), ldqIndex: ldqIndex})
}

// DrainSearches pops every search-pipe completion due by now.
func (q *STQ) DrainSearches(now uint64) []int {
	var out []int
	for q.search.Len() > 0 && q.search[0].completeAt <= now {
		ev := heap.Pop(&q.search).(searchEvent)
		out = append(out, ev.ldqIndex)
	}
	return out
}
