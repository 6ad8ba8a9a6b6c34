package oracle

import "oosim/internal/mop"

// shadowQueue holds the oracle's run-ahead window: Mops the oracle has
// functionally executed but the timing core has not yet consumed or
// retired, ordered by sequence number: retire drops the head in O(1),
// truncateAfter scans for its cut point.
type shadowQueue struct {
	entries  []*mop.Mop // ordered by seq, oldest first
	consumed int        // number of entries[0:consumed] already handed to fetch
}

func newShadowQueue(capacityHint int) *shadowQueue {
	return &shadowQueue{entries: make([]*mop.Mop, 0, capacityHint)}
}

func (q *shadowQueue) push(m *mop.Mop) {
	q.entries = append(q.entries, m)
}

func (q *shadowQueue) empty() bool {
	return len(q.entries) == 0
}

// peekUnconsumed returns the oldest Mop the core hasn't yet been handed,
// without advancing the consumed cursor.
func (q *shadowQueue) peekUnconsumed() (*mop.Mop, bool) {
	if q.consumed >= len(q.entries) {
		return nil, false
	}
	return q.entries[q.consumed], true
}

func (q *shadowQueue) advanceConsumed() {
	q.consumed++
}

// retire drops every entry up to and including seq, which must be the
// oldest still-held entry (the timing core retires in program order, so
// this is always true in practice; an out-of-order retire call indicates
// a caller bug and is treated as a no-op rather than corrupting the
// queue).
func (q *shadowQueue) retire(seq mop.SeqNum) {
	if len(q.entries) == 0 || q.entries[0].Seq != seq {
		return
	}
	q.entries = q.entries[1:]
	if q.consumed > 0 {
		q.consumed--
	}
}

// truncateAfter drops every entry whose sequence number is greater than
// keepSeq, and resets the consumed cursor to no further than the
// remaining entries (used by Recover after a branch mispredict: keepSeq
// is the mispredicting branch itself, still retained since it resolved
// correctly).
func (q *shadowQueue) truncateAfter(keepSeq mop.SeqNum) {
	cut := len(q.entries)
	for i, e := range q.entries {
		if e.Seq > keepSeq {
			cut = i
			break
		}
	}
	q.entries = q.entries[:cut]
	if q.consumed > cut {
		q.consumed = cut
	}
}

func (q *shadowQueue) clear() {
	q.entries = q.entries[:0]
	q.consumed = 0
}
