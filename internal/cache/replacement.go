// Package cache implements the set-associative cache hierarchy: lines,
// MSHRs, a shared bus abstraction, pluggable coherence controllers,
// replacement policies, a prefetcher hook, and TLBs modeling hardware
// page-walk latency.
package cache

// Replacement selects a victim way within a set when a new line must be
// installed and the set is full: LRU, NMRU, MRU and random.
type Replacement interface {
	// Touch records an access to way w in some set, for policies that
	// track recency.
	Touch(way int)
	// Victim returns the way to evict.
	Victim() int
}

// NewReplacement constructs a per-set Replacement state machine by
// config-string kind ("L" LRU, "N" NMRU, "M" MRU, "R" random).
func NewReplacement(kind string, ways int) Replacement {
	switch kind {
	case "N":
		return newNMRU(ways)
	case "M":
		return newMRU(ways)
	case "R":
		return newRandom(ways)
	case "L":
		fallthrough
	default:
		return newLRU(ways)
	}
}

type lru struct {
	order []int // order[0] is most-recently-used way
}

func newLRU(ways int) *lru {
	order := make([]int, ways)
	for i := range order {
		order[i] = i
	}
	return &lru{order: order}
}

func (l *lru) Touch(way int) {
	for i, w := range l.order {
		if w == way {
			copy(l.order[1:i+1], l.order[0:i])
			l.order[0] = way
			return
		}
	}
}

func (l *lru) Victim() int { return l.order[len(l.order)-1] }

// nmru evicts any way other than the most-recently-used one (here, always
// the second-most-recent, a common fixed approximation of "not the MRU").
type nmru struct {
	*lru
}

func newNMRU(ways int) *nmru { return &nmru{newLRU(ways)} }

func (n *nmru) Victim() int {
	if len(n.order) < 2 {
		return n.order[0]
	}
	return n.order[1]
}

// mru evicts the most-recently-used way.
type mru struct {
	*lru
}

func newMRU(ways int) *mru { return &mru{newLRU(ways)} }

func (m *mru) Victim() int { return m.order[0] }

// random evicts a deterministic pseudo-random way, seeded off access
// count so repeated runs of the same trace are reproducible.
type random struct {
	ways  int
	state uint64
}

func newRandom(ways int) *random { return &random{ways: ways, state: 0x2545F4914F6CDD1D} }

func (r *random) Touch(int) {
	r.state = r.state*6364136223846793005 + 1442695040888963407
}

func (r *random) Victim() int {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	v := int(r.state >> 33)
	if v < 0 {
		v = -v
	}
	return v % r.ways
}
