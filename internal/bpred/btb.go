package bpred

// BTB is a set-associative branch target buffer keyed by PC: it records
// the last-seen target for a branch so fetch can redirect speculatively
// before the branch itself executes.
type BTB struct {
	sets int
	ways int
	tags [][]uint64
	targets [][]uint64
	valid [][]bool
	lru [][]int // per-set LRU order, index 0 is most recently used way
}

// NewBTB builds a BTB with the given set/way geometry: a cache-like
// set-associative organization applied to branch targets.
func NewBTB(sets, ways int) *BTB {
	if sets <= 0 {
		sets = 1
	}
	if ways <= 0 {
		ways = 1
	}
	b := &BTB{sets: sets, ways: ways}
	b.tags = make([][]uint64, sets)
	b.targets = make([][]uint64, sets)
	b.valid = make([][]bool, sets)
	b.lru = make([][]int, sets)
	for s := 0; s < sets; s++ {
		b.tags[s] = make([]uint64, ways)
		b.targets[s] = make([]uint64, ways)
		b.valid[s] = make([]bool, ways)
		order := make([]int, ways)
		for w := range order {
			order[w] = w
		}
		b.lru[s] = order
	}
	return b
}

func (b *BTB) setIndex(pc uint64) int {
	return int((pc >> 2) % uint64(b.sets))
}

// Lookup returns the predicted target for pc and whether it hit.
func (b *BTB) Lookup(pc uint64) (target uint64, hit bool) {
	s := b.setIndex(pc)
	for w := 0; w < b.ways; w++ {
		if b.valid[s][w] && b.tags[s][w] == pc {
			b.touch(s, w)
			return b.targets[s][w], true
		}
	}
	return 0, false
}

// Update records/refreshes the target for pc, evicting the LRU way on a
// miss-install.
func (b *BTB) Update(pc, target uint64) {
	s := b.setIndex(pc)
	for w := 0; w < b.ways; w++ {
		if b.valid[s][w] && b.tags[s][w] == pc {
			b.targets[s][w] = target
			b.touch(s, w)
			return
		}
	}
	victim := b.lru[s][len(b.lru[s])-1]
	b.tags[s][victim] = pc
	b.targets[s][victim] = target
	b.valid[s][victim] = true
	b.touch(s, victim)
}

func (b *BTB) touch(s, w int) {
	order := b.lru[s]
	for i, way := range order {
		if way == w {
			copy(order[1:i+1], order[0:i])
			order[0] = w
			return
		}
	}
}

// IndirectBTB predicts the target of an indirect branch (call/jmp through
// register), keyed by a PC x path-history hash since a single indirect
// branch site can legitimately target many different addresses.
type IndirectBTB struct {
	table   map[uint64]uint64
	history uint64
}

// NewIndirectBTB constructs an indirect-branch target predictor. entries
// is only the table's initial size hint: the table is not bounded, and
// every resolved target is cached however many entries it already holds.
func NewIndirectBTB(entries int) *IndirectBTB {
	return &IndirectBTB{table: make(map[uint64]uint64, entries)}
}

func (i *IndirectBTB) key(pc uint64) uint64 { return pc ^ (i.history << 7) }

// Lookup returns the predicted target for an indirect branch at pc.
func (i *IndirectBTB) Lookup(pc uint64) (target uint64, hit bool) {
	target, hit = i.table[i.key(pc)]
	return
}

// Update records the resolved target and folds it into path history.
func (i *IndirectBTB) Update(pc, target uint64) {
	i.table[i.key(pc)] = target
	i.history = (i.history << 4) ^ (target >> 2)
}
