// Package bpred implements the branch prediction subsystem: a family of
// direction predictors, a fusion selector that combines several of them, a
// branch target buffer, an indirect-branch target predictor and a return
// address stack, composed behind a single meta-predictor the core consults
// once per fetched branch and updates once the branch resolves.
package bpred

// Direction predicts taken/not-taken for a conditional branch given its
// PC, and learns from the resolved outcome. gshare, bimodal and a
// 2-level table are the "real" predictors; taken, btfnt, perfect and
// magic are minimal variants useful as baselines and upper bounds in
// testing.
type Direction interface {
	// Predict returns the predicted taken/not-taken outcome for a branch
	// at pc. Any global/local history a predictor uses is kept inside the
	// predictor itself and advanced by Update.
	Predict(pc uint64) bool
	// Update trains the predictor with the branch's actual outcome.
	Update(pc uint64, taken bool)
}

// NewDirection constructs a Direction predictor by its config-string name.
func NewDirection(kind string) Direction {
	switch kind {
	case "bimodal":
		return newBimodal(4096)
	case "2level":
		return newTwoLevel(1024, 1024)
	case "taken":
		return staticTaken{}
	case "btfnt":
		return staticBTFNT{}
	case "perfect":
		return &perfectDirection{}
	case "magic":
		return &perfectDirection{}
	case "gshare":
		fallthrough
	default:
		return newGshare(4096)
	}
}

// staticTaken always predicts taken.
type staticTaken struct{}

func (staticTaken) Predict(uint64) bool     { return true }
func (staticTaken) Update(uint64, bool)     {}

// staticBTFNT predicts backward branches taken, forward branches not
// taken. The true backward/forward distinction needs the branch target,
// which this interface doesn't carry (only pc), so this simplified
// variant always predicts taken. Meta does not apply a backward/forward
// distinction either, so a "btfnt" configuration behaves like "taken".
type staticBTFNT struct{}

func (staticBTFNT) Predict(uint64) bool { return true }
func (staticBTFNT) Update(uint64, bool) {}

// perfectDirection approximates a perfect predictor. Used as a
// "perfect/magic" predictor configuration and as an upper bound in tests.
// Because a true Direction interface cannot see the future outcome ahead
// of Update, perfectDirection caches the most recent Update for this pc
// and returns it; the first prediction for a never-before-seen pc
// defaults to not-taken.
type perfectDirection struct {
	last map[uint64]bool
}

func (p *perfectDirection) Predict(pc uint64) bool {
	if p.last == nil {
		return false
	}
	return p.last[pc]
}

func (p *perfectDirection) Update(pc uint64, taken bool) {
	if p.last == nil {
		p.last = make(map[uint64]bool)
	}
	p.last[pc] = taken
}

// saturatingCounter is a classic 2-bit up/down counter, 0-3, >=2 predicts
// taken.
type saturatingCounter uint8

func (c saturatingCounter) taken() bool { return c >= 2 }

func (c *saturatingCounter) update(taken bool) {
	if taken {
		if *c < 3 {
			*c++
		}
	} else {
		if *c > 0 {
			*c--
		}
	}
}

// bimodal is a single PC-indexed table of 2-bit saturating counters.
type bimodal struct {
	table []saturatingCounter
	mask  uint64
}

func newBimodal(entries int) *bimodal {
	b := &bimodal{table: make([]saturatingCounter, entries)}
	b.mask = uint64(entries - 1)
	for i := range b.table {
		b.table[i] = 1 // weakly not-taken
	}
	return b
}

func (b *bimodal) index(pc uint64) uint64 { return (pc >> 2) & b.mask }

func (b *bimodal) Predict(pc uint64) bool { return b.table[b.index(pc)].taken() }

func (b *bimodal) Update(pc uint64, taken bool) {
	idx := b.index(pc)
	c := b.table[idx]
	c.update(taken)
	b.table[idx] = c
}

// gshare XORs global branch history into the bimodal-style index.
type gshare struct {
	table   []saturatingCounter
	mask    uint64
	history uint64
}

func newGshare(entries int) *gshare {
	g := &gshare{table: make([]saturatingCounter, entries)}
	g.mask = uint64(entries - 1)
	for i := range g.table {
		g.table[i] = 1
	}
	return g
}

func (g *gshare) index(pc uint64) uint64 {
	return ((pc >> 2) ^ g.history) & g.mask
}

func (g *gshare) Predict(pc uint64) bool { return g.table[g.index(pc)].taken() }

func (g *gshare) Update(pc uint64, taken bool) {
	idx := g.index(pc)
	c := g.table[idx]
	c.update(taken)
	g.table[idx] = c
	g.history = (g.history << 1)
	if taken {
		g.history |= 1
	}
}

// twoLevel is a per-pc local history table feeding a pattern history
// table, the classic 2-level adaptive predictor.
type twoLevel struct {
	historyTable []uint16 // per-pc local history, indexed by pc
	histMask     uint64
	pht          []saturatingCounter
	phtMask      uint64
	historyBits  uint
}

func newTwoLevel(historyEntries, phtEntries int) *twoLevel {
	t := &twoLevel{
		historyTable: make([]uint16, historyEntries),
		pht:          make([]saturatingCounter, phtEntries),
		historyBits:  10,
	}
	t.histMask = uint64(historyEntries - 1)
	t.phtMask = uint64(phtEntries - 1)
	for i := range t.pht {
		t.pht[i] = 1
	}
	return t
}

func (t *twoLevel) histIdx(pc uint64) uint64 { return (pc >> 2) & t.histMask }

func (t *twoLevel) phtIdx(pc uint64) uint64 {
	local := uint64(t.historyTable[t.histIdx(pc)])
	return local & t.phtMask
}

func (t *twoLevel) Predict(pc uint64) bool { return t.pht[t.phtIdx(pc)].taken() }

func (t *twoLevel) Update(pc uint64, taken bool) {
	idx := t.phtIdx(pc)
	c := t.pht[idx]
	c.update(taken)
	t.pht[idx] = c

	hIdx := t.histIdx(pc)
	local := t.historyTable[hIdx] << 1
	if taken {
		local |= 1
	}
	t.historyTable[hIdx] = local & uint16((1<<t.historyBits)-1)
}
