// Package memdep implements the memory dependence predictor family that
// the exec stage consults when deciding whether a load may speculatively
// bypass an older, address-unresolved store in the STQ. Four concrete
// policies: always-stall, always-bypass, a perfect oracle, and a
// last-writer saturating-counter table.
package memdep

// Predictor decides, for a load at loadPC that is about to issue ahead of
// an older store whose address is not yet known, whether it is safe to
// predict "no conflict" (let the load issue speculatively) or whether the
// load must stall until the store's address resolves.
type Predictor interface {
	// PredictNoConflict returns true if the load should be allowed to
	// issue speculatively past the unresolved store.
	PredictNoConflict(loadPC, storePC uint64) bool
	// Train records whether a speculative bypass actually conflicted
	// (the store's resolved address aliased the load's), so predictors
	// that learn can update.
	Train(loadPC, storePC uint64, conflicted bool)
}

// New constructs a Predictor by config-string name.
func New(kind string) Predictor {
	switch kind {
	case "none":
		return noneP{}
	case "blind":
		return blindP{}
	case "oracle":
		return &oracleP{}
	case "lwt":
		fallthrough
	default:
		return newLastWriterTable(1024)
	}
}

// noneP never predicts no-conflict: every load behind an unresolved store
// must stall. This is the conservative baseline.
type noneP struct{}

func (noneP) PredictNoConflict(uint64, uint64) bool { return false }
func (noneP) Train(uint64, uint64, bool)            {}

// blindP always predicts no-conflict, regardless of history. Useful as an
// aggressive baseline and for stress-testing store-forwarding recovery
// paths.
type blindP struct{}

func (blindP) PredictNoConflict(uint64, uint64) bool { return true }
func (blindP) Train(uint64, uint64, bool)            {}

// oracleP consults the true dataflow outcome recorded by Train on a prior
// occurrence of this exact (loadPC, storePC) pair; a pair never seen
// before defaults to "stall", matching the conservative initial state real
// predictors start from. This is an upper bound for testing/tuning, not a
// true hardware predictor (the original exposes the same knob under the
// same name for the same reason).
type oracleP struct {
	conflicted map[[2]uint64]bool
}

func (o *oracleP) PredictNoConflict(loadPC, storePC uint64) bool {
	conflicted, seen := o.conflicted[[2]uint64{loadPC, storePC}]
	if !seen {
		return false
	}
	return !conflicted
}

func (o *oracleP) Train(loadPC, storePC uint64, conflicted bool) {
	if o.conflicted == nil {
		o.conflicted = make(map[[2]uint64]bool)
	}
	o.conflicted[[2]uint64{loadPC, storePC}] = conflicted
}

// lastWriterTable is a store-set-style predictor: a small saturating
// counter per (loadPC, storePC) pair ("last writer"), incremented on
// conflict and decremented on safe bypass, predicting no-conflict only
// once the counter has decayed below threshold. This matches the
// load-wait-table/store-set family the original calls "lwt".
type lastWriterTable struct {
	table map[[2]uint64]uint8
	cap   int
}

func newLastWriterTable(cap int) *lastWriterTable {
	return &lastWriterTable{table: make(map[[2]uint64]uint8), cap: cap}
}

const (
	lwtMax       = 7
	lwtThreshold = 2
)

func (l *lastWriterTable) PredictNoConflict(loadPC, storePC uint64) bool {
	c, ok := l.table[[2]uint64{loadPC, storePC}]
	if !ok {
		return false // never seen this pair: conservative stall
	}
	return c < lwtThreshold
}

func (l *lastWriterTable) Train(loadPC, storePC uint64, conflicted bool) {
	key := [2]uint64{loadPC, storePC}
	c := l.table[key]
	if conflicted {
		if c < lwtMax {
			c++
		}
	} else if c > 0 {
		c--
	}
	if len(l.table) >= l.cap {
		if _, exists := l.table[key]; !exists {
			// evict an arbitrary entry to bound memory; Go map iteration
			// order is randomized, which is an acceptable simplification
			// since the predictor is inherently lossy under capacity
			// pressure.
			for k := range l.table {
				delete(l.table, k)
				break
			}
		}
	}
	l.table[key] = c
}
