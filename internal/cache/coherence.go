package cache

import mapset "github.com/deckarep/golang-set/v2"

// Coherence is the pluggable snoop/directory controller a multi-core
// cache hierarchy consults on every access: a "none"/"const" controller
// family.
type Coherence interface {
	// OnAccess records that coreID touched lineAddr (read if !write,
	// write-intent if write), and returns the set of other cores that
	// must be invalidated as a result.
	OnAccess(coreID int, lineAddr uint64, write bool) (invalidate []int)
	// Sharers returns the cores currently recorded as sharing lineAddr.
	Sharers(lineAddr uint64) []int
}

// NewCoherence constructs a Coherence controller by config-string kind.
func NewCoherence(kind string) Coherence {
	if kind == "const" {
		return newConstCoherence()
	}
	return noneCoherence{}
}

// noneCoherence tracks nothing and never invalidates: appropriate for a
// single-core configuration or when coherence is explicitly modeled as
// absent.
type noneCoherence struct{}

func (noneCoherence) OnAccess(int, uint64, bool) []int { return nil }
func (noneCoherence) Sharers(uint64) []int             { return nil }

// constCoherence is a directory-less broadcast-snoop controller: it keeps
// a per-line sharer set and invalidates every other sharer on a write.
type constCoherence struct {
	sharers map[uint64]mapset.Set[int]
}

func newConstCoherence() *constCoherence {
	return &constCoherence{sharers: make(map[uint64]mapset.Set[int])}
}

func (c *constCoherence) OnAccess(coreID int, lineAddr uint64, write bool) []int {
	set, ok := c.sharers[lineAddr]
	if !ok {
		set = mapset.NewSet[int]()
		c.sharers[lineAddr] = set
	}
	var invalidate []int
	if write {
		for _, other := range set.ToSlice() {
			if other != coreID {
				invalidate = append(invalidate, other)
			}
		}
		set.Clear()
	}
	set.Add(coreID)
	return invalidate
}

func (c *constCoherence) Sharers(lineAddr uint64) []int {
	set, ok := c.sharers[lineAddr]
	if !ok {
		return nil
	}
	return set.ToSlice()
}
