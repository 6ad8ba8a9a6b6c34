package cache

import (
	"oosim/internal/config"
	"oosim/internal/mop"
)

type line struct {
	valid bool
	tag   uint64
}

// Cache is a set-associative cache level (IL1, DL1, L2 or LLC), backed by
// an MSHR file for misses-in-flight and a pluggable replacement policy
// per set.
type Cache struct {
	Name        string
	sets        int
	ways        int
	lineSize    int
	latency     int
	lines       [][]line
	repl        []Replacement
	replKind    string
	mshrs       *MSHRFile
	prefetcher  Prefetcher
	coherence   Coherence
}

// New builds a Cache from a parsed mini-DSL CacheSpec.
func New(spec config.CacheSpec, coherenceKind, prefetchKind string) *Cache {
	c := &Cache{
		Name:     spec.Name,
		sets:     spec.Sets,
		ways:     spec.Ways,
		lineSize: spec.LineSizeBytes,
		latency:  spec.LatencyCycles,
		replKind: spec.Replacement,
	}
	c.lines = make([][]line, spec.Sets)
	c.repl = make([]Replacement, spec.Sets)
	for s := 0; s < spec.Sets; s++ {
		c.lines[s] = make([]line, spec.Ways)
		c.repl[s] = NewReplacement(spec.Replacement, spec.Ways)
	}
	c.mshrs = NewMSHRFile(spec.MSHREntries, spec.MSHRTargets)
	c.prefetcher = NewPrefetcher(prefetchKind)
	c.coherence = NewCoherence(coherenceKind)
	return c
}

func (c *Cache) lineAddr(addr uint64) uint64 {
	return addr &^ uint64(c.lineSize-1)
}

func (c *Cache) setIndex(lineAddr uint64) int {
	return int((lineAddr / uint64(c.lineSize)) % uint64(c.sets))
}

func (c *Cache) tag(lineAddr uint64) uint64 {
	return lineAddr / uint64(c.lineSize) / uint64(c.sets)
}

// Probe looks up addr without side effects other than replacement-policy
// recency update on hit, returning whether it hit.
func (c *Cache) Probe(addr uint64) bool {
	la := c.lineAddr(addr)
	s := c.setIndex(la)
	tag := c.tag(la)
	for w := 0; w < c.ways; w++ {
		if c.lines[s][w].valid && c.lines[s][w].tag == tag {
			c.repl[s].Touch(w)
			return true
		}
	}
	return false
}

// Install places lineAddr into the cache, evicting per the replacement
// policy if the set is full.
func (c *Cache) Install(lineAddr uint64) {
	s := c.setIndex(lineAddr)
	tag := c.tag(lineAddr)
	for w := 0; w < c.ways; w++ {
		if !c.lines[s][w].valid {
			c.lines[s][w] = line{valid: true, tag: tag}
			c.repl[s].Touch(w)
			return
		}
	}
	victim := c.repl[s].Victim()
	c.lines[s][victim] = line{valid: true, tag: tag}
	c.repl[s].Touch(victim)
}

// sharingPenaltyCycles is the extra hit latency charged when this core's
// access finds the line already shared by another core, standing in for
// the snoop/directory round trip a real coherence controller would need
// before it could hand the line over clean.
const sharingPenaltyCycles = 4

// Access performs a full cache access: on a hit it returns the cache's
// fixed latency immediately (plus a sharing penalty if another core was
// a recorded sharer of the line); on a miss it allocates (or merges
// into) an MSHR and returns hit=false along with that MSHR so the caller
// can attach a completion callback. A miss with no free MSHR returns
// mshr=nil with allocated=false, signaling backpressure.
// shared reports whether the coherence controller found another core
// already sharing the line, for callers that want to track
// shared-vs-private request counts.
func (c *Cache) Access(coreID int, addr uint64, size int, isLoad bool, action mop.ActionID, cycle uint64) (hit bool, latency int, mshr *MSHR, allocated bool, shared bool) {
	la := c.lineAddr(addr)
	for _, other := range c.coherence.Sharers(la) {
		if other != coreID {
			shared = true
			break
		}
	}
	c.coherence.OnAccess(coreID, la, !isLoad)

	if c.Probe(addr) {
		for _, pf := range c.prefetcher.OnAccess(la, c.lineSize) {
			if !c.Probe(pf) {
				c.Install(pf)
			}
		}
		lat := c.latency
		if shared {
			lat += sharingPenaltyCycles
		}
		return true, lat, nil, true, shared
	}
	if existing, ok := c.mshrs.Lookup(la); ok {
		return false, 0, existing, true, shared
	}
	m, ok := c.mshrs.Allocate(la, action, cycle)
	if !ok {
		return false, 0, nil, false, shared
	}
	return false, 0, m, true, shared
}

// CompleteFill finishes a pending miss: installs the line and fires every
// merged target's callback via MSHR.Complete.
func (c *Cache) CompleteFill(m *MSHR) {
	c.Install(m.LineAddr)
	m.Complete()
}

// MSHRsFree returns the number of free MSHRs, the cache's contribution to
// local backpressure accounting.
func (c *Cache) MSHRsFree() int {
	return c.mshrs.Free()
}

// LineSize returns the cache's line size in bytes.
func (c *Cache) LineSize() int { return c.lineSize }
