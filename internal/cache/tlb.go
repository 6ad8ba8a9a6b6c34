package cache

import "oosim/internal/config"

// TLB is a small, set-associative translation cache that models
// hardware page-walk latency on a miss rather than treating address
// translation as free.
type TLB struct {
	entries       int
	ways          int
	sets          int
	latency       int
	pageWalkCost  int
	valid         [][]bool
	vpn           [][]uint64
	repl          []Replacement
	pageShift     uint
}

// NewTLB builds a TLB from a parsed mini-DSL TLBSpec. pageShift is the
// log2 of the page size (12 for 4KiB pages).
func NewTLB(spec config.TLBSpec, pageShift uint) *TLB {
	sets := spec.Entries / spec.Ways
	if sets <= 0 {
		sets = 1
	}
	t := &TLB{
		entries:      spec.Entries,
		ways:         spec.Ways,
		sets:         sets,
		latency:      spec.LatencyCycles,
		pageWalkCost: spec.PageWalkLatency,
		pageShift:    pageShift,
	}
	t.valid = make([][]bool, sets)
	t.vpn = make([][]uint64, sets)
	t.repl = make([]Replacement, sets)
	for s := 0; s < sets; s++ {
		t.valid[s] = make([]bool, spec.Ways)
		t.vpn[s] = make([]uint64, spec.Ways)
		t.repl[s] = NewReplacement("L", spec.Ways)
	}
	return t
}

func (t *TLB) page(addr uint64) uint64 { return addr >> t.pageShift }

func (t *TLB) setIndex(vpn uint64) int { return int(vpn % uint64(t.sets)) }

// Translate returns the access latency for addr: the base TLB latency on
// a hit, or the base latency plus a full page-walk cost on a miss (and
// installs the translation, since this model doesn't simulate page-walk
// failure or page faults).
func (t *TLB) Translate(addr uint64) (latency int, hit bool) {
	vpn := t.page(addr)
	s := t.setIndex(vpn)
	for w := 0; w < t.ways; w++ {
		if t.valid[s][w] && t.vpn[s][w] == vpn {
			t.repl[s].Touch(w)
			return t.latency, true
		}
	}
	// miss: walk the page table, then install
	for w := 0; w < t.ways; w++ {
		if !t.valid[s][w] {
			t.valid[s][w] = true
			t.vpn[s][w] = vpn
			t.repl[s].Touch(w)
			return t.latency + t.pageWalkCost, false
		}
	}
	victim := t.repl[s].Victim()
	t.vpn[s][victim] = vpn
	t.repl[s].Touch(victim)
	return t.latency + t.pageWalkCost, false
}
