package config

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CacheSpec is the parsed form of a mini-DSL cache descriptor string, e.g.
// "DL1:64:8:64:8:64:2:L:W:T:8:C" (name:sets:ways:line-size:latency:
// mshr-entries:banks:replacement:write-policy:inclusion:mshr-targets:
// coherence-flag), parsed as a table-driven scan over named fields rather
// than positional globals.
type CacheSpec struct {
	Name           string
	Sets           int
	Ways           int
	LineSizeBytes  int
	LatencyCycles  int
	MSHREntries    int
	Banks          int
	Replacement    string // "L" LRU, "N" NMRU, "M" MRU, "R" random
	WritePolicy    string // "W" write-back, "T" write-through
	Inclusion      string // "T" inclusive, "N" non-inclusive
	MSHRTargets    int
	CoherenceFlag  string // "C" participates in coherence, "-" does not
}

// ParseCacheSpec parses a colon-separated mini-DSL cache string.
func ParseCacheSpec(s string) (CacheSpec, error) {
	fields := strings.Split(s, ":")
	if len(fields) != 12 {
		return CacheSpec{}, errors.Errorf("cache spec %q: expected 12 colon-separated fields, got %d", s, len(fields))
	}
	spec := CacheSpec{Name: fields[0]}
	ints := []*int{&spec.Sets, &spec.Ways, &spec.LineSizeBytes, &spec.LatencyCycles, &spec.MSHREntries, &spec.Banks}
	for i, dst := range ints {
		v, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return CacheSpec{}, errors.Wrapf(err, "cache spec %q: field %d", s, i+1)
		}
		*dst = v
	}
	spec.Replacement = fields[7]
	spec.WritePolicy = fields[8]
	spec.Inclusion = fields[9]
	// the last two fields (MSHR targets, coherence flag) are parsed
	// explicitly to keep the table-driven shape above legible.
	targets, err := strconv.Atoi(fields[10])
	if err != nil {
		return CacheSpec{}, errors.Wrapf(err, "cache spec %q: mshr targets field", s)
	}
	spec.MSHRTargets = targets
	spec.CoherenceFlag = fields[11]
	return spec, nil
}

// TLBSpec is the parsed form of a mini-DSL TLB descriptor string, e.g.
// "DTLB:128:4:1:30" (name:entries:ways:latency:page-walk-latency).
type TLBSpec struct {
	Name             string
	Entries          int
	Ways             int
	LatencyCycles    int
	PageWalkLatency  int
}

// ParseTLBSpec parses a colon-separated mini-DSL TLB string.
func ParseTLBSpec(s string) (TLBSpec, error) {
	fields := strings.Split(s, ":")
	if len(fields) != 5 {
		return TLBSpec{}, errors.Errorf("tlb spec %q: expected 5 colon-separated fields, got %d", s, len(fields))
	}
	spec := TLBSpec{Name: fields[0]}
	ints := []*int{&spec.Entries, &spec.Ways, &spec.LatencyCycles, &spec.PageWalkLatency}
	for i, dst := range ints {
		v, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return TLBSpec{}, errors.Wrapf(err, "tlb spec %q: field %d", s, i+1)
		}
		*dst = v
	}
	return spec, nil
}
