// Package stats implements the simulator's Stats DB: a tree of named
// integer counters plus derived formula nodes evaluated lazily with
// govaluate, rendered to stderr/text, JSON/xlsx files, or exported live as
// Prometheus gauges. Grounded on intel-PerfSpect/internal/table/table.go's
// named-field tree shape and cmd/metrics/metrics.go's use of govaluate for
// metric expressions.
package stats

import (
	"fmt"
	"sort"
	"sync"

	"github.com/casbin/govaluate"
)

// DB is one core's (or the uncore's) counter tree.
type DB struct {
	mu       sync.Mutex
	counters map[string]uint64
	dists    map[string]map[string]uint64 // distribution counters, e.g. stall reasons
	formulas map[string]*govaluate.EvaluableExpression
}

// NewDB constructs an empty Stats DB.
func NewDB() *DB {
	return &DB{
		counters: make(map[string]uint64),
		dists:    make(map[string]map[string]uint64),
		formulas: make(map[string]*govaluate.EvaluableExpression),
	}
}

// Inc increments a named counter by delta.
func (d *DB) Inc(name string, delta uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.counters[name] += delta
}

// Set overwrites a named counter.
func (d *DB) Set(name string, value uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.counters[name] = value
}

// Get returns a named counter's current value.
func (d *DB) Get(name string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counters[name]
}

// IncDist increments a distribution counter's bucket (e.g.
// stall_reason["rob_full"]++), used for per-cycle backpressure reasons
// that should be recorded rather than surfaced as errors.
func (d *DB) IncDist(name, bucket string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.dists[name]
	if !ok {
		m = make(map[string]uint64)
		d.dists[name] = m
	}
	m[bucket]++
}

// Reset zeroes every counter and distribution; defined formulas are
// kept.
func (d *DB) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.counters = make(map[string]uint64)
	d.dists = make(map[string]map[string]uint64)
}

// DefineFormula registers a derived metric, e.g. DefineFormula("IPC",
// "instructions_committed / cycles"), evaluated lazily against the
// counter tree each time it's rendered.
func (d *DB) DefineFormula(name, expr string) error {
	e, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return fmt.Errorf("formula %s: %w", name, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.formulas[name] = e
	return nil
}

// Evaluate computes a registered formula's current value against the live
// counter tree.
func (d *DB) Evaluate(name string) (float64, error) {
	d.mu.Lock()
	expr, ok := d.formulas[name]
	params := make(map[string]interface{}, len(d.counters))
	for k, v := range d.counters {
		params[k] = float64(v)
	}
	d.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("formula %s not defined", name)
	}
	result, err := expr.Evaluate(params)
	if err != nil {
		return 0, fmt.Errorf("formula %s: %w", name, err)
	}
	f, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("formula %s did not evaluate to a number", name)
	}
	return f, nil
}

// CounterNames returns every counter name, sorted, for stable rendering
// order.
func (d *DB) CounterNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.counters))
	for k := range d.counters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FormulaNames returns every defined formula name, sorted.
func (d *DB) FormulaNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.formulas))
	for k := range d.formulas {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DistNames returns every distribution counter's name, sorted.
func (d *DB) DistNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.dists))
	for k := range d.dists {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DistBuckets returns a distribution counter's buckets and counts.
func (d *DB) DistBuckets(name string) map[string]uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]uint64, len(d.dists[name]))
	for k, v := range d.dists[name] {
		out[k] = v
	}
	return out
}
