// Package dvfs implements dynamic voltage/frequency scaling policies: a
// core's clock ratio against the uncore can change at runtime under a
// pluggable policy, consulted once per sampling window by the
// simulator's tick loop.
package dvfs

// Policy decides whether a core's clock ratio should change, based on the
// sampled IPC over the last window. It is consulted at a fixed cadence
// (not every cycle) so its overhead is negligible.
type Policy interface {
	// Sample reports a completed window's instructions-per-cycle and
	// returns the new clock ratio to use (core cycles per uncore cycle),
	// or the unchanged current ratio if no change is warranted.
	Sample(windowIPC float64, currentRatio int) int
}

// New constructs a Policy by config-string name.
func New(kind string, baseRatio int) Policy {
	if kind == "sample" {
		return &samplePolicy{base: baseRatio, low: baseRatio, high: baseRatio * 2}
	}
	return noneP{}
}

// noneP never changes the clock ratio; this is the default fixed
// core:uncore ratio.
type noneP struct{}

func (noneP) Sample(_ float64, currentRatio int) int { return currentRatio }

// samplePolicy implements phase-sampling DVFS: when the sampled IPC drops
// below a low-water mark (the core is memory-bound and gains little from
// a fast clock) it requests the slow ratio; once IPC recovers above a
// high-water mark it requests the fast ratio.
type samplePolicy struct {
	base int
	low  int
	high int
}

const (
	ipcLowWater  = 0.5
	ipcHighWater = 1.5
)

func (s *samplePolicy) Sample(windowIPC float64, currentRatio int) int {
	if windowIPC < ipcLowWater {
		return s.low
	}
	if windowIPC > ipcHighWater {
		return s.high
	}
	return currentRatio
}
