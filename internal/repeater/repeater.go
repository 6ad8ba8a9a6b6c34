// Package repeater implements the repeater policy family: a pluggable
// decision, consulted by the memory hierarchy's upstream request path,
// about whether a core's private-cache miss should be funneled through a
// cross-process repeater link (multi-process co-simulation) or handled
// locally.
package repeater

// Policy decides how an LLC-bound memory request from a core's private
// cache hierarchy should be routed.
type Policy interface {
	// Route returns true if the request should go out over the repeater
	// link instead of to the local uncore.
	Route(addr uint64) bool
}

// New constructs a Policy by config-string name. "none" is the default
// used by single-process simulation; any other name selects the xbus
// (cross-process) repeater link.
func New(kind string) Policy {
	if kind == "xbus" {
		return xbusPolicy{}
	}
	return noneP{}
}

// noneP never routes through a repeater link: every request goes straight
// to the local uncore. This is what single-process `oosim simulate` uses.
type noneP struct{}

func (noneP) Route(uint64) bool { return false }

// xbusPolicy routes every request through the repeater link, matching the
// original's all-shared-memory-is-remote model for multi-process
// co-simulation.
type xbusPolicy struct{}

func (xbusPolicy) Route(uint64) bool { return true }
