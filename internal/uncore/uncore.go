// Package uncore implements the shared last-level cache, front-side bus,
// memory controller and DRAM model that sit behind every core's private
// cache hierarchy.
package uncore

import (
	"oosim/internal/cache"
	"oosim/internal/config"
	"oosim/internal/mop"
)

// Uncore bundles the shared LLC, the bus to the memory controller, and the
// memory controller/DRAM model itself.
type Uncore struct {
	LLC *cache.Cache
	FSB *cache.Bus
	MC  MemoryController
}

// New builds the uncore from its configuration section.
func New(cfg config.UncoreConfig) (*Uncore, error) {
	spec, err := config.ParseCacheSpec(cfg.LLC)
	if err != nil {
		return nil, err
	}
	llc := cache.New(spec, cfg.Coherence, "stream")
	fsb := cache.NewBus(cfg.FSBWidthBytes)
	mc := NewMemoryController(cfg)
	return &Uncore{LLC: llc, FSB: fsb, MC: mc}, nil
}

// Access services an LLC-bound request: on an LLC hit it returns the
// LLC's latency; on a miss it uses the FSB to reach the memory controller
// and adds the controller's modeled DRAM latency. The returned MSHR (if
// any) is the LLC's own miss-tracking entry, for callers that need to
// attach a completion callback. shared reports whether the LLC's
// coherence controller found another core already sharing the line.
func (u *Uncore) Access(now uint64, coreID int, addr uint64, size int, isLoad bool, action mop.ActionID) (completeAt uint64, hit bool, mshr *cache.MSHR, allocated bool, shared bool) {
	h, lat, m, ok, shared := u.LLC.Access(coreID, addr, size, isLoad, action, now)
	if h {
		return now + uint64(lat), true, nil, true, shared
	}
	if !ok {
		return 0, false, nil, false, shared
	}
	busEnd := u.FSB.Use(now, size)
	dramLatency := u.MC.Access(addr, size)
	return busEnd + uint64(dramLatency), false, m, true, shared
}
