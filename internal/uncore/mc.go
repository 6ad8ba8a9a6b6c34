package uncore

import "oosim/internal/config"

// MemoryController models the latency a DRAM access adds once a request
// has crossed the FSB. Two variants: "ideal" (a fixed latency, useful
// for isolating core-side effects) and "simple" (a single
// open-row-buffer-per-bank model where a row hit is cheap and a row
// miss pays a full precharge+activate+access cost).
type MemoryController interface {
	Access(addr uint64, size int) (latency int)
}

// NewMemoryController constructs a MemoryController from the uncore
// config's "mc" selector.
func NewMemoryController(cfg config.UncoreConfig) MemoryController {
	if cfg.MC == "simple" {
		return newSimpleMC(cfg)
	}
	return idealMC{latency: cfg.MCLatency}
}

// idealMC returns a fixed latency for every access, regardless of
// address or access history.
type idealMC struct {
	latency int
}

func (m idealMC) Access(uint64, int) int {
	if m.latency <= 0 {
		return 100
	}
	return m.latency
}
