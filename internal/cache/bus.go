package cache

// Bus models a shared, width-limited interconnect (e.g. the FSB between
// LLC and the memory controller): a transfer occupies the bus for a
// duration proportional to its size, and busyUntil only ever moves
// forward.
type Bus struct {
	WidthBytes int
	busyUntil  uint64
}

// NewBus constructs a Bus of the given byte width per cycle.
func NewBus(widthBytes int) *Bus {
	if widthBytes <= 0 {
		widthBytes = 8
	}
	return &Bus{WidthBytes: widthBytes}
}

// Use reserves the bus for a transfer of sizeBytes starting no earlier
// than now, returning the cycle the transfer completes. If the bus is
// already busy past now, the transfer queues behind it.
func (b *Bus) Use(now uint64, sizeBytes int) uint64 {
	start := now
	if b.busyUntil > start {
		start = b.busyUntil
	}
	cycles := uint64((sizeBytes + b.WidthBytes - 1) / b.WidthBytes)
	if cycles == 0 {
		cycles = 1
	}
	end := start + cycles
	if end > b.busyUntil {
		b.busyUntil = end
	}
	return end
}

// Free reports whether the bus is idle at the given cycle.
func (b *Bus) Free(now uint64) bool {
	return now >= b.busyUntil
}

// BusyUntil returns the cycle at which the bus becomes free.
func (b *Bus) BusyUntil() uint64 {
	return b.busyUntil
}
