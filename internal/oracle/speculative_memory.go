package oracle

// SpeculativeMemory is the oracle's run-ahead side table: since the oracle
// functionally executes stores far before the timing core actually
// commits them, it keeps its own shadow image of bytes written
// speculatively so that a load issued later in the run-ahead window (but
// still architecturally after the store) sees the right value without
// waiting for the timing core's store queue to catch up. This is
// separate from, and upstream of, the timing core's own store-to-load
// forwarding network — that network still runs on the real in-flight STQ
// and produces the cycle-accurate forwarding latency; this table only
// lets the *oracle* resolve values quickly enough to keep fetching ahead
// of the timing core.
type SpeculativeMemory struct {
	bytes map[uint64]byte
}

// NewSpeculativeMemory constructs an empty side table.
func NewSpeculativeMemory() *SpeculativeMemory {
	return &SpeculativeMemory{bytes: make(map[uint64]byte)}
}

// Store records size bytes at addr. A nil data slice means "value
// unknown" (the feeder doesn't always supply store data values, since
// bit-accurate computation correctness isn't modeled) — in that case the
// table still records that these bytes were written, which is enough to
// let Load report "defined" without claiming a specific value.
func (s *SpeculativeMemory) Store(addr uint64, size int, data []byte) {
	for i := 0; i < size; i++ {
		var b byte
		if data != nil && i < len(data) {
			b = data[i]
		}
		s.bytes[addr+uint64(i)] = b
	}
}

// Load returns the bytes the side table has recorded for the given range,
// and whether every byte in the range had been previously stored (a
// load of a range this table has no record for returns ok=false, meaning
// the value should be treated as coming from outside the oracle's
// run-ahead window).
func (s *SpeculativeMemory) Load(addr uint64, size int) (data []byte, ok bool) {
	data = make([]byte, size)
	ok = true
	for i := 0; i < size; i++ {
		b, present := s.bytes[addr+uint64(i)]
		if !present {
			ok = false
			continue
		}
		data[i] = b
	}
	return data, ok
}

// Forget drops recorded bytes for addr/size, so a later Load of that
// range reports ok=false. The Oracle never calls it: bytes of retired
// stores stay in the table.
func (s *SpeculativeMemory) Forget(addr uint64, size int) {
	for i := 0; i < size; i++ {
		delete(s.bytes, addr+uint64(i))
	}
}
