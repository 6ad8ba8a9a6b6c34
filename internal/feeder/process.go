package feeder

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"oosim/internal/mop"
)

// ringHeaderSize is the byte size of the ring's head/tail cursors at the
// front of the shared-memory segment.
const ringHeaderSize = 16

// ProcessFeeder implements Feeder by reading MopRecords that an external
// feeder process writes into a shared-memory ring buffer, for a
// multi-process harness model. It is the simulator-process side of the
// handshake; the feeder-process side (not part of this repository) is
// responsible for writing records and advancing the tail cursor.
type ProcessFeeder struct {
	file    *os.File
	mapped  []byte
	ring    []byte
	slots   int
	seq     mop.SeqNum
}

// OpenProcessFeeder maps the named shared-memory ring for runID, sized to
// hold slots MopRecords plus the ring header.
func OpenProcessFeeder(runID string, slots int) (*ProcessFeeder, error) {
	path := "/dev/shm/oosim-ring-" + runID
	size := ringHeaderSize + slots*mopRecordSize
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, errors.Wrapf(err, "opening feeder ring %s", path)
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "sizing feeder ring %s", path)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "mmap feeder ring %s", path)
	}
	return &ProcessFeeder{
		file:   f,
		mapped: data,
		ring:   data[ringHeaderSize:],
		slots:  slots,
	}, nil
}

func (p *ProcessFeeder) head() uint64 { return binary.LittleEndian.Uint64(p.mapped[0:8]) }
func (p *ProcessFeeder) tail() uint64 { return binary.LittleEndian.Uint64(p.mapped[8:16]) }
func (p *ProcessFeeder) setHead(v uint64) {
	binary.LittleEndian.PutUint64(p.mapped[0:8], v)
}

// GetNextMop blocks-free polls the ring: if the consumer (head) has caught
// up to the producer (tail), it returns ok=false for this call and the
// caller (the oracle) is expected to retry on a later cycle rather than
// block the whole simulator.
func (p *ProcessFeeder) GetNextMop() (*mop.Mop, bool) {
	h, t := p.head(), p.tail()
	if h == t {
		return nil, false
	}
	slot := int(h%uint64(p.slots)) * mopRecordSize
	rec := decodeMopRecord(p.ring[slot : slot+mopRecordSize])
	p.setHead(h + 1)

	m := &mop.Mop{
		Seq:        p.seq,
		PC:         rec.PC,
		NextPC:     rec.NextPC,
		TargetPC:   rec.TargetPC,
		IsBranch:   rec.IsBranch != 0,
		IsCall:     rec.IsCall != 0,
		IsReturn:   rec.IsReturn != 0,
		IsIndirect: rec.IsIndirect != 0,
		Taken:      rec.Taken != 0,
		BOM:        true,
		EOM:        true,
	}
	p.seq++
	cls := mop.ClassALU
	if m.IsBranch {
		cls = mop.ClassBranch
	}
	m.Uops = []mop.Uop{{Class: cls, Latency: 1, SrcRegs: nonNegative(rec.SrcRegs[:]), DstRegs: nonNegative(rec.DstRegs[:])}}
	return m, true
}

// nonNegative converts a fixed-size slot array of logical register names
// (-1 meaning "unused") into the variable-length slice the dataflow
// linkage in core/rename.go walks.
func nonNegative(slots []int8) []int {
	var out []int
	for _, s := range slots {
		if s >= 0 {
			out = append(out, int(s))
		}
	}
	return out
}

func decodeMopRecord(b []byte) MopRecord {
	return MopRecord{
		Seq:        binary.LittleEndian.Uint64(b[0:8]),
		PC:         binary.LittleEndian.Uint64(b[8:16]),
		NextPC:     binary.LittleEndian.Uint64(b[16:24]),
		TargetPC:   binary.LittleEndian.Uint64(b[24:32]),
		IsBranch:   b[32],
		IsCall:     b[33],
		IsReturn:   b[34],
		IsIndirect: b[35],
		Taken:      b[36],
		SrcRegs:    [3]int8{int8(b[37]), int8(b[38]), int8(b[39])},
		DstRegs:    [2]int8{int8(b[40]), int8(b[41])},
	}
}

// The remaining Feeder methods are no-ops on the simulator side of the
// handshake: commit/mmap/brk/stack/LLC-warm/slice notifications are not
// sent back to the feeder process.
func (p *ProcessFeeder) CommitStore(addr uint64, size int, data []byte) {}
func (p *ProcessFeeder) NotifyMmap(addr uint64, length uint64, prot int) {}
func (p *ProcessFeeder) NotifyMunmap(addr uint64, length uint64)         {}
func (p *ProcessFeeder) UpdateBrk(newBrk uint64)                         {}
func (p *ProcessFeeder) MapStack(base, size uint64)                      {}
func (p *ProcessFeeder) WarmLLC()                                        {}
func (p *ProcessFeeder) SliceStart()                                     {}
func (p *ProcessFeeder) SliceEnd()                                       {}

// Close unmaps and removes the ring.
func (p *ProcessFeeder) Close() error {
	if p.mapped != nil {
		_ = unix.Munmap(p.mapped)
		p.mapped = nil
	}
	err := p.file.Close()
	_ = os.Remove(p.file.Name())
	return err
}
