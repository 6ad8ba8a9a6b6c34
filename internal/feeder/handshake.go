package feeder

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// MopRecord is the fixed-size wire format a feeder child process writes
// into the shared-memory ring for the simulator process to read: a
// field-at-a-time serialization of a Mop across the process boundary.
type MopRecord struct {
	Seq        uint64
	PC         uint64
	NextPC     uint64
	TargetPC   uint64
	IsBranch   uint8
	IsCall     uint8
	IsReturn   uint8
	IsIndirect uint8
	Taken      uint8
	// SrcRegs/DstRegs are the logical register names the feeder's decoder
	// assigned this Mop's single uop, -1 marking an unused slot; they
	// carry the dataflow linkage the simulator's rename stage needs
	// across the process boundary the same way PC/NextPC carries control
	// flow.
	SrcRegs [3]int8
	DstRegs [2]int8
	_       [6]byte // padding to keep the record 8-byte aligned
}

// mopRecordSize is the on-the-wire byte size of MopRecord.
const mopRecordSize = 8 * 6 // six uint64-equivalent slots after padding

// Handshake is the readiness rendezvous the harness sets up between
// itself and its children: a shared-memory segment keyed by a
// well-known name, synchronized with a flock-based stand-in for a named
// mutex. Every participant calls Arrive once it is ready; the harness
// (or any participant) can call Wait to block until all participants
// have arrived.
//
// Linux has no direct equivalent of a Windows named mutex with
// automatic-release-on-exit semantics, so this is implemented with a
// well-known file under os.TempDir() locked with flock(2) guarding a
// shared counter memory-mapped from the same file.
type Handshake struct {
	path string
	file *os.File
	mu   sync.Mutex

	mapped []byte
}

// NewHandshake opens (creating if necessary) the named handshake segment
// for runID, sized to hold the ready-countdown counter.
func NewHandshake(runID string) (*Handshake, error) {
	path := filepath.Join(os.TempDir(), "oosim-handshake-"+runID)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, errors.Wrapf(err, "opening handshake segment %s", path)
	}
	if err := f.Truncate(8); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "sizing handshake segment %s", path)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, 8, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "mmap handshake segment %s", path)
	}
	return &Handshake{path: path, file: f, mapped: data}, nil
}

// Init sets the ready-countdown to n participants. Only the harness
// process calls this, before spawning children.
func (h *Handshake) Init(n uint64) error {
	if err := h.lock(); err != nil {
		return err
	}
	defer h.unlock()
	binary.LittleEndian.PutUint64(h.mapped, n)
	return nil
}

// Arrive decrements the ready-countdown by one.
func (h *Handshake) Arrive() error {
	if err := h.lock(); err != nil {
		return err
	}
	defer h.unlock()
	n := binary.LittleEndian.Uint64(h.mapped)
	if n > 0 {
		n--
	}
	binary.LittleEndian.PutUint64(h.mapped, n)
	return nil
}

// Remaining returns the current ready-countdown value.
func (h *Handshake) Remaining() (uint64, error) {
	if err := h.lock(); err != nil {
		return 0, err
	}
	defer h.unlock()
	return binary.LittleEndian.Uint64(h.mapped), nil
}

// Wait polls the ready-countdown until it reaches zero or ctx is
// cancelled, returning ctx.Err() in the latter case.
func (h *Handshake) Wait(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		n, err := h.Remaining()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close unmaps and removes the handshake segment. Only the harness (the
// last owner) should call this, once all children have exited.
func (h *Handshake) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.mapped != nil {
		_ = unix.Munmap(h.mapped)
		h.mapped = nil
	}
	err := h.file.Close()
	_ = os.Remove(h.path)
	return err
}

func (h *Handshake) lock() error {
	h.mu.Lock()
	if err := unix.Flock(int(h.file.Fd()), unix.LOCK_EX); err != nil {
		h.mu.Unlock()
		return errors.Wrap(err, "locking handshake segment")
	}
	return nil
}

func (h *Handshake) unlock() {
	_ = unix.Flock(int(h.file.Fd()), unix.LOCK_UN)
	h.mu.Unlock()
}
