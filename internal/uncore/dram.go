package uncore

import "oosim/internal/config"

// simpleMC implements a single open-row-buffer-per-bank DRAM model: each
// bank remembers which row it last opened, so a request to the same row
// (row-buffer hit) pays only the row-hit latency while a request to a
// different row (row-buffer miss) pays the full row-miss latency, which
// includes the implicit precharge and activate of the new row.
type simpleMC struct {
	banks        int
	openRow      []int64 // -1 means no row currently open in this bank
	rowHitLat    int
	rowMissLat   int
	rowSizeBytes int
}

func newSimpleMC(cfg config.UncoreConfig) *simpleMC {
	banks := cfg.DRAMBanksPerRank
	if banks <= 0 {
		banks = 8
	}
	rowHit := cfg.DRAMRowHitLatency
	if rowHit <= 0 {
		rowHit = 30
	}
	rowMiss := cfg.DRAMRowMissLatency
	if rowMiss <= 0 {
		rowMiss = 90
	}
	m := &simpleMC{
		banks:        banks,
		openRow:      make([]int64, banks),
		rowHitLat:    rowHit,
		rowMissLat:   rowMiss,
		rowSizeBytes: 8192,
	}
	for i := range m.openRow {
		m.openRow[i] = -1
	}
	return m
}

func (m *simpleMC) bankOf(addr uint64) int {
	return int((addr / uint64(m.rowSizeBytes)) % uint64(m.banks))
}

func (m *simpleMC) rowOf(addr uint64) int64 {
	return int64(addr / uint64(m.rowSizeBytes) / uint64(m.banks))
}

func (m *simpleMC) Access(addr uint64, size int) int {
	bank := m.bankOf(addr)
	row := m.rowOf(addr)
	if m.openRow[bank] == row {
		return m.rowHitLat
	}
	m.openRow[bank] = row
	return m.rowMissLat
}
