package core

import "oosim/internal/mop"

// allocStage allocates a ROB entry, one RS entry per uop and, for memory
// Mops, an LDQ/STQ entry for up to AllocWidth Mops from the decode buffer, in program
// order. A Mop that can't get every structure it needs stalls the whole
// cycle's remaining allocation: allocation is all-or-nothing per Mop,
// since a Mop's uops must enter the machine together or not at all.
func (c *Core) allocStage() {
	width := c.cfg.AllocWidth
	admitted := 0
	for admitted < width && len(c.decodeBuf) > 0 {
		m := c.decodeBuf[0]

		if c.rob.Full() {
			c.stats.IncDist("stall_reason", "rob_full")
			break
		}
		if needsLDQSlot(m) && c.ldq.Full() {
			c.stats.IncDist("stall_reason", "ldq_full")
			break
		}
		if needsSTQSlot(m) && c.stq.Full() {
			c.stats.IncDist("stall_reason", "stq_full")
			break
		}
		if c.rs.Free() < len(m.Uops) {
			c.stats.IncDist("stall_reason", "rs_full")
			break
		}

		m.ROBIndex, _ = c.rob.Allocate(m)
		m.WhenAllocated = c.cycle

		m.LDQIndex, m.STQIndex = -1, -1
		if needsLDQSlot(m) {
			m.LDQIndex, _ = c.ldq.Allocate(m, leadUop(m), c.actionID, c.stq.Color())
		}
		if needsSTQSlot(m) {
			m.STQIndex = c.stq.Allocate(m, c.actionID)
		}
		c.linkDataflow(m)
		for i := range m.Uops {
			c.rs.Allocate(m, &m.Uops[i], c.actionID)
		}

		c.decodeBuf = c.decodeBuf[1:]
		admitted++
	}
}

func needsLDQSlot(m *mop.Mop) bool {
	for i := range m.Uops {
		if m.Uops[i].Class == mop.ClassLoad {
			return true
		}
	}
	return false
}

func needsSTQSlot(m *mop.Mop) bool {
	for i := range m.Uops {
		c := m.Uops[i].Class
		if c == mop.ClassStore || c == mop.ClassStoreAddress || c == mop.ClassStoreData {
			return true
		}
	}
	return false
}

func leadUop(m *mop.Mop) *mop.Uop {
	for i := range m.Uops {
		if m.Uops[i].Class == mop.ClassLoad {
			return &m.Uops[i]
		}
	}
	return &m.Uops[0]
}
