package core

import "oosim/internal/mop"

// regProducerEntry is the rename table's record of the most recent
// in-flight producer of a logical register: which uop will write it and
// which Mop that uop belongs to, so a stale (squashed) entry is
// recognized by action id the same way RS/LDQ/STQ entries are.
type regProducerEntry struct {
	uop   *mop.Uop
	owner *mop.Mop
}

// linkDataflow wires m's uops into the dataflow graph before they enter
// the RS: for each source register, it looks up the register's current
// producer in the rename table and, if that producer is still in flight
// on the live path and hasn't executed yet, links this uop into the
// producer's Odep list and bumps WaitingOn; otherwise the source is
// already available (no producer was ever live, it already executed, or
// its Mop was squashed) and contributes nothing to WaitingOn. Every
// destination register then becomes this uop's entry in the table,
// classic last-writer-wins register renaming.
func (c *Core) linkDataflow(m *mop.Mop) {
	for i := range m.Uops {
		u := &m.Uops[i]
		for _, r := range u.SrcRegs {
			prod, ok := c.regProducer[r]
			if !ok || prod.owner.Action != c.actionID || prod.uop.Executed {
				continue
			}
			prod.uop.Odep = append(prod.uop.Odep, u)
			u.WaitingOn++
		}
		for _, r := range u.DstRegs {
			c.regProducer[r] = regProducerEntry{uop: u, owner: m}
		}
	}
}
