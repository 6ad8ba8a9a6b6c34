package core

import (
	"oosim/internal/bpred"
	"oosim/internal/mop"
)

// commitStage retires up to CommitWidth Mops from the ROB head, strictly
// in program order: a Mop whose uops haven't all finished executing
// blocks every younger Mop from retiring this cycle, the same way a real
// in-order retire stage works. A branch misprediction discovered at
// commit squashes everything younger than it and retrains the predictor
// before that branch itself retires.
func (c *Core) commitStage() {
	retired := 0
	for retired < c.cfg.CommitWidth {
		head := c.rob.Head()
		if head == nil {
			break
		}
		if !head.AllUopsExecuted() {
			break
		}

		mispredict := false
		if head.IsBranch {
			if c.branchesThisCycle >= c.cfg.MaxBranchesPerCycle {
				break
			}
			c.branchesThisCycle++
			mispredict = c.resolveBranch(head)
			if mispredict {
				c.squash(head.ROBIndex, true)
				c.oracle.Recover(head.Seq)
				// Redirect fetch to the architecturally correct target now
				// that the oracle has resolved it; everything fetch sent
				// down the wrong path under the old action id was just
				// squashed above.
				if head.Taken {
					c.fetchPC = head.TargetPC
				} else {
					c.fetchPC = head.NextPC
				}
				c.fetchPCValid = true
			}
		}

		c.retireOne(head)
		retired++

		if mispredict {
			break // pipeline just flushed; nothing younger is left to commit
		}
	}

	if dAddr, dSize, data, ok := c.stq.DrainSenior(); ok {
		c.dl1.Access(c.ID, dAddr, dSize, false, c.actionID, c.cycle)
		_ = data
		c.stats.Inc("store_drains", 1)
	}
}

// resolveBranch trains the predictor against the oracle-resolved outcome
// and reports whether the fetch-time prediction was wrong.
func (c *Core) resolveBranch(m *mop.Mop) bool {
	pred, ok := c.pendingPredictions[m.Seq]
	delete(c.pendingPredictions, m.Seq)
	if !ok {
		pred = bpred.Prediction{}
	}
	c.bpredM.Resolve(pred, m.PC, m.TargetPC, m.NextPC, m.Taken, m.IsReturn, m.IsIndirect, m.IsCall)

	if m.Taken != pred.Taken {
		return true
	}
	if m.Taken && (!pred.TargetValid || pred.Target != m.TargetPC) {
		return true
	}
	return false
}

func (c *Core) retireOne(m *mop.Mop) {
	c.oracle.Commit(m.Seq)
	c.rob.RetireHead()
	m.WhenCommitted = c.cycle
	c.lastRetireCycle = c.cycle
	c.stats.Inc("instructions_retired", 1)

	if needsLDQSlot(m) {
		c.ldq.Retire()
	}
	if needsSTQSlot(m) && m.STQIndex >= 0 {
		c.stq.MarkSenior(m.STQIndex)
	}
}
