package core

import "oosim/internal/mop"

// fetchStage pulls up to FetchWidth Mops into the core's fetch buffer,
// driven by this core's own predicted PC rather than the oracle's true
// instruction stream: fetchPC (see core.go) tracks where fetch believes
// the program is going, and ConsumeAt hands back either the real next
// Mop (prediction was right) or a synthesized wrong-path placeholder
// (prediction was wrong), so the front end keeps fetching speculatively
// past a mispredicted branch exactly as hardware would, until commit
// notices and redirects it. Each fetched branch is predicted immediately
// and the prediction is stamped onto the Mop so the commit stage can
// later compare it against the oracle-resolved outcome and decide
// whether to squash — fetch-time prediction, commit-time resolution.
func (c *Core) fetchStage() {
	for len(c.fetchBuf) < c.cfg.FetchWidth {
		if len(c.decodeBuf)+len(c.fetchBuf) >= c.cfg.IQSize {
			c.stats.IncDist("stall_reason", "iq_full")
			break
		}

		var m *mop.Mop
		var ok bool
		if c.fetchPCValid {
			m, ok = c.oracle.ConsumeAt(c.fetchPC)
		} else {
			// The very first fetch of a run has no prediction history to
			// drive a requested PC from; bootstrap off the oracle's true
			// stream once, then switch to prediction-driven fetch below.
			m, ok = c.oracle.Consume()
		}
		if !ok {
			break
		}
		m.WhenFetched = c.cycle

		if _, lat := c.itlb.Translate(m.PC); lat > 0 {
			c.stats.Inc("itlb_latency_cycles", uint64(lat))
		}
		c.il1.Probe(m.PC)

		next := m.NextPC
		if m.IsBranch {
			pred := c.bpredM.Predict(m.PC, m.NextPC, m.IsReturn, m.IsIndirect, m.IsCall)
			m.PredTaken = pred.Taken
			m.PredTarget = pred.Target
			m.PredTargetValid = pred.TargetValid
			c.pendingPredictions[m.Seq] = pred
			if pred.Taken && pred.TargetValid {
				next = pred.Target
			}
		}
		c.fetchPC = next
		c.fetchPCValid = true

		c.fetchBuf = append(c.fetchBuf, m)
	}
}
