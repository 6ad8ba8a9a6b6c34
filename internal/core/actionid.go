package core

import "oosim/internal/mop"

// squash bumps the core's action id and tells every structure that holds
// action-tagged entries to drop its stale ones. This is the single choke
// point for the action-id cancellation discipline: any event still in
// flight against the old action id (a cache fill callback, an FU-pipe
// drain, a pending STQ search) is recognized as stale wherever it
// surfaces and is a no-op there, but this function additionally does the
// proactive cleanup of structures that can cheaply scan themselves.
func (c *Core) squash(robIndex int, keepMispredictor bool) {
	c.actionID++
	c.rob.SquashAfter(robIndex, keepMispredictor)
	c.rs.SquashStale(c.actionID)
	c.ldq.SquashStale(c.actionID)
	c.stq.SquashStale(c.actionID)
	c.fetchBuf = c.fetchBuf[:0]
	c.decodeBuf = c.decodeBuf[:0]
}

// CurrentAction returns the core's live action id.
func (c *Core) CurrentAction() mop.ActionID { return c.actionID }
