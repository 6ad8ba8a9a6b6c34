package core

import (
	"oosim/internal/cache"
	"oosim/internal/mop"
)

// pendingFill is a memory-hierarchy miss in flight, due to land (and fire
// its merged targets' callbacks) at completeAt.
type pendingFill struct {
	completeAt uint64
	cache      *cache.Cache
	mshr       *cache.MSHR
}

// executeStage runs the classic two-phase RS wakeup/select, dispatches
// newly issued uops into their functional-unit pipe, drains every pipe
// whose uops have finished this cycle, and drives the load pipeline
// (STQ search, store-to-load forwarding, DL1/DTLB access) and pending
// memory-hierarchy fills.
func (c *Core) executeStage() {
	now := c.cycle

	for _, is := range c.rs.Select(c.cfg.IssueWidth, c.actionID) {
		c.dispatch(now, is)
	}

	c.drainALU(now)
	c.drainFP(now)
	c.drainBranch(now)
	c.drainAGU(now)
	c.drainLoadFills(now)
	c.drainSTQSearches(now)
	c.drainPendingFills(now)
}

// completeUop marks u as finished for this cycle and wakes every
// consumer its allocate-time dataflow linkage (linkDataflow, rename.go)
// recorded, decrementing each one's WaitingOn; a consumer that reaches 0
// becomes issue-eligible the next time RS.Select runs. Odep is cleared
// once walked so this Uop can't deliver the same wakeup twice.
func (c *Core) completeUop(u *mop.Uop, now uint64) {
	u.Executed = true
	u.WhenExecuted = now
	for _, consumer := range u.Odep {
		if consumer.WaitingOn > 0 {
			consumer.WaitingOn--
		}
	}
	u.Odep = nil
}

func (c *Core) dispatch(now uint64, is Issued) {
	u, owner := is.Uop, is.Owner
	switch u.Class {
	case mop.ClassALU, mop.ClassNop:
		c.fuALU.Issue(now, u.Latency, owner, u, c.actionID)
	case mop.ClassFP:
		c.fuFP.Issue(now, u.Latency, owner, u, c.actionID)
	case mop.ClassBranch:
		c.fuBr.Issue(now, u.Latency, owner, u, c.actionID)
	case mop.ClassLoad, mop.ClassStoreAddress:
		c.fuAgu.Issue(now, u.Latency, owner, u, c.actionID)
	case mop.ClassStoreData:
		// Store data has no address-generation dependency; it's ready to
		// land in the STQ as soon as it issues.
		c.stq.SetData(owner.STQIndex, make([]byte, u.Size))
		c.completeUop(u, now)
	}
}

func (c *Core) drainALU(now uint64) { c.finishSimple(c.fuALU.Drain(now, c.actionID), now) }
func (c *Core) drainFP(now uint64)  { c.finishSimple(c.fuFP.Drain(now, c.actionID), now) }

func (c *Core) drainBranch(now uint64) {
	for _, ev := range c.fuBr.Drain(now, c.actionID) {
		c.completeUop(ev.uop, now)
	}
}

func (c *Core) finishSimple(events []fuEvent, now uint64) {
	for _, ev := range events {
		c.completeUop(ev.uop, now)
	}
}

// drainAGU completes address-generation uops: for a store, the resolved
// address lands directly in the STQ; for a load, address generation hands
// off to the STQ search pipe rather than completing the uop immediately,
// since a load isn't done until it has either forwarded from an older
// store or reached the cache.
func (c *Core) drainAGU(now uint64) {
	for _, ev := range c.fuAgu.Drain(now, c.actionID) {
		switch ev.uop.Class {
		case mop.ClassStoreAddress:
			c.stq.SetAddress(ev.owner.STQIndex, ev.uop.Addr, ev.uop.Size)
			c.completeUop(ev.uop, now)
		case mop.ClassLoad:
			c.ldq.SetAddress(ev.owner.LDQIndex, ev.uop.Addr, ev.uop.Size)
			c.stq.ScheduleSearch(now, 1, ev.owner.LDQIndex)
		}
	}
}

// drainSTQSearches resolves every STQ search-pipe completion due this
// cycle: a hit forwards the store's data directly, a stall retries the
// search next cycle, and no-match sends the load on to DL1/DTLB.
func (c *Core) drainSTQSearches(now uint64) {
	for _, idx := range c.stq.DrainSearches(now) {
		e := &c.ldq.entries[idx]
		if !e.valid || e.action != c.actionID {
			continue // squashed since the search was scheduled
		}
		result := c.stq.Probe(e.storeColor, e.owner.PC, e.addr, e.size, c.memdep)
		switch result {
		case ForwardStall:
			c.stq.ScheduleSearch(now, 1, idx)
		case ForwardHit:
			e.forwarded = true
			e.completed = true
			c.completeUop(e.uop, now)
			c.stats.Inc("store_to_load_forwards", 1)
		case ForwardNone:
			c.issueToDL1(now, idx, e)
		}
	}
}

func (c *Core) issueToDL1(now uint64, idx int, e *ldqEntry) {
	if _, lat := c.dtlb.Translate(e.addr); lat > 0 {
		c.stats.Inc("dtlb_latency_cycles", uint64(lat))
	}
	hit, lat, mshr, allocated, shared := c.dl1.Access(c.ID, e.addr, e.size, true, c.actionID, now)
	if !allocated {
		c.stats.IncDist("stall_reason", "dl1_mshr_full")
		c.stq.ScheduleSearch(now, 1, idx)
		return
	}
	if shared {
		c.stats.Inc("coherence_shared_requests", 1)
	} else {
		c.stats.Inc("coherence_private_requests", 1)
	}
	if hit {
		c.scheduleLoadFill(now+uint64(lat), idx)
		return
	}
	action := c.actionID
	ldq := c.ldq
	mshr.AddTarget(cache.Target{
		Addr: e.addr, Size: e.size, IsLoad: true, Action: action,
		Complete: func(fillAction mop.ActionID) {
			if fillAction != action {
				return
			}
			entry := &ldq.entries[idx]
			if entry.valid && entry.action == fillAction {
				entry.completed = true
				c.completeUop(entry.uop, c.cycle)
			}
		},
	})
	if mshr.IssuedAt == now {
		total := lat + c.memoryLatency(e.addr, e.size)
		c.pendingFills = append(c.pendingFills, pendingFill{completeAt: now + uint64(total), cache: c.dl1, mshr: mshr})
	}
}

// memoryLatency asks the wired uncore for the latency a miss beyond this
// core's private cache should take, falling back to a fixed estimate when
// no uncore is wired (e.g. a Core exercised on its own in a test) or when
// the repeater policy says this request belongs on a cross-process link
// this single-process build has no peer to answer on.
func (c *Core) memoryLatency(addr uint64, size int) int {
	if c.repeater.Route(addr) {
		c.stats.IncDist("stall_reason", "repeater_routed")
		return fallbackMemoryLatency
	}
	if c.uncore == nil {
		return fallbackMemoryLatency
	}
	completeAt, _, _, _, _ := c.uncore.Access(c.cycle, c.ID, addr, size, true, c.actionID)
	if completeAt <= c.cycle {
		return fallbackMemoryLatency
	}
	return int(completeAt - c.cycle)
}

const fallbackMemoryLatency = 100

// scheduleLoadFill registers a DL1-hit load to complete at the given
// cycle, using a dedicated FU-style pipe so many hits in flight at once
// still complete in the right order without per-cycle scanning.
func (c *Core) scheduleLoadFill(completeAt uint64, ldqIndex int) {
	e := &c.ldq.entries[ldqIndex]
	latency := 1
	if completeAt > c.cycle {
		latency = int(completeAt - c.cycle)
	}
	c.loadFill.Issue(c.cycle, latency, e.owner, e.uop, c.actionID)
}

func (c *Core) drainLoadFills(now uint64) {
	for _, ev := range c.loadFill.Drain(now, c.actionID) {
		idx := ev.owner.LDQIndex
		e := &c.ldq.entries[idx]
		if !e.valid {
			continue
		}
		e.completed = true
		c.completeUop(ev.uop, now)
	}
}

func (c *Core) drainPendingFills(now uint64) {
	remaining := c.pendingFills[:0]
	for _, pf := range c.pendingFills {
		if pf.completeAt > now {
			remaining = append(remaining, pf)
			continue
		}
		pf.cache.CompleteFill(pf.mshr)
	}
	c.pendingFills = remaining
}
