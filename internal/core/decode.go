package core

// decodeStage moves up to DecodeWidth Mops from the fetch buffer into the
// decode buffer. Uop fusion (combining adjacent load+op, sta+std,
// load+op+store uops into a single multi-uop Mop) happens upstream, in
// the feeder/oracle's Mop construction, since it depends on
// instruction-level details this stage never sees raw bytes for;
// decodeStage's own job is strictly the per-cycle width-limited handoff
// plus the branch-target legality check.
func (c *Core) decodeStage() {
	width := c.cfg.DecodeWidth
	n := len(c.fetchBuf)
	if n > width {
		n = width
	}
	for i := 0; i < n; i++ {
		m := c.fetchBuf[i]
		m.WhenDecoded = c.cycle
		if m.IsBranch && m.Taken && m.TargetPC == 0 {
			// A taken branch with no resolved target indicates the
			// feeder handed us an incomplete Mop; treat it as
			// not-taken rather than redirecting fetch into address 0.
			m.Taken = false
		}
		c.decodeBuf = append(c.decodeBuf, m)
	}
	if n < len(c.fetchBuf) {
		c.fetchBuf = c.fetchBuf[n:]
	} else {
		c.fetchBuf = c.fetchBuf[:0]
	}
}
