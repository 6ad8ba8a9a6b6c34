package bpred

// Meta is the single predictor the core actually consults: it composes N
// direction predictors through a fusion selector for conditional branches,
// a BTB for direct-branch targets, an indirect BTB for indirect
// branches/calls, and a RAS for returns.
type Meta struct {
	directions []Direction
	fusion     Fusion
	btb        *BTB
	indirect   *IndirectBTB
	ras        RAS
}

// NewMeta builds the meta-predictor from config-selected component names.
func NewMeta(directionKinds []string, fusionKind string, btbSets, btbWays, indirectEntries, rasDepth int, rasKind string) *Meta {
	dirs := make([]Direction, 0, len(directionKinds))
	for _, k := range directionKinds {
		dirs = append(dirs, NewDirection(k))
	}
	if len(dirs) == 0 {
		dirs = append(dirs, NewDirection("gshare"))
	}
	return &Meta{
		directions: dirs,
		fusion:     NewFusion(fusionKind, len(dirs)),
		btb:        NewBTB(btbSets, btbWays),
		indirect:   NewIndirectBTB(indirectEntries),
		ras:        NewRAS(rasKind, rasDepth),
	}
}

// Prediction is what the core acts on at fetch time for a branch Mop.
type Prediction struct {
	Taken        bool
	Target       uint64
	TargetValid  bool
	directionVotes []bool // retained for Update's Train call
}

// Predict produces a full branch prediction for a branch at pc. isReturn,
// isIndirect and isCall steer which target source is consulted; fallPC is
// the architectural fall-through used when the direction prediction is
// not-taken.
func (m *Meta) Predict(pc, fallPC uint64, isReturn, isIndirect, isCall bool) Prediction {
	votes := make([]bool, len(m.directions))
	for i, d := range m.directions {
		votes[i] = d.Predict(pc)
	}
	taken := m.fusion.Combine(votes)
	pred := Prediction{Taken: taken, directionVotes: votes}

	if isReturn {
		if addr, ok := m.ras.Pop(); ok {
			pred.Target = addr
			pred.TargetValid = true
			pred.Taken = true
		}
		return pred
	}
	if !taken {
		pred.Target = fallPC
		pred.TargetValid = true
		return pred
	}
	if isIndirect {
		if target, ok := m.indirect.Lookup(pc); ok {
			pred.Target = target
			pred.TargetValid = true
		}
		return pred
	}
	if target, ok := m.btb.Lookup(pc); ok {
		pred.Target = target
		pred.TargetValid = true
	}
	if isCall {
		// Call's return address is pushed once the branch resolves, by
		// Resolve below, not here: the push must use the true
		// fall-through (this function doesn't yet know the instruction
		// length at prediction time for all callers).
	}
	return pred
}

// Resolve trains every constituent with the branch's actual outcome and
// target, and maintains the BTB/indirect-BTB/RAS state. Call this once the
// branch executes, from the core's execute or commit stage depending on
// how speculative the update policy is configured to be.
func (m *Meta) Resolve(pred Prediction, pc, target, returnAddr uint64, taken, isReturn, isIndirect, isCall bool) {
	for _, d := range m.directions {
		d.Update(pc, taken)
	}
	m.fusion.Train(pred.directionVotes, taken)

	if isReturn {
		return
	}
	if taken {
		if isIndirect {
			m.indirect.Update(pc, target)
		} else {
			m.btb.Update(pc, target)
		}
	}
	if isCall {
		m.ras.Push(returnAddr)
	}
}
