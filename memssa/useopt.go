package memssa

// optimizeUses performs a one-shot forward sweep: for every Use in the
// function, walk its defining-edge chain upward from the trivial access
// installed by rename, stopping at the nearest access that may alias
// the Use's own instruction. A Def is tested with the oracle's
// instruction-pair query; a Phi is always treated as a clobber — the
// bulk optimizer deliberately does not push queries through phi
// incomings with a translated location, leaving that to the on-demand
// walker's optional push-through-phis mode (see Walker.SetPushThroughPhis).
//
// Termination is guaranteed because the chain strictly ascends the
// dominator tree (every defining edge points to a dominating access) and
// ends at LiveOnEntry, which is unconditionally treated as a clobber.
func optimizeUses(m *MemorySSA) {
	for _, b := range m.fn.Blocks {
		for _, a := range m.blockAccesses[b] {
			if a.kind != KindUse {
				continue
			}
			optimizeOne(m, a)
		}
	}
}

// optimizeOne refines a single Use in place. optimizeUses calls it for
// every Use during Build; the mutation API does not call it.
func optimizeOne(m *MemorySSA, use *Access) {
	clobber := use.defAccess
	for clobber != nil && clobber.kind != KindLiveOnEntry {
		if clobber.kind == KindPhi {
			break
		}
		// clobber.kind == KindDef
		if use.instr != nil && m.oracle.MayAlias(clobber.instr, use.instr) {
			break
		}
		clobber = clobber.defAccess
	}
	if clobber == nil {
		clobber = m.liveOnEntry
	}
	if clobber != use.defAccess {
		use.defAccess.removeUser(use)
		m.setDefiningEdge(use, clobber)
	}
	use.optimizedID = clobber.id
}
