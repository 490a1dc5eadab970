package memssa

import "golang.org/x/tools/go/ssa"

// cacheKey identifies a memoized clobber query: a starting access plus
// the (possibly translated) location being probed. A nil Addr is a
// legitimate, distinct key — it means "unknown location, alias
// conservatively" — so it participates in the key like any other value.
type cacheKey struct {
	start *Access
	addr  ssa.Value
}

// Walker answers on-demand "what may have clobbered this access" queries
// with memoization.
type Walker struct {
	m     *MemorySSA
	cache map[cacheKey]*Access

	// pushThroughPhis opts into translating a probed location across a
	// Phi's incoming edges and continuing the walk instead of stopping
	// at the Phi. It is off by default: the walker's default behavior
	// is to stop at a Phi and return it as-is.
	pushThroughPhis bool

	// active guards walkPhi against loop-carried cycles; see walkPhi.
	active map[*Access]bool
}

func newWalker(m *MemorySSA) *Walker {
	return &Walker{m: m, cache: make(map[cacheKey]*Access)}
}

// SetPushThroughPhis toggles the optional phi-translating walk mode.
// When enabled, a query that reaches a Phi attempts to translate the
// probed location across each incoming edge (via the analysis's
// Translator) and continue the walk; if every incoming edge resolves to
// the same clobber, that clobber is returned, otherwise the Phi itself
// is returned as the conservative stand-in. This never affects the bulk
// use optimizer, which always stops at phis.
func (w *Walker) SetPushThroughPhis(v bool) { w.pushThroughPhis = v }

// Clobber looks up instr's access and dispatches to ClobberAccess. It
// returns nil if instr was never classified as memory-touching.
func (w *Walker) Clobber(instr ssa.Instruction) *Access {
	a := w.m.accessOf[instr]
	if a == nil {
		return nil
	}
	return w.ClobberAccess(a)
}

// ClobberAccess returns the nearest dominating access that may modify
// the memory a accesses, using a's own instruction to derive the probed
// location. For a Use this is exactly the access's current defining
// edge target refined further if stale; for a Def, the Def's own write
// is not considered — this returns the Def's *reaching* clobber, i.e.
// its own defining chain's clobber.
func (w *Walker) ClobberAccess(a *Access) *Access {
	switch a.kind {
	case KindPhi, KindLiveOnEntry:
		return a
	}
	loc := locationOf(a.instr)
	return w.walk(a.defAccess, loc)
}

// ClobberAt returns the nearest dominating access that may modify loc,
// starting the search at a. If a is itself a Def that may alias loc, a
// is returned directly.
func (w *Walker) ClobberAt(a *Access, loc Location) *Access {
	switch a.kind {
	case KindLiveOnEntry:
		return a
	case KindPhi:
		if !w.pushThroughPhis {
			return a
		}
		return w.walkPhi(a, loc)
	case KindDef:
		if w.m.oracle.MayAliasLocation(a.instr, loc) {
			return a
		}
	}
	return w.walk(a.defAccess, loc)
}

// Invalidate drops every cache entry whose walk could have passed
// through a. The mutation API calls this whenever a's identity, defining
// edge, or contents change. The cache records only each walk's start,
// not the accesses it passed through, so every entry is dropped.
func (w *Walker) Invalidate(a *Access) {
	clear(w.cache)
}

func (w *Walker) walk(start *Access, loc Location) *Access {
	if start == nil {
		return w.m.liveOnEntry
	}
	key := cacheKey{start: start, addr: loc.Addr}
	if cached, ok := w.cache[key]; ok {
		return cached
	}

	result := w.uncachedWalk(start, loc)
	w.cache[key] = result
	return result
}

func (w *Walker) uncachedWalk(cur *Access, loc Location) *Access {
	for {
		switch cur.kind {
		case KindLiveOnEntry:
			return cur
		case KindPhi:
			if !w.pushThroughPhis {
				return cur
			}
			return w.walkPhi(cur, loc)
		case KindDef:
			if w.m.oracle.MayAliasLocation(cur.instr, loc) {
				return cur
			}
			cur = cur.defAccess
		case KindUse:
			// Defining chains never point at a Use (see
			// Access.users doc comment); reaching one would be a
			// bug in the graph, not a valid walk step.
			panic("memssa: clobber walk stepped onto a MemoryUse")
		}
	}
}

// walkPhi implements the optional push-through-phis mode: it translates
// loc across every incoming edge via upwardDefs and continues the walk
// on each. If every incoming edge agrees on the same clobber, that
// clobber is the answer; any disagreement falls back to the phi itself,
// which is always a conservatively correct clobber.
//
// A loop-carried incoming edge can lead straight back to phi itself
// (the latch's reaching def may have phi as its own trivial defining
// access). w.active guards against that cycle: a phi already being
// resolved higher up the call stack is treated as an immediate clobber
// rather than walked into again.
func (w *Walker) walkPhi(phi *Access, loc Location) *Access {
	if w.active == nil {
		w.active = make(map[*Access]bool)
	}
	if w.active[phi] {
		return phi
	}
	w.active[phi] = true
	defer delete(w.active, phi)

	var agreed *Access
	first := true
	for step := range upwardDefs(phi, loc, w.m.tr) {
		next := w.walk(step.access, step.loc)
		if first {
			agreed = next
			first = false
			continue
		}
		if next != agreed {
			return phi
		}
	}
	if agreed == nil {
		return phi
	}
	return agreed
}
