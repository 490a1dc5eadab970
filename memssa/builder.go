package memssa

import (
	"golang.org/x/tools/go/ssa"

	"github.com/gossa/memssa/domtree"
)

// Build constructs the memory SSA graph for fn: it scans every
// instruction, classifies it with oracle, places phis at the iterated
// dominance frontier of the blocks containing a Def, renames in
// dominator-tree preorder, and finally runs the use optimizer so every
// Use's defining edge already points at its clobber. tr may be nil; a
// nil Translator simply disables phi pointer-translation during upward
// walks (locations are carried through a phi unchanged).
//
// fn, its dominator tree, and oracle must outlive the returned analysis;
// Build keeps non-owning references to all three.
func Build(fn *ssa.Function, oracle Oracle, domt *domtree.Tree, tr Translator) *MemorySSA {
	m := &MemorySSA{
		fn:            fn,
		domt:          domt,
		oracle:        oracle,
		tr:            tr,
		accessOf:      make(map[ssa.Instruction]*Access),
		phiOf:         make(map[*ssa.BasicBlock]*Access),
		blockAccesses: make(map[*ssa.BasicBlock][]*Access),
		orderValid:    make(map[*ssa.BasicBlock]bool),
	}
	m.liveOnEntry = &Access{kind: KindLiveOnEntry, id: 1}
	m.nextID = 1
	m.walker = newWalker(m)

	definingBlocks := m.scan()
	m.placePhis(definingBlocks)
	m.rename()
	optimizeUses(m)
	return m
}

// scan classifies every instruction in fn and creates its Use/Def,
// returning the set of blocks containing at least one Def.
func (m *MemorySSA) scan() map[*ssa.BasicBlock]bool {
	definingBlocks := make(map[*ssa.BasicBlock]bool)
	for _, b := range m.fn.Blocks {
		for _, instr := range b.Instrs {
			class := m.oracle.Classify(instr)
			switch class {
			case ClassSkip:
				continue
			case ClassUse:
				a := &Access{kind: KindUse, block: b, instr: instr}
				m.accessOf[instr] = a
				m.blockAccesses[b] = append(m.blockAccesses[b], a)
			case ClassDef:
				a := &Access{kind: KindDef, id: m.freshID(), block: b, instr: instr}
				m.accessOf[instr] = a
				m.blockAccesses[b] = append(m.blockAccesses[b], a)
				definingBlocks[b] = true
			}
		}
	}
	return definingBlocks
}

// placePhis computes the iterated dominance frontier of definingBlocks
// and adds an empty MemoryPhi (incomings all nil) to every block in it
// that doesn't already have one, iterating until no new defining block is
// discovered. Phis are placed before renaming fills their incomings;
// building defs and incomings together would require a second pass to
// patch up back-edges into not-yet-renamed blocks.
func (m *MemorySSA) placePhis(definingBlocks map[*ssa.BasicBlock]bool) {
	frontier := m.domt.Frontier()

	work := make([]*ssa.BasicBlock, 0, len(definingBlocks))
	for b := range definingBlocks {
		work = append(work, b)
	}

	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		for _, f := range frontier[b] {
			if m.phiOf[f] != nil {
				continue
			}
			phi := &Access{
				kind:     KindPhi,
				id:       m.freshID(),
				block:    f,
				incoming: make([]PhiIncoming, len(f.Preds)),
			}
			for i, p := range f.Preds {
				phi.incoming[i] = PhiIncoming{Pred: p}
			}
			m.phiOf[f] = phi
			m.blockAccesses[f] = prependAccess(m.blockAccesses[f], phi)
			if !definingBlocks[f] {
				definingBlocks[f] = true
				work = append(work, f)
			}
		}
	}
}

func prependAccess(list []*Access, a *Access) []*Access {
	out := make([]*Access, 0, len(list)+1)
	out = append(out, a)
	out = append(out, list...)
	return out
}

// rename walks the dominator tree in preorder, threading a single
// "current incoming memory state" value that starts at LiveOnEntry,
// advances past each Def in the block, and is copied into every CFG
// successor's phi incoming slot on block exit. Blocks unreached by the
// dominator-tree walk (dead code) are left bound to LiveOnEntry.
func (m *MemorySSA) rename() {
	visited := make(map[*ssa.BasicBlock]bool, len(m.fn.Blocks))

	var walk func(b *ssa.BasicBlock, incoming *Access)
	walk = func(b *ssa.BasicBlock, incoming *Access) {
		visited[b] = true
		current := incoming
		if phi := m.phiOf[b]; phi != nil {
			current = phi
		}
		for _, a := range m.blockAccesses[b] {
			if a.kind == KindPhi {
				continue
			}
			switch a.kind {
			case KindUse:
				m.setDefiningEdge(a, current)
			case KindDef:
				m.setDefiningEdge(a, current)
				current = a
			}
		}
		for _, s := range b.Succs {
			if phi := m.phiOf[s]; phi != nil {
				for i, in := range phi.incoming {
					if in.Pred == b {
						phi.incoming[i].Value = current
						current.addUser(phi)
					}
				}
			}
		}
		for _, child := range m.domt.Children(b) {
			walk(child, current)
		}
	}
	if len(m.fn.Blocks) > 0 {
		walk(m.fn.Blocks[0], m.liveOnEntry)
	}

	// Unreachable blocks (never visited by the dominator-tree walk):
	// bind every access in them, and any phi incoming edge from them,
	// to LiveOnEntry.
	for _, b := range m.fn.Blocks {
		if visited[b] {
			continue
		}
		for _, a := range m.blockAccesses[b] {
			if a.kind == KindPhi {
				for i := range a.incoming {
					a.incoming[i].Value = m.liveOnEntry
					m.liveOnEntry.addUser(a)
				}
				continue
			}
			m.setDefiningEdge(a, m.liveOnEntry)
		}
		for _, s := range b.Succs {
			if phi := m.phiOf[s]; phi != nil {
				for i, in := range phi.incoming {
					if in.Pred == b && in.Value == nil {
						phi.incoming[i].Value = m.liveOnEntry
						m.liveOnEntry.addUser(phi)
					}
				}
			}
		}
	}
}

// setDefiningEdge points a's defining edge at def, recording the
// symmetric user-list edge.
func (m *MemorySSA) setDefiningEdge(a, def *Access) {
	a.defAccess = def
	if def != nil {
		def.addUser(a)
	}
}
