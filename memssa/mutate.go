package memssa

import "golang.org/x/tools/go/ssa"

// Position chooses which end of a block's access list a new access is
// spliced into.
type Position int

const (
	// Beginning places the new access first in the block (after the
	// phi, if any).
	Beginning Position = iota
	// End places the new access last in the block.
	End
)

// CreateMemoryAccessInBB materializes a new Use or Def for instr — the
// variant is whichever the analysis's oracle classifies instr as — with
// defining edge def, and splices it into block's access list at pos.
// It does not create phis, and does not run the use optimizer on the
// new access: its defining edge stays def. Any pre-existing access for instr
// is left in place and orphaned; the caller is responsible for removing
// it with RemoveMemoryAccess.
func (m *MemorySSA) CreateMemoryAccessInBB(instr ssa.Instruction, def *Access, block *ssa.BasicBlock, pos Position) *Access {
	class := m.oracle.Classify(instr)
	a := m.newAccessFor(instr, class)
	m.setDefiningEdge(a, def)
	m.accessOf[instr] = a

	list := m.blockAccesses[block]
	switch pos {
	case Beginning:
		start := 0
		if len(list) > 0 && list[0].kind == KindPhi {
			start = 1
		}
		list = insertAt(list, start, a)
	default: // End
		list = append(list, a)
	}
	m.blockAccesses[block] = list
	a.block = block
	m.invalidateOrder(block)
	return a
}

// CreateMemoryAccessBefore/After place the new access immediately
// before/after anchor in anchor's block access list.
func (m *MemorySSA) CreateMemoryAccessBefore(instr ssa.Instruction, def *Access, anchor *Access) *Access {
	return m.createMemoryAccessNear(instr, def, anchor, 0)
}

func (m *MemorySSA) CreateMemoryAccessAfter(instr ssa.Instruction, def *Access, anchor *Access) *Access {
	return m.createMemoryAccessNear(instr, def, anchor, 1)
}

func (m *MemorySSA) createMemoryAccessNear(instr ssa.Instruction, def *Access, anchor *Access, offset int) *Access {
	class := m.oracle.Classify(instr)
	a := m.newAccessFor(instr, class)
	m.setDefiningEdge(a, def)
	m.accessOf[instr] = a
	a.block = anchor.block

	list := m.blockAccesses[anchor.block]
	idx := indexOf(list, anchor)
	if idx < 0 {
		panic("memssa: anchor access not found in its own block's list")
	}
	list = insertAt(list, idx+offset, a)
	m.blockAccesses[anchor.block] = list
	m.invalidateOrder(anchor.block)
	return a
}

func (m *MemorySSA) newAccessFor(instr ssa.Instruction, class Class) *Access {
	switch class {
	case ClassUse:
		return &Access{kind: KindUse, instr: instr}
	case ClassDef:
		return &Access{kind: KindDef, id: m.freshID(), instr: instr}
	default:
		panic("memssa: CreateMemoryAccess called for an instruction the oracle classifies Skip")
	}
}

// CreateMemoryPhi allocates a new, empty MemoryPhi for block, sized to
// its predecessor count. It panics if block already has a phi: a
// caller asking to create a second phi for the same block is a contract
// violation, not a recoverable condition.
func (m *MemorySSA) CreateMemoryPhi(block *ssa.BasicBlock) *Access {
	if m.phiOf[block] != nil {
		panic("memssa: CreateMemoryPhi called on a block that already has one")
	}
	phi := &Access{
		kind:     KindPhi,
		id:       m.freshID(),
		block:    block,
		incoming: make([]PhiIncoming, len(block.Preds)),
	}
	for i, p := range block.Preds {
		phi.incoming[i] = PhiIncoming{Pred: p}
	}
	m.phiOf[block] = phi
	m.blockAccesses[block] = prependAccess(m.blockAccesses[block], phi)
	m.invalidateOrder(block)
	return phi
}

// RemoveMemoryAccess deletes access from the graph. Every former user's
// defining edge is rewired to access's own defining access (the
// pass-through rewiring that preserves SSA semantics when an access is
// elided): removing X with defining access D and user U makes U's
// defining edge point to D directly. A Phi has no single defining access
// to rewire users to: a successor phi's incoming edge that pointed at the
// removed Phi is rewritten to LiveOnEntry, and a Use or Def user is left
// with a nil defining edge, so the caller is responsible for having
// merged the predecessor edges first.
func (m *MemorySSA) RemoveMemoryAccess(access *Access) {
	var replacement *Access
	if access.kind != KindPhi {
		replacement = access.defAccess
	}

	for u := range access.users {
		if access.kind == KindPhi && u.kind == KindPhi {
			for i := range u.incoming {
				if u.incoming[i].Value == access {
					// Caller's responsibility to have merged
					// predecessor edges; fall back to
					// LiveOnEntry rather than leave a dangling
					// reference.
					u.incoming[i].Value = m.liveOnEntry
					m.liveOnEntry.addUser(u)
				}
			}
			continue
		}
		if u.kind == KindPhi {
			for i := range u.incoming {
				if u.incoming[i].Value == access {
					u.incoming[i].Value = replacement
					if replacement != nil {
						replacement.addUser(u)
					}
				}
			}
			continue
		}
		u.defAccess = replacement
		if replacement != nil {
			replacement.addUser(u)
		}
	}
	access.users = nil

	if access.defAccess != nil {
		access.defAccess.removeUser(access)
	}
	for _, in := range access.incoming {
		if in.Value != nil {
			in.Value.removeUser(access)
		}
	}

	if access.instr != nil {
		delete(m.accessOf, access.instr)
	}
	if access.kind == KindPhi {
		delete(m.phiOf, access.block)
	}
	if list, ok := m.blockAccesses[access.block]; ok {
		m.blockAccesses[access.block] = removeFrom(list, access)
	}
	m.invalidateOrder(access.block)
	m.walker.Invalidate(access)
}

// LocallyDominates reports whether a appears before b in their common
// block's access list. It panics if a and b are in different blocks —
// use Dominates for the general, inter-block case.
//
// The per-block order is numbered lazily: the first query after a block
// is built or mutated assigns sequential order numbers to its whole
// access list in one pass and marks it valid; subsequent queries for the
// same block are O(1) until the next mutation invalidates it.
func (m *MemorySSA) LocallyDominates(a, b *Access) bool {
	if a.block != b.block {
		panic("memssa: LocallyDominates called on accesses in different blocks")
	}
	if a == b {
		return false
	}
	m.ensureOrder(a.block)
	return a.order < b.order
}

func (m *MemorySSA) ensureOrder(block *ssa.BasicBlock) {
	if m.orderValid[block] {
		return
	}
	for i, a := range m.blockAccesses[block] {
		a.order = i
	}
	m.orderValid[block] = true
}

// Dominates reports whether a dominates access b: either in the same
// block (via LocallyDominates) or via the dominator tree across blocks.
// a dominates itself.
func (m *MemorySSA) Dominates(a, b *Access) bool {
	if a == b {
		return true
	}
	if a.IsLiveOnEntry() {
		return true
	}
	if a.block == b.block {
		return m.LocallyDominates(a, b)
	}
	return m.domt.Dominates(a.block, b.block)
}

// DominatesPhiEdge reports whether a dominates the evaluation point of a
// Phi's incoming edge from pred — the end (terminator) of pred.
func (m *MemorySSA) DominatesPhiEdge(a *Access, pred *ssa.BasicBlock) bool {
	if a.IsLiveOnEntry() {
		return true
	}
	if a.block == pred {
		// a must not be ordered after every other access in pred;
		// since pred's terminator carries no access, any access in
		// pred dominates its own terminator.
		return true
	}
	return m.domt.Dominates(a.block, pred)
}

func insertAt(list []*Access, idx int, a *Access) []*Access {
	out := make([]*Access, 0, len(list)+1)
	out = append(out, list[:idx]...)
	out = append(out, a)
	out = append(out, list[idx:]...)
	return out
}

func removeFrom(list []*Access, a *Access) []*Access {
	out := list[:0:0]
	for _, x := range list {
		if x != a {
			out = append(out, x)
		}
	}
	return out
}

func indexOf(list []*Access, a *Access) int {
	for i, x := range list {
		if x == a {
			return i
		}
	}
	return -1
}
