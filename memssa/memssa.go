package memssa

import (
	"golang.org/x/tools/go/ssa"

	"github.com/gossa/memssa/domtree"
)

// MemorySSA is the memory SSA side-table for a single function: the
// access graph plus the lookups, dominance queries, walker, and mutation
// API a client uses to consume and evolve it. One instance analyzes
// exactly one *ssa.Function; independent analyses share nothing and are
// trivially parallelizable by the caller.
type MemorySSA struct {
	fn     *ssa.Function
	domt   *domtree.Tree
	oracle Oracle
	tr     Translator

	accessOf      map[ssa.Instruction]*Access
	phiOf         map[*ssa.BasicBlock]*Access
	blockAccesses map[*ssa.BasicBlock][]*Access

	liveOnEntry *Access
	nextID      ID

	orderValid map[*ssa.BasicBlock]bool

	walker *Walker
}

// Func returns the function this analysis was built for.
func (m *MemorySSA) Func() *ssa.Function { return m.fn }

// DomTree returns the dominator tree the analysis was built with.
func (m *MemorySSA) DomTree() *domtree.Tree { return m.domt }

// AccessOf returns the Use or Def created for instr, or nil if instr was
// classified ClassSkip (it touches no tracked memory).
func (m *MemorySSA) AccessOf(instr ssa.Instruction) *Access {
	return m.accessOf[instr]
}

// PhiOf returns block's MemoryPhi, or nil if it has none.
func (m *MemorySSA) PhiOf(block *ssa.BasicBlock) *Access {
	return m.phiOf[block]
}

// BlockAccesses returns block's access list in instruction order (phi
// first, if present).
func (m *MemorySSA) BlockAccesses(block *ssa.BasicBlock) []*Access {
	return m.blockAccesses[block]
}

// LiveOnEntry returns the sentinel access representing memory state on
// function entry.
func (m *MemorySSA) LiveOnEntry() *Access { return m.liveOnEntry }

// IsLiveOnEntry reports whether a is the LiveOnEntry sentinel.
func (m *MemorySSA) IsLiveOnEntry(a *Access) bool { return a == m.liveOnEntry }

// Walker returns the cached clobber-walker handle for this analysis.
func (m *MemorySSA) Walker() *Walker { return m.walker }

func (m *MemorySSA) freshID() ID {
	m.nextID++
	return m.nextID
}

func (m *MemorySSA) invalidateOrder(block *ssa.BasicBlock) {
	if m.orderValid != nil {
		delete(m.orderValid, block)
	}
}
