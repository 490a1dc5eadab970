// Package memssa builds and maintains a Memory SSA side-table over a
// golang.org/x/tools/go/ssa function: a use/def graph of virtual memory
// access nodes that answers, for any memory-touching instruction, which
// earlier instruction last wrote the memory it depends on.
//
// The graph is built once (Build), refined by a one-shot use-optimization
// pass, then queried and incrementally mutated for the lifetime of the
// analysis. See the package-level functions Build, and the Walker and
// MutationAPI-shaped methods on *MemorySSA, for the surface API.
package memssa

import "golang.org/x/tools/go/ssa"

// Kind tags the variant of a MemoryAccess.
type Kind uint8

const (
	// KindLiveOnEntry is the sentinel representing memory state on
	// function entry. There is exactly one per analysis.
	KindLiveOnEntry Kind = iota
	// KindUse represents a memory read (load, atomic read, pure-memory
	// call classified Ref).
	KindUse
	// KindDef represents a memory write (store, atomic write, call
	// classified Mod or ModRef).
	KindDef
	// KindPhi merges memory state at a CFG confluence point.
	KindPhi
)

func (k Kind) String() string {
	switch k {
	case KindLiveOnEntry:
		return "LiveOnEntry"
	case KindUse:
		return "MemoryUse"
	case KindDef:
		return "MemoryDef"
	case KindPhi:
		return "MemoryPhi"
	default:
		return "Kind(?)"
	}
}

// ID is a monotonically increasing identifier assigned to every Def and
// Phi at creation time. 0 is reserved as the invalid id; it is never
// assigned to a live access.
type ID uint64

// InvalidID is never a valid access id.
const InvalidID ID = 0

// PhiIncoming is one (predecessor block, incoming access) pair of a
// MemoryPhi. The incoming list is 1:1 with the owning block's CFG
// predecessors, in the same order.
type PhiIncoming struct {
	Pred  *ssa.BasicBlock
	Value *Access
}

// Access is a single node of the memory SSA graph: a MemoryUse,
// MemoryDef, MemoryPhi, or the LiveOnEntry sentinel. All four variants
// are represented by this one tagged-variant type, each access holding
// only the fields meaningful for its Kind; this keeps per-block ordering
// and the def-use graph as two plain side tables keyed by *Access rather
// than requiring the access to inherit from two different intrusive list
// bases.
type Access struct {
	kind  Kind
	id    ID // nonzero only for Def/Phi; LiveOnEntry uses a reserved id
	block *ssa.BasicBlock
	instr ssa.Instruction // nil for Phi and LiveOnEntry

	// defAccess is the single defining edge for Use/Def. Unused by Phi.
	defAccess *Access

	// incoming holds the Phi's (pred, value) pairs, length equal to the
	// owning block's predecessor count. Unused by Use/Def.
	incoming []PhiIncoming

	// optimizedID records, for a Use, the id of the defining access
	// installed by the last run of the use optimizer. It is compared
	// against that access's current id to detect staleness after a
	// mutation renumbers or replaces the access.
	optimizedID ID

	// users are the accesses whose defining edge points here. Only
	// Def, Phi, and LiveOnEntry are ever pointed to, so only they
	// populate this set.
	users map[*Access]bool

	// order is the lazy local-order number within block, valid only
	// while the owning MemorySSA's orderValid[block] is true.
	order int
}

// Kind reports which variant a is.
func (a *Access) Kind() Kind { return a.kind }

// ID returns a's identifier. Only meaningful for Def and Phi (and the
// LiveOnEntry sentinel); Use returns InvalidID.
func (a *Access) ID() ID { return a.id }

// Block returns the basic block a belongs to.
func (a *Access) Block() *ssa.BasicBlock { return a.block }

// Instr returns the instruction a annotates. Returns nil for Phi and
// for LiveOnEntry.
func (a *Access) Instr() ssa.Instruction { return a.instr }

// IsLiveOnEntry reports whether a is the LiveOnEntry sentinel.
func (a *Access) IsLiveOnEntry() bool { return a.kind == KindLiveOnEntry }

// Defining returns a's single defining access, for Use and Def. It
// panics if called on a Phi, which has multiple defining edges — use
// Incomings or Defs instead.
func (a *Access) Defining() *Access {
	if a.kind == KindPhi {
		panic("memssa: Defining called on a MemoryPhi; use Incomings")
	}
	return a.defAccess
}

// Incomings returns a Phi's (predecessor, incoming access) pairs, in
// CFG-predecessor order. Returns nil for non-Phi accesses.
func (a *Access) Incomings() []PhiIncoming {
	if a.kind != KindPhi {
		return nil
	}
	return a.incoming
}

// Defs yields a's defining access(es): the single element for Use/Def,
// or each incoming access in turn for Phi. Empty for LiveOnEntry.
func (a *Access) Defs() func(yield func(*Access) bool) {
	return func(yield func(*Access) bool) {
		switch a.kind {
		case KindUse, KindDef:
			if a.defAccess != nil {
				yield(a.defAccess)
			}
		case KindPhi:
			for _, in := range a.incoming {
				if in.Value != nil && !yield(in.Value) {
					return
				}
			}
		}
	}
}

// Users yields every access whose defining edge points to a, in
// unspecified order.
func (a *Access) Users() func(yield func(*Access) bool) {
	return func(yield func(*Access) bool) {
		for u := range a.users {
			if !yield(u) {
				return
			}
		}
	}
}

// addUser records that user's defining edge now points to a.
func (a *Access) addUser(user *Access) {
	if a.users == nil {
		a.users = make(map[*Access]bool)
	}
	a.users[user] = true
}

// removeUser undoes addUser.
func (a *Access) removeUser(user *Access) {
	delete(a.users, user)
}

// IsOptimized reports whether a Use's defining edge has been refined by
// the use optimizer to point directly at its clobber, and that edge is
// still current (the target's id has not changed since).
func (a *Access) IsOptimized() bool {
	return a.kind == KindUse && a.defAccess != nil && a.optimizedID != InvalidID &&
		a.optimizedID == a.defAccess.id
}
