package memssa

import "golang.org/x/tools/go/ssa"

// Location identifies the memory an access touches, as a pointer-typed
// SSA value (the argument of a load/store, or the receiver of a call the
// oracle has classified as Mod/Ref/ModRef). Analyses that need more than
// an ssa.Value's identity (e.g. field offsets) carry that refinement
// inside their own Oracle implementation; Location only carries what the
// upward-defs iterator needs to translate across a phi edge.
type Location struct {
	Addr ssa.Value
}

// Class is the alias oracle's classification of a single instruction.
type Class uint8

const (
	// ClassSkip means the instruction is NoModRef: it neither reads nor
	// writes memory the analysis tracks, so it gets no access at all.
	ClassSkip Class = iota
	// ClassUse means the instruction only reads memory (Ref).
	ClassUse
	// ClassDef means the instruction may write memory (Mod or ModRef).
	ClassDef
)

// Oracle hides the representation details of an external alias analysis
// and presents exactly the queries the builder, use optimizer, and
// walker need. A call that both reads and writes is classified Def; such
// calls are additionally checked for may-aliasing from the use side when
// a specific Location is at hand.
type Oracle interface {
	// Classify reports whether instr should get no access, a Use, or a
	// Def.
	Classify(instr ssa.Instruction) Class

	// MayAlias reports whether defInstr's write may alias the memory
	// read by useInstr.
	MayAlias(defInstr, useInstr ssa.Instruction) bool

	// MayAliasLocation reports whether defInstr's write may alias loc.
	MayAliasLocation(defInstr ssa.Instruction, loc Location) bool
}

// Translator attempts to carry a memory Location's pointer value across
// a CFG edge, the way a Phi's incoming value carries an SSA value across
// that same edge. It is the address-translation facility a host IR must
// provide for an upward walk to see through a phi: given a value as
// observed in block "from" and one of from's predecessors "to", produce
// the value denoting the same storage at the end of "to", if the IR can
// express one.
type Translator interface {
	// Translate returns the translated value and true if loc's address
	// could be rewritten for the "to" block; otherwise it returns
	// (nil, false) and the caller must keep using the original value.
	Translate(addr ssa.Value, from, to *ssa.BasicBlock) (ssa.Value, bool)
}

// upwardDef is one step of an upward walk through defining edges: the
// access reached, and loc's location translated (if possible) across
// the edge that led there.
type upwardDef struct {
	access *Access
	loc    Location
}

// upwardDefs lifts Access.Defs into (access, location) pairs. For a
// Use/Def it is just the single defining access paired with loc
// unchanged. For a Phi it steps through each incoming edge and attempts
// to translate loc's pointer across it via tr; on success with a changed
// address the translated location is yielded, otherwise the original loc
// is kept. This is the currency of the upward clobber walk.
func upwardDefs(a *Access, loc Location, tr Translator) func(yield func(upwardDef) bool) {
	return func(yield func(upwardDef) bool) {
		switch a.kind {
		case KindUse, KindDef:
			if a.defAccess != nil {
				yield(upwardDef{access: a.defAccess, loc: loc})
			}
		case KindPhi:
			for _, in := range a.incoming {
				if in.Value == nil {
					continue
				}
				next := loc
				if tr != nil && loc.Addr != nil {
					if v, changed := tr.Translate(loc.Addr, a.block, in.Pred); changed {
						next = Location{Addr: v}
					}
				}
				if !yield(upwardDef{access: in.Value, loc: next}) {
					return
				}
			}
		}
	}
}
