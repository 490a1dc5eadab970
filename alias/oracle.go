// Package alias provides a default Oracle/Translator pair for memssa,
// plus the //memssa:pure directive that lets callers tell the oracle a
// function makes no externally visible memory writes.
//
// The oracle is a heuristic, not a full points-to analysis: it classifies
// instructions syntactically and resolves aliasing via pointer identity,
// distinct-allocation-site disjointness, and disjoint-field reasoning —
// the same three heuristics the retrieval pack's own alias-analysis
// sketches (go/types-free identity checks, field-offset comparison,
// stack/heap/global partitioning) lean on before reaching for a real
// points-to solver.
package alias

import (
	"go/token"

	"golang.org/x/tools/go/ssa"

	"github.com/gossa/memssa/memssa"
)

// Oracle is the default memssa.Oracle: syntactic classification plus
// identity/field-disjointness aliasing. PureFuncs, if non-nil, is
// consulted to reclassify an otherwise-Def call as Skip when the callee
// is known pure.
type Oracle struct {
	PureFuncs *PureFuncSet
}

// NewOracle returns an Oracle with no known pure functions. Use
// (*Oracle).PureFuncs = set to wire one up.
func NewOracle() *Oracle { return &Oracle{} }

// Classify implements memssa.Oracle.
func (o *Oracle) Classify(instr ssa.Instruction) memssa.Class {
	switch v := instr.(type) {
	case *ssa.Store:
		return memssa.ClassDef
	case *ssa.UnOp:
		if v.Op == token.MUL {
			return memssa.ClassUse
		}
		return memssa.ClassSkip
	case *ssa.MapUpdate:
		return memssa.ClassDef
	case *ssa.Send:
		return memssa.ClassDef
	case *ssa.Lookup:
		return memssa.ClassUse
	case *ssa.Call:
		return o.classifyCall(v.Common())
	case *ssa.Go:
		return o.classifyCall(v.Common())
	case *ssa.Defer:
		return o.classifyCall(v.Common())
	default:
		return memssa.ClassSkip
	}
}

// classifyCall conservatively treats every call as a Def unless its
// static callee is known pure, in which case it is dropped to Skip — a
// pure function neither reads nor writes memory the caller's memory SSA
// tracks, by definition: a call that both reads and writes is a Def; a
// provably pure call is neither.
func (o *Oracle) classifyCall(call *ssa.CallCommon) memssa.Class {
	if o.PureFuncs != nil {
		if fn := call.StaticCallee(); fn != nil && o.PureFuncs.Contains(fn) {
			return memssa.ClassSkip
		}
	}
	return memssa.ClassDef
}

// MayAlias implements memssa.Oracle.
func (o *Oracle) MayAlias(defInstr, useInstr ssa.Instruction) bool {
	return mayAliasAddrs(addrOf(defInstr), addrOf(useInstr))
}

// MayAliasLocation implements memssa.Oracle.
func (o *Oracle) MayAliasLocation(defInstr ssa.Instruction, loc memssa.Location) bool {
	return mayAliasAddrs(addrOf(defInstr), loc.Addr)
}

// addrOf extracts the pointer value an instruction's memory effect goes
// through, for the shapes where that's syntactically unambiguous.
func addrOf(instr ssa.Instruction) ssa.Value {
	switch v := instr.(type) {
	case *ssa.Store:
		return v.Addr
	case *ssa.UnOp:
		if v.Op == token.MUL {
			return v.X
		}
	case *ssa.MapUpdate:
		return v.Map
	case *ssa.Send:
		return v.Chan
	case *ssa.Lookup:
		return v.X
	}
	return nil
}

// mayAliasAddrs decides whether two pointer values may denote
// overlapping storage. Unknown values (nil, from an unresolved call) are
// conservatively treated as aliasing everything, the safe default for a
// may-alias query.
func mayAliasAddrs(a, b ssa.Value) bool {
	if a == nil || b == nil {
		return true
	}
	if a == b {
		return true // identical SSA value: must-alias, and must implies may
	}

	// Two distinct local allocations never alias: each ssa.Alloc is a
	// fresh, non-escaping-or-not storage location distinct from every
	// other Alloc in the program.
	aAlloc, aIsAlloc := a.(*ssa.Alloc)
	bAlloc, bIsAlloc := b.(*ssa.Alloc)
	if aIsAlloc && bIsAlloc {
		return aAlloc == bAlloc
	}
	if (aIsAlloc && isDisjointFromAlloc(b)) || (bIsAlloc && isDisjointFromAlloc(a)) {
		return false
	}

	// Disjoint fields of the same struct base never alias.
	if af, ok := a.(*ssa.FieldAddr); ok {
		if bf, ok := b.(*ssa.FieldAddr); ok && af.X == bf.X && af.Field != bf.Field {
			return false
		}
	}

	return true
}

// isDisjointFromAlloc reports whether v is syntactically guaranteed to
// never be the same storage as some other, distinct Alloc: true for
// global variables and for another Alloc. Every other value, a function
// parameter included, reports false. This is a heuristic, not a proof;
// it only licenses the "no" answer when safe.
func isDisjointFromAlloc(v ssa.Value) bool {
	switch v.(type) {
	case *ssa.Global:
		return true
	case *ssa.Alloc:
		return true // distinct Alloc from the one already checked above
	default:
		return false
	}
}
