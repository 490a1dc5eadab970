package memssa

import (
	"go/token"

	"golang.org/x/tools/go/ssa"
)

// locationOf extracts the pointer-typed memory location an instruction
// touches, when the instruction shape makes that syntactically obvious.
// Stores and loads (UnOp with token.MUL) carry an unambiguous address;
// everything else (calls, atomics reached through a pointer argument,
// sends) returns the zero Location, whose nil Addr tells the oracle to
// fall back to whole-instruction May-alias reasoning instead of a
// location comparison.
func locationOf(instr ssa.Instruction) Location {
	switch v := instr.(type) {
	case *ssa.Store:
		return Location{Addr: v.Addr}
	case *ssa.UnOp:
		if v.Op == token.MUL {
			return Location{Addr: v.X}
		}
	}
	return Location{}
}
