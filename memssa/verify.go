package memssa

import (
	"fmt"

	"golang.org/x/tools/go/ssa"
)

// VerifyError is one failure surfaced by Verify. It is a structured
// diagnostic, never raised as a panic — verification failures are
// expected to happen only when a test deliberately corrupts the graph,
// never from normal operation.
type VerifyError struct {
	Access  *Access
	Message string
}

func (e VerifyError) Error() string {
	return fmt.Sprintf("%s: %s", idString(e.Access), e.Message)
}

// Verify runs three independent self-checks (symmetry of the def-use
// graph, domination of every defining edge, and per-block instruction
// ordering) and returns every violation found. A nil/empty result means
// the graph is well-formed.
func (m *MemorySSA) Verify() []VerifyError {
	var errs []VerifyError
	errs = append(errs, m.verifySymmetry()...)
	errs = append(errs, m.verifyDomination()...)
	errs = append(errs, m.verifyOrdering()...)
	return errs
}

// verifySymmetry checks that for every access A, every user U of A has A
// among its defining edges, and vice versa (P3).
func (m *MemorySSA) verifySymmetry() []VerifyError {
	var errs []VerifyError
	visit := func(a *Access) {
		for def := range a.Defs() {
			if !def.users[a] {
				errs = append(errs, VerifyError{a, fmt.Sprintf("defining edge to %s is not reflected in its user list", idString(def))})
			}
		}
	}
	for _, a := range m.accessOf {
		visit(a)
	}
	for _, phi := range m.phiOf {
		visit(phi)
	}
	checkUsers := func(a *Access) {
		for u := range a.users {
			found := false
			for def := range u.Defs() {
				if def == a {
					found = true
					break
				}
			}
			if !found {
				errs = append(errs, VerifyError{a, fmt.Sprintf("user %s does not list this access as a defining edge", idString(u))})
			}
		}
	}
	checkUsers(m.liveOnEntry)
	for _, a := range m.accessOf {
		checkUsers(a)
	}
	for _, phi := range m.phiOf {
		checkUsers(phi)
	}
	return errs
}

// verifyDomination checks that every defining edge A<-B has B dominate
// A's use position: the block's terminator for a Phi incoming, the
// access's in-block position otherwise (P2).
func (m *MemorySSA) verifyDomination() []VerifyError {
	var errs []VerifyError
	for _, a := range m.accessOf {
		if a.defAccess == nil {
			continue
		}
		if !m.dominatesUsePosition(a.defAccess, a) {
			errs = append(errs, VerifyError{a, fmt.Sprintf("defining access %s does not dominate this use position", idString(a.defAccess))})
		}
	}
	for _, phi := range m.phiOf {
		for _, in := range phi.incoming {
			if in.Value == nil {
				errs = append(errs, VerifyError{phi, "phi has a nil incoming value"})
				continue
			}
			if !m.DominatesPhiEdge(in.Value, in.Pred) {
				errs = append(errs, VerifyError{phi, fmt.Sprintf("incoming %s from predecessor does not dominate that edge", idString(in.Value))})
			}
		}
	}
	return errs
}

// dominatesUsePosition reports whether def dominates use's in-block
// position, handling the same-block case via LocallyDominates and the
// cross-block case via the dominator tree.
func (m *MemorySSA) dominatesUsePosition(def, use *Access) bool {
	if def.IsLiveOnEntry() {
		return true
	}
	if def.block == use.block {
		return m.LocallyDominates(def, use)
	}
	return m.domt.Dominates(def.block, use.block)
}

// verifyOrdering checks that each block's access list matches the
// instruction order of the underlying memory instructions (P-ordering).
func (m *MemorySSA) verifyOrdering() []VerifyError {
	var errs []VerifyError
	for _, b := range m.fn.Blocks {
		list := m.blockAccesses[b]
		instrPos := make(map[ssa.Instruction]int, len(b.Instrs))
		for i, instr := range b.Instrs {
			instrPos[instr] = i
		}
		last := -1
		for _, a := range list {
			if a.kind == KindPhi {
				continue
			}
			pos, ok := instrPos[a.instr]
			if !ok {
				errs = append(errs, VerifyError{a, "access's instruction is not present in its block's instruction list"})
				continue
			}
			if pos < last {
				errs = append(errs, VerifyError{a, "access list order does not match instruction order"})
			}
			last = pos
		}
	}
	return errs
}
