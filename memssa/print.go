package memssa

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// idString renders a's id for diagnostics: liveOnEntry prints as the
// literal word "liveOnEntry", everything else as its decimal id.
func idString(a *Access) string {
	if a == nil {
		return "<nil>"
	}
	if a.IsLiveOnEntry() {
		return "liveOnEntry"
	}
	return strconv.FormatUint(uint64(a.id), 10)
}

// Fprint writes a textual rendering of the memory SSA graph for m's
// function: each memory-touching instruction is preceded by its access
// annotation (`; id = MemoryDef(def_id)` or `; MemoryUse(def_id)`), and
// each block with a phi gets a `id = MemoryPhi({pred, incoming}, …)`
// line before its first instruction. This is the format used for
// client-facing diagnostics and the one this package's own tests check
// output against.
func (m *MemorySSA) Fprint(w io.Writer) error {
	for _, b := range m.fn.Blocks {
		fmt.Fprintf(w, "%d:\n", b.Index)
		if phi := m.phiOf[b]; phi != nil {
			fmt.Fprintf(w, "  %s = MemoryPhi(%s)\n", idString(phi), phiIncomingsString(phi))
		}
		for _, instr := range b.Instrs {
			if a := m.accessOf[instr]; a != nil {
				switch a.kind {
				case KindDef:
					fmt.Fprintf(w, "  ; %s = MemoryDef(%s)\n", idString(a), idString(a.defAccess))
				case KindUse:
					fmt.Fprintf(w, "  ; MemoryUse(%s)\n", idString(a.defAccess))
				}
			}
			fmt.Fprintf(w, "  %s\n", instr.String())
		}
	}
	return nil
}

func phiIncomingsString(phi *Access) string {
	parts := make([]string, len(phi.incoming))
	for i, in := range phi.incoming {
		predIdx := -1
		if in.Pred != nil {
			predIdx = in.Pred.Index
		}
		parts[i] = fmt.Sprintf("{%d, %s}", predIdx, idString(in.Value))
	}
	return strings.Join(parts, ", ")
}
