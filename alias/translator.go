package alias

import "golang.org/x/tools/go/ssa"

// Translator is the default memssa.Translator: it recognizes when addr
// is itself an *ssa.Phi defined in the "from" block and rewrites it to
// that phi's incoming value for the "to" predecessor. This is the one
// case go/ssa's own representation makes unambiguous without a general
// symbolic rewrite; anything else reports no translation, which is
// always a safe (merely less precise) answer for memssa's upward walk.
type Translator struct{}

// NewTranslator returns the default address translator.
func NewTranslator() *Translator { return &Translator{} }

// Translate implements memssa.Translator.
func (Translator) Translate(addr ssa.Value, from, to *ssa.BasicBlock) (ssa.Value, bool) {
	phi, ok := addr.(*ssa.Phi)
	if !ok || phi.Block() != from {
		return nil, false
	}
	for i, pred := range from.Preds {
		if pred == to {
			return phi.Edges[i], true
		}
	}
	return nil, false
}
