package redundantload

import (
	"fmt"
	"go/token"

	"golang.org/x/tools/go/analysis"
)

// Generator builds SuggestedFix values for redundant-load diagnostics.
// Like the fix generator this package's architecture is modeled on, it
// works purely from token.Pos edits rather than rewriting whole AST
// subtrees: a load instruction's SSA value carries no reliable source
// name to splice into a replacement expression, so the only edit safe
// to make without risking a miscompile is an additive annotation at the
// redundant load's position, pointing back at the load that already
// computed the same value.
type Generator struct {
	fset *token.FileSet
}

// NewGenerator creates a fix Generator.
func NewGenerator(fset *token.FileSet) *Generator {
	return &Generator{fset: fset}
}

// Generate returns the suggested fix for a redundant load at pos whose
// value was already computed by the dominating load at firstPos. The
// edit inserts a whole new comment line immediately before pos's own
// line rather than splicing text into the middle of it — anywhere else
// on the line risks commenting out code that follows the load.
func (g *Generator) Generate(pos, firstPos token.Pos) []analysis.SuggestedFix {
	if !pos.IsValid() || !firstPos.IsValid() {
		return nil
	}
	file := g.fset.File(pos)
	if file == nil {
		return nil
	}
	lineStart := file.LineStart(file.Line(pos))

	firstLine := g.fset.Position(firstPos).Line
	note := fmt.Sprintf("// memssa: reuses the value already loaded at line %d\n", firstLine)
	return []analysis.SuggestedFix{
		{
			Message: "Annotate redundant load",
			TextEdits: []analysis.TextEdit{
				{
					Pos:     lineStart,
					End:     lineStart,
					NewText: []byte(note),
				},
			},
		},
	}
}
