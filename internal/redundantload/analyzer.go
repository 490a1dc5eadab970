// Package redundantload is a demonstration consumer of memssa: a
// go/analysis.Analyzer that flags a load which is dominated by an
// earlier, identical-location load with no intervening clobber, and
// whose value it could therefore reuse. This is the textbook use of a
// memory SSA (LLVM's EarlyCSE and MemCpyOpt passes answer the same
// question the same way): build the graph, optimize uses, then ask the
// clobber walker whether two reads see the same write.
package redundantload

import (
	"go/ast"
	"go/token"
	"strconv"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/buildssa"
	"golang.org/x/tools/go/ssa"

	"github.com/gossa/memssa/memssa"
	"github.com/gossa/memssa/alias"
	"github.com/gossa/memssa/domtree"
)

// Analyzer detects redundant loads via memssa.
var Analyzer = &analysis.Analyzer{
	Name:     "redundantload",
	Doc:      "detects loads that repeat an earlier, still-valid load of the same memory",
	Requires: []*analysis.Analyzer{buildssa.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (any, error) {
	ssaInfo := pass.ResultOf[buildssa.Analyzer].(*buildssa.SSA)

	skipFiles := skippedFiles(pass)
	ignoreMaps := make(map[string]IgnoreMap)
	pureFuncs := alias.NewPureFuncSet(pass.Fset)

	pkgPath := pass.Pkg.Path()
	for _, file := range pass.Files {
		filename := pass.Fset.Position(file.Pos()).Filename
		if skipFiles[filename] {
			continue
		}
		ignoreMaps[filename] = BuildIgnoreMap(pass.Fset, file)
		for key := range alias.BuildPureFunctionSet(pass.Fset, file, pkgPath) {
			pureFuncs.Add(key)
		}
	}

	oracle := &alias.Oracle{PureFuncs: pureFuncs}
	translator := alias.NewTranslator()
	gen := NewGenerator(pass.Fset)
	reported := make(map[token.Pos]bool)

	for _, fn := range ssaInfo.SrcFuncs {
		pos := fn.Pos()
		if !pos.IsValid() {
			continue
		}
		filename := pass.Fset.Position(pos).Filename
		if skipFiles[filename] {
			continue
		}

		findings := analyzeFunction(fn, oracle, translator)
		for _, f := range findings {
			if reported[f.pos] {
				continue
			}
			reported[f.pos] = true

			line := pass.Fset.Position(f.pos).Line
			if im, ok := ignoreMaps[filename]; ok && im.ShouldIgnore(line) {
				continue
			}

			pass.Report(analysis.Diagnostic{
				Pos:            f.pos,
				Message:        f.message(pass.Fset),
				SuggestedFixes: gen.Generate(f.pos, f.firstPos),
			})
		}
	}

	for _, im := range ignoreMaps {
		for _, pos := range im.UnusedIgnores() {
			pass.Reportf(pos, "unused memssa:ignore directive")
		}
	}

	return nil, nil
}

// finding is a single redundant-load diagnostic, carrying both
// positions so the message and the suggested fix can reference the
// earlier load.
type finding struct {
	pos, firstPos token.Pos
}

func (f finding) message(fset *token.FileSet) string {
	return "redundant load: memory already read by the load at line " +
		strconv.Itoa(fset.Position(f.firstPos).Line) + " with no intervening write"
}

// analyzeFunction builds the memory SSA graph for fn and returns every
// load dominated by an earlier, same-address load sharing its clobber.
func analyzeFunction(fn *ssa.Function, oracle memssa.Oracle, tr memssa.Translator) []finding {
	if len(fn.Blocks) == 0 {
		return nil
	}
	domt := domtree.Build(fn)
	m := memssa.Build(fn, oracle, domt, tr)

	// Group loads by their post-optimization defining access: two loads
	// sharing a clobber saw no write between whichever of them runs
	// second and that clobber, so they're candidates for redundancy
	// once we also confirm they read the same address and one
	// dominates the other.
	byClobber := make(map[*memssa.Access][]*ssa.UnOp)
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			load, ok := instr.(*ssa.UnOp)
			if !ok || load.Op != token.MUL {
				continue
			}
			a := m.AccessOf(load)
			if a == nil {
				continue
			}
			clobber := m.Walker().ClobberAccess(a)
			byClobber[clobber] = append(byClobber[clobber], load)
		}
	}

	var findings []finding
	for _, loads := range byClobber {
		for i, a := range loads {
			for j, b := range loads {
				if i == j || a.X != b.X {
					continue
				}
				ai, bi := m.AccessOf(a), m.AccessOf(b)
				if ai == nil || bi == nil {
					continue
				}
				if m.Dominates(ai, bi) {
					findings = append(findings, finding{pos: b.Pos(), firstPos: a.Pos()})
				}
			}
		}
	}
	return findings
}

// skippedFiles mirrors buildSkipFiles from the analyzer this package's
// architecture is modeled on: generated files are never analyzed.
func skippedFiles(pass *analysis.Pass) map[string]bool {
	skip := make(map[string]bool)
	for _, file := range pass.Files {
		if ast.IsGenerated(file) {
			skip[pass.Fset.Position(file.Pos()).Filename] = true
		}
	}
	return skip
}
