// Package ssatest builds golang.org/x/tools/go/ssa functions from
// in-memory source for use in other packages' tests. It exists so that
// memssa, domtree, and alias can each test against real *ssa.Function
// values instead of hand-built fixtures.
package ssatest

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// Build parses src as a single-file package named "p", type-checks it,
// builds SSA form for every function, and returns the package together
// with a lookup of its declared top-level functions by name.
func Build(t *testing.T, src string) (*ssa.Package, map[string]*ssa.Function) {
	t.Helper()

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "p.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	files := []*ast.File{f}
	pkg := types.NewPackage("p", "p")
	ssapkg, _, err := ssautil.BuildPackage(
		&types.Config{Importer: importer.Default()},
		fset, pkg, files, ssa.SanityCheckFunctions,
	)
	if err != nil {
		t.Fatalf("build ssa: %v", err)
	}

	funcs := make(map[string]*ssa.Function)
	for _, m := range ssapkg.Members {
		if fn, ok := m.(*ssa.Function); ok {
			fn.Pkg.Build()
			funcs[fn.Name()] = fn
		}
	}
	return ssapkg, funcs
}

// Func builds src and returns the named top-level function, failing the
// test if it isn't found.
func Func(t *testing.T, src, name string) *ssa.Function {
	t.Helper()
	_, funcs := Build(t, src)
	fn, ok := funcs[name]
	if !ok {
		t.Fatalf("function %s not found; have %v", name, fmt.Sprint(keys(funcs)))
	}
	return fn
}

func keys(m map[string]*ssa.Function) []string {
	var ks []string
	for k := range m {
		ks = append(ks, k)
	}
	return ks
}
