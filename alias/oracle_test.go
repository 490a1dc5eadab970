package alias_test

import (
	"go/parser"
	"go/token"
	"testing"

	"golang.org/x/tools/go/ssa"

	"github.com/gossa/memssa/memssa"
	"github.com/gossa/memssa/alias"
	"github.com/gossa/memssa/internal/ssatest"
)

const classifySrc = `
package p

func classify(p, q *int) int {
	*p = 1
	a := *q
	return a
}
`

func TestClassify(t *testing.T) {
	fn := ssatest.Func(t, classifySrc, "classify")
	o := alias.NewOracle()

	for _, instr := range fn.Blocks[0].Instrs {
		switch v := instr.(type) {
		case *ssa.Store:
			if got := o.Classify(v); got != memssa.ClassDef {
				t.Errorf("Store should classify Def, got %v", got)
			}
		case *ssa.UnOp:
			if v.Op.String() == "*" {
				if got := o.Classify(v); got != memssa.ClassUse {
					t.Errorf("pointer deref should classify Use, got %v", got)
				}
			}
		}
	}
}

const distinctAllocSrc = `
package p

func sink(x, y *int) {}

func distinctAlloc() int {
	var a, b int
	sink(&a, &b)
	a = b
	return a
}
`

func TestMayAliasDistinctAllocs(t *testing.T) {
	fn := ssatest.Func(t, distinctAllocSrc, "distinctAlloc")
	o := alias.NewOracle()

	var allocs []*ssa.Alloc
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			if a, ok := instr.(*ssa.Alloc); ok {
				allocs = append(allocs, a)
			}
		}
	}
	if len(allocs) < 2 {
		t.Fatalf("expected at least two distinct allocations, got %d", len(allocs))
	}

	var stores []*ssa.Store
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			if s, ok := instr.(*ssa.Store); ok {
				stores = append(stores, s)
			}
		}
	}
	if len(stores) == 0 {
		t.Fatal("expected at least one store")
	}

	if _, ok := stores[0].Addr.(*ssa.Alloc); !ok {
		t.Fatalf("expected the store to write through an Alloc, got %T", stores[0].Addr)
	}

	var other *ssa.UnOp
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			if l, ok := instr.(*ssa.UnOp); ok && l.Op == token.MUL && l.X != stores[0].Addr {
				if _, isAlloc := l.X.(*ssa.Alloc); isAlloc {
					other = l
				}
			}
		}
	}
	if other == nil {
		t.Fatal("expected a load from a second local")
	}

	// A store to one local must never be reported as aliasing a load
	// from a distinct, unrelated local.
	if o.MayAlias(stores[0], other) {
		t.Errorf("a store to one local must not alias a load from a distinct local")
	}
	if o.MayAlias(stores[0], stores[0]) == false {
		t.Errorf("an instruction must alias itself")
	}
}

const pureCallSrc = `
package p

//memssa:pure
func readOnly(p *int) int {
	return *p
}

func caller(p *int) int {
	return readOnly(p)
}
`

func TestClassifyCallRespectsPureDirective(t *testing.T) {
	_, funcs := ssatest.Build(t, pureCallSrc)
	caller, ok := funcs["caller"]
	if !ok {
		t.Fatal("caller function not found")
	}

	// Mirror how the analyzer populates a PureFuncSet from the real
	// source file under analysis: scan its AST for //memssa:pure
	// declarations, independent of whatever debug info the SSA builder
	// did or didn't retain.
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "p.go", pureCallSrc, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	pureFuncs := alias.NewPureFuncSet(fset)
	for key := range alias.BuildPureFunctionSet(fset, file, "p") {
		pureFuncs.Add(key)
	}
	o := &alias.Oracle{PureFuncs: pureFuncs}

	var call *ssa.Call
	for _, b := range caller.Blocks {
		for _, instr := range b.Instrs {
			if c, ok := instr.(*ssa.Call); ok {
				call = c
			}
		}
	}
	if call == nil {
		t.Fatal("expected a call instruction in caller")
	}
	if got := o.Classify(call); got != memssa.ClassSkip {
		t.Errorf("a call to a //memssa:pure function should classify Skip, got %v", got)
	}
}
