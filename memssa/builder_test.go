package memssa_test

import (
	"testing"

	"golang.org/x/tools/go/ssa"

	"github.com/gossa/memssa/memssa"
	"github.com/gossa/memssa/alias"
	"github.com/gossa/memssa/domtree"
	"github.com/gossa/memssa/internal/ssatest"
)

func build(t *testing.T, src, name string) (*memssa.MemorySSA, *ssa.Function) {
	t.Helper()
	fn := ssatest.Func(t, src, name)
	domt := domtree.Build(fn)
	m := memssa.Build(fn, alias.NewOracle(), domt, alias.NewTranslator())
	return m, fn
}

const storeLoadSrc = `
package p

func storeLoad(p *int) int {
	*p = 1
	return *p
}
`

func TestStoreThenLoadSharesDef(t *testing.T) {
	m, fn := build(t, storeLoadSrc, "storeLoad")

	var store *ssa.Store
	var load *ssa.UnOp
	for _, instr := range fn.Blocks[0].Instrs {
		switch v := instr.(type) {
		case *ssa.Store:
			store = v
		case *ssa.UnOp:
			load = v
		}
	}
	if store == nil || load == nil {
		t.Fatal("expected a store and a load in the entry block")
	}

	defAccess := m.AccessOf(store)
	useAccess := m.AccessOf(load)
	if defAccess == nil || defAccess.Kind() != memssa.KindDef {
		t.Fatalf("store should have a MemoryDef, got %v", defAccess)
	}
	if useAccess == nil || useAccess.Kind() != memssa.KindUse {
		t.Fatalf("load should have a MemoryUse, got %v", useAccess)
	}
	if useAccess.Defining() != defAccess {
		t.Errorf("load's defining access should be the store, got %v", useAccess.Defining())
	}
	if errs := m.Verify(); len(errs) != 0 {
		t.Errorf("unexpected verification errors: %v", errs)
	}
}

const diamondSrc = `
package p

func diamond(x bool, p *int) int {
	if x {
		*p = 1
	} else {
		*p = 2
	}
	return *p
}
`

// mergeBlock returns the diamond's confluence block: the block with two
// or more predecessors. go/ssa does not list it last in fn.Blocks.
func mergeBlock(t *testing.T, fn *ssa.Function) *ssa.BasicBlock {
	t.Helper()
	for _, b := range fn.Blocks {
		if len(b.Preds) >= 2 {
			return b
		}
	}
	t.Fatal("expected a block with two or more predecessors")
	return nil
}

func TestDiamondPlacesPhiAtMerge(t *testing.T) {
	m, fn := build(t, diamondSrc, "diamond")

	merge := mergeBlock(t, fn)
	phi := m.PhiOf(merge)
	if phi == nil {
		t.Fatal("merge block should have a MemoryPhi")
	}
	if len(phi.Incomings()) != len(merge.Preds) {
		t.Errorf("phi should have one incoming per predecessor, got %d want %d", len(phi.Incomings()), len(merge.Preds))
	}
	for _, in := range phi.Incomings() {
		if in.Value == nil {
			t.Errorf("phi incoming from %v has a nil value", in.Pred)
		}
	}
	if errs := m.Verify(); len(errs) != 0 {
		t.Errorf("unexpected verification errors: %v", errs)
	}
}

const writeBetweenSrc = `
package p

func writeBetween(p *int) int {
	a := *p
	*p = a + 1
	b := *p
	return a + b
}
`

func TestUseOptimizerStopsAtInterveningWrite(t *testing.T) {
	m, fn := build(t, writeBetweenSrc, "writeBetween")

	var loads []*ssa.UnOp
	var store *ssa.Store
	for _, instr := range fn.Blocks[0].Instrs {
		switch v := instr.(type) {
		case *ssa.UnOp:
			loads = append(loads, v)
		case *ssa.Store:
			store = v
		}
	}
	if len(loads) != 2 || store == nil {
		t.Fatalf("expected two loads and a store, got %d loads, store=%v", len(loads), store)
	}
	firstUse := m.AccessOf(loads[0])
	secondUse := m.AccessOf(loads[1])
	storeDef := m.AccessOf(store)

	if firstUse.Defining() != m.LiveOnEntry() {
		t.Errorf("first load should be defined by LiveOnEntry, got %v", firstUse.Defining())
	}
	if secondUse.Defining() != storeDef {
		t.Errorf("second load should be defined by the intervening store, got %v", secondUse.Defining())
	}
}
