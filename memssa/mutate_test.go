package memssa_test

import (
	"testing"

	"golang.org/x/tools/go/ssa"

	"github.com/gossa/memssa/memssa"
)

const twoStoresSrc = `
package p

func twoStores(p *int) int {
	*p = 1
	*p = 2
	return *p
}
`

func TestLocallyDominatesOrdersWithinBlock(t *testing.T) {
	m, fn := build(t, twoStoresSrc, "twoStores")

	var stores []*ssa.Store
	for _, instr := range fn.Blocks[0].Instrs {
		if s, ok := instr.(*ssa.Store); ok {
			stores = append(stores, s)
		}
	}
	if len(stores) != 2 {
		t.Fatalf("expected two stores, got %d", len(stores))
	}
	first := m.AccessOf(stores[0])
	second := m.AccessOf(stores[1])
	if !m.LocallyDominates(first, second) {
		t.Errorf("first store should locally dominate second")
	}
	if m.LocallyDominates(second, first) {
		t.Errorf("second store must not locally dominate first")
	}
	if !m.Dominates(first, second) {
		t.Errorf("Dominates should agree with LocallyDominates for same-block accesses")
	}
}

func TestRemoveMemoryAccessRewiresUsersPassThrough(t *testing.T) {
	m, fn := build(t, twoStoresSrc, "twoStores")

	var stores []*ssa.Store
	var load *ssa.UnOp
	for _, instr := range fn.Blocks[0].Instrs {
		switch v := instr.(type) {
		case *ssa.Store:
			stores = append(stores, v)
		case *ssa.UnOp:
			load = v
		}
	}
	first := m.AccessOf(stores[0])
	second := m.AccessOf(stores[1])
	use := m.AccessOf(load)

	if use.Defining() != second {
		t.Fatalf("load should initially be defined by the second store, got %v", use.Defining())
	}

	m.RemoveMemoryAccess(second)

	if use.Defining() != first {
		t.Errorf("removing the second store should rewire the load to the first, got %v", use.Defining())
	}
	if errs := m.Verify(); len(errs) != 0 {
		t.Errorf("unexpected verification errors after removal: %v", errs)
	}
}

func TestCreateMemoryAccessInBBOrphansPriorAccess(t *testing.T) {
	m, fn := build(t, twoStoresSrc, "twoStores")

	var load *ssa.UnOp
	for _, instr := range fn.Blocks[0].Instrs {
		if v, ok := instr.(*ssa.UnOp); ok {
			load = v
		}
	}
	oldUse := m.AccessOf(load)
	liveEntry := m.LiveOnEntry()

	newUse := m.CreateMemoryAccessInBB(load, liveEntry, fn.Blocks[0], memssa.Beginning)
	if newUse.Kind() != memssa.KindUse {
		t.Errorf("oracle classifies *ssa.UnOp(MUL) as a Use, got %v", newUse.Kind())
	}
	if m.AccessOf(load) != newUse {
		t.Errorf("AccessOf should now return the newly created access")
	}
	if oldUse == newUse {
		t.Errorf("the old access should have been orphaned, not reused")
	}
	if newUse.Defining() != liveEntry {
		t.Errorf("new access's defining edge should be the one passed to CreateMemoryAccessInBB")
	}
}

func TestCreateMemoryPhiPanicsWhenOneExists(t *testing.T) {
	m, fn := build(t, diamondSrc, "diamond")
	merge := mergeBlock(t, fn)
	if m.PhiOf(merge) == nil {
		t.Fatal("merge block should already carry a phi")
	}

	defer func() {
		if recover() == nil {
			t.Errorf("CreateMemoryPhi should panic when block already has a phi")
		}
	}()
	m.CreateMemoryPhi(merge)
}
