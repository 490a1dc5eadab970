package domtree_test

import (
	"testing"

	"golang.org/x/tools/go/ssa"

	"github.com/gossa/memssa/domtree"
	"github.com/gossa/memssa/internal/ssatest"
)

const diamondSrc = `
package p

func diamond(x bool, p, q *int) int {
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

func TestDominatesDiamond(t *testing.T) {
	fn := ssatest.Func(t, diamondSrc, "diamond")
	tree := domtree.Build(fn)

	entry := fn.Blocks[0]
	merge := mergeBlock(t, fn)

	if !tree.Dominates(entry, merge) {
		t.Errorf("entry block should dominate merge block")
	}
	if !tree.Dominates(entry, entry) {
		t.Errorf("a block must dominate itself")
	}
	if tree.Dominates(merge, entry) {
		t.Errorf("merge block must not dominate entry block")
	}

	// Neither branch block dominates the merge block: both are
	// predecessors of it and neither dominates the other.
	for _, b := range fn.Blocks {
		if b == entry || b == merge {
			continue
		}
		if tree.Dominates(b, merge) {
			t.Errorf("branch block %v must not dominate merge block", b)
		}
	}
}

func TestFrontierAtMerge(t *testing.T) {
	fn := ssatest.Func(t, diamondSrc, "diamond")
	tree := domtree.Build(fn)
	merge := mergeBlock(t, fn)

	df := tree.Frontier()
	for _, b := range fn.Blocks {
		if b == fn.Blocks[0] || b == merge {
			continue
		}
		found := false
		for _, f := range df[b] {
			if f == merge {
				found = true
			}
		}
		if !found && len(b.Succs) == 1 && b.Succs[0] == merge {
			t.Errorf("branch block %v should have merge block in its dominance frontier", b)
		}
	}
}

func TestPreorderVisitsRootFirst(t *testing.T) {
	fn := ssatest.Func(t, diamondSrc, "diamond")
	tree := domtree.Build(fn)

	var order []*ssa.BasicBlock
	tree.Preorder(func(b *ssa.BasicBlock) {
		order = append(order, b)
	})
	if len(order) == 0 {
		t.Fatal("preorder visited no blocks")
	}
	if order[0] != fn.Blocks[0] {
		t.Errorf("preorder must visit the entry block first, got %v", order[0])
	}
	if len(order) != len(fn.Blocks) {
		t.Errorf("preorder should visit every reachable block exactly once, got %d want %d", len(order), len(fn.Blocks))
	}
}
