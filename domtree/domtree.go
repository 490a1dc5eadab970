// Package domtree builds a dominator tree over the basic blocks of a
// golang.org/x/tools/go/ssa function.
//
// go/ssa computes dominance internally (for lifting allocs to registers)
// but does not export it. This package rebuilds it using the same
// Lengauer-Tarjan algorithm, adapted from go/ssa's own dom.go, so that
// memssa can ask dominance questions about an arbitrary *ssa.Function
// without reaching into unexported fields.
package domtree

import "golang.org/x/tools/go/ssa"

// Tree is the dominator tree of a single function's control-flow graph.
type Tree struct {
	fn    *ssa.Function
	nodes map[*ssa.BasicBlock]*node
	root  *node
}

type node struct {
	block    *ssa.BasicBlock
	idom     *node
	children []*node
	pre, post int32 // domtree pre/post order, for O(1) dominance queries
	index     int32 // preorder index among reachable blocks; -1 until visited
}

// Build computes the dominator tree of fn. fn must have at least one
// basic block (its entry block, Blocks[0], is the root).
func Build(fn *ssa.Function) *Tree {
	t := &Tree{fn: fn, nodes: make(map[*ssa.BasicBlock]*node, len(fn.Blocks))}
	for _, b := range fn.Blocks {
		t.nodes[b] = &node{block: b, index: -1}
	}
	if len(fn.Blocks) == 0 {
		return t
	}
	t.root = t.nodes[fn.Blocks[0]]
	t.build()
	return t
}

// Root returns the function's entry block.
func (t *Tree) Root() *ssa.BasicBlock { return t.fn.Blocks[0] }

// IDom returns the immediate dominator of b, or nil if b is the root or
// unreachable.
func (t *Tree) IDom(b *ssa.BasicBlock) *ssa.BasicBlock {
	n := t.nodes[b]
	if n == nil || n.idom == nil {
		return nil
	}
	return n.idom.block
}

// Children returns the blocks immediately dominated by b.
func (t *Tree) Children(b *ssa.BasicBlock) []*ssa.BasicBlock {
	n := t.nodes[b]
	if n == nil {
		return nil
	}
	out := make([]*ssa.BasicBlock, len(n.children))
	for i, c := range n.children {
		out[i] = c.block
	}
	return out
}

// Dominates reports whether a dominates b (reflexively: a dominates a).
// Unreachable blocks are dominated by nothing and dominate nothing.
func (t *Tree) Dominates(a, b *ssa.BasicBlock) bool {
	na, nb := t.nodes[a], t.nodes[b]
	if na == nil || nb == nil || na.index < 0 || nb.index < 0 {
		return false
	}
	return na.pre <= nb.pre && nb.post <= na.post
}

// Preorder calls visit for every reachable block in dominator-tree
// preorder (parent before children), the order the builder's renaming
// walk must use.
func (t *Tree) Preorder(visit func(*ssa.BasicBlock)) {
	if t.root == nil {
		return
	}
	var walk func(n *node)
	walk = func(n *node) {
		visit(n.block)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
}

// Reachable reports whether b was reached from the entry block during
// dominator-tree construction.
func (t *Tree) Reachable(b *ssa.BasicBlock) bool {
	n := t.nodes[b]
	return n != nil && n.index >= 0
}

// ltState holds the working state for the Lengauer-Tarjan algorithm;
// during DFS, node.pre is temporarily repurposed as CFG DFS preorder.
type ltState struct {
	sdom     []*node
	parent   []*node
	ancestor []*node
}

func (t *Tree) build() {
	var reachable []*node
	var visit func(n *node)
	visit = func(n *node) {
		if n.index >= 0 {
			return
		}
		n.index = int32(len(reachable))
		reachable = append(reachable, n)
		for _, s := range n.block.Succs {
			visit(t.nodes[s])
		}
	}
	visit(t.root)

	n := len(reachable)
	if n == 0 {
		return
	}
	space := make([]*node, 5*n)
	lt := ltState{
		sdom:     space[0:n],
		parent:   space[n : 2*n],
		ancestor: space[2*n : 3*n],
	}
	preorder := space[3*n : 4*n]
	buckets := space[4*n : 5*n]

	var dfs func(v *node, i int32) int32
	dfs = func(v *node, i int32) int32 {
		preorder[i] = v
		v.pre = i
		i++
		lt.sdom[v.index] = v
		lt.ancestor[v.index] = nil
		for _, s := range v.block.Succs {
			w := t.nodes[s]
			if lt.sdom[w.index] == nil {
				lt.parent[w.index] = v
				i = dfs(w, i)
			}
		}
		return i
	}
	dfs(t.root, 0)
	copy(buckets, preorder)

	eval := func(v *node) *node {
		u := v
		for ; lt.ancestor[v.index] != nil; v = lt.ancestor[v.index] {
			if lt.sdom[v.index].pre < lt.sdom[u.index].pre {
				u = v
			}
		}
		return u
	}

	for i := int32(n) - 1; i > 0; i-- {
		w := preorder[i]

		for v := buckets[i]; v != w; v = buckets[v.pre] {
			u := eval(v)
			if lt.sdom[u.index].pre < i {
				v.idom = u
			} else {
				v.idom = w
			}
		}

		lt.sdom[w.index] = lt.parent[w.index]
		for _, p := range w.block.Preds {
			v := t.nodes[p]
			if v.index < 0 {
				continue
			}
			u := eval(v)
			if lt.sdom[u.index].pre < lt.sdom[w.index].pre {
				lt.sdom[w.index] = lt.sdom[u.index]
			}
		}

		lt.ancestor[w.index] = lt.parent[w.index]

		if lt.parent[w.index] == lt.sdom[w.index] {
			w.idom = lt.parent[w.index]
		} else {
			buckets[i] = buckets[lt.sdom[w.index].pre]
			buckets[lt.sdom[w.index].pre] = w
		}
	}

	for v := buckets[0]; v != preorder[0]; v = buckets[v.pre] {
		v.idom = preorder[0]
	}

	for _, w := range preorder[1:] {
		if w == t.root {
			w.idom = nil
			continue
		}
		if w.idom != lt.sdom[w.index] {
			w.idom = w.idom.idom
		}
		w.idom.children = append(w.idom.children, w)
	}

	var number func(v *node, pre, post int32) (int32, int32)
	number = func(v *node, pre, post int32) (int32, int32) {
		v.pre = pre
		pre++
		for _, c := range v.children {
			pre, post = number(c, pre, post)
		}
		v.post = post
		post++
		return pre, post
	}
	number(t.root, 0, 0)
}

// Frontier computes the dominance frontier of every reachable block: the
// set of blocks where a value defined in blocks is no longer guaranteed
// to dominate, the classic confluence-point criterion for SSA phi
// placement. Implemented via the idom-chain walk (Cytron et al.): for
// each block b with >=2 predecessors, walk up from each predecessor to
// b's immediate dominator, adding b to the frontier of every block
// visited along the way.
func (t *Tree) Frontier() map[*ssa.BasicBlock][]*ssa.BasicBlock {
	df := make(map[*ssa.BasicBlock][]*ssa.BasicBlock)
	seen := make(map[*ssa.BasicBlock]map[*ssa.BasicBlock]bool)
	add := func(b, frontierOf *ssa.BasicBlock) {
		s := seen[b]
		if s == nil {
			s = make(map[*ssa.BasicBlock]bool)
			seen[b] = s
		}
		if !s[frontierOf] {
			s[frontierOf] = true
			df[b] = append(df[b], frontierOf)
		}
	}
	for b, n := range t.nodes {
		if n.index < 0 || len(b.Preds) < 2 {
			continue
		}
		idom := t.IDom(b)
		for _, p := range b.Preds {
			if !t.Reachable(p) {
				continue
			}
			runner := p
			for runner != idom {
				add(runner, b)
				next := t.IDom(runner)
				if next == nil {
					break
				}
				runner = next
			}
		}
	}
	return df
}
