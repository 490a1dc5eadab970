package memssa_test

import "testing"

// TestVerifyPassesOnEveryBuiltGraph checks the three self-checks Verify
// runs (symmetry, domination, ordering) against a handful of shapes
// (straight line, branch-and-merge, an intervening write, a repeated
// load, a loop, two stores) that exercise phis and pass-through use
// chains; no violation should ever arise from a correctly built graph.
func TestVerifyPassesOnEveryBuiltGraph(t *testing.T) {
	cases := []struct {
		name, src, fn string
	}{
		{"storeLoad", storeLoadSrc, "storeLoad"},
		{"diamond", diamondSrc, "diamond"},
		{"writeBetween", writeBetweenSrc, "writeBetween"},
		{"redundant", redundantSrc, "redundant"},
		{"loopPhi", loopPhiSrc, "loopPhi"},
		{"twoStores", twoStoresSrc, "twoStores"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, _ := build(t, c.src, c.fn)
			if errs := m.Verify(); len(errs) != 0 {
				t.Errorf("unexpected verification errors for %s: %v", c.name, errs)
			}
		})
	}
}
