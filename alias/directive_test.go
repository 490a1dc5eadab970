package alias_test

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/gossa/memssa/alias"
)

func TestIsPureDirective(t *testing.T) {
	cases := map[string]bool{
		"//memssa:pure":              true,
		"// memssa:pure":             true,
		"//memssa:pure reviewed":     true,
		"// not a directive":         false,
		"//memssa:ignore":            false,
	}
	for text, want := range cases {
		if got := alias.IsPureDirective(text); got != want {
			t.Errorf("IsPureDirective(%q) = %v, want %v", text, got, want)
		}
	}
}

const pureFuncsSrc = `
package p

//memssa:pure
func Plain() int { return 0 }

type T struct{}

//memssa:pure
func (T) Method() int { return 0 }

func (*T) Other() int { return 0 }
`

func TestBuildPureFunctionSet(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "p.go", pureFuncsSrc, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got := alias.BuildPureFunctionSet(fset, file, "example.com/p")

	plain := alias.PureFuncKey{PkgPath: "example.com/p", FuncName: "Plain"}
	if !got[plain] {
		t.Errorf("expected %v in the pure set", plain)
	}

	method := alias.PureFuncKey{PkgPath: "example.com/p", ReceiverType: "T", FuncName: "Method"}
	if !got[method] {
		t.Errorf("expected %v in the pure set", method)
	}

	other := alias.PureFuncKey{PkgPath: "example.com/p", ReceiverType: "T", FuncName: "Other"}
	if got[other] {
		t.Errorf("Other has no //memssa:pure directive and must not be in the set")
	}

	if len(got) != 2 {
		t.Errorf("expected exactly two pure functions, got %d: %v", len(got), got)
	}
}
