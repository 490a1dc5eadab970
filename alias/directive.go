package alias

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"golang.org/x/tools/go/ssa"
)

// IsPureDirective reports whether a comment is a //memssa:pure
// directive, in either "//memssa:pure" or "// memssa:pure" form.
// Functions so marked are assumed to make no externally visible memory
// writes through any pointer reachable from their arguments.
func IsPureDirective(text string) bool {
	text = strings.TrimSpace(strings.TrimPrefix(text, "//"))
	return strings.HasPrefix(text, "memssa:pure")
}

// PureFuncKey identifies a function marked pure without relying on
// fragile string comparison against fn.String().
type PureFuncKey struct {
	PkgPath      string
	ReceiverType string
	FuncName     string
}

// PureFuncSet is a set of pure functions, populated for the package
// under analysis via BuildPureFunctionSet and lazily extended for
// external packages by parsing their declaring file on demand.
type PureFuncSet struct {
	known map[PureFuncKey]bool
	fset  *token.FileSet
	cache map[string]*ast.File
}

// NewPureFuncSet creates an empty PureFuncSet that resolves external
// package positions using fset.
func NewPureFuncSet(fset *token.FileSet) *PureFuncSet {
	return &PureFuncSet{known: make(map[PureFuncKey]bool), fset: fset, cache: make(map[string]*ast.File)}
}

// Add records key as pure.
func (s *PureFuncSet) Add(key PureFuncKey) {
	if s != nil {
		s.known[key] = true
	}
}

// Contains reports whether fn is known pure, either because it was
// added via Add (current package) or because its own declaration,
// wherever it lives, carries a //memssa:pure comment.
func (s *PureFuncSet) Contains(fn *ssa.Function) bool {
	if fn == nil {
		return false
	}
	if s != nil {
		key := PureFuncKey{FuncName: fn.Name()}
		if fn.Pkg != nil && fn.Pkg.Pkg != nil {
			key.PkgPath = fn.Pkg.Pkg.Path()
		}
		if sig := fn.Signature; sig != nil && sig.Recv() != nil {
			key.ReceiverType = receiverTypeName(sig.Recv().Type())
		}
		if s.known[key] {
			return true
		}
	}
	return s.hasPureDirective(fn)
}

func (s *PureFuncSet) hasPureDirective(fn *ssa.Function) bool {
	if syntax := fn.Syntax(); syntax != nil {
		if fd, ok := syntax.(*ast.FuncDecl); ok && fd.Doc != nil {
			for _, c := range fd.Doc.List {
				if IsPureDirective(c.Text) {
					return true
				}
			}
		}
	}
	if s == nil || s.fset == nil {
		return false
	}
	obj := fn.Object()
	if obj == nil || !obj.Pos().IsValid() {
		return false
	}
	filename := s.fset.Position(obj.Pos()).Filename
	if filename == "" {
		return false
	}
	file := s.parseFile(filename)
	if file == nil {
		return false
	}
	var recv string
	if sig := fn.Signature; sig != nil && sig.Recv() != nil {
		recv = receiverTypeName(sig.Recv().Type())
	}
	return fileHasPureDirective(file, fn.Name(), recv)
}

func (s *PureFuncSet) parseFile(filename string) *ast.File {
	if f, ok := s.cache[filename]; ok {
		return f
	}
	f, err := parser.ParseFile(s.fset, filename, nil, parser.ParseComments)
	if err != nil {
		s.cache[filename] = nil
		return nil
	}
	s.cache[filename] = f
	return f
}

func fileHasPureDirective(file *ast.File, funcName, receiverType string) bool {
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Name.Name != funcName {
			continue
		}
		declRecv := ""
		if fd.Recv != nil && len(fd.Recv.List) > 0 {
			declRecv = stripPointer(exprString(fd.Recv.List[0].Type))
		}
		if declRecv != receiverType {
			continue
		}
		if fd.Doc == nil {
			continue
		}
		for _, c := range fd.Doc.List {
			if IsPureDirective(c.Text) {
				return true
			}
		}
	}
	return false
}

// BuildPureFunctionSet scans file for //memssa:pure directives on
// top-level function and method declarations and returns the set of
// keys they introduce.
func BuildPureFunctionSet(fset *token.FileSet, file *ast.File, pkgPath string) map[PureFuncKey]bool {
	result := make(map[PureFuncKey]bool)
	ast.Inspect(file, func(n ast.Node) bool {
		fd, ok := n.(*ast.FuncDecl)
		if !ok || fd.Doc == nil {
			return true
		}
		for _, c := range fd.Doc.List {
			if !IsPureDirective(c.Text) {
				continue
			}
			key := PureFuncKey{PkgPath: pkgPath, FuncName: fd.Name.Name}
			if fd.Recv != nil && len(fd.Recv.List) > 0 {
				key.ReceiverType = stripPointer(exprString(fd.Recv.List[0].Type))
			}
			result[key] = true
			break
		}
		return true
	})
	return result
}

func receiverTypeName(t interface{ String() string }) string {
	s := strings.TrimPrefix(t.String(), "*")
	if i := strings.IndexByte(s, '['); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// stripPointer removes a leading "*" from a type string.
func stripPointer(s string) string {
	return strings.TrimPrefix(s, "*")
}

// exprString converts a receiver type expression to a string,
// collapsing a generic receiver like GenericReceiver[T] to its base
// name so it compares equal to the go/types-derived receiver name.
func exprString(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.StarExpr:
		return "*" + exprString(e.X)
	case *ast.SelectorExpr:
		return exprString(e.X) + "." + e.Sel.Name
	case *ast.IndexExpr:
		return exprString(e.X)
	case *ast.IndexListExpr:
		return exprString(e.X)
	default:
		return ""
	}
}
