package redundantload

import (
	"go/ast"
	"go/token"
	"strings"
)

// IsIgnoreDirective reports whether a comment is a //memssa:ignore
// directive, in either "//memssa:ignore" or "// memssa:ignore" form.
func IsIgnoreDirective(text string) bool {
	text = strings.TrimSpace(strings.TrimPrefix(text, "//"))
	return strings.HasPrefix(text, "memssa:ignore")
}

type ignoreEntry struct {
	pos  token.Pos
	used bool
}

// IgnoreMap tracks which lines of a file carry a same-line or
// preceding-line //memssa:ignore comment, and whether each was actually
// used to suppress a diagnostic — an unused ignore is itself reported,
// the way a stale suppression comment usually should be.
type IgnoreMap map[int]*ignoreEntry

// BuildIgnoreMap scans file for ignore comments, including a file-level
// ignore placed in the package doc comment.
func BuildIgnoreMap(fset *token.FileSet, file *ast.File) IgnoreMap {
	m := make(IgnoreMap)
	for _, cg := range file.Comments {
		for _, c := range cg.List {
			if IsIgnoreDirective(c.Text) {
				pos := fset.Position(c.Pos())
				m[pos.Line] = &ignoreEntry{pos: c.Pos()}
			}
		}
	}
	if file.Doc != nil {
		for _, c := range file.Doc.List {
			if IsIgnoreDirective(c.Text) {
				delete(m, fset.Position(c.Pos()).Line)
				m[-1] = &ignoreEntry{pos: c.Pos(), used: true}
			}
		}
	}
	return m
}

// ShouldIgnore reports whether line should be suppressed: a file-level
// ignore is active, or the same or immediately preceding line carries
// one. Matching marks that directive used.
func (m IgnoreMap) ShouldIgnore(line int) bool {
	if entry, ok := m[-1]; ok {
		entry.used = true
		return true
	}
	if entry, ok := m[line]; ok {
		entry.used = true
		return true
	}
	if entry, ok := m[line-1]; ok {
		entry.used = true
		return true
	}
	return false
}

// UnusedIgnores returns the positions of ignore directives that never
// suppressed anything.
func (m IgnoreMap) UnusedIgnores() []token.Pos {
	var unused []token.Pos
	for line, entry := range m {
		if line == -1 || entry.used {
			continue
		}
		unused = append(unused, entry.pos)
	}
	return unused
}
