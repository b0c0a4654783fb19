// Package attr parses annotations written in comments and answers questions
// about them.
//
// An annotation is a comment line starting with "//@" or "// @". Its body
// follows a small grammar:
//
//	meta   = path [ "(" [ nested { "," nested } [ "," ] ] ")" | "=" lit ]
//	path   = ident { "::" ident }
//	nested = meta | lit
//	lit    = int | float | imag | char | string
//
// For example:
//
//	//@derive(opaque::Sized, opaque::SizedMut)
//	//@opaque_typedef(validate(validator = "validate", error = "*ValidationError"))
//	//@repr(transparent)
package attr

import (
	"go/ast"
	"go/token"
	"strings"
)

// Meta is a parsed annotation. It is one of [*Path], [*List] and
// [*NameValue].
type Meta interface {
	Pos() token.Pos
	End() token.Pos

	// Name returns the leading path of the annotation. For a bare path, it is
	// the path itself.
	Name() *Path

	meta()
}

// Path is a bare path such as "a" or "a::b".
type Path struct {
	Segments []*ast.Ident
}

// List is a path followed by a parenthesized list such as "a(b, c = 1)".
type List struct {
	Path   *Path
	Lparen token.Pos
	Nested []Nested
	Rparen token.Pos
}

// NameValue is a path followed by a literal value such as `a = "b"`.
type NameValue struct {
	Path   *Path
	Assign token.Pos
	Value  *ast.BasicLit
}

// Nested is an item of a [List]. Exactly one of Meta and Lit is set.
type Nested struct {
	Meta Meta
	Lit  *ast.BasicLit
}

func (p *Path) Pos() token.Pos { return p.Segments[0].Pos() }
func (p *Path) End() token.Pos { return p.Segments[len(p.Segments)-1].End() }
func (p *Path) Name() *Path    { return p }

func (l *List) Pos() token.Pos { return l.Path.Pos() }
func (l *List) End() token.Pos { return l.Rparen + 1 }
func (l *List) Name() *Path    { return l.Path }

func (nv *NameValue) Pos() token.Pos { return nv.Path.Pos() }
func (nv *NameValue) End() token.Pos { return nv.Value.End() }
func (nv *NameValue) Name() *Path    { return nv.Path }

func (*Path) meta()      {}
func (*List) meta()      {}
func (*NameValue) meta() {}

func (n Nested) Pos() token.Pos {
	if n.Meta != nil {
		return n.Meta.Pos()
	}
	return n.Lit.Pos()
}

// Is reports whether the path consists of exactly the given segments.
//
//	path("a::b").Is("a", "b") // true
//	path("a::b").Is("a")      // false
func (p *Path) Is(segments ...string) bool {
	if p == nil || len(p.Segments) != len(segments) {
		return false
	}
	for i, seg := range p.Segments {
		if seg.Name != segments[i] {
			return false
		}
	}
	return true
}

// String returns the path in "a::b" form.
func (p *Path) String() string {
	names := make([]string, len(p.Segments))
	for i, seg := range p.Segments {
		names[i] = seg.Name
	}
	return strings.Join(names, "::")
}

// Paths returns the bare paths in the list, skipping nested lists, name-value
// pairs and literals.
func (l *List) Paths() []*Path {
	var paths []*Path
	for _, n := range l.Nested {
		if p, ok := n.Meta.(*Path); ok {
			paths = append(paths, p)
		}
	}
	return paths
}
