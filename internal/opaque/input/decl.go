package input

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/sublee/opaque/internal/codefmt"
	"github.com/sublee/opaque/internal/opaque/attr"
	"github.com/sublee/opaque/internal/typeinfo"
)

// Decl is a struct type declaration annotated for opaque typedef generation.
type Decl struct {
	Fset *token.FileSet
	Spec *ast.TypeSpec

	// Metas are the annotations attached to the type.
	Metas []attr.Meta

	// Fields are the struct fields in declaration order. A field declaring
	// multiple names is split into one field per name.
	Fields []Field

	// Imports are the imports of the file declaring the type.
	Imports codefmt.FileImports
}

// Field is a struct field.
type Field struct {
	Index int

	// Name is the field name. It is nil if the field is embedded.
	Name *ast.Ident
	Type ast.Expr

	// Metas are the annotations attached to the field.
	Metas []attr.Meta

	// Zero tells how to write the zero value of the field type. It is
	// [typeinfo.ZeroUnknown] until the type is resolved by the type checker.
	Zero typeinfo.ZeroKind
}

// NewDecl creates a [Decl] from a type declaration. gen is the declaration
// holding spec. Its doc comment is used only if the declaration is not a
// group, because a group's doc comment does not belong to a single type.
func NewDecl(fset *token.FileSet, imports codefmt.FileImports, gen *ast.GenDecl, spec *ast.TypeSpec) (*Decl, error) {
	var groups []*ast.CommentGroup
	if gen != nil && !gen.Lparen.IsValid() {
		groups = append(groups, gen.Doc)
	}
	groups = append(groups, spec.Doc, spec.Comment)

	decl := &Decl{
		Fset:    fset,
		Spec:    spec,
		Metas:   attr.Collect(groups...),
		Imports: imports,
	}

	st, ok := spec.Type.(*ast.StructType)
	if !ok {
		return decl, codefmt.Errorf(codefmt.Fset(fset), spec.Name, "opaque typedef %s must be a struct type", spec.Name.Name)
	}
	if spec.Assign.IsValid() {
		return decl, codefmt.Errorf(codefmt.Fset(fset), spec.Name, "opaque typedef %s must not be an alias", spec.Name.Name)
	}

	for _, f := range st.Fields.List {
		metas := attr.Collect(f.Doc, f.Comment)
		if len(f.Names) == 0 {
			decl.Fields = append(decl.Fields, Field{Index: len(decl.Fields), Type: f.Type, Metas: metas})
			continue
		}
		for _, name := range f.Names {
			decl.Fields = append(decl.Fields, Field{Index: len(decl.Fields), Name: name, Type: f.Type, Metas: metas})
		}
	}
	return decl, nil
}

// Name returns the name of the type.
func (d *Decl) Name() string { return d.Spec.Name.Name }

// Pos returns the position of the type name.
func (d *Decl) Pos() token.Pos { return d.Spec.Name.Pos() }

// End returns the end position of the type name.
func (d *Decl) End() token.Pos { return d.Spec.Name.End() }

// IsGeneric reports whether the type has type parameters.
func (d *Decl) IsGeneric() bool {
	return d.Spec.TypeParams != nil && d.Spec.TypeParams.NumFields() != 0
}

// TypeParamNames returns the names of the type parameters in order.
func (d *Decl) TypeParamNames() []string {
	if d.Spec.TypeParams == nil {
		return nil
	}
	var names []string
	for _, f := range d.Spec.TypeParams.List {
		for _, name := range f.Names {
			names = append(names, name.Name)
		}
	}
	return names
}

// Pos returns the position of the field name, or of the type if the field is
// embedded.
func (f Field) Pos() token.Pos {
	if f.Name != nil {
		return f.Name.Pos()
	}
	return f.Type.Pos()
}

// End returns the end position of the field name or the embedded type.
func (f Field) End() token.Pos {
	if f.Name != nil {
		return f.Name.End()
	}
	return f.Type.End()
}

// IsEmbedded reports whether the field is embedded.
func (f Field) IsEmbedded() bool { return f.Name == nil }

// IsBlank reports whether the field is named "_".
func (f Field) IsBlank() bool { return f.Name != nil && f.Name.Name == "_" }

// Accessor returns how the field is accessed.
func (f Field) Accessor() Accessor {
	if f.Name != nil {
		return Accessor{Kind: Named, Name: f.Name.Name}
	}
	return Accessor{Kind: Positional, Name: embeddedName(f.Type), Index: f.Index}
}

// String describes the field for diagnostics, e.g., "#1 (tag)".
func (f Field) String() string {
	return fmt.Sprintf("#%d (%s)", f.Index, f.Accessor().Name)
}

// AccessorKind distinguishes named fields from embedded fields.
type AccessorKind int

const (
	// Named fields are accessed by their names.
	Named AccessorKind = iota

	// Positional fields are embedded fields. They have no names of their own
	// and are accessed by the name of the embedded type.
	Positional
)

// Accessor describes how a field is accessed in a selector or a keyed
// composite literal.
type Accessor struct {
	Kind AccessorKind
	Name string

	// Index is the position of a [Positional] field.
	Index int
}

// embeddedName returns the field name of an embedded field, which is the
// name of its type without the package qualifier, pointer and type
// arguments.
func embeddedName(typ ast.Expr) string {
	switch t := typ.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(t.X)
	case *ast.IndexListExpr:
		return embeddedName(t.X)
	case *ast.ParenExpr:
		return embeddedName(t.X)
	}
	return "_"
}
