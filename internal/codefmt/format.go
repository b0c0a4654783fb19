package codefmt

import (
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Formatter formats types, signatures and expressions, and positions in
// errors.
type Formatter struct {
	PkgPath string
	Fset    *token.FileSet
}

func New(pkg *packages.Package) Formatter {
	if pkg == nil {
		return Formatter{}
	}
	return Formatter{pkg.PkgPath, pkg.Fset}
}

func newByPkger(pkger Pkger) Formatter {
	if pkger == nil {
		return New(nil)
	}
	return New(pkger.Pkg())
}

// qf is a [types.Qualifier] for types.ObjectString and types.TypeString.
func (f Formatter) qf(pkg *types.Package) string {
	if pkg.Path() == f.PkgPath {
		return ""
	}
	return pkg.Name()
}

// Type returns a string representation of the given type.
//
// e.g., f.Type([types.Type for bytes.Buffer]) => "bytes.Buffer"
func (f Formatter) Type(typ types.Type) string {
	return types.TypeString(typ, f.qf)
}

// Expr returns a Go source code representation of the given [ast.Expr].
func (f Formatter) Expr(expr ast.Expr) string {
	fset := f.Fset
	if fset == nil {
		fset = token.NewFileSet()
	}

	var b strings.Builder
	if err := format.Node(&b, fset, expr); err != nil {
		panic(err) // should never happen because ast.Expr must be supported by the go/printer
	}
	return b.String()
}

// Clone returns a copy of the given expression by printing and parsing it
// again. The copy has no positions of any file set, so it can be modified and
// printed as a part of generated code freely.
func (f Formatter) Clone(expr ast.Expr) ast.Expr {
	fset := f.Fset
	if fset == nil {
		fset = token.NewFileSet()
	}

	var b strings.Builder
	if err := format.Node(&b, fset, expr); err != nil {
		panic(err)
	}
	clone, err := parser.ParseExpr(b.String())
	if err != nil {
		panic(fmt.Errorf("clone %s: %w", b.String(), err)) // printed Go expressions must be parsable
	}
	return clone
}

// Sig returns a compact string representation of the given function signature
// without "func" keyword, receiver, and parameter names.
//
// e.g., f.Sig([*types.Signature of strconv.Atoi) => "(string) (int, error)"
func (f Formatter) Sig(sig *types.Signature) string {
	if sig == nil {
		return "<nil>"
	}

	var b strings.Builder

	b.WriteString("(")
	for i := 0; i < sig.Params().Len(); i++ {
		if i != 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Type(sig.Params().At(i).Type()))
	}
	b.WriteString(")")

	switch sig.Results().Len() {
	case 0:
		return b.String()

	case 1:
		b.WriteString(" ")
		b.WriteString(f.Type(sig.Results().At(0).Type()))
		return b.String()

	default:
		b.WriteString(" (")
		for i := 0; i < sig.Results().Len(); i++ {
			if i != 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Type(sig.Results().At(i).Type()))
		}
		b.WriteString(")")
		return b.String()
	}
}

// wd is the cached working directory.
var wd, _ = os.Getwd()

func FormatPosition(pos token.Position) string {
	if !pos.IsValid() {
		return "-:-"
	}

	filename := pos.Filename
	if rel, err := filepath.Rel(wd, filename); err == nil {
		filename = rel
	}

	return fmt.Sprintf("%s:%d:%d", filename, pos.Line, pos.Column)
}
