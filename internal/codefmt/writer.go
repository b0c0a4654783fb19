package codefmt

import (
	"go/ast"
	"go/format"
	"go/token"
	"go/types"
	"io"
	"path"

	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/go/packages"
)

// Writer is a writer for generated code.
type Writer struct {
	w       io.Writer
	pkg     *packages.Package
	fmt     Formatter
	imports map[string]Import
	ns      NS
}

// NewWriter creates a new [Writer]. It does not initialize the namespace. To
// specify a namespace, use [Writer.WithNS].
//
// Generated code is formatted without the file set of the package because it
// has no positions in the source files.
func NewWriter(w io.Writer, pkg *packages.Package) *Writer {
	f := New(pkg)
	f.Fset = token.NewFileSet()
	return &Writer{
		w:       w,
		pkg:     pkg,
		fmt:     f,
		imports: make(map[string]Import),
		ns:      nil,
	}
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

// Node writes the given AST node as Go code.
func (w *Writer) Node(node ast.Node) error {
	return format.Node(w.w, w.fmt.Fset, node)
}

// NS returns the namespace of the writer.
func (w *Writer) NS() NS {
	return w.ns
}

// WithNS copies the writer and sets a new namespace.
func (w *Writer) WithNS(ns NS) *Writer {
	return &Writer{
		w:       w.w,
		pkg:     w.pkg,
		fmt:     w.fmt,
		imports: w.imports,
		ns:      ns,
	}
}

type Import struct {
	// The package to import.
	*types.Package

	// HasAlias indicates that the import has an alias.
	HasAlias bool
}

// Imports returns the collected imports. Imports are collected by
// [Writer.Import] and [RewriteImports].
func (w *Writer) Imports() map[string]Import {
	return w.imports
}

// Import adds an import for the package with the given path and alias. It
// returns the name of the imported package. The name might be different if it
// has tried to resolve name conflicts.
//
//	// unsafeName refers to the "unsafe" package without any name conflict.
//	unsafeName := w.Import("unsafe", "unsafe")
//	ptr := &ast.SelectorExpr{X: ast.NewIdent(unsafeName), Sel: ast.NewIdent("Pointer")}
//
// When calling it, the package to import is recorded. Call [Writer.Imports]
// to retrieve them.
func (w *Writer) Import(pkgPath, name string) string {
	pkgName := w.pkgName(pkgPath)
	if name == "" {
		name = pkgName
	}
	pkg := types.NewPackage(pkgPath, name)

	for name := range DisambiguateName(name) {
		prev, ok := w.imports[name]
		if ok && prev.Path() == pkgPath {
			// Already imported with the same name.
			return name
		}
		if !ok && !w.declared(name) {
			w.imports[name] = Import{Package: pkg, HasAlias: name != pkgName}
			pkg.SetName(name)
			return name
		}
	}

	panic("unreachable")
}

// pkgName returns the declared name of the package at the given path. If the
// package is not imported by the current package, the last element of the
// path is used.
func (w *Writer) pkgName(pkgPath string) string {
	if w.pkg != nil && w.pkg.Types != nil {
		for _, imp := range w.pkg.Types.Imports() {
			if imp.Path() == pkgPath {
				return imp.Name()
			}
		}
	}
	return path.Base(pkgPath)
}

// declared reports whether the name is declared in the package scope.
func (w *Writer) declared(name string) bool {
	if w.pkg == nil || w.pkg.Types == nil {
		return false
	}
	return w.pkg.Types.Scope().Lookup(name) != nil
}

// FileImports maps the names of packages imported by a source file to their
// paths. Blank and dot imports are not included.
type FileImports map[string]string

// FileImportsOf collects the imports of the given file. Imports without an
// alias are named by the imported package name if the type information is
// available, otherwise by the last element of the path.
func FileImportsOf(pkg *packages.Package, file *ast.File) FileImports {
	imports := make(FileImports)
	for _, spec := range file.Imports {
		pkgPath := importPath(spec)
		if spec.Name != nil {
			if spec.Name.Name != "_" && spec.Name.Name != "." {
				imports[spec.Name.Name] = pkgPath
			}
			continue
		}

		name := path.Base(pkgPath)
		if pkg != nil && pkg.TypesInfo != nil {
			if pkgName, ok := pkg.TypesInfo.Implicits[spec].(*types.PkgName); ok {
				name = pkgName.Name()
			}
		}
		imports[name] = pkgPath
	}
	return imports
}

func importPath(spec *ast.ImportSpec) string {
	s := spec.Path.Value
	if len(s) >= 2 {
		s = s[1 : len(s)-1]
	}
	return s
}

// RewriteImports modifies the given AST node to rewrite qualified identifiers
// referring to packages imported by a source file, such as "utf8.Valid". The
// packages are imported into the generated code under names which do not
// conflict with each other.
//
// The node must not be a part of the source files. Use [Formatter.Clone] to
// get a modifiable copy.
func RewriteImports[T ast.Node](w *Writer, node T, imports FileImports) T {
	return astutil.Apply(node, func(c *astutil.Cursor) bool {
		sel, ok := c.Node().(*ast.SelectorExpr)
		if !ok {
			return true
		}

		pkgIdent, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}

		pkgPath, ok := imports[pkgIdent.Name]
		if !ok {
			// The qualifier is not a package name.
			return true
		}

		newPkgName := w.Import(pkgPath, pkgIdent.Name)
		c.Replace(&ast.SelectorExpr{
			X:   ast.NewIdent(newPkgName),
			Sel: ast.NewIdent(sel.Sel.Name),
		})
		return false
	}, nil).(T)
}
