// Package parse finds opaque typedefs in a package and checks them against
// the type information of the package.
package parse

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"strings"

	"github.com/emirpasic/gods/sets/linkedhashset"
	"golang.org/x/tools/go/packages"

	"github.com/sublee/opaque/internal/codefmt"
	"github.com/sublee/opaque/internal/opaque/attr"
	"github.com/sublee/opaque/internal/opaque/derive"
	"github.com/sublee/opaque/internal/opaque/input"
)

// Generator identifies the files generated by opaque. It appears in the
// "Code generated" header of generated files.
const Generator = derive.OpaquePkgPath

// IsGenerated reports whether the file was generated by opaque.
func IsGenerated(file *ast.File) bool {
	prefix := "// Code generated by " + Generator
	for _, c := range file.Comments {
		if c.Pos() > file.Package {
			break
		}
		for _, l := range c.List {
			if strings.HasPrefix(l.Text, prefix) {
				return true
			}
		}
	}
	return false
}

// Target is an opaque typedef with the traits to derive.
type Target struct {
	Input *input.Input

	// Traits are the requested traits in order of first appearance without
	// duplicates.
	Traits []derive.Trait

	paths map[derive.Trait]*attr.Path
}

// Name returns the name of the type.
func (t *Target) Name() string { return t.Input.Name() }

// Parser parses an AST of the underlying package to collect opaque typedefs.
type Parser struct {
	pkg *packages.Package

	// generated are the files generated by opaque. Their methods do not
	// conflict with the methods to generate.
	generated map[*token.File]bool
}

func (p *Parser) Pkg() *packages.Package { return p.pkg }

// New creates a new [Parser]. Type information is optional. Without it, only
// syntactic checks are done.
func New(pkg *packages.Package) (*Parser, error) {
	if pkg.Name == "" {
		return nil, fmt.Errorf("need pkg name")
	}
	if pkg.Fset == nil {
		return nil, fmt.Errorf("need pkg fset")
	}
	if pkg.Syntax == nil {
		return nil, fmt.Errorf("need pkg syntax")
	}
	if pkg.TypesInfo != nil && pkg.Types == nil {
		return nil, fmt.Errorf("need pkg types")
	}

	p := &Parser{pkg: pkg, generated: make(map[*token.File]bool)}
	for _, file := range pkg.Syntax {
		if IsGenerated(file) {
			p.generated[pkg.Fset.File(file.Pos())] = true
		}
	}
	return p, nil
}

// hasTypes reports whether the package is type-checked.
func (p *Parser) hasTypes() bool { return p.pkg.TypesInfo != nil }

// ParseTargets collects the struct types deriving any opaque trait in
// declaration order. Types which fail to parse are reported in the joined
// error and the others are still returned.
func (p *Parser) ParseTargets() ([]*Target, error) {
	var targets []*Target
	var errs []error

	for _, file := range p.pkg.Syntax {
		if IsGenerated(file) {
			continue
		}
		imports := codefmt.FileImportsOf(p.pkg, file)

		for _, d := range file.Decls {
			gen, ok := d.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				target, err := p.parseTarget(imports, gen, spec.(*ast.TypeSpec))
				if err != nil {
					errs = append(errs, err)
				}
				if target != nil {
					targets = append(targets, target)
				}
			}
		}
	}
	return targets, errors.Join(errs...)
}

// parseTarget returns nil without an error if the type derives no opaque
// trait.
func (p *Parser) parseTarget(imports codefmt.FileImports, gen *ast.GenDecl, spec *ast.TypeSpec) (*Target, error) {
	decl, declErr := input.NewDecl(p.pkg.Fset, imports, gen, spec)

	traits, paths, err := p.parseDerive(decl.Metas)
	if traits.Empty() {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if declErr != nil {
		return nil, declErr
	}

	in, err := input.New(decl)
	if err != nil {
		return nil, err
	}

	target := &Target{Input: in, paths: paths}
	for _, v := range traits.Values() {
		target.Traits = append(target.Traits, v.(derive.Trait))
	}

	var errs []error
	for _, trait := range target.Traits {
		for _, req := range trait.Requires() {
			if !traits.Contains(req) {
				errs = append(errs, codefmt.Errorf(p, paths[trait], "%s requires %s", trait.Path(), req.Path()))
			}
		}
	}
	errs = append(errs, p.checkConflicts(target)...)
	if p.hasTypes() {
		errs = append(errs, p.checkTypes(target)...)
	}
	if len(errs) != 0 {
		return nil, errors.Join(errs...)
	}
	return target, nil
}

// parseDerive collects the opaque traits from //@derive(...) annotations.
// Paths of other tools are ignored.
func (p *Parser) parseDerive(metas []attr.Meta) (*linkedhashset.Set, map[derive.Trait]*attr.Path, error) {
	traits := linkedhashset.New()
	paths := make(map[derive.Trait]*attr.Path)
	var errs []error

	for _, m := range metas {
		list, ok := m.(*attr.List)
		if !ok || !list.Path.Is("derive") {
			continue
		}
		for _, path := range list.Paths() {
			trait, ok, err := derive.ParseTrait(path)
			if err != nil {
				errs = append(errs, codefmt.Wrap(p, path, err))
				continue
			}
			if !ok || traits.Contains(trait) {
				continue
			}
			traits.Add(trait)
			paths[trait] = path
		}
	}
	return traits, paths, errors.Join(errs...)
}

// checkConflicts reports the methods to generate which clash with fields or
// with methods declared by hand.
func (p *Parser) checkConflicts(t *Target) []error {
	fields := make(map[string]bool)
	for _, f := range t.Input.Decl.Fields {
		fields[f.Accessor().Name] = true
	}
	methods := p.declaredMethods(t.Input.Decl)

	var errs []error
	for _, trait := range t.Traits {
		for _, name := range trait.Methods() {
			switch {
			case fields[name]:
				errs = append(errs, codefmt.Errorf(p, t.paths[trait], "%s: %s already has field %s", trait.Path(), t.Name(), name))
			case methods[name]:
				errs = append(errs, codefmt.Errorf(p, t.paths[trait], "%s: %s already has method %s", trait.Path(), t.Name(), name))
			}
		}
	}
	return errs
}

// declaredMethods returns the names of the methods declared on the type out
// of generated files.
func (p *Parser) declaredMethods(decl *input.Decl) map[string]bool {
	methods := make(map[string]bool)
	for _, file := range p.pkg.Syntax {
		if p.generated[p.pkg.Fset.File(file.Pos())] {
			continue
		}
		for _, d := range file.Decls {
			fn, ok := d.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
				continue
			}
			if receiverName(fn.Recv.List[0].Type) == decl.Name() {
				methods[fn.Name.Name] = true
			}
		}
	}
	return methods
}

// receiverName returns the type name of a receiver such as "T", "*T" or
// "*T[K, V]".
func receiverName(expr ast.Expr) string {
	switch x := ast.Unparen(expr).(type) {
	case *ast.Ident:
		return x.Name
	case *ast.StarExpr:
		return receiverName(x.X)
	case *ast.IndexExpr:
		return receiverName(x.X)
	case *ast.IndexListExpr:
		return receiverName(x.X)
	}
	return ""
}
