// Package opaqueinternal generates the conversion methods of opaque typedefs
// in a package.
package opaqueinternal

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"io"
	"slices"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"golang.org/x/tools/go/packages"

	"github.com/sublee/opaque/internal/codefmt"
	"github.com/sublee/opaque/internal/logger"
	"github.com/sublee/opaque/internal/opaque/derive"
	"github.com/sublee/opaque/internal/opaque/parse"
)

// Opaque generates the conversion methods of opaque typedefs in the target
// package. Call [Opaque.Build] and then [Opaque.Generate] to get the
// generated code. All potential errors are returned by [Opaque.Build]. Once
// [Opaque.Build] succeeds, [Opaque.Generate] never fails.
type Opaque struct {
	p   *parse.Parser
	ns  codefmt.NS
	buf *bytes.Buffer
	w   *codefmt.Writer
	log logger.Logger

	// impls maps type names to their implementations in declaration order.
	impls *linkedhashmap.Map
}

// New creates a new [Opaque] for the given package. The package must have
// its Syntax. Without TypesInfo, annotations are checked only syntactically.
func New(pkg *packages.Package) (*Opaque, error) {
	parser, err := parse.New(pkg)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	o := &Opaque{
		p:     parser,
		ns:    codefmt.NewNS(nil),
		buf:   &buf,
		w:     codefmt.NewWriter(&buf, pkg),
		log:   logger.NewLogger(logger.TestConfig()),
		impls: linkedhashmap.New(),
	}
	if pkg.Types != nil {
		o.ns = codefmt.NewNS(pkg.Types.Scope())
	}
	return o, nil
}

// Build parses opaque typedefs and generates their implementations. All
// potential errors are returned by this method. It must be called before
// [Opaque.Generate].
func (o *Opaque) Build() error {
	targets, errs := o.p.ParseTargets()

	for _, t := range targets {
		var impls []*derive.Impl
		for _, trait := range t.Traits {
			impl, err := derive.Generate(o.w.WithNS(o.ns), trait, t.Input)
			if err != nil {
				errs = errors.Join(errs, err)
				continue
			}
			impls = append(impls, impl)
		}
		o.impls.Put(t.Name(), impls)
		o.log.Debug("Derived traits", "type", t.Name(), "traits", fmt.Sprint(t.Traits))
	}
	return errs
}

// NumTypes returns the number of opaque typedefs built.
func (o *Opaque) NumTypes() int { return o.impls.Size() }

// Impls returns the implementations in declaration order.
func (o *Opaque) Impls() []*derive.Impl {
	var impls []*derive.Impl
	for _, v := range o.impls.Values() {
		impls = append(impls, v.([]*derive.Impl)...)
	}
	return impls
}

// Generate generates code for the package. It returns nil if the package has
// no opaque typedefs. It must be called after [Opaque.Build] succeeds.
func (o *Opaque) Generate() []byte {
	if o.impls.Empty() {
		return nil
	}

	it := o.impls.Iterator()
	for it.Next() {
		fmt.Fprintf(o.buf, "// opaque: %s\n\n", it.Key())
		for _, impl := range it.Value().([]*derive.Impl) {
			if err := impl.WriteCode(o.w); err != nil {
				// Generated syntax is always printable.
				panic(err)
			}
		}
	}
	return o.frameCode()
}

func (o *Opaque) frameCode() []byte {
	// Prepend header code
	versionSuffix := ""
	if Version != "" {
		versionSuffix = "@" + Version
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by %s%s. DO NOT EDIT.\n\n", parse.Generator, versionSuffix)
	fmt.Fprintf(&buf, "package %s\n", o.p.Pkg().Name)

	imports := o.w.Imports()
	if len(imports) != 0 {
		names := make([]string, 0, len(imports))
		for name := range imports {
			names = append(names, name)
		}
		slices.Sort(names)

		fmt.Fprintf(&buf, "import (\n")
		for _, name := range names {
			imp := imports[name]
			if imp.HasAlias {
				fmt.Fprintf(&buf, "%s %q\n", name, imp.Path())
			} else {
				fmt.Fprintf(&buf, "%q\n", imp.Path())
			}
		}
		fmt.Fprintf(&buf, ")\n")
	}

	_, _ = io.Copy(&buf, o.buf)
	code := buf.Bytes()

	// Apply gofmt if succeeded
	if fmtCode, err := format.Source(code); err == nil {
		code = fmtCode
	}
	return code
}
