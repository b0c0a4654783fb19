package parse_test

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"github.com/sublee/opaque/internal/opaque/derive"
	"github.com/sublee/opaque/internal/opaque/parse"
	"github.com/sublee/opaque/internal/typeinfo"
)

const opaqueSrc = `package opaque

type Never interface {
	error
	never()
}
`

type importerFunc func(path string) (*types.Package, error)

func (f importerFunc) Import(path string) (*types.Package, error) { return f(path) }

// parseFiles parses the files of package p. The first file is named p.go and
// the others are named p1.go, p2.go and so on.
func parseFiles(t *testing.T, fset *token.FileSet, srcs ...string) []*ast.File {
	t.Helper()

	var files []*ast.File
	for i, src := range srcs {
		name := "p.go"
		if i != 0 {
			name = "p" + string(rune('0'+i)) + ".go"
		}
		file, err := parser.ParseFile(fset, name, src, parser.ParseComments)
		require.NoError(t, err)
		files = append(files, file)
	}
	return files
}

// load type-checks package p. The package can import a minimal
// github.com/sublee/opaque.
func load(t *testing.T, srcs ...string) *packages.Package {
	t.Helper()

	fset := token.NewFileSet()
	opaqueFile, err := parser.ParseFile(fset, "opaque.go", opaqueSrc, 0)
	require.NoError(t, err)
	opaquePkg, err := (&types.Config{}).Check(derive.OpaquePkgPath, fset, []*ast.File{opaqueFile}, nil)
	require.NoError(t, err)

	files := parseFiles(t, fset, srcs...)
	conf := types.Config{Importer: importerFunc(func(path string) (*types.Package, error) {
		if path == derive.OpaquePkgPath {
			return opaquePkg, nil
		}
		return importer.Default().Import(path)
	})}
	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	pkg, err := conf.Check("example.com/p", fset, files, info)
	require.NoError(t, err)

	return &packages.Package{
		Name:      "p",
		PkgPath:   "example.com/p",
		Fset:      fset,
		Syntax:    files,
		Types:     pkg,
		TypesInfo: info,
	}
}

// loadSyntax parses package p without type information.
func loadSyntax(t *testing.T, srcs ...string) *packages.Package {
	t.Helper()
	fset := token.NewFileSet()
	return &packages.Package{
		Name:    "p",
		PkgPath: "example.com/p",
		Fset:    fset,
		Syntax:  parseFiles(t, fset, srcs...),
	}
}

func parseTargets(t *testing.T, pkg *packages.Package) ([]*parse.Target, error) {
	t.Helper()
	p, err := parse.New(pkg)
	require.NoError(t, err)
	return p.ParseTargets()
}

func TestNew(t *testing.T) {
	_, err := parse.New(&packages.Package{Fset: token.NewFileSet()})
	assert.EqualError(t, err, "need pkg name")

	_, err = parse.New(&packages.Package{Name: "p"})
	assert.EqualError(t, err, "need pkg fset")

	_, err = parse.New(&packages.Package{Name: "p", Fset: token.NewFileSet()})
	assert.EqualError(t, err, "need pkg syntax")
}

func TestParseTargets(t *testing.T) {
	targets, err := parseTargets(t, load(t, `package p

//@derive(opaque::Sized, Debug, opaque::SizedMut, opaque::Sized)
type Meters struct{ float64 }

type Plain struct{ s string }

// @derive(Clone)
type Foreign struct{ s string }

//@derive(opaque::Sized)
//@derive(opaque::SizedInfallible)
type Name struct{ s string }
`))
	require.NoError(t, err)
	require.Len(t, targets, 2)

	assert.Equal(t, "Meters", targets[0].Name())
	assert.Equal(t, []derive.Trait{derive.TraitSized, derive.TraitSizedMut}, targets[0].Traits)

	assert.Equal(t, "Name", targets[1].Name())
	assert.Equal(t, []derive.Trait{derive.TraitSized, derive.TraitSizedInfallible}, targets[1].Traits)
}

func TestUnknownTrait(t *testing.T) {
	_, err := parseTargets(t, load(t, `package p

//@derive(opaque::Sizd)
type Meters struct{ float64 }
`))
	require.ErrorIs(t, err, derive.ErrUnknownTrait)
	assert.EqualError(t, err, "p.go:3:11: unknown trait opaque::Sizd")
}

func TestMissingRequirement(t *testing.T) {
	_, err := parseTargets(t, load(t, `package p

//@derive(opaque::SizedMut)
type Meters struct{ float64 }
`))
	assert.EqualError(t, err, "p.go:3:11: opaque::SizedMut requires opaque::Sized")

	_, err = parseTargets(t, load(t, `package p

//@derive(opaque::Unsized, opaque::UnsizedInfallibleMut)
//@repr(transparent)
type Str struct{ s string }
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opaque::UnsizedInfallibleMut requires opaque::UnsizedMut")
	assert.Contains(t, err.Error(), "opaque::UnsizedInfallibleMut requires opaque::UnsizedInfallible")
}

func TestNotStruct(t *testing.T) {
	_, err := parseTargets(t, load(t, `package p

//@derive(opaque::Sized)
type Name string
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a struct type")

	targets, err := parseTargets(t, load(t, `package p

type Name string
`))
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestConflicts(t *testing.T) {
	_, err := parseTargets(t, load(t, `package p

//@derive(opaque::Sized, opaque::SizedMut)
type Meters struct{ float64 }

func (m *Meters) IntoInner() float64 { return m.float64 }
`))
	assert.EqualError(t, err, "p.go:3:11: opaque::Sized: Meters already has method IntoInner")

	_, err = parseTargets(t, load(t, `package p

//@derive(opaque::Sized)
type Weird struct {
	//@opaque_typedef(inner)
	s       string
	AsInner int
}
`))
	assert.EqualError(t, err, "p.go:3:11: opaque::Sized: Weird already has field AsInner")
}

func TestGeneratedFileIgnored(t *testing.T) {
	targets, err := parseTargets(t, load(t, `package p

//@derive(opaque::Sized)
type Meters struct{ float64 }
`, `// Code generated by github.com/sublee/opaque. DO NOT EDIT.

package p

func (m Meters) IntoInner() float64 { return m.float64 }

//@derive(opaque::Sized)
type Ignored struct{ s string }
`))
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "Meters", targets[0].Name())
}

func TestIsGenerated(t *testing.T) {
	files := parseFiles(t, token.NewFileSet(),
		"// Code generated by github.com/sublee/opaque. DO NOT EDIT.\n\npackage p\n",
		"//go:build !opaque\n\n// Code generated by github.com/sublee/opaque (devel). DO NOT EDIT.\n\npackage p\n",
		"// Code generated by stringer. DO NOT EDIT.\n\npackage p\n",
		"package p\n\n// Code generated by github.com/sublee/opaque. DO NOT EDIT.\n",
	)
	assert.True(t, parse.IsGenerated(files[0]))
	assert.True(t, parse.IsGenerated(files[1]))
	assert.False(t, parse.IsGenerated(files[2]))
	assert.False(t, parse.IsGenerated(files[3]))
}

func TestZeroKinds(t *testing.T) {
	targets, err := parseTargets(t, load(t, `package p

type (
	Tag   string
	Point struct{ X, Y int }
	Flags uint8
	Fn    func()
)

//@derive(opaque::Sized)
type Tagged struct {
	//@opaque_typedef(inner)
	b     []byte
	tag   Tag
	point Point
	flags Flags
	fn    Fn
	arr   [2]bool
}
`))
	require.NoError(t, err)
	require.Len(t, targets, 1)

	var kinds []typeinfo.ZeroKind
	for _, f := range targets[0].Input.Decl.Fields {
		kinds = append(kinds, f.Zero)
	}
	assert.Equal(t, []typeinfo.ZeroKind{
		typeinfo.ZeroNil,
		typeinfo.ZeroString,
		typeinfo.ZeroComposite,
		typeinfo.ZeroNumber,
		typeinfo.ZeroNil,
		typeinfo.ZeroComposite,
	}, kinds)
}

func TestZeroKindsWithoutTypes(t *testing.T) {
	targets, err := parseTargets(t, loadSyntax(t, `package p

//@derive(opaque::Sized)
type Tagged struct {
	//@opaque_typedef(inner)
	b   []byte
	tag Tag
}
`))
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, typeinfo.ZeroUnknown, targets[0].Input.Decl.Fields[1].Zero)
}

func TestValidator(t *testing.T) {
	targets, err := parseTargets(t, load(t, `package p

type AsciiError struct{ Pos int }

func (e *AsciiError) Error() string { return "not ascii" }

func validateASCII(s string) (string, *AsciiError) { return s, nil }

func validateRef(s *string) (*string, *AsciiError) { return s, nil }

//@derive(opaque::Sized)
//@opaque_typedef(validate(validator = "validateASCII", error = "*AsciiError"))
type AsciiString struct{ s string }

//@derive(opaque::Unsized)
//@opaque_typedef(validate(validator = "validateRef", error = "error"))
//@repr(transparent)
type AsciiStr struct{ s string }

//@derive(opaque::Sized)
//@opaque_typedef(validate(validator = "func(s string) (string, error) { return s, nil }", error = "error"))
type Lit struct{ s string }
`))
	require.NoError(t, err)
	assert.Len(t, targets, 3)
}

func TestValidatorErrors(t *testing.T) {
	for _, tt := range []struct {
		name string
		src  string
		want string
	}{{
		name: "WrongParam",
		src: `func validate(n int) (int, error) { return n, nil }

//@derive(opaque::Sized)
//@opaque_typedef(validate(validator = "validate", error = "error"))
type S struct{ s string }`,
		want: "validator cannot take string: validate is func(int) (int, error)",
	}, {
		name: "ByValueForUnsized",
		src: `func validate(s string) (string, error) { return s, nil }

//@derive(opaque::Unsized)
//@opaque_typedef(validate(validator = "validate", error = "error"))
//@repr(C)
type S struct{ s string }`,
		want: "validator cannot take *string",
	}, {
		name: "NeverError",
		src: `func validate(s string) (string, error) { return s, nil }

//@derive(opaque::Sized)
//@opaque_typedef(validate(validator = "validate"))
type S struct{ s string }`,
		want: "validator returns error which is not assignable to opaque.Never",
	}, {
		name: "Undefined",
		src: `//@derive(opaque::Sized)
//@opaque_typedef(validate(validator = "missing"))
type S struct{ s string }`,
		want: "invalid validator missing: undefined: missing",
	}, {
		name: "NotAFunction",
		src: `var validate = 42

//@derive(opaque::Sized)
//@opaque_typedef(validate(validator = "validate", error = "error"))
type S struct{ s string }`,
		want: "validator is not a function",
	}} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTargets(t, load(t, "package p\n\n"+tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestErrorTypeErrors(t *testing.T) {
	for _, tt := range []struct {
		name string
		src  string
		want string
	}{{
		name: "Undefined",
		src: `//@derive(opaque::Sized)
//@opaque_typedef(validate(error = "*Missing"))
type S struct{ s string }`,
		want: "invalid validation error type *Missing: undefined: Missing",
	}, {
		name: "NotAType",
		src: `func value() {}

//@derive(opaque::Sized)
//@opaque_typedef(validate(error = "value"))
type S struct{ s string }`,
		want: "validation error type value is not a type",
	}, {
		name: "NotAnError",
		src: `type E struct{}

//@derive(opaque::Sized)
//@opaque_typedef(validate(error = "*E"))
type S struct{ s string }`,
		want: "validation error type *E does not implement error",
	}, {
		name: "NotNilable",
		src: `type E struct{}

func (E) Error() string { return "" }

//@derive(opaque::Sized)
//@opaque_typedef(validate(error = "E"))
type S struct{ s string }`,
		want: "validation error type E must be nilable",
	}} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTargets(t, load(t, "package p\n\n"+tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestUncomparableErrorType(t *testing.T) {
	targets, err := parseTargets(t, load(t, `package p

type Errs []error

func (Errs) Error() string { return "" }

func validate(s string) (string, Errs) { return s, nil }

//@derive(opaque::Sized)
//@opaque_typedef(validate(validator = "validate", error = "Errs"))
type S struct{ s string }
`))
	require.NoError(t, err)
	require.Len(t, targets, 1)
}

func TestErrorTypePosition(t *testing.T) {
	_, err := parseTargets(t, load(t, `package p

//@derive(opaque::Sized)
//@opaque_typedef(validate(error = "int"))
type S struct{ s string }
`))
	assert.EqualError(t, err, `p.go:4:36: validation error type int does not implement error`)
}

func TestGenericSkipsValidation(t *testing.T) {
	// The validator of a generic type is checked when the generated code is
	// compiled.
	targets, err := parseTargets(t, load(t, `package p

func nonEmpty[T any](s []T) ([]T, error) { return s, nil }

//@derive(opaque::Sized)
//@opaque_typedef(validate(validator = "nonEmpty[T]", error = "error"))
type NonEmpty[T any] struct{ s []T }
`))
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, typeinfo.ZeroNil, targets[0].Input.Decl.Fields[0].Zero)
}

func TestInfallibleLeftToGenerator(t *testing.T) {
	targets, err := parseTargets(t, load(t, `package p

//@derive(opaque::Sized, opaque::SizedInfallible)
//@opaque_typedef(validate(error = "int"))
type S struct{ s string }
`))
	require.NoError(t, err)
	require.Len(t, targets, 1)
}
