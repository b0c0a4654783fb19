// Package derive generates the methods of the conversion traits for opaque
// typedefs.
//
// Each generator consumes an [input.Input] and produces an [Impl]: the method
// declarations as Go syntax trees, their doc comments and a compile-time
// assertion. Generators never print code by themselves. [Impl.WriteCode]
// writes the result to a [codefmt.Writer].
//
// Every generator checks its preconditions before building anything. When a
// precondition fails, the generator returns a positioned error and the writer
// is left untouched.
package derive

import (
	"errors"
	"fmt"
	"go/ast"

	"github.com/sublee/opaque/internal/codefmt"
	"github.com/sublee/opaque/internal/opaque/input"
)

// Infallible traits fix the error type to opaque.Never, so neither a
// validator nor an error type can be declared with them.
var (
	ErrInfallibleValidator = errors.New("infallible trait cannot be derived with a validator")
	ErrInfallibleErrorType = errors.New("infallible trait cannot be derived with an error type")
)

// Impl is the generated implementation of a trait for a type.
type Impl struct {
	Trait Trait
	Input *input.Input

	// Assertion is a variable declaration which fails to compile if the type
	// does not implement the trait interface. It is nil for generic types
	// because an assertion needs concrete type arguments.
	Assertion *ast.GenDecl

	Methods []Method
}

// Method is a generated method.
type Method struct {
	// Doc is the lines of the doc comment without "//". It is empty if the
	// type hides the docs of generated methods.
	Doc  []string
	Decl *ast.FuncDecl
}

// Name returns the name of the method.
func (m Method) Name() string { return m.Decl.Name.Name }

// Generate generates the implementation of the trait. w resolves imports in
// generated code and provides the namespace reserving package-level names.
func Generate(w *codefmt.Writer, trait Trait, in *input.Input) (*Impl, error) {
	switch trait {
	case TraitSized:
		return Sized(w, in)
	case TraitSizedInfallible:
		return SizedInfallible(w, in)
	case TraitSizedMut:
		return SizedMut(w, in)
	case TraitUnsized:
		return Unsized(w, in)
	case TraitUnsizedInfallible:
		return UnsizedInfallible(w, in)
	case TraitUnsizedMut:
		return UnsizedMut(w, in)
	case TraitUnsizedInfallibleMut:
		return UnsizedInfallibleMut(w, in)
	}
	panic(fmt.Sprintf("unknown trait: %d", int(trait)))
}

// WriteCode writes the assertion and the methods.
func (impl *Impl) WriteCode(w *codefmt.Writer) error {
	if impl.Assertion != nil {
		if err := w.Node(impl.Assertion); err != nil {
			return err
		}
		fmt.Fprint(w, "\n\n")
	}

	for _, m := range impl.Methods {
		for _, line := range m.Doc {
			if line == "" {
				fmt.Fprint(w, "//\n")
				continue
			}
			fmt.Fprintf(w, "// %s\n", line)
		}
		if err := w.Node(m.Decl); err != nil {
			return fmt.Errorf("write %s.%s: %w", impl.Input.Name(), m.Name(), err)
		}
		fmt.Fprint(w, "\n\n")
	}
	return nil
}

// checkInfallible fails if a validator or an error type is declared.
func checkInfallible(trait Trait, in *input.Input) error {
	pkger := codefmt.Fset(in.Decl.Fset)
	if in.Validation.HasValidator() {
		return codefmt.Wrap(pkger, in.Validation.ValidatorLit, fmt.Errorf("%s: %w", trait.Path(), ErrInfallibleValidator))
	}
	if in.HasErrorType() {
		return codefmt.Wrap(pkger, in.Validation.ErrorTypeLit, fmt.Errorf("%s: %w", trait.Path(), ErrInfallibleErrorType))
	}
	return nil
}
