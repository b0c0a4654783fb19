// Package input builds the descriptor of an opaque typedef which every code
// generator consumes.
package input

import (
	"errors"
	"fmt"

	"github.com/sublee/opaque/internal/codefmt"
	"github.com/sublee/opaque/internal/opaque/attr"
)

// Fatal configuration errors. Generation for the type stops when one of them
// occurs.
var (
	ErrNoFields        = errors.New("no fields found")
	ErrNoPrimary       = errors.New("there are multiple fields but none are marked as inner")
	ErrMultiplePrimary = errors.New("multiple fields are marked as inner")
	ErrBlankPrimary    = errors.New("inner field cannot be blank")
	ErrUnsizedRepr     = errors.New("repr(C) or repr(transparent) is required for unsized opaque typedefs")
)

// Input describes an opaque typedef.
type Input struct {
	Decl *Decl

	// Primary is the index of the inner field in Decl.Fields.
	Primary int

	Validation attr.Validation

	// HideDocs indicates that generated methods have no doc comments.
	HideDocs bool
}

// New builds an [Input] from the declaration. It fails if the inner field
// cannot be determined or the validation annotation cannot be parsed.
func New(decl *Decl) (*Input, error) {
	pkger := codefmt.Fset(decl.Fset)

	primary, err := findPrimary(decl)
	if err != nil {
		return nil, err
	}
	if decl.Fields[primary].IsBlank() {
		return nil, codefmt.Wrap(pkger, decl.Fields[primary], ErrBlankPrimary)
	}

	validation, err := attr.ExtractValidation(decl.Fset, decl.Metas)
	if err != nil {
		return nil, err
	}

	hideDocs := false
	for _, m := range decl.Metas {
		if attr.HasNestedFlag(m, attr.Namespace, "hide_base_impl_docs") {
			hideDocs = true
			break
		}
	}

	return &Input{
		Decl:       decl,
		Primary:    primary,
		Validation: validation,
		HideDocs:   hideDocs,
	}, nil
}

// findPrimary determines the inner field. A single field is always the inner
// field. Among multiple fields, exactly one must be marked with
// opaque_typedef(inner).
func findPrimary(decl *Decl) (int, error) {
	pkger := codefmt.Fset(decl.Fset)

	switch len(decl.Fields) {
	case 0:
		return 0, codefmt.Wrap(pkger, decl, ErrNoFields)
	case 1:
		return 0, nil
	}

	var marked []Field
	for _, f := range decl.Fields {
		for _, m := range f.Metas {
			if attr.HasNestedFlag(m, attr.Namespace, "inner") {
				marked = append(marked, f)
				break
			}
		}
	}

	switch len(marked) {
	case 0:
		return 0, codefmt.Wrap(pkger, decl, ErrNoPrimary)
	case 1:
		return marked[0].Index, nil
	default:
		err := fmt.Errorf("%w: %s and %s", ErrMultiplePrimary, marked[0], marked[1])
		return 0, codefmt.Wrap(pkger, marked[1], err)
	}
}

// Name returns the name of the type.
func (in *Input) Name() string { return in.Decl.Name() }

// PrimaryField returns the inner field.
func (in *Input) PrimaryField() Field { return in.Decl.Fields[in.Primary] }

// IsPrimary reports whether the field is the inner field.
func (in *Input) IsPrimary(f Field) bool { return f.Index == in.Primary }

// HasErrorType reports whether an error type is declared. If not, the error
// type is opaque.Never.
func (in *Input) HasErrorType() bool { return in.Validation.ErrorType != nil }

// EnsureUnsizedRepr fails if the type has no repr(C) or repr(transparent)
// annotation. Unsized traits reinterpret pointers between the inner type and
// the wrapper type, which requires identical memory layouts.
func (in *Input) EnsureUnsizedRepr() error {
	for _, m := range in.Decl.Metas {
		if attr.HasStructuralRepr(m) {
			return nil
		}
	}
	return codefmt.Wrap(codefmt.Fset(in.Decl.Fset), in.Decl, ErrUnsizedRepr)
}
