package derive

import (
	"fmt"
	"go/ast"

	"github.com/sublee/opaque/internal/codefmt"
	"github.com/sublee/opaque/internal/opaque/input"
)

// Sized generates opaque.Sized:
//
//	func (T) TryFromInner(inner I) (T, E)
//	func (T) FromInnerUnchecked(inner I) T
//	func (t T) IntoInner() I
//	func (t T) AsInner() I
func Sized(w *codefmt.Writer, in *input.Input) (*Impl, error) {
	b := newBuilder(w, TraitSized, in)
	name := in.Name()

	stmts, validated := b.validatedInner(&ast.CompositeLit{Type: b.typeExpr()})
	tryBody := append(stmts, ret(b.constructor(validated), ast.NewIdent("nil")))

	return &Impl{
		Trait:     TraitSized,
		Input:     in,
		Assertion: b.assertion(b.innerType),
		Methods: []Method{
			b.method(
				[]string{fmt.Sprintf("TryFromInner converts the inner value to %s. %s", name, b.validatorDoc())},
				"TryFromInner",
				b.receiver(false, false),
				b.innerParam(b.innerType),
				results(b.typeExpr(), b.errType),
				tryBody...,
			),
			b.method(
				[]string{
					fmt.Sprintf("FromInnerUnchecked converts the inner value to %s without", name),
					"validation. The caller must guarantee that the value is valid.",
				},
				"FromInnerUnchecked",
				b.receiver(false, false),
				b.innerParam(b.innerType),
				results(b.typeExpr()),
				ret(b.constructor(ast.NewIdent(b.inner))),
			),
			b.method(
				[]string{"IntoInner returns the inner value."},
				"IntoInner",
				b.receiver(true, false),
				nil,
				results(b.innerType),
				ret(b.field()),
			),
			b.method(
				[]string{"AsInner returns a copy of the inner value."},
				"AsInner",
				b.receiver(true, false),
				nil,
				results(b.innerType),
				ret(b.field()),
			),
		},
	}, nil
}

// SizedInfallible generates opaque.SizedInfallible:
//
//	func (T) FromInner(inner I) T
//
// It fails if a validator or an error type is declared.
func SizedInfallible(w *codefmt.Writer, in *input.Input) (*Impl, error) {
	if err := checkInfallible(TraitSizedInfallible, in); err != nil {
		return nil, err
	}

	b := newBuilder(w, TraitSizedInfallible, in)
	return &Impl{
		Trait:     TraitSizedInfallible,
		Input:     in,
		Assertion: b.assertion(b.innerType),
		Methods: []Method{
			b.method(
				[]string{fmt.Sprintf("FromInner converts the inner value to %s.", in.Name())},
				"FromInner",
				b.receiver(false, false),
				b.innerParam(b.innerType),
				results(b.typeExpr()),
				ret(b.constructor(ast.NewIdent(b.inner))),
			),
		},
	}, nil
}

// SizedMut generates opaque.SizedMut:
//
//	func (t *T) AsInnerMut() *I
func SizedMut(w *codefmt.Writer, in *input.Input) (*Impl, error) {
	b := newBuilder(w, TraitSizedMut, in)
	return &Impl{
		Trait:     TraitSizedMut,
		Input:     in,
		Assertion: b.assertion(b.innerType),
		Methods: []Method{
			b.method(
				[]string{
					"AsInnerMut returns a pointer to the inner value. Modifying the value",
					"through the pointer bypasses the validator.",
				},
				"AsInnerMut",
				b.receiver(true, true),
				nil,
				results(b.ptrInnerType()),
				ret(addr(b.field())),
			),
		},
	}, nil
}
