package derive

import (
	"fmt"
	"go/ast"

	"github.com/sublee/opaque/internal/codefmt"
	"github.com/sublee/opaque/internal/opaque/input"
)

// Unsized traits hand out *T sharing the storage of *I. The conversion is a
// pointer cast, so the type must declare repr(C) or repr(transparent) and
// its fields other than the inner field must occupy no memory. The latter is
// not checked.

// Unsized generates opaque.Unsized:
//
//	func (*T) TryFromInnerRef(inner *I) (*T, E)
//	func (*T) FromInnerRefUnchecked(inner *I) *T
//	func (t *T) AsInnerRef() *I
//
// The validator takes and returns *I.
func Unsized(w *codefmt.Writer, in *input.Input) (*Impl, error) {
	if err := in.EnsureUnsizedRepr(); err != nil {
		return nil, err
	}

	b := newBuilder(w, TraitUnsized, in)
	name := in.Name()

	return &Impl{
		Trait:     TraitUnsized,
		Input:     in,
		Assertion: b.assertion(b.innerType),
		Methods: []Method{
			b.tryFromRef("TryFromInnerRef", []string{
				fmt.Sprintf("TryFromInnerRef reinterprets the inner value as *%s. %s", name, b.validatorDoc()),
			}),
			b.fromRef("FromInnerRefUnchecked", []string{
				fmt.Sprintf("FromInnerRefUnchecked reinterprets the inner value as *%s without", name),
				"validation. The caller must guarantee that the value is valid.",
			}),
			b.method(
				[]string{"AsInnerRef returns a pointer to the inner value. It must not be used to", "modify the value."},
				"AsInnerRef",
				b.receiver(true, true),
				nil,
				results(b.ptrInnerType()),
				ret(addr(b.field())),
			),
		},
	}, nil
}

// UnsizedInfallible generates opaque.UnsizedInfallible:
//
//	func (*T) FromInnerRef(inner *I) *T
func UnsizedInfallible(w *codefmt.Writer, in *input.Input) (*Impl, error) {
	if err := checkInfallible(TraitUnsizedInfallible, in); err != nil {
		return nil, err
	}
	if err := in.EnsureUnsizedRepr(); err != nil {
		return nil, err
	}

	b := newBuilder(w, TraitUnsizedInfallible, in)
	return &Impl{
		Trait:     TraitUnsizedInfallible,
		Input:     in,
		Assertion: b.assertion(b.innerType),
		Methods: []Method{
			b.fromRef("FromInnerRef", []string{
				fmt.Sprintf("FromInnerRef reinterprets the inner value as *%s.", in.Name()),
			}),
		},
	}, nil
}

// UnsizedMut generates opaque.UnsizedMut:
//
//	func (*T) TryFromInnerRefMut(inner *I) (*T, E)
//	func (*T) FromInnerRefUncheckedMut(inner *I) *T
//	func (t *T) AsInnerRefMut() *I
func UnsizedMut(w *codefmt.Writer, in *input.Input) (*Impl, error) {
	if err := in.EnsureUnsizedRepr(); err != nil {
		return nil, err
	}

	b := newBuilder(w, TraitUnsizedMut, in)
	name := in.Name()

	return &Impl{
		Trait:     TraitUnsizedMut,
		Input:     in,
		Assertion: b.assertion(b.innerType),
		Methods: []Method{
			b.tryFromRef("TryFromInnerRefMut", []string{
				fmt.Sprintf("TryFromInnerRefMut reinterprets the inner value as *%s which may", name),
				"modify the value. " + b.validatorDoc(),
			}),
			b.fromRef("FromInnerRefUncheckedMut", []string{
				fmt.Sprintf("FromInnerRefUncheckedMut reinterprets the inner value as *%s which", name),
				"may modify the value, without validation. The caller must guarantee",
				"that the value is valid.",
			}),
			b.method(
				[]string{
					"AsInnerRefMut returns a pointer to the inner value for modification.",
					"Modifying the value through the pointer bypasses the validator.",
				},
				"AsInnerRefMut",
				b.receiver(true, true),
				nil,
				results(b.ptrInnerType()),
				ret(addr(b.field())),
			),
		},
	}, nil
}

// UnsizedInfallibleMut generates opaque.UnsizedInfallibleMut:
//
//	func (*T) FromInnerRefMut(inner *I) *T
func UnsizedInfallibleMut(w *codefmt.Writer, in *input.Input) (*Impl, error) {
	if err := checkInfallible(TraitUnsizedInfallibleMut, in); err != nil {
		return nil, err
	}
	if err := in.EnsureUnsizedRepr(); err != nil {
		return nil, err
	}

	b := newBuilder(w, TraitUnsizedInfallibleMut, in)
	return &Impl{
		Trait:     TraitUnsizedInfallibleMut,
		Input:     in,
		Assertion: b.assertion(b.innerType),
		Methods: []Method{
			b.fromRef("FromInnerRefMut", []string{
				fmt.Sprintf("FromInnerRefMut reinterprets the inner value as *%s which may", in.Name()),
				"modify the value.",
			}),
		},
	}, nil
}

// tryFromRef builds a method validating *I and then casting it to *T.
func (b *builder) tryFromRef(name string, doc []string) Method {
	stmts, validated := b.validatedInner(ast.NewIdent("nil"))
	body := append(stmts, ret(b.pointerCast(validated), ast.NewIdent("nil")))
	return b.method(
		doc,
		name,
		b.receiver(false, true),
		b.innerParam(b.ptrInnerType()),
		results(b.ptrTypeExpr(), b.errType),
		body...,
	)
}

// fromRef builds a method casting *I to *T without validation.
func (b *builder) fromRef(name string, doc []string) Method {
	return b.method(
		doc,
		name,
		b.receiver(false, true),
		b.innerParam(b.ptrInnerType()),
		results(b.ptrTypeExpr()),
		ret(b.pointerCast(ast.NewIdent(b.inner))),
	)
}
