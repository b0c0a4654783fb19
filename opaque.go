// Package opaque provides the runtime vocabulary for opaque typedef code
// generation.
//
// An opaque typedef is a struct type wrapping exactly one meaningful value,
// the inner value, so that the wrapper is a distinct type with its own
// invariants. The opaque command generates the conversion methods between a
// wrapper and its inner value from annotations in comments:
//
//	// source:
//	//
//	//@derive(opaque::Sized, opaque::SizedMut)
//	//@opaque_typedef(validate(validator = "validateASCII", error = "*AsciiError"))
//	type AsciiString struct {
//		s string
//	}
//
//	// generated: (simplified)
//	func (AsciiString) TryFromInner(inner string) (AsciiString, *AsciiError) {
//		validated, err := validateASCII(inner)
//		if err != nil {
//			return AsciiString{}, err
//		}
//		return AsciiString{s: validated}, nil
//	}
//
// Run the command in the package directory to generate opaque_gen.go:
//
//	go run github.com/sublee/opaque/cmd/opaque
//
// # Traits
//
// There are seven traits, each one an interface in this package. Sized traits
// treat the wrapper as a value: [Sized], [SizedInfallible] and [SizedMut].
// Unsized traits only ever hand out pointers to the wrapper, which share the
// storage of the inner value: [Unsized], [UnsizedInfallible], [UnsizedMut]
// and [UnsizedInfallibleMut].
//
// Unsized traits reinterpret a pointer to the inner value as a pointer to the
// wrapper. The wrapper must declare //@repr(transparent) or //@repr(C) and
// must not have any other field carrying data. A zero-size auxiliary field
// such as struct{} must not be the last field, because a trailing zero-size
// field pads the wrapper beyond the size of the inner value.
//
// # Annotations
//
// Annotations are comment lines starting with "//@" or "// @" in the doc
// comment of a type or a field:
//
//	//@derive(opaque::Sized, ...)       type: traits to generate
//	//@opaque_typedef(inner)           field: the inner field of a multi-field struct
//	//@opaque_typedef(hide_base_impl_docs)
//	//@opaque_typedef(validate(validator = "<expr>", error = "<type>"))
//	//@repr(transparent) or //@repr(C) type: required by unsized traits
//
// When no error type is declared, the error type is [Never].
//
// Validators and error types are Go expressions resolved in the scope of the
// file declaring the type. The generated file imports what they refer to,
// but an import used only inside an annotation is still unused to the
// compiler, so the file must use it in code as well:
//
//	import c "example.com/check"
//
//	var _ = c.Lower
//
//	//@opaque_typedef(validate(validator = "c.Lower", error = "error"))
package opaque

import "reflect"

// Never is an error which never occurs. It has an unexported method so that
// other packages cannot declare an implementation, which leaves nil as its
// only value.
type Never interface {
	error
	never()
}

// Sized is implemented by a wrapper type T holding an inner value of type I.
// E is the error type of the validator.
type Sized[T, I any, E error] interface {
	// TryFromInner creates a T from the inner value. It fails if the
	// validator rejects the value.
	TryFromInner(inner I) (T, E)

	// FromInnerUnchecked creates a T without validation. The caller must
	// guarantee that the inner value is valid.
	FromInnerUnchecked(inner I) T

	// IntoInner returns the inner value.
	IntoInner() I

	// AsInner returns the inner value without giving up the wrapper. The
	// result is a copy of the inner field; use [SizedMut.AsInnerMut] to
	// refer to the field itself.
	AsInner() I
}

// SizedInfallible is a [Sized] without validation.
type SizedInfallible[T, I any] interface {
	Sized[T, I, Never]

	// FromInner creates a T from the inner value.
	FromInner(inner I) T
}

// SizedMut is a [Sized] whose inner value can be modified in place.
type SizedMut[T, I any, E error] interface {
	Sized[T, I, E]

	// AsInnerMut returns a pointer to the inner field.
	AsInnerMut() *I
}

// Unsized is implemented by *T where T shares its memory layout with an
// inner value of type I.
type Unsized[T, I any, E error] interface {
	// TryFromInnerRef reinterprets the inner value as a *T. It fails if the
	// validator rejects the value.
	TryFromInnerRef(inner *I) (*T, E)

	// FromInnerRefUnchecked reinterprets the inner value as a *T without
	// validation.
	FromInnerRefUnchecked(inner *I) *T

	// AsInnerRef returns a pointer to the inner field. It should not be used
	// to modify the value.
	AsInnerRef() *I
}

// UnsizedInfallible is an [Unsized] without validation.
type UnsizedInfallible[T, I any] interface {
	Unsized[T, I, Never]

	// FromInnerRef reinterprets the inner value as a *T.
	FromInnerRef(inner *I) *T
}

// UnsizedMut is an [Unsized] whose inner value can be modified through the
// wrapper.
type UnsizedMut[T, I any, E error] interface {
	Unsized[T, I, E]

	// TryFromInnerRefMut is like TryFromInnerRef but the result may be used
	// to modify the inner value.
	TryFromInnerRefMut(inner *I) (*T, E)

	// FromInnerRefUncheckedMut is like FromInnerRefUnchecked but the result
	// may be used to modify the inner value.
	FromInnerRefUncheckedMut(inner *I) *T

	// AsInnerRefMut returns a pointer to the inner field for modification.
	AsInnerRefMut() *I
}

// UnsizedInfallibleMut is an [UnsizedMut] without validation.
type UnsizedInfallibleMut[T, I any] interface {
	UnsizedMut[T, I, Never]
	UnsizedInfallible[T, I]

	// FromInnerRefMut reinterprets the inner value as a modifiable *T.
	FromInnerRefMut(inner *I) *T
}

// Must returns v if err is nil. Otherwise it panics with err. It accepts
// typed errors, so a nil *MyError is treated as no error:
//
//	s := opaque.Must(AsciiString{}.TryFromInner("hello"))
func Must[T any, E error](v T, err E) T {
	if !isNil(err) {
		panic(err)
	}
	return v
}

// isNil reports whether err is the nil of its type. Error types may be
// uncomparable, e.g., a slice of errors, so it does not use ==.
func isNil[E error](err E) bool {
	rv := reflect.ValueOf(&err).Elem()
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	}
	return rv.IsZero()
}
