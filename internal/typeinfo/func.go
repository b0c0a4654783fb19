package typeinfo

import (
	"fmt"
	"go/types"
)

// Validator describes the signature of a validator function which takes an
// inner value and returns the validated inner value with an error:
//
//	func(X) (Y, E)
type Validator interface {
	Signature() *types.Signature

	X() Type
	Y() Type
	Err() Type
}

// validator implements the [Validator] interface.
type validator struct {
	sig *types.Signature
	x   Type
	y   Type
	err Type
}

func (v validator) Signature() *types.Signature { return v.sig }
func (v validator) X() Type                     { return v.x }
func (v validator) Y() Type                     { return v.y }
func (v validator) Err() Type                   { return v.err }

// Shape is a type constraint for validator shapes. It is used in
// [ValidatorOf] to specify which kind of function signature is expected.
//
//	Shape   | Signature
//	--------+-------------------
//	ByValue | func(I) (I, E)
//	ByRef   | func(*I) (*I, E)
type Shape interface {
	ByValue | ByRef
	byRef() bool
}

type (
	// ByValue is the shape of validators of sized opaque typedefs.
	ByValue struct{}

	// ByRef is the shape of validators of unsized opaque typedefs.
	ByRef struct{}
)

func (ByValue) byRef() bool { return false }
func (ByRef) byRef() bool   { return true }

// ValidatorOf inspects the given function type and returns a new [Validator].
// inner is the type of the inner value and errType is the declared error type.
// It returns an error if the signature does not match with the given shape.
// qf qualifies type names in error messages. It may be nil.
func ValidatorOf[S Shape](typ types.Type, inner, errType types.Type, qf types.Qualifier) (Validator, error) {
	sig, ok := typ.Underlying().(*types.Signature)
	if !ok {
		return nil, fmt.Errorf("validator is not a function")
	}

	want := inner
	var shape S
	if shape.byRef() {
		want = types.NewPointer(inner)
	}

	if sig.Params().Len() != 1 || sig.Results().Len() != 2 || sig.Variadic() {
		return nil, fmt.Errorf("validator must have 1 parameter and 2 results")
	}

	v := validator{
		sig: sig,
		x:   TypeOf(sig.Params().At(0).Type()),
		y:   TypeOf(sig.Results().At(0).Type()),
		err: TypeOf(sig.Results().At(1).Type()),
	}

	if !types.AssignableTo(want, v.x.T) {
		return nil, fmt.Errorf("validator cannot take %s", types.TypeString(want, qf))
	}
	if !types.AssignableTo(v.y.T, want) {
		return nil, fmt.Errorf("validator must return %s but returns %s", types.TypeString(want, qf), types.TypeString(v.y.T, qf))
	}
	if !types.AssignableTo(v.err.T, errType) {
		return nil, fmt.Errorf("validator returns %s which is not assignable to %s", types.TypeString(v.err.T, qf), types.TypeString(errType, qf))
	}
	return v, nil
}
