package typeinfo

import (
	"fmt"
	"go/types"
)

// Type describes a type information. It holds information of [types.Type] that
// is necessary to generate conversions for an opaque typedef.
type Type struct {
	T types.Type

	Basic     *types.Basic
	Array     *types.Array
	Slice     *types.Slice
	Map       *types.Map
	Chan      *types.Chan
	Struct    *types.Struct
	Interface *types.Interface
	Pointer   *types.Pointer
	Signature *types.Signature
	Named     *types.Named
	TypeParam *types.TypeParam

	Elem *Type
}

func (t Type) Type() types.Type { return t.T }
func (t Type) String() string   { return t.T.String() }

func (t Type) IsBasic() bool     { return t.Basic != nil }
func (t Type) IsArray() bool     { return t.Array != nil }
func (t Type) IsSlice() bool     { return t.Slice != nil }
func (t Type) IsMap() bool       { return t.Map != nil }
func (t Type) IsChan() bool      { return t.Chan != nil }
func (t Type) IsStruct() bool    { return t.Struct != nil }
func (t Type) IsInterface() bool { return t.Interface != nil }
func (t Type) IsPointer() bool   { return t.Pointer != nil }
func (t Type) IsFunc() bool      { return t.Signature != nil }
func (t Type) IsNamed() bool     { return t.Named != nil }
func (t Type) IsTypeParam() bool { return t.TypeParam != nil }

func (t Type) IsError() bool { return t.T == types.Universe.Lookup("error").Type() }

// TypeOf inspects the given type and returns a new [Type].
func TypeOf(t types.Type) Type {
	switch tt := types.Unalias(t).(type) {
	case *types.Basic:
		return Type{T: t, Basic: tt}
	case *types.Array:
		elem := TypeOf(tt.Elem())
		return Type{T: t, Array: tt, Elem: &elem}
	case *types.Slice:
		elem := TypeOf(tt.Elem())
		return Type{T: t, Slice: tt, Elem: &elem}
	case *types.Map:
		elem := TypeOf(tt.Elem())
		return Type{T: t, Map: tt, Elem: &elem}
	case *types.Chan:
		elem := TypeOf(tt.Elem())
		return Type{T: t, Chan: tt, Elem: &elem}
	case *types.Struct:
		return Type{T: t, Struct: tt}
	case *types.Interface:
		return Type{T: t, Interface: tt}
	case *types.Pointer:
		elem := TypeOf(tt.Elem())
		return Type{T: t, Pointer: tt, Elem: &elem}
	case *types.Signature:
		return Type{T: t, Signature: tt}
	case *types.Named:
		info := TypeOf(tt.Underlying())
		info.T = t
		info.Named = tt
		return info
	case *types.TypeParam:
		return Type{T: t, TypeParam: tt}
	case *types.Tuple:
		if tt.Len() == 0 {
			return Type{T: t}
		}
	}
	panic(fmt.Errorf("unknown type: %T", t))
}

// IsNilable reports whether nil is a valid value of the type. Type parameters
// are nilable only if every type in their type set is nilable, which is not
// checked here, so they are reported as not nilable.
func (t Type) IsNilable() bool {
	switch {
	case t.IsPointer(), t.IsSlice(), t.IsMap(), t.IsChan(), t.IsFunc(), t.IsInterface():
		return true
	case t.IsBasic():
		return t.Basic.Kind() == types.UnsafePointer || t.Basic.Kind() == types.UntypedNil
	}
	return false
}

// ZeroKind classifies how the zero value of a type is written in Go code.
type ZeroKind int

const (
	// ZeroUnknown is written as *new(T).
	ZeroUnknown ZeroKind = iota
	// ZeroNumber is written as 0.
	ZeroNumber
	// ZeroString is written as "".
	ZeroString
	// ZeroBool is written as false.
	ZeroBool
	// ZeroNil is written as nil.
	ZeroNil
	// ZeroComposite is written as T{}.
	ZeroComposite
)

// Zero returns how the zero value of the type is written.
func (t Type) Zero() ZeroKind {
	switch {
	case t.IsTypeParam():
		return ZeroUnknown
	case t.IsNilable():
		return ZeroNil
	case t.IsStruct(), t.IsArray():
		return ZeroComposite
	case t.IsBasic():
		info := t.Basic.Info()
		switch {
		case info&types.IsNumeric != 0:
			return ZeroNumber
		case info&types.IsString != 0:
			return ZeroString
		case info&types.IsBoolean != 0:
			return ZeroBool
		}
	}
	return ZeroUnknown
}

// IsGeneric reports whether the type is generic or has any generic type
// parameters. Even though the type has type parameters, if all type arguments
// are concrete types, it returns false.
func (t Type) IsGeneric() bool {
	return isGeneric(t.T)
}

func isGeneric(t types.Type) bool {
	switch t := types.Unalias(t).(type) {
	case *types.Named:
		if t.TypeParams().Len() == 0 {
			// No type parameters
			// e.g., Foo
			return false
		}

		targs := t.TypeArgs()
		if targs.Len() == 0 {
			// Have type parameters but no arguments
			// e.g., Foo[T]
			return true
		}

		for i := 0; i < targs.Len(); i++ {
			if isGeneric(targs.At(i)) {
				// Some type argument is generic
				// e.g., Foo[int, T]
				return true
			}
		}
	case *types.Pointer:
		return isGeneric(t.Elem())
	case *types.Slice:
		return isGeneric(t.Elem())
	case *types.Array:
		return isGeneric(t.Elem())
	case *types.Map:
		return isGeneric(t.Key()) || isGeneric(t.Elem())
	case *types.Chan:
		return isGeneric(t.Elem())
	case *types.Struct:
		for f := range t.Fields() {
			if isGeneric(f.Type()) {
				return true
			}
		}
	case *types.Signature:
		if t.TypeParams().Len() != 0 {
			return true
		}
		for v := range t.Params().Variables() {
			if isGeneric(v.Type()) {
				return true
			}
		}
		for v := range t.Results().Variables() {
			if isGeneric(v.Type()) {
				return true
			}
		}
	case *types.TypeParam:
		return true
	}
	return false
}
