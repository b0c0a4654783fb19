package unsized

//@derive(opaque::Unsized)
type NoRepr struct{ s string } // want `repr\(C\) or repr\(transparent\) is required for unsized opaque typedefs`

//@derive(opaque::Unsized)
//@repr(packed)
type Packed struct{ s string } // want `repr\(C\) or repr\(transparent\) is required`

func validateRef(s *string) (*string, error) { return s, nil }

func validateValue(s string) (string, error) { return s, nil }

//@derive(opaque::Unsized, opaque::UnsizedMut)
//@opaque_typedef(validate(validator = "validateRef", error = "error"))
//@repr(transparent)
type Str struct{ s string }

//@derive(opaque::Unsized)
//@opaque_typedef(validate(validator = "validateValue", error = "error")) // want `validator cannot take \*string`
//@repr(C)
type ByValue struct{ s string }
