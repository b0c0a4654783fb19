package infallible

func validate(s string) (string, error) { return s, nil }

//@derive(opaque::Sized, opaque::SizedInfallible)
//@opaque_typedef(validate(validator = "validate", error = "error")) // want `opaque::SizedInfallible: infallible trait cannot be derived with a validator`
type WithValidator struct{ s string }

//@derive(opaque::Sized, opaque::SizedInfallible)
//@opaque_typedef(validate(error = "error")) // want `opaque::SizedInfallible: infallible trait cannot be derived with an error type`
type WithErrorType struct{ s string }

//@derive(opaque::Unsized, opaque::UnsizedInfallible)
//@repr(transparent)
type Fine struct{ s string }
