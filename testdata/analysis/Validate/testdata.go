package validate

type ASCIIError struct{ Pos int }

func (e *ASCIIError) Error() string { return "not ascii" }

type ValueError struct{}

func (ValueError) Error() string { return "value error" }

func validateASCII(s string) (string, *ASCIIError) { return s, nil }

func validateInt(n int) (int, error) { return n, nil }

func validateError(s string) (string, error) { return s, nil }

//@derive(opaque::Sized)
//@opaque_typedef(validate(validator = "validateASCII", error = "*ASCIIError"))
type ASCIIString struct{ s string }

//@derive(opaque::Sized)
//@opaque_typedef(validate(validator = "validate(", error = "*ASCIIError")) // want `failed to parse validator function`
type Broken struct{ s string }

//@derive(opaque::Sized)
//@opaque_typedef(validate(validator = 42)) // want `expected string literal, but got INT literal`
type NonString struct{ s string }

//@derive(opaque::Sized)
//@opaque_typedef(validate(validator = "validateInt", error = "error")) // want `validator cannot take string`
type WrongParam struct{ s string }

//@derive(opaque::Sized)
//@opaque_typedef(validate(validator = "validateError")) // want `validator returns error which is not assignable to opaque.Never`
type NeverError struct{ s string }

//@derive(opaque::Sized)
//@opaque_typedef(validate(validator = "missing", error = "error")) // want `invalid validator missing: undefined: missing`
type Undefined struct{ s string }

//@derive(opaque::Sized)
//@opaque_typedef(validate(error = "ValueError")) // want `validation error type ValueError must be nilable`
type NotNilable struct{ s string }

//@derive(opaque::Sized)
//@opaque_typedef(validate(error = "int")) // want `validation error type int does not implement error`
type NotError struct{ s string }
