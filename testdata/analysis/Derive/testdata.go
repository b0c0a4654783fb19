package derive

//@derive(opaque::Sizd) // want `unknown trait opaque::Sizd`
type Unknown struct{ s string }

//@derive(opaque::SizedMut) // want `opaque::SizedMut requires opaque::Sized`
type Mut struct{ s string }

//@repr(transparent)
//@derive(opaque::Unsized, opaque::UnsizedInfallibleMut) // want `opaque::UnsizedInfallibleMut requires opaque::UnsizedMut` `opaque::UnsizedInfallibleMut requires opaque::UnsizedInfallible`
type Str struct{ s string }

//@derive(opaque::Sized) // want `opaque::Sized: Meters already has method IntoInner`
type Meters struct{ float64 }

func (m Meters) IntoInner() float64 { return m.float64 }

//@derive(opaque::Sized) // want `opaque::Sized: Weird already has field AsInner`
type Weird struct {
	//@opaque_typedef(inner)
	s       string
	AsInner int
}

//@derive(Debug, opaque::Sized, opaque::SizedMut, opaque::Sized)
type Fine struct{ s string }
