package generated

// Methods in the generated file do not conflict with the methods to
// generate.

//@derive(opaque::Sized)
type Meters struct{ float64 }

func (m Meters) Float() float64 { return m.IntoInner() }
