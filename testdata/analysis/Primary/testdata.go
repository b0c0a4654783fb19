package primary

//@derive(opaque::Sized)
type Empty struct{} // want `no fields found`

//@derive(opaque::Sized)
type Unmarked struct { // want `there are multiple fields but none are marked as inner`
	a []byte
	b int
}

//@derive(opaque::Sized)
type MarkedTwice struct {
	//@opaque_typedef(inner)
	a []byte
	b int
	// @opaque_typedef(inner)
	c []byte // want `multiple fields are marked as inner: #0 \(a\) and #2 \(c\)`
}

//@derive(opaque::Sized)
type Blank struct{ _ int } // want `inner field cannot be blank`

//@derive(opaque::Sized)
type Name string // want `opaque typedef Name must be a struct type`

// Types without opaque traits are not checked.

//@derive(Debug)
type Foreign struct{}

type Plain struct{}
