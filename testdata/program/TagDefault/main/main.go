package main

import "fmt"

type Tag string

// Tagged is a byte slice with a tag. Conversions from the inner value leave
// the tag empty.
//
//@derive(opaque::Sized, opaque::SizedInfallible)
//@opaque_typedef(hide_base_impl_docs)
type Tagged struct {
	//@opaque_typedef(inner)
	b   []byte
	tag Tag
	n   int
}

func main() {
	t := Tagged{}.FromInner([]byte("payload"))
	fmt.Printf("%s %q %d\n", t.IntoInner(), t.tag, t.n)

	t.tag = "tagged"
	fmt.Printf("%s %q\n", t.AsInner(), t.tag)
}
