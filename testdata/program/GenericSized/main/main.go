package main

import "fmt"

// Box holds a value.
//
//@derive(opaque::Sized, opaque::SizedMut)
type Box[T any] struct{ v T }

// Pair is a pair of values of which the first is the inner value.
//
//@derive(opaque::Sized)
type Pair[K comparable, V any] struct {
	//@opaque_typedef(inner)
	k K
	v V
}

func main() {
	b := Box[int]{}.FromInnerUnchecked(41)
	*b.AsInnerMut()++
	fmt.Println(b.IntoInner())

	p, err := Pair[string, []int]{}.TryFromInner("key")
	fmt.Println(p.IntoInner(), p.v == nil, err == nil)
}
