package main

import (
	"fmt"

	"github.com/sublee/opaque"
)

// MyStr is internally a string but a different type.
//
//@derive(opaque::Unsized, opaque::UnsizedMut, opaque::UnsizedInfallible, opaque::UnsizedInfallibleMut)
//@repr(transparent)
type MyStr struct{ s string }

// MyString is internally a string but a different type.
//
//@derive(opaque::Sized, opaque::SizedMut, opaque::SizedInfallible)
type MyString struct{ s string }

// Pair is internally an array of two ints.
//
//@derive(opaque::Sized, opaque::SizedMut, opaque::SizedInfallible)
type Pair struct{ a [2]int }

var (
	_ opaque.UnsizedInfallibleMut[MyStr, string] = (*MyStr)(nil)
	_ opaque.SizedInfallible[MyString, string]   = (*MyString)(nil)
)

func main() {
	inner := "hello"
	r := (*MyStr)(nil).FromInnerRef(&inner)
	fmt.Println(*r.AsInnerRef())

	m := (*MyStr)(nil).FromInnerRefMut(&inner)
	*m.AsInnerRefMut() += ", world"
	fmt.Println(inner)

	u := (*MyStr)(nil).FromInnerRefUncheckedMut(&inner)
	fmt.Println(u == m, (*MyStr)(nil).FromInnerRefUnchecked(&inner) == r)

	s := MyString{}.FromInner("hello")
	*s.AsInnerMut() = "bye"
	fmt.Println(s.IntoInner(), MyString{}.FromInnerUnchecked("x").AsInner())

	t, err := MyString{}.TryFromInner("never fails")
	fmt.Println(t.IntoInner(), err == nil)

	p := Pair{}.FromInner([2]int{1, 2})
	c := p.AsInner()
	c[0] = 9
	fmt.Println(p.AsInner(), c)
	p.AsInnerMut()[0] = 9
	fmt.Println(p.AsInner())
}
