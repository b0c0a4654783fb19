package main

import (
	"errors"
	"fmt"
	"net/netip"

	c "example.com/Imports/check"
)

// Lower is a string without upper case letters.
//
//@derive(opaque::Sized)
//@opaque_typedef(validate(validator = "c.Lower", error = "error"))
type Lower struct{ s string }

// Addr is an IP address.
//
//@derive(opaque::Sized, opaque::SizedInfallible)
type Addr struct{ netip.Addr }

func main() {
	l, err := Lower{}.TryFromInner("lower")
	fmt.Println(l.IntoInner(), err)

	_, err = Lower{}.TryFromInner("UPPER")
	fmt.Println(err, errors.Is(err, c.ErrUpper))

	a := Addr{}.FromInner(netip.MustParseAddr("127.0.0.1"))
	fmt.Println(a.IntoInner(), a.IsLoopback())
}
