package main

import (
	"fmt"
	"unicode/utf8"

	"github.com/sublee/opaque"
)

type AsciiError struct{ ValidUpTo int }

func (e *AsciiError) Error() string { return fmt.Sprintf("invalid ascii at %d", e.ValidUpTo) }

func validateStr(s *string) (*string, *AsciiError) {
	for i := 0; i < len(*s); i++ {
		if (*s)[i] >= utf8.RuneSelf {
			return nil, &AsciiError{ValidUpTo: i}
		}
	}
	return s, nil
}

func validateString(s string) (string, *AsciiError) {
	if _, err := validateStr(&s); err != nil {
		return "", err
	}
	return s, nil
}

// AsciiStr is an ASCII string sharing the storage of a string.
//
//@derive(opaque::Unsized, opaque::UnsizedMut)
//@repr(transparent)
//@opaque_typedef(validate(error = "*AsciiError", validator = "validateStr"))
type AsciiStr struct{ s string }

// AsciiString is an ASCII string.
//
//@derive(opaque::Sized, opaque::SizedMut)
//@opaque_typedef(validate(error = "*AsciiError", validator = "validateString"))
type AsciiString struct{ s string }

func main() {
	hello := "hello"
	a, err := (*AsciiStr)(nil).TryFromInnerRef(&hello)
	fmt.Println(*a.AsInnerRef(), err == nil)

	bad := "hello�"
	_, err = (*AsciiStr)(nil).TryFromInnerRef(&bad)
	fmt.Println(err.ValidUpTo)

	world := "world"
	w, _ := (*AsciiStr)(nil).TryFromInnerRefMut(&world)
	*w.AsInnerRefMut() = "WORLD"
	fmt.Println(world)

	s, err := AsciiString{}.TryFromInner("hello")
	fmt.Println(s.IntoInner(), err == nil)

	_, err = AsciiString{}.TryFromInner("héllo")
	fmt.Println(err)

	*s.AsInnerMut() = "changed"
	fmt.Println(s.AsInner())

	fmt.Println(opaque.Must(AsciiString{}.TryFromInner("must")).IntoInner())
}
