package main

import "fmt"

type EmptyError struct{}

func (*EmptyError) Error() string { return "empty slice" }

func validateSlice[T any](s *[]T) (*[]T, *EmptyError) {
	if len(*s) == 0 {
		return nil, &EmptyError{}
	}
	return s, nil
}

// NonEmptySlice is a slice with at least one element.
//
//@derive(opaque::Unsized)
//@repr(transparent)
//@opaque_typedef(validate(validator = "validateSlice[T]", error = "*EmptyError"))
type NonEmptySlice[T any] struct{ s []T }

// Subslice returns the subslice from i or fails if it is empty.
func (s *NonEmptySlice[T]) Subslice(i int) (*NonEmptySlice[T], *EmptyError) {
	sub := (*s.AsInnerRef())[i:]
	return (*NonEmptySlice[T])(nil).TryFromInnerRef(&sub)
}

func main() {
	empty := []int{}
	_, err := (*NonEmptySlice[int])(nil).TryFromInnerRef(&empty)
	fmt.Println(err)

	nums := []int{1, 2, 3}
	ns, err := (*NonEmptySlice[int])(nil).TryFromInnerRef(&nums)
	fmt.Println(*ns.AsInnerRef(), err == nil)

	sub, err := ns.Subslice(1)
	fmt.Println(*sub.AsInnerRef(), err == nil)

	_, err = ns.Subslice(3)
	fmt.Println(err)
}
