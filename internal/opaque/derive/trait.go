package derive

import (
	"errors"
	"fmt"

	"github.com/sublee/opaque/internal/opaque/attr"
)

// Trait is one of the seven conversion traits. Each trait is an interface in
// the runtime package github.com/sublee/opaque with the same name.
type Trait int

const (
	TraitSized Trait = iota
	TraitSizedInfallible
	TraitSizedMut
	TraitUnsized
	TraitUnsizedInfallible
	TraitUnsizedMut
	TraitUnsizedInfallibleMut
)

// Traits lists all traits in the order of generation.
var Traits = []Trait{
	TraitSized,
	TraitSizedInfallible,
	TraitSizedMut,
	TraitUnsized,
	TraitUnsizedInfallible,
	TraitUnsizedMut,
	TraitUnsizedInfallibleMut,
}

var traitNames = [...]string{
	TraitSized:                "Sized",
	TraitSizedInfallible:      "SizedInfallible",
	TraitSizedMut:             "SizedMut",
	TraitUnsized:              "Unsized",
	TraitUnsizedInfallible:    "UnsizedInfallible",
	TraitUnsizedMut:           "UnsizedMut",
	TraitUnsizedInfallibleMut: "UnsizedInfallibleMut",
}

// String returns the interface name of the trait, e.g., "SizedMut".
func (t Trait) String() string {
	if t < 0 || int(t) >= len(traitNames) {
		return fmt.Sprintf("Trait(%d)", int(t))
	}
	return traitNames[t]
}

// Path returns the trait as written in a derive annotation, e.g.,
// "opaque::SizedMut".
func (t Trait) Path() string { return TraitNamespace + "::" + t.String() }

// IsUnsized reports whether the trait reinterprets pointers to the inner
// value.
func (t Trait) IsUnsized() bool { return t >= TraitUnsized }

// IsInfallible reports whether the trait requires the error type to be
// opaque.Never.
func (t Trait) IsInfallible() bool {
	switch t {
	case TraitSizedInfallible, TraitUnsizedInfallible, TraitUnsizedInfallibleMut:
		return true
	}
	return false
}

// Requires returns the traits embedded in the interface of the trait. A type
// deriving the trait must derive them too.
func (t Trait) Requires() []Trait {
	switch t {
	case TraitSizedInfallible, TraitSizedMut:
		return []Trait{TraitSized}
	case TraitUnsizedInfallible, TraitUnsizedMut:
		return []Trait{TraitUnsized}
	case TraitUnsizedInfallibleMut:
		return []Trait{TraitUnsizedMut, TraitUnsizedInfallible}
	}
	return nil
}

// TraitNamespace is the first segment of trait paths in derive annotations.
const TraitNamespace = "opaque"

// ErrUnknownTrait is returned by [ParseTrait] for a path in the opaque
// namespace which does not name a trait.
var ErrUnknownTrait = errors.New("unknown trait")

// ParseTrait resolves a path listed in //@derive(...). Paths outside the
// opaque namespace belong to other tools, so ok is false for them without an
// error.
func ParseTrait(p *attr.Path) (t Trait, ok bool, err error) {
	if len(p.Segments) == 0 || p.Segments[0].Name != TraitNamespace {
		return 0, false, nil
	}
	if len(p.Segments) == 2 {
		for _, t := range Traits {
			if p.Segments[1].Name == t.String() {
				return t, true, nil
			}
		}
	}
	return 0, false, fmt.Errorf("%w %s", ErrUnknownTrait, p)
}

// Methods returns the names of the methods generated for the trait.
func (t Trait) Methods() []string {
	switch t {
	case TraitSized:
		return []string{"TryFromInner", "FromInnerUnchecked", "IntoInner", "AsInner"}
	case TraitSizedInfallible:
		return []string{"FromInner"}
	case TraitSizedMut:
		return []string{"AsInnerMut"}
	case TraitUnsized:
		return []string{"TryFromInnerRef", "FromInnerRefUnchecked", "AsInnerRef"}
	case TraitUnsizedInfallible:
		return []string{"FromInnerRef"}
	case TraitUnsizedMut:
		return []string{"TryFromInnerRefMut", "FromInnerRefUncheckedMut", "AsInnerRefMut"}
	case TraitUnsizedInfallibleMut:
		return []string{"FromInnerRefMut"}
	}
	return nil
}
