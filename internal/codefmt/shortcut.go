package codefmt

import (
	"go/token"

	"golang.org/x/tools/go/packages"
)

// Errorf is a shorthand for [Formatter.Errorf].
func Errorf(pkger Pkger, poser Poser, format string, args ...any) error {
	return newByPkger(pkger).Errorf(poser, format, args...)
}

// Wrap is a shorthand for [Formatter.Wrap].
func Wrap(pkger Pkger, poser Poser, err error) error {
	return newByPkger(pkger).Wrap(poser, err)
}

type pkger struct{ pkg *packages.Package }

func (p pkger) Pkg() *packages.Package { return p.pkg }

// Fset returns a [Pkger] of a package which only has the file set. It is
// enough to format positions in errors.
func Fset(fset *token.FileSet) Pkger {
	return pkger{&packages.Package{Fset: fset}}
}
