// Package opaqueanalysis provides an analyzer reporting misconfigured opaque
// typedefs without generating code.
package opaqueanalysis

import (
	"errors"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/packages"

	"github.com/sublee/opaque/internal/codefmt"
	opaqueinternal "github.com/sublee/opaque/internal/opaque"
)

// Analyzer validates the opaque typedefs in the package.
var Analyzer = &analysis.Analyzer{
	Name: "opaque",
	Doc:  "linter for opaque typedef annotations",
	Run:  run,
}

func run(pass *analysis.Pass) (any, error) {
	pkg := &packages.Package{
		Name:      pass.Pkg.Name(),
		PkgPath:   pass.Pkg.Path(),
		Types:     pass.Pkg,
		Fset:      pass.Fset,
		Syntax:    pass.Files,
		TypesInfo: pass.TypesInfo,
	}

	o, err := opaqueinternal.New(pkg)
	if err != nil {
		return nil, err
	}

	if err := o.Build(); err != nil {
		// Unroll all errors and report them
		errs := []error{err}
		for len(errs) != 0 {
			err := errs[0]
			errs = errs[1:]

			if u, ok := err.(interface{ Unwrap() []error }); ok {
				errs = append(errs, u.Unwrap()...)
				continue
			}

			var codeErr *codefmt.CodeError
			if errors.As(err, &codeErr) {
				pass.Report(analysis.Diagnostic{
					Pos:     codeErr.Pos(),
					End:     codeErr.End(),
					Message: codeErr.Unwrap().Error(),
				})
			}
		}
	}

	return nil, nil
}
