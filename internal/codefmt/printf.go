package codefmt

import (
	"fmt"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/packages"
)

type (
	Pkger interface{ Pkg() *packages.Package }
	Poser interface{ Pos() token.Pos }
	Ender interface{ End() token.Pos }
)

func (f Formatter) wrapPrintfArgs(args []any) []any {
	for i, arg := range args {
		switch arg.(type) {
		case *types.Signature, types.Type:
			args[i] = formatArg{arg, f}
		}
	}
	return args
}

type formatArg struct {
	x   any
	fmt Formatter
}

// Format implements fmt.Formatter interface.
//
// Supported verbs:
//
//	%t: types.Type - short form
//	%g: *types.Signature - compact form without parameter names
//
// For other verbs, it falls back to the default formatting of fmt package.
func (f formatArg) Format(s fmt.State, verb rune) {
	switch verb {
	case 't':
		typ, ok := f.x.(types.Type)
		if !ok {
			fmt.Fprintf(s, "[%%t cannot format %T]", f.x)
			return
		}
		_, _ = s.Write([]byte(f.fmt.Type(typ)))

	case 'g':
		sig, ok := f.x.(*types.Signature)
		if !ok {
			fmt.Fprintf(s, "[%%g cannot format %T]", f.x)
			return
		}
		_, _ = s.Write([]byte("func" + f.fmt.Sig(sig)))

	default:
		fmt.Fprintf(s, fmt.FormatString(s, verb), f.x)
	}
}
