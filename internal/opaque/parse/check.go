package parse

import (
	"errors"
	"go/ast"
	"go/token"
	"go/types"

	"github.com/sublee/opaque/internal/codefmt"
	"github.com/sublee/opaque/internal/opaque/derive"
	"github.com/sublee/opaque/internal/typeinfo"
)

// checkTypes resolves the zero values of the fields and checks the
// validation annotation of the target. Validation of generic types is not
// checked because the validator and the error type may depend on type
// arguments.
func (p *Parser) checkTypes(t *Target) []error {
	in := t.Input
	info := p.pkg.TypesInfo

	for i, f := range in.Decl.Fields {
		if typ := info.TypeOf(f.Type); typ != nil {
			in.Decl.Fields[i].Zero = typeinfo.TypeOf(typ).Zero()
		}
	}

	if in.Decl.IsGeneric() {
		return nil
	}
	for _, trait := range t.Traits {
		// The infallible trait generator reports them.
		if trait.IsInfallible() && (in.Validation.HasValidator() || in.HasErrorType()) {
			return nil
		}
	}

	errType, err := p.errorType(t)
	if err != nil {
		return []error{err}
	}
	if !in.Validation.HasValidator() {
		return nil
	}

	inner := info.TypeOf(in.PrimaryField().Type)
	if inner == nil {
		return nil
	}

	lit := in.Validation.ValidatorLit
	tv, err := p.typeOf(in.Decl.Pos(), in.Validation.Validator)
	if err != nil {
		return []error{codefmt.Errorf(p, lit, "invalid validator %s: %s", in.Validation.ValidatorSource(), err.Error())}
	}
	if !tv.IsValue() {
		return []error{codefmt.Errorf(p, lit, "validator %s is not a value", in.Validation.ValidatorSource())}
	}

	qf := func(other *types.Package) string {
		if other == p.pkg.Types {
			return ""
		}
		return other.Name()
	}
	var sized, unsized bool
	for _, trait := range t.Traits {
		if trait.IsUnsized() {
			unsized = true
		} else {
			sized = true
		}
	}

	var errs []error
	if sized {
		if _, err := typeinfo.ValidatorOf[typeinfo.ByValue](tv.Type, inner, errType, qf); err != nil {
			errs = append(errs, p.validatorError(t, tv.Type, err))
		}
	}
	if unsized {
		if _, err := typeinfo.ValidatorOf[typeinfo.ByRef](tv.Type, inner, errType, qf); err != nil {
			errs = append(errs, p.validatorError(t, tv.Type, err))
		}
	}
	return errs
}

// validatorError positions err at the validator literal. The signature of the
// validator is appended if it is a function.
func (p *Parser) validatorError(t *Target, typ types.Type, err error) error {
	lit := t.Input.Validation.ValidatorLit
	sig, ok := typ.Underlying().(*types.Signature)
	if !ok {
		return codefmt.Errorf(p, lit, "%s", err.Error())
	}
	return codefmt.Errorf(p, lit, "%s: %s is %g", err.Error(), t.Input.Validation.ValidatorSource(), sig)
}

// errorType returns the declared error type or opaque.Never. The declared
// type must implement error and be nilable, because generated methods return
// nil on success.
func (p *Parser) errorType(t *Target) (types.Type, error) {
	in := t.Input
	if !in.HasErrorType() {
		return p.never(), nil
	}

	lit := in.Validation.ErrorTypeLit
	src := in.Validation.ErrorTypeSource()
	tv, err := p.typeOf(in.Decl.Pos(), in.Validation.ErrorType)
	if err != nil {
		return nil, codefmt.Errorf(p, lit, "invalid validation error type %s: %s", src, err.Error())
	}
	if !tv.IsType() {
		return nil, codefmt.Errorf(p, lit, "validation error type %s is not a type", src)
	}

	errIface := types.Universe.Lookup("error").Type().Underlying().(*types.Interface)
	if !types.Implements(tv.Type, errIface) {
		return nil, codefmt.Errorf(p, lit, "validation error type %t does not implement error", tv.Type)
	}
	if !typeinfo.TypeOf(tv.Type).IsNilable() {
		return nil, codefmt.Errorf(p, lit, "validation error type %t must be nilable", tv.Type)
	}
	return tv.Type, nil
}

// typeOf type-checks an expression parsed from an annotation in the scope
// of the file at pos.
func (p *Parser) typeOf(pos token.Pos, expr ast.Expr) (types.TypeAndValue, error) {
	info := &types.Info{Types: make(map[ast.Expr]types.TypeAndValue)}
	if err := types.CheckExpr(p.pkg.Fset, p.pkg.Types, pos, expr, info); err != nil {
		// The expression has positions of its own, so only the message is
		// meaningful.
		var typeErr types.Error
		if errors.As(err, &typeErr) {
			return types.TypeAndValue{}, errors.New(typeErr.Msg)
		}
		return types.TypeAndValue{}, err
	}
	return info.Types[expr], nil
}

// never returns opaque.Never. If the package does not import opaque, a type
// which nothing else is assignable to stands in for it.
func (p *Parser) never() types.Type {
	scopes := []*types.Package{p.pkg.Types}
	scopes = append(scopes, p.pkg.Types.Imports()...)
	for _, pkg := range scopes {
		if pkg.Path() != derive.OpaquePkgPath {
			continue
		}
		if obj, ok := pkg.Scope().Lookup("Never").(*types.TypeName); ok {
			return obj.Type()
		}
	}

	pkg := types.NewPackage(derive.OpaquePkgPath, "opaque")
	named := types.NewNamed(types.NewTypeName(token.NoPos, pkg, "Never", nil), nil, nil)
	never := types.NewFunc(token.NoPos, pkg, "never", types.NewSignatureType(nil, nil, nil, nil, nil, false))
	named.SetUnderlying(types.NewInterfaceType([]*types.Func{never}, nil).Complete())
	return named
}
