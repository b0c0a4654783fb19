package attr

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"

	"github.com/sublee/opaque/internal/codefmt"
)

// Namespace is the name of the annotation list which configures opaque
// typedefs.
const Namespace = "opaque_typedef"

// HasStructuralRepr reports whether the annotation is "repr(C)" or
// "repr(transparent)". Other items in the list are ignored, so
// "repr(align = 8, C)" also counts.
func HasStructuralRepr(m Meta) bool {
	list, ok := m.(*List)
	if !ok || !list.Path.Is("repr") {
		return false
	}
	for _, p := range list.Paths() {
		if p.Is("C") || p.Is("transparent") {
			return true
		}
	}
	return false
}

// HasNestedFlag reports whether the annotation is the path "outer::inner" or
// a list "outer(...)" holding the bare path "inner".
func HasNestedFlag(m Meta, outer, inner string) bool {
	switch m := m.(type) {
	case *Path:
		return m.Is(outer, inner)
	case *List:
		if !m.Path.Is(outer) {
			return false
		}
		for _, p := range m.Paths() {
			if p.Is(inner) {
				return true
			}
		}
	}
	return false
}

// Validation is the validator configuration of an opaque typedef:
//
//	//@opaque_typedef(validate(validator = "<expr>", error = "<type>"))
type Validation struct {
	// Validator is the validator function expression. It is nil if no
	// validator is configured.
	Validator    ast.Expr
	ValidatorLit *ast.BasicLit

	// ErrorType is the type of errors returned by the validator. It is nil if
	// no error type is configured.
	ErrorType    ast.Expr
	ErrorTypeLit *ast.BasicLit
}

// HasValidator reports whether a validator is configured.
func (v Validation) HasValidator() bool { return v.Validator != nil }

// ValidatorSource returns the Go source of the validator.
func (v Validation) ValidatorSource() string { return unquote(v.ValidatorLit) }

// ErrorTypeSource returns the Go source of the error type.
func (v Validation) ErrorTypeSource() string { return unquote(v.ErrorTypeLit) }

// LiteralError reports a validator or error type literal which cannot be
// parsed. The error is anchored at the literal.
type LiteralError struct {
	Key string
	Lit *ast.BasicLit
	Err error
}

func (e *LiteralError) Error() string {
	switch e.Key {
	case "validator":
		return fmt.Sprintf("failed to parse validator function: %v", e.Err)
	case "error":
		return fmt.Sprintf("failed to parse validation error type: %v", e.Err)
	}
	return fmt.Sprintf("failed to parse %s: %v", e.Key, e.Err)
}

func (e *LiteralError) Unwrap() error { return e.Err }

// ExtractValidation finds validate(validator = "...", error = "...") nested
// in an opaque_typedef(...) annotation and parses both literals. For each
// key, the first occurrence wins and later ones are ignored. An unparsable
// literal produces a [*LiteralError] wrapped in a [codefmt.CodeError] at the
// literal's position. Both keys are reported independently.
func ExtractValidation(fset *token.FileSet, metas []Meta) (Validation, error) {
	var v Validation
	var validatorErr, errorTypeErr error
	var seenValidator, seenErrorType bool

	for _, m := range metas {
		for _, nv := range validateEntries(m) {
			switch {
			case nv.Path.Is("validator") && !seenValidator:
				seenValidator = true
				expr, err := parseLit(nv.Value, parser.ParseExpr)
				if err != nil {
					validatorErr = codefmt.Wrap(codefmt.Fset(fset), nv.Value, &LiteralError{"validator", nv.Value, err})
					continue
				}
				v.Validator, v.ValidatorLit = expr, nv.Value

			case nv.Path.Is("error") && !seenErrorType:
				seenErrorType = true
				expr, err := parseLit(nv.Value, parseTypeExpr)
				if err != nil {
					errorTypeErr = codefmt.Wrap(codefmt.Fset(fset), nv.Value, &LiteralError{"error", nv.Value, err})
					continue
				}
				v.ErrorType, v.ErrorTypeLit = expr, nv.Value
			}
		}
	}

	return v, errors.Join(validatorErr, errorTypeErr)
}

// validateEntries returns the name-value pairs in
// opaque_typedef(validate(...)).
func validateEntries(m Meta) []*NameValue {
	ns, ok := m.(*List)
	if !ok || !ns.Path.Is(Namespace) {
		return nil
	}

	var entries []*NameValue
	for _, n := range ns.Nested {
		validate, ok := n.Meta.(*List)
		if !ok || !validate.Path.Is("validate") {
			continue
		}
		for _, n := range validate.Nested {
			if nv, ok := n.Meta.(*NameValue); ok {
				entries = append(entries, nv)
			}
		}
	}
	return entries
}

func parseLit(lit *ast.BasicLit, parse func(string) (ast.Expr, error)) (ast.Expr, error) {
	if lit.Kind != token.STRING {
		return nil, fmt.Errorf("expected string literal, but got %s literal", lit.Kind)
	}
	return parse(unquote(lit))
}

// parseTypeExpr parses a type expression. Go types are parsed as expressions,
// then the expression is checked to be a type syntactically.
func parseTypeExpr(src string) (ast.Expr, error) {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return nil, err
	}
	if !isTypeExpr(expr) {
		return nil, fmt.Errorf("%s is not a type", src)
	}
	return expr, nil
}

func isTypeExpr(expr ast.Expr) bool {
	switch expr := expr.(type) {
	case *ast.Ident:
		return true
	case *ast.SelectorExpr:
		_, ok := expr.X.(*ast.Ident)
		return ok
	case *ast.StarExpr:
		return isTypeExpr(expr.X)
	case *ast.ParenExpr:
		return isTypeExpr(expr.X)
	case *ast.IndexExpr:
		return isTypeExpr(expr.X)
	case *ast.IndexListExpr:
		return isTypeExpr(expr.X)
	case *ast.ArrayType, *ast.MapType, *ast.ChanType, *ast.FuncType, *ast.InterfaceType, *ast.StructType:
		return true
	}
	return false
}

func unquote(lit *ast.BasicLit) string {
	if lit == nil {
		return ""
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return lit.Value
	}
	return s
}
