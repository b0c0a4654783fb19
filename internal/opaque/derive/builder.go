package derive

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"github.com/sublee/opaque/internal/codefmt"
	"github.com/sublee/opaque/internal/opaque/input"
	"github.com/sublee/opaque/internal/typeinfo"
)

// OpaquePkgPath is the import path of the runtime package.
const OpaquePkgPath = "github.com/sublee/opaque"

// builder holds the syntax shared by the methods of an implementation. All
// expressions are detached from the source files, so they can be placed in
// generated code.
type builder struct {
	trait Trait
	in    *input.Input
	w     *codefmt.Writer
	ns    codefmt.NS

	innerType ast.Expr
	errType   ast.Expr
	validator ast.Expr // nil if no validator
	auxTypes  map[int]ast.Expr

	opaqueName string
	unsafeName string

	// Local names
	recv      string
	inner     string
	validated string
	err       string
}

// newBuilder prepares the syntax for the trait. It must be called after all
// preconditions pass because it records imports in w.
func newBuilder(w *codefmt.Writer, trait Trait, in *input.Input) *builder {
	b := &builder{
		trait:    trait,
		in:       in,
		w:        w,
		auxTypes: make(map[int]ast.Expr),
	}

	src := codefmt.Formatter{Fset: in.Decl.Fset}
	detached := codefmt.Formatter{}

	b.innerType = codefmt.RewriteImports(w, src.Clone(in.PrimaryField().Type), in.Decl.Imports)
	for _, f := range in.Decl.Fields {
		if !in.IsPrimary(f) && !f.IsBlank() {
			b.auxTypes[f.Index] = codefmt.RewriteImports(w, src.Clone(f.Type), in.Decl.Imports)
		}
	}

	if in.HasErrorType() {
		b.errType = codefmt.RewriteImports(w, detached.Clone(in.Validation.ErrorType), in.Decl.Imports)
	} else {
		b.errType = &ast.SelectorExpr{X: ast.NewIdent(b.opaque()), Sel: ast.NewIdent("Never")}
	}

	if in.Validation.HasValidator() {
		b.validator = codefmt.RewriteImports(w, detached.Clone(in.Validation.Validator), in.Decl.Imports)
	}

	if trait.IsUnsized() {
		b.unsafeName = w.Import("unsafe", "unsafe")
	}

	// Locals must not shadow anything the method bodies refer to.
	b.ns = w.NS().Clone()
	for _, name := range in.Decl.TypeParamNames() {
		b.ns.Reserve(name)
	}
	b.ns.ReserveIdents(b.innerType, b.errType, b.validator)
	for _, typ := range b.auxTypes {
		b.ns.ReserveIdents(typ)
	}
	if b.unsafeName != "" {
		b.ns.Reserve(b.unsafeName)
	}

	b.recv = b.ns.Name(recvName(in.Name()))
	b.inner = b.ns.Name("inner")
	b.validated = b.ns.Name("validated")
	b.err = b.ns.Name("err")
	return b
}

// recvName returns the conventional receiver name of a type, the lowercase
// first letter of its name.
func recvName(typeName string) string {
	c := typeName[0]
	switch {
	case 'A' <= c && c <= 'Z':
		return string(c - 'A' + 'a')
	case 'a' <= c && c <= 'z':
		return string(c)
	}
	return "x"
}

// opaque imports the runtime package and returns its name in generated code.
func (b *builder) opaque() string {
	if b.opaqueName == "" {
		b.opaqueName = b.w.Import(OpaquePkgPath, "opaque")
	}
	return b.opaqueName
}

// typeExpr returns the type being implemented, instantiated with its own
// type parameters, e.g., "Tagged[T, Tag]".
func (b *builder) typeExpr() ast.Expr {
	name := ast.NewIdent(b.in.Name())
	params := b.in.Decl.TypeParamNames()
	switch len(params) {
	case 0:
		return name
	case 1:
		return &ast.IndexExpr{X: name, Index: ast.NewIdent(params[0])}
	}
	indices := make([]ast.Expr, len(params))
	for i, p := range params {
		indices[i] = ast.NewIdent(p)
	}
	return &ast.IndexListExpr{X: name, Indices: indices}
}

func (b *builder) ptrTypeExpr() ast.Expr { return &ast.StarExpr{X: b.typeExpr()} }

func (b *builder) ptrInnerType() ast.Expr { return &ast.StarExpr{X: b.innerType} }

// receiver returns the receiver of a method. Methods not reading the
// receiver leave it unnamed.
func (b *builder) receiver(named, ptr bool) *ast.FieldList {
	typ := b.typeExpr()
	if ptr {
		typ = b.ptrTypeExpr()
	}
	field := &ast.Field{Type: typ}
	if named {
		field.Names = []*ast.Ident{ast.NewIdent(b.recv)}
	}
	return &ast.FieldList{List: []*ast.Field{field}}
}

// innerParam returns the parameter list taking the inner value.
func (b *builder) innerParam(typ ast.Expr) *ast.FieldList {
	return &ast.FieldList{List: []*ast.Field{{
		Names: []*ast.Ident{ast.NewIdent(b.inner)},
		Type:  typ,
	}}}
}

func results(types ...ast.Expr) *ast.FieldList {
	list := &ast.FieldList{}
	for _, typ := range types {
		list.List = append(list.List, &ast.Field{Type: typ})
	}
	return list
}

// field returns the selector of the inner field on the receiver.
func (b *builder) field() ast.Expr {
	return &ast.SelectorExpr{
		X:   ast.NewIdent(b.recv),
		Sel: ast.NewIdent(b.in.PrimaryField().Accessor().Name),
	}
}

// validatorFunc returns the validator in a form that can be called directly.
func (b *builder) validatorFunc() ast.Expr {
	switch b.validator.(type) {
	case *ast.Ident, *ast.SelectorExpr, *ast.IndexExpr, *ast.IndexListExpr, *ast.ParenExpr, *ast.CallExpr:
		return b.validator
	}
	return &ast.ParenExpr{X: b.validator}
}

// validatedInner returns the statements validating the inner value and the
// expression of the validated value:
//
//	validated, err := validator(inner)
//	if err != nil {
//		return failure, err
//	}
//
// Without a validator, there are no statements and the inner value is used
// as is.
func (b *builder) validatedInner(failure ast.Expr) ([]ast.Stmt, ast.Expr) {
	if b.validator == nil {
		return nil, ast.NewIdent(b.inner)
	}

	call := &ast.AssignStmt{
		Lhs: []ast.Expr{ast.NewIdent(b.validated), ast.NewIdent(b.err)},
		Tok: token.DEFINE,
		Rhs: []ast.Expr{&ast.CallExpr{
			Fun:  b.validatorFunc(),
			Args: []ast.Expr{ast.NewIdent(b.inner)},
		}},
	}
	check := &ast.IfStmt{
		Cond: &ast.BinaryExpr{X: ast.NewIdent(b.err), Op: token.NEQ, Y: ast.NewIdent("nil")},
		Body: block(ret(failure, ast.NewIdent(b.err))),
	}
	return []ast.Stmt{call, check}, ast.NewIdent(b.validated)
}

// constructor returns a keyed composite literal of the type. The inner field
// is set to value and every other field to its zero value. Blank fields are
// omitted because they cannot be keyed.
func (b *builder) constructor(value ast.Expr) ast.Expr {
	var elts []ast.Expr
	for _, f := range b.in.Decl.Fields {
		if f.IsBlank() {
			continue
		}

		v := value
		if !b.in.IsPrimary(f) {
			v = b.zero(f)
		}
		elts = append(elts, &ast.KeyValueExpr{Key: ast.NewIdent(f.Accessor().Name), Value: v})
	}
	return &ast.CompositeLit{Type: b.typeExpr(), Elts: elts}
}

// zero returns the zero value of an auxiliary field.
func (b *builder) zero(f input.Field) ast.Expr {
	typ := b.auxTypes[f.Index]

	kind := f.Zero
	if kind == typeinfo.ZeroUnknown {
		kind = zeroOf(f.Type)
	}

	switch kind {
	case typeinfo.ZeroNumber:
		return &ast.BasicLit{Kind: token.INT, Value: "0"}
	case typeinfo.ZeroString:
		return &ast.BasicLit{Kind: token.STRING, Value: `""`}
	case typeinfo.ZeroBool:
		return ast.NewIdent("false")
	case typeinfo.ZeroNil:
		return ast.NewIdent("nil")
	case typeinfo.ZeroComposite:
		return &ast.CompositeLit{Type: typ}
	}
	return &ast.StarExpr{X: &ast.CallExpr{Fun: ast.NewIdent("new"), Args: []ast.Expr{typ}}}
}

// zeroOf guesses the zero value of a type expression without type
// information. Only predeclared types and type literals are recognized.
func zeroOf(typ ast.Expr) typeinfo.ZeroKind {
	switch t := typ.(type) {
	case *ast.Ident:
		if obj, ok := types.Universe.Lookup(t.Name).(*types.TypeName); ok {
			return typeinfo.TypeOf(obj.Type()).Zero()
		}
	case *ast.ParenExpr:
		return zeroOf(t.X)
	case *ast.StarExpr, *ast.MapType, *ast.ChanType, *ast.FuncType, *ast.InterfaceType:
		return typeinfo.ZeroNil
	case *ast.ArrayType:
		if t.Len == nil {
			return typeinfo.ZeroNil
		}
		return typeinfo.ZeroComposite
	case *ast.StructType:
		return typeinfo.ZeroComposite
	}
	return typeinfo.ZeroUnknown
}

// pointerCast returns "(*T)(unsafe.Pointer(ptr))".
func (b *builder) pointerCast(ptr ast.Expr) ast.Expr {
	return &ast.CallExpr{
		Fun: &ast.ParenExpr{X: b.ptrTypeExpr()},
		Args: []ast.Expr{&ast.CallExpr{
			Fun:  &ast.SelectorExpr{X: ast.NewIdent(b.unsafeName), Sel: ast.NewIdent("Pointer")},
			Args: []ast.Expr{ptr},
		}},
	}
}

// assertion returns "var _ opaque.Trait[T, I, E] = (*T)(nil)". Infallible
// traits have no error type parameter. It returns nil for generic types.
func (b *builder) assertion(inner ast.Expr) *ast.GenDecl {
	if b.in.Decl.IsGeneric() {
		return nil
	}

	args := []ast.Expr{b.typeExpr(), inner}
	if !b.trait.IsInfallible() {
		args = append(args, b.errType)
	}

	return &ast.GenDecl{
		Tok: token.VAR,
		Specs: []ast.Spec{&ast.ValueSpec{
			Names: []*ast.Ident{ast.NewIdent("_")},
			Type: &ast.IndexListExpr{
				X:       &ast.SelectorExpr{X: ast.NewIdent(b.opaque()), Sel: ast.NewIdent(b.trait.String())},
				Indices: args,
			},
			Values: []ast.Expr{&ast.CallExpr{
				Fun:  &ast.ParenExpr{X: b.ptrTypeExpr()},
				Args: []ast.Expr{ast.NewIdent("nil")},
			}},
		}},
	}
}

// method builds a method declaration. The doc comment is dropped if the type
// hides the docs of generated methods.
func (b *builder) method(doc []string, name string, recv, params, results *ast.FieldList, body ...ast.Stmt) Method {
	if b.in.HideDocs {
		doc = nil
	}
	if params == nil {
		params = &ast.FieldList{}
	}
	return Method{
		Doc: doc,
		Decl: &ast.FuncDecl{
			Recv: recv,
			Name: ast.NewIdent(name),
			Type: &ast.FuncType{Params: params, Results: results},
			Body: block(body...),
		},
	}
}

// validatorDoc describes what happens with the validator, for doc comments.
func (b *builder) validatorDoc() string {
	if b.validator == nil {
		return "It never fails."
	}

	src := b.in.Validation.ValidatorSource()
	if strings.ContainsAny(src, "\n") || len(src) > 40 {
		return "It fails if the validator rejects the value."
	}
	return "It fails if " + src + " rejects the value."
}

func block(stmts ...ast.Stmt) *ast.BlockStmt {
	return &ast.BlockStmt{List: stmts}
}

func ret(results ...ast.Expr) *ast.ReturnStmt {
	return &ast.ReturnStmt{Results: results}
}

func addr(x ast.Expr) ast.Expr {
	return &ast.UnaryExpr{Op: token.AND, X: x}
}
