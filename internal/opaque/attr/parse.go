package attr

import (
	"fmt"
	"go/ast"
	"go/scanner"
	"go/token"
	"strings"
)

// Parse parses the body of an annotation, which is the text after "@". base
// is the position of the first byte of src. It may be token.NoPos, then the
// parsed nodes have no positions.
func Parse(src string, base token.Pos) (Meta, error) {
	p := newParser(src, base)
	m := p.parseMeta()
	if p.err == nil && p.tok != token.EOF {
		p.errorf("unexpected %s after annotation", p.desc())
	}
	if p.err != nil {
		return nil, p.err
	}
	return m, nil
}

type metaParser struct {
	sc   scanner.Scanner
	file *token.File
	base token.Pos
	err  error

	// current token
	pos token.Pos
	off int
	tok token.Token
	lit string
}

func newParser(src string, base token.Pos) *metaParser {
	p := &metaParser{base: base}
	p.file = token.NewFileSet().AddFile("", -1, len(src))
	p.sc.Init(p.file, []byte(src), func(pos token.Position, msg string) {
		if p.err == nil {
			p.err = fmt.Errorf("%d: %s", pos.Offset, msg)
		}
	}, 0)
	p.next()
	return p
}

// next advances to the next token. Automatic semicolons are reported as EOF
// because an annotation is always a single line.
func (p *metaParser) next() {
	pos, tok, lit := p.sc.Scan()
	if tok == token.SEMICOLON && lit == "\n" {
		tok = token.EOF
	}
	p.off = p.file.Offset(pos)
	p.pos = p.at(p.off)
	p.tok = tok
	p.lit = lit
}

// at converts an offset in the annotation body to a position in the source
// file.
func (p *metaParser) at(off int) token.Pos {
	if !p.base.IsValid() {
		return token.NoPos
	}
	return p.base + token.Pos(off)
}

func (p *metaParser) desc() string {
	if p.lit != "" && p.tok != token.EOF {
		return fmt.Sprintf("%s %q", p.tok, p.lit)
	}
	return p.tok.String()
}

func (p *metaParser) errorf(format string, args ...any) {
	if p.err == nil {
		p.err = fmt.Errorf("%d: %s", p.off, fmt.Sprintf(format, args...))
	}
}

func (p *metaParser) expect(tok token.Token) token.Pos {
	pos := p.pos
	if p.tok != tok {
		p.errorf("expected %s, found %s", tok, p.desc())
	}
	p.next()
	return pos
}

func (p *metaParser) parseIdent() *ast.Ident {
	id := &ast.Ident{NamePos: p.pos, Name: "_"}
	if p.tok == token.IDENT {
		id.Name = p.lit
	}
	p.expect(token.IDENT)
	return id
}

func (p *metaParser) parsePath() *Path {
	path := &Path{Segments: []*ast.Ident{p.parseIdent()}}
	for p.err == nil && p.tok == token.COLON {
		// "::" is scanned as two adjacent colons.
		first := p.off
		p.next()
		if p.tok != token.COLON || p.off != first+1 {
			p.errorf("expected \"::\", found %s", p.desc())
			break
		}
		p.next()
		path.Segments = append(path.Segments, p.parseIdent())
	}
	return path
}

func (p *metaParser) parseMeta() Meta {
	path := p.parsePath()
	if p.err != nil {
		return nil
	}

	switch p.tok {
	case token.LPAREN:
		list := &List{Path: path, Lparen: p.pos}
		p.next()
		for p.err == nil && p.tok != token.RPAREN && p.tok != token.EOF {
			list.Nested = append(list.Nested, p.parseNested())
			if p.tok != token.COMMA {
				break
			}
			p.next()
		}
		list.Rparen = p.expect(token.RPAREN)
		return list

	case token.ASSIGN:
		nv := &NameValue{Path: path, Assign: p.pos}
		p.next()
		nv.Value = p.parseLit()
		return nv
	}

	return path
}

func (p *metaParser) parseNested() Nested {
	if isLit(p.tok) {
		return Nested{Lit: p.parseLit()}
	}
	return Nested{Meta: p.parseMeta()}
}

func (p *metaParser) parseLit() *ast.BasicLit {
	lit := &ast.BasicLit{ValuePos: p.pos, Kind: p.tok, Value: p.lit}
	if !isLit(p.tok) {
		p.errorf("expected literal, found %s", p.desc())
	}
	p.next()
	return lit
}

func isLit(tok token.Token) bool {
	switch tok {
	case token.INT, token.FLOAT, token.IMAG, token.CHAR, token.STRING:
		return true
	}
	return false
}

// Collect parses annotations in the given comment groups in order. Comments
// that are not annotations, and annotations that fail to parse, are ignored.
func Collect(groups ...*ast.CommentGroup) []Meta {
	var metas []Meta
	for _, group := range groups {
		if group == nil {
			continue
		}
		for _, c := range group.List {
			body, off, ok := cutAnnotation(c.Text)
			if !ok {
				continue
			}
			m, err := Parse(body, c.Slash+token.Pos(off))
			if err != nil {
				continue
			}
			metas = append(metas, m)
		}
	}
	return metas
}

// cutAnnotation returns the annotation body of a comment and its offset in
// the comment.
func cutAnnotation(text string) (string, int, bool) {
	body, ok := strings.CutPrefix(text, "//")
	if !ok {
		return "", 0, false
	}
	off := 2
	if rest, ok := strings.CutPrefix(body, " "); ok {
		body = rest
		off++
	}
	body, ok = strings.CutPrefix(body, "@")
	if !ok {
		return "", 0, false
	}
	off++
	return body, off, true
}
