// Package pysrc is a minimal Python source toolkit for stub generation: a
// tokenizer and recursive-descent parser covering the statement and
// expression subset that appears in generated .pyi text, plus name
// collection and offset-based identifier rewriting.
//
// It is not a general Python parser. Anything outside the stub grammar
// (imports, annotated assignments, def headers, class bodies, docstrings,
// the annotation expression language) is a syntax error, which the
// conversion engine treats as a recoverable degraded mode.
package pysrc

import (
	"strings"

	"github.com/sbvh/pyxstub/errors"
)

type parser struct {
	toks []Token
	i    int
}

func (p *parser) cur() Token { return p.toks[p.i] }

func (p *parser) at(k TokenKind) bool { return p.toks[p.i].Kind == k }

func (p *parser) peekKind(off int) TokenKind {
	if p.i+off >= len(p.toks) {
		return TokEOF
	}
	return p.toks[p.i+off].Kind
}

func (p *parser) advance() Token {
	t := p.toks[p.i]
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return t
}

func (p *parser) expect(k TokenKind) (Token, error) {
	if !p.at(k) {
		return Token{}, p.errorf("expected %s, found %s", k, p.cur())
	}
	return p.advance(), nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	args = append([]interface{}{p.cur().Line}, args...)
	return errors.Wrapf(errors.ErrSyntax, "line %d: "+format, args...)
}

// ParseModule parses a complete stub body (a sequence of statements).
func ParseModule(src string) (*ModuleNode, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	mod := &ModuleNode{}
	for !p.at(TokEOF) {
		if p.at(TokNewline) {
			p.advance()
			continue
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		mod.Body = append(mod.Body, stmt)
	}
	return mod, nil
}

// ParseExpr parses a single annotation fragment as an expression (a bare
// comma list parses as a tuple).
func ParseExpr(src string) (Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.at(TokEOF) {
		return nil, p.errorf("empty expression")
	}
	e, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if p.at(TokNewline) {
		p.advance()
	}
	if !p.at(TokEOF) {
		return nil, p.errorf("unexpected trailing %s", p.cur())
	}
	return e, nil
}

// SignatureSource wraps a bare "name(params) -> ret" header line in the
// smallest valid function statement. Validating a candidate signature is
// done by parsing this wrapped form.
func SignatureSource(line string) string {
	return "def " + line + ": pass"
}

// ParseSignature validates a candidate signature line such as
// "foo(x: int) -> str". The returned FunctionDef's Name offsets point into
// SignatureSource(line).
func ParseSignature(line string) (*FunctionDef, error) {
	if strings.ContainsAny(line, "\n\r") {
		return nil, errors.Wrap(errors.ErrSyntax, "signature spans multiple lines")
	}
	mod, err := ParseModule(SignatureSource(line))
	if err != nil {
		return nil, err
	}
	if len(mod.Body) != 1 {
		return nil, errors.Wrap(errors.ErrSyntax, "signature is not a single definition")
	}
	fn, ok := mod.Body[0].(*FunctionDef)
	if !ok {
		return nil, errors.Wrap(errors.ErrSyntax, "signature is not a function header")
	}
	return fn, nil
}

// ---- statements ----

func (p *parser) parseStmt() (Stmt, error) {
	switch p.cur().Kind {
	case TokImport:
		return p.parseImport()
	case TokFrom:
		return p.parseImportFrom()
	case TokDef:
		return p.parseFunctionDef()
	case TokClass:
		return p.parseClassDef()
	default:
		stmt, err := p.parseSimpleStmt()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokNewline); err != nil {
			return nil, err
		}
		return stmt, nil
	}
}

func (p *parser) parseSimpleStmt() (Stmt, error) {
	if p.at(TokPass) {
		p.advance()
		return &PassStmt{}, nil
	}
	if p.at(TokIdent) && p.peekKind(1) == TokColon {
		target := p.advance()
		p.advance() // colon
		ann, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt := &AnnAssign{
			Target:     &Name{ID: target.Text, Start: target.Start, End: target.End},
			Annotation: ann,
		}
		if p.at(TokAssign) {
			p.advance()
			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			stmt.Value = val
		}
		return stmt, nil
	}
	e, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	return &ExprStmt{Value: e}, nil
}

func (p *parser) parseDottedName() (string, error) {
	first, err := p.expect(TokIdent)
	if err != nil {
		return "", err
	}
	parts := []string{first.Text}
	for p.at(TokDot) {
		p.advance()
		next, err := p.expect(TokIdent)
		if err != nil {
			return "", err
		}
		parts = append(parts, next.Text)
	}
	return strings.Join(parts, "."), nil
}

func (p *parser) parseImport() (Stmt, error) {
	p.advance() // import
	module, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}
	stmt := &ImportStmt{Module: module}
	if p.at(TokAs) {
		p.advance()
		alias, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}
		stmt.Alias = alias.Text
	}
	if _, err := p.expect(TokNewline); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) parseImportFrom() (Stmt, error) {
	p.advance() // from
	module, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokImport); err != nil {
		return nil, err
	}
	stmt := &ImportFromStmt{Module: module}
	for {
		name, err := p.expect(TokIdent)
		if err != nil {
			return nil, err
		}
		imported := ImportedName{Name: name.Text}
		if p.at(TokAs) {
			p.advance()
			alias, err := p.expect(TokIdent)
			if err != nil {
				return nil, err
			}
			imported.Alias = alias.Text
		}
		stmt.Names = append(stmt.Names, imported)
		if !p.at(TokComma) {
			break
		}
		p.advance()
	}
	if _, err := p.expect(TokNewline); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) parseFunctionDef() (Stmt, error) {
	p.advance() // def
	name, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLParen); err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokRParen); err != nil {
		return nil, err
	}
	fn := &FunctionDef{Name: name.Text, Params: params}
	if p.at(TokArrow) {
		p.advance()
		returns, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		fn.Returns = returns
	}
	if _, err := p.expect(TokColon); err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func (p *parser) parseParams() ([]*Param, error) {
	var params []*Param
	for !p.at(TokRParen) {
		param := &Param{}
		switch p.cur().Kind {
		case TokStar:
			p.advance()
			if p.at(TokIdent) {
				param.Star = ParamStarArgs
				param.Name = p.advance().Text
			} else {
				param.Star = ParamBareStar
			}
		case TokDoubleStar:
			p.advance()
			name, err := p.expect(TokIdent)
			if err != nil {
				return nil, err
			}
			param.Star = ParamKwargs
			param.Name = name.Text
		case TokSlash:
			p.advance()
			param.Star = ParamSlash
		case TokIdent:
			param.Name = p.advance().Text
		default:
			return nil, p.errorf("expected parameter, found %s", p.cur())
		}

		if param.Name != "" && p.at(TokColon) {
			p.advance()
			ann, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			param.Annotation = ann
		}
		if param.Star == ParamPlain && p.at(TokAssign) {
			p.advance()
			def, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			param.Default = def
		}
		params = append(params, param)

		if !p.at(TokComma) {
			break
		}
		p.advance()
	}
	return params, nil
}

func (p *parser) parseClassDef() (Stmt, error) {
	p.advance() // class
	name, err := p.expect(TokIdent)
	if err != nil {
		return nil, err
	}
	cls := &ClassDef{Name: name.Text}
	if p.at(TokLParen) {
		p.advance()
		for !p.at(TokRParen) {
			base, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			cls.Bases = append(cls.Bases, base)
			if !p.at(TokComma) {
				break
			}
			p.advance()
		}
		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokColon); err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	cls.Body = body
	return cls, nil
}

// parseSuite parses either an indented block or a same-line simple statement.
func (p *parser) parseSuite() ([]Stmt, error) {
	if p.at(TokNewline) {
		p.advance()
		if _, err := p.expect(TokIndent); err != nil {
			return nil, err
		}
		var body []Stmt
		for !p.at(TokDedent) {
			if p.at(TokNewline) {
				p.advance()
				continue
			}
			if p.at(TokEOF) {
				return nil, p.errorf("unexpected end of input in block")
			}
			stmt, err := p.parseStmt()
			if err != nil {
				return nil, err
			}
			body = append(body, stmt)
		}
		p.advance() // dedent
		return body, nil
	}
	stmt, err := p.parseSimpleStmt()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokNewline); err != nil {
		return nil, err
	}
	return []Stmt{stmt}, nil
}

// ---- expressions ----

func binaryPrec(k TokenKind) int {
	switch k {
	case TokPipe:
		return 1
	case TokPlus, TokMinus:
		return 2
	default:
		return 0
	}
}

// parseExprList parses a comma-separated expression list; more than one
// element (or a trailing comma) yields a tuple.
func (p *parser) parseExprList() (Expr, error) {
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	elts := []Expr{first}
	sawComma := false
	for p.at(TokComma) {
		p.advance()
		sawComma = true
		if p.exprListDone() {
			break
		}
		next, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, next)
	}
	if len(elts) == 1 && !sawComma {
		return first, nil
	}
	return &TupleExpr{Elts: elts}, nil
}

func (p *parser) exprListDone() bool {
	switch p.cur().Kind {
	case TokRParen, TokRBracket, TokRBrace, TokNewline, TokColon, TokAssign, TokEOF:
		return true
	}
	return false
}

func (p *parser) parseExpr() (Expr, error) {
	return p.parseBinary(1)
}

func (p *parser) parseBinary(minPrec int) (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec := binaryPrec(p.cur().Kind)
		if prec == 0 || prec < minPrec {
			return left, nil
		}
		op := p.advance()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &BinOp{Left: left, Op: op.Kind.String(), Right: right}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	if p.at(TokMinus) || p.at(TokPlus) {
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: op.Kind.String(), Operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case TokDot:
			p.advance()
			attr, err := p.expect(TokIdent)
			if err != nil {
				return nil, err
			}
			e = &Attribute{Value: e, Attr: attr.Text}
		case TokLParen:
			p.advance()
			call := &Call{Func: e}
			if err := p.parseCallArgs(call); err != nil {
				return nil, err
			}
			e = call
		case TokLBracket:
			p.advance()
			idx, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokRBracket); err != nil {
				return nil, err
			}
			e = &Subscript{Value: e, Index: idx}
		default:
			return e, nil
		}
	}
}

func (p *parser) parseCallArgs(call *Call) error {
	for !p.at(TokRParen) {
		switch {
		case p.at(TokStar):
			p.advance()
			v, err := p.parseExpr()
			if err != nil {
				return err
			}
			call.Args = append(call.Args, &Starred{Value: v})
		case p.at(TokDoubleStar):
			p.advance()
			v, err := p.parseExpr()
			if err != nil {
				return err
			}
			call.Args = append(call.Args, &Starred{Value: v, Double: true})
		case p.at(TokIdent) && p.peekKind(1) == TokAssign:
			name := p.advance()
			p.advance() // '='
			v, err := p.parseExpr()
			if err != nil {
				return err
			}
			call.Keywords = append(call.Keywords, KeywordArg{Name: name.Text, Value: v})
		default:
			v, err := p.parseExpr()
			if err != nil {
				return err
			}
			call.Args = append(call.Args, v)
		}
		if !p.at(TokComma) {
			break
		}
		p.advance()
	}
	_, err := p.expect(TokRParen)
	return err
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case TokIdent:
		p.advance()
		return &Name{ID: tok.Text, Start: tok.Start, End: tok.End}, nil
	case TokNumber:
		p.advance()
		return &NumberLit{Raw: tok.Text}, nil
	case TokString:
		p.advance()
		return &StringLit{Raw: tok.Text}, nil
	case TokNone, TokTrue, TokFalse:
		p.advance()
		return &ConstLit{Raw: tok.Text}, nil
	case TokEllipsis:
		p.advance()
		return &EllipsisLit{}, nil
	case TokStar:
		p.advance()
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &Starred{Value: v}, nil
	case TokLParen:
		p.advance()
		if p.at(TokRParen) {
			p.advance()
			return &TupleExpr{}, nil
		}
		e, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		return e, nil
	case TokLBracket:
		p.advance()
		list := &ListExpr{}
		for !p.at(TokRBracket) {
			elt, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			list.Elts = append(list.Elts, elt)
			if !p.at(TokComma) {
				break
			}
			p.advance()
		}
		if _, err := p.expect(TokRBracket); err != nil {
			return nil, err
		}
		return list, nil
	case TokLBrace:
		p.advance()
		dict := &DictExpr{}
		for !p.at(TokRBrace) {
			key, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokColon); err != nil {
				return nil, err
			}
			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			dict.Keys = append(dict.Keys, key)
			dict.Values = append(dict.Values, val)
			if !p.at(TokComma) {
				break
			}
			p.advance()
		}
		if _, err := p.expect(TokRBrace); err != nil {
			return nil, err
		}
		return dict, nil
	default:
		return nil, p.errorf("unexpected token %s in expression", tok)
	}
}
