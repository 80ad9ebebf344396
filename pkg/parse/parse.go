// Package parse implements the parser of lintre source code.
//
// The grammar is:
//
//	document    := [expr (';' expr)*]
//	expr        := 'L' word+ '.' expr | word '=' expr | application
//	application := atom+
//	atom        := word | '(' document ')'
//
// A word is a run of letters, digits and underscores, and the lone word "L"
// is the lambda keyword. Application is left-associative. Whitespace,
// including newlines, separates tokens, and '#' starts a comment that extends
// to the end of the line.
package parse

import (
	"github.com/junhg0211/lintre/pkg/ast"
	"github.com/junhg0211/lintre/pkg/diag"
)

// Source describes a piece of source code.
type Source struct {
	Name string
	Code string
}

// SourceForTest returns a Source with the specified code, suitable for use in
// tests.
func SourceForTest(code string) Source {
	return Source{Name: "[test]", Code: code}
}

// Parse parses the given source. A document with exactly one expression
// parses to that expression, and any other document to an *ast.Sequence.
//
// If the error is not nil, it can be unpacked with UnpackErrors. The returned
// expression is then a partial result.
func Parse(src Source) (ast.Expr, error) {
	ps := &parser{srcName: src.Name, src: src.Code}
	e := ps.document()
	ps.done()
	return e, diag.PackErrors(ps.errors)
}

// Errors.
var (
	errShouldBeExpr     = newError("", "variable", "lambda", "define", "'('")
	errShouldBeParam    = newError("", "parameter name")
	errShouldBeDot      = newError("", "'.'")
	errShouldBeRParen   = newError("", "')'")
	errLambdaAsArgument = newError("lambda used as an argument must be parenthesized")
	errDefineAsArgument = newError("define used as an argument must be parenthesized")
	errKeywordAsName    = newError("L is the lambda keyword and cannot be defined")
)

const lambdaKeyword = "L"

func (ps *parser) document() ast.Expr {
	begin := ps.pos
	ps.skipSpaces()
	var exprs []ast.Expr
	if startsExpr(ps.peek()) {
		exprs = append(exprs, ps.expr())
		for {
			ps.skipSpaces()
			if ps.peek() != ';' {
				break
			}
			ps.next()
			exprs = append(exprs, ps.expr())
		}
	}
	if len(exprs) == 1 {
		return exprs[0]
	}
	return &ast.Sequence{Ranging: diag.Ranging{From: begin, To: ps.pos}, Exprs: exprs}
}

func startsExpr(r rune) bool {
	return isWordRune(r) || r == '('
}

func (ps *parser) expr() ast.Expr {
	ps.skipSpaces()
	begin := ps.pos
	if !startsExpr(ps.peek()) {
		ps.error(errShouldBeExpr)
		return &ast.Sequence{Ranging: diag.PointRanging(begin)}
	}
	if ps.peek() != '(' {
		name := ps.word()
		ps.skipSpaces()
		if ps.peek() == '=' {
			if name == lambdaKeyword {
				ps.errorp(diag.Ranging{From: begin, To: begin + len(name)}, errKeywordAsName)
			}
			ps.next()
			value := ps.expr()
			return &ast.Define{
				Ranging: diag.Ranging{From: begin, To: value.Range().To},
				Name:    name, Value: value}
		}
		if name == lambdaKeyword {
			return ps.lambda(begin)
		}
		// Not a define; parse the word again as the head of an application.
		ps.pos = begin
	}
	return ps.application()
}

// lambda parses the rest of a lambda after the keyword.
func (ps *parser) lambda(begin int) ast.Expr {
	var params []string
	for {
		ps.skipSpaces()
		if !isWordRune(ps.peek()) {
			break
		}
		paramBegin := ps.pos
		param := ps.word()
		if param == lambdaKeyword {
			ps.errorp(diag.Ranging{From: paramBegin, To: ps.pos}, errShouldBeParam)
			continue
		}
		params = append(params, param)
	}
	if len(params) == 0 {
		ps.error(errShouldBeParam)
	}
	if ps.peek() == '.' {
		ps.next()
	} else {
		ps.error(errShouldBeDot)
	}
	body := ps.expr()
	return &ast.Lambda{
		Ranging: diag.Ranging{From: begin, To: body.Range().To},
		Params:  params, Body: body}
}

func (ps *parser) application() ast.Expr {
	begin := ps.pos
	fn := ps.atom()
	for {
		ps.skipSpaces()
		if !startsExpr(ps.peek()) {
			break
		}
		arg := ps.atom()
		fn = &ast.Apply{Ranging: diag.Ranging{From: begin, To: ps.pos}, Fn: fn, Arg: arg}
	}
	return fn
}

func (ps *parser) atom() ast.Expr {
	begin := ps.pos
	if ps.peek() == '(' {
		ps.next()
		e := ps.document()
		ps.skipSpaces()
		if ps.peek() == ')' {
			ps.next()
		} else {
			ps.error(errShouldBeRParen)
		}
		switch e := e.(type) {
		case *ast.Sequence:
			e.Ranging = diag.Ranging{From: begin, To: ps.pos}
		case *ast.Define:
			// A parenthesized define is a sequence of its own, so that its
			// binding ends at the closing parenthesis.
			return &ast.Sequence{
				Ranging: diag.Ranging{From: begin, To: ps.pos}, Exprs: []ast.Expr{e}}
		}
		return e
	}
	name := ps.word()
	if name == lambdaKeyword {
		ps.errorp(diag.Ranging{From: begin, To: ps.pos}, errLambdaAsArgument)
		return ps.lambda(begin)
	}
	v := &ast.Var{Ranging: diag.Ranging{From: begin, To: ps.pos}, Name: name}
	ps.skipSpaces()
	if ps.peek() == '=' {
		ps.errorp(diag.Ranging{From: begin, To: ps.pos + 1}, errDefineAsArgument)
		ps.next()
		value := ps.expr()
		return &ast.Define{
			Ranging: diag.Ranging{From: begin, To: value.Range().To},
			Name:    name, Value: value}
	}
	return v
}
