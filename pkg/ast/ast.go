// Package ast defines the expression tree of the lambda calculus evaluated by
// lintre, together with structural operations on it.
package ast

import (
	"github.com/junhg0211/lintre/pkg/diag"
	"github.com/samber/lo"
)

// Expr is an expression. It is implemented by *Var, *Lambda, *Apply, *Define
// and *Sequence.
//
// Expression trees are never shared between owners that may modify them;
// operations that transform a tree always build new nodes.
type Expr interface {
	diag.Ranger
	isExpr()
}

// Var is a reference to a name.
type Var struct {
	diag.Ranging
	Name string
}

// Lambda is a function of one or more parameters. Params is never empty.
type Lambda struct {
	diag.Ranging
	Params []string
	Body   Expr
}

// Apply applies Fn to a single argument. Applying to several arguments is
// expressed by nesting, with the innermost Apply holding the first argument.
type Apply struct {
	diag.Ranging
	Fn  Expr
	Arg Expr
}

// Define binds Name to the value of Value in the current environment.
type Define struct {
	diag.Ranging
	Name  string
	Value Expr
}

// Sequence evaluates its elements in order. The empty Sequence evaluates to
// the unit value.
type Sequence struct {
	diag.Ranging
	Exprs []Expr
}

func (*Var) isExpr()      {}
func (*Lambda) isExpr()   {}
func (*Apply) isExpr()    {}
func (*Define) isExpr()   {}
func (*Sequence) isExpr() {}

// NewVar builds a Var with no source range.
func NewVar(name string) *Var {
	return &Var{Name: name}
}

// NewLambda builds a Lambda with no source range.
func NewLambda(params []string, body Expr) *Lambda {
	return &Lambda{Params: params, Body: body}
}

// NewApply builds the curried application of fn to args, with no source
// ranges. It returns fn itself when args is empty.
func NewApply(fn Expr, args ...Expr) Expr {
	for _, arg := range args {
		fn = &Apply{Fn: fn, Arg: arg}
	}
	return fn
}

// NewDefine builds a Define with no source range.
func NewDefine(name string, value Expr) *Define {
	return &Define{Name: name, Value: value}
}

// NewSequence builds a Sequence with no source range.
func NewSequence(exprs ...Expr) *Sequence {
	return &Sequence{Exprs: exprs}
}

// Args flattens a curried application into its head and arguments.
func Args(e Expr) (Expr, []Expr) {
	var args []Expr
	for {
		app, ok := e.(*Apply)
		if !ok {
			break
		}
		args = append(args, app.Arg)
		e = app.Fn
	}
	return e, lo.Reverse(args)
}

// NodeAt returns the innermost node of e whose range contains the byte
// position pos, or nil if there is none.
func NodeAt(e Expr, pos int) Expr {
	path := PathAt(e, pos)
	if len(path) == 0 {
		return nil
	}
	return path[len(path)-1]
}

// PathAt returns the nodes whose ranges contain the byte position pos, from e
// down to the innermost one. It returns nil if e does not contain pos.
func PathAt(e Expr, pos int) []Expr {
	if e == nil {
		return nil
	}
	r := e.Range()
	if pos < r.From || pos > r.To {
		return nil
	}
	for _, child := range children(e) {
		if path := PathAt(child, pos); path != nil {
			return append([]Expr{e}, path...)
		}
	}
	return []Expr{e}
}

func children(e Expr) []Expr {
	switch e := e.(type) {
	case *Lambda:
		return []Expr{e.Body}
	case *Apply:
		return []Expr{e.Fn, e.Arg}
	case *Define:
		return []Expr{e.Value}
	case *Sequence:
		return e.Exprs
	default:
		return nil
	}
}
