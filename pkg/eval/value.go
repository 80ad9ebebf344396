package eval

import (
	"github.com/junhg0211/lintre/pkg/ast"
	"github.com/junhg0211/lintre/pkg/parse"
	"github.com/junhg0211/lintre/pkg/persistent/hash"
	"golang.org/x/exp/slices"
)

// Value is the result of evaluating an expression. It is implemented by
// *Closure and the Unit value.
type Value interface {
	isValue()
}

// Closure is a function value. Env is a snapshot of the environment in which
// the function was created, extended with the arguments of any partial
// applications.
type Closure struct {
	Params []string
	Body   ast.Expr
	Env    Env

	// Source the body was parsed from, used for stack traces.
	src parse.Source
	// Cached structural hash. Closures are immutable once created.
	hash   uint32
	hashed bool
}

type unitValue struct{}

// Unit is the value of expressions that produce nothing, such as the empty
// sequence.
var Unit Value = unitValue{}

func (*Closure) isValue()  {}
func (unitValue) isValue() {}

// Equal reports whether two values are structurally equal, including the
// environments captured by closures.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case *Closure:
		b, ok := b.(*Closure)
		if !ok {
			return false
		}
		if a == b {
			return true
		}
		return Hash(a) == Hash(b) && slices.Equal(a.Params, b.Params) &&
			ast.Equal(a.Body, b.Body) && a.Env.Equal(b.Env)
	case unitValue:
		return b == Unit
	default:
		return a == nil && b == nil
	}
}

const (
	tagUnit uint32 = iota + 1
	tagClosure
)

// Hash returns a structural hash of a value consistent with Equal.
func Hash(v Value) uint32 {
	switch v := v.(type) {
	case *Closure:
		if !v.hashed {
			v.hash = hash.DJB(tagClosure,
				hash.Strings(v.Params), ast.Hash(v.Body), v.Env.Hash())
			v.hashed = true
		}
		return v.hash
	case unitValue:
		return tagUnit
	default:
		return 0
	}
}

// SameFunction reports whether two values denote the same function,
// regardless of which environments they captured. Two closures are the same
// function when converting them to expressions gives Equal results.
func SameFunction(a, b Value) bool {
	if Equal(a, b) {
		return true
	}
	ca, ok := a.(*Closure)
	if !ok {
		return false
	}
	cb, ok := b.(*Closure)
	if !ok || !slices.Equal(ca.Params, cb.Params) {
		return false
	}
	return ast.Equal(ToExpr(ca), ToExpr(cb))
}

// ToExpr converts a value back to an expression, using a fresh Substituter.
// See (*Substituter).ToExpr.
func ToExpr(v Value) ast.Expr {
	return NewSubstituter().ToExpr(v)
}

// Repr returns the source representation of a value.
func Repr(v Value) string {
	return ast.String(ToExpr(v))
}
