package ast

import (
	"fmt"

	"github.com/junhg0211/lintre/pkg/persistent/hash"
	"golang.org/x/exp/slices"
)

// Equal reports whether two expressions have the same structure. Source
// ranges are ignored.
func Equal(a, b Expr) bool {
	switch a := a.(type) {
	case *Var:
		b, ok := b.(*Var)
		return ok && a.Name == b.Name
	case *Lambda:
		b, ok := b.(*Lambda)
		return ok && slices.Equal(a.Params, b.Params) && Equal(a.Body, b.Body)
	case *Apply:
		b, ok := b.(*Apply)
		return ok && Equal(a.Fn, b.Fn) && Equal(a.Arg, b.Arg)
	case *Define:
		b, ok := b.(*Define)
		return ok && a.Name == b.Name && Equal(a.Value, b.Value)
	case *Sequence:
		b, ok := b.(*Sequence)
		return ok && slices.EqualFunc(a.Exprs, b.Exprs, Equal)
	case nil:
		return b == nil
	default:
		panic(fmt.Sprintf("unknown expression type %T", a))
	}
}

const (
	tagVar uint32 = iota + 1
	tagLambda
	tagApply
	tagDefine
	tagSequence
)

// Hash returns a structural hash of an expression. Expressions that are
// Equal have the same hash.
func Hash(e Expr) uint32 {
	switch e := e.(type) {
	case *Var:
		return hash.DJB(tagVar, hash.String(e.Name))
	case *Lambda:
		return hash.DJB(tagLambda, hash.Strings(e.Params), Hash(e.Body))
	case *Apply:
		return hash.DJB(tagApply, Hash(e.Fn), Hash(e.Arg))
	case *Define:
		return hash.DJB(tagDefine, hash.String(e.Name), Hash(e.Value))
	case *Sequence:
		h := hash.DJBCombine(hash.DJBInit, tagSequence)
		for _, elem := range e.Exprs {
			h = hash.DJBCombine(h, Hash(elem))
		}
		return h
	case nil:
		return 0
	default:
		panic(fmt.Sprintf("unknown expression type %T", e))
	}
}
