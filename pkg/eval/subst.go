package eval

import (
	"strconv"
	"strings"

	"github.com/junhg0211/lintre/pkg/ast"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Fresh generates names that have not been generated before by the same
// Fresh. The zero value is ready to use.
type Fresh struct {
	next int
}

// Name returns a name of the form base_N that is not in avoid. N comes from a
// counter that only ever increases, so a name is never generated twice. Any
// _N suffix already on base is dropped first.
func (f *Fresh) Name(base string, avoid []string) string {
	base = trimNumberSuffix(base)
	for {
		name := base + "_" + strconv.Itoa(f.next)
		f.next++
		if !slices.Contains(avoid, name) {
			return name
		}
	}
}

func trimNumberSuffix(name string) string {
	i := strings.LastIndexByte(name, '_')
	if i <= 0 || i == len(name)-1 {
		return name
	}
	for _, r := range name[i+1:] {
		if r < '0' || r > '9' {
			return name
		}
	}
	return name[:i]
}

// Substituter performs capture-avoiding substitution. Each Evaler owns one, so
// that names generated while renaming binders are unique within it.
type Substituter struct {
	fresh Fresh
}

// NewSubstituter creates a new Substituter.
func NewSubstituter() *Substituter {
	return &Substituter{}
}

// Substitute replaces every free occurrence of name in e with repl. Binders in
// e that would capture a free variable of repl are renamed. Unchanged subtrees
// of e are shared with the result.
func (s *Substituter) Substitute(e ast.Expr, name string, repl ast.Expr) ast.Expr {
	return s.subst(e, name, repl, ast.FreeVars(repl))
}

// rename replaces free occurrences of old with new.
func (s *Substituter) rename(e ast.Expr, old, new string) ast.Expr {
	return s.subst(e, old, ast.NewVar(new), []string{new})
}

func (s *Substituter) subst(e ast.Expr, name string, repl ast.Expr, replFree []string) ast.Expr {
	switch e := e.(type) {
	case *ast.Var:
		if e.Name == name {
			return repl
		}
		return e
	case *ast.Apply:
		return &ast.Apply{Ranging: e.Ranging,
			Fn:  s.subst(e.Fn, name, repl, replFree),
			Arg: s.subst(e.Arg, name, repl, replFree)}
	case *ast.Lambda:
		if slices.Contains(e.Params, name) || !ast.IsFree(name, e.Body) {
			return e
		}
		params := slices.Clone(e.Params)
		body := e.Body
		var avoid []string
		for i, p := range params {
			if !slices.Contains(replFree, p) {
				continue
			}
			if avoid == nil {
				avoid = lo.Flatten([][]string{ast.Names(e), replFree, {name}})
			}
			fresh := s.fresh.Name(p, avoid)
			avoid = append(avoid, fresh)
			params[i] = fresh
			if !slices.Contains(params[i+1:], p) {
				// Only the last of repeated parameters is visible in the body.
				body = s.rename(body, p, fresh)
			}
		}
		return &ast.Lambda{Ranging: e.Ranging,
			Params: params, Body: s.subst(body, name, repl, replFree)}
	case *ast.Define:
		return &ast.Define{Ranging: e.Ranging,
			Name: e.Name, Value: s.subst(e.Value, name, repl, replFree)}
	case *ast.Sequence:
		exprs := slices.Clone(e.Exprs)
		var avoid []string
		for i := range exprs {
			exprs[i] = s.subst(exprs[i], name, repl, replFree)
			def, ok := exprs[i].(*ast.Define)
			if !ok {
				continue
			}
			if def.Name == name {
				// Shadowed for the rest of the sequence.
				break
			}
			rest := &ast.Sequence{Exprs: exprs[i+1:]}
			if slices.Contains(replFree, def.Name) && ast.IsFree(name, rest) {
				if avoid == nil {
					avoid = lo.Flatten([][]string{ast.Names(e), replFree, {name}})
				}
				fresh := s.fresh.Name(def.Name, avoid)
				avoid = append(avoid, fresh)
				exprs[i] = &ast.Define{Ranging: def.Ranging, Name: fresh, Value: def.Value}
				copy(exprs[i+1:], s.rename(rest, def.Name, fresh).(*ast.Sequence).Exprs)
			}
		}
		return &ast.Sequence{Ranging: e.Ranging, Exprs: exprs}
	default:
		return e
	}
}

// ToExpr converts a value back to an expression.
//
// Unit becomes the empty sequence. A closure becomes a lambda with its
// remaining parameters, in which every free variable bound in the captured
// environment is replaced by the conversion of its value. The result is
// therefore closed whenever the closure does not refer to unbound names.
// Source ranges are not preserved.
func (s *Substituter) ToExpr(v Value) ast.Expr {
	return s.toExpr(v, false)
}

// argExpr is like ToExpr, but also turns the free variables the captured
// environment does not bind into hidden names. Hidden names cannot be bound
// by any binder, so the result stays unbound wherever it is substituted.
func (s *Substituter) argExpr(v Value) ast.Expr {
	return s.toExpr(v, true)
}

func (s *Substituter) toExpr(v Value, hide bool) ast.Expr {
	c, ok := v.(*Closure)
	if !ok {
		return ast.NewSequence()
	}
	var lambda ast.Expr = &ast.Lambda{
		Params: slices.Clone(c.Params), Body: ast.StripRanges(c.Body)}
	var names []string
	var repls []ast.Expr
	for _, name := range ast.FreeVars(lambda) {
		switch v, bound := c.Env.Index(name); {
		case bound:
			names = append(names, name)
			repls = append(repls, s.toExpr(v, hide))
		case hide && !isHidden(name):
			names = append(names, name)
			repls = append(repls, ast.NewVar(name+hiddenSuffix))
		case !hide && isHidden(name):
			names = append(names, name)
			repls = append(repls, ast.NewVar(visibleName(name)))
		}
	}
	return s.substAll(lambda, names, repls)
}

// Marks a hidden name. Words never contain it.
const hiddenSuffix = "#"

func isHidden(name string) bool { return strings.HasSuffix(name, hiddenSuffix) }

// visibleName returns the name a hidden name was made from.
func visibleName(name string) string { return strings.TrimSuffix(name, hiddenSuffix) }

// substAll substitutes repls[i] for names[i] in e simultaneously, so that
// free variables of one replacement are not affected by the others.
func (s *Substituter) substAll(e ast.Expr, names []string, repls []ast.Expr) ast.Expr {
	switch len(names) {
	case 0:
		return e
	case 1:
		return s.Substitute(e, names[0], repls[0])
	}
	// Move every name out of the way first.
	avoid := lo.Flatten(append([][]string{ast.Names(e), names},
		lo.Map(repls, func(repl ast.Expr, _ int) []string { return ast.FreeVars(repl) })...))
	temps := make([]string, len(names))
	for i, name := range names {
		temps[i] = s.fresh.Name(name, avoid)
		avoid = append(avoid, temps[i])
		e = s.rename(e, name, temps[i])
	}
	for i, temp := range temps {
		e = s.Substitute(e, temp, repls[i])
	}
	return e
}
