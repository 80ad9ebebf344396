package ast

import "golang.org/x/exp/slices"

// FreeVars returns the names that occur free in e, sorted and without
// duplicates.
//
// Lambda parameters are bound in the body. A Define binds its name for the
// elements of the enclosing Sequence that follow it, but not in its own
// right-hand side.
func FreeVars(e Expr) []string {
	var names []string
	collectFree(e, map[string]int{}, &names)
	slices.Sort(names)
	return slices.Compact(names)
}

// IsFree reports whether name occurs free in e.
func IsFree(name string, e Expr) bool {
	_, found := slices.BinarySearch(FreeVars(e), name)
	return found
}

func collectFree(e Expr, bound map[string]int, names *[]string) {
	switch e := e.(type) {
	case *Var:
		if bound[e.Name] == 0 {
			*names = append(*names, e.Name)
		}
	case *Lambda:
		for _, p := range e.Params {
			bound[p]++
		}
		collectFree(e.Body, bound, names)
		for _, p := range e.Params {
			bound[p]--
		}
	case *Apply:
		collectFree(e.Fn, bound, names)
		collectFree(e.Arg, bound, names)
	case *Define:
		collectFree(e.Value, bound, names)
	case *Sequence:
		var defined []string
		for _, elem := range e.Exprs {
			collectFree(elem, bound, names)
			if def, ok := elem.(*Define); ok {
				bound[def.Name]++
				defined = append(defined, def.Name)
			}
		}
		for _, name := range defined {
			bound[name]--
		}
	}
}
