package ast

import "golang.org/x/exp/slices"

// Names returns every name that appears in e, free or bound, sorted and
// without duplicates.
func Names(e Expr) []string {
	var names []string
	collectNames(e, &names)
	slices.Sort(names)
	return slices.Compact(names)
}

func collectNames(e Expr, names *[]string) {
	switch e := e.(type) {
	case *Var:
		*names = append(*names, e.Name)
	case *Lambda:
		*names = append(*names, e.Params...)
	case *Define:
		*names = append(*names, e.Name)
	}
	for _, child := range children(e) {
		collectNames(child, names)
	}
}

// StripRanges returns a deep copy of e with all source ranges cleared.
func StripRanges(e Expr) Expr {
	switch e := e.(type) {
	case *Var:
		return &Var{Name: e.Name}
	case *Lambda:
		return &Lambda{Params: slices.Clone(e.Params), Body: StripRanges(e.Body)}
	case *Apply:
		return &Apply{Fn: StripRanges(e.Fn), Arg: StripRanges(e.Arg)}
	case *Define:
		return &Define{Name: e.Name, Value: StripRanges(e.Value)}
	case *Sequence:
		exprs := make([]Expr, len(e.Exprs))
		for i, elem := range e.Exprs {
			exprs[i] = StripRanges(elem)
		}
		return &Sequence{Exprs: exprs}
	default:
		return e
	}
}
