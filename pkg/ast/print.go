package ast

import (
	"strings"

	"github.com/samber/lo"
)

// String returns source text for e that parses back to an Equal expression.
// A Sequence with exactly one element that is not a Define is the exception:
// it prints like its only element wrapped in parentheses, which parses as the
// element itself.
func String(e Expr) string {
	var sb strings.Builder
	write(&sb, e)
	return sb.String()
}

func write(sb *strings.Builder, e Expr) {
	switch e := e.(type) {
	case *Var:
		sb.WriteString(e.Name)
	case *Lambda:
		sb.WriteString("L ")
		sb.WriteString(strings.Join(e.Params, " "))
		sb.WriteString(". ")
		write(sb, e.Body)
	case *Apply:
		if _, ok := e.Fn.(*Apply); ok {
			write(sb, e.Fn)
		} else {
			writeAtom(sb, e.Fn)
		}
		sb.WriteByte(' ')
		writeAtom(sb, e.Arg)
	case *Define:
		sb.WriteString(e.Name)
		sb.WriteString(" = ")
		write(sb, e.Value)
	case *Sequence:
		sb.WriteByte('(')
		sb.WriteString(strings.Join(
			lo.Map(e.Exprs, func(e Expr, _ int) string { return String(e) }), "; "))
		sb.WriteByte(')')
	}
}

// writeAtom writes e so that it can be used as an operand of an application.
func writeAtom(sb *strings.Builder, e Expr) {
	switch e.(type) {
	case *Var, *Sequence:
		write(sb, e)
	default:
		sb.WriteByte('(')
		write(sb, e)
		sb.WriteByte(')')
	}
}
