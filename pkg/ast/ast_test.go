package ast

import (
	"testing"

	"github.com/junhg0211/lintre/pkg/diag"
	"github.com/junhg0211/lintre/pkg/tt"
)

var (
	x  = NewVar("x")
	y  = NewVar("y")
	f  = NewVar("f")
	id = NewLambda([]string{"x"}, x)
)

func TestEqual(t *testing.T) {
	tt.Test(t, tt.Fn(Equal).Named("Equal"),
		tt.Args(x, NewVar("x")).Rets(true),
		tt.Args(x, y).Rets(false),
		tt.It("ignores source ranges").
			Args(&Var{Ranging: diag.Ranging{From: 1, To: 2}, Name: "x"}, x).
			Rets(true),
		tt.Args(id, NewLambda([]string{"x"}, NewVar("x"))).Rets(true),
		tt.Args(id, NewLambda([]string{"y"}, y)).Rets(false),
		tt.Args(NewLambda([]string{"x", "y"}, x), NewLambda([]string{"x"}, x)).Rets(false),
		tt.Args(NewApply(f, x), NewApply(f, x)).Rets(true),
		tt.Args(NewApply(f, x), NewApply(x, f)).Rets(false),
		tt.Args(NewDefine("a", x), NewDefine("a", x)).Rets(true),
		tt.Args(NewDefine("a", x), NewDefine("b", x)).Rets(false),
		tt.Args(NewSequence(x, y), NewSequence(x, y)).Rets(true),
		tt.Args(NewSequence(x, y), NewSequence(x)).Rets(false),
		tt.Args(NewSequence(), NewSequence()).Rets(true),
		tt.Args(x, NewSequence(x)).Rets(false),
	)
}

func TestHash(t *testing.T) {
	pairs := [][2]Expr{
		{x, &Var{Ranging: diag.Ranging{From: 3, To: 4}, Name: "x"}},
		{NewApply(id, y), NewApply(NewLambda([]string{"x"}, NewVar("x")), NewVar("y"))},
		{NewSequence(NewDefine("a", id), NewVar("a")),
			NewSequence(NewDefine("a", id), NewVar("a"))},
	}
	for _, pair := range pairs {
		if Hash(pair[0]) != Hash(pair[1]) {
			t.Errorf("Hash(%s) != Hash(%s)", String(pair[0]), String(pair[1]))
		}
	}
	if Hash(NewApply(f, x)) == Hash(NewApply(x, f)) {
		t.Errorf("Hash does not depend on the order of children")
	}
}

func TestFreeVars(t *testing.T) {
	tt.Test(t, tt.Fn(FreeVars).Named("FreeVars"),
		tt.Args(x).Rets([]string{"x"}),
		tt.Args(id).Rets([]string(nil)),
		tt.Args(NewLambda([]string{"x"}, NewApply(x, y, f))).Rets([]string{"f", "y"}),
		tt.It("deduplicates").
			Args(NewApply(x, x, y, x)).Rets([]string{"x", "y"}),
		tt.It("Define does not bind its name in its own value").
			Args(NewDefine("x", x)).Rets([]string{"x"}),
		tt.It("Define binds its name for later elements of a sequence").
			Args(NewSequence(NewVar("a"), NewDefine("a", y), NewVar("a"))).
			Rets([]string{"a", "y"}),
		tt.It("Define does not bind outside its sequence").
			Args(NewApply(NewSequence(NewDefine("a", y)), NewVar("a"))).
			Rets([]string{"a", "y"}),
	)
}

func TestIsFree(t *testing.T) {
	tt.Test(t, tt.Fn(IsFree).Named("IsFree"),
		tt.Args("y", NewLambda([]string{"x"}, y)).Rets(true),
		tt.Args("x", NewLambda([]string{"x"}, y)).Rets(false),
	)
}

func TestString(t *testing.T) {
	tt.Test(t, tt.Fn(String).Named("String"),
		tt.Args(x).Rets("x"),
		tt.Args(NewLambda([]string{"x", "y"}, x)).Rets("L x y. x"),
		tt.Args(NewApply(f, x, y)).Rets("f x y"),
		tt.Args(NewApply(f, NewApply(x, y))).Rets("f (x y)"),
		tt.Args(NewApply(id, id)).Rets("(L x. x) (L x. x)"),
		tt.Args(NewLambda([]string{"f"}, NewApply(f, x))).Rets("L f. f x"),
		tt.Args(NewDefine("i", id)).Rets("i = L x. x"),
		tt.Args(NewApply(NewDefine("i", id), x)).Rets("(i = L x. x) x"),
		tt.Args(NewSequence(NewDefine("i", id), NewApply(NewVar("i"), x))).
			Rets("(i = L x. x; i x)"),
		tt.Args(NewSequence()).Rets("()"),
		tt.Args(NewApply(f, NewSequence())).Rets("f ()"),
	)
}

func TestArgs(t *testing.T) {
	head, args := Args(NewApply(f, x, y))
	if !Equal(head, f) || len(args) != 2 || !Equal(args[0], x) || !Equal(args[1], y) {
		t.Errorf("Args(f x y) = %s, %v", String(head), args)
	}
	head, args = Args(x)
	if head != x || len(args) != 0 {
		t.Errorf("Args(x) = %s, %v", String(head), args)
	}
}

func TestNodeAt(t *testing.T) {
	// f (x)
	inner := &Var{Ranging: diag.Ranging{From: 3, To: 4}, Name: "x"}
	outer := &Var{Ranging: diag.Ranging{From: 0, To: 1}, Name: "f"}
	app := &Apply{Ranging: diag.Ranging{From: 0, To: 5}, Fn: outer, Arg: inner}

	tt.Test(t, tt.Fn(NodeAt).Named("NodeAt"),
		tt.Args(app, 0).Rets(outer),
		tt.Args(app, 3).Rets(inner),
		tt.Args(app, 2).Rets(app),
		tt.Args(app, 6).Rets(Expr(nil)),
	)
	tt.Test(t, tt.Fn(PathAt).Named("PathAt"),
		tt.Args(app, 3).Rets([]Expr{app, inner}),
		tt.Args(app, 2).Rets([]Expr{app}),
		tt.Args(app, 6).Rets([]Expr(nil)),
	)
}

func TestNames(t *testing.T) {
	tt.Test(t, tt.Fn(Names).Named("Names"),
		tt.Args(NewSequence(
			NewDefine("d", NewLambda([]string{"p", "q"}, NewApply(f, x))),
			NewVar("d"))).
			Rets([]string{"d", "f", "p", "q", "x"}),
	)
}

func TestStripRanges(t *testing.T) {
	ranged := &Apply{
		Ranging: diag.Ranging{From: 0, To: 3},
		Fn:      &Var{Ranging: diag.Ranging{From: 0, To: 1}, Name: "f"},
		Arg:     &Var{Ranging: diag.Ranging{From: 2, To: 3}, Name: "x"},
	}
	stripped := StripRanges(ranged)
	if !Equal(stripped, ranged) {
		t.Errorf("StripRanges changed the structure: %s", String(stripped))
	}
	for _, node := range []Expr{stripped, stripped.(*Apply).Fn, stripped.(*Apply).Arg} {
		if node.Range() != (diag.Ranging{}) {
			t.Errorf("StripRanges left range %v on %s", node.Range(), String(node))
		}
	}
}
