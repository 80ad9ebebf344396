package eval_test

import (
	"bytes"
	"testing"

	"github.com/junhg0211/lintre/pkg/ast"
	. "github.com/junhg0211/lintre/pkg/eval"
	"github.com/junhg0211/lintre/pkg/eval/errs"
	. "github.com/junhg0211/lintre/pkg/eval/evaltest"
	"github.com/junhg0211/lintre/pkg/parse"
)

func TestEval_Basic(t *testing.T) {
	Test(t,
		That("L x. x").Evaluates("L x. x"),
		That("").Evaluates("()"),
		That("()").Evaluates("()"),
		That("(L x. x) (L y. y)").Evaluates("L y. y"),
		// Identity application.
		That("y = L a. a; (L x. x) y").EvaluatesToVar("y"),
		// A define evaluates to its value.
		That("id = L x. x").Evaluates("L x. x"),
		That("id = L x. x; id").EvaluatesToVar("id"),
		// Definitions persist between evaluations.
		That("id = L x. x").Then("id").Evaluates("L x. x"),
	)
}

func TestEval_Currying(t *testing.T) {
	Test(t,
		That("a = L p. p; k = L x y. x; k a").Evaluates("L y. L p. p"),
		That("a = L p. p; b = L q. q; k = L x y. x; k a b").EvaluatesToVar("a"),
		That("a = L p. p; b = L q. q; k = L x y. x; ka = k a; ka b").EvaluatesToVar("a"),
		// Curried lambdas and nested lambdas behave the same.
		That("a = L p. p; b = L q. q; k = L x. L y. y; k a b").EvaluatesToVar("b"),
		// A repeated parameter is shadowed by its last occurrence.
		That("a = L p. p; b = L q. q; (L x x. x) a b").EvaluatesToVar("b"),
	)
}

func TestEval_ChurchEncodings(t *testing.T) {
	Test(t,
		That("true = L a b. a; false = L a b. b; not = L p. p false true;",
			"not (not true)").EvaluatesToVar("true"),
		That("true = L a b. a; false = L a b. b;",
			"and = L p q. p q p;",
			"and true false").EvaluatesToVar("false"),
		That("zero = L f x. x; succ = L n f x. f (n f x); succ (succ zero)").
			Evaluates("L f x. f ((L f x. f ((L f x. x) f x)) f x)"),
	)
}

func TestEval_CaptureAvoidance(t *testing.T) {
	Test(t,
		That("z = L w. w; (L x. L z. x z) z").Evaluates("L z. (L w. w) z"),
		That("z = L w. w; c = L u. u; f = (L x. L z. x z) z; f c").EvaluatesToVar("c"),
		// The free w in f must not be captured by the parameter w of h.
		That("f = L q. w; h = L x. L w. x; u = L t. t; h f u").Evaluates("L q. w"),
	)
}

func TestEval_ClosuresCaptureSnapshots(t *testing.T) {
	Test(t,
		That("a = L p. p; f = L u. a; a = L q. q; f a").Evaluates("L p. p"),
		That("a = L p. p; f = L u. a; a = L q. q; f").Evaluates("L u. L p. p"),
		// A name that was unbound when the closure was created stays unbound,
		// even when passed to a function whose environment binds it.
		That("f = L u. g; g = L a. a; k = (L x. x) f; k g").
			Throws(errs.UnboundVariable{Name: "g"}),
		That("f = L u. g; g = L a. a; (L x y. x y) f g").
			Throws(errs.UnboundVariable{Name: "g"}),
		That("f = L u. g; g = L a. a; (L x. x) f").Evaluates("L u. g"),
		That("f = L u. g; h = L x. L g. x; h f").Evaluates("L g_0. L u. g"),
	)
}

func TestEval_ScopedDefines(t *testing.T) {
	Test(t,
		That("x = L zero. zero; r = (x = L one. one; x = L two. two; x); r").
			Evaluates("L two. two"),
		That("x = L zero. zero; r = (x = L one. one; x = L two. two; x); x").
			Evaluates("L zero. zero"),
		// A trailing define gives the value of the sequence.
		That("v = (u = L b. b; d = L a. a); v").Evaluates("L a. a"),
		// Names introduced in a nested sequence are removed afterwards.
		That("(n = L a. a; n); n").Throws(errs.UnboundVariable{Name: "n"}, "n"),
		That("v = (u = L b. b; d = L a. a); d").
			Throws(errs.UnboundVariable{Name: "d"}, "d"),
		That("f = L u. (x = u; x); a = L p. p; f a; x").
			Throws(errs.UnboundVariable{Name: "x"}, "x"),
		// Definitions in a function body do not leak into the caller.
		That("f = L u. x = u; a = L p. p; f a; x").
			Throws(errs.UnboundVariable{Name: "x"}, "x"),
		// So are names defined by defines nested in its elements.
		That("a = L p. p; id = L x. x; r = (id (x = a); a); x").
			Throws(errs.UnboundVariable{Name: "x"}, "x"),
		That("(y = x = L a. a; y); x").
			Throws(errs.UnboundVariable{Name: "x"}, "x"),
		That("a = L p. p; r = (a = L q. q; id = L x. x; id (a = L s. s); a); a").
			Evaluates("L p. p"),
		// A parenthesized define only binds until the closing parenthesis.
		That("id = L x. x; id (x = L a. a); x").
			Throws(errs.UnboundVariable{Name: "x"}, "x"),
		// Bindings are restored when the sequence fails.
		That("(e = L a. a; nope)").Then("e").
			Throws(errs.UnboundVariable{Name: "e"}, "e"),
		// Closures created in the sequence keep the bindings they captured.
		That("f = (x = L a. a; L u. x); f f").Evaluates("L a. a"),
	)
}

func TestEval_Errors(t *testing.T) {
	Test(t,
		That("x").Throws(errs.UnboundVariable{Name: "x"}, "x"),
		That("() ()").Throws(errs.NotAFunction{Repr: "()"}, "() ()"),
		That("(L x. x) ()").Evaluates("()"),
		That("f = L u. nope; a = L p. p; f a").
			Throws(errs.UnboundVariable{Name: "nope"}, "nope", "f a"),
		That("(L x. x").DoesNotParse(),
	)
}

func TestEval_Divergence(t *testing.T) {
	Test(t,
		That("(L x. x x) (L x. x x)").
			Throws(errs.DivergenceDetected{Steps: 2, Cycle: true}),
		That("(L x. x x x) (L x. x x x)").
			Throws(ErrorWithType(errs.DivergenceDetected{})),
		That("(L x. x x) (L x. x x)").
			WithSetup(func(ev *Evaler) { ev.Guard = GuardConfig{MaxSteps: 100} }).
			Throws(errs.DivergenceDetected{Steps: 100}),
		// Each evaluation gets a fresh budget.
		That("id = L x. x; id id").
			Then("id id").
			WithSetup(func(ev *Evaler) { ev.Guard = GuardConfig{MaxSteps: 1} }).
			Evaluates("L x. x"),
		// Repeating a computation is not a cycle.
		That("id = L x. x; id (id (id id)); id (id id)").EvaluatesToVar("id"),
	)
}

func TestEval_DivergenceWithDefaultCeiling(t *testing.T) {
	for _, strategy := range []Strategy{StrategyEnvironment, StrategySubstitution} {
		ev := NewEvaler()
		ev.Strategy = strategy
		ev.Guard.DetectCycles = false
		_, err := ev.Eval(parse.SourceForTest("(L x. x x) (L x. x x)"), EvalCfg{})
		if Reason(err) != (errs.DivergenceDetected{Steps: DefaultMaxSteps}) {
			t.Errorf("%v: got error %v, want step ceiling exceeded", strategy, err)
		}
	}
}

func TestEval_RoundTrip(t *testing.T) {
	codes := []string{
		"L x y. x",
		"()",
		"a = L p. p; k = L x y. x; k a",
		"z = L w. w; (L x. L z. x z) z",
		"zero = L f x. x; succ = L n f x. f (n f x); succ (succ zero)",
		"f = (x = L a. a; L u. x); f",
	}
	for _, code := range codes {
		for _, strategy := range []Strategy{StrategyEnvironment, StrategySubstitution} {
			v := evalWith(t, strategy, code)
			printed := Repr(v)
			v2 := evalWith(t, strategy, printed)
			if !ast.Equal(ToExpr(v), ToExpr(v2)) {
				t.Errorf("%v: %q evaluates to %s, which evaluates to %s",
					strategy, code, printed, Repr(v2))
			}
		}
	}
}

func TestEval_StrategiesAgree(t *testing.T) {
	codes := []string{
		"a = L p. p; k = L x y. x; k a",
		"z = L w. w; (L x. L z. x z) z",
		"true = L a b. a; false = L a b. b; not = L p. p false true; not true",
	}
	for _, code := range codes {
		env := Repr(evalWith(t, StrategyEnvironment, code))
		subst := Repr(evalWith(t, StrategySubstitution, code))
		if env != subst {
			t.Errorf("%q: env strategy gives %s, subst strategy gives %s", code, env, subst)
		}
	}
}

func TestEvaler_IdentityReturnsSameClosure(t *testing.T) {
	ev := NewEvaler()
	v, err := ev.Eval(parse.SourceForTest("y = L a. a; (L x. x) y"), EvalCfg{})
	if err != nil {
		t.Fatal(err)
	}
	y, _ := ev.Global.Index("y")
	if v != y {
		t.Errorf("got %s, want the closure bound to y", Repr(v))
	}
}

func TestEvaler_EvalExpr(t *testing.T) {
	ev := NewEvaler()
	id := ast.NewLambda([]string{"x"}, ast.NewVar("x"))

	v, err := ev.EvalExpr(ast.NewApply(id, id), EvalCfg{})
	if err != nil || Repr(v) != "L x. x" {
		t.Errorf("got (%v, %v), want L x. x", v, err)
	}

	noParams := ast.NewLambda(nil, id)
	_, err = ev.EvalExpr(ast.NewApply(noParams, id), EvalCfg{})
	if _, ok := Reason(err).(errs.TooManyArguments); !ok {
		t.Errorf("got error %v, want TooManyArguments", err)
	}
	if exc, ok := err.(*Exception); !ok || exc.StackTrace != nil {
		t.Errorf("got %#v, want *Exception without stack trace", err)
	}
}

func TestEvaler_Trace(t *testing.T) {
	for _, strategy := range []Strategy{StrategyEnvironment, StrategySubstitution} {
		for _, c := range []struct {
			code string
			mode TraceMode
			want string
		}{
			{"(L x. x) (L y. y)", TraceAll, "[1] (L x. x) (L y. y)\n"},
			{"(L x. x) (L y. y)", TraceNone, ""},
			{"a = (L x. x) (L y. y); (L x. x) a", TraceLast, "[2] (L x. x) (L y. y)\n"},
			{"(L f. f (L z. z)) (L x. x)", TraceAll,
				"[1] (L f. f (L z. z)) (L x. x)\n[2]   (L x. x) (L z. z)\n"},
		} {
			ev := NewEvaler()
			ev.Strategy = strategy
			var buf bytes.Buffer
			_, err := ev.Eval(parse.SourceForTest(c.code), EvalCfg{Trace: c.mode, TraceOut: &buf})
			if err != nil {
				t.Fatal(err)
			}
			if buf.String() != c.want {
				t.Errorf("%v: trace of %q in mode %v is %q, want %q",
					strategy, c.code, c.mode, buf.String(), c.want)
			}
		}
	}
}

func TestEvaler_Check(t *testing.T) {
	ev := NewEvaler()
	if err := ev.Check(parse.SourceForTest("L x. x")); err != nil {
		t.Errorf("Check returns %v", err)
	}
	if err := ev.Check(parse.SourceForTest("L x")); parse.UnpackErrors(err) == nil {
		t.Errorf("Check returns %v, want parse error", err)
	}
	if ev.Global.Len() != 0 {
		t.Errorf("Check changed the global environment")
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []Strategy{StrategyEnvironment, StrategySubstitution} {
		got, err := ParseStrategy(s.String())
		if got != s || err != nil {
			t.Errorf("ParseStrategy(%q) = (%v, %v)", s.String(), got, err)
		}
	}
	if _, err := ParseStrategy("lazy"); err == nil {
		t.Errorf("ParseStrategy(lazy) returns no error")
	}
}

func TestParseTraceMode(t *testing.T) {
	for _, m := range []TraceMode{TraceNone, TraceLast, TraceAll} {
		got, err := ParseTraceMode(m.String())
		if got != m || err != nil {
			t.Errorf("ParseTraceMode(%q) = (%v, %v)", m.String(), got, err)
		}
	}
	if _, err := ParseTraceMode("some"); err == nil {
		t.Errorf("ParseTraceMode(some) returns no error")
	}
}

func evalWith(t *testing.T, strategy Strategy, code string) Value {
	t.Helper()
	ev := NewEvaler()
	ev.Strategy = strategy
	v, err := ev.Eval(parse.SourceForTest(code), EvalCfg{})
	if err != nil {
		t.Fatalf("%v: evaluating %q: %v", strategy, code, err)
	}
	return v
}
