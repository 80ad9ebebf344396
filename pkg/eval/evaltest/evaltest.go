// Package evaltest provides a framework for testing evaluation of lintre
// code.
//
// The entry point for the framework is the Test function, which accepts a
// *testing.T and any number of test cases.
//
// Test cases are constructed using the That function, followed by method calls
// that add additional information to it.
//
// Example:
//
//	Test(t,
//	    That("(L x. x) (L y. y)").Evaluates("L y. y"),
//	    That("x").Throws(errs.UnboundVariable{Name: "x"}, "x"))
//
// Every case is run once for each evaluation strategy, in a subtest named
// after the strategy.
package evaltest

import (
	"reflect"
	"strings"
	"testing"

	"github.com/junhg0211/lintre/pkg/ast"
	"github.com/junhg0211/lintre/pkg/eval"
	"github.com/junhg0211/lintre/pkg/parse"
)

// Case is a test case that can be used in Test.
type Case struct {
	codes      []string
	setup      func(ev *eval.Evaler)
	strategies []eval.Strategy
	want       result
}

type result struct {
	// Source of an expression the value must convert to.
	Expr *string
	// Name of a global variable whose value must be the same function as the
	// value.
	Var *string

	ParseError bool
	Exception  error
}

// That returns a new Case with the specified source code. Multiple arguments
// are joined with newlines. To specify multiple pieces of code that are
// evaluated separately, use the Then method to append code pieces.
//
// When combined with subsequent method calls, a test case reads like English.
// For example, a test for the fact that the identity function returns its
// argument reads:
//
//	That("id = L x. x; y = L y. y; id y").EvaluatesToVar("y")
func That(lines ...string) Case {
	return Case{codes: []string{strings.Join(lines, "\n")}}
}

// Then returns a new Case that evaluates the given code in addition, with the
// same Evaler. Multiple arguments are joined with newlines. The value and
// error of the last piece are checked.
func (c Case) Then(lines ...string) Case {
	c.codes = append(c.codes, strings.Join(lines, "\n"))
	return c
}

// WithSetup returns a new Case with the given setup function executed on the
// Evaler before the code is evaluated.
func (c Case) WithSetup(f func(*eval.Evaler)) Case {
	c.setup = f
	return c
}

// InStrategies returns a new Case that only runs with the given strategies.
func (c Case) InStrategies(strategies ...eval.Strategy) Case {
	c.strategies = strategies
	return c
}

// Evaluates returns an altered Case that requires the value of the code to
// convert to an expression that is structurally equal to the given code.
func (c Case) Evaluates(code string) Case {
	c.want.Expr = &code
	return c
}

// EvaluatesToVar returns an altered Case that requires the value of the code
// to be the same function as the value of the given global variable
// afterwards. See eval.SameFunction.
func (c Case) EvaluatesToVar(name string) Case {
	c.want.Var = &name
	return c
}

// Throws returns an altered Case that requires the code to throw an exception
// with the given reason. The reason supports special matcher values
// constructed by functions like ErrorWithType.
//
// If at least one stacktrace string is given, the exception must also have a
// stacktrace matching the given source fragments, frame by frame (innermost
// frame first). If no stacktrace string is given, the stack trace of the
// exception is not checked.
func (c Case) Throws(reason error, stacks ...string) Case {
	c.want.Exception = exc{reason, stacks}
	return c
}

// DoesNotParse returns an altered Case that requires the code to fail
// parsing.
func (c Case) DoesNotParse() Case {
	c.want.ParseError = true
	return c
}

var allStrategies = []eval.Strategy{eval.StrategyEnvironment, eval.StrategySubstitution}

// Test runs test cases. For each test case and strategy, a new Evaler is
// created with NewEvaler.
func Test(t *testing.T, tests ...Case) {
	t.Helper()
	TestWithSetup(t, func(*eval.Evaler) {}, tests...)
}

// TestWithSetup runs test cases. For each test case and strategy, a new Evaler
// is created with NewEvaler and passed to the setup function.
func TestWithSetup(t *testing.T, setup func(*eval.Evaler), tests ...Case) {
	t.Helper()
	for _, tc := range tests {
		strategies := tc.strategies
		if len(strategies) == 0 {
			strategies = allStrategies
		}
		t.Run(strings.Join(tc.codes, "\n"), func(t *testing.T) {
			for _, strategy := range strategies {
				t.Run(strategy.String(), func(t *testing.T) {
					t.Helper()
					ev := eval.NewEvaler()
					ev.Strategy = strategy
					setup(ev)
					if tc.setup != nil {
						tc.setup(ev)
					}
					check(t, ev, tc)
				})
			}
		})
	}
}

func check(t *testing.T, ev *eval.Evaler, tc Case) {
	t.Helper()
	var v eval.Value
	var err error
	for _, code := range tc.codes {
		v, err = ev.Eval(parse.Source{Name: "[test]", Code: code}, eval.EvalCfg{})
	}

	if isParseError := parse.UnpackErrors(err) != nil; isParseError != tc.want.ParseError {
		t.Fatalf("got parse error %v, want parse error = %v", err, tc.want.ParseError)
	}
	if tc.want.ParseError {
		return
	}
	if !matchErr(tc.want.Exception, err) {
		t.Errorf("unexpected exception")
		if exc, ok := err.(*eval.Exception); ok {
			t.Logf("got: %T: %v", exc.Reason, exc)
			t.Logf("stack trace: %#v", getStackTexts(exc.StackTrace))
		} else {
			t.Logf("got: %T: %v", err, err)
		}
		t.Errorf("want: %v", tc.want.Exception)
	}
	if err != nil {
		return
	}
	if tc.want.Expr != nil {
		want, parseErr := parse.Parse(parse.Source{Name: "[want]", Code: *tc.want.Expr})
		if parseErr != nil {
			t.Fatalf("bad test: cannot parse %q: %v", *tc.want.Expr, parseErr)
		}
		if got := eval.ToExpr(v); !ast.Equal(got, want) {
			t.Errorf("got value %s, want %s", ast.String(got), ast.String(want))
		}
	}
	if tc.want.Var != nil {
		want, ok := ev.Global.Index(*tc.want.Var)
		if !ok {
			t.Fatalf("bad test: variable %s is not bound", *tc.want.Var)
		}
		if !eval.SameFunction(v, want) {
			t.Errorf("got value %s, want value of %s, %s",
				eval.Repr(v), *tc.want.Var, eval.Repr(want))
		}
	}
}

func matchErr(want, got error) bool {
	if want == nil {
		return got == nil
	}
	if matcher, ok := want.(errorMatcher); ok {
		return matcher.matchError(got)
	}
	return reflect.DeepEqual(want, got)
}
