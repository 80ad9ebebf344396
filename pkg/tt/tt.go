// Package tt supports table-driven tests with little boilerplate.
//
// A typical use of this package looks like this:
//
//	tt.Test(t, tt.Fn(strings.Repeat).Named("Repeat"),
//		tt.It("repeats a string").Args("x", 3).Rets("xxx"),
//	)
package tt

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Case represents a test case. It is created by the It or Args function, and
// offers setters that augment and return itself; those calls can be chained
// like It(...).Args(...).Rets(...).
type Case struct {
	desc         string
	args         []any
	retsMatchers [][]any
}

// It returns a Case with the given text description.
func It(desc string) *Case {
	return &Case{desc: desc}
}

// Args returns a new Case with the given arguments.
func Args(args ...any) *Case {
	return &Case{args: args}
}

// Args modifies the Case to pass the given arguments. It returns the receiver.
func (c *Case) Args(args ...any) *Case {
	c.args = args
	return c
}

// Rets modifies the Case to expect the given return values. It returns the
// receiver.
//
// The arguments may implement the [Matcher] interface, in which case its Match
// method is called with the actual return value. Otherwise, [cmp.Equal] with
// [CommonCmpOpt] is used to determine matches.
//
// Calling Rets more than once adds alternative sets of acceptable return
// values.
func (c *Case) Rets(matchers ...any) *Case {
	c.retsMatchers = append(c.retsMatchers, matchers)
	return c
}

// FnToTest describes a function to test.
type FnToTest struct {
	name    string
	body    any
	argsFmt string
	retsFmt string
}

// Fn makes a new FnToTest with the given function body.
func Fn(body any) *FnToTest {
	return &FnToTest{body: body}
}

// Named sets the name of the function, used in test error messages. It
// returns the receiver.
func (fn *FnToTest) Named(name string) *FnToTest {
	fn.name = name
	return fn
}

// ArgsFmt sets the string for formatting arguments in test error messages, and
// returns fn itself.
func (fn *FnToTest) ArgsFmt(s string) *FnToTest {
	fn.argsFmt = s
	return fn
}

// RetsFmt sets the string for formatting return values in test error messages,
// and returns fn itself.
func (fn *FnToTest) RetsFmt(s string) *FnToTest {
	fn.retsFmt = s
	return fn
}

// T is the interface for accessing testing.T.
type T interface {
	Helper()
	Errorf(format string, args ...any)
}

// CommonCmpOpt is the [cmp.Option] used for comparing return values that are
// not [Matcher]s. It allows comparing unexported fields.
var CommonCmpOpt = cmp.Exporter(func(reflect.Type) bool { return true })

// Test tests a function against test cases.
func Test(t T, fn *FnToTest, tests ...*Case) {
	t.Helper()
	for _, test := range tests {
		rets := call(fn.body, test.args)
		if !matchAny(test.retsMatchers, rets) {
			var args string
			if fn.argsFmt == "" {
				args = sprintCommaDelimited(test.args...)
			} else {
				args = fmt.Sprintf(fn.argsFmt, test.args...)
			}
			var diff strings.Builder
			for _, retsMatcher := range test.retsMatchers {
				if fn.retsFmt == "" {
					diff.WriteString(cmp.Diff(retsMatcher, rets, CommonCmpOpt))
				} else {
					fmt.Fprintf(&diff, "-%s\n+%s\n",
						fmt.Sprintf(fn.retsFmt, retsMatcher...),
						fmt.Sprintf(fn.retsFmt, rets...))
				}
			}
			if test.desc == "" {
				t.Errorf("%s(%s) returns (-want +got):\n%s", fn.name, args, diff.String())
			} else {
				t.Errorf("%s (%s(%s)) returns (-want +got):\n%s",
					test.desc, fn.name, args, diff.String())
			}
		}
	}
}

// Matcher wraps the Match method.
type Matcher interface {
	// Match reports whether a return value is considered a match. The argument
	// is of type RetValue so that it cannot be implemented accidentally.
	Match(RetValue) bool
}

// RetValue is an empty interface used in the Matcher interface.
type RetValue any

// Any is a Matcher that matches any value.
var Any Matcher = anyMatcher{}

type anyMatcher struct{}

func (anyMatcher) Match(RetValue) bool { return true }

func matchAny(alternatives [][]any, rets []any) bool {
	for _, matchers := range alternatives {
		if match(matchers, rets) {
			return true
		}
	}
	return false
}

func match(matchers, actual []any) bool {
	if len(matchers) != len(actual) {
		return false
	}
	for i, matcher := range matchers {
		if !matchOne(matcher, actual[i]) {
			return false
		}
	}
	return true
}

func matchOne(m, a any) bool {
	if m, ok := m.(Matcher); ok {
		return m.Match(a)
	}
	return cmp.Equal(m, a, CommonCmpOpt)
}

func sprintCommaDelimited(args ...any) string {
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprint(&b, arg)
	}
	return b.String()
}

func call(fn any, args []any) []any {
	argsReflect := make([]reflect.Value, len(args))
	fnType := reflect.TypeOf(fn)
	for i, arg := range args {
		if arg == nil {
			// reflect.ValueOf(nil) returns a zero Value, which cannot be
			// passed to Call. Use the zero value of the parameter type.
			argsReflect[i] = reflect.Zero(paramType(fnType, i))
		} else {
			argsReflect[i] = reflect.ValueOf(arg)
		}
	}
	retsReflect := reflect.ValueOf(fn).Call(argsReflect)
	rets := make([]any, len(retsReflect))
	for i, retReflect := range retsReflect {
		rets[i] = retReflect.Interface()
	}
	return rets
}

func paramType(fnType reflect.Type, i int) reflect.Type {
	if fnType.IsVariadic() && i >= fnType.NumIn()-1 {
		return fnType.In(fnType.NumIn() - 1).Elem()
	}
	return fnType.In(i)
}
