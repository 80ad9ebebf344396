// Package progtest provides a framework for testing subprograms.
//
// The entry point for the framework is the Test function, which accepts a
// *testing.T, the Program implementation under test, and any number of test
// cases.
//
// Test cases are constructed using the ThatLintre function, followed by
// method calls that add additional information to it.
//
// Example:
//
//	Test(t, someProgram,
//	    ThatLintre("-c", "L x. x").WritesStdout("L x. x\n"),
//	    ThatLintre("-c", "x").
//	        ExitsWith(2).WritesStderrContaining("unbound variable"),
//	)
package progtest

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/junhg0211/lintre/pkg/must"
	"github.com/junhg0211/lintre/pkg/prog"
)

// Case is a test case that can be used in Test.
type Case struct {
	args  []string
	stdin string
	want  result
}

type result struct {
	exitCode int
	stdout   output
	stderr   output
}

type output struct {
	content string
	partial bool
}

func (o output) String() string {
	if o.partial {
		return "text containing " + o.content
	}
	return o.content
}

// ThatLintre returns a new Case with the specified CLI arguments.
//
// The new Case expects the program run to exit with 0, and write nothing to
// stdout or stderr.
//
// When combined with subsequent method calls, a test case reads like English.
// For example, a test for the fact that "lintre -c x" exits with 2 reads like:
//
//	ThatLintre("-c", "x").ExitsWith(2)
func ThatLintre(args ...string) Case {
	return Case{args: args}
}

// WithStdin returns an altered Case that feeds the given string to the
// program's stdin.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// DoesNothing returns c itself. It is useful to mark tests that otherwise
// don't have any expectations, for example:
//
//	ThatLintre("-cpuprofile", "cpuprof").DoesNothing()
func (c Case) DoesNothing() Case {
	return c
}

// ExitsWith returns an altered Case that expects the program run to return
// with the given exit code.
func (c Case) ExitsWith(code int) Case {
	c.want.exitCode = code
	return c
}

// WritesStdout returns an altered Case that expects the program run to write
// exactly the given string to stdout.
func (c Case) WritesStdout(s string) Case {
	c.want.stdout = output{content: s}
	return c
}

// WritesStdoutContaining returns an altered Case that expects the program run
// to write output to stdout that contains the given text as a substring.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.stdout = output{content: s, partial: true}
	return c
}

// WritesStderr returns an altered Case that expects the program run to write
// exactly the given string to stderr.
func (c Case) WritesStderr(s string) Case {
	c.want.stderr = output{content: s}
	return c
}

// WritesStderrContaining returns an altered Case that expects the program run
// to write output to stderr that contains the given text as a substring.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.stderr = output{content: s, partial: true}
	return c
}

// Test runs test cases against a given program.
func Test(t *testing.T, p prog.Program, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args, " "), func(t *testing.T) {
			t.Helper()
			r := run(p, c.stdin, c.args...)
			if r.exitCode != c.want.exitCode {
				t.Errorf("got exit code %v, want %v", r.exitCode, c.want.exitCode)
			}
			if !matchOutput(r.stdout.content, c.want.stdout) {
				t.Errorf("got stdout %q, want %s", r.stdout.content, c.want.stdout)
			}
			if !matchOutput(r.stderr.content, c.want.stderr) {
				t.Errorf("got stderr %q, want %s", r.stderr.content, c.want.stderr)
			}
		})
	}
}

// Run runs a Program with the given arguments and an empty stdin. It returns
// the exit code and the output written to stdout and stderr.
func Run(p prog.Program, args ...string) (exit int, stdout, stderr string) {
	r := run(p, "", args...)
	return r.exitCode, r.stdout.content, r.stderr.content
}

func run(p prog.Program, stdin string, args ...string) result {
	r0, w0 := must.Pipe()
	// Write stdin in the background, so that programs that don't read it
	// don't block the write.
	go func() {
		w0.WriteString(stdin)
		w0.Close()
	}()
	// Read stdout and stderr concurrently, so that programs that write more
	// than a pipe can buffer don't deadlock.
	r1, w1 := must.Pipe()
	r2, w2 := must.Pipe()
	stdout := readAllAsync(r1)
	stderr := readAllAsync(r2)

	exitCode := prog.Run([3]*os.File{r0, w1, w2}, append([]string{"lintre"}, args...), p)
	r0.Close()
	w1.Close()
	w2.Close()
	return result{exitCode, output{content: <-stdout}, output{content: <-stderr}}
}

func readAllAsync(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() {
		ch <- string(must.OK1(io.ReadAll(r)))
		r.Close()
	}()
	return ch
}

func matchOutput(got string, want output) bool {
	if want.partial {
		return strings.Contains(got, want.content)
	}
	return got == want.content
}
