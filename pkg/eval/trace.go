package eval

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/junhg0211/lintre/pkg/ast"
	"github.com/junhg0211/lintre/pkg/sys"
)

// TraceMode controls which reductions are written to the trace output.
type TraceMode int

// Possible values of TraceMode.
const (
	// TraceNone disables tracing.
	TraceNone TraceMode = iota
	// TraceLast traces the reductions of the last top-level statement only.
	TraceLast
	// TraceAll traces every reduction.
	TraceAll
)

var traceModeNames = []string{"none", "last", "all"}

func (m TraceMode) String() string {
	if 0 <= m && int(m) < len(traceModeNames) {
		return traceModeNames[m]
	}
	return fmt.Sprintf("TraceMode(%d)", int(m))
}

// ParseTraceMode parses the name of a TraceMode.
func ParseTraceMode(s string) (TraceMode, error) {
	for i, name := range traceModeNames {
		if s == name {
			return TraceMode(i), nil
		}
	}
	return TraceNone, fmt.Errorf("invalid trace mode %q, should be none, last or all", s)
}

// tracer writes one line per full reduction.
type tracer struct {
	w     io.Writer
	subst *Substituter
	// Lines are cut to this many runes when positive.
	width int
}

func newTracer(w io.Writer) *tracer {
	// Rendering uses its own Substituter so that tracing does not change the
	// names generated by the evaluation.
	t := &tracer{w: w, subst: NewSubstituter()}
	if f, ok := w.(*os.File); ok && sys.IsATTY(f.Fd()) {
		_, t.width = sys.WinSize(f)
	}
	return t
}

func (t *tracer) reduction(step, depth int, fn *Closure, arg Value) {
	redex := ast.NewApply(t.subst.ToExpr(fn), t.subst.ToExpr(arg))
	line := fmt.Sprintf("[%d] %s%s", step, strings.Repeat("  ", depth), ast.String(redex))
	if t.width > 0 {
		line = truncate(line, t.width)
	}
	fmt.Fprintln(t.w, line)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
