// Package eval evaluates lambda calculus expressions.
//
// Expressions evaluate to values: closures, or the unit value. Applying a
// closure to fewer arguments than it has parameters gives a new closure that
// waits for the rest; applying it to its last argument reduces its body.
// Every evaluation is bounded by a divergence guard.
package eval

import (
	"fmt"
	"io"

	"github.com/junhg0211/lintre/pkg/ast"
	"github.com/junhg0211/lintre/pkg/diag"
	"github.com/junhg0211/lintre/pkg/eval/errs"
	"github.com/junhg0211/lintre/pkg/logutil"
	"github.com/junhg0211/lintre/pkg/parse"
	"golang.org/x/exp/slices"
)

var logger = logutil.GetLogger("[eval] ")

// Strategy is the way arguments are bound to parameters.
type Strategy int

// Possible values of Strategy.
const (
	// StrategyEnvironment binds the parameter in a copy of the closure's
	// environment.
	StrategyEnvironment Strategy = iota
	// StrategySubstitution substitutes the argument, converted back to an
	// expression, into the closure's body.
	StrategySubstitution
)

var strategyNames = []string{"env", "subst"}

func (s Strategy) String() string {
	if 0 <= s && int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy parses the name of a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	if i := slices.Index(strategyNames, s); i != -1 {
		return Strategy(i), nil
	}
	return StrategyEnvironment, fmt.Errorf("invalid strategy %q, should be env or subst", s)
}

// Evaler evaluates expressions and maintains the global environment between
// evaluations. It is not safe for concurrent use.
type Evaler struct {
	// Global is the environment top-level statements are evaluated in.
	// Definitions made by top-level statements persist in it.
	Global Env
	// Strategy is the way arguments are bound.
	Strategy Strategy
	// Guard configures the divergence guard. Every evaluation gets a fresh
	// guard with this configuration.
	Guard GuardConfig

	subst *Substituter
}

// NewEvaler creates a new Evaler with an empty global environment.
func NewEvaler() *Evaler {
	return &Evaler{Guard: DefaultGuardConfig(), subst: NewSubstituter()}
}

// EvalCfg keeps configuration for (*Evaler).Eval.
type EvalCfg struct {
	// Trace selects the reductions to write to TraceOut.
	Trace TraceMode
	// Destination of the trace. Tracing is disabled when nil.
	TraceOut io.Writer
}

// Eval parses and evaluates the given source. Parse errors are returned
// as-is; evaluation errors have type *Exception.
func (ev *Evaler) Eval(src parse.Source, cfg EvalCfg) (Value, error) {
	e, err := parse.Parse(src)
	if err != nil {
		return nil, err
	}
	return ev.eval(src, e, cfg)
}

// EvalExpr evaluates an expression that does not come from parsing source
// code. Errors have type *Exception but carry no source contexts.
func (ev *Evaler) EvalExpr(e ast.Expr, cfg EvalCfg) (Value, error) {
	return ev.eval(parse.Source{}, e, cfg)
}

// Check parses the given source without evaluating it.
func (ev *Evaler) Check(src parse.Source) error {
	_, err := parse.Parse(src)
	return err
}

func (ev *Evaler) eval(src parse.Source, e ast.Expr, cfg EvalCfg) (Value, error) {
	fm := &frame{ev: ev, env: ev.Global, src: src, guard: NewGuard(ev.Guard)}
	defer func() { ev.Global = fm.env }()

	// A root sequence is a list of top-level statements, whose definitions
	// persist.
	stmts := []ast.Expr{e}
	if seq, ok := e.(*ast.Sequence); ok {
		stmts = seq.Exprs
	}
	var v Value = Unit
	for i, stmt := range stmts {
		fm.tracer = nil
		if cfg.TraceOut != nil &&
			(cfg.Trace == TraceAll || cfg.Trace == TraceLast && i == len(stmts)-1) {
			fm.tracer = newTracer(cfg.TraceOut)
		}
		var err error
		v, err = fm.eval(stmt)
		if err != nil {
			logger.Printf("evaluation failed after %d steps: %v", fm.guard.Steps(), err)
			return nil, err
		}
	}
	logger.Printf("evaluation finished after %d steps", fm.guard.Steps())
	return v, nil
}

// frame holds the state of one evaluation.
type frame struct {
	ev  *Evaler
	env Env
	// Source of the code being evaluated.
	src       parse.Source
	guard     *Guard
	tracer    *tracer
	depth     int
	traceback *StackTrace
}

func (fm *frame) eval(e ast.Expr) (Value, error) {
	switch e := e.(type) {
	case *ast.Var:
		if v, ok := fm.env.Index(e.Name); ok {
			return v, nil
		}
		return nil, fm.errorp(e, errs.UnboundVariable{Name: visibleName(e.Name)})
	case *ast.Lambda:
		return &Closure{Params: e.Params, Body: e.Body, Env: fm.env, src: fm.src}, nil
	case *ast.Apply:
		fnValue, err := fm.eval(e.Fn)
		if err != nil {
			return nil, err
		}
		fn, ok := fnValue.(*Closure)
		if !ok {
			return nil, fm.errorp(e, errs.NotAFunction{Repr: Repr(fnValue)})
		}
		arg, err := fm.eval(e.Arg)
		if err != nil {
			return nil, err
		}
		return fm.apply(fn, arg, e)
	case *ast.Define:
		v, err := fm.eval(e.Value)
		if err != nil {
			return nil, err
		}
		fm.env = fm.env.Assoc(e.Name, v)
		return v, nil
	case *ast.Sequence:
		return fm.evalSequence(e)
	default:
		panic(fmt.Sprintf("unknown expression type %T", e))
	}
}

func (fm *frame) apply(fn *Closure, arg Value, site ast.Expr) (Value, error) {
	if len(fn.Params) == 0 {
		return nil, fm.errorp(site, errs.TooManyArguments{Repr: Repr(fn)})
	}
	param, rest, body, env := fn.Params[0], fn.Params[1:], fn.Body, fn.Env
	if fm.ev.Strategy == StrategySubstitution {
		// Substitute into a lambda of the remaining parameters, so that they
		// shadow param and are renamed if they would capture the argument.
		subst := fm.ev.subst
		lambda := subst.Substitute(
			&ast.Lambda{Params: rest, Body: body}, param, subst.argExpr(arg)).(*ast.Lambda)
		rest, body = lambda.Params, lambda.Body
		env = env.Dissoc(param)
	} else {
		env = env.Assoc(param, arg)
	}
	if len(rest) > 0 {
		return &Closure{Params: rest, Body: body, Env: env, src: fn.src}, nil
	}

	r := Reduction{Body: body, Env: env}
	if err := fm.guard.Enter(r); err != nil {
		return nil, fm.errorp(site, err)
	}
	defer fm.guard.Leave(r)
	if fm.tracer != nil {
		fm.tracer.reduction(fm.guard.Steps(), fm.depth, fn, arg)
	}

	savedEnv, savedSrc, savedTraceback := fm.env, fm.src, fm.traceback
	if ctx := fm.context(site); ctx != nil {
		fm.traceback = &StackTrace{Head: ctx, Next: fm.traceback}
	}
	fm.env, fm.src = env, fn.src
	fm.depth++
	defer func() {
		fm.env, fm.src, fm.traceback = savedEnv, savedSrc, savedTraceback
		fm.depth--
	}()
	return fm.eval(body)
}

func (fm *frame) evalSequence(seq *ast.Sequence) (Value, error) {
	// Names the sequence defines are scoped to it, including those defined by
	// defines nested in its elements.
	defer func(saved Env) { fm.env = saved }(fm.env)

	var v Value = Unit
	for _, e := range seq.Exprs {
		var err error
		v, err = fm.eval(e)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

// context returns the context of a node, or nil if the node does not come
// from the current source.
func (fm *frame) context(r diag.Ranger) *diag.Context {
	rg := r.Range()
	if rg.To <= rg.From || rg.To > len(fm.src.Code) {
		return nil
	}
	return diag.NewContext(fm.src.Name, fm.src.Code, rg)
}

// errorp wraps err in an *Exception, unless it already is one. The stack
// trace starts with the context of r.
func (fm *frame) errorp(r diag.Ranger, err error) error {
	if _, ok := err.(*Exception); ok {
		return err
	}
	tb := fm.traceback
	if ctx := fm.context(r); ctx != nil {
		tb = &StackTrace{Head: ctx, Next: tb}
	}
	return &Exception{Reason: err, StackTrace: tb}
}
