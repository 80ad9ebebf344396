package eval

import (
	"github.com/junhg0211/lintre/pkg/ast"
	"github.com/junhg0211/lintre/pkg/eval/errs"
	"github.com/junhg0211/lintre/pkg/persistent/hash"
)

// DefaultMaxSteps is the default ceiling on the number of full reductions in
// one evaluation.
const DefaultMaxSteps = 10000

// GuardConfig configures the divergence guard.
type GuardConfig struct {
	// MaxSteps is the maximal number of full reductions. Values that are not
	// positive mean DefaultMaxSteps.
	MaxSteps int
	// DetectCycles enables detection of reduction states that recur while
	// they are still being reduced.
	DetectCycles bool
}

// DefaultGuardConfig returns the default GuardConfig.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{MaxSteps: DefaultMaxSteps, DetectCycles: true}
}

// Reduction is the state of a full beta-reduction: the body to be evaluated
// and the environment it is evaluated in. In substitution style the body
// already has the arguments substituted in.
type Reduction struct {
	Body ast.Expr
	Env  Env
}

func (r Reduction) hash() uint32 {
	return hash.DJB(ast.Hash(r.Body), r.Env.Hash())
}

func (r Reduction) equal(other Reduction) bool {
	return ast.Equal(r.Body, other.Body) && r.Env.Equal(other.Env)
}

// Guard stops evaluations that do not terminate. It counts full reductions
// against a ceiling, and optionally remembers the reductions that are in
// progress: if the same state is entered again before it is left, evaluating
// it requires evaluating itself, so it can never finish.
//
// A Guard is used for one evaluation and is not safe for concurrent use.
type Guard struct {
	cfg    GuardConfig
	steps  int
	active map[uint32][]Reduction
}

// NewGuard creates a new Guard.
func NewGuard(cfg GuardConfig) *Guard {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	g := &Guard{cfg: cfg}
	if cfg.DetectCycles {
		g.active = make(map[uint32][]Reduction)
	}
	return g
}

// Steps returns the number of reductions entered so far.
func (g *Guard) Steps() int { return g.steps }

// Enter records the start of a reduction. It returns errs.DivergenceDetected
// if the step ceiling is exceeded or the reduction is already in progress.
// Every successful call must be paired with a call to Leave.
func (g *Guard) Enter(r Reduction) error {
	if g.steps >= g.cfg.MaxSteps {
		return errs.DivergenceDetected{Steps: g.cfg.MaxSteps}
	}
	g.steps++
	if g.active == nil {
		return nil
	}
	h := r.hash()
	for _, other := range g.active[h] {
		if r.equal(other) {
			logger.Printf("reduction cycle found after %d steps", g.steps)
			return errs.DivergenceDetected{Steps: g.steps, Cycle: true}
		}
	}
	g.active[h] = append(g.active[h], r)
	return nil
}

// Leave records the end of the innermost reduction in progress.
func (g *Guard) Leave(r Reduction) {
	if g.active == nil {
		return
	}
	h := r.hash()
	bucket := g.active[h]
	if len(bucket) == 1 {
		delete(g.active, h)
	} else if len(bucket) > 1 {
		g.active[h] = bucket[:len(bucket)-1]
	}
}
