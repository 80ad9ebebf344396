package eval

import (
	"testing"

	"github.com/junhg0211/lintre/pkg/ast"
	"github.com/junhg0211/lintre/pkg/eval/errs"
)

func TestGuard_StepCeiling(t *testing.T) {
	g := NewGuard(GuardConfig{MaxSteps: 2})
	for i := 0; i < 2; i++ {
		r := Reduction{Body: ast.NewVar("x"), Env: Env{}.Assoc("i", stepValue(i))}
		if err := g.Enter(r); err != nil {
			t.Fatalf("Enter #%d: %v", i, err)
		}
	}
	err := g.Enter(Reduction{Body: ast.NewVar("y")})
	if err != (errs.DivergenceDetected{Steps: 2}) {
		t.Errorf("got %v, want step ceiling exceeded", err)
	}
	if g.Steps() != 2 {
		t.Errorf("Steps() = %d, want 2", g.Steps())
	}
}

func TestGuard_DefaultCeiling(t *testing.T) {
	g := NewGuard(GuardConfig{})
	r := Reduction{Body: ast.NewVar("x")}
	for i := 0; i < DefaultMaxSteps; i++ {
		if err := g.Enter(r); err != nil {
			t.Fatalf("Enter #%d: %v", i, err)
		}
		g.Leave(r)
	}
	if err := g.Enter(r); err == nil {
		t.Errorf("no error after %d steps", DefaultMaxSteps)
	}
}

func TestGuard_Cycles(t *testing.T) {
	g := NewGuard(DefaultGuardConfig())
	r := Reduction{Body: ast.NewApply(ast.NewVar("x"), ast.NewVar("x")),
		Env: Env{}.Assoc("x", Unit)}
	same := Reduction{Body: ast.NewApply(ast.NewVar("x"), ast.NewVar("x")),
		Env: Env{}.Assoc("x", Unit)}
	other := Reduction{Body: ast.NewVar("x"), Env: Env{}.Assoc("x", Unit)}

	// Entering a state again after leaving it is fine.
	if err := g.Enter(r); err != nil {
		t.Fatal(err)
	}
	g.Leave(r)
	if err := g.Enter(r); err != nil {
		t.Fatal(err)
	}
	if err := g.Enter(other); err != nil {
		t.Fatal(err)
	}
	// Entering an equal state while it is active is a cycle.
	err := g.Enter(same)
	if err != (errs.DivergenceDetected{Steps: 4, Cycle: true}) {
		t.Errorf("got %v, want cycle after 4 steps", err)
	}
}

func TestGuard_CyclesDisabled(t *testing.T) {
	g := NewGuard(GuardConfig{MaxSteps: 10})
	r := Reduction{Body: ast.NewVar("x")}
	for i := 0; i < 3; i++ {
		if err := g.Enter(r); err != nil {
			t.Fatalf("Enter #%d: %v", i, err)
		}
	}
}

// stepValue returns distinct closures for distinct i.
func stepValue(i int) Value {
	var body ast.Expr = ast.NewVar("x")
	for j := 0; j < i; j++ {
		body = ast.NewApply(body, ast.NewVar("x"))
	}
	return &Closure{Params: []string{"x"}, Body: body}
}
