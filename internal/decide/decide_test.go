// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package decide

import (
	"context"
	"testing"

	"github.com/aare-ai/verify-engine/internal/formula"
	"github.com/aare-ai/verify-engine/pkg/types"
)

func lit(v types.Value) formula.Expr { return &formula.Lit{Val: v} }

func cmp(op string, left, right formula.Expr) formula.Expr {
	return &formula.Cmp{Op: op, Left: left, Right: right}
}

func logic(op string, args ...formula.Expr) formula.Expr {
	return &formula.Logic{Op: op, Args: args}
}

func ground(root formula.Expr) formula.Prop {
	return formula.Prop{Root: root, FreeKinds: map[string]types.Kind{}}
}

func TestDecideGround(t *testing.T) {
	tests := []struct {
		name string
		root formula.Expr
		want Outcome
	}{
		{
			name: "dti within limit",
			root: logic(formula.LogicOr,
				cmp(formula.CmpLE, lit(types.Real(40)), lit(types.Real(43))),
				cmp(formula.CmpGE, lit(types.Integer(0)), lit(types.Integer(2)))),
			want: Satisfied,
		},
		{
			name: "dti over limit without factors",
			root: logic(formula.LogicOr,
				cmp(formula.CmpLE, lit(types.Real(55)), lit(types.Real(43))),
				cmp(formula.CmpGE, lit(types.Integer(0)), lit(types.Integer(2)))),
			want: Unsatisfied,
		},
		{
			name: "dti over limit rescued by factors",
			root: logic(formula.LogicOr,
				cmp(formula.CmpLE, lit(types.Real(55)), lit(types.Real(43))),
				cmp(formula.CmpGE, lit(types.Integer(2)), lit(types.Integer(2)))),
			want: Satisfied,
		},
		{
			name: "no guarantee and approval together",
			root: logic(formula.LogicNot,
				logic(formula.LogicAnd,
					lit(types.Boolean(true)),
					lit(types.Boolean(true)))),
			want: Unsatisfied,
		},
		{
			name: "implication with false antecedent",
			root: logic(formula.LogicImplies,
				lit(types.Boolean(false)),
				lit(types.Boolean(false))),
			want: Satisfied,
		},
		{
			name: "integer and real compare on value",
			root: cmp(formula.CmpEQ, lit(types.Integer(2)), lit(types.Real(2))),
			want: Satisfied,
		},
		{
			name: "arithmetic inside comparison",
			root: cmp(formula.CmpLT,
				&formula.Arith{Op: formula.ArithDiv, Args: []formula.Expr{
					lit(types.Real(450000)), lit(types.Real(100000))}},
				lit(types.Real(5))),
			want: Satisfied,
		},
		{
			name: "ite selects the arm",
			root: cmp(formula.CmpEQ,
				&formula.Ite{
					Cond: lit(types.Boolean(true)),
					Then: lit(types.Integer(1)),
					Else: lit(types.Integer(2)),
				},
				lit(types.Integer(1))),
			want: Satisfied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluator{}.Decide(context.Background(), ground(tt.root))
			if err != nil {
				t.Fatalf("Decide() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Decide() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecideGroundErrors(t *testing.T) {
	tests := []struct {
		name string
		root formula.Expr
	}{
		{
			name: "unbound variable",
			root: cmp(formula.CmpLE, &formula.Var{Name: "dti"}, lit(types.Real(43))),
		},
		{
			name: "division by zero",
			root: cmp(formula.CmpLT,
				&formula.Arith{Op: formula.ArithDiv, Args: []formula.Expr{
					lit(types.Real(1)), lit(types.Real(0))}},
				lit(types.Real(5))),
		},
		{
			name: "non-boolean root",
			root: &formula.Arith{Op: formula.ArithAdd, Args: []formula.Expr{
				lit(types.Integer(1)), lit(types.Integer(2))}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluator{}.Decide(context.Background(), ground(tt.root))
			if err == nil {
				t.Fatal("Decide() succeeded, want error")
			}
			if got != Undetermined {
				t.Errorf("Decide() = %s, want undetermined on error", got)
			}
		})
	}
}

func TestDecideExistential(t *testing.T) {
	realVar := func(name string) formula.Prop {
		return formula.Prop{FreeKinds: map[string]types.Kind{name: types.KindReal}}
	}

	t.Run("satisfiable strict window", func(t *testing.T) {
		// exists rate: 3 < rate and rate < 4; only a midpoint works.
		p := realVar("rate")
		p.Root = logic(formula.LogicAnd,
			cmp(formula.CmpGT, &formula.Var{Name: "rate"}, lit(types.Real(3))),
			cmp(formula.CmpLT, &formula.Var{Name: "rate"}, lit(types.Real(4))))

		got, err := Evaluator{}.Decide(context.Background(), p)
		if err != nil {
			t.Fatalf("Decide() error: %v", err)
		}
		if got != Satisfied {
			t.Errorf("Decide() = %s, want satisfied", got)
		}
	})

	t.Run("unsatisfiable window", func(t *testing.T) {
		p := realVar("rate")
		p.Root = logic(formula.LogicAnd,
			cmp(formula.CmpLT, &formula.Var{Name: "rate"}, lit(types.Real(3))),
			cmp(formula.CmpGT, &formula.Var{Name: "rate"}, lit(types.Real(4))))

		got, err := Evaluator{}.Decide(context.Background(), p)
		if err != nil {
			t.Fatalf("Decide() error: %v", err)
		}
		if got != Unsatisfied {
			t.Errorf("Decide() = %s, want unsatisfied", got)
		}
	})

	t.Run("unbounded above", func(t *testing.T) {
		// exists x: x > 100; the point past the extreme is the witness.
		p := realVar("x")
		p.Root = cmp(formula.CmpGT, &formula.Var{Name: "x"}, lit(types.Real(100)))

		got, err := Evaluator{}.Decide(context.Background(), p)
		if err != nil {
			t.Fatalf("Decide() error: %v", err)
		}
		if got != Satisfied {
			t.Errorf("Decide() = %s, want satisfied", got)
		}
	})

	t.Run("arithmetic threshold", func(t *testing.T) {
		// exists x: x > 55 + 1; folding the sum to 56 puts 57 in the
		// candidate set.
		p := realVar("x")
		p.Root = cmp(formula.CmpGT, &formula.Var{Name: "x"},
			&formula.Arith{Op: formula.ArithAdd, Args: []formula.Expr{
				lit(types.Real(55)), lit(types.Real(1))}})

		got, err := Evaluator{}.Decide(context.Background(), p)
		if err != nil {
			t.Fatalf("Decide() error: %v", err)
		}
		if got != Satisfied {
			t.Errorf("Decide() = %s, want satisfied", got)
		}
	})

	t.Run("boolean free variable", func(t *testing.T) {
		p := formula.Prop{FreeKinds: map[string]types.Kind{"flag": types.KindBoolean}}
		p.Root = logic(formula.LogicAnd,
			&formula.Var{Name: "flag"},
			lit(types.Boolean(true)))

		got, err := Evaluator{}.Decide(context.Background(), p)
		if err != nil {
			t.Fatalf("Decide() error: %v", err)
		}
		if got != Satisfied {
			t.Errorf("Decide() = %s, want satisfied", got)
		}
	})

	t.Run("two free variables", func(t *testing.T) {
		p := formula.Prop{FreeKinds: map[string]types.Kind{
			"x": types.KindInteger,
			"y": types.KindInteger,
		}}
		p.Root = logic(formula.LogicAnd,
			cmp(formula.CmpGE, &formula.Var{Name: "x"}, lit(types.Integer(2))),
			cmp(formula.CmpLT, &formula.Var{Name: "y"}, &formula.Var{Name: "x"}))

		got, err := Evaluator{}.Decide(context.Background(), p)
		if err != nil {
			t.Fatalf("Decide() error: %v", err)
		}
		if got != Satisfied {
			t.Errorf("Decide() = %s, want satisfied", got)
		}
	})

	t.Run("string free variable is undetermined", func(t *testing.T) {
		p := formula.Prop{FreeKinds: map[string]types.Kind{"s": types.KindString}}
		p.Root = lit(types.Boolean(true))

		got, err := Evaluator{}.Decide(context.Background(), p)
		if err == nil {
			t.Fatal("Decide() succeeded, want error")
		}
		if got != Undetermined {
			t.Errorf("Decide() = %s, want undetermined", got)
		}
	})
}

func TestDecideCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := ground(lit(types.Boolean(true)))
	got, err := Evaluator{}.Decide(ctx, p)
	if err == nil {
		t.Fatal("Decide() succeeded on canceled context, want error")
	}
	if got != Undetermined {
		t.Errorf("Decide() = %s, want undetermined", got)
	}
}
