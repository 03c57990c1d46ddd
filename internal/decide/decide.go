// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package decide determines whether a compiled proposition holds. The
// assignment is already fixed at compile time, so ground propositions
// reduce to deterministic evaluation over the formula tree; propositions
// with free variables are decided by an existential search. A fuller SMT
// backend can replace Procedure without touching the compiler or its
// callers.
package decide

import (
	"context"
	"fmt"
	"sort"

	"github.com/aare-ai/verify-engine/internal/formula"
	"github.com/aare-ai/verify-engine/pkg/types"
)

// Outcome is the result of checking one constraint.
type Outcome int

const (
	// Satisfied: the formula holds.
	Satisfied Outcome = iota
	// Unsatisfied: the formula does not hold.
	Unsatisfied
	// Undetermined: the check ran out of budget or the search space
	// could not be bounded. Callers must treat this conservatively as
	// a violation, never as a pass.
	Undetermined
)

func (o Outcome) String() string {
	switch o {
	case Satisfied:
		return "satisfied"
	case Unsatisfied:
		return "unsatisfied"
	default:
		return "undetermined"
	}
}

// Procedure decides compiled propositions. Implementations must be safe
// for concurrent use and must honor ctx cancellation by returning
// Undetermined.
type Procedure interface {
	Decide(ctx context.Context, p formula.Prop) (Outcome, error)
}

// maxCandidates bounds the existential search's combination count.
const maxCandidates = 10000

// Evaluator is the default decision procedure: deterministic evaluation
// for ground propositions, candidate-point existential search for free
// variables. Ground subtrees are folded to constants first, so every
// comparison against a free variable reduces to variable-versus-constant;
// checking each remaining constant, the midpoints between adjacent
// constants, and a point beyond each extreme is then a complete
// satisfiability check per free variable for boolean combinations of
// linear comparisons, the constraint class the loader admits.
type Evaluator struct{}

// Decide implements Procedure.
func (Evaluator) Decide(ctx context.Context, p formula.Prop) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Undetermined, err
	}

	if p.Ground() {
		val, err := eval(p.Root)
		if err != nil {
			return Undetermined, err
		}
		if val.Kind != types.KindBoolean {
			return Undetermined, fmt.Errorf("proposition evaluates to %s, want boolean", val.Kind)
		}
		if val.Bool {
			return Satisfied, nil
		}
		return Unsatisfied, nil
	}

	return existential(ctx, p)
}

// existential searches for a witness over the free variables. Ground
// subtrees are folded to literals so an arithmetic threshold like
// 55 + 1 contributes its value, not its operands, to the candidate
// set; boolean free variables try both truth values.
func existential(ctx context.Context, p formula.Prop) (Outcome, error) {
	names := make([]string, 0, len(p.FreeKinds))
	for name := range p.FreeKinds {
		names = append(names, name)
	}
	sort.Strings(names)

	root, _ := foldGround(p.Root)
	numeric := numericCandidates(root)

	candidates := make([][]types.Value, len(names))
	total := 1
	for i, name := range names {
		kind := p.FreeKinds[name]
		switch kind {
		case types.KindBoolean:
			candidates[i] = []types.Value{types.Boolean(false), types.Boolean(true)}
		case types.KindReal, types.KindInteger:
			vals := make([]types.Value, len(numeric))
			for j, n := range numeric {
				if kind == types.KindInteger {
					vals[j] = types.Integer(int64(n))
				} else {
					vals[j] = types.Real(n)
				}
			}
			candidates[i] = vals
		default:
			return Undetermined, fmt.Errorf("free variable %q has kind %s, which the search cannot enumerate", name, kind)
		}
		total *= len(candidates[i])
		if total > maxCandidates {
			return Undetermined, fmt.Errorf("existential search space exceeds %d candidates", maxCandidates)
		}
	}

	witness := make(map[string]types.Value, len(names))
	found, err := search(ctx, root, names, candidates, 0, witness)
	if err != nil {
		return Undetermined, err
	}
	if found {
		return Satisfied, nil
	}
	return Unsatisfied, nil
}

func search(ctx context.Context, root formula.Expr, names []string, candidates [][]types.Value, depth int, witness map[string]types.Value) (bool, error) {
	if depth == len(names) {
		val, err := eval(bind(root, witness))
		if err != nil {
			return false, err
		}
		return val.Kind == types.KindBoolean && val.Bool, nil
	}

	for _, cand := range candidates[depth] {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		witness[names[depth]] = cand
		ok, err := search(ctx, root, names, candidates, depth+1, witness)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// numericCandidates collects the distinct numeric constants in the
// formula and widens them into a candidate set: every constant, the
// midpoint between each adjacent pair, one point past each extreme,
// and zero. Strict inequalities are satisfied, if satisfiable, at a
// midpoint or beyond an extreme.
func numericCandidates(root formula.Expr) []float64 {
	seen := map[float64]bool{0: true}
	formula.Walk(root, func(e formula.Expr) {
		if lit, ok := e.(*formula.Lit); ok && lit.Val.Kind.Numeric() {
			seen[lit.Val.Number] = true
		}
	})

	base := make([]float64, 0, len(seen))
	for n := range seen {
		base = append(base, n)
	}
	sort.Float64s(base)

	out := make([]float64, 0, 2*len(base)+2)
	out = append(out, base[0]-1)
	for i, n := range base {
		out = append(out, n)
		if i+1 < len(base) {
			out = append(out, (n+base[i+1])/2)
		}
	}
	out = append(out, base[len(base)-1]+1)
	return out
}

// foldGround rewrites every ground subtree of e into the literal it
// evaluates to and reports whether e itself is ground. A subtree whose
// evaluation fails, such as a division by zero, is left in place so the
// witness search surfaces the error.
func foldGround(e formula.Expr) (formula.Expr, bool) {
	switch n := e.(type) {
	case *formula.Lit:
		return n, true
	case *formula.Var:
		return n, false
	case *formula.Cmp:
		left, lg := foldGround(n.Left)
		right, rg := foldGround(n.Right)
		return fold(&formula.Cmp{Op: n.Op, Left: left, Right: right}, lg && rg)
	case *formula.Logic:
		args, ground := foldGroundAll(n.Args)
		return fold(&formula.Logic{Op: n.Op, Args: args}, ground)
	case *formula.Ite:
		cond, cg := foldGround(n.Cond)
		then, tg := foldGround(n.Then)
		els, eg := foldGround(n.Else)
		return fold(&formula.Ite{Cond: cond, Then: then, Else: els}, cg && tg && eg)
	case *formula.Arith:
		args, ground := foldGroundAll(n.Args)
		return fold(&formula.Arith{Op: n.Op, Args: args}, ground)
	default:
		return e, false
	}
}

func foldGroundAll(args []formula.Expr) ([]formula.Expr, bool) {
	out := make([]formula.Expr, len(args))
	ground := true
	for i, a := range args {
		folded, g := foldGround(a)
		out[i] = folded
		ground = ground && g
	}
	return out, ground
}

func fold(e formula.Expr, ground bool) (formula.Expr, bool) {
	if !ground {
		return e, false
	}
	v, err := eval(e)
	if err != nil {
		return e, true
	}
	return &formula.Lit{Val: v}, true
}

// bind substitutes witness values for the remaining free variables.
func bind(e formula.Expr, witness map[string]types.Value) formula.Expr {
	switch n := e.(type) {
	case *formula.Lit:
		return n
	case *formula.Var:
		if v, ok := witness[n.Name]; ok {
			return &formula.Lit{Val: v}
		}
		return n
	case *formula.Cmp:
		return &formula.Cmp{Op: n.Op, Left: bind(n.Left, witness), Right: bind(n.Right, witness)}
	case *formula.Logic:
		args := make([]formula.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = bind(a, witness)
		}
		return &formula.Logic{Op: n.Op, Args: args}
	case *formula.Ite:
		return &formula.Ite{Cond: bind(n.Cond, witness), Then: bind(n.Then, witness), Else: bind(n.Else, witness)}
	case *formula.Arith:
		args := make([]formula.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = bind(a, witness)
		}
		return &formula.Arith{Op: n.Op, Args: args}
	default:
		return e
	}
}
