// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package formula

import (
	"fmt"

	"github.com/aare-ai/verify-engine/pkg/types"
)

// Prop is a compiled proposition: the formula tree with every assigned
// variable substituted by its concrete value. Variables declared free
// (existentially quantified) remain symbolic; FreeKinds records their
// kinds for the decision engine's search.
type Prop struct {
	Root      Expr
	FreeKinds map[string]types.Kind
}

// Ground reports whether the proposition has no free variables, so a
// single deterministic evaluation decides it.
func (p Prop) Ground() bool { return len(p.FreeKinds) == 0 }

// Compile binds a formula to an assignment. Every variable reference is
// replaced by its assigned value; variables named in free stay symbolic.
//
// The loader has already type-checked the formula, but compilation
// defends again: a reference to an undeclared variable or an assigned
// value whose kind disagrees with the declaration is an error fatal to
// this one constraint.
func Compile(e Expr, vars map[string]types.Kind, a types.Assignment, free map[string]bool) (Prop, error) {
	freeKinds := make(map[string]types.Kind)
	root, err := substitute(e, vars, a, free, freeKinds)
	if err != nil {
		return Prop{}, err
	}
	return Prop{Root: root, FreeKinds: freeKinds}, nil
}

func substitute(e Expr, vars map[string]types.Kind, a types.Assignment, free map[string]bool, freeKinds map[string]types.Kind) (Expr, error) {
	switch n := e.(type) {
	case *Lit:
		return n, nil

	case *Var:
		kind, ok := vars[n.Name]
		if !ok {
			return nil, fmt.Errorf("undeclared variable %q", n.Name)
		}
		if free[n.Name] {
			freeKinds[n.Name] = kind
			return n, nil
		}
		val, ok := a.Values[n.Name]
		if !ok {
			// Defaults fill every declared variable; a gap here means
			// the assignment and declaration disagree.
			return nil, fmt.Errorf("variable %q has no assigned value", n.Name)
		}
		if err := kindCompatible(kind, val.Kind); err != nil {
			return nil, fmt.Errorf("variable %q: %w", n.Name, err)
		}
		return &Lit{Val: val}, nil

	case *Cmp:
		left, err := substitute(n.Left, vars, a, free, freeKinds)
		if err != nil {
			return nil, err
		}
		right, err := substitute(n.Right, vars, a, free, freeKinds)
		if err != nil {
			return nil, err
		}
		return &Cmp{Op: n.Op, Left: left, Right: right}, nil

	case *Logic:
		args, err := substituteAll(n.Args, vars, a, free, freeKinds)
		if err != nil {
			return nil, err
		}
		return &Logic{Op: n.Op, Args: args}, nil

	case *Ite:
		cond, err := substitute(n.Cond, vars, a, free, freeKinds)
		if err != nil {
			return nil, err
		}
		then, err := substitute(n.Then, vars, a, free, freeKinds)
		if err != nil {
			return nil, err
		}
		els, err := substitute(n.Else, vars, a, free, freeKinds)
		if err != nil {
			return nil, err
		}
		return &Ite{Cond: cond, Then: then, Else: els}, nil

	case *Arith:
		args, err := substituteAll(n.Args, vars, a, free, freeKinds)
		if err != nil {
			return nil, err
		}
		return &Arith{Op: n.Op, Args: args}, nil

	default:
		return nil, fmt.Errorf("unknown expression node %T", e)
	}
}

func substituteAll(args []Expr, vars map[string]types.Kind, a types.Assignment, free map[string]bool, freeKinds map[string]types.Kind) ([]Expr, error) {
	out := make([]Expr, len(args))
	for i, arg := range args {
		sub, err := substitute(arg, vars, a, free, freeKinds)
		if err != nil {
			return nil, err
		}
		out[i] = sub
	}
	return out, nil
}

// kindCompatible accepts an exact kind match and the two numeric kinds
// for each other: an extraction may parse "55" as integer where the
// declaration says real, and the arithmetic treats them alike.
func kindCompatible(declared, actual types.Kind) error {
	if declared == actual {
		return nil
	}
	if declared.Numeric() && actual.Numeric() {
		return nil
	}
	return fmt.Errorf("declared %s but assigned %s", declared, actual)
}
