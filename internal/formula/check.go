// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package formula

import (
	"fmt"

	"github.com/aare-ai/verify-engine/pkg/types"
)

// Check validates the kinds of a formula against the declared variable
// kinds and returns the kind the formula resolves to. A constraint
// formula must resolve to boolean; the loader enforces that on top of
// this function.
//
// Rules: arithmetic operands must be numeric; ordering comparisons
// require numeric operands on both sides; equality comparisons require
// both sides numeric or both boolean; connectives require boolean
// operands; ite requires a boolean condition and same-category arms.
// String-kinded variables may be extracted for reporting, but formulas
// over them are rejected here.
func Check(e Expr, vars map[string]types.Kind) (types.Kind, error) {
	switch n := e.(type) {
	case *Lit:
		return n.Val.Kind, nil

	case *Var:
		kind, ok := vars[n.Name]
		if !ok {
			return "", fmt.Errorf("references undeclared variable %q", n.Name)
		}
		return kind, nil

	case *Cmp:
		lk, err := Check(n.Left, vars)
		if err != nil {
			return "", err
		}
		rk, err := Check(n.Right, vars)
		if err != nil {
			return "", err
		}
		switch n.Op {
		case CmpEQ, CmpNE:
			if lk.Numeric() && rk.Numeric() {
				return types.KindBoolean, nil
			}
			if lk == types.KindBoolean && rk == types.KindBoolean {
				return types.KindBoolean, nil
			}
			return "", fmt.Errorf("%q requires both sides numeric or both boolean, got %s and %s", n.Op, lk, rk)
		default:
			if !lk.Numeric() || !rk.Numeric() {
				return "", fmt.Errorf("%q requires numeric operands, got %s and %s", n.Op, lk, rk)
			}
			return types.KindBoolean, nil
		}

	case *Logic:
		for i, a := range n.Args {
			k, err := Check(a, vars)
			if err != nil {
				return "", err
			}
			if k != types.KindBoolean {
				return "", fmt.Errorf("%q argument %d resolves to %s, want boolean", n.Op, i+1, k)
			}
		}
		return types.KindBoolean, nil

	case *Ite:
		ck, err := Check(n.Cond, vars)
		if err != nil {
			return "", err
		}
		if ck != types.KindBoolean {
			return "", fmt.Errorf("ite condition resolves to %s, want boolean", ck)
		}
		tk, err := Check(n.Then, vars)
		if err != nil {
			return "", err
		}
		ek, err := Check(n.Else, vars)
		if err != nil {
			return "", err
		}
		if tk.Numeric() && ek.Numeric() {
			if tk == types.KindReal || ek == types.KindReal {
				return types.KindReal, nil
			}
			return types.KindInteger, nil
		}
		if tk == types.KindBoolean && ek == types.KindBoolean {
			return types.KindBoolean, nil
		}
		return "", fmt.Errorf("ite arms resolve to %s and %s, want matching numeric or boolean", tk, ek)

	case *Arith:
		result := types.KindInteger
		for i, a := range n.Args {
			k, err := Check(a, vars)
			if err != nil {
				return "", err
			}
			if !k.Numeric() {
				return "", fmt.Errorf("%q argument %d resolves to %s, want numeric", n.Op, i+1, k)
			}
			if k == types.KindReal {
				result = types.KindReal
			}
		}
		if n.Op == ArithDiv {
			result = types.KindReal
		}
		return result, nil

	default:
		return "", fmt.Errorf("unknown expression node %T", e)
	}
}
