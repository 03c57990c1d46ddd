// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package decide

import (
	"fmt"
	"math"

	"github.com/aare-ai/verify-engine/internal/formula"
	"github.com/aare-ai/verify-engine/pkg/types"
)

// eval reduces a fully bound expression tree to a value. Order of
// evaluation never matters: there is no shared state and no short
// circuit that could hide a type error in an unvisited branch — the
// loader checked kinds already, so every branch evaluates cleanly.
func eval(e formula.Expr) (types.Value, error) {
	switch n := e.(type) {
	case *formula.Lit:
		return n.Val, nil

	case *formula.Var:
		return types.Value{}, fmt.Errorf("unbound variable %q", n.Name)

	case *formula.Cmp:
		return evalCmp(n)

	case *formula.Logic:
		return evalLogic(n)

	case *formula.Ite:
		cond, err := eval(n.Cond)
		if err != nil {
			return types.Value{}, err
		}
		if cond.Kind != types.KindBoolean {
			return types.Value{}, fmt.Errorf("ite condition is %s, want boolean", cond.Kind)
		}
		if cond.Bool {
			return eval(n.Then)
		}
		return eval(n.Else)

	case *formula.Arith:
		return evalArith(n)

	default:
		return types.Value{}, fmt.Errorf("unknown expression node %T", e)
	}
}

func evalCmp(n *formula.Cmp) (types.Value, error) {
	left, err := eval(n.Left)
	if err != nil {
		return types.Value{}, err
	}
	right, err := eval(n.Right)
	if err != nil {
		return types.Value{}, err
	}

	if left.Kind == types.KindBoolean && right.Kind == types.KindBoolean {
		switch n.Op {
		case formula.CmpEQ:
			return types.Boolean(left.Bool == right.Bool), nil
		case formula.CmpNE:
			return types.Boolean(left.Bool != right.Bool), nil
		default:
			return types.Value{}, fmt.Errorf("%q applied to booleans", n.Op)
		}
	}

	if !left.Kind.Numeric() || !right.Kind.Numeric() {
		return types.Value{}, fmt.Errorf("%q applied to %s and %s", n.Op, left.Kind, right.Kind)
	}

	switch n.Op {
	case formula.CmpLE:
		return types.Boolean(left.Number <= right.Number), nil
	case formula.CmpLT:
		return types.Boolean(left.Number < right.Number), nil
	case formula.CmpGE:
		return types.Boolean(left.Number >= right.Number), nil
	case formula.CmpGT:
		return types.Boolean(left.Number > right.Number), nil
	case formula.CmpEQ:
		return types.Boolean(left.Number == right.Number), nil
	case formula.CmpNE:
		return types.Boolean(left.Number != right.Number), nil
	default:
		return types.Value{}, fmt.Errorf("unknown comparison %q", n.Op)
	}
}

func evalLogic(n *formula.Logic) (types.Value, error) {
	vals := make([]bool, len(n.Args))
	for i, a := range n.Args {
		v, err := eval(a)
		if err != nil {
			return types.Value{}, err
		}
		if v.Kind != types.KindBoolean {
			return types.Value{}, fmt.Errorf("%q argument %d is %s, want boolean", n.Op, i+1, v.Kind)
		}
		vals[i] = v.Bool
	}

	switch n.Op {
	case formula.LogicAnd:
		for _, b := range vals {
			if !b {
				return types.Boolean(false), nil
			}
		}
		return types.Boolean(true), nil
	case formula.LogicOr:
		for _, b := range vals {
			if b {
				return types.Boolean(true), nil
			}
		}
		return types.Boolean(false), nil
	case formula.LogicNot:
		return types.Boolean(!vals[0]), nil
	case formula.LogicImplies:
		return types.Boolean(!vals[0] || vals[1]), nil
	default:
		return types.Value{}, fmt.Errorf("unknown connective %q", n.Op)
	}
}

func evalArith(n *formula.Arith) (types.Value, error) {
	nums := make([]float64, len(n.Args))
	integer := true
	for i, a := range n.Args {
		v, err := eval(a)
		if err != nil {
			return types.Value{}, err
		}
		if !v.Kind.Numeric() {
			return types.Value{}, fmt.Errorf("%q argument %d is %s, want numeric", n.Op, i+1, v.Kind)
		}
		if v.Kind == types.KindReal {
			integer = false
		}
		nums[i] = v.Number
	}

	var result float64
	switch n.Op {
	case formula.ArithAdd:
		for _, x := range nums {
			result += x
		}
	case formula.ArithSub:
		result = nums[0] - nums[1]
	case formula.ArithMul:
		result = 1
		for _, x := range nums {
			result *= x
		}
	case formula.ArithDiv:
		if nums[1] == 0 {
			return types.Value{}, fmt.Errorf("division by zero")
		}
		result = nums[0] / nums[1]
		integer = false
	case formula.ArithMin:
		result = nums[0]
		for _, x := range nums[1:] {
			result = math.Min(result, x)
		}
	case formula.ArithMax:
		result = nums[0]
		for _, x := range nums[1:] {
			result = math.Max(result, x)
		}
	default:
		return types.Value{}, fmt.Errorf("unknown arithmetic operator %q", n.Op)
	}

	if integer && result == math.Trunc(result) {
		return types.Integer(int64(result)), nil
	}
	return types.Real(result), nil
}
