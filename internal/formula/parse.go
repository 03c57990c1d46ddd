// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package formula

import (
	"fmt"

	"github.com/aare-ai/verify-engine/pkg/types"
)

// Doc is the document form of a formula node as it appears in an
// ontology file: a nested op/args tree whose leaves are either a
// variable reference ({var: dti}) or a literal ({value: 43}).
type Doc struct {
	Op    string `json:"op,omitempty" yaml:"op,omitempty"`
	Args  []Doc  `json:"args,omitempty" yaml:"args,omitempty"`
	Var   string `json:"var,omitempty" yaml:"var,omitempty"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
}

// arity bounds per operator; max -1 means unbounded.
var arities = map[string]struct{ min, max int }{
	CmpLE:        {2, 2},
	CmpLT:        {2, 2},
	CmpGE:        {2, 2},
	CmpGT:        {2, 2},
	CmpEQ:        {2, 2},
	CmpNE:        {2, 2},
	LogicAnd:     {2, -1},
	LogicOr:      {2, -1},
	LogicNot:     {1, 1},
	LogicImplies: {2, 2},
	"ite":        {3, 3},
	ArithAdd:     {2, -1},
	ArithSub:     {2, 2},
	ArithMul:     {2, -1},
	ArithDiv:     {2, 2},
	ArithMin:     {2, -1},
	ArithMax:     {2, -1},
}

// Parse converts a document formula tree into an Expr. It validates
// operator names and arities; kind checking is a separate pass (Check).
func Parse(doc Doc) (Expr, error) {
	// Leaf: variable reference.
	if doc.Var != "" {
		if doc.Op != "" || doc.Value != nil {
			return nil, fmt.Errorf("node mixes var %q with op/value", doc.Var)
		}
		return &Var{Name: doc.Var}, nil
	}

	// Leaf: literal.
	if doc.Op == "" {
		if doc.Value == nil {
			return nil, fmt.Errorf("node has no op, var, or value")
		}
		kind, err := types.KindOf(doc.Value)
		if err != nil {
			return nil, fmt.Errorf("literal: %w", err)
		}
		val, err := types.Coerce(doc.Value, kind)
		if err != nil {
			return nil, fmt.Errorf("literal: %w", err)
		}
		return &Lit{Val: val}, nil
	}

	bounds, ok := arities[doc.Op]
	if !ok {
		return nil, fmt.Errorf("unknown operator %q", doc.Op)
	}
	if len(doc.Args) < bounds.min || (bounds.max >= 0 && len(doc.Args) > bounds.max) {
		return nil, fmt.Errorf("operator %q takes %s, got %d",
			doc.Op, arityDescription(bounds.min, bounds.max), len(doc.Args))
	}

	args := make([]Expr, len(doc.Args))
	for i, a := range doc.Args {
		child, err := Parse(a)
		if err != nil {
			return nil, fmt.Errorf("%s argument %d: %w", doc.Op, i+1, err)
		}
		args[i] = child
	}

	switch doc.Op {
	case CmpLE, CmpLT, CmpGE, CmpGT, CmpEQ, CmpNE:
		return &Cmp{Op: doc.Op, Left: args[0], Right: args[1]}, nil
	case LogicAnd, LogicOr, LogicNot, LogicImplies:
		return &Logic{Op: doc.Op, Args: args}, nil
	case "ite":
		return &Ite{Cond: args[0], Then: args[1], Else: args[2]}, nil
	default:
		return &Arith{Op: doc.Op, Args: args}, nil
	}
}

func arityDescription(min, max int) string {
	if max < 0 {
		return fmt.Sprintf("at least %d arguments", min)
	}
	if min == max {
		return fmt.Sprintf("exactly %d arguments", min)
	}
	return fmt.Sprintf("%d to %d arguments", min, max)
}
