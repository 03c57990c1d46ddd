// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package formula defines the constraint expression tree and compiles it
// into propositions the decision engine can check. The tree is a closed
// set of node types; every consumer switches exhaustively over them, so
// a malformed operator/operand combination is a compile error here, not
// a surprise at evaluation time.
package formula

import (
	"fmt"
	"strings"

	"github.com/aare-ai/verify-engine/pkg/types"
)

// Expr is one node of a constraint formula. The implementations are
// exactly: *Lit, *Var, *Cmp, *Logic, *Ite, *Arith.
type Expr interface {
	node()
	// String renders the node in a readable infix form for diagnostics.
	String() string
}

// Lit is a constant of a concrete kind.
type Lit struct {
	Val types.Value
}

// Var references a declared variable by name.
type Var struct {
	Name string
}

// Comparison operators.
const (
	CmpLE = "<="
	CmpLT = "<"
	CmpGE = ">="
	CmpGT = ">"
	CmpEQ = "=="
	CmpNE = "!="
)

// Cmp compares two operands of the same kind category.
type Cmp struct {
	Op    string
	Left  Expr
	Right Expr
}

// Boolean connectives.
const (
	LogicAnd     = "and"
	LogicOr      = "or"
	LogicNot     = "not"
	LogicImplies = "implies"
)

// Logic combines boolean operands. And/or take two or more arguments,
// not takes one, implies takes exactly two.
type Logic struct {
	Op   string
	Args []Expr
}

// Ite selects between two same-kinded arms on a boolean condition.
type Ite struct {
	Cond Expr
	Then Expr
	Else Expr
}

// Arithmetic operators.
const (
	ArithAdd = "+"
	ArithSub = "-"
	ArithMul = "*"
	ArithDiv = "/"
	ArithMin = "min"
	ArithMax = "max"
)

// Arith combines numeric operands. Sub and div take exactly two
// arguments; the rest take two or more.
type Arith struct {
	Op   string
	Args []Expr
}

func (*Lit) node()   {}
func (*Var) node()   {}
func (*Cmp) node()   {}
func (*Logic) node() {}
func (*Ite) node()   {}
func (*Arith) node() {}

func (l *Lit) String() string {
	return fmt.Sprintf("%v", l.Val.Interface())
}

func (v *Var) String() string { return v.Name }

func (c *Cmp) String() string {
	return fmt.Sprintf("(%s %s %s)", c.Left, c.Op, c.Right)
}

func (l *Logic) String() string {
	if l.Op == LogicNot {
		return fmt.Sprintf("(not %s)", l.Args[0])
	}
	parts := make([]string, len(l.Args))
	for i, a := range l.Args {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, " "+l.Op+" ") + ")"
}

func (i *Ite) String() string {
	return fmt.Sprintf("(if %s then %s else %s)", i.Cond, i.Then, i.Else)
}

func (a *Arith) String() string {
	switch a.Op {
	case ArithMin, ArithMax:
		parts := make([]string, len(a.Args))
		for i, arg := range a.Args {
			parts[i] = arg.String()
		}
		return fmt.Sprintf("%s(%s)", a.Op, strings.Join(parts, ", "))
	default:
		parts := make([]string, len(a.Args))
		for i, arg := range a.Args {
			parts[i] = arg.String()
		}
		return "(" + strings.Join(parts, " "+a.Op+" ") + ")"
	}
}

// Walk visits e and every descendant in depth-first order.
func Walk(e Expr, visit func(Expr)) {
	visit(e)
	switch n := e.(type) {
	case *Lit, *Var:
	case *Cmp:
		Walk(n.Left, visit)
		Walk(n.Right, visit)
	case *Logic:
		for _, a := range n.Args {
			Walk(a, visit)
		}
	case *Ite:
		Walk(n.Cond, visit)
		Walk(n.Then, visit)
		Walk(n.Else, visit)
	case *Arith:
		for _, a := range n.Args {
			Walk(a, visit)
		}
	}
}
