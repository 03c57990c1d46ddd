// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"math"
)

// Value is a concrete typed value bound to a variable. Exactly one of the
// payload fields is meaningful, selected by Kind; integers share the
// Number field and are kept whole.
type Value struct {
	Kind   Kind    `json:"kind" yaml:"kind"`
	Number float64 `json:"number,omitempty" yaml:"number,omitempty"`
	Bool   bool    `json:"bool,omitempty" yaml:"bool,omitempty"`
	Text   string  `json:"text,omitempty" yaml:"text,omitempty"`
}

// Real returns a real-kinded value.
func Real(f float64) Value { return Value{Kind: KindReal, Number: f} }

// Integer returns an integer-kinded value.
func Integer(i int64) Value { return Value{Kind: KindInteger, Number: float64(i)} }

// Boolean returns a boolean-kinded value.
func Boolean(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }

// String returns a string-kinded value.
func String(s string) Value { return Value{Kind: KindString, Text: s} }

// Neutral returns the neutral default for a kind: numeric 0, boolean
// false, empty string. Binding a neutral keeps formula evaluation total
// when a variable was not found; the accompanying warning is what tells
// auditors the result rests on an assumed value.
func Neutral(k Kind) Value {
	switch k {
	case KindReal:
		return Real(0)
	case KindInteger:
		return Integer(0)
	case KindBoolean:
		return Boolean(false)
	default:
		return String("")
	}
}

// Interface returns the value as a plain Go value for serialization:
// float64, int64, bool, or string.
func (v Value) Interface() any {
	switch v.Kind {
	case KindReal:
		return v.Number
	case KindInteger:
		return int64(v.Number)
	case KindBoolean:
		return v.Bool
	default:
		return v.Text
	}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindReal, KindInteger:
		return v.Number == o.Number
	case KindBoolean:
		return v.Bool == o.Bool
	default:
		return v.Text == o.Text
	}
}

// Coerce converts an untyped document scalar (a parsed YAML/JSON value)
// into a Value of kind k. Used for rule defaults and formula literals.
func Coerce(raw any, k Kind) (Value, error) {
	switch k {
	case KindReal, KindInteger:
		var f float64
		switch n := raw.(type) {
		case int:
			f = float64(n)
		case int64:
			f = float64(n)
		case float64:
			f = n
		default:
			return Value{}, fmt.Errorf("expected a number, got %T", raw)
		}
		if k == KindInteger {
			if f != math.Trunc(f) {
				return Value{}, fmt.Errorf("expected a whole number, got %v", f)
			}
			return Integer(int64(f)), nil
		}
		return Real(f), nil
	case KindBoolean:
		b, ok := raw.(bool)
		if !ok {
			return Value{}, fmt.Errorf("expected a boolean, got %T", raw)
		}
		return Boolean(b), nil
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return Value{}, fmt.Errorf("expected a string, got %T", raw)
		}
		return String(s), nil
	default:
		return Value{}, fmt.Errorf("unknown kind %q", k)
	}
}

// KindOf infers the kind of an untyped document scalar. Whole floats are
// reported as integer so that literals like 43 compare against either
// numeric kind.
func KindOf(raw any) (Kind, error) {
	switch n := raw.(type) {
	case bool:
		return KindBoolean, nil
	case int, int64:
		return KindInteger, nil
	case float64:
		if n == math.Trunc(n) {
			return KindInteger, nil
		}
		return KindReal, nil
	case string:
		return KindString, nil
	default:
		return "", fmt.Errorf("unsupported literal type %T", raw)
	}
}
