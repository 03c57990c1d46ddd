// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ontology loads and validates rule documents into immutable
// in-memory ontologies, and provides the document store and the
// process-wide load-once cache.
package ontology

import (
	"fmt"

	"github.com/aare-ai/verify-engine/internal/extract"
	"github.com/aare-ai/verify-engine/internal/formula"
	"github.com/aare-ai/verify-engine/pkg/types"
)

// Ontology is a validated, compiled rule set. It is immutable once
// loaded and safe for concurrent use; identity is (Name, Version).
type Ontology struct {
	Name        string
	Version     string
	Description string
	Domain      string
	Author      string

	// Rules are the extraction rules in declaration order.
	Rules []types.ExtractionRule

	// Engine is the extraction engine compiled from Rules.
	Engine *extract.Engine

	// Constraints are the compiled constraints in document order.
	Constraints []Constraint
}

// Constraint is one compiled rule: metadata, the declared variable
// kinds, the set of existentially quantified (free) variables, and the
// type-checked formula.
type Constraint struct {
	types.ConstraintMeta

	// Variables maps each declared variable to its kind.
	Variables map[string]types.Kind

	// Free lists variables checked by existential query instead of the
	// extracted assignment.
	Free map[string]bool

	// Formula is the compiled expression tree; it resolves to boolean.
	Formula formula.Expr
}

// LoadError reports the first structural or type violation found in a
// rule document. Load failures are fatal to that ontology only; other
// already-loaded ontologies keep serving.
type LoadError struct {
	Ontology     string
	ConstraintID string
	Reason       string
	Err          error
}

func (e *LoadError) Error() string {
	msg := "ontology"
	if e.Ontology != "" {
		msg += " " + e.Ontology
	}
	if e.ConstraintID != "" {
		msg += fmt.Sprintf(": constraint %q", e.ConstraintID)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }
