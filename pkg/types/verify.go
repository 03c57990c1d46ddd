// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Assignment maps variable names to concrete typed values. It is total
// over every variable the ontology declares: variables not found in the
// text are bound to their rule default or a neutral value, and recorded
// in Defaulted so callers can see which bindings were assumed.
type Assignment struct {
	Values    map[string]Value
	Defaulted map[string]bool
}

// NewAssignment returns an empty assignment.
func NewAssignment() Assignment {
	return Assignment{
		Values:    make(map[string]Value),
		Defaulted: make(map[string]bool),
	}
}

// Parsed returns the assignment as plain Go values keyed by variable
// name, for the parsed_data response field.
func (a Assignment) Parsed() map[string]any {
	out := make(map[string]any, len(a.Values))
	for name, v := range a.Values {
		out[name] = v.Interface()
	}
	return out
}

// Violation records one unsatisfied constraint. The descriptive fields
// are copied verbatim from the constraint.
type Violation struct {
	ConstraintID string `json:"constraint_id" yaml:"constraint_id"`
	Category     string `json:"category" yaml:"category"`
	Description  string `json:"description" yaml:"description"`
	ErrorMessage string `json:"error_message" yaml:"error_message"`
	Citation     string `json:"citation,omitempty" yaml:"citation,omitempty"`
	Formula      string `json:"formula,omitempty" yaml:"formula,omitempty"`
}

// OntologyRef identifies the ontology a verification ran against.
type OntologyRef struct {
	Name               string `json:"name" yaml:"name"`
	Version            string `json:"version" yaml:"version"`
	ConstraintsChecked int    `json:"constraints_checked" yaml:"constraints_checked"`
}

// ConstraintOutcome is one constraint's decision, in ontology order.
// The ordered outcome list is what the certificate digest binds.
type ConstraintOutcome struct {
	ConstraintID string `json:"constraint_id" yaml:"constraint_id"`
	Satisfied    bool   `json:"satisfied" yaml:"satisfied"`
}

// VerificationResult is the full outcome of verifying one text against
// one ontology.
type VerificationResult struct {
	// Verified is true iff every constraint's formula is satisfied.
	Verified bool `json:"verified" yaml:"verified"`

	// Violations holds one entry per unsatisfied constraint, in
	// ontology order.
	Violations []Violation `json:"violations" yaml:"violations"`

	// Warnings lists non-fatal conditions: defaulted variables and
	// constraints that could not be decided within budget.
	Warnings []string `json:"warnings" yaml:"warnings"`

	// ParsedData is the extracted variable assignment.
	ParsedData map[string]any `json:"parsed_data" yaml:"parsed_data"`

	// Ontology identifies the rule set that was checked.
	Ontology OntologyRef `json:"ontology" yaml:"ontology"`

	// Outcomes lists each constraint's decision in ontology order.
	Outcomes []ConstraintOutcome `json:"outcomes" yaml:"outcomes"`

	// CertificateDigest is the deterministic attestation digest.
	CertificateDigest string `json:"certificate_digest" yaml:"certificate_digest"`

	// InputDigest is the SHA-256 of the input text.
	InputDigest string `json:"input_digest" yaml:"input_digest"`

	// VerificationID is a unique identifier for this request.
	VerificationID string `json:"verification_id" yaml:"verification_id"`

	// ExecutionTimeMS is the wall time spent in the pipeline.
	ExecutionTimeMS int64 `json:"execution_time_ms" yaml:"execution_time_ms"`

	// Timestamp is when the verification completed (UTC).
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}
