// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Kind identifies the type of a declared variable.
type Kind string

const (
	KindReal    Kind = "real"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindString  Kind = "string"
)

// Numeric reports whether the kind is real or integer.
func (k Kind) Numeric() bool {
	return k == KindReal || k == KindInteger
}

// ExtractMethod selects the extraction strategy for one variable.
type ExtractMethod string

const (
	// MethodPattern runs a case-insensitive regular expression with one
	// captured group against the input text.
	MethodPattern ExtractMethod = "pattern"

	// MethodKeyword sets a boolean when any keyword appears in the text,
	// flipped to false when a negation phrase shares the sentence.
	MethodKeyword ExtractMethod = "keyword"

	// MethodPhrase is a keyword test without negation handling, for
	// detectors where the phrase itself is the finding (e.g. guarantee
	// language: "not guaranteed" still contains the phrase being policed).
	MethodPhrase ExtractMethod = "phrase"

	// MethodQuantity detects a subject phrase and reads a nearby count
	// word ("two compensating factors" -> 2).
	MethodQuantity ExtractMethod = "quantity"

	// MethodRatio derives a value from two previously extracted numeric
	// variables (numerator / denominator * scale).
	MethodRatio ExtractMethod = "ratio"
)

// ExtractionRule describes how one variable is read out of input text.
// Rules are applied in declaration order, so a ratio rule can reference
// variables extracted by earlier rules.
type ExtractionRule struct {
	// Variable is the name the extracted value is bound to.
	Variable string `json:"variable" yaml:"variable"`

	// Kind is the variable's declared kind.
	Kind Kind `json:"kind" yaml:"kind"`

	// Method selects the extraction strategy.
	Method ExtractMethod `json:"method" yaml:"method"`

	// Pattern is the capture regexp for MethodPattern.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Money scales the captured number by k/m/b suffixes ("2.5k" -> 2500).
	Money bool `json:"money,omitempty" yaml:"money,omitempty"`

	// Keywords are the phrases searched for by keyword, phrase, and
	// quantity methods.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Negations extends the built-in negation phrase list for MethodKeyword.
	Negations []string `json:"negations,omitempty" yaml:"negations,omitempty"`

	// Numerator and Denominator name the source variables for MethodRatio.
	Numerator   string `json:"numerator,omitempty" yaml:"numerator,omitempty"`
	Denominator string `json:"denominator,omitempty" yaml:"denominator,omitempty"`

	// Scale multiplies the ratio result; 0 means 100 (a percentage).
	Scale float64 `json:"scale,omitempty" yaml:"scale,omitempty"`

	// Default, when non-nil, is the value bound if extraction finds
	// nothing. The variable is still recorded as defaulted so a warning
	// reaches the caller.
	Default any `json:"default,omitempty" yaml:"default,omitempty"`
}

// ConstraintMeta holds the descriptive fields of a constraint. Violations
// copy these verbatim: citations are audit-critical and must not be
// paraphrased.
type ConstraintMeta struct {
	// ID is unique within an ontology (e.g. "ATR_QM_DTI").
	ID string `json:"id" yaml:"id"`

	// Category groups related constraints (e.g. "Fair Lending").
	Category string `json:"category" yaml:"category"`

	// Description is the human-readable statement of the rule.
	Description string `json:"description" yaml:"description"`

	// Severity is error, warning, or info.
	Severity string `json:"severity" yaml:"severity"`

	// ErrorMessage is shown to callers when the constraint is violated.
	ErrorMessage string `json:"error_message" yaml:"error_message"`

	// Citation is the regulatory reference (e.g. "12 CFR 1026.43(e)").
	Citation string `json:"citation,omitempty" yaml:"citation,omitempty"`

	// FormulaReadable is the display form of the formula.
	FormulaReadable string `json:"formula_readable,omitempty" yaml:"formula_readable,omitempty"`
}
