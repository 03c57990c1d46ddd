// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"testing"

	"github.com/aare-ai/verify-engine/pkg/types"
)

// mortgageRules mirrors a realistic lending rule set: DTI percentage,
// loan and income amounts with a derived ratio, guarantee language, and
// a compensating-factors count.
func mortgageRules() []types.ExtractionRule {
	return []types.ExtractionRule{
		{
			Variable: "dti",
			Kind:     types.KindReal,
			Method:   types.MethodPattern,
			Pattern:  `debt-to-income[^0-9]*([0-9]+(?:\.[0-9]+)?)\s*%`,
		},
		{
			Variable: "loan_amount",
			Kind:     types.KindReal,
			Method:   types.MethodPattern,
			Pattern:  `loan (?:amount|of)[^$]*\$([0-9,]+(?:\.[0-9]+)?)\s*([kmb])?`,
			Money:    true,
		},
		{
			Variable: "income",
			Kind:     types.KindReal,
			Method:   types.MethodPattern,
			Pattern:  `annual income[^$]*\$([0-9,]+(?:\.[0-9]+)?)\s*([kmb])?`,
			Money:    true,
		},
		{
			Variable:    "loan_to_income",
			Kind:        types.KindReal,
			Method:      types.MethodRatio,
			Numerator:   "loan_amount",
			Denominator: "income",
			Scale:       1,
		},
		{
			Variable: "guarantee",
			Kind:     types.KindBoolean,
			Method:   types.MethodPhrase,
			Keywords: []string{"guaranteed approval", "guarantee you will be approved"},
		},
		{
			Variable: "recommends_product",
			Kind:     types.KindBoolean,
			Method:   types.MethodKeyword,
			Keywords: []string{"recommend"},
		},
		{
			Variable: "compensating_factors",
			Kind:     types.KindInteger,
			Method:   types.MethodQuantity,
			Keywords: []string{"compensating factor"},
			Default:  0,
		},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(mortgageRules())
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	return e
}

func TestNewEngineValidation(t *testing.T) {
	tests := []struct {
		name    string
		rules   []types.ExtractionRule
		wantErr string
	}{
		{
			name: "duplicate variable",
			rules: []types.ExtractionRule{
				{Variable: "x", Kind: types.KindBoolean, Method: types.MethodKeyword, Keywords: []string{"x"}},
				{Variable: "x", Kind: types.KindBoolean, Method: types.MethodKeyword, Keywords: []string{"x"}},
			},
			wantErr: "declared twice",
		},
		{
			name: "pattern without capture group",
			rules: []types.ExtractionRule{
				{Variable: "x", Kind: types.KindReal, Method: types.MethodPattern, Pattern: `[0-9]+`},
			},
			wantErr: "must capture one group",
		},
		{
			name: "invalid regexp",
			rules: []types.ExtractionRule{
				{Variable: "x", Kind: types.KindReal, Method: types.MethodPattern, Pattern: `([0-9]+`},
			},
			wantErr: "invalid pattern",
		},
		{
			name: "keyword on numeric kind",
			rules: []types.ExtractionRule{
				{Variable: "x", Kind: types.KindReal, Method: types.MethodKeyword, Keywords: []string{"x"}},
			},
			wantErr: "requires boolean kind",
		},
		{
			name: "ratio referencing later variable",
			rules: []types.ExtractionRule{
				{Variable: "r", Kind: types.KindReal, Method: types.MethodRatio, Numerator: "a", Denominator: "b"},
				{Variable: "a", Kind: types.KindReal, Method: types.MethodPattern, Pattern: `a=([0-9]+)`},
				{Variable: "b", Kind: types.KindReal, Method: types.MethodPattern, Pattern: `b=([0-9]+)`},
			},
			wantErr: "declared earlier",
		},
		{
			name: "default of wrong kind",
			rules: []types.ExtractionRule{
				{Variable: "x", Kind: types.KindInteger, Method: types.MethodQuantity, Keywords: []string{"x"}, Default: "zero"},
			},
			wantErr: "default",
		},
		{
			name: "unknown method",
			rules: []types.ExtractionRule{
				{Variable: "x", Kind: types.KindReal, Method: "llm"},
			},
			wantErr: "unknown extraction method",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.rules)
			if err == nil {
				t.Fatal("NewEngine() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewEngine() error = %q, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestExtractPatterns(t *testing.T) {
	e := newTestEngine(t)

	text := "Based on your debt-to-income ratio of 55%, a loan amount of $450k " +
		"against your annual income of $100,000 looks difficult."
	a, _ := e.Extract(text)

	if got := a.Values["dti"]; got.Number != 55 {
		t.Errorf("dti = %v, want 55", got.Number)
	}
	if a.Defaulted["dti"] {
		t.Error("dti marked defaulted, want extracted")
	}
	if got := a.Values["loan_amount"]; got.Number != 450000 {
		t.Errorf("loan_amount = %v, want 450000 (k suffix)", got.Number)
	}
	if got := a.Values["income"]; got.Number != 100000 {
		t.Errorf("income = %v, want 100000 (comma stripped)", got.Number)
	}
	if got := a.Values["loan_to_income"]; got.Number != 4.5 {
		t.Errorf("loan_to_income = %v, want 4.5", got.Number)
	}
}

func TestExtractKeywordNegation(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "plain recommendation",
			text: "I recommend the 30-year fixed product.",
			want: true,
		},
		{
			name: "negated in same sentence",
			text: "I would not recommend this product for your situation.",
			want: false,
		},
		{
			name: "negation in a different sentence",
			text: "I recommend the fixed-rate option. Do not rush the decision though.",
			want: true,
		},
		{
			name: "keyword absent",
			text: "Here are some general figures for your review.",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := e.Extract(tt.text)
			got := a.Values["recommends_product"]
			if got.Kind != types.KindBoolean || got.Bool != tt.want {
				t.Errorf("recommends_product = %v, want %v", got.Interface(), tt.want)
			}
			if a.Defaulted["recommends_product"] {
				t.Error("keyword variable marked defaulted; absence is a finding, not a gap")
			}
		})
	}
}

func TestExtractPhraseIgnoresNegation(t *testing.T) {
	e := newTestEngine(t)

	// Phrase detectors police the phrase itself. "cannot offer guaranteed
	// approval" still contains the policed phrase and must read true.
	a, _ := e.Extract("We cannot offer guaranteed approval to any applicant.")
	if got := a.Values["guarantee"]; !got.Bool {
		t.Errorf("guarantee = false, want true: the phrase is present")
	}
}

func TestExtractQuantity(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		text string
		want int64
	}{
		{"explicit count word", "You have two compensating factors: reserves and residual income.", 2},
		{"multiple reads as two", "There are multiple compensating factors in your file.", 2},
		{"bare keyword counts one", "Your reserves are a compensating factor.", 1},
		{"digit token", "We counted 3 compensating factors.", 3},
		{"digit at sentence start", "4 compensating factors were noted.", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := e.Extract(tt.text)
			got := a.Values["compensating_factors"]
			if got.Kind != types.KindInteger || int64(got.Number) != tt.want {
				t.Errorf("compensating_factors = %v, want %d", got.Interface(), tt.want)
			}
		})
	}
}

func TestExtractDefaults(t *testing.T) {
	e := newTestEngine(t)

	a, warnings := e.Extract("A generic reply with no figures at all.")

	// Declared default applies and is flagged.
	if got := a.Values["compensating_factors"]; int64(got.Number) != 0 {
		t.Errorf("compensating_factors = %v, want declared default 0", got.Interface())
	}
	if !a.Defaulted["compensating_factors"] {
		t.Error("compensating_factors not marked defaulted")
	}

	// No declared default: neutral value.
	if got := a.Values["dti"]; got.Kind != types.KindReal || got.Number != 0 {
		t.Errorf("dti = %v, want neutral 0", got.Interface())
	}
	if !a.Defaulted["dti"] {
		t.Error("dti not marked defaulted")
	}

	// Ratio with defaulted sources is itself defaulted, not derived.
	if !a.Defaulted["loan_to_income"] {
		t.Error("loan_to_income derived from defaulted sources, want defaulted")
	}

	var mentioned int
	for _, w := range warnings {
		if strings.Contains(w, "dti") || strings.Contains(w, "compensating_factors") {
			mentioned++
		}
	}
	if mentioned < 2 {
		t.Errorf("warnings = %v, want coverage of defaulted variables", warnings)
	}
}

func TestDefaultDoesNotShadowExtraction(t *testing.T) {
	// Declaring a default must not change the outcome for texts where
	// the variable is actually extracted.
	withoutDefault := mortgageRules()
	withDefault := mortgageRules()
	for i := range withDefault {
		if withDefault[i].Variable == "dti" {
			withDefault[i].Default = 99
		}
	}

	a, err := NewEngine(withoutDefault)
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	b, err := NewEngine(withDefault)
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}

	text := "Your debt-to-income ratio is 38% overall."
	got1, _ := a.Extract(text)
	got2, _ := b.Extract(text)

	if !got1.Values["dti"].Equal(got2.Values["dti"]) {
		t.Errorf("dti = %v vs %v, want identical when extracted", got1.Values["dti"], got2.Values["dti"])
	}
	if got2.Defaulted["dti"] {
		t.Error("extracted dti marked defaulted under a declared default")
	}
}

func TestExtractDeterminism(t *testing.T) {
	e := newTestEngine(t)
	text := "Your debt-to-income ratio of 55% with one compensating factor. I recommend waiting."

	a1, w1 := e.Extract(text)
	a2, w2 := e.Extract(text)

	if len(w1) != len(w2) {
		t.Fatalf("warning counts differ: %d vs %d", len(w1), len(w2))
	}
	for name, v := range a1.Values {
		if !v.Equal(a2.Values[name]) {
			t.Errorf("variable %q differs between runs: %v vs %v", name, v, a2.Values[name])
		}
	}
}
