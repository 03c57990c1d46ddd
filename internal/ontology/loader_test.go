// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ontology

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/aare-ai/verify-engine/pkg/types"
)

func loadFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "mortgage.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestParseFixture(t *testing.T) {
	ont, err := Parse(loadFixture(t))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if ont.Name != "mortgage-compliance" || ont.Version != "1.2.0" {
		t.Errorf("identity = %s v%s, want mortgage-compliance v1.2.0", ont.Name, ont.Version)
	}
	if len(ont.Rules) != 4 {
		t.Fatalf("rules = %d, want 4", len(ont.Rules))
	}

	// Rule order must follow the document so derived rules can depend on
	// earlier ones.
	wantOrder := []string{"dti", "compensating_factors", "guarantee", "approval"}
	for i, rule := range ont.Rules {
		if rule.Variable != wantOrder[i] {
			t.Errorf("rule %d = %q, want %q", i, rule.Variable, wantOrder[i])
		}
	}

	if len(ont.Constraints) != 2 {
		t.Fatalf("constraints = %d, want 2", len(ont.Constraints))
	}
	dtiRule := ont.Constraints[0]
	if dtiRule.ID != "ATR_QM_DTI" || dtiRule.Severity != "error" {
		t.Errorf("first constraint = %s/%s, want ATR_QM_DTI with default severity error", dtiRule.ID, dtiRule.Severity)
	}
	if dtiRule.Variables["dti"] != types.KindReal {
		t.Errorf("dti kind = %s, want real", dtiRule.Variables["dti"])
	}
	if got := dtiRule.Formula.String(); got != "((dti <= 43) or (compensating_factors >= 2))" {
		t.Errorf("formula = %q", got)
	}
	if ont.Engine == nil {
		t.Error("Engine not compiled")
	}
}

func TestParseIdempotent(t *testing.T) {
	data := loadFixture(t)
	first, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	second, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if !reflect.DeepEqual(first.Rules, second.Rules) {
		t.Error("rules differ across parses of the same document")
	}
	if len(first.Constraints) != len(second.Constraints) {
		t.Fatal("constraint counts differ across parses")
	}
	for i := range first.Constraints {
		a, b := first.Constraints[i], second.Constraints[i]
		if a.ID != b.ID || a.Formula.String() != b.Formula.String() {
			t.Errorf("constraint %d differs across parses", i)
		}
	}
}

func TestParseJSONDocument(t *testing.T) {
	doc := `{
		"name": "minimal",
		"version": "1.0.0",
		"variables": {
			"flag": {"kind": "boolean", "method": "keyword", "keywords": ["flag"]}
		},
		"constraints": [{
			"id": "FLAG_OFF",
			"error_message": "flag must stay off",
			"variables": [{"name": "flag", "kind": "boolean"}],
			"formula": {"op": "not", "args": [{"var": "flag"}]}
		}]
	}`

	ont, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if ont.Name != "minimal" || len(ont.Constraints) != 1 {
		t.Errorf("parsed %s with %d constraints, want minimal with 1", ont.Name, len(ont.Constraints))
	}
}

func TestParseErrors(t *testing.T) {
	const header = "name: broken\nversion: \"1.0.0\"\n"

	tests := []struct {
		name       string
		doc        string
		wantID     string
		wantReason string
	}{
		{
			name:       "missing name",
			doc:        "version: \"1.0.0\"\nconstraints: [{id: X}]\n",
			wantReason: "missing required field name",
		},
		{
			name:       "no constraints",
			doc:        header,
			wantReason: "no constraints",
		},
		{
			name: "duplicate constraint id",
			doc: header + `
variables:
  flag: {kind: boolean, method: keyword, keywords: ["flag"]}
constraints:
  - id: DUP
    variables: [{name: flag, kind: boolean}]
    formula: {var: flag}
  - id: DUP
    variables: [{name: flag, kind: boolean}]
    formula: {var: flag}
`,
			wantID:     "DUP",
			wantReason: "duplicate constraint id",
		},
		{
			name: "formula references undeclared variable",
			doc: header + `
variables:
  flag: {kind: boolean, method: keyword, keywords: ["flag"]}
constraints:
  - id: UNDECLARED
    variables: [{name: flag, kind: boolean}]
    formula:
      op: and
      args: [{var: flag}, {var: ghost}]
`,
			wantID:     "UNDECLARED",
			wantReason: "does not type-check",
		},
		{
			name: "free variable not declared",
			doc: header + `
variables:
  flag: {kind: boolean, method: keyword, keywords: ["flag"]}
constraints:
  - id: FREE
    variables: [{name: flag, kind: boolean}]
    free: [rate]
    formula: {var: flag}
`,
			wantID:     "FREE",
			wantReason: "not in the constraint's variable list",
		},
		{
			name: "bound variable without extraction rule",
			doc: header + `
variables:
  flag: {kind: boolean, method: keyword, keywords: ["flag"]}
constraints:
  - id: NORULE
    variables: [{name: flag, kind: boolean}, {name: rate, kind: real}]
    formula: {var: flag}
`,
			wantID:     "NORULE",
			wantReason: "no extraction rule",
		},
		{
			name: "kind conflict with extraction rule",
			doc: header + `
variables:
  dti: {kind: real, method: pattern, pattern: 'dti ([0-9]+)'}
constraints:
  - id: KINDS
    variables: [{name: dti, kind: boolean}]
    formula: {var: dti}
`,
			wantID:     "KINDS",
			wantReason: "extraction rule says",
		},
		{
			name: "kind conflict across constraints",
			doc: header + `
variables:
  flag: {kind: boolean, method: keyword, keywords: ["flag"]}
  dti: {kind: real, method: pattern, pattern: 'dti ([0-9]+)'}
constraints:
  - id: FIRST
    variables: [{name: dti, kind: real}]
    formula: {op: "<=", args: [{var: dti}, {value: 43}]}
  - id: SECOND
    variables: [{name: dti, kind: integer}]
    formula: {op: "<=", args: [{var: dti}, {value: 43}]}
`,
			wantID:     "SECOND",
			wantReason: "elsewhere in the ontology",
		},
		{
			name: "non-boolean formula",
			doc: header + `
variables:
  dti: {kind: real, method: pattern, pattern: 'dti ([0-9]+)'}
constraints:
  - id: NUMERIC
    variables: [{name: dti, kind: real}]
    formula: {op: "+", args: [{var: dti}, {value: 1}]}
`,
			wantID:     "NUMERIC",
			wantReason: "resolves to real, want boolean",
		},
		{
			name: "invalid extraction rules",
			doc: header + `
variables:
  dti: {kind: real, method: pattern, pattern: '[0-9]+'}
constraints:
  - id: X
    variables: [{name: dti, kind: real}]
    formula: {op: "<=", args: [{var: dti}, {value: 43}]}
`,
			wantReason: "invalid extraction rules",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("Parse() succeeded, want error")
			}
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("Parse() error type %T, want *LoadError", err)
			}
			if le.ConstraintID != tt.wantID {
				t.Errorf("ConstraintID = %q, want %q", le.ConstraintID, tt.wantID)
			}
			if !strings.Contains(err.Error(), tt.wantReason) {
				t.Errorf("error = %q, want containing %q", err, tt.wantReason)
			}
		})
	}
}
