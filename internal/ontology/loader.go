// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ontology

import (
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/aare-ai/verify-engine/internal/extract"
	"github.com/aare-ai/verify-engine/internal/formula"
	"github.com/aare-ai/verify-engine/pkg/types"
)

// document is the on-disk shape of a rule document. JSON documents
// parse through the YAML decoder unchanged (JSON is a YAML subset).
type document struct {
	Name        string          `yaml:"name"`
	Version     string          `yaml:"version"`
	Description string          `yaml:"description"`
	Domain      string          `yaml:"domain"`
	Author      string          `yaml:"author"`
	Variables   ruleMap         `yaml:"variables"`
	Constraints []constraintDoc `yaml:"constraints"`
}

type constraintDoc struct {
	types.ConstraintMeta `yaml:",inline"`

	Variables []varDecl   `yaml:"variables"`
	Free      []string    `yaml:"free"`
	Formula   formula.Doc `yaml:"formula"`
}

type varDecl struct {
	Name string     `yaml:"name"`
	Kind types.Kind `yaml:"kind"`
}

type ruleDoc struct {
	Kind        types.Kind          `yaml:"kind"`
	Method      types.ExtractMethod `yaml:"method"`
	Pattern     string              `yaml:"pattern"`
	Money       bool                `yaml:"money"`
	Keywords    []string            `yaml:"keywords"`
	Negations   []string            `yaml:"negations"`
	Numerator   string              `yaml:"numerator"`
	Denominator string              `yaml:"denominator"`
	Scale       float64             `yaml:"scale"`
	Default     any                 `yaml:"default"`
}

// ruleMap preserves document order of the variables mapping. Rule order
// matters: ratio rules may only reference variables extracted earlier.
type ruleMap struct {
	order []string
	rules map[string]ruleDoc
}

func (m *ruleMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("variables must be a mapping")
	}
	m.rules = make(map[string]ruleDoc, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var name string
		if err := node.Content[i].Decode(&name); err != nil {
			return fmt.Errorf("variable name: %w", err)
		}
		var rd ruleDoc
		if err := node.Content[i+1].Decode(&rd); err != nil {
			return fmt.Errorf("variable %q: %w", name, err)
		}
		if _, dup := m.rules[name]; dup {
			return fmt.Errorf("variable %q declared twice", name)
		}
		m.order = append(m.order, name)
		m.rules[name] = rd
	}
	return nil
}

// Parse validates a raw rule document and compiles it into an Ontology.
// It reports the first violation found, including the offending
// constraint id, and never mutates or retains its input: parsing twice
// yields structurally equal ontologies.
func Parse(data []byte) (*Ontology, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Reason: "malformed document", Err: err}
	}

	if doc.Name == "" {
		return nil, &LoadError{Reason: "missing required field name"}
	}
	if doc.Version == "" {
		return nil, &LoadError{Ontology: doc.Name, Reason: "missing required field version"}
	}
	if len(doc.Constraints) == 0 {
		return nil, &LoadError{Ontology: doc.Name, Reason: "ontology declares no constraints"}
	}

	ont := &Ontology{
		Name:        doc.Name,
		Version:     doc.Version,
		Description: doc.Description,
		Domain:      doc.Domain,
		Author:      doc.Author,
	}

	// Extraction rules, in declaration order.
	ruleKinds := make(map[string]types.Kind, len(doc.Variables.order))
	for _, name := range doc.Variables.order {
		rd := doc.Variables.rules[name]
		ont.Rules = append(ont.Rules, types.ExtractionRule{
			Variable:    name,
			Kind:        rd.Kind,
			Method:      rd.Method,
			Pattern:     rd.Pattern,
			Money:       rd.Money,
			Keywords:    rd.Keywords,
			Negations:   rd.Negations,
			Numerator:   rd.Numerator,
			Denominator: rd.Denominator,
			Scale:       rd.Scale,
			Default:     rd.Default,
		})
		ruleKinds[name] = rd.Kind
	}

	engine, err := extract.NewEngine(ont.Rules)
	if err != nil {
		return nil, &LoadError{Ontology: doc.Name, Reason: "invalid extraction rules", Err: err}
	}
	ont.Engine = engine

	// Constraints: unique ids, kind consistency, type-checked formulas.
	seenIDs := make(map[string]bool, len(doc.Constraints))
	globalKinds := make(map[string]types.Kind)

	for _, cd := range doc.Constraints {
		if cd.ID == "" {
			return nil, &LoadError{Ontology: doc.Name, Reason: "constraint with empty id"}
		}
		if seenIDs[cd.ID] {
			return nil, &LoadError{Ontology: doc.Name, ConstraintID: cd.ID, Reason: "duplicate constraint id"}
		}
		seenIDs[cd.ID] = true

		c := Constraint{
			ConstraintMeta: cd.ConstraintMeta,
			Variables:      make(map[string]types.Kind, len(cd.Variables)),
			Free:           make(map[string]bool, len(cd.Free)),
		}
		if c.Severity == "" {
			c.Severity = "error"
		}

		for _, vd := range cd.Variables {
			if vd.Name == "" {
				return nil, &LoadError{Ontology: doc.Name, ConstraintID: cd.ID, Reason: "variable declaration with empty name"}
			}
			switch vd.Kind {
			case types.KindReal, types.KindInteger, types.KindBoolean, types.KindString:
			default:
				return nil, &LoadError{Ontology: doc.Name, ConstraintID: cd.ID,
					Reason: fmt.Sprintf("variable %q has unknown kind %q", vd.Name, vd.Kind)}
			}
			if prev, ok := c.Variables[vd.Name]; ok && prev != vd.Kind {
				return nil, &LoadError{Ontology: doc.Name, ConstraintID: cd.ID,
					Reason: fmt.Sprintf("variable %q declared as both %s and %s", vd.Name, prev, vd.Kind)}
			}
			c.Variables[vd.Name] = vd.Kind

			// A variable name reused across constraints, or shared with
			// an extraction rule, must keep one kind everywhere.
			if prev, ok := globalKinds[vd.Name]; ok && prev != vd.Kind {
				return nil, &LoadError{Ontology: doc.Name, ConstraintID: cd.ID,
					Reason: fmt.Sprintf("variable %q is %s here but %s elsewhere in the ontology", vd.Name, vd.Kind, prev)}
			}
			globalKinds[vd.Name] = vd.Kind
			if rk, ok := ruleKinds[vd.Name]; ok && rk != vd.Kind {
				return nil, &LoadError{Ontology: doc.Name, ConstraintID: cd.ID,
					Reason: fmt.Sprintf("variable %q is %s here but its extraction rule says %s", vd.Name, vd.Kind, rk)}
			}
		}

		for _, name := range cd.Free {
			if _, ok := c.Variables[name]; !ok {
				return nil, &LoadError{Ontology: doc.Name, ConstraintID: cd.ID,
					Reason: fmt.Sprintf("free variable %q is not in the constraint's variable list", name)}
			}
			c.Free[name] = true
		}

		// Every bound variable must be extractable so the assignment
		// stays total; free variables are supplied by the solver.
		for name := range c.Variables {
			if c.Free[name] {
				continue
			}
			if _, ok := ruleKinds[name]; !ok {
				return nil, &LoadError{Ontology: doc.Name, ConstraintID: cd.ID,
					Reason: fmt.Sprintf("variable %q has no extraction rule", name)}
			}
		}

		expr, err := formula.Parse(cd.Formula)
		if err != nil {
			return nil, &LoadError{Ontology: doc.Name, ConstraintID: cd.ID, Reason: "malformed formula", Err: err}
		}
		kind, err := formula.Check(expr, c.Variables)
		if err != nil {
			return nil, &LoadError{Ontology: doc.Name, ConstraintID: cd.ID, Reason: "formula does not type-check", Err: err}
		}
		if kind != types.KindBoolean {
			return nil, &LoadError{Ontology: doc.Name, ConstraintID: cd.ID,
				Reason: fmt.Sprintf("formula resolves to %s, want boolean", kind)}
		}
		c.Formula = expr

		ont.Constraints = append(ont.Constraints, c)
	}

	return ont, nil
}
