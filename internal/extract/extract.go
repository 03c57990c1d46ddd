// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract produces a typed variable assignment from free-form
// text using an ontology's extraction rules. Extraction is a pure
// function of (text, rules): no state survives a call, and the same
// input always yields the same assignment and warnings.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aare-ai/verify-engine/pkg/types"
)

// builtinNegations are phrases that flip a keyword detection to false
// when they share the sentence with the keyword. Rules extend this list
// via their negations field; the engine stays free of domain branching.
var builtinNegations = []string{
	"not ", "no ", "avoid", "contraindicated", "don't", "cannot",
	"should not", "must not", "never ", "prohibited", " is not ", " not a ",
}

// quantityWords map count words near a quantity keyword to a value.
// Checked in order so "two" wins over the bare-article fallback.
var quantityWords = []struct {
	words []string
	value int64
}{
	{[]string{"four", " 4 "}, 4},
	{[]string{"three", " 3 "}, 3},
	{[]string{"two", " 2 ", "both", "multiple", "several"}, 2},
	{[]string{"one", " 1 ", "a single"}, 1},
}

// rule is a validated extraction rule with its pattern precompiled.
type rule struct {
	spec types.ExtractionRule
	re   *regexp.Regexp
	def  *types.Value
}

// Engine applies an ontology's extraction rules in declaration order.
// Build one per loaded ontology; it is immutable and safe for
// concurrent use.
type Engine struct {
	rules []rule
}

// NewEngine validates the rules and compiles their patterns. Patterns
// are matched case-insensitively; numeric and string patterns must
// capture one group.
func NewEngine(specs []types.ExtractionRule) (*Engine, error) {
	e := &Engine{rules: make([]rule, 0, len(specs))}
	seen := make(map[string]bool, len(specs))

	for _, spec := range specs {
		if spec.Variable == "" {
			return nil, fmt.Errorf("extraction rule with empty variable name")
		}
		if seen[spec.Variable] {
			return nil, fmt.Errorf("variable %q declared twice", spec.Variable)
		}

		r := rule{spec: spec}

		switch spec.Kind {
		case types.KindReal, types.KindInteger, types.KindBoolean, types.KindString:
		default:
			return nil, fmt.Errorf("variable %q: unknown kind %q", spec.Variable, spec.Kind)
		}

		switch spec.Method {
		case types.MethodPattern:
			if spec.Pattern == "" {
				return nil, fmt.Errorf("variable %q: pattern method requires a pattern", spec.Variable)
			}
			re, err := regexp.Compile("(?i)" + spec.Pattern)
			if err != nil {
				return nil, fmt.Errorf("variable %q: invalid pattern: %w", spec.Variable, err)
			}
			if spec.Kind != types.KindBoolean && re.NumSubexp() < 1 {
				return nil, fmt.Errorf("variable %q: pattern must capture one group for kind %s", spec.Variable, spec.Kind)
			}
			r.re = re

		case types.MethodKeyword, types.MethodPhrase:
			if spec.Kind != types.KindBoolean {
				return nil, fmt.Errorf("variable %q: %s method requires boolean kind, got %s", spec.Variable, spec.Method, spec.Kind)
			}
			if len(spec.Keywords) == 0 {
				return nil, fmt.Errorf("variable %q: %s method requires keywords", spec.Variable, spec.Method)
			}

		case types.MethodQuantity:
			if !spec.Kind.Numeric() {
				return nil, fmt.Errorf("variable %q: quantity method requires numeric kind, got %s", spec.Variable, spec.Kind)
			}
			if len(spec.Keywords) == 0 {
				return nil, fmt.Errorf("variable %q: quantity method requires keywords", spec.Variable)
			}

		case types.MethodRatio:
			if !spec.Kind.Numeric() {
				return nil, fmt.Errorf("variable %q: ratio method requires numeric kind, got %s", spec.Variable, spec.Kind)
			}
			if spec.Numerator == "" || spec.Denominator == "" {
				return nil, fmt.Errorf("variable %q: ratio method requires numerator and denominator", spec.Variable)
			}
			if !seen[spec.Numerator] || !seen[spec.Denominator] {
				return nil, fmt.Errorf("variable %q: ratio sources must be declared earlier", spec.Variable)
			}

		default:
			return nil, fmt.Errorf("variable %q: unknown extraction method %q", spec.Variable, spec.Method)
		}

		if spec.Default != nil {
			v, err := types.Coerce(spec.Default, spec.Kind)
			if err != nil {
				return nil, fmt.Errorf("variable %q: default: %w", spec.Variable, err)
			}
			r.def = &v
		}

		seen[spec.Variable] = true
		e.rules = append(e.rules, r)
	}

	return e, nil
}

// Extract applies every rule to text and returns the assignment plus
// advisory warnings. The assignment is total over the declared
// variables: a variable the text does not yield falls back to its rule
// default, or a neutral value, and is recorded as defaulted.
func (e *Engine) Extract(text string) (types.Assignment, []string) {
	a := types.NewAssignment()
	var warnings []string

	lower := strings.ToLower(text)
	sentences := splitSentences(lower)

	for _, r := range e.rules {
		val, found := r.apply(text, sentences, a)
		if found {
			a.Values[r.spec.Variable] = val
			continue
		}

		a.Defaulted[r.spec.Variable] = true
		if r.def != nil {
			a.Values[r.spec.Variable] = *r.def
			warnings = append(warnings, fmt.Sprintf(
				"variable %q not found in text; using declared default %v",
				r.spec.Variable, r.def.Interface()))
		} else {
			neutral := types.Neutral(r.spec.Kind)
			a.Values[r.spec.Variable] = neutral
			warnings = append(warnings, fmt.Sprintf(
				"variable %q not found in text; assuming neutral %s %v",
				r.spec.Variable, r.spec.Kind, neutral.Interface()))
		}
	}

	return a, warnings
}

// apply runs one rule. found=false means the rule produced nothing and
// the default path applies. Keyword and phrase rules always produce a
// value: absence of the phrase is the finding "false", not a gap.
func (r rule) apply(text string, sentences []string, a types.Assignment) (types.Value, bool) {
	switch r.spec.Method {
	case types.MethodPattern:
		return r.applyPattern(text)
	case types.MethodKeyword:
		return r.applyKeyword(sentences, true), true
	case types.MethodPhrase:
		return r.applyKeyword(sentences, false), true
	case types.MethodQuantity:
		return r.applyQuantity(sentences)
	case types.MethodRatio:
		return r.applyRatio(a)
	default:
		return types.Value{}, false
	}
}

func (r rule) applyPattern(text string) (types.Value, bool) {
	if r.spec.Kind == types.KindBoolean {
		matched := r.re.MatchString(text)
		return types.Boolean(matched), matched
	}

	idx := r.re.FindStringSubmatchIndex(text)
	if idx == nil || idx[2] < 0 {
		return types.Value{}, false
	}
	captured := text[idx[2]:idx[3]]

	if r.spec.Kind == types.KindString {
		return types.String(captured), true
	}

	num, err := strconv.ParseFloat(strings.ReplaceAll(captured, ",", ""), 64)
	if err != nil {
		return types.Value{}, false
	}

	if r.spec.Money {
		num *= moneyMultiplier(text, idx[3], idx[1])
	}

	if r.spec.Kind == types.KindInteger {
		return types.Integer(int64(num)), true
	}
	return types.Real(num), true
}

// moneyMultiplier inspects the text between the captured number and the
// end of the whole match for a k/m/b magnitude suffix ("$450k").
func moneyMultiplier(text string, groupEnd, matchEnd int) float64 {
	tail := strings.ToLower(strings.TrimSpace(text[groupEnd:matchEnd]))
	switch {
	case strings.HasPrefix(tail, "k"):
		return 1e3
	case strings.HasPrefix(tail, "m"):
		return 1e6
	case strings.HasPrefix(tail, "b"):
		return 1e9
	default:
		return 1
	}
}

// applyKeyword reports whether any keyword appears in the text. With
// negation checking on, a negation phrase in the same sentence flips
// the result to false: "I would not recommend metformin" must not read
// as a metformin recommendation.
func (r rule) applyKeyword(sentences []string, checkNegation bool) types.Value {
	negations := builtinNegations
	if len(r.spec.Negations) > 0 {
		negations = append(append([]string{}, builtinNegations...), r.spec.Negations...)
	}

	found := false
	for _, sentence := range sentences {
		for _, kw := range r.spec.Keywords {
			if !strings.Contains(sentence, strings.ToLower(kw)) {
				continue
			}
			if checkNegation {
				for _, neg := range negations {
					if strings.Contains(sentence, neg) {
						return types.Boolean(false)
					}
				}
			}
			found = true
		}
	}
	return types.Boolean(found)
}

// applyQuantity finds a keyword and reads the count word sharing its
// sentence ("two compensating factors" -> 2). A keyword with no count
// word counts as 1; no keyword at all is a miss.
func (r rule) applyQuantity(sentences []string) (types.Value, bool) {
	for _, sentence := range sentences {
		for _, kw := range r.spec.Keywords {
			if !strings.Contains(sentence, strings.ToLower(kw)) {
				continue
			}
			count := int64(1)
			// Pad so the space-delimited digit words also match at the
			// sentence boundaries ("4 compensating factors").
			padded := " " + sentence + " "
			for _, qw := range quantityWords {
				if containsAny(padded, qw.words) {
					count = qw.value
					break
				}
			}
			if r.spec.Kind == types.KindReal {
				return types.Real(float64(count)), true
			}
			return types.Integer(count), true
		}
	}
	return types.Value{}, false
}

// applyRatio derives numerator/denominator*scale from two previously
// extracted variables. Both sources must have been found in the text; a
// defaulted source would silently manufacture a ratio from assumptions.
func (r rule) applyRatio(a types.Assignment) (types.Value, bool) {
	num, okN := a.Values[r.spec.Numerator]
	den, okD := a.Values[r.spec.Denominator]
	if !okN || !okD || a.Defaulted[r.spec.Numerator] || a.Defaulted[r.spec.Denominator] {
		return types.Value{}, false
	}
	if !num.Kind.Numeric() || !den.Kind.Numeric() || den.Number == 0 {
		return types.Value{}, false
	}

	scale := r.spec.Scale
	if scale == 0 {
		scale = 100
	}
	result := num.Number / den.Number * scale

	if r.spec.Kind == types.KindInteger {
		return types.Integer(int64(result)), true
	}
	return types.Real(result), true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// splitSentences breaks lowercased text on sentence punctuation and
// newlines. The sentence is the negation co-occurrence window.
func splitSentences(lower string) []string {
	return strings.FieldsFunc(lower, func(r rune) bool {
		switch r {
		case '.', '!', '?', ';', '\n':
			return true
		}
		return false
	})
}
