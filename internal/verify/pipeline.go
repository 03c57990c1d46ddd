// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify wires the pipeline stages together: ontology lookup,
// variable extraction, formula compilation, decision, and certificate
// construction, with a best-effort audit write at the end.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aare-ai/verify-engine/internal/certificate"
	"github.com/aare-ai/verify-engine/internal/decide"
	"github.com/aare-ai/verify-engine/internal/formula"
	"github.com/aare-ai/verify-engine/internal/ontology"
	"github.com/aare-ai/verify-engine/pkg/types"
)

// Source loads ontology documents. An empty version means latest.
type Source interface {
	Load(ctx context.Context, name, version string) (*ontology.Ontology, error)
}

// Sink records completed verifications.
type Sink interface {
	Append(ctx context.Context, rec types.AuditRecord) error
}

// Verifier runs the verification pipeline. It is safe for concurrent
// use; the ontology cache is shared across requests.
type Verifier struct {
	source Source
	sink   Sink
	cache  *ontology.Cache
	proc   decide.Procedure
	cfg    types.PipelineConfig
	log    *slog.Logger
	now    func() time.Time
}

// New builds a Verifier. sink may be nil to disable audit records;
// logger may be nil for the default logger.
func New(source Source, sink Sink, cfg types.PipelineConfig, logger *slog.Logger) *Verifier {
	if cfg.Store.Timeout <= 0 {
		cfg.Store.Timeout = types.DefaultStoreTimeout
	}
	if cfg.Decision.Budget <= 0 {
		cfg.Decision.Budget = types.DefaultDecisionBudget
	}
	if cfg.Audit.Timeout <= 0 {
		cfg.Audit.Timeout = types.DefaultAuditTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		source: source,
		sink:   sink,
		cache:  ontology.NewCache(),
		proc:   decide.Evaluator{},
		cfg:    cfg,
		log:    logger,
		now:    time.Now,
	}
}

// Verify checks text against the named ontology. version may be empty
// for latest. An error is returned only when the ontology itself cannot
// be loaded; a text that fails its constraints is a successful
// verification with Verified=false.
func (v *Verifier) Verify(ctx context.Context, text, name, version string) (*types.VerificationResult, error) {
	start := v.now()

	ont, err := v.lookup(ctx, name, version)
	if err != nil {
		return nil, err
	}

	assignment, warnings := ont.Engine.Extract(text)

	violations := make([]types.Violation, 0)
	outcomes := make([]types.ConstraintOutcome, 0, len(ont.Constraints))
	for _, c := range ont.Constraints {
		outcome, warn, internal := v.check(ctx, c, assignment)
		if warn != "" {
			warnings = append(warnings, warn)
		}
		satisfied := outcome == decide.Satisfied
		outcomes = append(outcomes, types.ConstraintOutcome{
			ConstraintID: c.ID,
			Satisfied:    satisfied,
		})
		if !satisfied {
			violations = append(violations, violation(c, internal))
		}
	}

	inputDigest := certificate.InputDigest(text)
	result := &types.VerificationResult{
		Verified:   len(violations) == 0,
		Violations: violations,
		Warnings:   warnings,
		ParsedData: assignment.Parsed(),
		Ontology: types.OntologyRef{
			Name:               ont.Name,
			Version:            ont.Version,
			ConstraintsChecked: len(ont.Constraints),
		},
		Outcomes:          outcomes,
		CertificateDigest: certificate.Digest(ont.Name, ont.Version, inputDigest, outcomes),
		InputDigest:       inputDigest,
		VerificationID:    uuid.NewString(),
		Timestamp:         v.now().UTC(),
	}
	result.ExecutionTimeMS = result.Timestamp.Sub(start.UTC()).Milliseconds()

	v.record(ctx, result)
	return result, nil
}

// lookup resolves the ontology through the load-once cache, bounding
// the first load with the store timeout.
func (v *Verifier) lookup(ctx context.Context, name, version string) (*ontology.Ontology, error) {
	return v.cache.Get(ctx, name, version, func(ctx context.Context) (*ontology.Ontology, error) {
		loadCtx, cancel := context.WithTimeout(ctx, v.cfg.Store.Timeout)
		defer cancel()
		return v.source.Load(loadCtx, name, version)
	})
}

// check decides one constraint under the decision budget. Anything
// short of a proven pass counts against the text: compile failures,
// budget exhaustion, and undetermined searches all report Unsatisfied,
// with a warning explaining why. The internal flag marks a compile
// failure, which is an ontology defect rather than a finding about
// the text.
func (v *Verifier) check(ctx context.Context, c ontology.Constraint, a types.Assignment) (outcome decide.Outcome, warn string, internal bool) {
	prop, err := formula.Compile(c.Formula, c.Variables, a, c.Free)
	if err != nil {
		return decide.Unsatisfied, fmt.Sprintf("constraint %s: formula compilation failed: %v", c.ID, err), true
	}

	budgetCtx, cancel := context.WithTimeout(ctx, v.cfg.Decision.Budget)
	defer cancel()

	outcome, err = v.proc.Decide(budgetCtx, prop)
	if err != nil {
		return decide.Unsatisfied, fmt.Sprintf("constraint %s: undetermined, treated as violation: %v", c.ID, err), false
	}
	if outcome == decide.Undetermined {
		return decide.Unsatisfied, fmt.Sprintf("constraint %s: undetermined, treated as violation", c.ID), false
	}
	return outcome, "", false
}

func violation(c ontology.Constraint, internal bool) types.Violation {
	display := c.FormulaReadable
	if display == "" {
		display = c.Formula.String()
	}
	message := c.ErrorMessage
	if internal {
		message = "internal formula error"
	}
	return types.Violation{
		ConstraintID: c.ID,
		Category:     c.Category,
		Description:  c.Description,
		ErrorMessage: message,
		Citation:     c.Citation,
		Formula:      display,
	}
}

// record writes the audit trail for a completed verification. Failures
// are logged and retried once; they never surface to the caller.
func (v *Verifier) record(ctx context.Context, result *types.VerificationResult) {
	if v.sink == nil {
		return
	}

	rec := types.AuditRecord{
		VerificationID:    result.VerificationID,
		Ontology:          result.Ontology.Name,
		OntologyVersion:   result.Ontology.Version,
		Timestamp:         result.Timestamp,
		Verified:          result.Verified,
		ViolationCount:    len(result.Violations),
		Violations:        result.Violations,
		InputDigest:       result.InputDigest,
		CertificateDigest: result.CertificateDigest,
		ExecutionTimeMS:   result.ExecutionTimeMS,
		ExpiresAt:         result.Timestamp.Add(v.retention()),
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), v.cfg.Audit.Timeout)
	defer cancel()

	err := v.sink.Append(writeCtx, rec)
	if err != nil {
		v.log.Warn("audit write failed, retrying",
			"verification_id", rec.VerificationID, "error", err)
		if err = v.sink.Append(writeCtx, rec); err != nil {
			v.log.Error("audit write failed after retry",
				"verification_id", rec.VerificationID, "error", err)
		}
	}
}

func (v *Verifier) retention() time.Duration {
	if v.cfg.Audit.Retention > 0 {
		return v.cfg.Audit.Retention
	}
	return types.DefaultAuditRetention
}

// CachedOntologies reports how many ontologies the verifier is holding,
// for diagnostics.
func (v *Verifier) CachedOntologies() int {
	return v.cache.Len()
}
