// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AuditRecord is the append-only record written once per verification.
// Records carry an expiration horizon so the store can be swept without
// consulting the original retention policy.
type AuditRecord struct {
	VerificationID    string      `json:"verification_id" yaml:"verification_id"`
	Ontology          string      `json:"ontology" yaml:"ontology"`
	OntologyVersion   string      `json:"ontology_version" yaml:"ontology_version"`
	Timestamp         time.Time   `json:"timestamp" yaml:"timestamp"`
	Verified          bool        `json:"verified" yaml:"verified"`
	ViolationCount    int         `json:"violation_count" yaml:"violation_count"`
	Violations        []Violation `json:"violations,omitempty" yaml:"violations,omitempty"`
	InputDigest       string      `json:"input_digest" yaml:"input_digest"`
	CertificateDigest string      `json:"certificate_digest" yaml:"certificate_digest"`
	ExecutionTimeMS   int64       `json:"execution_time_ms" yaml:"execution_time_ms"`
	ExpiresAt         time.Time   `json:"expires_at" yaml:"expires_at"`
}
