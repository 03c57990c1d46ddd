// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// StoreConfig holds settings for the ontology document store.
type StoreConfig struct {
	// Dir is the root directory holding ontology documents, laid out as
	// [dir]/[name]/v[version]/ontology.yaml with a latest/ alias.
	Dir string `json:"dir" yaml:"dir"`

	// Timeout bounds a single document load (default 5s). On timeout
	// the request fails with a load error.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// DecisionConfig holds settings for the decision engine.
type DecisionConfig struct {
	// Budget bounds one constraint's check (default 1s). A constraint
	// that exceeds it is reported undetermined and counted as a
	// violation, never as a pass.
	Budget time.Duration `json:"budget" yaml:"budget"`
}

// AuditConfig holds settings for the audit sink.
type AuditConfig struct {
	// Path is the SQLite database file for verification records.
	Path string `json:"path" yaml:"path"`

	// Retention is how long records are kept (default 720h / 30 days).
	Retention time.Duration `json:"retention" yaml:"retention"`

	// Timeout bounds a single audit write (default 5s). A failed write
	// is logged and retried once; it never fails a computed result.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// PipelineConfig groups all component configurations.
type PipelineConfig struct {
	Store    StoreConfig    `json:"store" yaml:"store"`
	Decision DecisionConfig `json:"decision" yaml:"decision"`
	Audit    AuditConfig    `json:"audit" yaml:"audit"`
}

// Defaults for unset configuration fields.
const (
	DefaultStoreTimeout   = 5 * time.Second
	DefaultDecisionBudget = time.Second
	DefaultAuditRetention = 30 * 24 * time.Hour
	DefaultAuditTimeout   = 5 * time.Second
)
