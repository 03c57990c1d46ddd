// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit persists verification records in an append-only SQLite
// store keyed by verification id. Writes are best-effort from the
// pipeline's point of view: a verification result is worth more
// delivered than blocked on its audit trail.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/aare-ai/verify-engine/pkg/types"
)

// ErrNotFound reports that no record exists for a verification id.
var ErrNotFound = errors.New("verification record not found")

// Store manages the audit SQLite database.
type Store struct {
	db        *sql.DB
	retention time.Duration
}

// NewStore opens or creates the audit database at cfg.Path and creates
// the schema if it does not exist.
func NewStore(cfg types.AuditConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating audit directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}

	retention := cfg.Retention
	if retention <= 0 {
		retention = types.DefaultAuditRetention
	}

	s := &Store{db: db, retention: retention}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS verifications (
			id TEXT PRIMARY KEY,
			ontology TEXT NOT NULL,
			ontology_version TEXT,
			ts INTEGER NOT NULL,
			verified INTEGER NOT NULL,
			violation_count INTEGER NOT NULL,
			violations TEXT,
			input_digest TEXT,
			certificate_digest TEXT,
			execution_time_ms INTEGER,
			expires_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_verifications_ts ON verifications(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_verifications_expires ON verifications(expires_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Append writes one record. Records are never updated: a duplicate
// verification id is an error. A zero ExpiresAt gets the configured
// retention horizon from the record timestamp.
func (s *Store) Append(ctx context.Context, rec types.AuditRecord) error {
	expires := rec.ExpiresAt
	if expires.IsZero() {
		expires = rec.Timestamp.Add(s.retention)
	}

	violationsJSON, err := json.Marshal(rec.Violations)
	if err != nil {
		return fmt.Errorf("encoding violations: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO verifications
		 (id, ontology, ontology_version, ts, verified, violation_count,
		  violations, input_digest, certificate_digest, execution_time_ms, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.VerificationID, rec.Ontology, rec.OntologyVersion,
		rec.Timestamp.UTC().Unix(), rec.Verified, rec.ViolationCount,
		string(violationsJSON), rec.InputDigest, rec.CertificateDigest,
		rec.ExecutionTimeMS, expires.UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("inserting record %s: %w", rec.VerificationID, err)
	}
	return nil
}

// Get retrieves one record by verification id.
func (s *Store) Get(ctx context.Context, verificationID string) (*types.AuditRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, ontology, ontology_version, ts, verified, violation_count,
		        violations, input_digest, certificate_digest, execution_time_ms, expires_at
		 FROM verifications WHERE id = ?`, verificationID)

	var rec types.AuditRecord
	var ts, expires int64
	var violationsJSON string
	err := row.Scan(&rec.VerificationID, &rec.Ontology, &rec.OntologyVersion,
		&ts, &rec.Verified, &rec.ViolationCount, &violationsJSON,
		&rec.InputDigest, &rec.CertificateDigest, &rec.ExecutionTimeMS, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading record %s: %w", verificationID, err)
	}

	rec.Timestamp = time.Unix(ts, 0).UTC()
	rec.ExpiresAt = time.Unix(expires, 0).UTC()
	if violationsJSON != "" {
		if err := json.Unmarshal([]byte(violationsJSON), &rec.Violations); err != nil {
			return nil, fmt.Errorf("decoding violations for %s: %w", verificationID, err)
		}
	}
	return &rec, nil
}

// Sweep deletes records whose expiration horizon has passed and returns
// how many were removed.
func (s *Store) Sweep(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM verifications WHERE expires_at < ?`, now.UTC().Unix())
	if err != nil {
		return 0, fmt.Errorf("sweeping expired records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting swept records: %w", err)
	}
	return n, nil
}

// Stats summarizes verification activity since a point in time.
type Stats struct {
	Total          int            `json:"total" yaml:"total"`
	Verified       int            `json:"verified" yaml:"verified"`
	Failed         int            `json:"failed" yaml:"failed"`
	AvgExecutionMS float64        `json:"avg_execution_time_ms" yaml:"avg_execution_time_ms"`
	ByOntology     map[string]int `json:"by_ontology" yaml:"by_ontology"`
}

// WindowStats aggregates records with a timestamp at or after since.
func (s *Store) WindowStats(ctx context.Context, since time.Time) (Stats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ontology, verified, execution_time_ms FROM verifications WHERE ts >= ?`,
		since.UTC().Unix())
	if err != nil {
		return Stats{}, fmt.Errorf("querying stats window: %w", err)
	}
	defer rows.Close()

	stats := Stats{ByOntology: make(map[string]int)}
	var totalMS int64
	for rows.Next() {
		var ontologyName string
		var verified bool
		var ms int64
		if err := rows.Scan(&ontologyName, &verified, &ms); err != nil {
			return Stats{}, fmt.Errorf("scanning stats row: %w", err)
		}
		stats.Total++
		if verified {
			stats.Verified++
		} else {
			stats.Failed++
		}
		totalMS += ms
		stats.ByOntology[ontologyName]++
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterating stats rows: %w", err)
	}
	if stats.Total > 0 {
		stats.AvgExecutionMS = float64(totalMS) / float64(stats.Total)
	}
	return stats, nil
}
