// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package certificate produces the deterministic attestation digest for
// a verification. Anyone holding the ontology identity, the input text,
// and the ordered constraint outcomes can recompute the digest and
// check it against the recorded one; the digest itself drives no
// decision logic.
package certificate

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/aare-ai/verify-engine/pkg/types"
)

// Method tags the digest scheme so a future scheme change cannot be
// confused with today's certificates.
const Method = "sha256/canonical-json/v1"

// payload is the canonical byte layout that gets hashed. Field order is
// fixed by the struct definition; encoding/json emits struct fields in
// declaration order, so identical inputs always serialize identically.
type payload struct {
	Method          string                    `json:"method"`
	OntologyName    string                    `json:"ontology_name"`
	OntologyVersion string                    `json:"ontology_version"`
	InputDigest     string                    `json:"input_digest"`
	Outcomes        []types.ConstraintOutcome `json:"outcomes"`
}

// InputDigest returns the hex SHA-256 of the raw input text.
func InputDigest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Digest computes the certificate digest binding the ontology identity,
// the input digest, and the ordered (constraint id, satisfied)
// outcomes. Identical inputs always yield an identical digest.
func Digest(ontologyName, ontologyVersion, inputDigest string, outcomes []types.ConstraintOutcome) string {
	if outcomes == nil {
		outcomes = []types.ConstraintOutcome{}
	}
	canonical, err := json.Marshal(payload{
		Method:          Method,
		OntologyName:    ontologyName,
		OntologyVersion: ontologyVersion,
		InputDigest:     inputDigest,
		Outcomes:        outcomes,
	})
	if err != nil {
		// payload contains only strings and bools; Marshal cannot fail.
		panic(err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}
