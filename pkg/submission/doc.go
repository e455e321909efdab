// Package submission provides a reusable library for student file
// submission intake with pluggable repository and blob storage backends.
//
// It exposes a single Service interface that orchestrates the intake
// pipeline (multipart decoding, validation, content fingerprinting, blob
// and metadata persistence, audit notification) and the role-gated read
// side (access decisions, sanitized metadata projections, status
// lookups). Implementations of repositories (memory, Postgres) and blob
// stores (memory, S3) are provided under subpackages.
//
// Failure Policy
//
// Decoding and validation failures return before any side effect. The
// blob write happens before the metadata write so a record can never
// point at a missing blob; a metadata failure after a successful blob
// write leaves the blob in place for later reconciliation. Audit
// delivery is best-effort and never alters the caller-visible outcome.
package submission
