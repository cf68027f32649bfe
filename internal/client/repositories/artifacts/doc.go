// Package artifacts provides the client-side persistence layer for the
// pending-artifact queue.
//
// # Overview
//
// The package defines a Repository interface over the local durable queue of
// route and guide artifacts (see internal/client/models). A SQLite-backed
// implementation (SQLiteRepository) persists data using a dbx.DBTX (either
// *sql.DB or *sql.Tx).
//
// # Data Model
//
// Each record stores the serialized payload, the owner identity captured at
// creation time, creation timestamp, queue status, retry bookkeeping, and the
// cloud id assigned by a successful remote write. A record exists in this
// store before any network attempt is made; cloud_id presence is the
// idempotency marker that prevents double uploads.
//
// # Concurrency
//
// Implementations are safe for concurrent use when backed by a properly
// configured *sql.DB. When using *sql.Tx (DBTX), follow normal transaction
// scoping rules.
package artifacts
