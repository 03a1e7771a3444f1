// Package inventory persists dataset package records in SQLite and is the
// source of truth for pull status.
//
// Records enter through Insert with pending status during enrichment and are
// advanced to pulled exactly once by the routing engine. package_path carries
// a UNIQUE constraint, which makes re-discovery of known packages a no-op and
// lets the rest of the pipeline treat discovery as idempotent. Records are
// never deleted; the inventory doubles as an audit trail of everything that
// has ever arrived on the remote archive.
package inventory
