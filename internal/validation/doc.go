// Package validation verifies transferred archives against their checksum
// manifests before anything is routed. Partial application of unverified data
// is treated as worse than blocking, so one bad archive fails the whole
// landing batch.
package validation
