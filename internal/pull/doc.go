// Package pull composes the retrieval workflow: refresh the inventory from
// the remote archive, plan a byte-budgeted batch of pending packages, and
// stage the chosen packages with their checksum manifests. Retrieval never
// changes pull status; only routing does.
package pull
