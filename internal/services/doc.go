// Package services defines the shared error taxonomy and context plumbing for
// the external capabilities shorepull depends on (remote transport, metadata
// lookup, archive tooling). Subpackages wrap the concrete tools; this package
// owns the sentinel errors every stage classifies against and the context keys
// that thread run identity through logging.
package services
