// Package discovery finds newly-arrived package directories on the remote
// archive. It diffs the server's date directories against the inventory's
// known-dates set, applies the configured cutoff, and parses each package
// entry against a strict filename grammar. Discovery has no side effects;
// candidates only reach the store through enrichment.
package discovery
