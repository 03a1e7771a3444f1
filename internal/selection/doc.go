// Package selection plans which pending packages fit a byte budget and
// interprets the operator's index selection. Planning is read-only: pull
// status changes only after a package has been validated and routed.
package selection
