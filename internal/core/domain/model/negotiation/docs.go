// Package negotiation holds the append-only message log attached to a bid and
// the derivation of each side's current offer from it.
//
// There is no stored "current offer": it is recomputed from the log whenever
// it is read, so the log is the single source of truth.
package negotiation
