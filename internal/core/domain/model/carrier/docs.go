// Package carrier contains the carrier-side inputs to bidding: the carrier
// profile (scores, service zones, equipment, verification) and the
// compliance documents the carrier has on file.
//
// Both are read-only inputs to the domain services; the engine never mutates
// them.
package carrier
