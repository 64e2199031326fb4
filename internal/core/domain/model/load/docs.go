// Package load contains the Load aggregate and its lifecycle state machine.
//
// A load is submitted by a shipper, priced by an admin, posted to carriers in
// one of three posting modes (open, invite, assign), negotiated through bids,
// awarded to exactly one bid, invoiced and finally executed and closed.
//
// Status transitions are validated against a single static adjacency map
// (see transitions in status.go). The map is the only place edges are
// defined; ValidateTransition is the pure gate used by the aggregate and by
// the application layer before any side effect runs.
//
// Every accepted transition produces a HistoryRecord that the repository
// stores in the same transaction as the load itself.
package load
