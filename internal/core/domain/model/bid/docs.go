// Package bid models carrier bids and the negotiation sub-machine that runs in
// parallel to the load lifecycle.
//
// Bid edges live in one adjacency map (status.go). Accepting a bid is
// orchestrated by the application layer together with the load award; this
// package only guarantees that each individual bid change is a legal edge.
package bid
