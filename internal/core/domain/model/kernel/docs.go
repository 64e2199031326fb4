// Package kernel provides the shared value objects of the freight domain.
//
//   - UUID: identity of every aggregate and entity
//   - Money: non-negative decimal amount used for bids, counters, prices and invoices
//
// Both are immutable and safe to copy and share between goroutines.
package kernel
