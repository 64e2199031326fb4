// Package ports defines the contracts between the brokerage core and its
// infrastructure: repositories, the unit of work and the event publisher.
package ports

import (
	"context"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
)

// LoadRepository persists load aggregates together with their status history.
type LoadRepository interface {
	// Add persists a new load and flushes its pending history records.
	Add(ctx context.Context, aggregate *load.Load) error

	// Update persists an existing load and flushes its pending history records
	// in the same transaction.
	Update(ctx context.Context, aggregate *load.Load) error

	// Get returns the load or an *errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*load.Load, error)

	// GetForUpdate is Get with a row lock held until the transaction ends.
	// Outside a transaction it behaves like Get.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*load.Load, error)

	// List returns every load, newest first.
	List(ctx context.Context) ([]*load.Load, error)

	// ListByShipper returns the loads owned by shipperID, newest first.
	ListByShipper(ctx context.Context, shipperID kernel.UUID) ([]*load.Load, error)

	// ListAwardedMissingArtifacts returns awarded-or-later loads that lack an
	// invoice or a shipment, oldest first, at most limit of them.
	ListAwardedMissingArtifacts(ctx context.Context, limit int) ([]*load.Load, error)

	// PickupCodeExists reports whether a pickup code was already minted.
	PickupCodeExists(ctx context.Context, code string) (bool, error)
}

// HistoryRepository reads and appends load status history.
type HistoryRepository interface {
	Append(ctx context.Context, records ...load.HistoryRecord) error
	ListByLoad(ctx context.Context, loadID kernel.UUID) ([]load.HistoryRecord, error)
}
