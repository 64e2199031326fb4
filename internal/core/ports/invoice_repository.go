package ports

import (
	"context"

	"freight/internal/core/domain/model/invoice"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/shipment"
)

// InvoiceRepository persists invoices. There is at most one invoice per load.
type InvoiceRepository interface {
	// Add returns an *errs.ConflictError when the load already has an invoice.
	Add(ctx context.Context, aggregate *invoice.Invoice) error
	Update(ctx context.Context, aggregate *invoice.Invoice) error
	GetByLoad(ctx context.Context, loadID kernel.UUID) (*invoice.Invoice, error)
	NumberExists(ctx context.Context, number string) (bool, error)
}

// ShipmentRepository persists shipments. There is at most one shipment per load.
type ShipmentRepository interface {
	// Add returns an *errs.ConflictError when the load already has a shipment.
	Add(ctx context.Context, aggregate *shipment.Shipment) error
	Update(ctx context.Context, aggregate *shipment.Shipment) error
	GetByLoad(ctx context.Context, loadID kernel.UUID) (*shipment.Shipment, error)
}
