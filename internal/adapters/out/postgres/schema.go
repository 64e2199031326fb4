package postgres

import (
	"context"

	"freight/internal/adapters/out/postgres/bidrepo"
	"freight/internal/adapters/out/postgres/carrierrepo"
	"freight/internal/adapters/out/postgres/invoicerepo"
	"freight/internal/adapters/out/postgres/loadrepo"
	"freight/internal/adapters/out/postgres/negotiationrepo"
	"freight/internal/adapters/out/postgres/shipmentrepo"
	"freight/internal/adapters/out/postgres/userrepo"

	"gorm.io/gorm"
)

// Tables lists the tables in truncation order.
var Tables = []string{
	"negotiation_messages",
	"shipments",
	"invoices",
	"bids",
	"load_history",
	"loads",
	"carrier_documents",
	"carrier_profiles",
	"users",
}

// AutoMigrate builds the schema from the DTOs. Production databases are
// migrated with the SQL files under migrations/; this is for tests and local
// experiments and must stay equivalent to them.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).AutoMigrate(
		&userrepo.UserDTO{},
		&carrierrepo.ProfileDTO{},
		&carrierrepo.DocumentDTO{},
		&loadrepo.LoadDTO{},
		&loadrepo.HistoryDTO{},
		&bidrepo.BidDTO{},
		&negotiationrepo.MessageDTO{},
		&invoicerepo.InvoiceDTO{},
		&shipmentrepo.ShipmentDTO{},
	)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_bids_one_active_per_carrier
		ON bids (load_id, carrier_id)
		WHERE status IN ('pending', 'countered')
	`).Error
}
