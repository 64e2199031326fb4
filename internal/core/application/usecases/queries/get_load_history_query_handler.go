package queries

import (
	"context"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/user"
	"freight/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetLoadHistoryQueryHandler reads the audit trail straight from the
// load_history table. Visible to admins, the owning shipper and the carrier
// the load was awarded to.
type GetLoadHistoryQueryHandler struct {
	db *gorm.DB
}

func NewGetLoadHistoryQueryHandler(db *gorm.DB) GetLoadHistoryQueryHandler {
	return GetLoadHistoryQueryHandler{db: db}
}

// Handle returns the entries oldest first.
func (h GetLoadHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetLoadHistoryQuery,
) ([]LoadHistoryEntry, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if err := h.authorize(ctx, query.LoadID(), query.Actor()); err != nil {
		return nil, err
	}

	entries := make([]LoadHistoryEntry, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			from_status,
			to_status,
			actor_id,
			note,
			created_at
		FROM load_history
		WHERE load_id = ?
		ORDER BY created_at, id
	`, query.LoadID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var entry LoadHistoryEntry
		var id, actorID uuid.UUID

		err = rows.Scan(
			&id,
			&entry.FromStatus,
			&entry.ToStatus,
			&actorID,
			&entry.Note,
			&entry.At,
		)
		if err != nil {
			return nil, err
		}

		entryID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		entry.ID = entryID

		actor, idErr := kernel.UUIDFromBytes(actorID[:])
		if idErr != nil {
			return nil, idErr
		}
		entry.ActorID = actor
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (h GetLoadHistoryQueryHandler) authorize(ctx context.Context, loadID kernel.UUID, actor user.Actor) error {
	var owner struct {
		ShipperID         uuid.UUID
		AssignedCarrierID uuid.NullUUID
	}
	res := h.db.WithContext(ctx).Raw(`
		SELECT shipper_id, assigned_carrier_id
		FROM loads
		WHERE id = ?
	`, loadID.Bytes()).Scan(&owner)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("load", loadID)
	}

	switch {
	case actor.IsAdmin():
		return nil
	case actor.IsShipper() && owner.ShipperID == actor.ID.Bytes():
		return nil
	case actor.IsCarrier() && owner.AssignedCarrierID.Valid && owner.AssignedCarrierID.UUID == actor.ID.Bytes():
		return nil
	}
	return errs.NewForbiddenError(actor.String(), "read history of load "+loadID.String())
}
