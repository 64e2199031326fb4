package load

import (
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"
)

// HistoryRecord is the immutable audit entry written for every status change.
type HistoryRecord struct {
	id      kernel.UUID
	loadID  kernel.UUID
	from    Status
	to      Status
	actorID kernel.UUID
	note    string
	at      time.Time
}

func newHistoryRecord(loadID kernel.UUID, from, to Status, actorID kernel.UUID, note string, at time.Time) HistoryRecord {
	return HistoryRecord{
		id:      kernel.NewUUID(),
		loadID:  loadID,
		from:    from,
		to:      to,
		actorID: actorID,
		note:    note,
		at:      at,
	}
}

// RestoreHistoryRecord rebuilds a record read from storage.
func RestoreHistoryRecord(
	id, loadID kernel.UUID,
	from, to Status,
	actorID kernel.UUID,
	note string,
	at time.Time,
) (HistoryRecord, error) {
	if id.IsZero() || loadID.IsZero() {
		return HistoryRecord{}, errs.NewValueIsRequiredError("history record id")
	}
	return HistoryRecord{id: id, loadID: loadID, from: from, to: to, actorID: actorID, note: note, at: at}, nil
}

func (h HistoryRecord) ID() kernel.UUID      { return h.id }
func (h HistoryRecord) LoadID() kernel.UUID  { return h.loadID }
func (h HistoryRecord) From() Status         { return h.from }
func (h HistoryRecord) To() Status           { return h.to }
func (h HistoryRecord) ActorID() kernel.UUID { return h.actorID }
func (h HistoryRecord) Note() string         { return h.note }
func (h HistoryRecord) At() time.Time        { return h.at }
