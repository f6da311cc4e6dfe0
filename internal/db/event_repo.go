package db

import (
	"context"

	"matchday/internal/types"
)

// EventRepository provides read access to the events table.
type EventRepository struct {
	db DBTX
}

// NewEventRepository creates an EventRepository backed by the given database
// connection (pool or transaction).
func NewEventRepository(db DBTX) *EventRepository {
	return &EventRepository{db: db}
}

// ListForecastedOn returns events with status "forecasted" on the given
// civil date ("YYYY-MM-DD"), ordered by start time ascending.
//
// Date, time, and start_at are selected as text: the digest logic treats
// them as opaque sortable strings, and events without a confirmed start
// yield an empty start_at rather than NULL.
func (r *EventRepository) ListForecastedOn(ctx context.Context, date string) ([]types.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, sport_id, COALESCE(competition, ''),
		        date::text, COALESCE(time::text, ''),
		        COALESCE(event_detail_1, ''), COALESCE(event_detail_2, ''),
		        COALESCE(broadcaster_ids, '{}'), status,
		        COALESCE(start_at::text, '')
		 FROM events
		 WHERE status = $1 AND date = $2
		 ORDER BY time ASC`,
		types.EventStatusForecasted,
		date,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list forecasted events", err)
	}
	defer rows.Close()

	var events []types.Event
	for rows.Next() {
		var e types.Event
		if err := rows.Scan(
			&e.ID,
			&e.SportID,
			&e.Competition,
			&e.Date,
			&e.Time,
			&e.EventDetail1,
			&e.EventDetail2,
			&e.BroadcasterIDs,
			&e.Status,
			&e.StartAt,
		); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan event row", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate event rows", err)
	}
	return events, nil
}
