package db

import (
	"context"

	"matchday/internal/types"
)

// AlertRepository provides read access to the alerts table.
type AlertRepository struct {
	db DBTX
}

// NewAlertRepository creates an AlertRepository backed by the given database
// connection (pool or transaction).
func NewAlertRepository(db DBTX) *AlertRepository {
	return &AlertRepository{db: db}
}

// ListEmailAlerts returns all alerts of type "email". League and team
// filters come back as nil when unset, which the matcher reads as
// "match any".
func (r *AlertRepository) ListEmailAlerts(ctx context.Context) ([]types.Alert, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id::text, sport_id, league_id, team_id, type
		 FROM alerts
		 WHERE type = $1`,
		types.AlertTypeEmail,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list email alerts", err)
	}
	defer rows.Close()

	var alerts []types.Alert
	for rows.Next() {
		var a types.Alert
		if err := rows.Scan(&a.ID, &a.UserID, &a.SportID, &a.LeagueID, &a.TeamID, &a.Type); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan alert row", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate alert rows", err)
	}
	return alerts, nil
}
