package db

import (
	"context"

	"matchday/internal/types"
)

// CatalogRepository provides read access to the immutable reference tables:
// sports, teams, and broadcasters. Each is loaded in full once per run.
type CatalogRepository struct {
	db DBTX
}

// NewCatalogRepository creates a CatalogRepository backed by the given
// database connection (pool or transaction).
func NewCatalogRepository(db DBTX) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListSports returns all sports.
func (r *CatalogRepository) ListSports(ctx context.Context) ([]types.Sport, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, emoji FROM sports`,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list sports", err)
	}
	defer rows.Close()

	var sports []types.Sport
	for rows.Next() {
		var s types.Sport
		if err := rows.Scan(&s.ID, &s.Name, &s.Emoji); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan sport row", err)
		}
		sports = append(sports, s)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate sport rows", err)
	}
	return sports, nil
}

// ListTeams returns all teams.
func (r *CatalogRepository) ListTeams(ctx context.Context) ([]types.Team, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name FROM teams`,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list teams", err)
	}
	defer rows.Close()

	var teams []types.Team
	for rows.Next() {
		var t types.Team
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan team row", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate team rows", err)
	}
	return teams, nil
}

// ListBroadcasters returns all broadcasters.
func (r *CatalogRepository) ListBroadcasters(ctx context.Context) ([]types.Broadcaster, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, COALESCE(url, ''), COALESCE(type, '') FROM broadcasters`,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list broadcasters", err)
	}
	defer rows.Close()

	var broadcasters []types.Broadcaster
	for rows.Next() {
		var b types.Broadcaster
		var bType string
		if err := rows.Scan(&b.ID, &b.Name, &b.URL, &bType); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan broadcaster row", err)
		}
		b.Type = types.BroadcasterType(bType)
		broadcasters = append(broadcasters, b)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate broadcaster rows", err)
	}
	return broadcasters, nil
}
