package db

import (
	"context"

	"matchday/internal/types"
)

// UserRepository provides read access to the users table.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a UserRepository backed by the given database
// connection (pool or transaction).
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// List returns all users. Users without an email address come back with an
// empty Email and are filtered out at dispatch time.
func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id::text, COALESCE(email, '') FROM users`,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list users", err)
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		var u types.User
		if err := rows.Scan(&u.ID, &u.Email); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan user row", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate user rows", err)
	}
	return users, nil
}
