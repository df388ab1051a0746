package profile

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"file-share-api/internal/domain/profile"
	"file-share-api/internal/infrastructure/db/postgres"
)

const SelectDisplayName = `
	SELECT full_name
	FROM profiles
	WHERE id = $1
`

type Repository struct {
	db postgres.DBTX
}

func NewRepository(db postgres.DBTX) profile.Repository {
	return &Repository{db: db}
}

// FetchDisplayName returns "" for owners without a profile row.
func (r *Repository) FetchDisplayName(ctx context.Context, ownerID string) (string, error) {
	var name string
	if err := r.db.QueryRow(ctx, SelectDisplayName, ownerID).Scan(&name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}

	return name, nil
}
