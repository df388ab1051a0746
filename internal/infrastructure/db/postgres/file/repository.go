package file

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domain "file-share-api/internal/domain/file"
	"file-share-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DBTX
}

func NewRepository(db postgres.DBTX) domain.Repository {
	return &Repository{db: db}
}

func scanFile(row pgx.Row) (*File, error) {
	f := new(File)
	err := row.Scan(
		&f.ID,
		&f.OwnerID,

		&f.Name,
		&f.MimeType,
		&f.SizeBytes,
		&f.StoragePath,
		&f.ShareToken,

		&f.CreatedAt,
		&f.DownloadCount,
		&f.LastDownloadedAt,
	)
	return f, err
}

func (r *Repository) CreateFile(ctx context.Context, req *domain.File) (*domain.File, error) {
	f, err := scanFile(r.db.QueryRow(
		ctx,
		InsertFile,
		req.ID, req.OwnerID, req.Name, req.MimeType, req.SizeBytes, req.StoragePath, req.ShareToken, req.CreatedAt,
	))
	if err != nil {
		if postgres.ViolatedConstraint(err) == ShareTokenConstraint {
			return nil, domain.ErrDuplicateToken
		}
		return nil, err
	}

	return fromDBModel(f), nil
}

func (r *Repository) FetchOwnerFiles(ctx context.Context, ownerID string) (domain.Files, error) {
	rows, err := r.db.Query(ctx, SelectOwnerFiles, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fs Files
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return fromDBModels(fs), nil
}

func (r *Repository) FetchByID(ctx context.Context, id domain.ID) (*domain.File, error) {
	f, err := scanFile(r.db.QueryRow(ctx, SelectFileByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}

	return fromDBModel(f), nil
}

func (r *Repository) FetchByShareToken(ctx context.Context, token string) (*domain.File, error) {
	f, err := scanFile(r.db.QueryRow(ctx, SelectFileByShareToken, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return fromDBModel(f), nil
}

// IncrementDownloads is a single UPDATE, so concurrent calls never lose a count.
func (r *Repository) IncrementDownloads(ctx context.Context, id domain.ID) error {
	tag, err := r.db.Exec(ctx, IncrementDownloadCount, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *Repository) DeleteFile(ctx context.Context, id domain.ID, ownerID string) error {
	tag, err := r.db.Exec(ctx, DeleteFileByOwner, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
