package images

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/image-cloud/api/internal/common"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Create(ctx context.Context, image *Image) error {

	query :=
		`INSERT INTO images (id, filename, owner_id, size, storage_key, content)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		image.ID, image.Filename, image.OwnerID, image.Size, image.StorageKey, image.Content).Scan(&image.CreatedAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Image, error) {
	query :=
		`SELECT id, filename, owner_id, size, storage_key, created_at FROM images
		 WHERE id = $1
		 `

	image := &Image{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&image.ID, &image.Filename, &image.OwnerID, &image.Size, &image.StorageKey, &image.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return image, nil
}

func (r *PostgresRepository) ContentByID(ctx context.Context, id string) ([]byte, error) {
	var content []byte
	err := r.db.QueryRowContext(ctx, `SELECT content FROM images WHERE id = $1`, id).Scan(&content)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return content, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}

// TotalSizeByOwner is a full aggregation on every call; there is no cached
// usage counter. Fine at this scale, revisit if upload volume ever matters.
func (r *PostgresRepository) TotalSizeByOwner(ctx context.Context, ownerID string) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(size), 0) FROM images WHERE owner_id = $1`, ownerID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}
