package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/vkadlec/photogate/internal/fingerprint"
	"github.com/vkadlec/photogate/internal/model"
)

// ErrNotFound is returned when no image matches the requested id.
var ErrNotFound = errors.New("image not found")

// ImageRepository provides PostgreSQL-backed image record storage
type ImageRepository struct {
	pool *Pool
}

// NewImageRepository creates a new PostgreSQL image repository
func NewImageRepository(pool *Pool) *ImageRepository {
	return &ImageRepository{pool: pool}
}

// Create inserts one finished record. Status is final at insert time.
func (r *ImageRepository) Create(ctx context.Context, rec *model.ImageRecord) error {
	query := `
		INSERT INTO images (id, storage_key, original_name, mime_type, size,
			location_uri, backend, status, validation_reasons, fingerprint, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.StorageKey, rec.OriginalName, rec.MimeType, rec.Size,
		rec.LocationURI, rec.Backend, rec.Status,
		pq.Array(rec.ValidationReasons), nullString(rec.Fingerprint), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

// Get retrieves an image record by id.
func (r *ImageRepository) Get(ctx context.Context, id string) (*model.ImageRecord, error) {
	query := selectColumns + ` WHERE id = $1`

	rec, err := scanImage(r.pool.QueryRow(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get image: %w", err)
	}
	return rec, nil
}

// List returns all image records, newest first.
func (r *ImageRepository) List(ctx context.Context) ([]*model.ImageRecord, error) {
	query := selectColumns + ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var records []*model.ImageRecord
	for rows.Next() {
		rec, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate images: %w", err)
	}
	return records, nil
}

// Delete removes an image record by id.
func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM images WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecentValidFingerprints returns the fingerprints of the most recently
// accepted images, newest first. This is the duplicate detector's working
// set, fetched fresh per request.
func (r *ImageRepository) RecentValidFingerprints(ctx context.Context, limit int) ([]fingerprint.Fingerprint, error) {
	query := `
		SELECT fingerprint FROM images
		WHERE status = 'valid' AND fingerprint IS NOT NULL
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent fingerprints: %w", err)
	}
	defer rows.Close()

	var fingerprints []fingerprint.Fingerprint
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		fingerprints = append(fingerprints, fingerprint.Fingerprint(fp))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fingerprints: %w", err)
	}
	return fingerprints, nil
}

const selectColumns = `
	SELECT id, storage_key, original_name, mime_type, size,
		location_uri, backend, status, validation_reasons, fingerprint, created_at
	FROM images`

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanImage(row rowScanner) (*model.ImageRecord, error) {
	var (
		rec         model.ImageRecord
		reasons     pq.StringArray
		fingerprint sql.NullString
	)
	err := row.Scan(
		&rec.ID, &rec.StorageKey, &rec.OriginalName, &rec.MimeType, &rec.Size,
		&rec.LocationURI, &rec.Backend, &rec.Status, &reasons, &fingerprint, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.ValidationReasons = []string(reasons)
	if fingerprint.Valid {
		rec.Fingerprint = fingerprint.String
	}
	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
