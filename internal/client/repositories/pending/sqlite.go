package pending

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/moodnotes/internal/client/models"
	"github.com/dmitrijs2005/moodnotes/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) AddUpload(ctx context.Context, u *models.PendingUpload) error {
	query := `INSERT INTO pending_uploads (remote_image_path, image_uri, session_uri)
			VALUES (?, ?, ?)
			ON CONFLICT(remote_image_path) DO UPDATE SET image_uri = excluded.image_uri,
				session_uri = excluded.session_uri
	`
	_, err := r.db.ExecContext(ctx, query, u.RemoteImagePath, u.ImageURI, u.SessionURI)
	if err != nil {
		return fmt.Errorf("failed to record pending upload: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetSessionURI(ctx context.Context, remoteImagePath, sessionURI string) error {
	query := `UPDATE pending_uploads SET session_uri = ? WHERE remote_image_path = ?`
	_, err := r.db.ExecContext(ctx, query, sessionURI, remoteImagePath)
	if err != nil {
		return fmt.Errorf("failed to update session uri: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListUploads(ctx context.Context) ([]*models.PendingUpload, error) {
	query := `SELECT remote_image_path, image_uri, session_uri FROM pending_uploads`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending uploads: %w", err)
	}
	defer rows.Close()

	var result []*models.PendingUpload
	for rows.Next() {
		item := &models.PendingUpload{}
		if err := rows.Scan(&item.RemoteImagePath, &item.ImageURI, &item.SessionURI); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) RemoveUpload(ctx context.Context, remoteImagePath string) error {
	query := `DELETE FROM pending_uploads WHERE remote_image_path = ?`
	_, err := r.db.ExecContext(ctx, query, remoteImagePath)
	if err != nil {
		return fmt.Errorf("failed to remove pending upload: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) AddDelete(ctx context.Context, d *models.PendingDelete) error {
	query := `INSERT INTO pending_deletes (remote_image_path)
			VALUES (?)
			ON CONFLICT(remote_image_path) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, d.RemoteImagePath)
	if err != nil {
		return fmt.Errorf("failed to record pending delete: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListDeletes(ctx context.Context) ([]*models.PendingDelete, error) {
	query := `SELECT remote_image_path FROM pending_deletes`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending deletes: %w", err)
	}
	defer rows.Close()

	var result []*models.PendingDelete
	for rows.Next() {
		item := &models.PendingDelete{}
		if err := rows.Scan(&item.RemoteImagePath); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) RemoveDelete(ctx context.Context, remoteImagePath string) error {
	query := `DELETE FROM pending_deletes WHERE remote_image_path = ?`
	_, err := r.db.ExecContext(ctx, query, remoteImagePath)
	if err != nil {
		return fmt.Errorf("failed to remove pending delete: %w", err)
	}
	return nil
}
