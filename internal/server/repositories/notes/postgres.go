// Package notes provides the PostgreSQL-backed repository for server-side
// note persistence and owner-scoped queries.
package notes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/common"
	"github.com/dmitrijs2005/moodnotes/internal/dbx"
	"github.com/dmitrijs2005/moodnotes/internal/server/models"
)

// PostgresRepository implements note storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// images travel as a JSONB column; the slice is (un)marshalled at the edge.
func marshalImages(images []string) ([]byte, error) {
	if images == nil {
		images = []string{}
	}
	return json.Marshal(images)
}

func (r *PostgresRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	imgs, err := marshalImages(note.Images)
	if err != nil {
		return nil, fmt.Errorf("images marshal error: %w", err)
	}

	query := `
		INSERT INTO notes (owner_id, title, description, mood, date, images)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err = r.db.QueryRowContext(ctx, query,
		note.OwnerID, note.Title, note.Description, note.Mood, note.Date, imgs).Scan(&note.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return note, nil
}

func (r *PostgresRepository) Update(ctx context.Context, note *models.Note) error {
	imgs, err := marshalImages(note.Images)
	if err != nil {
		return fmt.Errorf("images marshal error: %w", err)
	}

	query := `
		UPDATE notes
		SET title = $1, description = $2, mood = $3, date = $4, images = $5
		WHERE id = $6 AND owner_id = $7
	`
	res, err := r.db.ExecContext(ctx, query,
		note.Title, note.Description, note.Mood, note.Date, imgs, note.ID, note.OwnerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id, ownerID string) (*models.Note, error) {
	query := `
		SELECT id, owner_id, title, description, mood, date, images
		FROM notes WHERE id = $1 AND owner_id = $2
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, ownerID))
}

func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID string) (*models.Note, error) {
	query := `
		DELETE FROM notes WHERE id = $1 AND owner_id = $2
		RETURNING id, owner_id, title, description, mood, date, images
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, ownerID))
}

func (r *PostgresRepository) DeleteAll(ctx context.Context, ownerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE owner_id = $1`, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SelectByOwner(ctx context.Context, ownerID string) ([]*models.Note, error) {
	query := `
		SELECT id, owner_id, title, description, mood, date, images
		FROM notes WHERE owner_id = $1
		ORDER BY date DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	return r.scanAll(rows)
}

func (r *PostgresRepository) SelectByOwnerBetween(ctx context.Context, ownerID string, from, to time.Time) ([]*models.Note, error) {
	query := `
		SELECT id, owner_id, title, description, mood, date, images
		FROM notes WHERE owner_id = $1 AND date >= $2 AND date < $3
		ORDER BY date DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	return r.scanAll(rows)
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Note, error) {
	var item models.Note
	var imgs []byte
	err := row.Scan(&item.ID, &item.OwnerID, &item.Title, &item.Description,
		&item.Mood, &item.Date, &imgs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	if err := json.Unmarshal(imgs, &item.Images); err != nil {
		return nil, fmt.Errorf("images unmarshal error: %w", err)
	}
	return &item, nil
}

func (r *PostgresRepository) scanAll(rows *sql.Rows) ([]*models.Note, error) {
	defer rows.Close()

	var result []*models.Note
	for rows.Next() {
		var item models.Note
		var imgs []byte
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Title, &item.Description,
			&item.Mood, &item.Date, &imgs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(imgs, &item.Images); err != nil {
			return nil, fmt.Errorf("images unmarshal error: %w", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
