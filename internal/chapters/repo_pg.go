package chapters

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgForeignKeyViolation = "23503"

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) CreateVolume(ctx context.Context, v Volume) error {
	const query = `
INSERT INTO volumes (id, title, position, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.DB.ExecContext(ctx, query, v.ID, v.Title, v.Position, v.CreatedAt, v.UpdatedAt)
	return err
}

func (r *PGRepo) GetVolume(ctx context.Context, id string) (Volume, error) {
	const query = `
SELECT id, title, position, created_at, updated_at
FROM volumes
WHERE id = $1`
	var v Volume
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&v.ID, &v.Title, &v.Position, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Volume{}, ErrVolumeNotFound
		}
		return Volume{}, err
	}
	return v, nil
}

func (r *PGRepo) ListVolumes(ctx context.Context) ([]Volume, error) {
	const query = `
SELECT id, title, position, created_at, updated_at
FROM volumes
ORDER BY position ASC, created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Volume, 0)
	for rows.Next() {
		var v Volume
		if err := rows.Scan(&v.ID, &v.Title, &v.Position, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PGRepo) Create(ctx context.Context, ch Chapter) error {
	const query = `
INSERT INTO chapters (
    id,
    volume_id,
    title,
    content,
    position,
    word_count,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		ch.ID,
		ch.VolumeID,
		ch.Title,
		ch.Content,
		ch.Position,
		ch.WordCount,
		ch.CreatedAt,
		ch.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return ErrVolumeNotFound
	}
	return err
}

func (r *PGRepo) Get(ctx context.Context, id string) (Chapter, error) {
	const query = `
SELECT id, volume_id, title, content, position, word_count, created_at, updated_at
FROM chapters
WHERE id = $1`
	ch, err := scanChapter(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Chapter{}, ErrNotFound
		}
		return Chapter{}, err
	}
	return ch, nil
}

func (r *PGRepo) ListByVolume(ctx context.Context, volumeID string) ([]Chapter, error) {
	const query = `
SELECT id, volume_id, title, content, position, word_count, created_at, updated_at
FROM chapters
WHERE volume_id = $1
ORDER BY position ASC`
	rows, err := r.DB.QueryContext(ctx, query, volumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Chapter, 0)
	for rows.Next() {
		ch, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, ch Chapter) error {
	const query = `
UPDATE chapters
SET title = $2, content = $3, word_count = $4, updated_at = $5
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, ch.ID, ch.Title, ch.Content, ch.WordCount, ch.UpdatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) NextPosition(ctx context.Context, volumeID string) (int, error) {
	const query = `SELECT COALESCE(MAX(position) + 1, 0) FROM chapters WHERE volume_id = $1`
	var next int
	if err := r.DB.QueryRowContext(ctx, query, volumeID).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChapter(row rowScanner) (Chapter, error) {
	var ch Chapter
	err := row.Scan(
		&ch.ID,
		&ch.VolumeID,
		&ch.Title,
		&ch.Content,
		&ch.Position,
		&ch.WordCount,
		&ch.CreatedAt,
		&ch.UpdatedAt,
	)
	return ch, err
}

var _ Repo = (*PGRepo)(nil)
