package critiques

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"novel-backend/internal/critique"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Load(ctx context.Context, chapterID string) (Record, error) {
	const query = `
SELECT chapter_id, critique_text, fingerprint, provider, model, generated_at
FROM chapter_critiques
WHERE chapter_id = $1
LIMIT 1`
	var rec Record
	var provider, model sql.NullString
	err := r.DB.QueryRowContext(ctx, query, chapterID).Scan(
		&rec.ChapterID,
		&rec.CritiqueText,
		&rec.Fingerprint,
		&provider,
		&model,
		&rec.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, critique.ErrNotFound
		}
		return Record{}, err
	}
	if provider.Valid {
		rec.Provider = provider.String
	}
	if model.Valid {
		rec.Model = model.String
	}
	return rec, nil
}

// Save upserts the chapter's critique row.
func (r *PGRepo) Save(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO chapter_critiques (chapter_id, critique_text, fingerprint, provider, model, generated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (chapter_id) DO UPDATE
SET critique_text = EXCLUDED.critique_text,
    fingerprint = EXCLUDED.fingerprint,
    provider = EXCLUDED.provider,
    model = EXCLUDED.model,
    generated_at = EXCLUDED.generated_at`
	_, err := r.DB.ExecContext(ctx, query,
		rec.ChapterID,
		rec.CritiqueText,
		rec.Fingerprint,
		rec.Provider,
		rec.Model,
		rec.GeneratedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: %s", ErrChapterMissing, rec.ChapterID)
		}
		return err
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
