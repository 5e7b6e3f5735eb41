package tags

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// GetByName does a case-sensitive exact lookup.
func (r *PGRepo) GetByName(ctx context.Context, name string) (Tag, error) {
	const query = `SELECT id, name FROM tags WHERE name = $1`
	var tag Tag
	err := r.DB.QueryRowContext(ctx, query, name).Scan(&tag.ID, &tag.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Tag{}, ErrNotFound
		}
		return Tag{}, err
	}
	return tag, nil
}

// Create inserts a new tag. A unique-constraint violation on the name is
// reported as ErrConflict so the resolver can fetch the winning row.
func (r *PGRepo) Create(ctx context.Context, tag Tag) error {
	const query = `INSERT INTO tags (id, name) VALUES ($1, $2)`
	_, err := r.DB.ExecContext(ctx, query, tag.ID, tag.Name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrConflict
		}
		return err
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
