package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"docbase-backend/internal/tags"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const docColumns = `id, title, description, storage_key, original_filename, content_type, size_bytes, content_text, search_text, indexed, author_id, created_at, updated_at`

// Create inserts a new document and its tag links in one transaction.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
INSERT INTO documents (` + docColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	if _, err := tx.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.Title,
		doc.Description,
		doc.StorageKey,
		doc.OriginalFilename,
		doc.ContentType,
		doc.SizeBytes,
		nullableText(doc.ContentText),
		nullableText(doc.SearchText),
		doc.Indexed,
		doc.AuthorID,
		doc.CreatedAt,
		doc.UpdatedAt,
	); err != nil {
		return err
	}

	if err := insertTagLinks(ctx, tx, doc.ID, doc.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID fetches a document and its tags.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	const query = `
SELECT ` + docColumns + `
FROM documents
WHERE id = $1`

	doc, err := scanDoc(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return Document{}, err
	}
	doc.Tags, err = r.loadTags(ctx, doc.ID)
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Update rewrites a document row and replaces its tag links.
func (r *PGRepo) Update(ctx context.Context, doc Document) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
UPDATE documents
SET title = $2,
    description = $3,
    content_text = $4,
    search_text = $5,
    indexed = $6,
    updated_at = $7
WHERE id = $1`

	res, err := tx.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.Title,
		doc.Description,
		nullableText(doc.ContentText),
		nullableText(doc.SearchText),
		doc.Indexed,
		doc.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_tags WHERE document_id = $1`, doc.ID); err != nil {
		return err
	}
	if err := insertTagLinks(ctx, tx, doc.ID, doc.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a document row; tag links go with it via cascade.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context, page, size int, s Sort) (Page, error) {
	return r.paged(ctx, "", nil, page, size, s)
}

func (r *PGRepo) ListByAuthor(ctx context.Context, authorID string, page, size int, s Sort) (Page, error) {
	return r.paged(ctx, "WHERE author_id = $1", []any{authorID}, page, size, s)
}

func (r *PGRepo) Search(ctx context.Context, filter Filter, page, size int, s Sort) (Page, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Title != "" {
		args = append(args, "%"+strings.ToLower(filter.Title)+"%")
		conds = append(conds, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)))
	}
	if filter.ContentType != "" {
		args = append(args, filter.ContentType)
		conds = append(conds, fmt.Sprintf("content_type = $%d", len(args)))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.AuthorID != "" {
		args = append(args, filter.AuthorID)
		conds = append(conds, fmt.Sprintf("author_id = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	return r.paged(ctx, where, args, page, size, s)
}

func (r *PGRepo) SearchKeyword(ctx context.Context, keyword string, page, size int, s Sort) (Page, error) {
	const where = `
WHERE LOWER(title) LIKE '%' || LOWER($1) || '%'
   OR LOWER(description) LIKE '%' || LOWER($1) || '%'
   OR LOWER(content_text) LIKE '%' || LOWER($1) || '%'`
	return r.paged(ctx, where, []any{keyword}, page, size, s)
}

// ListUnindexed returns every document still awaiting extraction, unpaged.
func (r *PGRepo) ListUnindexed(ctx context.Context) ([]Document, error) {
	const query = `
SELECT ` + docColumns + `
FROM documents
WHERE indexed = FALSE
ORDER BY created_at`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs, err := collectDocs(rows)
	if err != nil {
		return nil, err
	}
	return r.attachTags(ctx, docs)
}

func (r *PGRepo) paged(ctx context.Context, where string, args []any, page, size int, s Sort) (Page, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}

	countQuery := "SELECT COUNT(*) FROM documents " + where
	var total int64
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return Page{}, err
	}

	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	pageQuery := fmt.Sprintf(
		"SELECT %s FROM documents %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		docColumns, where, s.Field.column(), direction, len(args)+1, len(args)+2,
	)
	pageArgs := append(append([]any{}, args...), size, page*size)

	rows, err := r.DB.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	docs, err := collectDocs(rows)
	if err != nil {
		return Page{}, err
	}
	docs, err = r.attachTags(ctx, docs)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: docs, TotalCount: total, Page: page, Size: size}, nil
}

func (r *PGRepo) loadTags(ctx context.Context, documentID string) ([]tags.Tag, error) {
	const query = `
SELECT t.id, t.name
FROM tags t
JOIN document_tags dt ON dt.tag_id = t.id
WHERE dt.document_id = $1
ORDER BY t.name`

	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tags.Tag
	for rows.Next() {
		var tag tags.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, rows.Err()
}

func (r *PGRepo) attachTags(ctx context.Context, docs []Document) ([]Document, error) {
	for i := range docs {
		tagList, err := r.loadTags(ctx, docs[i].ID)
		if err != nil {
			return nil, err
		}
		docs[i].Tags = tagList
	}
	return docs, nil
}

func insertTagLinks(ctx context.Context, tx *sql.Tx, documentID string, tagList []tags.Tag) error {
	for _, tag := range tagList {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO document_tags (document_id, tag_id) VALUES ($1, $2)`,
			documentID, tag.ID,
		); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDoc(row rowScanner) (Document, error) {
	var (
		doc         Document
		contentText sql.NullString
		searchText  sql.NullString
	)
	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Description,
		&doc.StorageKey,
		&doc.OriginalFilename,
		&doc.ContentType,
		&doc.SizeBytes,
		&contentText,
		&searchText,
		&doc.Indexed,
		&doc.AuthorID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	if contentText.Valid {
		doc.ContentText = &contentText.String
	}
	if searchText.Valid {
		doc.SearchText = &searchText.String
	}
	return doc, nil
}

func collectDocs(rows *sql.Rows) ([]Document, error) {
	var out []Document
	for rows.Next() {
		doc, err := scanDoc(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func nullableText(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
