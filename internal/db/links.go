package db

import (
	"context"

	"github.com/google/uuid"
)

const createLink = `
INSERT INTO links (id, code, target)
VALUES ($1, $2, $3)
RETURNING id, code, target, clicks, created_at, last_clicked
`

type CreateLinkParams struct {
	ID     uuid.UUID
	Code   string
	Target string
}

// CreateLink inserts a new link. A case-insensitive duplicate code fails
// the links_code_unique index inside this one statement; there is no
// separate existence check to race against.
func (q *Queries) CreateLink(ctx context.Context, arg CreateLinkParams) (Link, error) {
	row := q.db.QueryRow(ctx, createLink, arg.ID, arg.Code, arg.Target)
	var i Link
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.Target,
		&i.Clicks,
		&i.CreatedAt,
		&i.LastClicked,
	)
	return i, err
}

const getLinkByCode = `
SELECT id, code, target, clicks, created_at, last_clicked
FROM links
WHERE lower(code) = lower($1)
`

// GetLinkByCode looks up a link by code, folding case.
func (q *Queries) GetLinkByCode(ctx context.Context, code string) (Link, error) {
	row := q.db.QueryRow(ctx, getLinkByCode, code)
	var i Link
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.Target,
		&i.Clicks,
		&i.CreatedAt,
		&i.LastClicked,
	)
	return i, err
}

const listLinks = `
SELECT id, code, target, clicks, created_at, last_clicked
FROM links
ORDER BY created_at DESC
`

// ListLinks returns every link, newest first.
func (q *Queries) ListLinks(ctx context.Context) ([]Link, error) {
	rows, err := q.db.Query(ctx, listLinks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Link
	for rows.Next() {
		var i Link
		if err := rows.Scan(
			&i.ID,
			&i.Code,
			&i.Target,
			&i.Clicks,
			&i.CreatedAt,
			&i.LastClicked,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const clickLink = `
UPDATE links
SET clicks = clicks + 1, last_clicked = now()
WHERE lower(code) = lower($1)
RETURNING id, code, target, clicks, created_at, last_clicked
`

// ClickLink increments the click counter and stamps last_clicked in a
// single statement, so concurrent clicks on the same code serialize in
// Postgres without lost updates.
func (q *Queries) ClickLink(ctx context.Context, code string) (Link, error) {
	row := q.db.QueryRow(ctx, clickLink, code)
	var i Link
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.Target,
		&i.Clicks,
		&i.CreatedAt,
		&i.LastClicked,
	)
	return i, err
}

const deleteLink = `
DELETE FROM links
WHERE lower(code) = lower($1)
`

// DeleteLink removes a link. Deleting a code that does not exist is not
// an error.
func (q *Queries) DeleteLink(ctx context.Context, code string) error {
	_, err := q.db.Exec(ctx, deleteLink, code)
	return err
}
