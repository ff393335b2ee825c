package store

import (
	"context"
	"time"

	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
)

const resourceColumns = `id, category, title, description, metadata, url, icon, sort_order, created_at`

func scanResource(row interface{ Scan(...any) error }) (model.Resource, error) {
	var r model.Resource
	err := row.Scan(&r.ID, &r.Category, &r.Title, &r.Description, &r.Metadata,
		&r.URL, &r.Icon, &r.SortOrder, &r.CreatedAt)
	return r, err
}

// ListResources returns all resources ordered by sort key, then creation
// order - the same ordering the public page displays. created_at has
// second resolution, so id breaks remaining ties.
func (q *Queries) ListResources(ctx context.Context) ([]model.Resource, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+resourceColumns+` FROM resources
		 ORDER BY sort_order ASC, created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var resources []model.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

// GetResourceByID fetches a resource by primary key.
func (q *Queries) GetResourceByID(ctx context.Context, id int64) (model.Resource, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+resourceColumns+` FROM resources WHERE id = ?`, id)
	return scanResource(row)
}

// CreateResourceParams holds the fields for CreateResource.
type CreateResourceParams struct {
	Category    string
	Title       string
	Description string
	Metadata    string
	URL         string
	Icon        string
	SortOrder   int64
}

// CreateResource inserts a resource and returns its ID.
func (q *Queries) CreateResource(ctx context.Context, p CreateResourceParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO resources (category, title, description, metadata, url, icon, sort_order, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Category, p.Title, p.Description, p.Metadata, p.URL, p.Icon, p.SortOrder, time.Now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateResourceParams holds the fields for UpdateResource.
type UpdateResourceParams struct {
	ID          int64
	Category    string
	Title       string
	Description string
	Metadata    string
	URL         string
	Icon        string
	SortOrder   int64
}

// UpdateResource rewrites a resource in place.
func (q *Queries) UpdateResource(ctx context.Context, p UpdateResourceParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE resources SET category = ?, title = ?, description = ?,
		 metadata = ?, url = ?, icon = ?, sort_order = ? WHERE id = ?`,
		p.Category, p.Title, p.Description, p.Metadata, p.URL, p.Icon, p.SortOrder, p.ID)
	return err
}

// DeleteResource removes a resource.
func (q *Queries) DeleteResource(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id)
	return err
}

// NextResourceSortOrder returns one past the highest sort key, so new
// resources append at the end of their category.
func (q *Queries) NextResourceSortOrder(ctx context.Context, category string) (int64, error) {
	var next int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM resources WHERE category = ?`,
		category).Scan(&next)
	return next, err
}
