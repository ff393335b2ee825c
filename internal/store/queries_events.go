package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
)

// CreateEventParams holds the fields for CreateEvent.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent appends an entry to the event log.
func (q *Queries) CreateEvent(ctx context.Context, p CreateEventParams) (int64, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO events (level, category, message, user_id, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.Level, p.Category, p.Message, p.UserID, p.Metadata, p.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRecentEvents returns the newest event log entries, capped at limit.
func (q *Queries) ListRecentEvents(ctx context.Context, limit int64) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, level, category, message, user_id, metadata, created_at
		 FROM events ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message,
			&e.UserID, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CreatePageViewParams holds the fields for CreatePageView.
type CreatePageViewParams struct {
	ArticleID int64
	Browser   string
	OS        string
	Device    string
	Country   string
}

// CreatePageView records one article visit.
func (q *Queries) CreatePageView(ctx context.Context, p CreatePageViewParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO page_views (article_id, browser, os, device, country, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ArticleID, p.Browser, p.OS, p.Device, p.Country, time.Now())
	return err
}

// ArticleViewCount is a per-article page view tally.
type ArticleViewCount struct {
	ArticleID int64
	Title     string
	Views     int64
}

// CountPageViewsByArticle returns view tallies for every article that has
// at least one recorded visit, most viewed first.
func (q *Queries) CountPageViewsByArticle(ctx context.Context) ([]ArticleViewCount, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT v.article_id, a.title, COUNT(*) AS views
		 FROM page_views v JOIN articles a ON a.id = v.article_id
		 GROUP BY v.article_id, a.title ORDER BY views DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var counts []ArticleViewCount
	for rows.Next() {
		var c ArticleViewCount
		if err := rows.Scan(&c.ArticleID, &c.Title, &c.Views); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
