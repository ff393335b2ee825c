package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
)

// articleColumns selects every article field plus the cover URL, empty when
// no cover has been uploaded.
const articleColumns = `
	a.id, a.slug, a.title, a.dek, a.body, a.tag, a.author, a.read_time,
	a.status, COALESCE(c.image_url, ''), a.published_at, a.created_at, a.updated_at`

const articleFrom = ` FROM articles a LEFT JOIN covers c ON c.article_id = a.id`

func scanArticle(row interface{ Scan(...any) error }) (model.Article, error) {
	var a model.Article
	err := row.Scan(&a.ID, &a.Slug, &a.Title, &a.Dek, &a.Body, &a.Tag,
		&a.Author, &a.ReadTime, &a.Status, &a.CoverURL,
		&a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (q *Queries) queryArticles(ctx context.Context, query string, args ...any) ([]model.Article, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var articles []model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// ListPublishedArticles returns published articles newest first. This is the
// catalog the public archive filters in memory.
func (q *Queries) ListPublishedArticles(ctx context.Context) ([]model.Article, error) {
	return q.queryArticles(ctx,
		`SELECT`+articleColumns+articleFrom+`
		 WHERE a.status = ? ORDER BY a.published_at DESC`,
		model.ArticleStatusPublished)
}

// ListArticles returns every article, drafts included, for the studio.
func (q *Queries) ListArticles(ctx context.Context) ([]model.Article, error) {
	return q.queryArticles(ctx,
		`SELECT`+articleColumns+articleFrom+` ORDER BY a.created_at DESC`)
}

// GetArticleByID fetches an article by primary key.
func (q *Queries) GetArticleByID(ctx context.Context, id int64) (model.Article, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT`+articleColumns+articleFrom+` WHERE a.id = ?`, id)
	return scanArticle(row)
}

// GetArticleBySlug fetches an article by its URL slug.
func (q *Queries) GetArticleBySlug(ctx context.Context, slug string) (model.Article, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT`+articleColumns+articleFrom+` WHERE a.slug = ?`, slug)
	return scanArticle(row)
}

// CreateArticleParams holds the fields for CreateArticle.
type CreateArticleParams struct {
	Slug        string
	Title       string
	Dek         string
	Body        string
	Tag         string
	Author      string
	ReadTime    string
	Status      string
	PublishedAt sql.NullTime
}

// CreateArticle inserts an article and returns its ID.
func (q *Queries) CreateArticle(ctx context.Context, p CreateArticleParams) (int64, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO articles (slug, title, dek, body, tag, author, read_time,
		 status, published_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Slug, p.Title, p.Dek, p.Body, p.Tag, p.Author, p.ReadTime,
		p.Status, p.PublishedAt, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateArticleParams holds the fields for UpdateArticle.
type UpdateArticleParams struct {
	ID          int64
	Slug        string
	Title       string
	Dek         string
	Body        string
	Tag         string
	Author      string
	ReadTime    string
	Status      string
	PublishedAt sql.NullTime
}

// UpdateArticle rewrites an article in place.
func (q *Queries) UpdateArticle(ctx context.Context, p UpdateArticleParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE articles SET slug = ?, title = ?, dek = ?, body = ?, tag = ?,
		 author = ?, read_time = ?, status = ?, published_at = ?, updated_at = ?
		 WHERE id = ?`,
		p.Slug, p.Title, p.Dek, p.Body, p.Tag, p.Author, p.ReadTime,
		p.Status, p.PublishedAt, time.Now(), p.ID)
	return err
}

// UpdateArticleStatus flips publication status; publishing stamps the
// publication time when the article never had one.
func (q *Queries) UpdateArticleStatus(ctx context.Context, id int64, status string, publishedAt sql.NullTime) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE articles SET status = ?,
		 published_at = COALESCE(published_at, ?),
		 updated_at = ? WHERE id = ?`,
		status, publishedAt, time.Now(), id)
	return err
}

// DeleteArticle removes an article; covers and page views cascade.
func (q *Queries) DeleteArticle(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	return err
}

// CountArticles returns counts of total and published articles.
func (q *Queries) CountArticles(ctx context.Context) (total, published int64, err error) {
	err = q.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(CASE WHEN status = ? THEN 1 END) FROM articles`,
		model.ArticleStatusPublished).Scan(&total, &published)
	return total, published, err
}

// UpsertCover sets or replaces the cover image for an article.
func (q *Queries) UpsertCover(ctx context.Context, articleID int64, imageURL string) error {
	now := time.Now()
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO covers (article_id, image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(article_id) DO UPDATE SET image_url = excluded.image_url,
		 updated_at = excluded.updated_at`,
		articleID, imageURL, now, now)
	return err
}

// DeleteCover removes an article's cover linkage.
func (q *Queries) DeleteCover(ctx context.Context, articleID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM covers WHERE article_id = ?`, articleID)
	return err
}
