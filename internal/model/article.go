package model

import (
	"database/sql"
	"time"
)

// Article statuses
const (
	ArticleStatusDraft     = "draft"
	ArticleStatusPublished = "published"
)

// Article represents a published or draft piece on the site.
type Article struct {
	ID          int64        `json:"id"`
	Slug        string       `json:"slug"`
	Title       string       `json:"title"`
	Dek         string       `json:"dek"`
	Body        string       `json:"body"`
	Tag         string       `json:"tag"`
	Author      string       `json:"author"`
	ReadTime    string       `json:"read_time"`
	Status      string       `json:"status"`
	CoverURL    string       `json:"cover_url,omitempty"`
	PublishedAt sql.NullTime `json:"published_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// IsPublished returns true if the article is visible on the public site.
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}

// IsDraft returns true if the article is a draft.
func (a *Article) IsDraft() bool {
	return a.Status == ArticleStatusDraft
}

// Year returns the 4-digit UTC publication year, or 0 for unpublished drafts.
func (a *Article) Year() int {
	if !a.PublishedAt.Valid {
		return 0
	}
	return a.PublishedAt.Time.UTC().Year()
}

// Cover links an uploaded cover image to an article.
type Cover struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
