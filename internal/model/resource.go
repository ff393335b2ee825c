package model

import "time"

// Resource categories - the fixed set shown on the Resources page.
const (
	ResourceCategoryPodcasts = "podcasts"
	ResourceCategoryArticles = "articles"
	ResourceCategoryTools    = "tools"
)

// ResourceCategories lists the valid categories in display order.
var ResourceCategories = []string{
	ResourceCategoryPodcasts,
	ResourceCategoryArticles,
	ResourceCategoryTools,
}

// Resource is a curated external link (podcast, article, or tool).
// Ordering is explicit via SortOrder; ties break on creation order.
type Resource struct {
	ID          int64     `json:"id"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Metadata    string    `json:"metadata,omitempty"`
	URL         string    `json:"url,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	SortOrder   int64     `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsValidResourceCategory reports whether c is one of the fixed categories.
func IsValidResourceCategory(c string) bool {
	for _, v := range ResourceCategories {
		if c == v {
			return true
		}
	}
	return false
}
