// Package catalog filters and orders the in-memory article and resource
// collections for display. All functions are pure: they never mutate their
// input and are safe to call on every input-change event.
package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
)

// FilterAll is the sentinel meaning "no filter" for tag and year facets.
const FilterAll = "all"

// Sort modes. SortLatest is currently the only mode the UI offers.
const SortLatest = "latest"

// Criteria holds the archive filter state. Zero value means "everything,
// newest first".
type Criteria struct {
	Query string
	Tag   string
	Year  string
	Sort  string
}

// matches reports whether a single article passes every active predicate.
func (c Criteria) matches(a model.Article) bool {
	if q := strings.ToLower(strings.TrimSpace(c.Query)); q != "" {
		if !strings.Contains(strings.ToLower(a.Title), q) &&
			!strings.Contains(strings.ToLower(a.Dek), q) &&
			!strings.Contains(strings.ToLower(a.Tag), q) {
			return false
		}
	}

	// Tag equality is case-sensitive; the facet values come from the
	// articles themselves, so case always agrees.
	if c.Tag != "" && c.Tag != FilterAll && a.Tag != c.Tag {
		return false
	}

	if c.Year != "" && c.Year != FilterAll {
		if strconv.Itoa(a.Year()) != c.Year {
			return false
		}
	}

	return true
}

// Filter returns the ordered subset of articles matching the criteria.
// The input slice is never modified; an unmatched criteria set simply
// yields an empty result for the caller to render as "no results".
func Filter(articles []model.Article, c Criteria) []model.Article {
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if c.matches(a) {
			out = append(out, a)
		}
	}

	if c.Sort == "" || c.Sort == SortLatest {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].PublishedAt.Time.After(out[j].PublishedAt.Time)
		})
	}

	return out
}

// Tags returns the distinct article tags in alphabetical order, for the
// filter bar facet.
func Tags(articles []model.Article) []string {
	seen := make(map[string]struct{}, len(articles))
	var tags []string
	for _, a := range articles {
		if a.Tag == "" {
			continue
		}
		if _, ok := seen[a.Tag]; ok {
			continue
		}
		seen[a.Tag] = struct{}{}
		tags = append(tags, a.Tag)
	}
	sort.Strings(tags)
	return tags
}

// Years returns the distinct publication years, newest first.
func Years(articles []model.Article) []int {
	seen := make(map[int]struct{}, len(articles))
	var years []int
	for _, a := range articles {
		y := a.Year()
		if y == 0 {
			continue
		}
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// FilterResources returns resources in the given category ordered by their
// explicit sort key, creation order breaking ties. Category "" or "all"
// returns every resource.
func FilterResources(resources []model.Resource, category string) []model.Resource {
	out := make([]model.Resource, 0, len(resources))
	for _, r := range resources {
		if category == "" || category == FilterAll || r.Category == category {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}

// GroupResources splits resources into category buckets, each bucket in
// display order. Bucket iteration order follows model.ResourceCategories.
func GroupResources(resources []model.Resource) map[string][]model.Resource {
	grouped := make(map[string][]model.Resource, len(model.ResourceCategories))
	for _, cat := range model.ResourceCategories {
		grouped[cat] = FilterResources(resources, cat)
	}
	return grouped
}
