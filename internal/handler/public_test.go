package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
)

func TestHomeSplitsFeaturedAndLatest(t *testing.T) {
	env := newTestEnv(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedArticle(t, env.queries, "oldest", model.ArticleStatusPublished, base)
	seedArticle(t, env.queries, "middle", model.ArticleStatusPublished, base.Add(time.Hour))
	seedArticle(t, env.queries, "newest", model.ArticleStatusPublished, base.Add(2*time.Hour))
	seedArticle(t, env.queries, "hidden", model.ArticleStatusDraft, time.Time{})

	h := NewPublicHandler(env.db, env.renderer, env.sm, nil, nil)
	rec := env.serve(http.HandlerFunc(h.Home), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "featured=newest;")
	assert.Contains(t, body, "latest=middle;")
	assert.Contains(t, body, "latest=oldest;")
	assert.NotContains(t, body, "hidden")
}

func TestArchiveAppliesFilters(t *testing.T) {
	env := newTestEnv(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedArticle(t, env.queries, "euro-banks", model.ArticleStatusPublished, base)
	seedArticle(t, env.queries, "rates-outlook", model.ArticleStatusPublished, base.Add(time.Hour))

	h := NewPublicHandler(env.db, env.renderer, env.sm, nil, nil)
	rec := env.serve(http.HandlerFunc(h.Archive),
		httptest.NewRequest(http.MethodGet, "/archive?q=banks", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "[euro-banks]")
	assert.NotContains(t, rec.Body.String(), "[rates-outlook]")
}

func TestArchiveUnfilteredListsAll(t *testing.T) {
	env := newTestEnv(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedArticle(t, env.queries, "one", model.ArticleStatusPublished, base)
	seedArticle(t, env.queries, "two", model.ArticleStatusPublished, base.Add(time.Hour))

	h := NewPublicHandler(env.db, env.renderer, env.sm, nil, nil)
	rec := env.serve(http.HandlerFunc(h.Archive), httptest.NewRequest(http.MethodGet, "/archive", nil))

	assert.Contains(t, rec.Body.String(), "[two][one]")
}

func postRequest(slug string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/posts/"+slug, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("slug", slug)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestPostRendersPublishedArticle(t *testing.T) {
	env := newTestEnv(t)
	seedArticle(t, env.queries, "euro-banks", model.ArticleStatusPublished, time.Now())

	h := NewPublicHandler(env.db, env.renderer, env.sm, nil, nil)
	rec := env.serve(http.HandlerFunc(h.Post), postRequest("euro-banks"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "post:euro-banks")
}

func TestPostHidesDraftFromAnonymous(t *testing.T) {
	env := newTestEnv(t)
	seedArticle(t, env.queries, "wip", model.ArticleStatusDraft, time.Time{})

	h := NewPublicHandler(env.db, env.renderer, env.sm, nil, nil)
	rec := env.serve(http.HandlerFunc(h.Post), postRequest("wip"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "notfound")
}

func TestPostShowsDraftToEditor(t *testing.T) {
	env := newTestEnv(t)
	seedArticle(t, env.queries, "wip", model.ArticleStatusDraft, time.Time{})
	editor := seedUser(t, env.queries, model.RoleEditor)

	h := NewPublicHandler(env.db, env.renderer, env.sm, nil, nil)
	rec := env.serve(http.HandlerFunc(h.Post), withUser(postRequest("wip"), editor))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "post:wip")
}

func TestPostUnknownSlugIs404(t *testing.T) {
	env := newTestEnv(t)

	h := NewPublicHandler(env.db, env.renderer, env.sm, nil, nil)
	rec := env.serve(http.HandlerFunc(h.Post), postRequest("nope"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResourcesGroupsByCategory(t *testing.T) {
	env := newTestEnv(t)
	seedResource(t, env.queries, model.ResourceCategoryTools, "screener", 1)
	seedResource(t, env.queries, model.ResourceCategoryTools, "charts", 2)
	seedResource(t, env.queries, model.ResourceCategoryPodcasts, "primer", 1)

	h := NewPublicHandler(env.db, env.renderer, env.sm, nil, nil)
	rec := env.serve(http.HandlerFunc(h.Resources), httptest.NewRequest(http.MethodGet, "/resources", nil))

	body := rec.Body.String()
	assert.Contains(t, body, model.ResourceCategoryTools+"=2;")
	assert.Contains(t, body, model.ResourceCategoryPodcasts+"=1;")
}

func TestResourcesCategoryFilter(t *testing.T) {
	env := newTestEnv(t)
	seedResource(t, env.queries, model.ResourceCategoryTools, "screener", 1)
	seedResource(t, env.queries, model.ResourceCategoryPodcasts, "primer", 1)

	h := NewPublicHandler(env.db, env.renderer, env.sm, nil, nil)
	rec := env.serve(http.HandlerFunc(h.Resources),
		httptest.NewRequest(http.MethodGet, "/resources?category="+model.ResourceCategoryTools, nil))

	body := rec.Body.String()
	assert.Contains(t, body, model.ResourceCategoryTools+"=1;")
	assert.NotContains(t, body, model.ResourceCategoryPodcasts)
}

func TestStaticPages(t *testing.T) {
	env := newTestEnv(t)
	h := NewPublicHandler(env.db, env.renderer, env.sm, nil, nil)

	pages := map[string]http.HandlerFunc{
		"about":   h.About,
		"privacy": h.Privacy,
		"terms":   h.Terms,
	}
	for marker, fn := range pages {
		rec := env.serve(fn, httptest.NewRequest(http.MethodGet, "/"+marker, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), marker)
	}
}
