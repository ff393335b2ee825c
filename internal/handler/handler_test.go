package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"
	_ "modernc.org/sqlite"
	"github.com/stretchr/testify/require"

	"github.com/James-Git-Repo/eu-market-pulse/internal/middleware"
	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
	"github.com/James-Git-Repo/eu-market-pulse/internal/render"
	"github.com/James-Git-Repo/eu-market-pulse/internal/session"
	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db))
	return db
}

// testTemplates covers every page the handlers render, each reduced to
// the markers the tests assert on.
func testTemplates() fstest.MapFS {
	page := func(body string) *fstest.MapFile {
		return &fstest.MapFile{Data: []byte(`{{define "content"}}` + body + `{{end}}`)}
	}
	return fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{
			Data: []byte(`{{define "base"}}{{if .Flash}}flash({{.FlashType}}):{{.Flash}};{{end}}{{template "content" .}}{{end}}`),
		},
		"layouts/studio.html": &fstest.MapFile{
			Data: []byte(`{{define "studio-nav"}}nav;{{end}}`),
		},
		"site/home.html":      page(`home:{{with .Data.Featured}}featured={{.Slug}};{{end}}{{range .Data.Latest}}latest={{.Slug}};{{end}}`),
		"site/archive.html":   page(`archive:{{range .Data.Articles}}[{{.Slug}}]{{end}}`),
		"site/post.html":      page(`post:{{.Data.Slug}}`),
		"site/resources.html": page(`resources:{{range $cat, $items := .Data.Groups}}{{$cat}}={{len $items}};{{end}}`),
		"site/about.html":     page(`about`),
		"site/privacy.html":   page(`privacy`),
		"site/terms.html":     page(`terms`),
		"site/login.html":     page(`login`),
		"site/notfound.html":  page(`notfound`),
		"studio/dashboard.html":    page(`{{template "studio-nav" .}}dashboard:articles={{.Data.TotalArticles}};subs={{.Data.Subscribers}}`),
		"studio/articles.html":     page(`{{template "studio-nav" .}}articles:{{range .Data}}[{{.Slug}}]{{end}}`),
		"studio/article_form.html": page(`{{template "studio-nav" .}}form`),
		"studio/resources.html":    page(`{{template "studio-nav" .}}resources`),
		"studio/audience.html":     page(`{{template "studio-nav" .}}audience:subs={{len .Data.Subscribers}};pitches={{len .Data.Contributions}}`),
		"studio/events.html":       page(`{{template "studio-nav" .}}events:{{range .Data}}[{{.Message}}]{{end}}`),
	}
}

func newTestRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()
	r, err := render.New(render.Config{TemplatesFS: testTemplates(), SessionManager: sm, IsDev: true})
	require.NoError(t, err)
	return r
}

// testEnv bundles the pieces every handler test needs.
type testEnv struct {
	db       *sql.DB
	queries  *store.Queries
	sm       *scs.SessionManager
	renderer *render.Renderer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	sm := session.New(db, true)
	return &testEnv{
		db:       db,
		queries:  store.New(db),
		sm:       sm,
		renderer: newTestRenderer(t, sm),
	}
}

// serve runs the handler through session middleware, the way the router
// wires it in production.
func (e *testEnv) serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.sm.LoadAndSave(h).ServeHTTP(rec, r)
	return rec
}

func newGetRequest(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func withUser(r *http.Request, user model.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ContextKeyUser, user))
}

func seedUser(t *testing.T, queries *store.Queries, role string) model.User {
	t.Helper()
	id, err := queries.CreateUser(context.Background(), store.CreateUserParams{
		Email:        role + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Name:         "Test " + role,
	})
	require.NoError(t, err)
	return model.User{ID: id, Email: role + "@example.com", Role: role}
}

func seedArticle(t *testing.T, queries *store.Queries, slug, status string, publishedAt time.Time) int64 {
	t.Helper()
	p := store.CreateArticleParams{
		Slug:     slug,
		Title:    "Title " + slug,
		Dek:      "Dek " + slug,
		Body:     "Body of " + slug,
		Tag:      "markets",
		Status:   status,
		ReadTime: "1 min read",
	}
	if status == model.ArticleStatusPublished {
		p.PublishedAt = sql.NullTime{Time: publishedAt, Valid: true}
	}
	id, err := queries.CreateArticle(context.Background(), p)
	require.NoError(t, err)
	return id
}

func seedResource(t *testing.T, queries *store.Queries, category, title string, sortOrder int64) int64 {
	t.Helper()
	id, err := queries.CreateResource(context.Background(), store.CreateResourceParams{
		Category:    category,
		Title:       title,
		Description: "About " + title,
		URL:         "https://example.com/" + title,
		SortOrder:   sortOrder,
	})
	require.NoError(t, err)
	return id
}
