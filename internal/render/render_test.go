package render

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTemplatesFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{
			Data: []byte(`{{define "base"}}<html><body>{{if .Flash}}<p class="flash {{.FlashType}}">{{.Flash}}</p>{{end}}{{template "content" .}}</body></html>{{end}}`),
		},
		"layouts/studio.html": &fstest.MapFile{
			Data: []byte(`{{define "studio-nav"}}<nav>studio</nav>{{end}}`),
		},
		"partials/ticker.html": &fstest.MapFile{
			Data: []byte(`{{define "ticker"}}<div class="ticker"></div>{{end}}`),
		},
		"site/home.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}<h1>{{.Title}}</h1>{{template "ticker" .}}{{end}}`),
		},
		"studio/articles.html": &fstest.MapFile{
			Data: []byte(`{{define "content"}}{{template "studio-nav" .}}<h1>{{.Title}}</h1>{{end}}`),
		},
	}
}

func TestRenderSitePage(t *testing.T) {
	r, err := New(Config{TemplatesFS: testTemplatesFS()})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = r.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), "site/home",
		TemplateData{Title: "The (un)Stable Net"})
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Contains(t, body, "<h1>The (un)Stable Net</h1>")
	assert.Contains(t, body, `class="ticker"`)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestRenderStudioPage(t *testing.T) {
	r, err := New(Config{TemplatesFS: testTemplatesFS()})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = r.Render(rec, httptest.NewRequest(http.MethodGet, "/studio", nil), "studio/articles",
		TemplateData{Title: "Articles"})
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), "<nav>studio</nav>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := New(Config{TemplatesFS: testTemplatesFS()})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = r.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), "site/missing", TemplateData{})
	assert.ErrorContains(t, err, "not found")
}

func TestMarkdownConversion(t *testing.T) {
	html := string(Markdown("## Heading\n\nSome *emphasis* here."))
	assert.Contains(t, html, "<h2")
	assert.Contains(t, html, "<em>emphasis</em>")
}

func TestMarkdownStripsScripts(t *testing.T) {
	html := string(Markdown("hello <script>alert(1)</script> world"))
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "hello")
}

func TestMarkdownTables(t *testing.T) {
	src := "| a | b |\n|---|---|\n| 1 | 2 |"
	html := string(Markdown(src))
	assert.True(t, strings.Contains(html, "<table"), html)
}
