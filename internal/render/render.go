// Package render parses the embedded templates and executes them with
// shared page data: flash messages, the signed-in user, and markdown
// conversion for article bodies.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
)

// Renderer holds the parsed template sets, one per page.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	isDev          bool
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	IsDev          bool
}

// New creates a Renderer with all templates parsed up front, so a broken
// template fails at startup rather than on first request.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		isDev:          cfg.IsDev,
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}
	return r, nil
}

// parseTemplates builds one template set per page. Public pages get the
// site layout, studio pages get the studio layout on top of it.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := r.templateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	baseLayout := "layouts/base.html"

	sitePages, err := r.templateFiles(templatesFS, "site")
	if err != nil {
		return fmt.Errorf("getting site templates: %w", err)
	}
	for _, page := range sitePages {
		name := "site/" + strings.TrimSuffix(filepath.Base(page), ".html")

		files := append([]string{baseLayout}, partials...)
		files = append(files, page)

		tmpl, err := template.New("").Funcs(r.templateFuncs()).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}

	studioPages, err := r.templateFiles(templatesFS, "studio")
	if err != nil {
		return fmt.Errorf("getting studio templates: %w", err)
	}
	studioLayout := "layouts/studio.html"
	for _, page := range studioPages {
		name := "studio/" + strings.TrimSuffix(filepath.Base(page), ".html")

		files := append([]string{baseLayout, studioLayout}, partials...)
		files = append(files, page)

		tmpl, err := template.New("").Funcs(r.templateFuncs()).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}

	return nil
}

func (r *Renderer) templateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	var files []string
	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		// Missing directory is fine.
		return files, nil
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func (r *Renderer) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 3:04 PM")
		},
		"truncate": func(s string, length int) string {
			if len(s) <= length {
				return s
			}
			return s[:length] + "..."
		},
		"markdown": Markdown,
		"safe": func(s string) template.HTML {
			return template.HTML(s)
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
}

// TemplateData is the envelope every template receives.
type TemplateData struct {
	Title       string
	Data        any
	Flash       string
	FlashType   string
	CurrentYear int

	// User is the signed-in user, nil for anonymous visitors.
	User *model.User
	// EditorMode is true when the user has toggled editing affordances on.
	EditorMode bool

	// Ticker carries the market index quotes shown in the header stripe.
	Ticker []model.MarketIndex
}

// Render executes the named template. The output is buffered so a
// mid-render failure can still produce a clean error response.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().Year()

	if r.sessionManager != nil {
		if flash := r.sessionManager.PopString(req.Context(), "flash"); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessionManager.PopString(req.Context(), "flash_type")
			if data.FlashType == "" {
				data.FlashType = "info"
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
	return nil
}

// SetFlash stores a one-shot message shown on the next rendered page.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), "flash", message)
		r.sessionManager.Put(req.Context(), "flash_type", flashType)
	}
}
