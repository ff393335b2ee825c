package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/James-Git-Repo/eu-market-pulse/internal/catalog"
	"github.com/James-Git-Repo/eu-market-pulse/internal/middleware"
	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
	"github.com/James-Git-Repo/eu-market-pulse/internal/render"
	"github.com/James-Git-Repo/eu-market-pulse/internal/service"
	"github.com/James-Git-Repo/eu-market-pulse/internal/session"
	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
)

// TickerSource supplies index quotes for the header stripe.
type TickerSource interface {
	Indices(ctx context.Context) []model.MarketIndex
}

// PublicHandler serves the reader-facing site.
type PublicHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	ticker         TickerSource
	analytics      *service.AnalyticsService
}

// NewPublicHandler creates a PublicHandler. ticker and analytics may be
// nil in tests.
func NewPublicHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, ticker TickerSource, analytics *service.AnalyticsService) *PublicHandler {
	return &PublicHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		ticker:         ticker,
		analytics:      analytics,
	}
}

// siteData builds the common template envelope: title, signed-in user,
// editor mode flag, and the market ticker.
func (h *PublicHandler) siteData(r *http.Request, title string, data any) render.TemplateData {
	td := render.TemplateData{
		Title: title,
		Data:  data,
		User:  middleware.GetUser(r),
	}
	if td.User != nil && h.sessionManager != nil {
		td.EditorMode = h.sessionManager.GetBool(r.Context(), session.KeyEditorMode)
	}
	if h.ticker != nil {
		td.Ticker = h.ticker.Indices(r.Context())
	}
	return td
}

// HomeData is the payload for the home page.
type HomeData struct {
	Latest   []model.Article
	Featured *model.Article
}

// Home renders the landing page with the newest published articles.
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	articles, err := h.queries.ListPublishedArticles(r.Context())
	if err != nil {
		logAndInternalError(w, "loading home articles", "error", err)
		return
	}

	data := HomeData{}
	if len(articles) > 0 {
		data.Featured = &articles[0]
		if len(articles) > 4 {
			data.Latest = articles[1:4]
		} else {
			data.Latest = articles[1:]
		}
	}

	if err := h.renderer.Render(w, r, "site/home", h.siteData(r, "The (un)Stable Net", data)); err != nil {
		logAndInternalError(w, "rendering home", "error", err)
	}
}

// ArchiveData is the payload for the archive page.
type ArchiveData struct {
	Articles []model.Article
	Tags     []string
	Years    []int
	Criteria catalog.Criteria
}

// Archive renders the filterable article index. Filters arrive as query
// parameters and compose with AND semantics; the tag and year menus are
// built from the full published set, not the filtered one.
func (h *PublicHandler) Archive(w http.ResponseWriter, r *http.Request) {
	published, err := h.queries.ListPublishedArticles(r.Context())
	if err != nil {
		logAndInternalError(w, "loading archive", "error", err)
		return
	}

	criteria := catalog.Criteria{
		Query: r.URL.Query().Get("q"),
		Tag:   r.URL.Query().Get("tag"),
		Year:  r.URL.Query().Get("year"),
		Sort:  r.URL.Query().Get("sort"),
	}

	data := ArchiveData{
		Articles: catalog.Filter(published, criteria),
		Tags:     catalog.Tags(published),
		Years:    catalog.Years(published),
		Criteria: criteria,
	}

	if err := h.renderer.Render(w, r, "site/archive", h.siteData(r, "Archive", data)); err != nil {
		logAndInternalError(w, "rendering archive", "error", err)
	}
}

// Post renders a single article by slug and records the page view. Draft
// articles are only visible to signed-in editors.
func (h *PublicHandler) Post(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	article, err := h.queries.GetArticleBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.NotFound(w, r)
			return
		}
		logAndInternalError(w, "loading article", "slug", slug, "error", err)
		return
	}

	user := middleware.GetUser(r)
	if article.IsDraft() && (user == nil || !user.CanEdit()) {
		h.NotFound(w, r)
		return
	}

	if h.analytics != nil && article.IsPublished() {
		h.analytics.RecordView(r.Context(), article.ID, r.UserAgent(), middleware.ClientIP(r))
	}

	if err := h.renderer.Render(w, r, "site/post", h.siteData(r, article.Title, article)); err != nil {
		logAndInternalError(w, "rendering article", "slug", slug, "error", err)
	}
}

// ResourcesData is the payload for the resources page.
type ResourcesData struct {
	Groups   map[string][]model.Resource
	Category string
}

// Resources renders the curated link library, optionally narrowed to one
// category via the ?category parameter.
func (h *PublicHandler) Resources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.queries.ListResources(r.Context())
	if err != nil {
		logAndInternalError(w, "loading resources", "error", err)
		return
	}

	category := r.URL.Query().Get("category")
	data := ResourcesData{Category: category}
	if category != "" && category != catalog.FilterAll {
		data.Groups = map[string][]model.Resource{
			category: catalog.FilterResources(resources, category),
		}
	} else {
		data.Groups = catalog.GroupResources(resources)
	}

	if err := h.renderer.Render(w, r, "site/resources", h.siteData(r, "Resources", data)); err != nil {
		logAndInternalError(w, "rendering resources", "error", err)
	}
}

// staticPage returns a handler rendering a fixed template.
func (h *PublicHandler) staticPage(template, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.renderer.Render(w, r, template, h.siteData(r, title, nil)); err != nil {
			logAndInternalError(w, "rendering "+template, "error", err)
		}
	}
}

// About renders the about page.
func (h *PublicHandler) About(w http.ResponseWriter, r *http.Request) {
	h.staticPage("site/about", "About")(w, r)
}

// Privacy renders the privacy policy.
func (h *PublicHandler) Privacy(w http.ResponseWriter, r *http.Request) {
	h.staticPage("site/privacy", "Privacy Policy")(w, r)
}

// Terms renders the terms of use.
func (h *PublicHandler) Terms(w http.ResponseWriter, r *http.Request) {
	h.staticPage("site/terms", "Terms of Use")(w, r)
}

// NotFound renders the branded 404 page.
func (h *PublicHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	if err := h.renderer.Render(w, r, "site/notfound", h.siteData(r, "Page Not Found", nil)); err != nil {
		http.Error(w, "Page Not Found", http.StatusNotFound)
	}
}
