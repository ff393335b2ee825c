package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/James-Git-Repo/eu-market-pulse/internal/middleware"
	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
	"github.com/James-Git-Repo/eu-market-pulse/internal/render"
	"github.com/James-Git-Repo/eu-market-pulse/internal/service"
	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
	"github.com/James-Git-Repo/eu-market-pulse/internal/util"
)

// ArticlesHandler covers article CRUD, publishing, and cover management
// in the studio.
type ArticlesHandler struct {
	queries      *store.Queries
	renderer     *render.Renderer
	media        *service.MediaService
	assist       *service.AssistService
	eventService *service.EventService
}

// NewArticlesHandler creates an ArticlesHandler.
func NewArticlesHandler(db *sql.DB, renderer *render.Renderer, media *service.MediaService, assist *service.AssistService) *ArticlesHandler {
	return &ArticlesHandler{
		queries:      store.New(db),
		renderer:     renderer,
		media:        media,
		assist:       assist,
		eventService: service.NewEventService(db),
	}
}

// List renders every article, drafts included.
func (h *ArticlesHandler) List(w http.ResponseWriter, r *http.Request) {
	articles, err := h.queries.ListArticles(r.Context())
	if err != nil {
		logAndInternalError(w, "listing articles", "error", err)
		return
	}
	if err := h.renderer.Render(w, r, "studio/articles", studioData(r, "Articles", articles)); err != nil {
		logAndInternalError(w, "rendering article list", "error", err)
	}
}

// NewForm renders an empty article form.
func (h *ArticlesHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "studio/article_form",
		studioData(r, "New Article", model.Article{Status: model.ArticleStatusDraft})); err != nil {
		logAndInternalError(w, "rendering article form", "error", err)
	}
}

// EditForm renders the form pre-filled with an existing article.
func (h *ArticlesHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, RouteStudioPosts, "Invalid article ID")
		return
	}
	article, ok := requireEntity(w, r, h.renderer, RouteStudioPosts, "Article", id,
		func(id int64) (model.Article, error) { return h.queries.GetArticleByID(r.Context(), id) })
	if !ok {
		return
	}
	if err := h.renderer.Render(w, r, "studio/article_form",
		studioData(r, "Edit Article", article)); err != nil {
		logAndInternalError(w, "rendering article form", "error", err)
	}
}

// articleForm holds the validated form fields shared by Create and
// Update.
type articleForm struct {
	Slug   string
	Title  string
	Dek    string
	Body   string
	Tag    string
	Author string
	Status string
}

func (h *ArticlesHandler) parseArticleForm(w http.ResponseWriter, r *http.Request) (articleForm, bool) {
	f := articleForm{
		Slug:   strings.TrimSpace(r.FormValue("slug")),
		Title:  strings.TrimSpace(r.FormValue("title")),
		Dek:    strings.TrimSpace(r.FormValue("dek")),
		Body:   r.FormValue("body"),
		Tag:    strings.TrimSpace(r.FormValue("tag")),
		Author: strings.TrimSpace(r.FormValue("author")),
		Status: r.FormValue("status"),
	}

	if f.Title == "" || f.Body == "" {
		flashError(w, r, h.renderer, RouteStudioPosts, "Title and body are required.")
		return f, false
	}
	if f.Slug == "" {
		f.Slug = util.Slugify(f.Title)
	}
	if !util.IsValidSlug(f.Slug) {
		flashError(w, r, h.renderer, RouteStudioPosts, "Slug may only contain lowercase letters, numbers, and hyphens.")
		return f, false
	}
	if f.Status != model.ArticleStatusPublished {
		f.Status = model.ArticleStatusDraft
	}
	return f, true
}

// Create inserts a new article from the form.
func (h *ArticlesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteStudioPosts) {
		return
	}
	f, ok := h.parseArticleForm(w, r)
	if !ok {
		return
	}

	var publishedAt sql.NullTime
	if f.Status == model.ArticleStatusPublished {
		publishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	id, err := h.queries.CreateArticle(r.Context(), store.CreateArticleParams{
		Slug:        f.Slug,
		Title:       f.Title,
		Dek:         f.Dek,
		Body:        f.Body,
		Tag:         f.Tag,
		Author:      f.Author,
		ReadTime:    util.EstimateReadTime(f.Body),
		Status:      f.Status,
		PublishedAt: publishedAt,
	})
	if err != nil {
		logAndInternalError(w, "creating article", "error", err)
		return
	}

	_ = h.eventService.LogArticle(r.Context(), model.EventLevelInfo, "Article created",
		middleware.GetUserIDPtr(r), map[string]any{"article_id": id, "slug": f.Slug})

	flashSuccess(w, r, h.renderer, RouteStudioPosts, "Article created.")
}

// Update rewrites an existing article from the form.
func (h *ArticlesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, RouteStudioPosts, "Invalid article ID")
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, RouteStudioPosts) {
		return
	}
	article, ok := requireEntity(w, r, h.renderer, RouteStudioPosts, "Article", id,
		func(id int64) (model.Article, error) { return h.queries.GetArticleByID(r.Context(), id) })
	if !ok {
		return
	}
	f, ok := h.parseArticleForm(w, r)
	if !ok {
		return
	}

	// Keep the original publish timestamp; publishing is stamped once.
	publishedAt := article.PublishedAt
	if f.Status == model.ArticleStatusPublished && !publishedAt.Valid {
		publishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	err = h.queries.UpdateArticle(r.Context(), store.UpdateArticleParams{
		ID:          id,
		Slug:        f.Slug,
		Title:       f.Title,
		Dek:         f.Dek,
		Body:        f.Body,
		Tag:         f.Tag,
		Author:      f.Author,
		ReadTime:    util.EstimateReadTime(f.Body),
		Status:      f.Status,
		PublishedAt: publishedAt,
	})
	if err != nil {
		logAndInternalError(w, "updating article", "error", err)
		return
	}

	_ = h.eventService.LogArticle(r.Context(), model.EventLevelInfo, "Article updated",
		middleware.GetUserIDPtr(r), map[string]any{"article_id": id, "slug": f.Slug})

	flashSuccess(w, r, h.renderer, RouteStudioPosts, "Article updated.")
}

// TogglePublish flips an article between draft and published. The first
// publish stamps published_at; later cycles keep the original date.
func (h *ArticlesHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, RouteStudioPosts, "Invalid article ID")
		return
	}
	article, ok := requireEntity(w, r, h.renderer, RouteStudioPosts, "Article", id,
		func(id int64) (model.Article, error) { return h.queries.GetArticleByID(r.Context(), id) })
	if !ok {
		return
	}

	status := model.ArticleStatusPublished
	if article.IsPublished() {
		status = model.ArticleStatusDraft
	}

	if err := h.queries.UpdateArticleStatus(r.Context(), id, status,
		sql.NullTime{Time: time.Now(), Valid: true}); err != nil {
		logAndInternalError(w, "updating article status", "error", err)
		return
	}

	_ = h.eventService.LogArticle(r.Context(), model.EventLevelInfo, "Article status changed",
		middleware.GetUserIDPtr(r), map[string]any{"article_id": id, "status": status})

	flashSuccess(w, r, h.renderer, RouteStudioPosts, "Article is now "+status+".")
}

// Delete removes an article; its cover row goes with it via the foreign
// key cascade.
func (h *ArticlesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, RouteStudioPosts, "Invalid article ID")
		return
	}
	article, ok := requireEntity(w, r, h.renderer, RouteStudioPosts, "Article", id,
		func(id int64) (model.Article, error) { return h.queries.GetArticleByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.queries.DeleteArticle(r.Context(), id); err != nil {
		logAndInternalError(w, "deleting article", "error", err)
		return
	}
	if article.CoverURL != "" && h.media != nil {
		if err := h.media.Remove(article.CoverURL); err != nil {
			slog.Error("removing cover file failed", "error", err)
		}
	}

	_ = h.eventService.LogArticle(r.Context(), model.EventLevelWarning, "Article deleted",
		middleware.GetUserIDPtr(r), map[string]any{"article_id": id, "slug": article.Slug})

	flashSuccess(w, r, h.renderer, RouteStudioPosts, "Article deleted.")
}

// UploadCover stores an uploaded cover image and attaches it to the
// article, replacing any previous cover.
func (h *ArticlesHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, RouteStudioPosts, "Invalid article ID")
		return
	}
	article, ok := requireEntity(w, r, h.renderer, RouteStudioPosts, "Article", id,
		func(id int64) (model.Article, error) { return h.queries.GetArticleByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(service.MaxCoverUploadSize); err != nil {
		flashError(w, r, h.renderer, RouteStudioPosts, "Upload too large or malformed.")
		return
	}
	file, header, err := r.FormFile("cover")
	if err != nil {
		flashError(w, r, h.renderer, RouteStudioPosts, "No cover file supplied.")
		return
	}
	defer func() { _ = file.Close() }()

	upload, err := h.media.ProcessCover(file, header.Filename)
	if err != nil {
		flashError(w, r, h.renderer, RouteStudioPosts, "Could not process image: "+err.Error())
		return
	}

	if err := h.queries.UpsertCover(r.Context(), id, upload.URL); err != nil {
		logAndInternalError(w, "saving cover", "error", err)
		return
	}
	if article.CoverURL != "" {
		_ = h.media.Remove(article.CoverURL)
	}

	_ = h.eventService.LogMedia(r.Context(), model.EventLevelInfo, "Cover uploaded",
		middleware.GetUserIDPtr(r), map[string]any{"article_id": id, "url": upload.URL})

	flashSuccess(w, r, h.renderer, RouteStudioPosts, "Cover updated.")
}

// DeleteCover detaches and removes an article's cover.
func (h *ArticlesHandler) DeleteCover(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, RouteStudioPosts, "Invalid article ID")
		return
	}
	article, ok := requireEntity(w, r, h.renderer, RouteStudioPosts, "Article", id,
		func(id int64) (model.Article, error) { return h.queries.GetArticleByID(r.Context(), id) })
	if !ok {
		return
	}

	if err := h.queries.DeleteCover(r.Context(), id); err != nil {
		logAndInternalError(w, "deleting cover", "error", err)
		return
	}
	if article.CoverURL != "" && h.media != nil {
		_ = h.media.Remove(article.CoverURL)
	}

	flashSuccess(w, r, h.renderer, RouteStudioPosts, "Cover removed.")
}

// SuggestDek returns an AI-drafted dek for the submitted title and body
// as JSON. The endpoint degrades to 503 when assist is not configured.
func (h *ArticlesHandler) SuggestDek(w http.ResponseWriter, r *http.Request) {
	if h.assist == nil || !h.assist.Enabled() {
		writeJSONError(w, http.StatusServiceUnavailable, "assist is not configured")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	body := r.FormValue("body")
	if title == "" && body == "" {
		writeJSONError(w, http.StatusBadRequest, "title or body required")
		return
	}

	dek, err := h.assist.SuggestDek(r.Context(), title, body)
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, "suggestion failed")
		return
	}
	writeJSONSuccess(w, map[string]any{"dek": dek})
}
