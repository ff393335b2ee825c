package handler

import (
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/James-Git-Repo/eu-market-pulse/internal/middleware"
	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
	"github.com/James-Git-Repo/eu-market-pulse/internal/render"
	"github.com/James-Git-Repo/eu-market-pulse/internal/service"
	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
)

// StudioHandler serves the editorial back office dashboard.
type StudioHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	analytics      *service.AnalyticsService
	eventService   *service.EventService
}

// NewStudioHandler creates a StudioHandler.
func NewStudioHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, analytics *service.AnalyticsService) *StudioHandler {
	return &StudioHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		analytics:      analytics,
		eventService:   service.NewEventService(db),
	}
}

// studioData builds the studio template envelope.
func studioData(r *http.Request, title string, data any) render.TemplateData {
	return render.TemplateData{
		Title: title,
		Data:  data,
		User:  middleware.GetUser(r),
	}
}

// DashboardData is the payload for the studio landing page.
type DashboardData struct {
	TotalArticles     int64
	PublishedArticles int64
	Subscribers       int64
	TopArticles       []store.ArticleViewCount
	RecentEvents      []model.Event
}

// Dashboard renders content counts, most-read articles, and recent
// activity.
func (h *StudioHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := DashboardData{}

	var err error
	if data.TotalArticles, data.PublishedArticles, err = h.queries.CountArticles(ctx); err != nil {
		logAndInternalError(w, "counting articles", "error", err)
		return
	}
	if data.Subscribers, err = h.queries.CountSubscribers(ctx); err != nil {
		logAndInternalError(w, "counting subscribers", "error", err)
		return
	}
	if h.analytics != nil {
		if data.TopArticles, err = h.analytics.ViewCounts(ctx); err != nil {
			logAndInternalError(w, "loading view counts", "error", err)
			return
		}
		if len(data.TopArticles) > 5 {
			data.TopArticles = data.TopArticles[:5]
		}
	}
	if data.RecentEvents, err = h.eventService.Recent(ctx, 10); err != nil {
		logAndInternalError(w, "loading recent events", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "studio/dashboard", studioData(r, "Studio", data)); err != nil {
		logAndInternalError(w, "rendering dashboard", "error", err)
	}
}
