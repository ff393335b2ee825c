package handler

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/James-Git-Repo/eu-market-pulse/internal/middleware"
	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
	"github.com/James-Git-Repo/eu-market-pulse/internal/render"
	"github.com/James-Git-Repo/eu-market-pulse/internal/service"
	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
)

// AudienceHandler shows newsletter subscribers and reader pitches in
// the studio.
type AudienceHandler struct {
	queries      *store.Queries
	renderer     *render.Renderer
	eventService *service.EventService
}

// NewAudienceHandler creates an AudienceHandler.
func NewAudienceHandler(db *sql.DB, renderer *render.Renderer) *AudienceHandler {
	return &AudienceHandler{
		queries:      store.New(db),
		renderer:     renderer,
		eventService: service.NewEventService(db),
	}
}

// AudienceData feeds the studio audience page.
type AudienceData struct {
	Subscribers   []model.Subscriber
	Contributions []model.Contribution
}

// List renders subscribers and contributions side by side.
func (h *AudienceHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.queries.ListSubscribers(r.Context())
	if err != nil {
		logAndInternalError(w, "listing subscribers", "error", err)
		return
	}
	pitches, err := h.queries.ListContributions(r.Context())
	if err != nil {
		logAndInternalError(w, "listing contributions", "error", err)
		return
	}

	data := AudienceData{Subscribers: subs, Contributions: pitches}
	if err := h.renderer.Render(w, r, "studio/audience", studioData(r, "Audience", data)); err != nil {
		logAndInternalError(w, "rendering audience page", "error", err)
	}
}

// ExportCSV streams the subscriber list as a CSV download.
func (h *AudienceHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	subs, err := h.queries.ListSubscribers(r.Context())
	if err != nil {
		logAndInternalError(w, "listing subscribers", "error", err)
		return
	}

	filename := fmt.Sprintf("subscribers-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"email", "consented", "subscribed_at"})
	for _, s := range subs {
		_ = cw.Write([]string{
			s.Email,
			strconv.FormatBool(s.Consented),
			s.CreatedAt.Format(time.RFC3339),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logAndInternalError(w, "writing subscriber CSV", "error", err)
	}
}

// DeleteSubscriber removes a subscriber from the studio list.
func (h *AudienceHandler) DeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, RouteStudioPeople, "Invalid subscriber ID")
		return
	}

	if err := h.queries.DeleteSubscriber(r.Context(), id); err != nil {
		logAndInternalError(w, "deleting subscriber", "error", err)
		return
	}

	_ = h.eventService.LogEvent(r.Context(), model.EventLevelWarning, model.EventCategorySystem,
		"Subscriber removed by editor", middleware.GetUserIDPtr(r), map[string]any{"subscriber_id": id})

	flashSuccess(w, r, h.renderer, RouteStudioPeople, "Subscriber removed.")
}
