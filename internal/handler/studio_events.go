package handler

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/James-Git-Repo/eu-market-pulse/internal/middleware"
	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
	"github.com/James-Git-Repo/eu-market-pulse/internal/render"
	"github.com/James-Git-Repo/eu-market-pulse/internal/service"
	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
)

const eventPageLimit = 200

// EventsHandler serves the studio activity log and maintenance actions.
type EventsHandler struct {
	queries      *store.Queries
	renderer     *render.Renderer
	eventService *service.EventService
	coverService *service.CoverService
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(db *sql.DB, renderer *render.Renderer) *EventsHandler {
	return &EventsHandler{
		queries:      store.New(db),
		renderer:     renderer,
		eventService: service.NewEventService(db),
		coverService: service.NewCoverService(db),
	}
}

// List renders the recent event log.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.Recent(r.Context(), eventPageLimit)
	if err != nil {
		logAndInternalError(w, "listing events", "error", err)
		return
	}
	if err := h.renderer.Render(w, r, "studio/events", studioData(r, "Activity", events)); err != nil {
		logAndInternalError(w, "rendering event log", "error", err)
	}
}

// BackfillCovers applies a pasted batch of slug,url cover assignments.
// Blank lines and lines starting with # are skipped.
func (h *EventsHandler) BackfillCovers(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteStudioEvents) {
		return
	}

	assignments, err := parseCoverAssignments(r.FormValue("assignments"))
	if err != nil {
		flashError(w, r, h.renderer, RouteStudioEvents, err.Error())
		return
	}
	if len(assignments) == 0 {
		flashError(w, r, h.renderer, RouteStudioEvents, "No assignments given.")
		return
	}

	report := h.coverService.Backfill(r.Context(), assignments)

	_ = h.eventService.LogMedia(r.Context(), model.EventLevelInfo, "Cover back-fill run",
		middleware.GetUserIDPtr(r), map[string]any{
			"applied": report.Applied,
			"missing": len(report.Missing),
			"errors":  len(report.Errors),
		})

	msg := fmt.Sprintf("Covers applied: %d.", report.Applied)
	if len(report.Missing) > 0 {
		msg += fmt.Sprintf(" Unknown slugs: %s.", strings.Join(report.Missing, ", "))
	}
	if len(report.Errors) > 0 {
		flashError(w, r, h.renderer, RouteStudioEvents,
			msg+fmt.Sprintf(" Failures: %s.", strings.Join(report.Errors, "; ")))
		return
	}
	flashSuccess(w, r, h.renderer, RouteStudioEvents, msg)
}

// parseCoverAssignments reads one "slug,url" pair per line.
func parseCoverAssignments(input string) ([]service.CoverAssignment, error) {
	var assignments []service.CoverAssignment
	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		slug, url, found := strings.Cut(line, ",")
		slug, url = strings.TrimSpace(slug), strings.TrimSpace(url)
		if !found || slug == "" || url == "" {
			return nil, fmt.Errorf("line %d: expected \"slug,url\"", i+1)
		}
		assignments = append(assignments, service.CoverAssignment{Slug: slug, ImageURL: url})
	}
	return assignments, nil
}
