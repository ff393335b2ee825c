package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
	"github.com/James-Git-Repo/eu-market-pulse/internal/render"
	"github.com/James-Git-Repo/eu-market-pulse/internal/service"
	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
)

// maxPitchLength caps the contribute form's pitch field.
const maxPitchLength = 5000

// FormsHandler processes the newsletter and contribute forms.
type FormsHandler struct {
	queries      *store.Queries
	renderer     *render.Renderer
	eventService *service.EventService
}

// NewFormsHandler creates a FormsHandler.
func NewFormsHandler(db *sql.DB, renderer *render.Renderer, events *service.EventService) *FormsHandler {
	return &FormsHandler{
		queries:      store.New(db),
		renderer:     renderer,
		eventService: events,
	}
}

// Subscribe handles a newsletter signup. Signing up twice with the same
// address is treated as success so the form never leaks whether an email
// is already on the list.
func (h *FormsHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteRoot) {
		return
	}

	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	if !validEmail(email) {
		flashError(w, r, h.renderer, RouteRoot, "Please enter a valid email address.")
		return
	}
	if r.FormValue("consent") == "" {
		flashError(w, r, h.renderer, RouteRoot, "Please accept the privacy terms to subscribe.")
		return
	}

	if _, err := h.queries.GetSubscriberByEmail(r.Context(), email); err == nil {
		flashSuccess(w, r, h.renderer, RouteRoot, "You're on the list. Talk soon.")
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		logAndInternalError(w, "checking subscriber", "error", err)
		return
	}

	_, err := h.queries.CreateSubscriber(r.Context(), store.CreateSubscriberParams{
		Email:     email,
		Token:     uuid.New().String(),
		Consented: true,
	})
	if err != nil {
		logAndInternalError(w, "creating subscriber", "error", err)
		return
	}

	flashSuccess(w, r, h.renderer, RouteRoot, "You're on the list. Talk soon.")
}

// Unsubscribe removes a subscriber by the opaque token carried in
// newsletter links. Unknown tokens still confirm, since the outcome the
// visitor wants is "not subscribed".
func (h *FormsHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		http.NotFound(w, r)
		return
	}

	if _, err := h.queries.DeleteSubscriberByToken(r.Context(), token); err != nil {
		logAndInternalError(w, "removing subscriber", "error", err)
		return
	}

	flashSuccess(w, r, h.renderer, RouteRoot, "You've been unsubscribed.")
}

// Contribute handles a reader pitch from the contribute form.
func (h *FormsHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteRoot) {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	topic := strings.TrimSpace(r.FormValue("topic"))
	pitch := strings.TrimSpace(r.FormValue("pitch"))

	switch {
	case name == "" || pitch == "":
		flashError(w, r, h.renderer, RouteRoot, "Name and pitch are required.")
		return
	case !validEmail(email):
		flashError(w, r, h.renderer, RouteRoot, "Please enter a valid email address.")
		return
	case len(pitch) > maxPitchLength:
		flashError(w, r, h.renderer, RouteRoot, "Pitch is too long.")
		return
	}

	_, err := h.queries.CreateContribution(r.Context(), store.CreateContributionParams{
		Name:  name,
		Email: email,
		Topic: topic,
		Pitch: pitch,
	})
	if err != nil {
		logAndInternalError(w, "creating contribution", "error", err)
		return
	}

	_ = h.eventService.LogEvent(r.Context(), model.EventLevelInfo, model.EventCategorySystem,
		"New contribution pitch received", nil, map[string]any{"topic": topic})

	flashSuccess(w, r, h.renderer, RouteRoot, "Thanks! We read every pitch.")
}
