// Package handler contains the HTTP handlers: the public site, the
// studio (editorial back office), and shared response helpers.
package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/James-Git-Repo/eu-market-pulse/internal/render"
)

// Route constants shared across handlers.
const (
	RouteRoot         = "/"
	RouteArchive      = "/archive"
	RouteResources    = "/resources"
	RouteStudio       = "/studio"
	RouteStudioLogin  = "/studio/login"
	RouteStudioPosts  = "/studio/articles"
	RouteStudioLinks  = "/studio/resources"
	RouteStudioPeople = "/studio/audience"
	RouteStudioEvents = "/studio/events"
)

// flashAndRedirect sets a flash message and redirects with 303.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, "error")
}

func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, "success")
}

// parseFormOrRedirect parses the form, redirecting with a flash on
// failure. Returns true when parsing succeeded.
func parseFormOrRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, redirectURL string) bool {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, renderer, redirectURL, "Invalid form data")
		return false
	}
	return true
}

// logAndHTTPError logs and writes a plain error response.
func logAndHTTPError(w http.ResponseWriter, message string, statusCode int, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, message, statusCode)
}

func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	logAndHTTPError(w, "Internal Server Error", http.StatusInternalServerError, logMsg, args...)
}

// urlParamID parses the {id} chi route parameter.
func urlParamID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// requireEntity fetches an entity by ID, flashing and redirecting on a
// missing row or query failure. The bool reports whether the entity was
// loaded; on false the response is already written.
func requireEntity[T any](
	w http.ResponseWriter,
	r *http.Request,
	renderer *render.Renderer,
	redirectURL string,
	entityName string,
	id int64,
	queryFn func(id int64) (T, error),
) (T, bool) {
	var zero T
	entity, err := queryFn(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			flashError(w, r, renderer, redirectURL, entityName+" not found")
		} else {
			slog.Error("failed to get "+entityName, "error", err, "id", id)
			flashError(w, r, renderer, redirectURL, "Error loading "+entityName)
		}
		return zero, false
	}
	return entity, true
}

// validEmail reports whether s parses as a bare RFC 5322 address.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
