package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/James-Git-Repo/eu-market-pulse/internal/auth"
	"github.com/James-Git-Repo/eu-market-pulse/internal/editor"
	"github.com/James-Git-Repo/eu-market-pulse/internal/middleware"
	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
	"github.com/James-Git-Repo/eu-market-pulse/internal/render"
	"github.com/James-Git-Repo/eu-market-pulse/internal/service"
	"github.com/James-Git-Repo/eu-market-pulse/internal/session"
	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
)

// AuthHandler handles studio sign-in and sign-out. Each sign-in runs
// through an editor.Gate so the privilege check is the single source of
// truth for whether editing affordances unlock.
type AuthHandler struct {
	queries         *store.Queries
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	authService     *auth.Service
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		renderer:        renderer,
		sessionManager:  sm,
		authService:     auth.NewService(db),
		eventService:    service.NewEventService(db),
		loginProtection: lp,
	}
}

// newGate builds a fresh gate bound to the auth service.
func (h *AuthHandler) newGate() *editor.Gate {
	return editor.NewGate(h.authService, h.authService, h.authService)
}

// LoginForm renders the sign-in page. Already-privileged users go
// straight to the studio.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if userID := h.sessionManager.GetInt64(r.Context(), session.KeyUserID); userID > 0 {
		if user, err := h.queries.GetUserByID(r.Context(), userID); err == nil {
			if user.CanEdit() {
				http.Redirect(w, r, RouteStudio, http.StatusSeeOther)
			} else {
				http.Redirect(w, r, RouteRoot, http.StatusSeeOther)
			}
			return
		}
	}

	if err := h.renderer.Render(w, r, "site/login", render.TemplateData{Title: "Sign In"}); err != nil {
		logAndInternalError(w, "rendering login page", "error", err)
	}
}

// Login processes the sign-in form. Credential failures and lockouts
// flash back to the form; infrastructure failures never grant access.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteStudioLogin) {
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	if email == "" || password == "" {
		flashError(w, r, h.renderer, RouteStudioLogin, "Email and password are required.")
		return
	}

	clientIP := middleware.ClientIP(r)

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			_ = h.eventService.LogAuth(r.Context(), model.EventLevelWarning,
				"Login attempt on locked account", nil, map[string]any{"email": email, "ip": clientIP})
			flashError(w, r, h.renderer, RouteStudioLogin,
				fmt.Sprintf("Account locked. Try again in %s.", formatDuration(remaining)))
			return
		}
	}

	gate := h.newGate()
	if err := gate.SignIn(r.Context(), email, password); err != nil {
		if errors.Is(err, editor.ErrUnavailable) {
			logAndInternalError(w, "authentication backend unavailable", "error", err)
			return
		}

		_ = h.eventService.LogAuth(r.Context(), model.EventLevelWarning,
			"Login failed", nil, map[string]any{"email": email, "ip": clientIP})

		if h.loginProtection != nil {
			if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
				flashError(w, r, h.renderer, RouteStudioLogin,
					fmt.Sprintf("Too many attempts. Account locked for %s.", formatDuration(lockDuration)))
				return
			}
		}

		flashError(w, r, h.renderer, RouteStudioLogin, "Invalid email or password.")
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	// Block until the privilege check settles; the result decides where
	// the visitor lands and whether editing affordances show.
	editorMode := gate.WaitPrivilege(r.Context())
	identity := gate.Identity()

	// Fresh session token on privilege change.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal failed", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), session.KeyUserID, identity.UserID)
	h.sessionManager.Put(r.Context(), session.KeyEditorMode, editorMode)

	slog.Info("user signed in", "user_id", identity.UserID, "editor_mode", editorMode)
	_ = h.eventService.LogAuth(r.Context(), model.EventLevelInfo, "User signed in",
		&identity.UserID, map[string]any{"email": identity.Email, "ip": clientIP, "editor_mode": editorMode})

	if editorMode {
		flashSuccess(w, r, h.renderer, RouteStudio, "Welcome back.")
	} else {
		flashSuccess(w, r, h.renderer, RouteRoot, "Signed in.")
	}
}

// ToggleEditorMode flips the editing-affordances flag for a signed-in
// editor. The flag only changes what the templates show; authorization
// stays with the route middleware.
func (h *AuthHandler) ToggleEditorMode(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil || !user.CanEdit() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	current := h.sessionManager.GetBool(r.Context(), session.KeyEditorMode)
	h.sessionManager.Put(r.Context(), session.KeyEditorMode, !current)

	referer := r.Header.Get("Referer")
	if referer == "" {
		referer = RouteRoot
	}
	http.Redirect(w, r, referer, http.StatusSeeOther)
}

// Logout tears the session down. The gate's sign-out path runs first so
// its revocation hook and state transitions apply; the session is
// destroyed locally regardless of the outcome.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), session.KeyUserID)

	if userID > 0 {
		gate := h.newGate()
		gate.Restore(r.Context(), editor.Identity{UserID: userID})
		gate.SignOut(r.Context())

		_ = h.eventService.LogAuth(r.Context(), model.EventLevelInfo, "User signed out",
			&userID, nil)
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("destroying session failed", "error", err)
	}

	flashSuccess(w, r, h.renderer, RouteRoot, "Signed out.")
}

// formatDuration renders a lockout duration for people, not logs.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	if d < time.Minute {
		return "under a minute"
	}
	if d < time.Hour {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	return fmt.Sprintf("%.0f hours", d.Hours())
}
