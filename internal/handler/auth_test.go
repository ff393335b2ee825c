package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/James-Git-Repo/eu-market-pulse/internal/auth"
	"github.com/James-Git-Repo/eu-market-pulse/internal/middleware"
	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
)

const testPassword = "correct horse battery staple"

func seedCredentialedUser(t *testing.T, env *testEnv, role string) model.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	id, err := env.queries.CreateUser(context.Background(), store.CreateUserParams{
		Email:        role + "@example.com",
		PasswordHash: hash,
		Role:         role,
		Name:         "Test " + role,
	})
	require.NoError(t, err)
	return model.User{ID: id, Email: role + "@example.com", Role: role}
}

func loginForm(email, password string) url.Values {
	return url.Values{"email": {email}, "password": {password}}
}

func TestLoginEditorLandsInStudio(t *testing.T) {
	env := newTestEnv(t)
	user := seedCredentialedUser(t, env, model.RoleEditor)
	h := NewAuthHandler(env.db, env.renderer, env.sm, nil)

	rec := env.serve(http.HandlerFunc(h.Login),
		formRequest("/studio/login", loginForm(user.Email, testPassword)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteStudio, rec.Header().Get("Location"))
}

func TestLoginNonEditorLandsOnSite(t *testing.T) {
	env := newTestEnv(t)
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	_, err = env.queries.CreateUser(context.Background(), store.CreateUserParams{
		Email:        "viewer@example.com",
		PasswordHash: hash,
		Role:         "viewer",
		Name:         "Viewer",
	})
	require.NoError(t, err)

	h := NewAuthHandler(env.db, env.renderer, env.sm, nil)
	rec := env.serve(http.HandlerFunc(h.Login),
		formRequest("/studio/login", loginForm("viewer@example.com", testPassword)))

	// Signed in, but no editing privilege: back to the public site.
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteRoot, rec.Header().Get("Location"))
}

func TestLoginWrongPasswordFlashesError(t *testing.T) {
	env := newTestEnv(t)
	user := seedCredentialedUser(t, env, model.RoleEditor)
	h := NewAuthHandler(env.db, env.renderer, env.sm, nil)

	rec := env.serve(http.HandlerFunc(h.Login),
		formRequest("/studio/login", loginForm(user.Email, "wrong")))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteStudioLogin, rec.Header().Get("Location"))
}

func TestLoginUnknownUserSameResponseAsWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.db, env.renderer, env.sm, nil)

	rec := env.serve(http.HandlerFunc(h.Login),
		formRequest("/studio/login", loginForm("ghost@example.com", "whatever")))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteStudioLogin, rec.Header().Get("Location"))
}

func TestLoginMissingFields(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.db, env.renderer, env.sm, nil)

	rec := env.serve(http.HandlerFunc(h.Login),
		formRequest("/studio/login", url.Values{"email": {"a@b.com"}}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteStudioLogin, rec.Header().Get("Location"))
}

func TestLoginLockoutAfterRepeatedFailures(t *testing.T) {
	env := newTestEnv(t)
	user := seedCredentialedUser(t, env, model.RoleEditor)
	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		MaxFailedAttempts: 2,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
	h := NewAuthHandler(env.db, env.renderer, env.sm, lp)

	for i := 0; i < 2; i++ {
		env.serve(http.HandlerFunc(h.Login),
			formRequest("/studio/login", loginForm(user.Email, "wrong")))
	}

	// Even the right password is refused while locked.
	rec := env.serve(http.HandlerFunc(h.Login),
		formRequest("/studio/login", loginForm(user.Email, testPassword)))
	assert.Equal(t, RouteStudioLogin, rec.Header().Get("Location"))
}

func TestLoginFormRendersForAnonymous(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.db, env.renderer, env.sm, nil)

	rec := env.serve(http.HandlerFunc(h.LoginForm),
		newGetRequest("/studio/login"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "login")
}

func TestLogoutRedirectsHome(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.db, env.renderer, env.sm, nil)

	rec := env.serve(http.HandlerFunc(h.Logout), newGetRequest("/studio/logout"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, RouteRoot, rec.Header().Get("Location"))
}

func TestToggleEditorModeRequiresEditor(t *testing.T) {
	env := newTestEnv(t)
	h := NewAuthHandler(env.db, env.renderer, env.sm, nil)

	rec := env.serve(http.HandlerFunc(h.ToggleEditorMode), newGetRequest("/studio/toggle"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestToggleEditorModeFlipsForEditor(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env.queries, model.RoleEditor)
	h := NewAuthHandler(env.db, env.renderer, env.sm, nil)

	r := withUser(newGetRequest("/studio/toggle"), user)
	r.Header.Set("Referer", "/archive")
	rec := env.serve(http.HandlerFunc(h.ToggleEditorMode), r)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/archive", rec.Header().Get("Location"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "under a minute", formatDuration(20*time.Second))
	assert.Equal(t, "15 minutes", formatDuration(15*time.Minute))
	assert.Equal(t, "2 hours", formatDuration(2*time.Hour))
}
