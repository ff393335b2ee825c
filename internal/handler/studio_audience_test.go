package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
)

func seedSubscriber(t *testing.T, env *testEnv, email, token string) int64 {
	t.Helper()
	id, err := env.queries.CreateSubscriber(context.Background(), store.CreateSubscriberParams{
		Email: email, Token: token, Consented: true,
	})
	require.NoError(t, err)
	return id
}

func TestAudienceListShowsBothSides(t *testing.T) {
	env := newTestEnv(t)
	seedSubscriber(t, env, "a@example.com", "tok-a")
	seedSubscriber(t, env, "b@example.com", "tok-b")
	_, err := env.queries.CreateContribution(context.Background(), store.CreateContributionParams{
		Name: "Dana", Email: "dana@example.com", Topic: "rates", Pitch: "An idea.",
	})
	require.NoError(t, err)

	h := NewAudienceHandler(env.db, env.renderer)
	rec := env.serve(http.HandlerFunc(h.List), newGetRequest(RouteStudioPeople))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "subs=2")
	assert.Contains(t, rec.Body.String(), "pitches=1")
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t)
	seedSubscriber(t, env, "a@example.com", "tok-a")
	seedSubscriber(t, env, "b@example.com", "tok-b")

	h := NewAudienceHandler(env.db, env.renderer)
	rec := env.serve(http.HandlerFunc(h.ExportCSV), newGetRequest(RouteStudioPeople+"/export"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	body := rec.Body.String()
	assert.Contains(t, body, "email,consented,subscribed_at")
	assert.Contains(t, body, "a@example.com,true")
	assert.Contains(t, body, "b@example.com,true")
	// The unsubscribe token never leaves the studio.
	assert.NotContains(t, body, "tok-a")
}

func TestDeleteSubscriber(t *testing.T) {
	env := newTestEnv(t)
	id := seedSubscriber(t, env, "a@example.com", "tok-a")

	h := NewAudienceHandler(env.db, env.renderer)
	rec := env.serve(http.HandlerFunc(h.DeleteSubscriber), idRequest(RouteStudioPeople, id, nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	n, err := env.queries.CountSubscribers(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
