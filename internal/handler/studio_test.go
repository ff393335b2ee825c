package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
)

func TestDashboardShowsCounts(t *testing.T) {
	env := newTestEnv(t)
	seedArticle(t, env.queries, "live", model.ArticleStatusPublished, time.Now())
	seedArticle(t, env.queries, "wip", model.ArticleStatusDraft, time.Time{})
	_, err := env.queries.CreateSubscriber(context.Background(), store.CreateSubscriberParams{
		Email: "reader@example.com", Token: "tok", Consented: true,
	})
	require.NoError(t, err)

	h := NewStudioHandler(env.db, env.renderer, env.sm, nil)
	rec := env.serve(http.HandlerFunc(h.Dashboard), newGetRequest("/studio"))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "articles=2")
	assert.Contains(t, body, "subs=1")
}
