package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
)

func newResourcesHandler(env *testEnv) *ResourcesStudioHandler {
	return NewResourcesStudioHandler(env.db, env.renderer)
}

func TestCreateResourceAppendsToCategory(t *testing.T) {
	env := newTestEnv(t)
	h := newResourcesHandler(env)
	seedResource(t, env.queries, model.ResourceCategoryTools, "first", 1)

	rec := env.serve(http.HandlerFunc(h.Create), formRequest(RouteStudioLinks, url.Values{
		"category": {model.ResourceCategoryTools},
		"title":    {"second"},
		"url":      {"https://example.com/second"},
	}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	resources, err := env.queries.ListResources(context.Background())
	require.NoError(t, err)
	require.Len(t, resources, 2)
	assert.Equal(t, "second", resources[1].Title)
	assert.Greater(t, resources[1].SortOrder, resources[0].SortOrder)
}

func TestCreateResourceRejectsUnknownCategory(t *testing.T) {
	env := newTestEnv(t)
	h := newResourcesHandler(env)

	rec := env.serve(http.HandlerFunc(h.Create), formRequest(RouteStudioLinks, url.Values{
		"category": {"memes"},
		"title":    {"nope"},
	}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	resources, err := env.queries.ListResources(context.Background())
	require.NoError(t, err)
	assert.Empty(t, resources)
}

func TestCreateResourceRequiresTitle(t *testing.T) {
	env := newTestEnv(t)
	h := newResourcesHandler(env)

	rec := env.serve(http.HandlerFunc(h.Create), formRequest(RouteStudioLinks, url.Values{
		"category": {model.ResourceCategoryTools},
	}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	resources, err := env.queries.ListResources(context.Background())
	require.NoError(t, err)
	assert.Empty(t, resources)
}

func TestUpdateResource(t *testing.T) {
	env := newTestEnv(t)
	h := newResourcesHandler(env)
	id := seedResource(t, env.queries, model.ResourceCategoryTools, "old name", 3)

	env.serve(http.HandlerFunc(h.Update), idRequest(RouteStudioLinks, id, url.Values{
		"category": {model.ResourceCategoryTools},
		"title":    {"new name"},
		"url":      {"https://example.com/renamed"},
	}))

	updated, err := env.queries.GetResourceByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "new name", updated.Title)
	// Sort order survives when the form leaves it blank.
	assert.EqualValues(t, 3, updated.SortOrder)
}

func TestDeleteResource(t *testing.T) {
	env := newTestEnv(t)
	h := newResourcesHandler(env)
	id := seedResource(t, env.queries, model.ResourceCategoryPodcasts, "gone", 1)

	rec := env.serve(http.HandlerFunc(h.Delete), idRequest(RouteStudioLinks, id, nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	_, err := env.queries.GetResourceByID(context.Background(), id)
	assert.Error(t, err)
}

func TestMoveSwapsNeighbors(t *testing.T) {
	env := newTestEnv(t)
	h := newResourcesHandler(env)
	topID := seedResource(t, env.queries, model.ResourceCategoryTools, "top", 1)
	bottomID := seedResource(t, env.queries, model.ResourceCategoryTools, "bottom", 2)

	r := idRequest(RouteStudioLinks+"/"+"up", bottomID, nil)
	r.URL.Path = "/studio/resources/2/up"
	env.serve(http.HandlerFunc(h.Move), r)

	top, err := env.queries.GetResourceByID(context.Background(), topID)
	require.NoError(t, err)
	bottom, err := env.queries.GetResourceByID(context.Background(), bottomID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, top.SortOrder)
	assert.EqualValues(t, 1, bottom.SortOrder)
}

func TestMoveRenumbersDuplicateOrders(t *testing.T) {
	env := newTestEnv(t)
	h := newResourcesHandler(env)
	// Both rows carry the same sort order, so only a positional renumber
	// can make the move stick.
	firstID := seedResource(t, env.queries, model.ResourceCategoryTools, "first", 1)
	secondID := seedResource(t, env.queries, model.ResourceCategoryTools, "second", 1)

	r := idRequest("/studio/resources/2/up", secondID, nil)
	r.URL.Path = "/studio/resources/2/up"
	env.serve(http.HandlerFunc(h.Move), r)

	first, err := env.queries.GetResourceByID(context.Background(), firstID)
	require.NoError(t, err)
	second, err := env.queries.GetResourceByID(context.Background(), secondID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, second.SortOrder)
	assert.EqualValues(t, 2, first.SortOrder)
}

func TestMoveAtEdgeIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	h := newResourcesHandler(env)
	id := seedResource(t, env.queries, model.ResourceCategoryTools, "only", 1)

	r := idRequest("/studio/resources/1/up", id, nil)
	r.URL.Path = "/studio/resources/1/up"
	rec := env.serve(http.HandlerFunc(h.Move), r)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	res, err := env.queries.GetResourceByID(context.Background(), id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.SortOrder)
}

func TestMoveIgnoresOtherCategories(t *testing.T) {
	env := newTestEnv(t)
	h := newResourcesHandler(env)
	podID := seedResource(t, env.queries, model.ResourceCategoryPodcasts, "pod", 1)
	toolID := seedResource(t, env.queries, model.ResourceCategoryTools, "tool", 2)

	r := idRequest("/studio/resources/move", toolID, nil)
	r.URL.Path = "/studio/resources/2/up"
	env.serve(http.HandlerFunc(h.Move), r)

	pod, err := env.queries.GetResourceByID(context.Background(), podID)
	require.NoError(t, err)
	tool, err := env.queries.GetResourceByID(context.Background(), toolID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pod.SortOrder)
	assert.EqualValues(t, 2, tool.SortOrder)
}
