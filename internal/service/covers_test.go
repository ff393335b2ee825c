package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
)

func TestCoverBackfill(t *testing.T) {
	db := newTestDB(t)
	seedArticle(t, db, "eu-banks-nim-compression")
	seedArticle(t, db, "pharma-pricing-pressure")
	svc := NewCoverService(db)
	ctx := context.Background()

	report := svc.Backfill(ctx, []CoverAssignment{
		{Slug: "eu-banks-nim-compression", ImageURL: "/uploads/covers/banks.jpg"},
		{Slug: "pharma-pricing-pressure", ImageURL: "/uploads/covers/pharma.jpg"},
		{Slug: "no-such-article", ImageURL: "/uploads/covers/ghost.jpg"},
	})

	require.NotNil(t, report)
	assert.Equal(t, 2, report.Applied)
	assert.Equal(t, []string{"no-such-article"}, report.Missing)
	assert.Empty(t, report.Errors)

	article, err := store.New(db).GetArticleBySlug(ctx, "eu-banks-nim-compression")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/covers/banks.jpg", article.CoverURL)
}

func TestCoverBackfillOverwritesExisting(t *testing.T) {
	db := newTestDB(t)
	seedArticle(t, db, "semis-cyclicals-growth")
	svc := NewCoverService(db)
	ctx := context.Background()

	svc.Backfill(ctx, []CoverAssignment{{Slug: "semis-cyclicals-growth", ImageURL: "/old.jpg"}})
	report := svc.Backfill(ctx, []CoverAssignment{{Slug: "semis-cyclicals-growth", ImageURL: "/new.jpg"}})

	assert.Equal(t, 1, report.Applied)

	article, err := store.New(db).GetArticleBySlug(ctx, "semis-cyclicals-growth")
	require.NoError(t, err)
	assert.Equal(t, "/new.jpg", article.CoverURL)
}

func TestCoverBackfillEmptyInput(t *testing.T) {
	svc := NewCoverService(newTestDB(t))

	report := svc.Backfill(context.Background(), nil)
	require.NotNil(t, report)
	assert.Zero(t, report.Applied)
	assert.Empty(t, report.Missing)
}
