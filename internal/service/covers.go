package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
)

// CoverAssignment maps an article slug to the cover image it should get.
type CoverAssignment struct {
	Slug     string
	ImageURL string
}

// CoverBackfillReport summarizes one back-fill run. Assignments whose
// slug matches no article are skipped and listed rather than failing the
// run.
type CoverBackfillReport struct {
	Applied int
	Missing []string
	Errors  []string
}

// CoverService applies bulk cover assignments, used to attach artwork to
// articles imported without any.
type CoverService struct {
	queries *store.Queries
}

// NewCoverService creates a CoverService.
func NewCoverService(db *sql.DB) *CoverService {
	return &CoverService{queries: store.New(db)}
}

// Backfill applies each assignment in order. Per-item problems are
// collected in the report; only a nil report signals a total failure.
func (s *CoverService) Backfill(ctx context.Context, assignments []CoverAssignment) *CoverBackfillReport {
	report := &CoverBackfillReport{}

	for _, a := range assignments {
		article, err := s.queries.GetArticleBySlug(ctx, a.Slug)
		if errors.Is(err, sql.ErrNoRows) {
			report.Missing = append(report.Missing, a.Slug)
			continue
		}
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", a.Slug, err))
			continue
		}

		if err := s.queries.UpsertCover(ctx, article.ID, a.ImageURL); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", a.Slug, err))
			continue
		}
		report.Applied++
	}

	return report
}
