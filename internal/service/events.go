// Package service holds the business logic sitting between the HTTP
// handlers and the store: audit events, cover image processing, page
// view analytics, cover back-fill, and optional AI drafting help.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
)

// EventService writes audit entries to the event log.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates an EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{queries: store.New(db)}
}

// LogEvent records an event. The client IP, when known, travels in the
// metadata JSON.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, userID *int64, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		Metadata:  metadataJSON,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("writing event log entry failed", "error", err)
		return err
	}
	return nil
}

// LogAuth records an authentication event.
func (s *EventService) LogAuth(ctx context.Context, level, message string, userID *int64, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryAuth, message, userID, metadata)
}

// LogArticle records an article lifecycle event.
func (s *EventService) LogArticle(ctx context.Context, level, message string, userID *int64, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryArticle, message, userID, metadata)
}

// LogResource records a resource lifecycle event.
func (s *EventService) LogResource(ctx context.Context, level, message string, userID *int64, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryResource, message, userID, metadata)
}

// LogMedia records an upload or cover event.
func (s *EventService) LogMedia(ctx context.Context, level, message string, userID *int64, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryMedia, message, userID, metadata)
}

// LogSystem records a system event.
func (s *EventService) LogSystem(ctx context.Context, level, message string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategorySystem, message, nil, metadata)
}

// Recent returns the newest event entries, capped at limit.
func (s *EventService) Recent(ctx context.Context, limit int64) ([]model.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.queries.ListRecentEvents(ctx, limit)
}
