// Package logging provides a slog handler that mirrors WARN and ERROR
// records into the database event log for later review in the studio.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
)

// EventLogHandler wraps another slog.Handler and also writes records at or
// above a threshold level to the events table.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
}

// NewEventLogHandler creates an EventLogHandler forwarding WARN and above.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   slog.LevelWarn,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.writeToEventLog(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EventLogHandler{inner: h.inner.WithAttrs(attrs), queries: h.queries, level: h.level}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{inner: h.inner.WithGroup(name), queries: h.queries, level: h.level}
}

func (h *EventLogHandler) writeToEventLog(r slog.Record) {
	level := model.EventLevelWarning
	if r.Level >= slog.LevelError {
		level = model.EventLevelError
	}

	category := model.EventCategorySystem
	attrs := make(map[string]string)
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return true
		}
		attrs[a.Key] = a.Value.String()
		return true
	})
	if category == model.EventCategorySystem {
		category = inferCategory(r.Message)
	}

	var metadata string
	if len(attrs) > 0 {
		if b, err := json.Marshal(attrs); err == nil {
			metadata = string(b)
		}
	}

	// Background context: the record must land even when the request
	// context that produced it is already cancelled.
	_, _ = h.queries.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   r.Message,
		UserID:    sql.NullInt64{},
		Metadata:  metadata,
		CreatedAt: r.Time,
	})
}

// inferCategory guesses an event category from common message prefixes.
func inferCategory(message string) string {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "session") || strings.Contains(msg, "privilege"):
		return model.EventCategoryAuth
	case strings.Contains(msg, "article") || strings.Contains(msg, "cover"):
		return model.EventCategoryArticle
	case strings.Contains(msg, "quote") || strings.Contains(msg, "market"):
		return model.EventCategoryMarket
	default:
		return model.EventCategorySystem
	}
}
