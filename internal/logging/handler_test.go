package logging

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
)

func testLogger(t *testing.T) (*slog.Logger, *store.Queries) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewEventLogHandler(inner, db)), store.New(db)
}

func TestWarnAndErrorReachEventLog(t *testing.T) {
	logger, q := testLogger(t)

	logger.Warn("market quote fetch degraded", "symbol", "^STOXX")
	logger.Error("article save failed", "article_id", 7)
	logger.Info("routine chatter")

	events, err := q.ListRecentEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("event log has %d entries, want 2 (info must not be mirrored)", len(events))
	}

	byMessage := map[string]model.Event{}
	for _, e := range events {
		byMessage[e.Message] = e
	}

	warn := byMessage["market quote fetch degraded"]
	if warn.Level != model.EventLevelWarning {
		t.Errorf("warn level = %q, want %q", warn.Level, model.EventLevelWarning)
	}
	if warn.Category != model.EventCategoryMarket {
		t.Errorf("warn category = %q, want %q", warn.Category, model.EventCategoryMarket)
	}

	errEvent := byMessage["article save failed"]
	if errEvent.Level != model.EventLevelError {
		t.Errorf("error level = %q, want %q", errEvent.Level, model.EventLevelError)
	}
}

func TestExplicitCategoryAttr(t *testing.T) {
	logger, q := testLogger(t)

	logger.Warn("something odd", "category", model.EventCategoryAuth)

	events, err := q.ListRecentEvents(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListRecentEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].Category != model.EventCategoryAuth {
		t.Errorf("events = %+v, want one auth-category entry", events)
	}
}
