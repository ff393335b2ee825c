package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/mileusna/useragent"

	"github.com/James-Git-Repo/eu-market-pulse/internal/geoip"
	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
)

// AnalyticsService records article page views. The raw user agent string
// is reduced to browser, OS, and device class before storage; the IP is
// only used transiently for a country lookup and never persisted.
type AnalyticsService struct {
	queries *store.Queries
	geo     *geoip.Lookup
}

// NewAnalyticsService creates an AnalyticsService. geo may be nil when
// country lookups are disabled.
func NewAnalyticsService(db *sql.DB, geo *geoip.Lookup) *AnalyticsService {
	return &AnalyticsService{queries: store.New(db), geo: geo}
}

// RecordView stores one page view for an article. Bot traffic is
// dropped. Failures are logged rather than surfaced since analytics must
// never break page rendering.
func (s *AnalyticsService) RecordView(ctx context.Context, articleID int64, userAgent, ip string) {
	ua := useragent.Parse(userAgent)
	if ua.Bot {
		return
	}

	device := "desktop"
	switch {
	case ua.Mobile:
		device = "mobile"
	case ua.Tablet:
		device = "tablet"
	}

	country := ""
	if s.geo != nil {
		country = s.geo.LookupCountry(ip)
	}

	err := s.queries.CreatePageView(ctx, store.CreatePageViewParams{
		ArticleID: articleID,
		Browser:   ua.Name,
		OS:        ua.OS,
		Device:    device,
		Country:   country,
	})
	if err != nil {
		slog.Warn("recording page view failed", "article_id", articleID, "error", err)
	}
}

// ViewCounts returns per-article view tallies, most viewed first.
func (s *AnalyticsService) ViewCounts(ctx context.Context) ([]store.ArticleViewCount, error) {
	return s.queries.CountPageViewsByArticle(ctx)
}
