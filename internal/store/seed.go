package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
)

// SeedAdmin creates the initial admin account when the users table is empty.
// The caller hashes the configured password; with no credentials set the
// step is skipped and the studio stays unreachable until an account exists.
func SeedAdmin(ctx context.Context, db *sql.DB, email, passwordHash string) error {
	q := New(db)

	n, err := q.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if n > 0 {
		return nil
	}
	if email == "" || passwordHash == "" {
		slog.Warn("no users exist and no admin credentials configured; studio sign-in unavailable")
		return nil
	}

	id, err := q.CreateUser(ctx, CreateUserParams{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		Name:         "Admin",
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("seeded initial admin user", "user_id", id, "email", email)
	return nil
}

// seedArticle is one starter article.
type seedArticle struct {
	slug, title, dek, tag, readTime, body string
	publishedAt                           time.Time
}

var starterArticles = []seedArticle{
	{
		slug:        "eu-banks-nim-compression",
		title:       "Earnings Pulse: EU Banks' NIM Compression vs. Resilient Fees",
		dek:         "Why guidance beats beats: reading the spread between commentary and consensus.",
		tag:         "Banks",
		readTime:    "6 min",
		publishedAt: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		body: `# Earnings Pulse: EU Banks' NIM Compression vs. Resilient Fees

Net interest margin (NIM) compression has become the dominant narrative across
European banking, but the real signal lies in fee income resilience and
management guidance.

## Key Takeaways

- **NIM Compression**: Most major EU banks reported sequential NIM decline of 5-8 basis points
- **Fee Income**: Wealth management and transaction fees up 12-15% YoY
- **Management Guidance**: Forward-looking commentary more important than Q3 beats`,
	},
	{
		slug:        "semis-cyclicals-growth",
		title:       "Semis in Europe: Cyclicals Wearing Growth Clothing",
		dek:         "Capex, export mix, and the FX tailwinds that actually matter.",
		tag:         "Tech",
		readTime:    "7 min",
		publishedAt: time.Date(2025, 9, 29, 0, 0, 0, 0, time.UTC),
		body: `# Semis in Europe: Cyclicals Wearing Growth Clothing

European semiconductor companies are navigating a complex landscape of
cyclical demand patterns while maintaining growth narratives.

## Current State

- **Capex Cycles**: Major players increasing spending by 20-25%
- **Export Dynamics**: China exposure creating volatility
- **FX Impact**: Euro weakness providing 3-5% tailwind`,
	},
	{
		slug:        "pharma-pricing-pressure",
		title:       "Pharma Pricing Pressure: Reading Between Policy Lines",
		dek:         "What drug pricing reform chatter means for EU pharma margins.",
		tag:         "Healthcare",
		readTime:    "5 min",
		publishedAt: time.Date(2024, 11, 12, 0, 0, 0, 0, time.UTC),
		body: `# Pharma Pricing Pressure: Reading Between Policy Lines

Drug pricing reform is back on the policy agenda on both sides of the
Atlantic, and European pharma is caught in the crossfire.

## What to Watch

1. Reference pricing proposals in the largest EU markets
2. Pipeline concentration risk among the megacaps
3. Biosimilar erosion curves accelerating past consensus`,
	},
}

type seedResource struct {
	category, title, description, metadata, url string
	sortOrder                                   int64
}

var starterResources = []seedResource{
	{model.ResourceCategoryPodcasts, "Odd Lots", "Markets storytelling with actual depth.", "45 min episodes", "https://www.bloomberg.com/oddlots", 1},
	{model.ResourceCategoryArticles, "ECB Economic Bulletin", "Primary-source euro area analysis.", "8 issues/year", "https://www.ecb.europa.eu/pub/economic-bulletin", 1},
	{model.ResourceCategoryTools, "STOXX Index Data", "Benchmark constituents and factsheets.", "", "https://www.stoxx.com", 1},
}

// SeedContent inserts the starter articles and resources when doSeed is set
// and the tables are empty. Intended for demos and first-run development.
func SeedContent(ctx context.Context, db *sql.DB, doSeed bool) error {
	if !doSeed {
		return nil
	}

	q := New(db)

	total, _, err := q.CountArticles(ctx)
	if err != nil {
		return fmt.Errorf("counting articles: %w", err)
	}
	if total == 0 {
		for _, a := range starterArticles {
			if _, err := q.CreateArticle(ctx, CreateArticleParams{
				Slug:        a.slug,
				Title:       a.title,
				Dek:         a.dek,
				Body:        a.body,
				Tag:         a.tag,
				Author:      "TSN Desk",
				ReadTime:    a.readTime,
				Status:      model.ArticleStatusPublished,
				PublishedAt: sql.NullTime{Time: a.publishedAt, Valid: true},
			}); err != nil {
				return fmt.Errorf("seeding article %q: %w", a.slug, err)
			}
		}
		slog.Info("seeded starter articles", "count", len(starterArticles))
	}

	resources, err := q.ListResources(ctx)
	if err != nil {
		return fmt.Errorf("listing resources: %w", err)
	}
	if len(resources) == 0 {
		for _, r := range starterResources {
			if _, err := q.CreateResource(ctx, CreateResourceParams{
				Category:    r.category,
				Title:       r.title,
				Description: r.description,
				Metadata:    r.metadata,
				URL:         r.url,
				SortOrder:   r.sortOrder,
			}); err != nil {
				return fmt.Errorf("seeding resource %q: %w", r.title, err)
			}
		}
		slog.Info("seeded starter resources", "count", len(starterResources))
	}

	return nil
}
