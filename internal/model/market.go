package model

import "time"

// MarketIndex is a single quote shown in the ticker stripe.
// Synthetic is true when the upstream fetch failed and the value was
// generated as a placeholder; it must never be presented as live data.
type MarketIndex struct {
	Name          string    `json:"name"`
	Symbol        string    `json:"symbol"`
	Value         string    `json:"value"`
	ChangePercent string    `json:"change"`
	QuoteURL      string    `json:"quote_url"`
	Synthetic     bool      `json:"synthetic"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// IsUp reports whether the index change is non-negative.
func (m *MarketIndex) IsUp() bool {
	return len(m.ChangePercent) > 0 && m.ChangePercent[0] != '-'
}

// PageView is a recorded visit to an article, with the user agent already
// reduced to coarse device data for privacy.
type PageView struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	Device    string    `json:"device"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
