package store

import (
	"context"
	"time"

	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
)

// CreateSubscriberParams holds the fields for CreateSubscriber.
type CreateSubscriberParams struct {
	Email     string
	Token     string
	Consented bool
}

// CreateSubscriber inserts a newsletter signup and returns its ID.
func (q *Queries) CreateSubscriber(ctx context.Context, p CreateSubscriberParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO newsletter_subscribers (email, token, consented, created_at)
		 VALUES (?, ?, ?, ?)`,
		p.Email, p.Token, p.Consented, time.Now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetSubscriberByEmail fetches a subscriber by email.
func (q *Queries) GetSubscriberByEmail(ctx context.Context, email string) (model.Subscriber, error) {
	var s model.Subscriber
	err := q.db.QueryRowContext(ctx,
		`SELECT id, email, token, consented, created_at
		 FROM newsletter_subscribers WHERE email = ?`, email).
		Scan(&s.ID, &s.Email, &s.Token, &s.Consented, &s.CreatedAt)
	return s, err
}

// ListSubscribers returns all subscribers newest first.
func (q *Queries) ListSubscribers(ctx context.Context) ([]model.Subscriber, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, email, token, consented, created_at
		 FROM newsletter_subscribers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var subs []model.Subscriber
	for rows.Next() {
		var s model.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.Token, &s.Consented, &s.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// DeleteSubscriberByToken removes a subscription via its unsubscribe token.
// Returns the number of rows removed (0 when the token is unknown).
func (q *Queries) DeleteSubscriberByToken(ctx context.Context, token string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM newsletter_subscribers WHERE token = ?`, token)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteSubscriber removes a subscription by ID.
func (q *Queries) DeleteSubscriber(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM newsletter_subscribers WHERE id = ?`, id)
	return err
}

// CountSubscribers returns the total number of subscribers.
func (q *Queries) CountSubscribers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM newsletter_subscribers`).Scan(&n)
	return n, err
}

// CreateContributionParams holds the fields for CreateContribution.
type CreateContributionParams struct {
	Name  string
	Email string
	Topic string
	Pitch string
}

// CreateContribution stores a reader pitch and returns its ID.
func (q *Queries) CreateContribution(ctx context.Context, p CreateContributionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO contributions (name, email, topic, pitch, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.Email, p.Topic, p.Pitch, time.Now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListContributions returns all pitches newest first.
func (q *Queries) ListContributions(ctx context.Context) ([]model.Contribution, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, email, topic, pitch, created_at
		 FROM contributions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var pitches []model.Contribution
	for rows.Next() {
		var c model.Contribution
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Topic, &c.Pitch, &c.CreatedAt); err != nil {
			return nil, err
		}
		pitches = append(pitches, c)
	}
	return pitches, rows.Err()
}
