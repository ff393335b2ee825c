package model

import "time"

// Subscriber is a newsletter signup. Email is unique; Token identifies the
// subscription in unsubscribe links without exposing the row ID.
type Subscriber struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	Consented bool      `json:"consented"`
	CreatedAt time.Time `json:"created_at"`
}

// Contribution is a reader pitch submitted through the Contribute form.
type Contribution struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Topic     string    `json:"topic"`
	Pitch     string    `json:"pitch"`
	CreatedAt time.Time `json:"created_at"`
}
