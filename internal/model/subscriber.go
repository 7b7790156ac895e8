package model

import "time"

// Subscriber status values.
const (
	StatusActive  = "active"
	StatusExpired = "expired"
)

// Subscriber is a paying member of the VIP channel. There is at most one row
// per Telegram user; renewing overwrites the previous period.
type Subscriber struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Plan      string    `json:"plan"`
	Status    string    `json:"status"`
}

// Active reports whether the subscription is active at the given instant.
func (s *Subscriber) Active(now time.Time) bool {
	return s.Status == StatusActive && now.Before(s.EndDate)
}

// Plan describes a purchasable subscription plan.
type Plan struct {
	Key          string  `json:"key"`
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	DurationDays int     `json:"duration_days"`
}
