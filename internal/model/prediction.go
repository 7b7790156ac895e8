package model

import "time"

// Prediction result states. A record is created pending and moves exactly once
// to green or red; it is never deleted.
const (
	ResultPending = "pending"
	ResultGreen   = "green"
	ResultRed     = "red"
)

// PredictionRecord is one tip that was actually delivered to the VIP channel.
// Records are only written after the message went out, so the history never
// contains tips nobody saw.
type PredictionRecord struct {
	ID           int64     `json:"id"`
	FixtureID    int64     `json:"fixture_id"`
	Championship string    `json:"championship"`
	TeamA        string    `json:"team_a"`
	TeamB        string    `json:"team_b"`
	MatchTime    string    `json:"match_time"`
	Analysis     string    `json:"analysis"`
	Prediction   string    `json:"prediction"`
	Confidence   float64   `json:"confidence"`
	SuggestedOdd float64   `json:"suggested_odd"`
	Market       string    `json:"market"`
	Result       string    `json:"result"`
	SentDate     time.Time `json:"sent_date"`
}

// PredictionStats are all-time counters used by the admin stats command.
type PredictionStats struct {
	Total   int
	Greens  int
	Reds    int
	Pending int
}

// WinRate returns the green percentage over resolved predictions.
func (s PredictionStats) WinRate() float64 {
	resolved := s.Greens + s.Reds
	if resolved == 0 {
		return 0
	}
	return float64(s.Greens) / float64(resolved) * 100
}
