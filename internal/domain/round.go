package domain

import (
	"time"

	"github.com/google/uuid"
)

// Round is one played "AI vs you" round
type Round struct {
	ID               uuid.UUID `json:"id"`
	PredictedKey     string    `json:"predicted_key,omitempty"`
	PredictedDisplay string    `json:"predicted_display,omitempty"`
	GuessKey         string    `json:"guess_key,omitempty"`
	GuessDisplay     string    `json:"guess_display,omitempty"`
	Confidence       float64   `json:"confidence"`
	Matched          bool      `json:"matched"`
	Correct          *bool     `json:"correct,omitempty"` // nil when no guess was made
	Verdict          string    `json:"verdict"`
	Backend          string    `json:"backend"`
	LatencyMs        int64     `json:"latency_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// Guessed reports whether the player submitted a guess
func (r *Round) Guessed() bool {
	return r.Correct != nil
}

// MemberCount is the number of rounds the AI attributed to one member
type MemberCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// Scoreboard aggregates the round history
type Scoreboard struct {
	TotalRounds   int64         `json:"total_rounds"`
	MatchedRounds int64         `json:"matched_rounds"`
	GuessedRounds int64         `json:"guessed_rounds"`
	Agreements    int64         `json:"agreements"`
	PerMember     []MemberCount `json:"per_member"`
}

// AgreementRate is agreements over guessed rounds, 0 when nobody guessed
func (s *Scoreboard) AgreementRate() float64 {
	if s.GuessedRounds == 0 {
		return 0
	}
	return float64(s.Agreements) / float64(s.GuessedRounds)
}
