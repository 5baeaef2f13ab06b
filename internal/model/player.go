package model

import "time"

// Player represents a participant in a room. Players exist only inside their
// room; there is no global player table.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Score     int       `json:"score"`
	IsHost    bool      `json:"isHost"`
	IsBot     bool      `json:"isBot"`
	Connected bool      `json:"connected"`
	Streak    int       `json:"streak"`
	JoinedAt  time.Time `json:"joinedAt"`

	// Per-question answer slots. At most one of ChoiceIdx/Estimate is
	// non-nil for a live question; both are cleared on phase entry.
	ChoiceIdx *int     `json:"-"`
	Estimate  *float64 `json:"-"`
	LatencyMS *int64   `json:"-"`
}

// HasAnswered reports whether the player submitted any answer for the live
// question.
func (p *Player) HasAnswered() bool {
	return p.ChoiceIdx != nil || p.Estimate != nil
}

// ClearAnswer resets the per-question answer slots.
func (p *Player) ClearAnswer() {
	p.ChoiceIdx = nil
	p.Estimate = nil
	p.LatencyMS = nil
}
