package model

// PlayerStats accumulates one player's per-match aggregates.
type PlayerStats struct {
	Answered       int     `json:"answered"`
	Correct        int     `json:"correct"`
	TotalLatencyMS int64   `json:"totalLatencyMs"`
	Estimations    int     `json:"estimations"`
	DeviationSum   float64 `json:"deviationSum"` // sum of |guess-target|/|target|
}

// CategoryStats accumulates per-category accuracy across all players.
type CategoryStats struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// MatchStats holds the per-match aggregates shown on the final screen.
type MatchStats struct {
	Players    map[string]*PlayerStats   `json:"players"`
	Categories map[string]*CategoryStats `json:"categories"`
}

// NewMatchStats returns empty aggregates.
func NewMatchStats() *MatchStats {
	return &MatchStats{
		Players:    make(map[string]*PlayerStats),
		Categories: make(map[string]*CategoryStats),
	}
}

// PlayerFor returns the stats bucket for a player, creating it on first use.
func (m *MatchStats) PlayerFor(id string) *PlayerStats {
	if s, ok := m.Players[id]; ok {
		return s
	}
	s := &PlayerStats{}
	m.Players[id] = s
	return s
}

// CategoryFor returns the stats bucket for a category, creating it on first use.
func (m *MatchStats) CategoryFor(id string) *CategoryStats {
	if s, ok := m.Categories[id]; ok {
		return s
	}
	s := &CategoryStats{}
	m.Categories[id] = s
	return s
}
