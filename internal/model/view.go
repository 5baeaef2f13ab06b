package model

import "time"

// RoomView is the client-safe serialization of a room. Server-only fields
// (correct answers before reveal, connection handles, pending throws) are
// stripped; ServerTime lets clients correct for clock skew against TimerEnd.
type RoomView struct {
	Code       string                `json:"code"`
	HostID     string                `json:"hostId"`
	Players    map[string]PlayerView `json:"players"`
	Settings   Settings              `json:"settings"`
	Game       *GameView             `json:"game"`
	ServerTime time.Time             `json:"serverTime"`
}

// PlayerView is the client-safe projection of a player.
type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	Score     int    `json:"score"`
	IsHost    bool   `json:"isHost"`
	IsBot     bool   `json:"isBot"`
	Connected bool   `json:"connected"`
	Streak    int    `json:"streak"`
	Answered  bool   `json:"answered"`
}

// QuestionView is a question as clients may see it. CorrectIdx and Target are
// only populated once the answer has been revealed.
type QuestionView struct {
	ID         string       `json:"id"`
	CategoryID string       `json:"categoryId"`
	Kind       QuestionKind `json:"kind"`
	Text       string       `json:"text"`
	Options    []string     `json:"options,omitempty"`
	Unit       string       `json:"unit,omitempty"`

	CorrectIdx *int     `json:"correctIdx,omitempty"`
	Target     *float64 `json:"target,omitempty"`
}

// BuzzerView exposes only the revealed prefix of the live buzzer question.
type BuzzerView struct {
	QIdx         int               `json:"qIdx"`
	Total        int               `json:"total"`
	RevealedText string            `json:"revealedText"`
	BuzzedBy     string            `json:"buzzedBy,omitempty"`
	Attempted    map[string]bool   `json:"attempted"`
	Solved       map[string]string `json:"solved"`
}

// CollectiveView hides the unfound items of the topic; only the title, the
// pool size and what has already been named are visible.
type CollectiveView struct {
	TopicID    string                  `json:"topicId"`
	Title      string                  `json:"title"`
	ItemCount  int                     `json:"itemCount"`
	Found      map[string]string       `json:"found"`
	TurnOrder  []string                `json:"turnOrder"`
	TurnIdx    int                     `json:"turnIdx"`
	Eliminated map[string]*Elimination `json:"eliminated"`
}

// BonusView is the client-safe projection of the bonus sub-state.
type BonusView struct {
	Kind       BonusKind       `json:"kind"`
	Collective *CollectiveView `json:"collective,omitempty"`
	Buzzer     *BuzzerView     `json:"buzzer,omitempty"`
}

// GameView is the client-safe projection of a GameState.
type GameView struct {
	Phase       Phase              `json:"phase"`
	Round       int                `json:"round"`
	QuestionIdx int                `json:"questionIdx"`
	CategoryID  string             `json:"categoryId,omitempty"`
	TimerEnd    *time.Time         `json:"timerEnd,omitempty"`
	Question    *QuestionView      `json:"question,omitempty"`
	Selection   *CategorySelection `json:"selection,omitempty"`
	Bonus       *BonusView         `json:"bonus,omitempty"`
}
