package model

import (
	"sync"
	"time"
)

// Settings are the host-tunable match parameters.
type Settings struct {
	Rounds             int      `json:"rounds"`
	QuestionsPerRound  int      `json:"questionsPerRound"`
	SecondsPerQuestion int      `json:"secondsPerQuestion"`
	BonusProbability   float64  `json:"bonusProbability"`
	CustomRounds       []string `json:"customRounds,omitempty"` // fixed category order, optional
}

// DefaultSettings returns the settings a fresh room starts with.
func DefaultSettings() Settings {
	return Settings{
		Rounds:             5,
		QuestionsPerRound:  3,
		SecondsPerQuestion: 20,
		BonusProbability:   0.25,
	}
}

// Room is one isolated match instance identified by a short code. A room owns
// its players and exactly one GameState; nothing is shared across rooms.
//
// The embedded mutex guards all player and game-state mutation. Action
// handlers and timer callbacks lock the room for the full mutate+snapshot
// critical section and broadcast after unlocking.
type Room struct {
	sync.Mutex

	Code      string
	HostID    string
	Players   map[string]*Player
	Settings  Settings
	Game      *GameState
	CreatedAt time.Time

	// Closed is set when the room has been torn down; late timer callbacks
	// check it and abort.
	Closed bool
}

// ConnectedPlayers returns all players currently marked connected.
func (r *Room) ConnectedPlayers() []*Player {
	out := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Connected {
			out = append(out, p)
		}
	}
	return out
}

// ConnectedHumans counts connected non-bot players.
func (r *Room) ConnectedHumans() int {
	n := 0
	for _, p := range r.Players {
		if p.Connected && !p.IsBot {
			n++
		}
	}
	return n
}

// GameState is the single authoritative state of a room's match. Exactly one
// phase is active at a time; TimerEnd is non-nil iff the phase is time-bound.
type GameState struct {
	Phase       Phase
	Round       int // 1-based, 0 while in lobby
	QuestionIdx int // 0-based within the round
	Questions   []Question
	CategoryID  string
	Selection   *CategorySelection
	Bonus       *BonusState

	// TimerGen is bumped on every phase transition. Timer callbacks capture
	// the value at schedule time and abort when it no longer matches, which
	// is the sole guard against a timeout racing a manual completion.
	TimerGen uint64
	TimerEnd *time.Time

	// QuestionStart anchors answer-latency measurement for the live question.
	QuestionStart time.Time

	Stats *MatchStats

	UsedQuestionIDs []string
	UsedTopicIDs    []string
	UsedBuzzerIDs   []string
	UsedBonusKinds  []BonusKind

	LastLoserPickRound int           // round loser's-pick last ran, 0 if never
	ForcedMode         SelectionMode // one-shot dev override, cleared on use
	BonusForcedFinal   bool          // inject a bonus round on the final round

	RematchVotes map[string]bool
}

// NewGameState returns a lobby-phase state.
func NewGameState() *GameState {
	return &GameState{
		Phase: PhaseLobby,
		Stats: NewMatchStats(),
	}
}

// BumpTimer invalidates any outstanding timer callback and returns the new
// generation to capture for the next one.
func (g *GameState) BumpTimer() uint64 {
	g.TimerGen++
	g.TimerEnd = nil
	return g.TimerGen
}

// SetDeadline records the absolute deadline governing the current phase.
func (g *GameState) SetDeadline(t time.Time) {
	g.TimerEnd = &t
}

// CategorySelection is the transient sub-state of a category-selection
// mini-game. It lives only between rounds.
type CategorySelection struct {
	Mode    SelectionMode     `json:"mode"`
	Options []Category        `json:"options"`
	Votes   map[string]string `json:"votes,omitempty"` // playerID -> categoryID

	// Wheel: index into Segments pre-committed at spin start.
	Segments   []Category `json:"segments,omitempty"`
	WheelIndex int        `json:"wheelIndex"`

	// Loser's pick
	PickerID string `json:"pickerId,omitempty"`

	Dice *DiceTournament `json:"dice,omitempty"`
	Duel *RPSDuel        `json:"duel,omitempty"`
}

// DiceTournament tracks a multi-player highest-sum dice tournament. Eligible
// shrinks to the tied leaders on each reroll.
type DiceTournament struct {
	Eligible map[string]bool   `json:"eligible"`
	Rolls    map[string][2]int `json:"rolls"`
	Reroll   int               `json:"reroll"` // 0 for the opening roll
}

// RPSDuel is a best-of-three rock-paper-scissors duel between two players.
type RPSDuel struct {
	PlayerA string              `json:"playerA"`
	PlayerB string              `json:"playerB"`
	Round   int                 `json:"round"` // 1-based
	Throws  map[string]RPSThrow `json:"-"`     // current round, hidden until resolved
	WinsA   int                 `json:"winsA"`
	WinsB   int                 `json:"winsB"`
}

// BonusKind tags the bonus-round variant.
type BonusKind string

const (
	BonusCollective BonusKind = "collective"
	BonusBuzzer     BonusKind = "buzzer"
)

// BonusState is a tagged union: exactly the variant matching Kind is non-nil.
type BonusState struct {
	Kind       BonusKind        `json:"kind"`
	Collective *CollectiveState `json:"collective,omitempty"`
	Buzzer     *BuzzerState     `json:"buzzer,omitempty"`
}

// EliminationReason explains why a player left a collective bonus round.
type EliminationReason string

const (
	EliminatedWrongGuess EliminationReason = "wrong_guess"
	EliminatedRepeat     EliminationReason = "repeat"
	EliminatedPass       EliminationReason = "pass"
	EliminatedTimeout    EliminationReason = "timeout"
)

// Elimination records a collective-round knockout.
type Elimination struct {
	Reason EliminationReason `json:"reason"`
	Rank   int               `json:"rank"` // descending: first out gets the worst rank
}

// CollectiveState drives the collective-elimination bonus round.
type CollectiveState struct {
	Topic      *Topic                  `json:"topic"`
	Found      map[string]string       `json:"found"` // canonical item name -> finder playerID
	TurnOrder  []string                `json:"turnOrder"`
	TurnIdx    int                     `json:"turnIdx"`
	Eliminated map[string]*Elimination `json:"eliminated"`
}

// ActiveCount returns how many players are still in the collective round.
func (c *CollectiveState) ActiveCount() int {
	n := 0
	for _, id := range c.TurnOrder {
		if _, out := c.Eliminated[id]; !out {
			n++
		}
	}
	return n
}

// BuzzerState drives the speed-buzzer bonus round.
type BuzzerState struct {
	Questions []BuzzerQuestion  `json:"-"`
	QIdx      int               `json:"qIdx"`
	Revealed  int               `json:"revealed"` // characters shown so far
	BuzzedBy  string            `json:"buzzedBy,omitempty"`
	Attempted map[string]bool   `json:"attempted"` // players locked out of the current question
	Solved    map[string]string `json:"solved"`    // questionID -> winner playerID
}

// Current returns the live buzzer question, or nil when exhausted.
func (b *BuzzerState) Current() *BuzzerQuestion {
	if b.QIdx < 0 || b.QIdx >= len(b.Questions) {
		return nil
	}
	return &b.Questions[b.QIdx]
}
