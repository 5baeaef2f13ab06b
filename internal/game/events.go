package game

import "github.com/Fizzyy89/nerdquiz-next-sub000/internal/model"

// Outbound event types. Every successful mutation additionally broadcasts a
// full EvtRoomState snapshot.
const (
	EvtRoomState    = "room_state"
	EvtPhaseChanged = "phase_changed"
	EvtPlayerJoined = "player_joined"
	EvtPlayerLeft   = "player_left"
	EvtRoomClosed   = "room_closed"

	EvtVoteCast         = "vote_cast"
	EvtVoteTiebreak     = "vote_tiebreak"
	EvtWheelSpun        = "wheel_spun"
	EvtPickerChosen     = "picker_chosen"
	EvtDiceRolled       = "dice_rolled"
	EvtDiceReroll       = "dice_reroll"
	EvtDuelStarted      = "duel_started"
	EvtDuelRoundResult  = "duel_round_result"
	EvtCategorySelected = "category_selected"
	EvtCategoryFallback = "category_fallback"

	EvtReveal        = "reveal"
	EvtScoreboard    = "scoreboard"
	EvtBonusAnnounce = "bonus_announced"
	EvtBonusTurn     = "bonus_turn"
	EvtBonusGuess    = "bonus_guess"
	EvtBonusKnockout = "bonus_knockout"
	EvtBonusResult   = "bonus_result"
	EvtBuzz          = "buzz"
	EvtBuzzerTick    = "buzzer_tick"
	EvtBuzzerResult  = "buzzer_result"

	EvtMatchSummary  = "match_summary"
	EvtRematchUpdate = "rematch_update"
)

// PhaseChangedPayload announces a phase transition.
type PhaseChangedPayload struct {
	Phase model.Phase `json:"phase"`
}

// VoteCastPayload reports the running tally after a vote.
type VoteCastPayload struct {
	PlayerID string         `json:"playerId"`
	Tally    map[string]int `json:"tally"`
}

// TiebreakPayload is emitted before the final pick when a vote ends tied.
type TiebreakPayload struct {
	Tied   []string `json:"tied"`
	Winner string   `json:"winner"`
}

// WheelSpunPayload carries the pre-committed landing position so the client
// animation is deterministic.
type WheelSpunPayload struct {
	Segments []model.Category `json:"segments"`
	Index    int              `json:"index"`
}

// PickerChosenPayload grants pick rights to one player.
type PickerChosenPayload struct {
	PlayerID string              `json:"playerId"`
	Reason   model.SelectionMode `json:"reason"`
	Options  []model.Category    `json:"options"`
}

// DiceRolledPayload reports one player's roll.
type DiceRolledPayload struct {
	PlayerID string `json:"playerId"`
	Dice     [2]int `json:"dice"`
	Sum      int    `json:"sum"`
}

// DiceRerollPayload restricts the next roll to the tied leaders.
type DiceRerollPayload struct {
	Tied   []string `json:"tied"`
	Reroll int      `json:"reroll"`
}

// DuelStartedPayload announces the two duelists.
type DuelStartedPayload struct {
	PlayerA string `json:"playerA"`
	PlayerB string `json:"playerB"`
}

// DuelRoundResultPayload reports one resolved RPS round.
type DuelRoundResultPayload struct {
	Round    int                       `json:"round"`
	Throws   map[string]model.RPSThrow `json:"throws"`
	WinnerID string                    `json:"winnerId,omitempty"` // empty on a drawn round
	WinsA    int                       `json:"winsA"`
	WinsB    int                       `json:"winsB"`
	Final    bool                      `json:"final"`
}

// CategorySelectedPayload announces the next round's category.
type CategorySelectedPayload struct {
	Category model.Category      `json:"category"`
	Mode     model.SelectionMode `json:"mode"`
}

// PlayerResult is one player's outcome for a revealed question.
type PlayerResult struct {
	PlayerID    string   `json:"playerId"`
	Answered    bool     `json:"answered"`
	Correct     bool     `json:"correct,omitempty"`
	ChoiceIdx   *int     `json:"choiceIdx,omitempty"`
	Estimate    *float64 `json:"estimate,omitempty"`
	Points      int      `json:"points"`
	Streak      int      `json:"streak"`
	AnswerOrder int      `json:"answerOrder"`    // 1-based by latency; non-answerers last
	Rank        int      `json:"rank,omitempty"` // estimation closeness rank
}

// RevealPayload carries the resolved question and per-player results.
type RevealPayload struct {
	Question model.Question `json:"question"`
	Results  []PlayerResult `json:"results"`
}

// StandingsEntry is one scoreboard row.
type StandingsEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

// KnockoutPayload reports a collective-round elimination.
type KnockoutPayload struct {
	PlayerID string                  `json:"playerId"`
	Reason   model.EliminationReason `json:"reason"`
	Rank     int                     `json:"rank"`
}

// BonusGuessPayload reports an accepted collective-round item.
type BonusGuessPayload struct {
	PlayerID string `json:"playerId"`
	Item     string `json:"item"`
	Points   int    `json:"points"`
}

// BonusResultPayload closes a bonus round.
type BonusResultPayload struct {
	Kind      model.BonusKind  `json:"kind"`
	Winners   []string         `json:"winners,omitempty"`
	Bonus     int              `json:"bonus,omitempty"`
	Standings []StandingsEntry `json:"standings"`
}

// BuzzerTickPayload reports one more revealed character of the live buzzer
// question.
type BuzzerTickPayload struct {
	QIdx     int `json:"qIdx"`
	Revealed int `json:"revealed"`
}

// BuzzerResultPayload reports one resolved buzzer question.
type BuzzerResultPayload struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
	WinnerID   string `json:"winnerId,omitempty"`
	Points     int    `json:"points,omitempty"`
}

// MatchSummaryPayload is the terminal match report.
type MatchSummaryPayload struct {
	Rankings         []StandingsEntry `json:"rankings"`
	BestEstimator    string           `json:"bestEstimator,omitempty"`
	FastestResponder string           `json:"fastestResponder,omitempty"`
	BestCategory     string           `json:"bestCategory,omitempty"`
	WorstCategory    string           `json:"worstCategory,omitempty"`
}

// RematchUpdatePayload reports the running rematch vote.
type RematchUpdatePayload struct {
	Votes map[string]bool `json:"votes"`
}
