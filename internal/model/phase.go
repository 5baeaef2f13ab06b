package model

// Phase is the room's current stage in the match state machine. Exactly one
// phase is active per room at any instant.
type Phase string

const (
	PhaseLobby Phase = "lobby"

	// Category selection. PhaseCategoryPick is shared by loser's-pick and by
	// dice/duel winners exercising their pick rights.
	PhaseCategoryVote Phase = "category_vote"
	PhaseWheel        Phase = "wheel"
	PhaseCategoryPick Phase = "category_pick"
	PhaseDice         Phase = "dice"
	PhaseRPS          Phase = "rps"

	// Rounds
	PhaseQuestion         Phase = "question"
	PhaseEstimation       Phase = "estimation"
	PhaseRevealing        Phase = "revealing"
	PhaseEstimationReveal Phase = "estimation_reveal"
	PhaseScoreboard       Phase = "scoreboard"

	// Bonus rounds
	PhaseBonusAnnounce   Phase = "bonus_announce"
	PhaseBonusCollective Phase = "bonus_collective"
	PhaseBonusBuzzer     Phase = "bonus_buzzer"
	PhaseBonusResult     Phase = "bonus_result"

	PhaseFinal Phase = "final"
)

// SelectionMode identifies one of the category-selection mini-games.
type SelectionMode string

const (
	ModeVote      SelectionMode = "vote"
	ModeWheel     SelectionMode = "wheel"
	ModeLoserPick SelectionMode = "loser_pick"
	ModeDice      SelectionMode = "dice"
	ModeRPS       SelectionMode = "rps"
)

// SelectionPhase maps a selection mode to the phase it runs in.
func (m SelectionMode) SelectionPhase() Phase {
	switch m {
	case ModeVote:
		return PhaseCategoryVote
	case ModeWheel:
		return PhaseWheel
	case ModeLoserPick:
		return PhaseCategoryPick
	case ModeDice:
		return PhaseDice
	case ModeRPS:
		return PhaseRPS
	}
	return PhaseLobby
}

// RPSThrow is a rock-paper-scissors throw.
type RPSThrow string

const (
	ThrowRock     RPSThrow = "rock"
	ThrowPaper    RPSThrow = "paper"
	ThrowScissors RPSThrow = "scissors"
)

// Beats reports whether t wins against other.
func (t RPSThrow) Beats(other RPSThrow) bool {
	switch t {
	case ThrowRock:
		return other == ThrowScissors
	case ThrowPaper:
		return other == ThrowRock
	case ThrowScissors:
		return other == ThrowPaper
	}
	return false
}
