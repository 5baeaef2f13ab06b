package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBeats(t *testing.T) {
	assert.True(t, ThrowRock.Beats(ThrowScissors))
	assert.True(t, ThrowPaper.Beats(ThrowRock))
	assert.True(t, ThrowScissors.Beats(ThrowPaper))

	assert.False(t, ThrowRock.Beats(ThrowRock))
	assert.False(t, ThrowRock.Beats(ThrowPaper))
	assert.False(t, RPSThrow("lizard").Beats(ThrowRock))
}

func TestSelectionPhase(t *testing.T) {
	assert.Equal(t, PhaseCategoryVote, ModeVote.SelectionPhase())
	assert.Equal(t, PhaseWheel, ModeWheel.SelectionPhase())
	assert.Equal(t, PhaseCategoryPick, ModeLoserPick.SelectionPhase())
	assert.Equal(t, PhaseDice, ModeDice.SelectionPhase())
	assert.Equal(t, PhaseRPS, ModeRPS.SelectionPhase())
}

func TestCollectiveActiveCount(t *testing.T) {
	c := &CollectiveState{
		TurnOrder:  []string{"a", "b", "c"},
		Eliminated: map[string]*Elimination{"b": {Reason: EliminatedPass, Rank: 3}},
	}
	assert.Equal(t, 2, c.ActiveCount())
}

func TestBuzzerCurrent(t *testing.T) {
	b := &BuzzerState{Questions: []BuzzerQuestion{{ID: "q1"}, {ID: "q2"}}}
	assert.Equal(t, "q1", b.Current().ID)
	b.QIdx = 2
	assert.Nil(t, b.Current())
}

func TestBumpTimerClearsDeadline(t *testing.T) {
	g := NewGameState()
	g.SetDeadline(time.Now().Add(time.Minute))
	assert.NotNil(t, g.TimerEnd)

	gen := g.TimerGen
	got := g.BumpTimer()
	assert.Equal(t, gen+1, got)
	assert.Nil(t, g.TimerEnd)
}
