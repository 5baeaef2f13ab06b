package registry

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/common/clock"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/model"
)

func newTestRegistry() *Registry {
	return New(&clock.FixedClock{T: time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)})
}

func TestCreate(t *testing.T) {
	r := newTestRegistry()

	room, host, err := r.Create("Alice", "🦊")
	require.NoError(t, err)

	assert.Len(t, room.Code, 4)
	for _, c := range room.Code {
		assert.Contains(t, "ABCDEFGHJKLMNPQRSTUVWXYZ23456789", string(c))
	}

	assert.Equal(t, host.ID, room.HostID)
	assert.True(t, host.IsHost)
	assert.True(t, host.Connected)
	assert.Equal(t, model.PhaseLobby, room.Game.Phase)
	assert.Equal(t, 1, r.Count())
}

func TestCreateRequiresName(t *testing.T) {
	r := newTestRegistry()
	_, _, err := r.Create("", "")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestGetAndDelete(t *testing.T) {
	r := newTestRegistry()
	room, _, err := r.Create("Alice", "")
	require.NoError(t, err)

	got, err := r.Get(room.Code)
	require.NoError(t, err)
	assert.Same(t, room, got)

	_, err = r.Get("ZZZZ")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	r.Delete(room.Code)
	_, err = r.Get(room.Code)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Equal(t, 0, r.Count())
}

func TestCodesAreUnique(t *testing.T) {
	r := newTestRegistry()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		room, _, err := r.Create("Host", "")
		require.NoError(t, err)
		assert.False(t, seen[room.Code], "duplicate code %s", room.Code)
		seen[room.Code] = true
	}
}

func TestSnapshotHidesAnswersBeforeReveal(t *testing.T) {
	r := newTestRegistry()
	room, _, err := r.Create("Alice", "")
	require.NoError(t, err)

	room.Game.Questions = []model.Question{{
		ID:         "q1",
		CategoryID: "science",
		Kind:       model.QuestionChoice,
		Text:       "Pick one",
		Options:    []string{"a", "b", "c", "d"},
		CorrectIdx: 2,
	}}
	room.Game.Phase = model.PhaseQuestion

	view := r.Snapshot(room)
	require.NotNil(t, view.Game.Question)
	assert.Nil(t, view.Game.Question.CorrectIdx)

	room.Game.Phase = model.PhaseRevealing
	view = r.Snapshot(room)
	require.NotNil(t, view.Game.Question.CorrectIdx)
	assert.Equal(t, 2, *view.Game.Question.CorrectIdx)
}

func TestSnapshotHidesEstimationTarget(t *testing.T) {
	r := newTestRegistry()
	room, _, err := r.Create("Alice", "")
	require.NoError(t, err)

	room.Game.Questions = []model.Question{{
		ID:     "q1",
		Kind:   model.QuestionEstimation,
		Text:   "How many?",
		Target: 42,
	}}
	room.Game.Phase = model.PhaseEstimation

	view := r.Snapshot(room)
	require.NotNil(t, view.Game.Question)
	assert.Nil(t, view.Game.Question.Target)

	room.Game.Phase = model.PhaseEstimationReveal
	view = r.Snapshot(room)
	require.NotNil(t, view.Game.Question.Target)
	assert.Equal(t, 42.0, *view.Game.Question.Target)
}

func TestSnapshotHidesUnfoundTopicItems(t *testing.T) {
	r := newTestRegistry()
	room, _, err := r.Create("Alice", "")
	require.NoError(t, err)

	room.Game.Phase = model.PhaseBonusCollective
	room.Game.Bonus = &model.BonusState{
		Kind: model.BonusCollective,
		Collective: &model.CollectiveState{
			Topic: &model.Topic{
				ID:    "topic-1",
				Title: "Things",
				Items: []model.TopicItem{{Name: "Secret"}, {Name: "Known"}},
			},
			Found:      map[string]string{"Known": room.HostID},
			Eliminated: make(map[string]*model.Elimination),
		},
	}

	view := r.Snapshot(room)
	require.NotNil(t, view.Game.Bonus)
	c := view.Game.Bonus.Collective
	require.NotNil(t, c)
	assert.Equal(t, 2, c.ItemCount)
	assert.Contains(t, c.Found, "Known")

	// The serialized view must never mention the unfound item.
	for name := range c.Found {
		assert.NotEqual(t, "Secret", name)
	}
}

func TestSnapshotBuzzerRevealsPrefixOnly(t *testing.T) {
	r := newTestRegistry()
	room, _, err := r.Create("Alice", "")
	require.NoError(t, err)

	room.Game.Phase = model.PhaseBonusBuzzer
	room.Game.Bonus = &model.BonusState{
		Kind: model.BonusBuzzer,
		Buzzer: &model.BuzzerState{
			Questions: []model.BuzzerQuestion{{ID: "b1", Text: "Hello world", Answer: "hi"}},
			Revealed:  5,
			Attempted: make(map[string]bool),
			Solved:    make(map[string]string),
		},
	}

	view := r.Snapshot(room)
	require.NotNil(t, view.Game.Bonus.Buzzer)
	assert.Equal(t, "Hello", view.Game.Bonus.Buzzer.RevealedText)
	assert.False(t, strings.Contains(view.Game.Bonus.Buzzer.RevealedText, "world"))
}
