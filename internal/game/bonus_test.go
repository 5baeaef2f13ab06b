package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/model"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/scoring"
)

func planetsTopic() *model.Topic {
	return &model.Topic{
		ID:    "topic-planets",
		Title: "Planets of the solar system",
		Items: []model.TopicItem{
			{Name: "Mercury"}, {Name: "Venus"}, {Name: "Earth"}, {Name: "Mars"},
			{Name: "Jupiter"}, {Name: "Saturn"}, {Name: "Uranus"}, {Name: "Neptune"},
		},
	}
}

// startCollective drops a room straight into a live collective round with a
// known topic, bypassing the random bonus draw.
func startCollective(t *testing.T, svc *Service, code string, topic *model.Topic) {
	t.Helper()
	r := room(t, svc, code)
	r.Lock()
	defer r.Unlock()
	r.Game.Bonus = &model.BonusState{
		Kind: model.BonusCollective,
		Collective: &model.CollectiveState{
			Topic:      topic,
			Found:      make(map[string]string),
			Eliminated: make(map[string]*model.Elimination),
		},
	}
	ev := &events{}
	svc.beginCollective(r, ev)
}

func startBuzzerRound(t *testing.T, svc *Service, code string, questions []model.BuzzerQuestion) {
	t.Helper()
	r := room(t, svc, code)
	r.Lock()
	defer r.Unlock()
	r.Game.Bonus = &model.BonusState{
		Kind: model.BonusBuzzer,
		Buzzer: &model.BuzzerState{
			Questions: questions,
			Attempted: make(map[string]bool),
			Solved:    make(map[string]string),
		},
	}
	ev := &events{}
	svc.beginBuzzer(r, ev)
}

func TestCollectiveKnockouts(t *testing.T) {
	svc, rec := newTestService(t, 6)
	code, _, ids := setupRoom(t, svc, 3)
	startCollective(t, svc, code, planetsTopic())
	require.Equal(t, model.PhaseBonusCollective, phase(t, svc, code))

	r := room(t, svc, code)
	r.Lock()
	c := r.Game.Bonus.Collective
	// All scores equal, so the turn order follows join order.
	assert.Equal(t, ids, c.TurnOrder)
	r.Unlock()

	// Correct new item: scores and passes the turn, notifying the next
	// player directly.
	require.NoError(t, svc.SubmitBonusGuess(code, ids[0], "Mercury"))
	r.Lock()
	assert.Equal(t, scoring.CollectiveItemPoints, r.Players[ids[0]].Score)
	assert.Equal(t, ids[1], c.TurnOrder[c.TurnIdx])
	r.Unlock()
	assert.Equal(t, ids[1], rec.lastTarget(EvtBonusTurn))

	// Naming an already-found item eliminates, even via fuzzy match.
	require.NoError(t, svc.SubmitBonusGuess(code, ids[1], "mercury"))
	r.Lock()
	require.Contains(t, c.Eliminated, ids[1])
	assert.Equal(t, model.EliminatedRepeat, c.Eliminated[ids[1]].Reason)
	assert.Equal(t, 3, c.Eliminated[ids[1]].Rank, "first knockout takes the worst rank")
	assert.Zero(t, r.Players[ids[1]].Score)
	assert.Len(t, c.Found, 1, "a repeat must not re-credit the item")
	r.Unlock()

	// Wrong guess knocks out the last challenger; the sole survivor wins.
	require.NoError(t, svc.SubmitBonusGuess(code, ids[2], "banana"))
	r.Lock()
	assert.Equal(t, model.EliminatedWrongGuess, c.Eliminated[ids[2]].Reason)
	assert.Equal(t, 2, c.Eliminated[ids[2]].Rank)
	assert.Equal(t, scoring.CollectiveItemPoints+scoring.CollectiveSoleSurvivorBonus,
		r.Players[ids[0]].Score)
	r.Unlock()

	assert.Equal(t, model.PhaseBonusResult, phase(t, svc, code))
	assert.Equal(t, 2, rec.count(EvtBonusKnockout))
	assert.Equal(t, 1, rec.count(EvtBonusResult))
}

func TestCollectiveOutOfTurnIgnored(t *testing.T) {
	svc, _ := newTestService(t, 6)
	code, _, ids := setupRoom(t, svc, 3)
	startCollective(t, svc, code, planetsTopic())

	// ids[0] is up; a guess from ids[2] is silently dropped.
	require.NoError(t, svc.SubmitBonusGuess(code, ids[2], "Venus"))

	r := room(t, svc, code)
	r.Lock()
	assert.Empty(t, r.Game.Bonus.Collective.Found)
	assert.Zero(t, r.Players[ids[2]].Score)
	r.Unlock()
}

func TestCollectiveSkipEliminates(t *testing.T) {
	svc, _ := newTestService(t, 6)
	code, _, ids := setupRoom(t, svc, 3)
	startCollective(t, svc, code, planetsTopic())

	require.NoError(t, svc.SkipBonus(code, ids[0]))

	r := room(t, svc, code)
	r.Lock()
	c := r.Game.Bonus.Collective
	require.Contains(t, c.Eliminated, ids[0])
	assert.Equal(t, model.EliminatedPass, c.Eliminated[ids[0]].Reason)
	assert.Equal(t, ids[1], c.TurnOrder[c.TurnIdx])
	r.Unlock()
}

func TestCollectiveCompletedTopicSharesBonus(t *testing.T) {
	svc, _ := newTestService(t, 6)
	code, _, ids := setupRoom(t, svc, 2)
	startCollective(t, svc, code, &model.Topic{
		ID:    "topic-tiny",
		Title: "Two things",
		Items: []model.TopicItem{{Name: "Alpha"}, {Name: "Beta"}},
	})

	require.NoError(t, svc.SubmitBonusGuess(code, ids[0], "Alpha"))
	require.NoError(t, svc.SubmitBonusGuess(code, ids[1], "Beta"))

	assert.Equal(t, model.PhaseBonusResult, phase(t, svc, code))
	r := room(t, svc, code)
	r.Lock()
	want := scoring.CollectiveItemPoints + scoring.CollectiveSharedSurvivorBonus
	assert.Equal(t, want, r.Players[ids[0]].Score)
	assert.Equal(t, want, r.Players[ids[1]].Score)
	r.Unlock()
}

func TestBuzzerExclusiveRights(t *testing.T) {
	svc, rec := newTestService(t, 6)
	code, _, ids := setupRoom(t, svc, 3)
	questions := []model.BuzzerQuestion{{
		ID:      "b1",
		Text:    "He developed the theory of relativity.",
		Answer:  "Albert Einstein",
		Aliases: []string{"Einstein"},
	}}
	startBuzzerRound(t, svc, code, questions)
	require.Equal(t, model.PhaseBonusBuzzer, phase(t, svc, code))

	r := room(t, svc, code)
	r.Lock()
	b := r.Game.Bonus.Buzzer
	b.Revealed = 10
	r.Unlock()

	require.NoError(t, svc.Buzz(code, ids[1]))
	require.NoError(t, svc.Buzz(code, ids[2])) // too late, ignored
	r.Lock()
	assert.Equal(t, ids[1], b.BuzzedBy)
	r.Unlock()

	// Only the buzzing player's answer counts.
	require.NoError(t, svc.SubmitBuzzerAnswer(code, ids[2], "Einstein"))
	r.Lock()
	assert.Zero(t, r.Players[ids[2]].Score)
	r.Unlock()

	require.NoError(t, svc.SubmitBuzzerAnswer(code, ids[1], "einstein"))

	wantPoints := scoring.BuzzerScore(10.0 / float64(len([]rune(questions[0].Text))))
	r.Lock()
	assert.Equal(t, wantPoints, r.Players[ids[1]].Score)
	r.Unlock()

	// Single question solved: the round is over with one winner.
	assert.Equal(t, model.PhaseBonusResult, phase(t, svc, code))
	payload, ok := rec.last(EvtBonusResult)
	require.True(t, ok)
	assert.Equal(t, []string{ids[1]}, payload.(BonusResultPayload).Winners)
}

func TestBuzzerMissLocksOut(t *testing.T) {
	svc, _ := newTestService(t, 6)
	code, _, ids := setupRoom(t, svc, 2)
	startBuzzerRound(t, svc, code, []model.BuzzerQuestion{
		{ID: "b1", Text: "Question one", Answer: "right"},
		{ID: "b2", Text: "Question two", Answer: "other"},
	})

	r := room(t, svc, code)
	r.Lock()
	b := r.Game.Bonus.Buzzer
	b.Revealed = 3
	r.Unlock()

	require.NoError(t, svc.Buzz(code, ids[0]))
	require.NoError(t, svc.SubmitBuzzerAnswer(code, ids[0], "wrong"))

	r.Lock()
	assert.True(t, b.Attempted[ids[0]])
	assert.Empty(t, b.BuzzedBy)
	r.Unlock()

	// Locked out for this question.
	require.NoError(t, svc.Buzz(code, ids[0]))
	r.Lock()
	assert.Empty(t, b.BuzzedBy)
	r.Unlock()

	// The other player misses too: everyone is locked, the question is
	// given up and the next one starts with a clean slate.
	require.NoError(t, svc.Buzz(code, ids[1]))
	require.NoError(t, svc.SubmitBuzzerAnswer(code, ids[1], "also wrong"))

	r.Lock()
	assert.Equal(t, 1, b.QIdx)
	assert.Empty(t, b.Attempted)
	assert.Zero(t, b.Revealed)
	r.Unlock()
}

func TestBuzzerTickRevealsText(t *testing.T) {
	svc, _ := newTestService(t, 6)
	code, _, _ := setupRoom(t, svc, 2)
	startBuzzerRound(t, svc, code, []model.BuzzerQuestion{
		{ID: "b1", Text: "abc", Answer: "x"},
	})

	r := room(t, svc, code)
	r.Lock()
	defer r.Unlock()
	b := r.Game.Bonus.Buzzer
	for i := 1; i <= 3; i++ {
		ev := &events{}
		svc.buzzerTick(r, ev)
		assert.Equal(t, i, b.Revealed)

		require.Len(t, ev.queue, 1)
		tick := ev.queue[0].payload.(BuzzerTickPayload)
		assert.Equal(t, i, tick.Revealed)
		assert.Equal(t, EvtBuzzerTick, ev.queue[0].msgType)
	}
}

func TestStartBonusPrefersUnplayedKind(t *testing.T) {
	svc, _ := newTestService(t, 6)
	code, _, _ := setupRoom(t, svc, 3)

	r := room(t, svc, code)
	r.Lock()
	r.Game.Round = 1
	r.Game.UsedBonusKinds = []model.BonusKind{model.BonusBuzzer}
	ev := &events{}
	started := svc.startBonus(r, ev)
	require.True(t, started)
	assert.Equal(t, model.BonusCollective, r.Game.Bonus.Kind)
	assert.Equal(t, model.PhaseBonusAnnounce, r.Game.Phase)

	// The announce pause over, the variant goes live.
	svc.beginBonusPlay(r, ev)
	assert.Equal(t, model.PhaseBonusCollective, r.Game.Phase)
	r.Unlock()
}

func TestStartBonusWithoutContentFallsBack(t *testing.T) {
	svc, _ := newTestService(t, 6)
	// Strip all bonus content so neither variant can start.
	svc.provider = noBonusProvider(svc.provider)

	code, _, _ := setupRoom(t, svc, 3)
	r := room(t, svc, code)
	r.Lock()
	r.Game.Round = 1
	ev := &events{}
	assert.False(t, svc.startBonus(r, ev))
	assert.Nil(t, r.Game.Bonus)
	r.Unlock()
}

func TestFuzzyMatching(t *testing.T) {
	assert.Equal(t, 1.0, similarity("Mercury", "mercury"))
	assert.Equal(t, 1.0, similarity("  hello   world ", "Hello World"))

	assert.True(t, matchesAny("mercurry", []string{"Mercury"}), "one typo passes")
	assert.False(t, matchesAny("venus", []string{"Mercury"}))
	assert.False(t, matchesAny("", []string{"Mercury"}))

	topic := planetsTopic()
	item := matchTopicItem(topic, "neptun")
	require.NotNil(t, item)
	assert.Equal(t, "Neptune", item.Name)
	assert.Nil(t, matchTopicItem(topic, "pluto"))
}
