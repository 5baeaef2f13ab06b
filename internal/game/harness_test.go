package game

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/Fizzyy89/nerdquiz-next-sub000/config"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/common/clock"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/content"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/dice"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/model"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/registry"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/timer"
)

// testTiming uses hour-long windows so no real timer fires mid-test; every
// transition is driven through actions or by invoking finalizers directly.
func testTiming() *config.Config {
	return &config.Config{
		VoteWindow:         time.Hour,
		WheelSpinDuration:  time.Hour,
		LoserPickWindow:    time.Hour,
		DiceRollWindow:     time.Hour,
		RPSRoundWindow:     time.Hour,
		RevealDuration:     time.Hour,
		ScoreboardPause:    time.Hour,
		BonusTurnWindow:    time.Hour,
		BuzzerTickEvery:    time.Hour,
		BuzzerAnswerWindow: time.Hour,
		RematchWindow:      time.Hour,
		EmptyRoomGrace:     time.Hour,
	}
}

// recorder captures everything a client would receive.
type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	msgType  string
	toPlayer string
	payload  interface{}
}

func (r *recorder) BroadcastToRoom(roomCode, msgType string, payload interface{}) {
	r.mu.Lock()
	r.events = append(r.events, recordedEvent{msgType: msgType, payload: payload})
	r.mu.Unlock()
}

func (r *recorder) BroadcastToPlayer(roomCode, playerID, msgType string, payload interface{}) {
	r.mu.Lock()
	r.events = append(r.events, recordedEvent{msgType: msgType, toPlayer: playerID, payload: payload})
	r.mu.Unlock()
}

func (r *recorder) DisconnectRoom(roomCode string) {}

func (r *recorder) count(msgType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.msgType == msgType {
			n++
		}
	}
	return n
}

// lastTarget returns the player a targeted event of the given type was last
// sent to.
func (r *recorder) lastTarget(msgType string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].msgType == msgType {
			return r.events[i].toPlayer
		}
	}
	return ""
}

func (r *recorder) last(msgType string) (interface{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].msgType == msgType {
			return r.events[i].payload, true
		}
	}
	return nil, false
}

func newTestService(t *testing.T, seed int64) (*Service, *recorder) {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	roller := dice.New(&dice.Config{Seed: seed})
	svc, err := New(&Config{
		Registry: registry.New(clock.New()),
		Timers:   timer.New(),
		Provider: content.NewSampleProvider(roller),
		Roller:   roller,
		Clock:    clock.New(),
		Logger:   log,
		Timing:   testTiming(),
	})
	require.NoError(t, err)

	rec := &recorder{}
	svc.AddBroadcaster(rec)
	return svc, rec
}

// noBonusProvider keeps the question pool but drops all bonus content.
func noBonusProvider(_ content.Provider) content.Provider {
	f := content.SampleFile()
	return content.NewStaticProvider(f.Categories, f.Questions, nil, nil, dice.New(&dice.Config{Seed: 1}))
}

// setupRoom creates a room with n players total and short match settings.
// Returns the room code, the host id and all player ids in join order.
func setupRoom(t *testing.T, svc *Service, n int) (string, string, []string) {
	t.Helper()

	view, hostID, err := svc.CreateRoom("Host", "🦊")
	require.NoError(t, err)
	code := view.Code

	ids := []string{hostID}
	names := []string{"Bob", "Cleo", "Dana", "Eli", "Fox"}
	for i := 1; i < n; i++ {
		_, id, err := svc.JoinRoom(code, names[i-1], "")
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, svc.UpdateSettings(code, hostID, model.Settings{
		Rounds:             2,
		QuestionsPerRound:  1,
		SecondsPerQuestion: 20,
		BonusProbability:   0,
	}))

	return code, hostID, ids
}

// room fetches the live room for direct state assertions.
func room(t *testing.T, svc *Service, code string) *model.Room {
	t.Helper()
	r, err := svc.registry.Get(code)
	require.NoError(t, err)
	return r
}

func phase(t *testing.T, svc *Service, code string) model.Phase {
	t.Helper()
	r := room(t, svc, code)
	r.Lock()
	defer r.Unlock()
	return r.Game.Phase
}

// answerAll submits a valid answer for every player on the live question,
// host last so the early-finalize triggers on the final submission.
func answerAll(t *testing.T, svc *Service, code string, ids []string) {
	t.Helper()

	r := room(t, svc, code)
	r.Lock()
	q := r.Game.Questions[r.Game.QuestionIdx]
	r.Unlock()

	for _, id := range ids {
		var err error
		if q.Kind == model.QuestionChoice {
			err = svc.SubmitChoice(code, id, q.CorrectIdx)
		} else {
			err = svc.SubmitEstimate(code, id, q.Target)
		}
		require.NoError(t, err)
	}
}

// startVoteRound forces a vote round and makes everyone vote for categoryID.
func startVoteRound(t *testing.T, svc *Service, code string, ids []string, categoryID string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, svc.CastVote(code, id, categoryID))
	}
}
