// Package bot drives synthetic players through the exact same action surface
// as real clients. It registers as a broadcast sink, reacts to the snapshots
// every client receives, and calls the public game.Service methods — no
// special-cased game logic exists for bots.
package bot

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/dice"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/game"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/model"
)

var botNames = []string{
	"RoboRandy", "QuizTron", "ByteBeatrice", "SirGuessalot",
	"NullNina", "CaptainCache", "LadyLatency", "PonderBot",
}

var guessWords = []string{
	"Mercury", "Napoleon", "Amazon", "Einstein", "Titanic",
	"banana", "Jupiter", "Beethoven", "Pacific", "whatever",
}

// Manager owns all synthetic players across rooms.
type Manager struct {
	svc    *game.Service
	roller *dice.Roller
	log    *logrus.Logger

	mu   sync.Mutex
	bots map[string]map[string]*state // roomCode -> botID -> state
}

// state tracks what a bot has already reacted to, so repeated snapshots of
// the same situation do not schedule duplicate actions.
type state struct {
	lastKey string
}

// New creates a bot manager. Register it with
// game.Service.AddBroadcaster to activate it.
func New(svc *game.Service, roller *dice.Roller, log *logrus.Logger) *Manager {
	if log == nil {
		log = logrus.New()
	}
	return &Manager{
		svc:    svc,
		roller: roller,
		log:    log,
		bots:   make(map[string]map[string]*state),
	}
}

// Spawn adds count bots to a lobby-phase room.
func (m *Manager) Spawn(roomCode string, count int) error {
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("%s-%d", botNames[m.roller.Intn(len(botNames))], m.roller.Intn(100))
		id, err := m.svc.AddBot(roomCode, name, "🤖")
		if err != nil {
			return err
		}
		m.mu.Lock()
		if m.bots[roomCode] == nil {
			m.bots[roomCode] = make(map[string]*state)
		}
		m.bots[roomCode][id] = &state{}
		m.mu.Unlock()
		m.log.WithFields(logrus.Fields{"room": roomCode, "bot": name}).Info("bot spawned")
	}
	return nil
}

// BroadcastToRoom implements game.Broadcaster; bots only care about full
// snapshots.
func (m *Manager) BroadcastToRoom(roomCode string, msgType string, payload interface{}) {
	if msgType != game.EvtRoomState {
		return
	}
	view, ok := payload.(*model.RoomView)
	if !ok || view.Game == nil {
		return
	}
	m.react(roomCode, view)
}

// BroadcastToPlayer implements game.Broadcaster.
func (m *Manager) BroadcastToPlayer(roomCode, playerID, msgType string, payload interface{}) {}

// DisconnectRoom implements game.Broadcaster.
func (m *Manager) DisconnectRoom(roomCode string) {
	m.mu.Lock()
	delete(m.bots, roomCode)
	m.mu.Unlock()
}

// react decides which bots need to act on a snapshot. Snapshots for one room
// can arrive concurrently from client-action and timer-callback goroutines,
// so the per-bot check-and-set of lastKey happens under the manager lock.
func (m *Manager) react(roomCode string, view *model.RoomView) {
	key := situationKey(view)

	var due []string
	m.mu.Lock()
	for id, st := range m.bots[roomCode] {
		if _, stillThere := view.Players[id]; !stillThere {
			continue
		}
		if st.lastKey == key {
			continue
		}
		st.lastKey = key
		due = append(due, id)
	}
	m.mu.Unlock()

	for _, id := range due {
		m.scheduleAction(roomCode, id, view)
	}
}

// situationKey identifies a distinct decision point for a bot.
func situationKey(view *model.RoomView) string {
	g := view.Game
	key := fmt.Sprintf("%s/%d/%d", g.Phase, g.Round, g.QuestionIdx)
	if g.Selection != nil {
		if g.Selection.Duel != nil {
			key += fmt.Sprintf("/duel%d", g.Selection.Duel.Round)
		}
		if g.Selection.Dice != nil {
			key += fmt.Sprintf("/reroll%d", g.Selection.Dice.Reroll)
		}
	}
	if g.Bonus != nil {
		if g.Bonus.Collective != nil {
			key += fmt.Sprintf("/turn%d", g.Bonus.Collective.TurnIdx)
		}
		if g.Bonus.Buzzer != nil {
			key += fmt.Sprintf("/buzz%d", g.Bonus.Buzzer.QIdx)
		}
	}
	return key
}

// scheduleAction fires the bot's move after a humanlike randomized delay.
func (m *Manager) scheduleAction(roomCode, botID string, view *model.RoomView) {
	delay := time.Duration(500+m.roller.Intn(2500)) * time.Millisecond
	time.AfterFunc(delay, func() {
		m.act(roomCode, botID, view)
	})
}

func (m *Manager) act(roomCode, botID string, view *model.RoomView) {
	g := view.Game

	var err error
	switch g.Phase {
	case model.PhaseCategoryVote:
		if sel := g.Selection; sel != nil && len(sel.Options) > 0 {
			pick := sel.Options[m.roller.Intn(len(sel.Options))]
			err = m.svc.CastVote(roomCode, botID, pick.ID)
		}

	case model.PhaseCategoryPick:
		if sel := g.Selection; sel != nil && sel.PickerID == botID && len(sel.Options) > 0 {
			pick := sel.Options[m.roller.Intn(len(sel.Options))]
			err = m.svc.PickCategory(roomCode, botID, pick.ID)
		}

	case model.PhaseDice:
		err = m.svc.RollDice(roomCode, botID)

	case model.PhaseRPS:
		if sel := g.Selection; sel != nil && sel.Duel != nil &&
			(sel.Duel.PlayerA == botID || sel.Duel.PlayerB == botID) {
			throws := []model.RPSThrow{model.ThrowRock, model.ThrowPaper, model.ThrowScissors}
			err = m.svc.ChooseRPS(roomCode, botID, throws[m.roller.Intn(len(throws))])
		}

	case model.PhaseQuestion:
		if g.Question != nil && len(g.Question.Options) > 0 {
			err = m.svc.SubmitChoice(roomCode, botID, m.roller.Intn(len(g.Question.Options)))
		}

	case model.PhaseEstimation:
		err = m.svc.SubmitEstimate(roomCode, botID, float64(1+m.roller.Intn(2000)))

	case model.PhaseBonusCollective:
		if b := g.Bonus; b != nil && b.Collective != nil &&
			b.Collective.TurnIdx < len(b.Collective.TurnOrder) &&
			b.Collective.TurnOrder[b.Collective.TurnIdx] == botID {
			if m.roller.Float64() < 0.2 {
				err = m.svc.SkipBonus(roomCode, botID)
			} else {
				guess := guessWords[m.roller.Intn(len(guessWords))]
				err = m.svc.SubmitBonusGuess(roomCode, botID, guess)
			}
		}

	case model.PhaseBonusBuzzer:
		if b := g.Bonus; b != nil && b.Buzzer != nil {
			if b.Buzzer.BuzzedBy == botID {
				err = m.svc.SubmitBuzzerAnswer(roomCode, botID, b.Buzzer.RevealedText)
			} else if b.Buzzer.BuzzedBy == "" && !b.Buzzer.Attempted[botID] && m.roller.Float64() < 0.3 {
				err = m.svc.Buzz(roomCode, botID)
			}
		}

	case model.PhaseFinal:
		err = m.svc.VoteRematch(roomCode, botID, m.roller.Float64() < 0.7)
	}

	if err != nil {
		m.log.WithFields(logrus.Fields{"room": roomCode, "bot": botID}).
			WithError(err).Debug("bot action rejected")
	}
}
