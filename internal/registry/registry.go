package registry

import (
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/common/clock"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/model"
)

// RegistryError is a typed error for registry operations.
type RegistryError string

// Error implements the error interface
func (e RegistryError) Error() string {
	return string(e)
}

const (
	ErrRoomNotFound  RegistryError = "room not found"
	ErrCodeExhausted RegistryError = "failed to generate unique room code"
	ErrNameRequired  RegistryError = "player name is required"
)

// Registry owns the in-memory table of active rooms. It is the only
// cross-room mutable state; its own lock guards the table only, while each
// room carries its own mutex for state mutation.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*model.Room
	clock clock.Clock
}

// New creates an empty registry.
func New(clk clock.Clock) *Registry {
	return &Registry{
		rooms: make(map[string]*model.Room),
		clock: clk,
	}
}

// Create makes a new room with the given host and returns both.
func (r *Registry) Create(hostName, avatar string) (*model.Room, *model.Player, error) {
	if hostName == "" {
		return nil, nil, ErrNameRequired
	}

	code, err := r.generateCode()
	if err != nil {
		return nil, nil, err
	}

	host := &model.Player{
		ID:        uuid.NewString(),
		Name:      hostName,
		Avatar:    avatar,
		IsHost:    true,
		Connected: true,
		JoinedAt:  r.clock.Now(),
	}

	room := &model.Room{
		Code:      code,
		HostID:    host.ID,
		Players:   map[string]*model.Player{host.ID: host},
		Settings:  model.DefaultSettings(),
		Game:      model.NewGameState(),
		CreatedAt: r.clock.Now(),
	}

	r.mu.Lock()
	r.rooms[code] = room
	r.mu.Unlock()

	return room, host, nil
}

// Get returns the room for a code, or ErrRoomNotFound.
func (r *Registry) Get(code string) (*model.Room, error) {
	r.mu.RLock()
	room, ok := r.rooms[code]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Delete removes a room from the table. The caller is responsible for having
// marked the room closed and cancelled its timers.
func (r *Registry) Delete(code string) {
	r.mu.Lock()
	delete(r.rooms, code)
	r.mu.Unlock()
}

// Count returns the number of active rooms.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// generateCode creates a short human-typeable room code over an alphabet
// without easily confused characters, retrying on collision.
func (r *Registry) generateCode() (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLen = 4

	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, codeLen)
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}

		code := make([]byte, codeLen)
		for i := range code {
			code[i] = chars[int(b[i])%len(chars)]
		}
		codeStr := string(code)

		r.mu.RLock()
		_, exists := r.rooms[codeStr]
		r.mu.RUnlock()
		if !exists {
			return codeStr, nil
		}
	}

	return "", ErrCodeExhausted
}

// Snapshot builds the client-safe view of a room. The caller must hold the
// room lock.
func (r *Registry) Snapshot(room *model.Room) *model.RoomView {
	players := make(map[string]model.PlayerView, len(room.Players))
	for id, p := range room.Players {
		players[id] = model.PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Avatar:    p.Avatar,
			Score:     p.Score,
			IsHost:    p.IsHost,
			IsBot:     p.IsBot,
			Connected: p.Connected,
			Streak:    p.Streak,
			Answered:  p.HasAnswered(),
		}
	}

	return &model.RoomView{
		Code:       room.Code,
		HostID:     room.HostID,
		Players:    players,
		Settings:   room.Settings,
		Game:       gameView(room.Game),
		ServerTime: r.clock.Now(),
	}
}

func gameView(g *model.GameState) *model.GameView {
	if g == nil {
		return nil
	}
	v := &model.GameView{
		Phase:       g.Phase,
		Round:       g.Round,
		QuestionIdx: g.QuestionIdx,
		CategoryID:  g.CategoryID,
		TimerEnd:    g.TimerEnd,
		Selection:   g.Selection,
	}

	if q := currentQuestion(g); q != nil {
		revealed := g.Phase == model.PhaseRevealing || g.Phase == model.PhaseEstimationReveal
		v.Question = questionView(q, revealed)
	}

	if g.Bonus != nil {
		v.Bonus = bonusView(g.Bonus)
	}
	return v
}

func currentQuestion(g *model.GameState) *model.Question {
	switch g.Phase {
	case model.PhaseQuestion, model.PhaseEstimation, model.PhaseRevealing, model.PhaseEstimationReveal:
	default:
		return nil
	}
	if g.QuestionIdx < 0 || g.QuestionIdx >= len(g.Questions) {
		return nil
	}
	return &g.Questions[g.QuestionIdx]
}

func questionView(q *model.Question, revealed bool) *model.QuestionView {
	v := &model.QuestionView{
		ID:         q.ID,
		CategoryID: q.CategoryID,
		Kind:       q.Kind,
		Text:       q.Text,
		Options:    q.Options,
		Unit:       q.Unit,
	}
	if revealed {
		if q.Kind == model.QuestionChoice {
			idx := q.CorrectIdx
			v.CorrectIdx = &idx
		} else {
			target := q.Target
			v.Target = &target
		}
	}
	return v
}

func bonusView(b *model.BonusState) *model.BonusView {
	v := &model.BonusView{Kind: b.Kind}
	if b.Collective != nil {
		c := b.Collective
		v.Collective = &model.CollectiveView{
			TopicID:    c.Topic.ID,
			Title:      c.Topic.Title,
			ItemCount:  len(c.Topic.Items),
			Found:      c.Found,
			TurnOrder:  c.TurnOrder,
			TurnIdx:    c.TurnIdx,
			Eliminated: c.Eliminated,
		}
	}
	if b.Buzzer != nil {
		bz := b.Buzzer
		view := &model.BuzzerView{
			QIdx:      bz.QIdx,
			Total:     len(bz.Questions),
			BuzzedBy:  bz.BuzzedBy,
			Attempted: bz.Attempted,
			Solved:    bz.Solved,
		}
		if q := bz.Current(); q != nil {
			n := bz.Revealed
			runes := []rune(q.Text)
			if n > len(runes) {
				n = len(runes)
			}
			view.RevealedText = string(runes[:n])
		}
		v.Buzzer = view
	}
	return v
}
