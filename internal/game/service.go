package game

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Fizzyy89/nerdquiz-next-sub000/config"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/common/clock"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/content"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/dice"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/model"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/registry"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/timer"
)

// errIgnored marks an action that arrived for a stale phase. A correctly
// behaving client only does this under a lost race, so it is dropped as a
// silent no-op rather than surfaced as an error.
var errIgnored = errors.New("stale action ignored")

// Config wires the service's collaborators.
type Config struct {
	Registry *registry.Registry
	Timers   *timer.Scheduler
	Provider content.Provider
	Roller   *dice.Roller
	Clock    clock.Clock
	Logger   *logrus.Logger
	Timing   *config.Config
}

// Service drives every room's match state machine. It is the single action
// surface shared by the WebSocket router and the bot simulation layer.
type Service struct {
	registry  *registry.Registry
	timers    *timer.Scheduler
	lifecycle *timer.Scheduler
	provider  content.Provider
	roller    *dice.Roller
	clock     clock.Clock
	log       *logrus.Logger
	cfg       *config.Config

	sinkMu sync.RWMutex
	sinks  []Broadcaster
}

// New creates the game service.
func New(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Registry == nil {
		return nil, ErrNilRegistry
	}
	if cfg.Timers == nil {
		return nil, ErrNilTimers
	}
	if cfg.Provider == nil {
		return nil, ErrNilProvider
	}
	if cfg.Roller == nil {
		return nil, ErrNilRoller
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if cfg.Timing == nil {
		return nil, ErrNilConfig
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.New()
	}

	return &Service{
		registry:  cfg.Registry,
		timers:    cfg.Timers,
		lifecycle: timer.New(),
		provider:  cfg.Provider,
		roller:    cfg.Roller,
		clock:     cfg.Clock,
		log:       log,
		cfg:       cfg.Timing,
	}, nil
}

// AddBroadcaster registers a notification sink. The WebSocket hub and the bot
// manager both register through this hook.
func (s *Service) AddBroadcaster(b Broadcaster) {
	s.sinkMu.Lock()
	s.sinks = append(s.sinks, b)
	s.sinkMu.Unlock()
}

// Categories exposes the playable categories to transports and bots.
func (s *Service) Categories() []model.Category {
	return s.provider.ListCategories()
}

// CreateRoom makes a room and returns its first snapshot plus the host's id.
func (s *Service) CreateRoom(hostName, avatar string) (*model.RoomView, string, error) {
	if hostName == "" {
		return nil, "", ErrNameRequired
	}

	room, host, err := s.registry.Create(hostName, avatar)
	if err != nil {
		return nil, "", err
	}

	room.Lock()
	view := s.registry.Snapshot(room)
	room.Unlock()

	s.log.WithFields(logrus.Fields{"room": room.Code, "host": host.Name}).Info("room created")
	return view, host.ID, nil
}

// JoinRoom adds a player to a lobby-phase room.
func (s *Service) JoinRoom(code, name, avatar string) (*model.RoomView, string, error) {
	if name == "" {
		return nil, "", ErrNameRequired
	}

	var playerID string
	var view *model.RoomView
	err := s.mutate(code, func(room *model.Room, ev *events) error {
		if room.Game.Phase != model.PhaseLobby {
			return ErrGameInProgress
		}
		p := &model.Player{
			ID:        uuid.NewString(),
			Name:      name,
			Avatar:    avatar,
			Connected: true,
			JoinedAt:  s.clock.Now(),
		}
		room.Players[p.ID] = p
		playerID = p.ID
		ev.add(EvtPlayerJoined, map[string]string{"playerId": p.ID, "name": p.Name})
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	room, err := s.registry.Get(code)
	if err != nil {
		return nil, "", ErrRoomNotFound
	}
	room.Lock()
	view = s.registry.Snapshot(room)
	room.Unlock()

	s.log.WithFields(logrus.Fields{"room": code, "player": name}).Info("player joined")
	return view, playerID, nil
}

// AddBot joins a synthetic player to a lobby-phase room.
func (s *Service) AddBot(code, name, avatar string) (string, error) {
	var botID string
	err := s.mutate(code, func(room *model.Room, ev *events) error {
		if room.Game.Phase != model.PhaseLobby {
			return ErrGameInProgress
		}
		p := &model.Player{
			ID:        uuid.NewString(),
			Name:      name,
			Avatar:    avatar,
			IsBot:     true,
			Connected: true,
			JoinedAt:  s.clock.Now(),
		}
		room.Players[p.ID] = p
		botID = p.ID
		ev.add(EvtPlayerJoined, map[string]string{"playerId": p.ID, "name": p.Name})
		return nil
	})
	return botID, err
}

// UpdateSettings changes the match parameters. Host only, lobby only.
func (s *Service) UpdateSettings(code, playerID string, settings model.Settings) error {
	return s.mutate(code, func(room *model.Room, ev *events) error {
		if playerID != room.HostID {
			return ErrNotHost
		}
		if room.Game.Phase != model.PhaseLobby {
			return errIgnored
		}
		if settings.Rounds < 1 || settings.Rounds > 20 ||
			settings.QuestionsPerRound < 1 || settings.QuestionsPerRound > 10 ||
			settings.SecondsPerQuestion < 5 || settings.SecondsPerQuestion > 120 ||
			settings.BonusProbability < 0 || settings.BonusProbability > 1 {
			return ErrInvalidSettings
		}
		room.Settings = settings
		return nil
	})
}

// StartGame begins the match. Host only, lobby only.
func (s *Service) StartGame(code, playerID string) error {
	return s.mutate(code, func(room *model.Room, ev *events) error {
		if playerID != room.HostID {
			return ErrNotHost
		}
		if room.Game.Phase != model.PhaseLobby {
			return errIgnored
		}
		if len(room.ConnectedPlayers()) < 1 {
			return ErrNotEnoughPlayers
		}
		room.Game.BonusForcedFinal = room.Settings.BonusProbability > 0
		s.log.WithFields(logrus.Fields{"room": code, "players": len(room.Players)}).Info("game started")
		s.beginRound(room, ev)
		return nil
	})
}

// SetForcedMode arms the one-shot category-selection override (dev hook).
func (s *Service) SetForcedMode(code string, mode model.SelectionMode) error {
	return s.mutate(code, func(room *model.Room, ev *events) error {
		room.Game.ForcedMode = mode
		return nil
	})
}

// Advance is the host's "next" action: it skips the remaining wait of a
// presentation phase.
func (s *Service) Advance(code, playerID string) error {
	return s.mutate(code, func(room *model.Room, ev *events) error {
		if playerID != room.HostID {
			return ErrNotHost
		}
		switch room.Game.Phase {
		case model.PhaseRevealing, model.PhaseEstimationReveal:
			s.afterReveal(room, ev)
		case model.PhaseScoreboard:
			s.afterScoreboard(room, ev)
		case model.PhaseBonusAnnounce:
			s.beginBonusPlay(room, ev)
		case model.PhaseBonusResult:
			s.afterBonus(room, ev)
		default:
			return errIgnored
		}
		return nil
	})
}

// Reconnect marks a player connected again and returns a fresh snapshot.
func (s *Service) Reconnect(code, playerID string) (*model.RoomView, error) {
	var view *model.RoomView
	err := s.mutate(code, func(room *model.Room, ev *events) error {
		p, ok := room.Players[playerID]
		if !ok {
			return ErrPlayerNotFound
		}
		p.Connected = true
		s.lifecycle.Cancel(code)
		return nil
	})
	if err != nil {
		return nil, err
	}

	room, err := s.registry.Get(code)
	if err != nil {
		return nil, ErrRoomNotFound
	}
	room.Lock()
	view = s.registry.Snapshot(room)
	room.Unlock()
	return view, nil
}

// Disconnect marks a player disconnected. When the last connected human
// leaves, the room is torn down after a grace period unless someone returns.
func (s *Service) Disconnect(code, playerID string) {
	_ = s.mutate(code, func(room *model.Room, ev *events) error {
		p, ok := room.Players[playerID]
		if !ok {
			return errIgnored
		}
		p.Connected = false
		s.log.WithFields(logrus.Fields{"room": code, "player": p.Name}).Debug("player disconnected")

		if room.ConnectedHumans() == 0 {
			s.lifecycle.Schedule(code, s.cfg.EmptyRoomGrace, func() {
				s.expireRoom(code)
			})
		}
		return nil
	})
}

// expireRoom tears down a room whose grace period elapsed with no humans.
func (s *Service) expireRoom(code string) {
	room, err := s.registry.Get(code)
	if err != nil {
		return
	}
	ev := &events{}
	room.Lock()
	if room.Closed || room.ConnectedHumans() > 0 {
		room.Unlock()
		return
	}
	s.teardown(room, ev)
	room.Unlock()
	s.emit(code, ev, nil)
	s.log.WithField("room", code).Info("room expired")
}

// mutate runs fn under the room lock and broadcasts the queued events plus a
// fresh snapshot on success. Phase-stale actions return nil without any
// broadcast.
func (s *Service) mutate(code string, fn func(*model.Room, *events) error) error {
	room, err := s.registry.Get(code)
	if err != nil {
		return ErrRoomNotFound
	}

	ev := &events{}
	room.Lock()
	if room.Closed {
		room.Unlock()
		return ErrRoomNotFound
	}
	err = fn(room, ev)
	if err != nil {
		room.Unlock()
		if errors.Is(err, errIgnored) {
			return nil
		}
		return err
	}
	var view *model.RoomView
	if !ev.closed {
		view = s.registry.Snapshot(room)
	}
	room.Unlock()

	s.emit(code, ev, view)
	return nil
}

// setPhase flips the phase, invalidating any outstanding timer callback. All
// finalizers call this before doing anything else, which is what makes a
// racing duplicate invocation a no-op.
func (s *Service) setPhase(room *model.Room, ev *events, phase model.Phase) {
	s.timers.Cancel(room.Code)
	room.Game.Phase = phase
	room.Game.BumpTimer()
	ev.add(EvtPhaseChanged, PhaseChangedPayload{Phase: phase})
}

// scheduleAfter arms the single timer governing the current phase. The
// callback captures the room code and the current timer generation; if the
// generation moved on by the time it fires, it aborts silently.
func (s *Service) scheduleAfter(room *model.Room, d time.Duration, fn func(*model.Room, *events)) {
	gen := room.Game.TimerGen
	code := room.Code
	room.Game.SetDeadline(s.clock.Now().Add(d))
	s.timers.Schedule(code, d, func() {
		s.fireTimer(code, gen, fn)
	})
}

func (s *Service) fireTimer(code string, gen uint64, fn func(*model.Room, *events)) {
	room, err := s.registry.Get(code)
	if err != nil {
		return
	}

	ev := &events{}
	room.Lock()
	if room.Closed || room.Game.TimerGen != gen {
		room.Unlock()
		return
	}
	fn(room, ev)
	var view *model.RoomView
	if !ev.closed {
		view = s.registry.Snapshot(room)
	}
	room.Unlock()

	s.emit(code, ev, view)
}

// teardown closes the room and removes it from the registry. Must be called
// with the room lock held.
func (s *Service) teardown(room *model.Room, ev *events) {
	room.Closed = true
	s.timers.Cancel(room.Code)
	s.lifecycle.Cancel(room.Code)
	s.registry.Delete(room.Code)
	ev.add(EvtRoomClosed, map[string]string{"roomCode": room.Code})
	ev.closed = true
	s.log.WithField("room", room.Code).Info("room closed")
}

// emit flushes buffered events and the snapshot to every registered sink.
func (s *Service) emit(code string, ev *events, view *model.RoomView) {
	s.sinkMu.RLock()
	sinks := s.sinks
	s.sinkMu.RUnlock()

	for _, sink := range sinks {
		for _, e := range ev.queue {
			if e.toPlayer != "" {
				sink.BroadcastToPlayer(code, e.toPlayer, e.msgType, e.payload)
			} else {
				sink.BroadcastToRoom(code, e.msgType, e.payload)
			}
		}
		if view != nil {
			sink.BroadcastToRoom(code, EvtRoomState, view)
		}
		if ev.closed {
			sink.DisconnectRoom(code)
		}
	}
}
