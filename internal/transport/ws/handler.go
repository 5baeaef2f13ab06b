package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/game"
	"github.com/Fizzyy89/nerdquiz-next-sub000/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Action types sent by clients. Everything goes through the socket; the
// first message on a fresh connection must be create_room, join_room or
// reconnect.
const (
	ActCreateRoom     = "create_room"
	ActJoinRoom       = "join_room"
	ActReconnect      = "reconnect"
	ActUpdateSettings = "update_settings"
	ActStartGame      = "start_game"
	ActAddBots        = "add_bots"
	ActForceMode      = "force_mode"
	ActCastVote       = "cast_vote"
	ActPickCategory   = "pick_category"
	ActRollDice       = "roll_dice"
	ActChooseRPS      = "choose_rps"
	ActSubmitChoice   = "submit_choice"
	ActSubmitEstimate = "submit_estimate"
	ActBonusGuess     = "bonus_guess"
	ActSkipBonus      = "skip_bonus"
	ActBuzz           = "buzz"
	ActBuzzerAnswer   = "buzzer_answer"
	ActVoteRematch    = "vote_rematch"
	ActAdvance        = "advance"
)

// BotSpawner lets the handler add synthetic players on request without
// depending on the bot package directly.
type BotSpawner interface {
	Spawn(roomCode string, count int) error
}

// Handler handles WebSocket connections
type Handler struct {
	hub  *Hub
	svc  *game.Service
	bots BotSpawner
	log  *logrus.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, svc *game.Service, bots BotSpawner, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{hub: hub, svc: svc, bots: bots, log: log}
}

// ServeWS handles GET /v1/ws
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	conn := &Connection{
		Send: make(chan []byte, 256),
	}

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		// Only treat the player as gone if this is still their live
		// connection; a reconnect has already replaced a stale one.
		if conn.PlayerID != "" && h.hub.Unregister(conn) {
			h.svc.Disconnect(conn.RoomCode, conn.PlayerID)
		}
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.WithError(err).Debug("websocket read error")
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.sendError(conn, "malformed message")
			continue
		}

		if err := h.dispatch(conn, &msg); err != nil {
			h.sendError(conn, err.Error())
		}
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch routes one inbound action to the game service.
func (h *Handler) dispatch(conn *Connection, msg *Message) error {
	// Binding actions come first; everything else requires a bound player.
	switch msg.Type {
	case ActCreateRoom:
		var p struct {
			Name   string `json:"name"`
			Avatar string `json:"avatar"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		view, playerID, err := h.svc.CreateRoom(p.Name, p.Avatar)
		if err != nil {
			return err
		}
		h.bind(conn, view.Code, playerID)
		h.sendWelcome(conn, view, playerID)
		return nil

	case ActJoinRoom:
		var p struct {
			Code   string `json:"code"`
			Name   string `json:"name"`
			Avatar string `json:"avatar"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		view, playerID, err := h.svc.JoinRoom(p.Code, p.Name, p.Avatar)
		if err != nil {
			return err
		}
		h.bind(conn, view.Code, playerID)
		h.sendWelcome(conn, view, playerID)
		return nil

	case ActReconnect:
		var p struct {
			Code     string `json:"code"`
			PlayerID string `json:"playerId"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		view, err := h.svc.Reconnect(p.Code, p.PlayerID)
		if err != nil {
			return err
		}
		h.bind(conn, p.Code, p.PlayerID)
		h.sendWelcome(conn, view, p.PlayerID)
		return nil
	}

	if conn.PlayerID == "" {
		return game.ErrPlayerNotFound
	}
	code, playerID := conn.RoomCode, conn.PlayerID

	switch msg.Type {
	case ActUpdateSettings:
		var settings model.Settings
		if err := json.Unmarshal(msg.Payload, &settings); err != nil {
			return err
		}
		return h.svc.UpdateSettings(code, playerID, settings)

	case ActStartGame:
		return h.svc.StartGame(code, playerID)

	case ActAddBots:
		var p struct {
			Count int `json:"count"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		if h.bots == nil {
			return game.ErrInvalidSettings
		}
		return h.bots.Spawn(code, p.Count)

	case ActForceMode:
		var p struct {
			Mode model.SelectionMode `json:"mode"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return h.svc.SetForcedMode(code, p.Mode)

	case ActCastVote:
		var p struct {
			CategoryID string `json:"categoryId"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return h.svc.CastVote(code, playerID, p.CategoryID)

	case ActPickCategory:
		var p struct {
			CategoryID string `json:"categoryId"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return h.svc.PickCategory(code, playerID, p.CategoryID)

	case ActRollDice:
		return h.svc.RollDice(code, playerID)

	case ActChooseRPS:
		var p struct {
			Throw model.RPSThrow `json:"throw"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return h.svc.ChooseRPS(code, playerID, p.Throw)

	case ActSubmitChoice:
		var p struct {
			ChoiceIdx int `json:"choiceIdx"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return h.svc.SubmitChoice(code, playerID, p.ChoiceIdx)

	case ActSubmitEstimate:
		var p struct {
			Value float64 `json:"value"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return h.svc.SubmitEstimate(code, playerID, p.Value)

	case ActBonusGuess:
		var p struct {
			Guess string `json:"guess"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return h.svc.SubmitBonusGuess(code, playerID, p.Guess)

	case ActSkipBonus:
		return h.svc.SkipBonus(code, playerID)

	case ActBuzz:
		return h.svc.Buzz(code, playerID)

	case ActBuzzerAnswer:
		var p struct {
			Answer string `json:"answer"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return h.svc.SubmitBuzzerAnswer(code, playerID, p.Answer)

	case ActVoteRematch:
		var p struct {
			Again bool `json:"again"`
		}
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return err
		}
		return h.svc.VoteRematch(code, playerID, p.Again)

	case ActAdvance:
		return h.svc.Advance(code, playerID)
	}

	h.log.WithField("type", msg.Type).Debug("unknown action")
	return nil
}

func (h *Handler) bind(conn *Connection, code, playerID string) {
	conn.RoomCode = code
	conn.PlayerID = playerID
	h.hub.Register(conn)
}

// sendWelcome delivers the player's identity and the current snapshot
// directly; the hub broadcast may have raced the registration.
func (h *Handler) sendWelcome(conn *Connection, view *model.RoomView, playerID string) {
	payload, _ := json.Marshal(struct {
		PlayerID string          `json:"playerId"`
		Room     *model.RoomView `json:"room"`
	}{PlayerID: playerID, Room: view})
	data, _ := json.Marshal(&Message{Type: "welcome", Payload: payload})
	conn.trySend(data)
}

func (h *Handler) sendError(conn *Connection, text string) {
	payload, _ := json.Marshal(struct {
		Error string `json:"error"`
	}{Error: text})
	data, _ := json.Marshal(&Message{Type: "error", Payload: payload})
	conn.trySend(data)
}
