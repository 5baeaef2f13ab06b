package game

// Broadcaster is the phase-notification hook shared by the WebSocket hub and
// the bot simulation layer (avoids an import cycle with transport).
type Broadcaster interface {
	BroadcastToRoom(roomCode string, msgType string, payload interface{})
	BroadcastToPlayer(roomCode, playerID string, msgType string, payload interface{})
	DisconnectRoom(roomCode string)
}

// outEvent is one queued broadcast collected while the room lock is held and
// emitted after release.
type outEvent struct {
	toPlayer string // empty means whole room
	msgType  string
	payload  interface{}
}

// events buffers broadcasts produced inside a critical section. closed is set
// when the room was torn down, suppressing the trailing snapshot.
type events struct {
	queue  []outEvent
	closed bool
}

func (e *events) add(msgType string, payload interface{}) {
	e.queue = append(e.queue, outEvent{msgType: msgType, payload: payload})
}

func (e *events) addTo(playerID, msgType string, payload interface{}) {
	e.queue = append(e.queue, outEvent{toPlayer: playerID, msgType: msgType, payload: payload})
}
