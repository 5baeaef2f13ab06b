package ws

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testHandler(h *Hub) *Handler {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewHandler(h, nil, nil, log)
}

func TestSendToReplacedConnectionIsDropped(t *testing.T) {
	h := testHub()
	handler := testHandler(h)

	stale := newConn(h, "ROOM", "alice")
	fresh := newConn(h, "ROOM", "alice")

	// The stale read loop may still dispatch one last message whose error
	// path writes back; with the channel closed by the replacement this has
	// to be a silent drop, not a panic.
	handler.sendError(stale, "room not found")
	handler.sendWelcome(stale, nil, "alice")

	expectNothing(t, fresh)

	handler.sendError(fresh, "room not found")
	assert.Equal(t, "error", receive(t, fresh).Type)
}

func TestSendToClosedRoomIsDropped(t *testing.T) {
	h := testHub()
	handler := testHandler(h)

	a := newConn(h, "ROOM", "alice")
	b := newConn(h, "ROOM", "bob")
	h.DisconnectRoom("ROOM")

	handler.sendError(a, "room closed")
	handler.sendWelcome(b, nil, "bob")
}
