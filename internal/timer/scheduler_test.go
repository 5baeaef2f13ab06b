package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleFires(t *testing.T) {
	s := New()
	fired := make(chan struct{})

	s.Schedule("ROOM", 10*time.Millisecond, func() { close(fired) })
	assert.True(t, s.Pending("ROOM"))

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback never fired")
	}

	// The entry is cleaned up once the callback ran.
	assert.Eventually(t, func() bool { return !s.Pending("ROOM") }, time.Second, 5*time.Millisecond)
}

func TestScheduleReplacesPending(t *testing.T) {
	s := New()
	got := make(chan string, 2)

	s.Schedule("ROOM", 50*time.Millisecond, func() { got <- "first" })
	s.Schedule("ROOM", 10*time.Millisecond, func() { got <- "second" })

	select {
	case v := <-got:
		assert.Equal(t, "second", v)
	case <-time.After(time.Second):
		t.Fatal("replacement callback never fired")
	}

	select {
	case v := <-got:
		t.Fatalf("replaced callback fired: %s", v)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCancel(t *testing.T) {
	s := New()
	fired := make(chan struct{}, 1)

	s.Schedule("ROOM", 20*time.Millisecond, func() { fired <- struct{}{} })
	s.Cancel("ROOM")
	assert.False(t, s.Pending("ROOM"))

	select {
	case <-fired:
		t.Fatal("cancelled callback fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRoomsAreIndependent(t *testing.T) {
	s := New()
	fired := make(chan string, 2)

	s.Schedule("A", 10*time.Millisecond, func() { fired <- "A" })
	s.Schedule("B", 10*time.Millisecond, func() { fired <- "B" })
	s.Cancel("A")

	select {
	case v := <-fired:
		assert.Equal(t, "B", v)
	case <-time.After(time.Second):
		t.Fatal("timer for room B never fired")
	}
}
