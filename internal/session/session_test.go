package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetCreatesAndKeeps(t *testing.T) {
	s := NewStore(time.Hour)

	sess := s.Get(1)
	sess.Await = AwaitBroadcastText
	sess.Broadcast.Text = "draft"

	again := s.Get(1)
	assert.Equal(t, AwaitBroadcastText, again.Await)
	assert.Equal(t, "draft", again.Broadcast.Text)
	assert.Equal(t, 1, s.Len())
}

func TestGetExpiresIdleSession(t *testing.T) {
	s := NewStore(10 * time.Millisecond)

	s.Get(1).Await = AwaitABVariantA
	time.Sleep(20 * time.Millisecond)

	fresh := s.Get(1)
	assert.Equal(t, AwaitNone, fresh.Await, "expired wizard state must reset")
}

func TestClear(t *testing.T) {
	s := NewStore(time.Hour)
	s.Get(1).Await = AwaitAddAdmin
	s.Clear(1)
	assert.Equal(t, AwaitNone, s.Get(1).Await)
}

func TestSweep(t *testing.T) {
	s := NewStore(10 * time.Millisecond)
	s.Get(1)
	s.Get(2)
	time.Sleep(20 * time.Millisecond)
	s.Get(3)

	removed := s.Sweep()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, s.Len())
}
