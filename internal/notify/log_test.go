package notify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLog_Add(t *testing.T) {
	t.Run("Prepends newest first", func(t *testing.T) {
		l := NewLog()

		l.Add(Notification{Type: TypeOrderUpdate, Message: "first"})
		l.Add(Notification{Type: TypeOrderUpdate, Message: "second"})

		entries := l.Entries()
		assert.Len(t, entries, 2)
		assert.Equal(t, "second", entries[0].Message)
		assert.Equal(t, "first", entries[1].Message)
		assert.NotEmpty(t, entries[0].ID)
		assert.False(t, entries[0].Timestamp.IsZero())
	})

	t.Run("Caps at fifty with FIFO eviction", func(t *testing.T) {
		l := NewLog()

		for i := 0; i < 60; i++ {
			l.Add(Notification{Type: TypeTableUpdate, Message: fmt.Sprintf("n%d", i)})
		}

		entries := l.Entries()
		assert.Len(t, entries, 50)
		assert.Equal(t, "n59", entries[0].Message)
		assert.Equal(t, "n10", entries[49].Message)
		assert.Equal(t, 50, l.Unread())
	})
}

func TestLog_MarkRead(t *testing.T) {
	l := NewLog()
	n := l.Add(Notification{Type: TypeOrderUpdate, Message: "hello"})

	assert.Equal(t, 1, l.Unread())

	l.MarkRead(n.ID)
	assert.Equal(t, 0, l.Unread())
	assert.True(t, l.Entries()[0].Read)

	// Marking again must not drive the count negative.
	l.MarkRead(n.ID)
	assert.Equal(t, 0, l.Unread())

	l.MarkRead("no-such-id")
	assert.Equal(t, 0, l.Unread())
}

func TestLog_MarkAllRead(t *testing.T) {
	l := NewLog()
	l.Add(Notification{Message: "a"})
	l.Add(Notification{Message: "b"})

	l.MarkAllRead()

	assert.Equal(t, 0, l.Unread())
	for _, e := range l.Entries() {
		assert.True(t, e.Read)
	}
}

func TestLog_Clear(t *testing.T) {
	l := NewLog()
	l.Add(Notification{Message: "a"})

	l.Clear()

	assert.Empty(t, l.Entries())
	assert.Equal(t, 0, l.Unread())
}
