package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeTableUpdate           Type = "table_update"
	TypeOrderUpdate           Type = "order_update"
	TypeMenuItemUpdate        Type = "menu_item_update"
	TypeOrderItemStatusUpdate Type = "order_item_status_update"
)

type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
	EntityID  uint      `json:"entity_id"`
}

// maxEntries bounds the log; older entries fall off the end.
const maxEntries = 50

// Log is the bounded ring of user-facing notifications backing the
// badge and dropdown. Newest first.
type Log struct {
	mu      sync.Mutex
	entries []Notification
	unread  int
}

func NewLog() *Log {
	return &Log{}
}

// Add prepends an entry, assigning id and timestamp when missing.
func (l *Log) Add(n Notification) Notification {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	l.entries = append([]Notification{n}, l.entries...)
	if len(l.entries) > maxEntries {
		for _, evicted := range l.entries[maxEntries:] {
			if !evicted.Read {
				l.unread--
			}
		}
		l.entries = l.entries[:maxEntries]
	}
	l.unread++

	if l.unread < 0 {
		l.unread = 0
	}
	return n
}

func (l *Log) MarkRead(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.entries {
		if l.entries[i].ID == id && !l.entries[i].Read {
			l.entries[i].Read = true
			l.unread--
			break
		}
	}
	if l.unread < 0 {
		l.unread = 0
	}
}

func (l *Log) MarkAllRead() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.entries {
		l.entries[i].Read = true
	}
	l.unread = 0
}

func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	l.unread = 0
}

// Entries returns a copy, newest first.
func (l *Log) Entries() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Notification, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Unread() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unread
}
