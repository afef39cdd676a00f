// Package event fans out store changes to whatever renders them, without
// the stores depending on their readers.
package event

import (
	"log/slog"
	"sync"
)

type Type int

const (
	SessionChanged Type = iota
	UserUpdated
	PostsChanged
	JobsChanged
	MessagesChanged
	NotificationsChanged
)

var typeNames = map[Type]string{
	SessionChanged:       "session_changed",
	UserUpdated:          "user_updated",
	PostsChanged:         "posts_changed",
	JobsChanged:          "jobs_changed",
	MessagesChanged:      "messages_changed",
	NotificationsChanged: "notifications_changed",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Event describes one change. UserID is the acting or affected user when
// there is one.
type Event struct {
	Type   Type
	UserID string
}

type Handler func(Event)

// Bus delivers events synchronously, in subscription order, on the
// publisher's goroutine. Publishers must not hold their own locks while
// publishing.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Type][]Handler
}

func NewBus() *Bus {
	return &Bus{subscribers: make(map[Type][]Handler)}
}

func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[t] = append(b.subscribers[t], h)
}

// Publish is safe on a nil Bus.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[e.Type]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		deliver(h, e)
	}
}

func deliver(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in event handler", "event", e.Type.String(), "panic", r)
		}
	}()
	h(e)
}
