// Package notify carries the transient messages ("toasts") raised by the
// record store to whoever is rendering it.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Severity decides how a notification is styled.
type Severity string

const (
	SeverityInfo        Severity = "info"
	SeverityDestructive Severity = "destructive"
)

// Notification is one transient message.
type Notification struct {
	Title       string
	Description string
	Severity    Severity
}

// Sink accepts notifications. Implementations must not block.
type Sink interface {
	Notify(n Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Notification)

func (f SinkFunc) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Sink = SinkFunc(func(Notification) {})

// Queue buffers notifications until the next render drains them.
type Queue struct {
	mu    sync.Mutex
	items []Notification
}

func (q *Queue) Notify(n Notification) {
	q.mu.Lock()
	q.items = append(q.items, n)
	q.mu.Unlock()
}

// Drain returns the buffered notifications and empties the queue.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Log writes notifications to a logger; destructive ones at warn level.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(n Notification) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if n.Severity == SeverityDestructive {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, n.Description, "title", n.Title)
}

// Writer prints notifications one per line, as the CLI shows them.
type Writer struct {
	W io.Writer
}

func (w Writer) Notify(n Notification) {
	fmt.Fprintf(w.W, "%s: %s\n", n.Title, n.Description)
}

// Multi fans a notification out to several sinks.
type Multi []Sink

func (m Multi) Notify(n Notification) {
	for _, s := range m {
		s.Notify(n)
	}
}
