package stream

import (
	"context"
	"sync"
	"time"

	"github.com/YossiCharash/project-menagment-sub004/internal/dashboard"
)

// RefreshEvent carries one dashboard refresh to SSE clients.
type RefreshEvent struct {
	Projects []dashboard.Project `json:"projects"`
	AsOf     time.Time           `json:"as_of"`
}

// Stream fan-outs dashboard refresh events to all active subscribers
// (SSE clients).
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan RefreshEvent
	next int
	last *RefreshEvent
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan RefreshEvent)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. A late joiner immediately receives the most recent refresh. The
// channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan RefreshEvent {
	ch := make(chan RefreshEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	if s.last != nil {
		ch <- *s.last
	}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers and records it for late
// joiners.
func (s *Stream) Publish(evt RefreshEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &evt
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}

// PublishProjects wraps a poller snapshot into an event. It matches the
// publish hook signature of the dashboard poller.
func (s *Stream) PublishProjects(projects []dashboard.Project) {
	s.Publish(RefreshEvent{Projects: projects, AsOf: time.Now().UTC()})
}
