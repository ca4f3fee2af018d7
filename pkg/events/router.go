// Package events implements the in-memory event router that decouples the
// realtime transport from consumers. Multiple independent parts of the UI
// can subscribe to the same backend event without interfering with each
// other's lifecycle.
package events

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tabletools/core/logging"
)

// Handler processes the raw payload of a named event.
type Handler func(data json.RawMessage)

// Subscription represents one registered handler. Callers pair every
// Subscribe with a Cancel (acquire on mount, release on unmount) instead of
// relying on handler identity, which Go cannot compare.
type Subscription struct {
	router *Router
	event  string
	id     uint64
}

// Event returns the event name this subscription is registered for.
func (s *Subscription) Event() string {
	return s.event
}

// Cancel removes the handler from the router. Cancelling twice is a no-op.
func (s *Subscription) Cancel() {
	s.router.remove(s.event, s.id)
}

type registration struct {
	id      uint64
	handler Handler
}

// Router maps event names to ordered lists of handlers and dispatches
// incoming messages to them. It is safe for concurrent use.
type Router struct {
	mu       sync.RWMutex
	handlers map[string][]registration
	nextID   uint64
	logger   *logrus.Entry
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{
		handlers: make(map[string][]registration),
		logger:   logging.NewLogger("events"),
	}
}

// Subscribe appends handler to the ordered list for the event. No
// uniqueness is enforced: subscribing the same function twice yields two
// invocations per message, so callers must keep the returned Subscription
// and Cancel it on teardown.
func (r *Router) Subscribe(event string, handler Handler) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.handlers[event] = append(r.handlers[event], registration{id: r.nextID, handler: handler})
	return &Subscription{router: r, event: event, id: r.nextID}
}

// UnsubscribeAll removes every handler registered for the event.
func (r *Router) UnsubscribeAll(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, event)
}

// Reset removes all handlers for all events.
func (r *Router) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = make(map[string][]registration)
}

// HandlerCount returns the number of handlers registered for the event.
// The connection layer uses this to decide when to stop delivering an
// event from the transport.
func (r *Router) HandlerCount(event string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[event])
}

// Events returns the names of all events with at least one handler.
func (r *Router) Events() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// Dispatch invokes every currently registered handler for the event, in
// registration order, synchronously on the calling goroutine. Dispatching
// an event with no handlers is a no-op. A panicking handler must not
// prevent subsequent handlers from running.
func (r *Router) Dispatch(event string, data json.RawMessage) {
	r.mu.RLock()
	regs := make([]registration, len(r.handlers[event]))
	copy(regs, r.handlers[event])
	r.mu.RUnlock()

	for _, reg := range regs {
		r.invoke(event, reg.handler, data)
	}
}

func (r *Router) invoke(event string, handler Handler, data json.RawMessage) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.WithFields(logrus.Fields{
				"event": event,
				"panic": rec,
			}).Error("Event handler panicked")
		}
	}()
	handler(data)
}

func (r *Router) remove(event string, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	regs := r.handlers[event]
	for i, reg := range regs {
		if reg.id == id {
			r.handlers[event] = append(regs[:i:i], regs[i+1:]...)
			break
		}
	}
	if len(r.handlers[event]) == 0 {
		delete(r.handlers, event)
	}
}
