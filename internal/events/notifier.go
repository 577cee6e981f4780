package events

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Notifier receives events synchronously, in emission order.
type Notifier interface {
	Notify(e Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Event)

// Notify calls f(e).
func (f NotifierFunc) Notify(e Event) { f(e) }

// Nop discards every event.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(Event) {}

// Handler handles a single event.
type Handler func(Event)

// Router dispatches events to handlers subscribed by kind.
// Handlers run on the caller's goroutine in subscription order.
type Router struct {
	handlers map[Kind][]Handler
	all      []Handler
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{handlers: make(map[Kind][]Handler)}
}

// Subscribe registers h for events of the given kinds.
func (r *Router) Subscribe(h Handler, kinds ...Kind) {
	for _, k := range kinds {
		r.handlers[k] = append(r.handlers[k], h)
	}
}

// SubscribeAll registers h for every event.
func (r *Router) SubscribeAll(h Handler) {
	r.all = append(r.all, h)
}

// HandlerCount returns the number of handlers that would see an event of kind k.
func (r *Router) HandlerCount(k Kind) int {
	return len(r.handlers[k]) + len(r.all)
}

// Notify implements Notifier.
func (r *Router) Notify(e Event) {
	for _, h := range r.handlers[e.Kind()] {
		h(e)
	}
	for _, h := range r.all {
		h(e)
	}
}

// Recorder keeps every event it receives. Useful in tests and for the
// sandbox's event log.
type Recorder struct {
	Events []Event
}

// Notify implements Notifier.
func (r *Recorder) Notify(e Event) {
	r.Events = append(r.Events, e)
}

// OfKind returns the recorded events of kind k, oldest first.
func (r *Recorder) OfKind(k Kind) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind() == k {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many events of kind k were recorded.
func (r *Recorder) Count(k Kind) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind() == k {
			n++
		}
	}
	return n
}

// Last returns the most recent event, or nil.
func (r *Recorder) Last() Event {
	if len(r.Events) == 0 {
		return nil
	}
	return r.Events[len(r.Events)-1]
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.Events = nil
}

// Logger forwards events to a charmbracelet logger at debug level.
type Logger struct {
	log *log.Logger
}

// NewLogger wraps l. A nil logger yields a sink that drops events.
func NewLogger(l *log.Logger) Logger {
	return Logger{log: l}
}

// Notify implements Notifier.
func (l Logger) Notify(e Event) {
	if l.log == nil {
		return
	}
	l.log.Debug(e.Kind().String(), "event", fmt.Sprintf("%+v", e))
}

// Multi fans an event out to several notifiers in order.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(e Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(e)
		}
	}
}
