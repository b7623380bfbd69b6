package event

import (
	"slices"
	"sync"
)

// Type names an event.
type Type string

// Event types emitted by the graph model.
const (
	NodeAdd    Type = "node:add"
	NodeDndAdd Type = "node:dnd-add"
	NodeDelete Type = "node:delete"
	NodeMove   Type = "node:move"
	NodesMove  Type = "nodes:move"

	EdgeAdd    Type = "edge:add"
	EdgeDelete Type = "edge:delete"
	EdgeAdjust Type = "edge:adjust"

	PropertiesChange Type = "properties:change"
	TextUpdate       Type = "text:update"
	StateChange      Type = "element:state-change"
	ZIndexChange     Type = "element:z-index-change"
	HoverChange      Type = "element:hover"
	HitableChange    Type = "element:hitable-change"
	SelectChange     Type = "element:select"
	TextMove         Type = "text:move"
	StyleChange      Type = "style:change"
	SelectionChange  Type = "selection:change"

	GraphClear Type = "graph:clear"

	// Any subscribes a handler to every event type.
	Any Type = "*"
)

// Event is the envelope delivered to handlers.
type Event struct {
	Type Type `json:"type"`
	Data any  `json:"data"`
}

// Handler receives events.
type Handler func(Event)

type listener struct {
	id   uint64
	fn   Handler
	once bool
}

// Emitter dispatches events to registered handlers.
//
// Registration is safe for concurrent use so renderers may subscribe from
// other goroutines, but dispatch runs on the emitting goroutine.
type Emitter struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[Type][]listener
}

// New creates an empty emitter.
func New() *Emitter {
	return &Emitter{listeners: make(map[Type][]listener)}
}

var defaultEmitter = New()

// Default returns the process-wide emitter.
func Default() *Emitter { return defaultEmitter }

// On registers fn for events of type t and returns a function that removes it.
func (e *Emitter) On(t Type, fn Handler) (off func()) {
	return e.add(t, fn, false)
}

// Once registers fn to run for the next event of type t only.
func (e *Emitter) Once(t Type, fn Handler) (off func()) {
	return e.add(t, fn, true)
}

func (e *Emitter) add(t Type, fn Handler, once bool) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	id := e.nextID
	e.listeners[t] = append(e.listeners[t], listener{id: id, fn: fn, once: once})
	return func() { e.remove(t, id) }
}

func (e *Emitter) remove(t Type, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[t] = slices.DeleteFunc(e.listeners[t], func(l listener) bool { return l.id == id })
	if len(e.listeners[t]) == 0 {
		delete(e.listeners, t)
	}
}

// Off removes every handler for type t. Passing an empty type clears all handlers.
func (e *Emitter) Off(t Type) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t == "" {
		e.listeners = make(map[Type][]listener)
		return
	}
	delete(e.listeners, t)
}

// Emit delivers an event with payload data to the handlers for t, then to
// wildcard handlers.
func (e *Emitter) Emit(t Type, data any) {
	ev := Event{Type: t, Data: data}
	for _, l := range e.take(t) {
		l.fn(ev)
	}
	if t == Any {
		return
	}
	for _, l := range e.take(Any) {
		l.fn(ev)
	}
}

// take snapshots the listeners for t and drops once-listeners before dispatch,
// so handlers may subscribe or unsubscribe while being called.
func (e *Emitter) take(t Type) []listener {
	e.mu.Lock()
	defer e.mu.Unlock()
	ls := e.listeners[t]
	if len(ls) == 0 {
		return nil
	}
	out := slices.Clone(ls)
	kept := ls[:0]
	for _, l := range ls {
		if !l.once {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		delete(e.listeners, t)
	} else {
		e.listeners[t] = kept
	}
	return out
}

// Listeners returns the number of handlers registered for t.
func (e *Emitter) Listeners(t Type) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[t])
}
