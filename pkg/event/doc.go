// Package event provides the synchronous publish/subscribe channel the graph
// model uses to announce changes.
//
// # Delivery
//
// [Emitter.Emit] calls every handler registered for the event type in-line,
// in registration order, before it returns. There is no buffering or
// goroutine hand-off: a caller that mutates the graph observes all handler
// side effects once the mutating call returns. A handler that panics aborts
// the remaining dispatch for that event and the panic propagates out of the
// mutator.
//
// # Envelope
//
// Every event carries its payload in [Event.Data]. For element events the
// payload is the element snapshot (model.NodeData or model.EdgeData).
//
//	em := event.New()
//	em.On(event.NodeAdd, func(e event.Event) {
//	    fmt.Println("added", e.Data)
//	})
//
// # Wildcard
//
// Handlers registered for [Any] receive every event after the type-specific
// handlers have run.
package event
