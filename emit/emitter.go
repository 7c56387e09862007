package emit

import "context"

// Emitter receives observability events from a running blueprint execution.
//
// Implementations must not block execution for long and must not panic;
// Emit errors have nowhere to go but a log line inside the implementation
// itself.
type Emitter interface {
	// Emit sends a single event.
	Emit(event Event)

	// EmitBatch sends multiple events, preserving order.
	EmitBatch(ctx context.Context, events []Event) error

	// Flush blocks until every buffered event has been delivered.
	Flush(ctx context.Context) error
}
