package emit

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OtelEmitter turns each event into an immediately-ended OpenTelemetry span
// named after the event's Msg, with ExecutionID/BlueprintID/NodeID and every
// Meta entry recorded as span attributes. Events represent points in time,
// not durations, so the span is started and ended in the same call.
type OtelEmitter struct {
	tracer trace.Tracer
}

// NewOtelEmitter returns an Emitter backed by tracer (e.g.
// otel.Tracer("flowcraft")).
func NewOtelEmitter(tracer trace.Tracer) *OtelEmitter {
	return &OtelEmitter{tracer: tracer}
}

func (o *OtelEmitter) Emit(event Event) {
	o.emitOne(context.Background(), event)
}

func (o *OtelEmitter) emitOne(ctx context.Context, event Event) {
	_, span := o.tracer.Start(ctx, event.Msg)
	defer span.End()

	span.SetAttributes(
		attribute.String("executionId", event.ExecutionID),
		attribute.String("blueprintId", event.BlueprintID),
		attribute.String("nodeId", event.NodeID),
	)
	for k, v := range event.Meta {
		span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", v)))
	}
	if errMsg, ok := event.Meta["error"].(string); ok {
		span.SetStatus(codes.Error, errMsg)
		span.RecordError(fmt.Errorf("%s", errMsg))
	}
}

func (o *OtelEmitter) EmitBatch(ctx context.Context, events []Event) error {
	for _, event := range events {
		o.emitOne(ctx, event)
	}
	return nil
}

// Flush is a no-op here; export timing is governed by the configured
// SpanProcessor/TracerProvider, not by the emitter.
func (o *OtelEmitter) Flush(context.Context) error { return nil }
