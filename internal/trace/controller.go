package trace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"panelnav/internal/nav"
)

// SpanName is the name of the span recorded for every transition round.
const SpanName = "nav.transition"

// Controller records one span per transition round. It never fails a round.
type Controller struct {
	tracer oteltrace.Tracer
}

// Ensure Controller implements nav.Controller.
var _ nav.Controller = (*Controller)(nil)

// NewController creates a controller recording spans through tp.
func NewController(tp oteltrace.TracerProvider) *Controller {
	return &Controller{tracer: tp.Tracer("panelnav/nav")}
}

// Name implements nav.Named.
func (c *Controller) Name() string { return "trace" }

// Transition implements nav.Controller.
func (c *Controller) Transition(ctx context.Context, view nav.Reader) error {
	op := "unknown"
	var attrs []attribute.KeyValue
	if info, ok := nav.RoundFromContext(ctx); ok {
		op = info.Op.String()
		attrs = append(attrs,
			attribute.Int64("panelnav.round.id", int64(info.ID)),
			attribute.Int("panelnav.round.controllers", info.Controllers),
		)
	}
	attrs = append(attrs, attribute.String("panelnav.round.op", op))

	_, span := c.tracer.Start(ctx, SpanName, oteltrace.WithAttributes(attrs...))
	defer span.End()

	entries := view.Entries()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Panel
	}
	top := ""
	if len(names) > 0 {
		top = names[len(names)-1]
	}
	span.SetAttributes(
		attribute.Int("panelnav.stack.depth", len(entries)),
		attribute.String("panelnav.stack.top", top),
	)
	span.AddEvent("stack", oteltrace.WithAttributes(attribute.StringSlice("panelnav.stack.panels", names)))
	return nil
}
