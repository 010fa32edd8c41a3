package utils

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SetStatusAndEnd annotates the span with the given attributes, marks it failed when err is set and
// ends it. Cancellation is recorded as an event rather than an error.
func SetStatusAndEnd(span trace.Span, err error, attrs ...attribute.KeyValue) {
	defer span.End()
	span.SetAttributes(attrs...)
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case errors.Is(err, context.Canceled):
		span.AddEvent("canceled")
		span.SetStatus(codes.Unset, "")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
