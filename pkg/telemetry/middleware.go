package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracedSolve wraps a route-solve call in a span, recording its outcome.
// It replaces a gRPC server interceptor's job (trace every inbound call)
// for a library with no RPC transport of its own: RouteService.Solve runs its
// solve through here; SolveBoth and InvalidateGraphCache do not open a span.
func TracedSolve(ctx context.Context, operation string, fn func(context.Context) error) error {
	ctx, span := StartSpan(ctx, operation, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	span.SetAttributes(attribute.String("solve.operation", operation))

	err := fn(ctx)

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return err
}
