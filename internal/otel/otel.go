// Package otel wires OpenTelemetry tracing to the executor's eventbus
// events. If no endpoint is configured, Setup is a no-op.
package otel

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"

	eventbus "github.com/weftql/weft/internal/eventbus"
	events "github.com/weftql/weft/internal/events"
	reqid "github.com/weftql/weft/internal/reqid"
)

// Setup configures the OTLP trace exporter and attaches eventbus
// subscribers. The returned function shuts the tracer provider down.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub := &subscriber{tracer: otel.Tracer("weft")}
	sub.register()

	return tp.Shutdown, nil
}

type subscriber struct {
	tracer         trace.Tracer
	executionSpans sync.Map // rid -> trace.Span
	resolveSpans   sync.Map // rid:path -> trace.Span
}

func (s *subscriber) register() {
	eventbus.Subscribe(func(ctx context.Context, e events.ExecutionStart) {
		rid, _ := reqid.FromContext(ctx)
		_, span := s.tracer.Start(ctx, "graphql.execute")
		span.SetAttributes(
			attribute.String("graphql.operation.name", e.OperationName),
			attribute.String("graphql.operation.type", e.OperationType),
		)
		s.executionSpans.Store(rid, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ExecutionFinish) {
		rid, _ := reqid.FromContext(ctx)
		v, ok := s.executionSpans.LoadAndDelete(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(attribute.Int("graphql.error_count", e.ErrorCount))
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ResolveStart) {
		rid, _ := reqid.FromContext(ctx)
		parent := ctx
		if v, ok := s.executionSpans.Load(rid); ok {
			parent = trace.ContextWithSpan(ctx, v.(trace.Span))
		}
		_, span := s.tracer.Start(parent, "graphql.resolve")
		span.SetAttributes(
			attribute.String("graphql.field.parent_type", e.ObjectType),
			attribute.String("graphql.field.name", e.Field),
			attribute.String("graphql.field.path", fmt.Sprint(e.Path)),
		)
		s.resolveSpans.Store(resolveKey(rid, e.Path), span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.ResolveFinish) {
		rid, _ := reqid.FromContext(ctx)
		v, ok := s.resolveSpans.LoadAndDelete(resolveKey(rid, e.Path))
		if !ok {
			return
		}
		span := v.(trace.Span)
		if e.Err != nil {
			span.RecordError(e.Err)
		}
		span.End()
	})
}

func resolveKey(rid int64, path any) string {
	return fmt.Sprintf("%d:%v", rid, path)
}
