// Package spans runs a function inside an OpenTelemetry span, recording its
// error and any panic on the span.
//
//	valid, err := spans.StartValErr[bool](ctx, "FormValidator.Validate",
//	    spans.WithAttribute("editform.mode", attribute.StringValue("sync")),
//	).Enter(func(ctx context.Context, span trace.Span) (bool, error) {
//	    return validate(ctx)
//	})
package spans

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "github.com/amp-labs/amp-editform"

type contextKey string

const tracerKey contextKey = "tracer"

// WithTracer makes spans started under ctx use tracer instead of the global
// tracer provider.
func WithTracer(ctx context.Context, tracer trace.Tracer) context.Context {
	return context.WithValue(ctx, tracerKey, tracer)
}

func tracerFromContext(ctx context.Context) trace.Tracer { //nolint:ireturn
	if tracer, ok := ctx.Value(tracerKey).(trace.Tracer); ok && tracer != nil {
		return tracer
	}

	return otel.Tracer(defaultTracerName)
}

// Option configures a span.
type Option func(*runner)

// WithAttribute sets an attribute when the span starts.
func WithAttribute(key attribute.Key, value attribute.Value) Option {
	return func(r *runner) {
		r.attrs = append(r.attrs, attribute.KeyValue{Key: key, Value: value})
	}
}

// WithSpanKind overrides the default SpanKindInternal.
func WithSpanKind(kind trace.SpanKind) Option {
	return func(r *runner) {
		r.kind = kind
	}
}

// WithErrorMessage prefixes the span status description on failure.
func WithErrorMessage(description string) Option {
	return func(r *runner) {
		r.failure = description
	}
}

type runner struct {
	name    string
	kind    trace.SpanKind
	failure string
	attrs   []attribute.KeyValue
}

func (r *runner) setError(span trace.Span, err error) {
	span.RecordError(err)

	if r.failure != "" {
		span.SetStatus(codes.Error, fmt.Sprintf("%s: %s", r.failure, err.Error()))
	} else {
		span.SetStatus(codes.Error, err.Error())
	}
}

func invoke[T any](
	ctx context.Context, name string, opts []Option,
	call func(ctx context.Context, span trace.Span) (T, error),
) (val T, err error) {
	r := &runner{name: name, kind: trace.SpanKindInternal}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	ctx, span := tracerFromContext(ctx).Start(ctx, r.name,
		trace.WithSpanKind(r.kind),
		trace.WithAttributes(r.attrs...))
	defer span.End()

	defer func() {
		if p := recover(); p != nil {
			span.SetAttributes(attribute.Bool("panic", true))
			r.setError(span, fmt.Errorf("panic: %v", p)) //nolint:err113

			panic(p)
		}
	}()

	val, err = call(ctx, span)
	if err != nil {
		r.setError(span, err)
	} else {
		span.SetStatus(codes.Ok, "ok")
	}

	return val, err
}

// StartErrorOrchestrator runs a function that can fail.
type StartErrorOrchestrator struct {
	ctx  context.Context //nolint:containedctx
	name string
	opts []Option
}

// StartErr prepares a span for a function returning only an error.
func StartErr(ctx context.Context, name string, opts ...Option) *StartErrorOrchestrator {
	return &StartErrorOrchestrator{ctx: ctx, name: name, opts: opts}
}

// Enter runs f inside the span.
func (o *StartErrorOrchestrator) Enter(f func(ctx context.Context, span trace.Span) error) error {
	_, err := invoke(o.ctx, o.name, o.opts, func(ctx context.Context, span trace.Span) (struct{}, error) {
		return struct{}{}, f(ctx, span)
	})

	return err
}

// StartValueErrorOrchestrator runs a function returning a value and an error.
type StartValueErrorOrchestrator[T any] struct {
	ctx  context.Context //nolint:containedctx
	name string
	opts []Option
}

// StartValErr prepares a span for a function returning a value and an error.
func StartValErr[T any](ctx context.Context, name string, opts ...Option) *StartValueErrorOrchestrator[T] {
	return &StartValueErrorOrchestrator[T]{ctx: ctx, name: name, opts: opts}
}

// Enter runs f inside the span.
func (o *StartValueErrorOrchestrator[T]) Enter(f func(ctx context.Context, span trace.Span) (T, error)) (T, error) {
	return invoke(o.ctx, o.name, o.opts, f)
}
