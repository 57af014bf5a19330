package httpclient

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerScope is the instrumentation scope name reported on every span.
const tracerScope = "github.com/parakeet-labs/courier-go/httpclient"

// startSpan opens a client span covering the whole logical call, all retry
// attempts included. With no tracer provider configured the global provider
// is used, which defaults to a no-op.
func (c *Client) startSpan(ctx context.Context, method, url string) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "HTTP "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", url),
		),
	)
}

// recordRetryEvent annotates the span with one scheduled retry.
func recordRetryEvent(span trace.Span, attempt int, cause error, delay time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.Int("retry.attempt", attempt),
		attribute.Int64("retry.delay_ms", delay.Milliseconds()),
	}
	if cause != nil {
		attrs = append(attrs, attribute.String("retry.reason", cause.Error()))
	}
	span.AddEvent("http.retry", trace.WithAttributes(attrs...))
}

// endSpan records the final outcome on the span. Retryable statuses that
// eventually succeeded do not mark the span as errored; only the terminal
// result counts.
func endSpan(span trace.Span, resp *Response, err error) {
	if resp != nil {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	}
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case resp != nil && resp.StatusCode >= 400:
		span.SetStatus(codes.Error, resp.Status)
	}
}
