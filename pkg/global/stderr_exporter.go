package global

import (
	"context"
	"log"
	"strings"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type stderrExporter struct{}

// NewStderrExporter produces the trivial wiring to route trace spans
// to stderr. This is noisy and only intended for basic debugging.
func NewStderrExporter() sdktrace.SpanExporter {
	return stderrExporter{}
}

func (stderrExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		log.Printf("%s %s %s %s %s %s",
			span.StartTime().Format(time.RFC3339),
			span.EndTime().Sub(span.StartTime()).String(),
			span.Name(),
			span.Status().Code.String(),
			span.Status().Description,
			formatAttributes(span))
	}
	return nil
}

func (stderrExporter) Shutdown(ctx context.Context) error {
	return nil
}

func formatAttributes(span sdktrace.ReadOnlySpan) string {
	var out strings.Builder
	out.WriteString("{")
	for i, attr := range span.Attributes() {
		if i > 0 {
			out.WriteString(",")
		}
		out.WriteString(string(attr.Key))
		out.WriteString("=")
		out.WriteString(attr.Value.Emit())
	}
	out.WriteString("}")
	return out.String()
}
