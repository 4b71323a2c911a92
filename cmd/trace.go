// Copyright © 2018 The ELPS authors

package cmd

import (
	"context"
	"fmt"

	"github.com/iBelieve/rasp/lisp"
	"github.com/iBelieve/rasp/lisp/x/profiler"
	"github.com/sirupsen/logrus"
	octrace "go.opencensus.io/trace"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	traceNone       = "none"
	traceOtel       = "otel"
	traceOpenCensus = "opencensus"
)

const runIDAttribute = "rasp.run_id"

// tracer attaches call tracing to the runtimes of a single CLI run.  All
// traced calls are children of one root span carrying the run id.
type tracer struct {
	mode     string
	ctx      context.Context
	shutdown func(context.Context) error
}

// startTracing installs the tracing backend selected by mode and starts the
// root span of the run.  Finished spans are logged through log.
func startTracing(ctx context.Context, mode string, runID string, log logrus.FieldLogger) (*tracer, error) {
	t := &tracer{mode: mode, ctx: ctx}
	switch mode {
	case "", traceNone:
		t.shutdown = func(context.Context) error { return nil }
	case traceOtel:
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(&logSpanExporter{log: log}),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
		otel.SetTracerProvider(tp)
		var span trace.Span
		t.ctx, span = tp.Tracer(profiler.DefaultTracerName).Start(ctx, "rasp run",
			trace.WithAttributes(attribute.String(runIDAttribute, runID)))
		t.shutdown = func(ctx context.Context) error {
			span.End()
			return tp.Shutdown(ctx)
		}
	case traceOpenCensus:
		exporter := &logCensusExporter{log: log}
		octrace.RegisterExporter(exporter)
		octrace.ApplyConfig(octrace.Config{DefaultSampler: octrace.AlwaysSample()})
		var span *octrace.Span
		t.ctx, span = octrace.StartSpan(ctx, "rasp run")
		span.AddAttributes(octrace.StringAttribute(runIDAttribute, runID))
		t.shutdown = func(context.Context) error {
			span.End()
			octrace.UnregisterExporter(exporter)
			return nil
		}
	default:
		return nil, fmt.Errorf("invalid trace mode: %q", mode)
	}
	return t, nil
}

// profiler returns a profiler recording the calls made in runtime, or nil
// when tracing is disabled.
func (t *tracer) profiler(runtime *lisp.Runtime) lisp.Profiler {
	switch t.mode {
	case traceOtel:
		return profiler.NewOpenTelemetryAnnotator(runtime, t.ctx)
	case traceOpenCensus:
		return profiler.NewOpenCensusAnnotator(runtime, t.ctx)
	}
	return nil
}

// logSpanExporter is an OpenTelemetry span exporter which logs each span.
type logSpanExporter struct {
	log logrus.FieldLogger
}

var _ sdktrace.SpanExporter = (*logSpanExporter)(nil)

func (e *logSpanExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		fields := logrus.Fields{
			"span":     span.Name(),
			"trace_id": span.SpanContext().TraceID().String(),
			"span_id":  span.SpanContext().SpanID().String(),
			"duration": span.EndTime().Sub(span.StartTime()),
		}
		if parent := span.Parent(); parent.IsValid() {
			fields["parent_id"] = parent.SpanID().String()
		}
		for _, kv := range span.Attributes() {
			fields[string(kv.Key)] = kv.Value.Emit()
		}
		e.log.WithFields(fields).Info("span")
	}
	return nil
}

func (e *logSpanExporter) Shutdown(context.Context) error {
	return nil
}

// logCensusExporter is an OpenCensus exporter which logs each span.
type logCensusExporter struct {
	log logrus.FieldLogger
}

var _ octrace.Exporter = (*logCensusExporter)(nil)

func (e *logCensusExporter) ExportSpan(s *octrace.SpanData) {
	fields := logrus.Fields{
		"span":     s.Name,
		"trace_id": s.TraceID.String(),
		"span_id":  s.SpanID.String(),
		"duration": s.EndTime.Sub(s.StartTime),
	}
	if s.ParentSpanID != (octrace.SpanID{}) {
		fields["parent_id"] = s.ParentSpanID.String()
	}
	for k, v := range s.Attributes {
		fields[k] = v
	}
	e.log.WithFields(fields).Info("span")
}
