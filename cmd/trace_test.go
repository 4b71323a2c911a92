// Copyright © 2018 The ELPS authors

package cmd

import (
	"context"
	"testing"

	"github.com/iBelieve/rasp/diagnostic"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tracedRun evaluates text with tracing in the given mode and returns the
// logged span entries.
func tracedRun(t *testing.T, mode string, text string) []*logrus.Entry {
	t.Helper()
	logger, hook := test.NewNullLogger()
	ctx := context.Background()
	tr, err := startTracing(ctx, mode, "run-1", logger)
	require.NoError(t, err)

	r := &runner{
		log:    logger,
		config: envConfig(logger, 0),
		tracer: tr,
		stdout: &nopWriter{},
		stderr: &nopWriter{},
		color:  diagnostic.ColorNever,
	}
	require.NoError(t, r.run(exprs(text)))
	require.NoError(t, tr.shutdown(ctx))

	var spans []*logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Message == "span" {
			spans = append(spans, entry)
		}
	}
	return spans
}

func findSpan(spans []*logrus.Entry, name string) *logrus.Entry {
	for _, s := range spans {
		if s.Data["span"] == name {
			return s
		}
	}
	return nil
}

func TestTraceOpenTelemetry(t *testing.T) {
	spans := tracedRun(t, traceOtel, "(defun double (x) (* x 2)) (double 4)")
	require.NotEmpty(t, spans)

	root := findSpan(spans, "rasp run")
	require.NotNil(t, root, "root span should be logged")
	assert.Equal(t, "run-1", root.Data[runIDAttribute])
	assert.Greater(t, len(spans), 1, "calls should be traced as child spans")
	for _, s := range spans {
		if s != root {
			assert.Equal(t, root.Data["trace_id"], s.Data["trace_id"])
			assert.NotEmpty(t, s.Data["parent_id"])
		}
	}
}

func TestTraceOpenCensus(t *testing.T) {
	spans := tracedRun(t, traceOpenCensus, "(defun double (x) (* x 2)) (double 4)")
	require.NotEmpty(t, spans)

	root := findSpan(spans, "rasp run")
	require.NotNil(t, root, "root span should be logged")
	assert.Equal(t, "run-1", root.Data[runIDAttribute])
	assert.Greater(t, len(spans), 1, "calls should be traced as child spans")
}

func TestTraceNone(t *testing.T) {
	assert.Empty(t, tracedRun(t, traceNone, "(+ 1 2)"))
}

func TestTraceInvalidMode(t *testing.T) {
	_, err := startTracing(context.Background(), "bogus", "run-1", logrus.New())
	assert.EqualError(t, err, `invalid trace mode: "bogus"`)
}

type nopWriter struct{}

func (*nopWriter) Write(b []byte) (int, error) { return len(b), nil }
