package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"
)

// Run identifies one evaluation run inside an experiment.
type Run struct {
	Experiment string
	Name       string
	Tags       map[string]string
	Params     map[string]string
	StartTime  time.Time
}

// Sink records the aggregated metrics of a run.
type Sink interface {
	LogMetrics(ctx context.Context, run Run, metrics map[string]float64) error
	Name() string
}

type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) LogMetrics(ctx context.Context, run Run, metrics map[string]float64) error {
	attrs := make([]any, 0, 2*len(metrics)+4)
	attrs = append(attrs, "experiment", run.Experiment, "run", run.Name)
	for _, k := range slices.Sorted(maps.Keys(metrics)) {
		attrs = append(attrs, k, metrics[k])
	}
	s.logger.InfoContext(ctx, "evaluation metrics", attrs...)
	return nil
}

// MultiSink fans out to every sink and reports all failures together.
type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Name() string { return "multi" }

func (m *MultiSink) Len() int { return len(m.sinks) }

func (m *MultiSink) LogMetrics(ctx context.Context, run Run, metrics map[string]float64) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.LogMetrics(ctx, run, metrics); err != nil {
			slog.Error("tracking sink failed", "sink", s.Name(), "run", run.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
