package spec

import (
	"fmt"
	"os"
	"strconv"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/docid"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/evaluator"
	"gopkg.in/yaml.v3"
)

const (
	defaultTop        = 10
	defaultExperiment = "search"
)

func LoadFromFile(path string) (*EvalSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file: %w", err)
	}
	return Parse(data)
}

// Parse decodes an eval spec. ${VAR} references are expanded from the environment first,
// so secrets such as api keys can stay out of the file. Positional SQL parameters such as
// $1 are left untouched.
func Parse(data []byte) (*EvalSpec, error) {
	var s EvalSpec
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), &s); err != nil {
		return nil, fmt.Errorf("parse spec YAML: %w", err)
	}
	if err := validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks a spec built in code and applies the same defaults as Parse.
func (s *EvalSpec) Validate() error {
	return validate(s)
}

func expandEnv(s string) string {
	return os.Expand(s, func(name string) string {
		if _, err := strconv.Atoi(name); err == nil {
			return "$" + name
		}
		return os.Getenv(name)
	})
}

var validTargetTypes = map[string]bool{
	TargetAzureSearch:   true,
	TargetElasticsearch: true,
	TargetPostgres:      true,
	TargetAPI:           true,
}

var validSinkTypes = map[string]bool{
	SinkMlflow:   true,
	SinkPostgres: true,
	SinkLog:      true,
}

func validate(s *EvalSpec) error {
	if len(s.Jobs) == 0 {
		return fmt.Errorf("spec has no jobs")
	}
	if len(s.Targets) == 0 {
		return fmt.Errorf("spec has no targets")
	}
	for i, j := range s.Jobs {
		if j.Name == "" {
			return fmt.Errorf("job at index %d has no name", i)
		}
		if j.Dataset == "" {
			return fmt.Errorf("job %q has no dataset", j.Name)
		}
		if len(j.Targets) == 0 {
			return fmt.Errorf("job %q has no targets", j.Name)
		}
		for _, ref := range j.Targets {
			if _, ok := s.Targets[ref]; !ok {
				return fmt.Errorf("job %q references unknown target %q", j.Name, ref)
			}
		}
	}
	for name, t := range s.Targets {
		if t.Type == "" {
			return fmt.Errorf("target %q has no type", name)
		}
		if !validTargetTypes[t.Type] {
			return fmt.Errorf("target %q has invalid type %q", name, t.Type)
		}
		if t.Connection == "" {
			return fmt.Errorf("target %q has no connection", name)
		}
		if t.Type == TargetPostgres && t.Query == "" {
			return fmt.Errorf("target %q has no query", name)
		}
		if (t.Type == TargetAzureSearch || t.Type == TargetElasticsearch) && t.Index == "" {
			return fmt.Errorf("target %q has no index", name)
		}
	}
	for i, sink := range s.Tracking.Sinks {
		if !validSinkTypes[sink.Type] {
			return fmt.Errorf("tracking sink at index %d has invalid type %q", i, sink.Type)
		}
		if sink.Type != SinkLog && sink.URI == "" {
			return fmt.Errorf("tracking sink %q has no uri", sink.Type)
		}
	}

	if len(s.Metrics.KValues) == 0 {
		s.Metrics.KValues = append([]int(nil), evaluator.DefaultKValues...)
	}
	for _, k := range s.Metrics.KValues {
		if k <= 0 {
			return fmt.Errorf("k_values must be positive, got %d", k)
		}
	}
	if s.Metrics.FoundK < 0 {
		return fmt.Errorf("found_k must not be negative, got %d", s.Metrics.FoundK)
	}
	if _, err := docid.ParseScheme(s.Metrics.Scheme); err != nil {
		return err
	}
	if _, err := s.Metrics.EvaluatorSet(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	if s.Runs.Top <= 0 {
		s.Runs.Top = defaultTop
	}
	if s.Runs.Concurrency <= 0 {
		s.Runs.Concurrency = 1
	}
	if s.Runs.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative")
	}
	if s.Runs.Iterations <= 0 {
		s.Runs.Iterations = 1
	}
	if s.Tracking.Experiment == "" {
		s.Tracking.Experiment = defaultExperiment
	}
	return nil
}

// EvaluatorSet builds the configured evaluators. Without an explicit list it registers
// recall, precision and F1 at every k value plus AP and RR, and Found@K when found_k is set.
// The scheme applies to every evaluator except Found@K, which always matches on url.
func (m MetricsConfig) EvaluatorSet() (*evaluator.Set, error) {
	var opts []evaluator.Option
	if m.Scheme != "" {
		scheme, err := docid.ParseScheme(m.Scheme)
		if err != nil {
			return nil, err
		}
		opts = append(opts, evaluator.WithScheme(scheme))
	}

	if len(m.Evaluators) > 0 {
		evs := make([]evaluator.Evaluator, 0, len(m.Evaluators))
		for _, name := range m.Evaluators {
			e, err := evaluator.ParseEvaluator(name)
			if err != nil {
				return nil, err
			}
			if e.Kind() != evaluator.KindFound && len(opts) > 0 {
				if e, err = evaluator.ParseEvaluator(name, opts...); err != nil {
					return nil, err
				}
			}
			evs = append(evs, e)
		}
		return evaluator.NewSet(evs...)
	}

	kValues := m.KValues
	if len(kValues) == 0 {
		kValues = evaluator.DefaultKValues
	}
	set, err := evaluator.StandardSet(kValues, opts...)
	if err != nil {
		return nil, err
	}
	if m.FoundK > 0 {
		found, err := evaluator.New(evaluator.KindFound, evaluator.WithK(m.FoundK))
		if err != nil {
			return nil, err
		}
		return set.With(found)
	}
	return set, nil
}
