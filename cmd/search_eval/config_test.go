package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DjordjeVuckovic/search-eval/internal/config"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags([]string{"-mode", "score", "-input", "rows.jsonl", "-evaluators", "recall@5, ap,", "-k", "1,20"})
	require.NoError(t, err)
	assert.Equal(t, "score", cfg.Mode)
	assert.Equal(t, []string{"recall@5", "ap"}, cfg.evaluatorNames())

	ks, err := cfg.parseKValues()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 20}, ks)

	_, err = parseFlags([]string{"-unknown"})
	assert.Error(t, err)
}

func TestParseKValues(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{in: "3,5,10", want: []int{3, 5, 10}},
		{in: " 3 , 5 ", want: []int{3, 5}},
		{in: "", want: []int{}},
		{in: "3,x", wantErr: true},
		{in: "0", wantErr: true},
		{in: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := cliConfig{KValues: tt.in}.parseKValues()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetricsConfig(t *testing.T) {
	mc, err := cliConfig{KValues: "5", FoundK: 3, Scheme: "url"}.metricsConfig()
	require.NoError(t, err)
	set, err := mc.EvaluatorSet()
	require.NoError(t, err)
	assert.Equal(t, []string{"recall_at_5", "precision_at_5", "f1_score_at_5", "average_precision", "reciprocal_rank", "found_at_3"}, set.Keys())

	_, err = cliConfig{KValues: "5", FoundK: -1}.metricsConfig()
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	es := &spec.EvalSpec{
		Runs:     spec.RunsConfig{Top: 10, Concurrency: 1, Iterations: 1},
		Tracking: spec.TrackingConfig{Experiment: "search"},
	}

	require.NoError(t, cliConfig{}.applyOverrides(es))
	assert.Equal(t, 10, es.Runs.Top)
	assert.Equal(t, "search", es.Tracking.Experiment)

	require.NoError(t, cliConfig{Top: 5, Concurrency: 4, RPS: 2.5, Warmup: 1, Runs: 3, ExperimentType: "hybrid"}.applyOverrides(es))
	assert.Equal(t, spec.RunsConfig{Top: 5, Concurrency: 4, RequestsPerSecond: 2.5, Warmup: 1, Iterations: 3}, es.Runs)
	assert.Equal(t, "hybrid", es.Tracking.Experiment)
}

const metricsSpec = `
targets:
  api:
    type: api
    connection: http://localhost:8080/search
metrics:
  k_values: [1, 20]
  scheme: url
jobs:
  - name: smoke
    dataset: gt.jsonl
    targets: [api]
`

func TestLoadSpec_MetricsFlagsMergeIntoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.yaml")
	require.NoError(t, os.WriteFile(path, []byte(metricsSpec), 0644))

	tests := []struct {
		name string
		args []string
		want spec.MetricsConfig
	}{
		{
			name: "no metrics flags keep the file",
			args: nil,
			want: spec.MetricsConfig{KValues: []int{1, 20}, Scheme: "url"},
		},
		{
			name: "found-k adds to the file settings",
			args: []string{"-found-k", "3"},
			want: spec.MetricsConfig{KValues: []int{1, 20}, Scheme: "url", FoundK: 3},
		},
		{
			name: "k and scheme alone apply",
			args: []string{"-k", "5", "-scheme", "location"},
			want: spec.MetricsConfig{KValues: []int{5}, Scheme: "location"},
		},
		{
			name: "evaluators keep k values and scheme",
			args: []string{"-evaluators", "recall@5,ap"},
			want: spec.MetricsConfig{Evaluators: []string{"recall@5", "ap"}, KValues: []int{1, 20}, Scheme: "url"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseFlags(append([]string{"-spec", path}, tt.args...))
			require.NoError(t, err)

			es, err := loadSpec(context.Background(), cfg, &config.Config{}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, es.Metrics)
		})
	}
}

func TestApplyOverrides_InvalidMetricsFlags(t *testing.T) {
	for _, args := range [][]string{{"-k", "0"}, {"-found-k", "-2"}} {
		cfg, err := parseFlags(args)
		require.NoError(t, err)
		assert.Error(t, cfg.applyOverrides(&spec.EvalSpec{}), args)
	}
}
