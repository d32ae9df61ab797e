package main

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/spec"
	"github.com/DjordjeVuckovic/search-eval/pkg/stringsutil"
)

type cliConfig struct {
	Mode           string
	SpecPath       string
	DatasetPath    string
	InputPath      string
	Evaluators     string
	KValues        string
	FoundK         int
	Scheme         string
	Top            int
	Concurrency    int
	RPS            float64
	Warmup         int
	Runs           int
	Output         string
	RowsOutput     string
	PoolPath       string
	AnnotatedPath  string
	Depth          int
	ExperimentType string
	NoTrack        bool

	// set holds the names of flags given on the command line.
	set map[string]bool
}

func parseFlags(args []string) (cliConfig, error) {
	cfg := cliConfig{}
	fs := flag.NewFlagSet("search_eval", flag.ContinueOnError)

	fs.StringVar(&cfg.Mode, "mode", "eval", "Run mode: eval, score, pool, annotate or merge")
	fs.StringVar(&cfg.SpecPath, "spec", "", "Path to eval spec YAML (multi-job mode)")
	fs.StringVar(&cfg.DatasetPath, "dataset", "", "Ground truth dataset (.jsonl or .yaml), evaluated against the Azure index from the environment")
	fs.StringVar(&cfg.InputPath, "input", "", "JSONL of {search_result, ground_truth} rows (score mode)")
	fs.StringVar(&cfg.Evaluators, "evaluators", "", "Evaluators, comma-separated, e.g. recall@5,ap (default: recall/precision/f1 at every k plus ap and rr)")
	fs.StringVar(&cfg.KValues, "k", "3,5,10", "K values for the default evaluators, comma-separated")
	fs.IntVar(&cfg.FoundK, "found-k", 0, "Add found@K with this K (0 disables)")
	fs.StringVar(&cfg.Scheme, "scheme", "", "Document identifier scheme: location or url")
	fs.IntVar(&cfg.Top, "top", 0, "Number of results to retrieve per query")
	fs.IntVar(&cfg.Concurrency, "concurrency", 0, "Queries in flight per target")
	fs.Float64Var(&cfg.RPS, "rps", 0, "Maximum search requests per second (0 means unlimited)")
	fs.IntVar(&cfg.Warmup, "warmup", 0, "Number of warmup searches per query before measurement")
	fs.IntVar(&cfg.Runs, "runs", 0, "Number of measured searches per query")
	fs.StringVar(&cfg.Output, "output", "", "Output path (JSON report, rows, pool YAML or dataset YAML depending on mode)")
	fs.StringVar(&cfg.RowsOutput, "rows", "", "Write per-query metric rows as JSONL (eval mode)")
	fs.StringVar(&cfg.PoolPath, "pool", "", "Pool file (annotate mode)")
	fs.StringVar(&cfg.AnnotatedPath, "annotated", "", "Annotated dataset YAML (merge mode)")
	fs.IntVar(&cfg.Depth, "depth", 20, "Results per target to pool (pool mode)")
	fs.StringVar(&cfg.ExperimentType, "experiment-type", "", "Experiment type prefix, named <type>_<branch>")
	fs.BoolVar(&cfg.NoTrack, "no-track", false, "Skip experiment tracking sinks")

	if err := fs.Parse(args); err != nil {
		return cliConfig{}, err
	}
	cfg.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { cfg.set[f.Name] = true })
	return cfg, nil
}

func (c cliConfig) isSet(name string) bool {
	return c.set[name]
}

func (c cliConfig) parseKValues() ([]int, error) {
	parts := stringsutil.SplitList(c.KValues, ",")
	vals := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid k value %q: %w", p, err)
		}
		if v <= 0 {
			return nil, fmt.Errorf("k value must be positive, got %d", v)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func (c cliConfig) evaluatorNames() []string {
	return stringsutil.SplitList(c.Evaluators, ",")
}

// metricsConfig builds the metrics section from flags.
func (c cliConfig) metricsConfig() (spec.MetricsConfig, error) {
	kValues, err := c.parseKValues()
	if err != nil {
		return spec.MetricsConfig{}, err
	}
	if c.FoundK < 0 {
		return spec.MetricsConfig{}, fmt.Errorf("found-k must not be negative, got %d", c.FoundK)
	}
	return spec.MetricsConfig{
		Evaluators: c.evaluatorNames(),
		KValues:    kValues,
		FoundK:     c.FoundK,
		Scheme:     c.Scheme,
	}, nil
}

// applyOverrides lets explicitly set flags win over the spec file. Metrics flags are
// merged one field at a time, so an unset flag never replaces a value from the file.
func (c cliConfig) applyOverrides(es *spec.EvalSpec) error {
	if c.isSet("evaluators") {
		es.Metrics.Evaluators = c.evaluatorNames()
	}
	if c.isSet("k") {
		kValues, err := c.parseKValues()
		if err != nil {
			return err
		}
		es.Metrics.KValues = kValues
	}
	if c.isSet("found-k") {
		if c.FoundK < 0 {
			return fmt.Errorf("found-k must not be negative, got %d", c.FoundK)
		}
		es.Metrics.FoundK = c.FoundK
	}
	if c.isSet("scheme") {
		es.Metrics.Scheme = c.Scheme
	}

	if c.Top > 0 {
		es.Runs.Top = c.Top
	}
	if c.Concurrency > 0 {
		es.Runs.Concurrency = c.Concurrency
	}
	if c.RPS > 0 {
		es.Runs.RequestsPerSecond = c.RPS
	}
	if c.Warmup > 0 {
		es.Runs.Warmup = c.Warmup
	}
	if c.Runs > 0 {
		es.Runs.Iterations = c.Runs
	}
	if c.ExperimentType != "" {
		es.Tracking.Experiment = c.ExperimentType
	}
	return nil
}
