package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/DjordjeVuckovic/search-eval/internal/config"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/dataset"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/docid"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/evaluator"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/naming"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/pool"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/report"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/runner"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/spec"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/target"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/tracking"
	"github.com/DjordjeVuckovic/search-eval/internal/logger"
	"github.com/DjordjeVuckovic/search-eval/pkg/config/env"
)

const quickTargetName = "azure"

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	if err := env.LoadDotEnv(os.Getenv("APP_ENV"), "cmd/search_eval/.env"); err != nil {
		slog.Error("Failed to load .env", "error", err)
		os.Exit(1)
	}
	appCfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}
	logger.Setup(appCfg.LogLevel, appCfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Mode {
	case "eval":
		err = runEval(ctx, cfg, appCfg)
	case "score":
		err = runScore(ctx, cfg)
	case "pool":
		err = runPool(ctx, cfg, appCfg)
	case "annotate":
		err = runAnnotate(cfg)
	case "merge":
		err = runMerge(cfg)
	default:
		err = fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	if err != nil {
		slog.Error("search_eval failed", "mode", cfg.Mode, "error", err)
		stop()
		os.Exit(1)
	}
}

// loadSpec reads -spec, or builds a single-job spec that evaluates -dataset against
// the Azure index configured in the environment.
func loadSpec(ctx context.Context, cfg cliConfig, appCfg *config.Config, namer *naming.Namer) (*spec.EvalSpec, error) {
	if cfg.SpecPath != "" {
		es, err := spec.LoadFromFile(cfg.SpecPath)
		if err != nil {
			return nil, fmt.Errorf("load spec %s: %w", cfg.SpecPath, err)
		}
		if err := cfg.applyOverrides(es); err != nil {
			return nil, err
		}
		if err := es.Validate(); err != nil {
			return nil, err
		}
		return es, nil
	}

	metrics, err := cfg.metricsConfig()
	if err != nil {
		return nil, err
	}

	if cfg.DatasetPath == "" {
		return nil, errors.New("requires -spec or -dataset")
	}
	azure := appCfg.Azure
	if azure.Endpoint == "" {
		return nil, errors.New("-dataset requires AZURE_SEARCH_ENDPOINT")
	}
	if azure.Index == "" {
		if azure.Index, err = namer.ResourceName(ctx, "index"); err != nil {
			return nil, fmt.Errorf("derive index name: %w", err)
		}
		slog.Info("AZURE_SEARCH_INDEX not set, using branch index", "index", azure.Index)
	}

	es := &spec.EvalSpec{
		Jobs:    []spec.Job{{Name: strings.TrimSuffix(filepath.Base(cfg.DatasetPath), filepath.Ext(cfg.DatasetPath)), Dataset: cfg.DatasetPath, Targets: []string{quickTargetName}}},
		Targets: map[string]spec.Target{quickTargetName: azure.Target()},
		Metrics: metrics,
	}
	if err := cfg.applyOverrides(es); err != nil {
		return nil, err
	}
	if err := es.Validate(); err != nil {
		return nil, err
	}
	return es, nil
}

func runEval(ctx context.Context, cfg cliConfig, appCfg *config.Config) error {
	namer := naming.New(appCfg.Build.SourceBranch, appCfg.Build.BuildID)

	es, err := loadSpec(ctx, cfg, appCfg, namer)
	if err != nil {
		return err
	}
	set, err := es.Metrics.EvaluatorSet()
	if err != nil {
		return err
	}

	targets, cleanup, err := target.CreateFromSpec(ctx, es.Targets)
	if err != nil {
		return fmt.Errorf("create targets: %w", err)
	}
	defer cleanup()

	started := time.Now()
	result, err := runner.New(runner.ConfigFromSpec(es.Runs)).RunAll(ctx, es, targets, set)
	if err != nil {
		return err
	}

	experiment, err := namer.ExperimentName(ctx, es.Tracking.Experiment)
	if err != nil {
		slog.Warn("Could not derive experiment name from branch", "error", err)
		experiment = es.Tracking.Experiment
	}

	rpt := report.Generate(result, report.Meta{
		Experiment: experiment,
		RunName:    namer.RunName(),
		Timestamp:  started.UTC(),
		Targets:    targetInfo(es.Targets),
	})
	report.WriteTable(rpt, os.Stdout)

	if cfg.Output != "" {
		if err := report.WriteJSON(rpt, cfg.Output); err != nil {
			return err
		}
		slog.Info("Report written", "path", cfg.Output)
	}
	if cfg.RowsOutput != "" {
		if err := report.WriteRowsJSONL(rpt, cfg.RowsOutput); err != nil {
			return err
		}
		slog.Info("Rows written", "path", cfg.RowsOutput)
	}

	if cfg.NoTrack {
		return nil
	}
	return track(ctx, rpt, es, appCfg, set, started)
}

// track sends each target's aggregated metrics as one run per job and target.
func track(
	ctx context.Context,
	rpt *report.Report,
	es *spec.EvalSpec,
	appCfg *config.Config,
	set *evaluator.Set,
	started time.Time,
) error {
	sinks, closeSinks, err := tracking.CreateFromSpec(ctx,
		slices.Concat(es.Tracking.Sinks, appCfg.Sinks()),
		tracking.Options{MlflowToken: appCfg.Mlflow.Token},
	)
	if err != nil {
		return fmt.Errorf("create tracking sinks: %w", err)
	}
	defer closeSinks()

	runCount := 0
	for _, jr := range rpt.Jobs {
		runCount += len(jr.Aggregated)
	}

	params := runParams(es, set)
	var errs []error
	for _, jr := range rpt.Jobs {
		for _, agg := range jr.Aggregated {
			name := rpt.Meta.RunName
			if runCount > 1 {
				name = fmt.Sprintf("%s_%s_%s", name, jr.JobName, agg.TargetName)
			}
			run := tracking.Run{
				Experiment: rpt.Meta.Experiment,
				Name:       name,
				Tags: map[string]string{
					"job":     jr.JobName,
					"target":  agg.TargetName,
					"dataset": jr.Dataset,
				},
				Params:    params,
				StartTime: started,
			}
			if err := sinks.LogMetrics(ctx, run, agg.TrackingMetrics()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func runParams(es *spec.EvalSpec, set *evaluator.Set) map[string]string {
	kValues := make([]string, 0, len(es.Metrics.KValues))
	for _, k := range es.Metrics.KValues {
		kValues = append(kValues, fmt.Sprint(k))
	}
	return map[string]string{
		"top":         fmt.Sprint(es.Runs.Top),
		"concurrency": fmt.Sprint(es.Runs.Concurrency),
		"iterations":  fmt.Sprint(es.Runs.Iterations),
		"k_values":    strings.Join(kValues, ","),
		"evaluators":  strings.Join(set.Keys(), ","),
	}
}

func targetInfo(targets map[string]spec.Target) map[string]report.TargetInfo {
	info := make(map[string]report.TargetInfo, len(targets))
	for name, t := range targets {
		info[name] = report.TargetInfo{Type: t.Type, Index: t.Index}
	}
	return info
}

func runPool(ctx context.Context, cfg cliConfig, appCfg *config.Config) error {
	if cfg.Output == "" {
		return errors.New("pool mode requires -output")
	}
	if cfg.Depth <= 0 {
		return fmt.Errorf("depth must be positive, got %d", cfg.Depth)
	}

	es, err := loadSpec(ctx, cfg, appCfg, naming.New(appCfg.Build.SourceBranch, appCfg.Build.BuildID))
	if err != nil {
		return err
	}
	scheme, err := docid.ParseScheme(es.Metrics.Scheme)
	if err != nil {
		return err
	}

	targets, cleanup, err := target.CreateFromSpec(ctx, es.Targets)
	if err != nil {
		return fmt.Errorf("create targets: %w", err)
	}
	defer cleanup()

	for _, job := range es.Jobs {
		ds, err := dataset.LoadFromFile(job.Dataset)
		if err != nil {
			return fmt.Errorf("load dataset for job %q: %w", job.Name, err)
		}

		jobTargets := make(map[string]target.Target, len(job.Targets))
		for _, name := range job.Targets {
			jobTargets[name] = targets[name]
		}

		pf, err := pool.Build(ctx, ds, jobTargets, cfg.Depth, scheme)
		if err != nil {
			return fmt.Errorf("pool job %q: %w", job.Name, err)
		}

		path := poolOutputPath(cfg.Output, job.Name, len(es.Jobs))
		if err := pool.WritePoolFile(pf, path); err != nil {
			return err
		}
		slog.Info("Pool written", "job", job.Name, "path", path, "queries", len(pf.Queries))
	}
	return nil
}

// poolOutputPath suffixes the job name when several jobs share one -output.
func poolOutputPath(output, job string, jobs int) string {
	if jobs <= 1 {
		return output
	}
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + "_" + job + ext
}

func runAnnotate(cfg cliConfig) error {
	if cfg.PoolPath == "" || cfg.Output == "" {
		return errors.New("annotate mode requires -pool and -output")
	}
	pf, err := pool.ReadPoolFile(cfg.PoolPath)
	if err != nil {
		return err
	}
	if err := pool.ExportForAnnotation(pf, cfg.Output); err != nil {
		return err
	}
	slog.Info("Annotation template written", "path", cfg.Output, "queries", len(pf.Queries))
	return nil
}

func runMerge(cfg cliConfig) error {
	if cfg.AnnotatedPath == "" || cfg.DatasetPath == "" || cfg.Output == "" {
		return errors.New("merge mode requires -annotated, -dataset and -output")
	}
	annotated, err := dataset.LoadFromFile(cfg.AnnotatedPath)
	if err != nil {
		return fmt.Errorf("load annotations: %w", err)
	}
	ds, err := dataset.LoadFromFile(cfg.DatasetPath)
	if err != nil {
		return err
	}
	if err := dataset.WriteYAML(pool.MergeAnnotations(annotated, ds), cfg.Output); err != nil {
		return err
	}
	slog.Info("Merged dataset written", "path", cfg.Output)
	return nil
}
