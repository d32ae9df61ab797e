package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/dataset"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/evaluator"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/spec"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/target"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type Runner struct {
	config Config
}

func New(cfg Config) *Runner {
	return &Runner{config: cfg.withDefaults()}
}

func (r *Runner) Config() Config {
	return r.config
}

func (r *Runner) RunAll(
	ctx context.Context,
	es *spec.EvalSpec,
	targets map[string]target.Target,
	set *evaluator.Set,
) (*EvalResult, error) {
	er := &EvalResult{Config: r.config}

	for _, job := range es.Jobs {
		ds, err := dataset.LoadFromFile(job.Dataset)
		if err != nil {
			return nil, fmt.Errorf("load dataset for job %q: %w", job.Name, err)
		}

		jr, err := r.RunJob(ctx, job, ds, targets, set)
		if err != nil {
			return nil, fmt.Errorf("run job %q: %w", job.Name, err)
		}
		er.Jobs = append(er.Jobs, jr)
	}

	return er, nil
}

func (r *Runner) RunJob(
	ctx context.Context,
	job spec.Job,
	ds *dataset.Dataset,
	targets map[string]target.Target,
	set *evaluator.Set,
) (*JobResult, error) {
	jr := &JobResult{
		JobName:     job.Name,
		Dataset:     ds.Name,
		Results:     make(map[string]map[string]QueryResult, len(ds.Samples)),
		TargetNames: job.Targets,
		MetricKeys:  set.Keys(),
	}
	for _, s := range ds.Samples {
		jr.QueryOrder = append(jr.QueryOrder, s.ID)
		jr.Results[s.ID] = make(map[string]QueryResult, len(job.Targets))
	}

	for _, name := range job.Targets {
		tg, ok := targets[name]
		if !ok {
			return nil, fmt.Errorf("target %q not found", name)
		}

		slog.Info("evaluating target", "job", job.Name, "target", name, "queries", len(ds.Samples))

		rows, err := r.Run(ctx, ds, tg, set)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			row.JobName = job.Name
			jr.Results[row.QueryID][name] = row
		}
	}

	return jr, nil
}

// Run searches every sample of ds against tg and scores the results with set.
// Samples run concurrently up to Config.Concurrency and are paced by Config.RequestsPerSecond.
// Failed searches and malformed results are recorded on their row; only cancellation
// of ctx fails the run. Rows are returned in dataset order.
func (r *Runner) Run(
	ctx context.Context,
	ds *dataset.Dataset,
	tg target.Target,
	set *evaluator.Set,
) ([]QueryResult, error) {
	var limiter *rate.Limiter
	if r.config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.config.RequestsPerSecond), 1)
	}

	rows := make([]QueryResult, len(ds.Samples))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Concurrency)

	for i := range ds.Samples {
		sample := &ds.Samples[i]
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			rows[i] = r.evaluateSample(gctx, sample, tg, set, limiter)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluation of %q interrupted: %w", tg.Name(), err)
	}
	return rows, nil
}

func (r *Runner) evaluateSample(
	ctx context.Context,
	sample *dataset.Sample,
	tg target.Target,
	set *evaluator.Set,
	limiter *rate.Limiter,
) QueryResult {
	qr := QueryResult{
		QueryID:    sample.ID,
		Query:      sample.Text(),
		TargetName: tg.Name(),
	}

	result := r.executeWithRetries(ctx, tg, sample.Text(), limiter)
	if result.err != nil {
		qr.Error = result.err
		slog.Warn("query failed", "query", sample.ID, "target", tg.Name(), "error", result.err)
		return qr
	}

	qr.Results = result.exec.Results
	qr.TotalMatches = result.exec.TotalMatches
	qr.Latency = result.latencyStats

	row, err := set.Invoke(sample.Input(result.exec.Results))
	if err != nil {
		qr.Error = err
		slog.Warn("scoring failed", "query", sample.ID, "target", tg.Name(), "error", err)
		return qr
	}
	qr.Metrics = row

	slog.Debug("query evaluated", "query", sample.ID, "target", tg.Name(), "results", len(qr.Results))
	return qr
}

type execResult struct {
	exec         *target.Execution
	latencyStats LatencyStats
	err          error
}

func (r *Runner) executeWithRetries(
	ctx context.Context,
	tg target.Target,
	query string,
	limiter *rate.Limiter,
) execResult {
	for i := 0; i < r.config.WarmupRuns; i++ {
		_, _ = r.search(ctx, tg, query, limiter)
	}

	var latencies []time.Duration
	var lastExec *target.Execution
	var lastErr error

	for i := 0; i < r.config.Runs; i++ {
		exec, err := r.searchWithRetry(ctx, tg, query, limiter)
		if err != nil {
			lastErr = err
			continue
		}
		lastExec = exec
		latencies = append(latencies, exec.Latency)
	}

	if lastExec == nil {
		return execResult{err: lastErr}
	}

	return execResult{
		exec:         lastExec,
		latencyStats: ComputeLatencyStats(latencies),
	}
}

func (r *Runner) searchWithRetry(
	ctx context.Context,
	tg target.Target,
	query string,
	limiter *rate.Limiter,
) (*target.Execution, error) {
	var err error
	for attempt := 0; attempt <= r.config.Retries; attempt++ {
		var exec *target.Execution
		exec, err = r.search(ctx, tg, query, limiter)
		if err == nil {
			return exec, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		if attempt < r.config.Retries {
			slog.Debug("retrying search", "target", tg.Name(), "attempt", attempt+1, "error", err)
		}
	}
	return nil, err
}

func (r *Runner) search(
	ctx context.Context,
	tg target.Target,
	query string,
	limiter *rate.Limiter,
) (*target.Execution, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}
	return tg.Search(ctx, query, r.config.Top)
}
