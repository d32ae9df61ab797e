package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/evaluator"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/tracking"
)

const maxLineSize = 4 * 1024 * 1024

type scoreSummary struct {
	Means  map[string]float64
	Scored int
	Failed int
}

// runScore scores precomputed {search_result, ground_truth} rows without calling a backend.
func runScore(ctx context.Context, cfg cliConfig) error {
	if cfg.InputPath == "" {
		return errors.New("score mode requires -input")
	}
	mc, err := cfg.metricsConfig()
	if err != nil {
		return err
	}
	set, err := mc.EvaluatorSet()
	if err != nil {
		return err
	}

	in, err := os.Open(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	inputs, err := readInputs(in)
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	summary, err := scoreInputs(inputs, set, w)
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush rows: %w", err)
	}

	name := filepath.Base(cfg.InputPath)
	metrics := summary.Means
	metrics["query_count"] = float64(summary.Scored + summary.Failed)
	metrics["error_count"] = float64(summary.Failed)
	return tracking.NewLogSink(nil).LogMetrics(ctx, tracking.Run{Experiment: "score", Name: name}, metrics)
}

func readInputs(r io.Reader) ([]evaluator.Input, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var inputs []evaluator.Input
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()

		var in evaluator.Input
		if err := dec.Decode(&in); err != nil {
			return nil, fmt.Errorf("parse input line %d: %w", line, err)
		}
		inputs = append(inputs, in)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}
	return inputs, nil
}

// scoreInputs writes one JSON row per input. A malformed input gets an error row
// and is left out of the means.
func scoreInputs(inputs []evaluator.Input, set *evaluator.Set, w io.Writer) (scoreSummary, error) {
	enc := json.NewEncoder(w)
	rows := make([]map[string]float64, 0, len(inputs))
	failed := 0

	for i, in := range inputs {
		row, err := set.Invoke(in)
		if err != nil {
			failed++
			if encErr := enc.Encode(map[string]any{"row": i, "error": err.Error()}); encErr != nil {
				return scoreSummary{}, fmt.Errorf("encode row %d: %w", i, encErr)
			}
			continue
		}
		rows = append(rows, row)

		out := make(map[string]any, len(row)+1)
		for k, v := range row {
			out[k] = v
		}
		out["row"] = i
		if err := enc.Encode(out); err != nil {
			return scoreSummary{}, fmt.Errorf("encode row %d: %w", i, err)
		}
	}

	return scoreSummary{Means: set.Mean(rows), Scored: len(rows), Failed: failed}, nil
}
