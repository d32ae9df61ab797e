package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
)

const mlflowBatchLimit = 1000

var errMlflowNotFound = errors.New("mlflow resource does not exist")

// MlflowSink writes runs through the MLflow tracking REST API.
type MlflowSink struct {
	baseURL string
	token   string
	client  *http.Client
	now     func() time.Time
}

func NewMlflowSink(trackingURI, token string) (*MlflowSink, error) {
	if trackingURI == "" {
		return nil, fmt.Errorf("mlflow: tracking uri is required")
	}
	if _, err := url.ParseRequestURI(trackingURI); err != nil {
		return nil, fmt.Errorf("mlflow: invalid tracking uri: %w", err)
	}
	return &MlflowSink{
		baseURL: strings.TrimRight(trackingURI, "/") + "/api/2.0/mlflow",
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}, nil
}

func (s *MlflowSink) Name() string { return "mlflow" }

type mlflowTag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type mlflowMetric struct {
	Key       string  `json:"key"`
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
	Step      int64   `json:"step"`
}

type mlflowError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func (s *MlflowSink) LogMetrics(ctx context.Context, run Run, metrics map[string]float64) error {
	experimentID, err := s.ensureExperiment(ctx, run.Experiment)
	if err != nil {
		return err
	}

	runID, err := s.createRun(ctx, experimentID, run)
	if err != nil {
		return err
	}

	ts := s.now().UnixMilli()
	batch := make([]mlflowMetric, 0, len(metrics))
	for _, k := range slices.Sorted(maps.Keys(metrics)) {
		batch = append(batch, mlflowMetric{Key: k, Value: metrics[k], Timestamp: ts})
	}
	params := pairs(run.Params)

	for start := 0; ; start += mlflowBatchLimit {
		end := min(start+mlflowBatchLimit, len(batch))
		body := map[string]any{"run_id": runID, "metrics": batch[start:end]}
		if start == 0 && len(params) > 0 {
			body["params"] = params
		}
		if err := s.post(ctx, "/runs/log-batch", body, nil); err != nil {
			return fmt.Errorf("mlflow log metrics: %w", err)
		}
		if end >= len(batch) {
			break
		}
	}

	if err := s.post(ctx, "/runs/update", map[string]any{
		"run_id":   runID,
		"status":   "FINISHED",
		"end_time": s.now().UnixMilli(),
	}, nil); err != nil {
		return fmt.Errorf("mlflow finish run: %w", err)
	}
	return nil
}

func (s *MlflowSink) ensureExperiment(ctx context.Context, name string) (string, error) {
	var got struct {
		Experiment struct {
			ExperimentID string `json:"experiment_id"`
		} `json:"experiment"`
	}
	err := s.get(ctx, "/experiments/get-by-name", url.Values{"experiment_name": {name}}, &got)
	switch {
	case err == nil:
		return got.Experiment.ExperimentID, nil
	case !errors.Is(err, errMlflowNotFound):
		return "", fmt.Errorf("mlflow get experiment %q: %w", name, err)
	}

	var created struct {
		ExperimentID string `json:"experiment_id"`
	}
	if err := s.post(ctx, "/experiments/create", map[string]any{"name": name}, &created); err != nil {
		return "", fmt.Errorf("mlflow create experiment %q: %w", name, err)
	}
	return created.ExperimentID, nil
}

func (s *MlflowSink) createRun(ctx context.Context, experimentID string, run Run) (string, error) {
	start := run.StartTime
	if start.IsZero() {
		start = s.now()
	}
	tags := pairs(run.Tags)
	tags = append(tags, mlflowTag{Key: "mlflow.runName", Value: run.Name})

	var created struct {
		Run struct {
			Info struct {
				RunID string `json:"run_id"`
			} `json:"info"`
		} `json:"run"`
	}
	err := s.post(ctx, "/runs/create", map[string]any{
		"experiment_id": experimentID,
		"run_name":      run.Name,
		"start_time":    start.UnixMilli(),
		"tags":          tags,
	}, &created)
	if err != nil {
		return "", fmt.Errorf("mlflow create run: %w", err)
	}
	return created.Run.Info.RunID, nil
}

func pairs(m map[string]string) []mlflowTag {
	out := make([]mlflowTag, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, mlflowTag{Key: k, Value: m[k]})
	}
	return out
}

func (s *MlflowSink) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	return s.do(req, out)
}

func (s *MlflowSink) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, out)
}

func (s *MlflowSink) do(req *http.Request, out any) error {
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr mlflowError
		_ = json.Unmarshal(body, &apiErr)
		if apiErr.ErrorCode == "RESOURCE_DOES_NOT_EXIST" || resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", errMlflowNotFound, apiErr.Message)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
