package evaluator

import (
	"fmt"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/docid"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/metrics"
)

const DefaultK = 3

// Input is what an evaluation harness hands to every evaluator for one query.
// Truth is the single designated document scored by Found@K; when it is nil
// Found@K falls back to the first ground truth record.
type Input struct {
	SearchResult []docid.Record `json:"search_result" yaml:"search_result"`
	GroundTruth  []docid.Record `json:"ground_truth" yaml:"ground_truth"`
	Truth        docid.Record   `json:"truth,omitempty" yaml:"truth,omitempty"`
}

func (in Input) foundTruth() []docid.Record {
	if in.Truth != nil {
		return []docid.Record{in.Truth}
	}
	return in.GroundTruth
}

// Evaluator scores one metric kind. The zero value is not usable; construct with New.
// An Evaluator is an immutable value and safe for concurrent use.
type Evaluator struct {
	kind   Kind
	k      int
	scheme docid.Scheme
}

type Option func(*Evaluator)

func WithK(k int) Option {
	return func(e *Evaluator) { e.k = k }
}

func WithScheme(s docid.Scheme) Option {
	return func(e *Evaluator) { e.scheme = s }
}

func New(kind Kind, opts ...Option) (Evaluator, error) {
	if !kind.valid() {
		return Evaluator{}, fmt.Errorf("unknown evaluator kind %d", int(kind))
	}

	e := Evaluator{kind: kind, k: DefaultK, scheme: defaultScheme(kind)}
	for _, opt := range opts {
		opt(&e)
	}

	if kind.RankCutoff() && e.k <= 0 {
		return Evaluator{}, fmt.Errorf("%s: k must be positive, got %d", kind, e.k)
	}
	if !kind.RankCutoff() {
		e.k = 0
	}
	scheme, err := docid.ParseScheme(string(e.scheme))
	if err != nil {
		return Evaluator{}, fmt.Errorf("%s: %w", kind, err)
	}
	e.scheme = scheme
	return e, nil
}

func MustNew(kind Kind, opts ...Option) Evaluator {
	e, err := New(kind, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Found@K compares urls, the other kinds compare (filename, page_number) locations.
func defaultScheme(kind Kind) docid.Scheme {
	if kind == KindFound {
		return docid.SchemeURL
	}
	return docid.SchemeLocation
}

func (e Evaluator) Kind() Kind           { return e.kind }
func (e Evaluator) K() int               { return e.k }
func (e Evaluator) Scheme() docid.Scheme { return e.scheme }
func (e Evaluator) String() string       { return e.Key() }

// Key is the output metric name, e.g. "recall_at_5" or "average_precision".
func (e Evaluator) Key() string {
	prefix := keyPrefixes[e.kind]
	if e.kind.RankCutoff() {
		return fmt.Sprintf("%s_at_%d", prefix, e.k)
	}
	return prefix
}

// Invoke is the harness-facing call. An empty search result scores 0 without
// touching the ground truth.
func (e Evaluator) Invoke(in Input) (map[string]float64, error) {
	if len(in.SearchResult) == 0 {
		return map[string]float64{e.Key(): 0}, nil
	}

	groundTruth := in.GroundTruth
	if e.kind == KindFound {
		groundTruth = in.foundTruth()
	}

	score, err := e.Evaluate(in.SearchResult, groundTruth)
	if err != nil {
		return nil, err
	}
	return map[string]float64{e.Key(): score}, nil
}

// Evaluate scores one query. Degenerate inputs score 0; malformed records are returned as errors.
func (e Evaluator) Evaluate(searchResult, groundTruth []docid.Record) (float64, error) {
	switch e.kind {
	case KindFound:
		return e.evaluateFound(searchResult, groundTruth)

	case KindPrecision, KindRecall, KindF1:
		gt, top, err := metrics.Preprocess(searchResult, groundTruth, e.scheme, e.k)
		if err != nil {
			return 0, err
		}
		switch e.kind {
		case KindPrecision:
			return metrics.PrecisionAtK(top, gt, e.k), nil
		case KindRecall:
			return metrics.RecallAtK(top, gt, e.k), nil
		default:
			return metrics.F1AtK(top, gt, e.k), nil
		}

	case KindAveragePrecision, KindReciprocalRank:
		gt, all, err := metrics.PreprocessAll(searchResult, groundTruth, e.scheme)
		if err != nil {
			return 0, err
		}
		if e.kind == KindAveragePrecision {
			return metrics.AveragePrecision(all, gt), nil
		}
		return metrics.ReciprocalRank(all, gt), nil

	default:
		return 0, fmt.Errorf("unknown evaluator kind %d", int(e.kind))
	}
}

// The first ground truth record is the designated document.
func (e Evaluator) evaluateFound(searchResult, groundTruth []docid.Record) (float64, error) {
	if len(groundTruth) == 0 || blankTruth(groundTruth[0], e.scheme) || len(searchResult) == 0 {
		return 0, nil
	}

	truth, err := docid.FromRecord(groundTruth[0], e.scheme)
	if err != nil {
		return 0, fmt.Errorf("ground truth: %w", err)
	}

	_, top, err := metrics.Preprocess(searchResult, nil, e.scheme, e.k)
	if err != nil {
		return 0, err
	}

	return metrics.FoundAtK(truth, top, e.k), nil
}

// blankTruth reports a present but empty identifying field, which scores 0 rather than failing.
func blankTruth(r docid.Record, scheme docid.Scheme) bool {
	field := docid.FieldURL
	if scheme == docid.SchemeLocation {
		field = docid.FieldFilename
	}
	raw, ok := r[field]
	if !ok {
		return false
	}
	s, isString := raw.(string)
	return raw == nil || (isString && s == "")
}
