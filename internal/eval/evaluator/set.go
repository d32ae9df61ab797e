package evaluator

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultKValues are the cut-offs registered for precision, recall and F1 by DefaultSet.
var DefaultKValues = []int{3, 5, 10}

// Set is an ordered collection of evaluators with distinct keys.
type Set struct {
	evaluators []Evaluator
}

func NewSet(evaluators ...Evaluator) (*Set, error) {
	seen := make(map[string]bool, len(evaluators))
	for _, e := range evaluators {
		if seen[e.Key()] {
			return nil, fmt.Errorf("duplicate evaluator %q", e.Key())
		}
		seen[e.Key()] = true
	}
	return &Set{evaluators: evaluators}, nil
}

// DefaultSet registers recall, precision and F1 at every default K, then AP and RR.
func DefaultSet() *Set {
	s, err := StandardSet(DefaultKValues)
	if err != nil {
		panic(err)
	}
	return s
}

// StandardSet registers recall, precision and F1 at each of kValues, then AP and RR.
func StandardSet(kValues []int, opts ...Option) (*Set, error) {
	var evs []Evaluator
	for _, kind := range []Kind{KindRecall, KindPrecision, KindF1} {
		for _, k := range kValues {
			e, err := New(kind, append(append([]Option(nil), opts...), WithK(k))...)
			if err != nil {
				return nil, err
			}
			evs = append(evs, e)
		}
	}
	for _, kind := range []Kind{KindAveragePrecision, KindReciprocalRank} {
		e, err := New(kind, opts...)
		if err != nil {
			return nil, err
		}
		evs = append(evs, e)
	}
	return NewSet(evs...)
}

// With returns a new set with extra evaluators appended.
func (s *Set) With(evaluators ...Evaluator) (*Set, error) {
	return NewSet(append(s.Evaluators(), evaluators...)...)
}

// ParseSet builds a set from names such as "recall@5", "precision_at_10", "f1-score@3",
// "found@3", "ap" or "reciprocal_rank". Options apply to every evaluator.
func ParseSet(names []string, opts ...Option) (*Set, error) {
	evs := make([]Evaluator, 0, len(names))
	for _, name := range names {
		e, err := ParseEvaluator(name, opts...)
		if err != nil {
			return nil, err
		}
		evs = append(evs, e)
	}
	return NewSet(evs...)
}

func ParseEvaluator(name string, opts ...Option) (Evaluator, error) {
	kindPart, kPart, hasCutoff := splitName(name)
	if hasCutoff && kPart == "" {
		return Evaluator{}, fmt.Errorf("missing k in evaluator %q", name)
	}

	kind, err := ParseKind(kindPart)
	if err != nil {
		return Evaluator{}, err
	}

	if kPart != "" {
		if !kind.RankCutoff() {
			return Evaluator{}, fmt.Errorf("evaluator %q does not take a cut-off", name)
		}
		k, err := strconv.Atoi(kPart)
		if err != nil {
			return Evaluator{}, fmt.Errorf("invalid k in evaluator %q: %w", name, err)
		}
		opts = append([]Option{WithK(k)}, opts...)
	}

	return New(kind, opts...)
}

func splitName(name string) (kind, k string, hasCutoff bool) {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "@"); i >= 0 {
		return name[:i], strings.TrimSpace(name[i+1:]), true
	}
	if i := strings.LastIndex(name, "_at_"); i >= 0 {
		return name[:i], strings.TrimSpace(name[i+len("_at_"):]), true
	}
	return name, "", false
}

func (s *Set) Evaluators() []Evaluator {
	return append([]Evaluator(nil), s.evaluators...)
}

func (s *Set) Len() int {
	return len(s.evaluators)
}

func (s *Set) Keys() []string {
	keys := make([]string, 0, len(s.evaluators))
	for _, e := range s.evaluators {
		keys = append(keys, e.Key())
	}
	return keys
}

// Invoke runs every evaluator on one query and merges their outputs into a single row.
func (s *Set) Invoke(in Input) (map[string]float64, error) {
	row := make(map[string]float64, len(s.evaluators))
	for _, e := range s.evaluators {
		out, err := e.Invoke(in)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", e.Key(), err)
		}
		for k, v := range out {
			row[k] = v
		}
	}
	return row, nil
}

// Mean averages each of the set's keys over rows. Keys absent from a row count as 0.
func (s *Set) Mean(rows []map[string]float64) map[string]float64 {
	means := make(map[string]float64, len(s.evaluators))
	for _, key := range s.Keys() {
		means[key] = 0
	}
	if len(rows) == 0 {
		return means
	}
	for _, row := range rows {
		for key := range means {
			means[key] += row[key]
		}
	}
	n := float64(len(rows))
	for key := range means {
		means[key] /= n
	}
	return means
}
