package evaluator

import (
	"fmt"
	"strings"
)

type Kind int

const (
	KindFound Kind = iota + 1
	KindPrecision
	KindRecall
	KindF1
	KindAveragePrecision
	KindReciprocalRank
)

var kindNames = map[Kind]string{
	KindFound:            "found",
	KindPrecision:        "precision",
	KindRecall:           "recall",
	KindF1:               "f1",
	KindAveragePrecision: "average_precision",
	KindReciprocalRank:   "reciprocal_rank",
}

// keyPrefixes are the output keys, suffixed with "_at_{k}" for rank cut-off metrics.
var keyPrefixes = map[Kind]string{
	KindFound:            "found",
	KindPrecision:        "precision",
	KindRecall:           "recall",
	KindF1:               "f1_score",
	KindAveragePrecision: "average_precision",
	KindReciprocalRank:   "reciprocal_rank",
}

var kindAliases = map[string]Kind{
	"found":             KindFound,
	"precision":         KindPrecision,
	"recall":            KindRecall,
	"f1":                KindF1,
	"f1_score":          KindF1,
	"f1-score":          KindF1,
	"average_precision": KindAveragePrecision,
	"averageprecision":  KindAveragePrecision,
	"ap":                KindAveragePrecision,
	"reciprocal_rank":   KindReciprocalRank,
	"reciprocalrank":    KindReciprocalRank,
	"rr":                KindReciprocalRank,
}

func ParseKind(s string) (Kind, error) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown evaluator kind %q", s)
	}
	return k, nil
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// RankCutoff reports whether the kind is parameterized by K.
func (k Kind) RankCutoff() bool {
	switch k {
	case KindFound, KindPrecision, KindRecall, KindF1:
		return true
	default:
		return false
	}
}

func (k Kind) valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Kinds lists every evaluator kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindFound, KindPrecision, KindRecall, KindF1, KindAveragePrecision, KindReciprocalRank}
}
