package target

import (
	"context"
	"time"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/docid"
)

const DefaultTop = 10

// Target is a search backend under evaluation.
type Target interface {
	Search(ctx context.Context, query string, top int) (*Execution, error)
	Name() string
	Close() error
}

type Execution struct {
	Results      []docid.Record
	TotalMatches int64
	Latency      time.Duration
}

// DefaultFields are the fields kept on every result unless a target overrides them.
var DefaultFields = []string{docid.FieldFilename, docid.FieldPageNumber}

// selectFields keeps only the listed fields that are present on doc.
// An empty field list keeps the document as is.
func selectFields(doc map[string]any, fields []string) docid.Record {
	if len(fields) == 0 {
		return docid.Record(doc)
	}
	out := make(docid.Record, len(fields))
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}
