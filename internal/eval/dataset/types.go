package dataset

import (
	"github.com/DjordjeVuckovic/search-eval/internal/eval/docid"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/evaluator"
)

type Dataset struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Samples     []Sample `yaml:"samples" json:"samples"`
}

// Sample is one evaluated query with its ground truth.
// Sources lists the relevant pages; Truth is the single designated document used by Found@K.
type Sample struct {
	ID       string         `yaml:"id" json:"id"`
	Query    string         `yaml:"query,omitempty" json:"query,omitempty"`
	Question string         `yaml:"question,omitempty" json:"question,omitempty"`
	Sources  []docid.Record `yaml:"sources,omitempty" json:"sources,omitempty"`
	Truth    docid.Record   `yaml:"truth,omitempty" json:"truth,omitempty"`
}

// Text is the query sent to the search backend.
func (s *Sample) Text() string {
	if s.Query != "" {
		return s.Query
	}
	return s.Question
}

// GroundTruth returns Sources, falling back to the designated Truth document.
func (s *Sample) GroundTruth() []docid.Record {
	if len(s.Sources) > 0 {
		return s.Sources
	}
	if s.Truth != nil {
		return []docid.Record{s.Truth}
	}
	return nil
}

// Input pairs searchResult with the sample's ground truth. Found@K scores against
// Truth, the other metrics against Sources.
func (s *Sample) Input(searchResult []docid.Record) evaluator.Input {
	return evaluator.Input{
		SearchResult: searchResult,
		GroundTruth:  s.GroundTruth(),
		Truth:        s.Truth,
	}
}
