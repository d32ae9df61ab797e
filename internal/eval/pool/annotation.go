package pool

import (
	"fmt"
	"os"

	"github.com/DjordjeVuckovic/search-eval/internal/eval/dataset"
	"github.com/DjordjeVuckovic/search-eval/internal/eval/docid"
	"gopkg.in/yaml.v3"
)

// AnnotationTemplate turns a pool into a dataset whose sources are every pooled candidate.
// Annotators delete the sources that are not relevant.
func AnnotationTemplate(pf *File) *dataset.Dataset {
	ds := &dataset.Dataset{
		Name:        pf.Dataset,
		Description: "annotation template: remove the sources that do not answer the query",
		Samples:     make([]dataset.Sample, 0, len(pf.Queries)),
	}
	for _, e := range pf.Queries {
		sources := make([]docid.Record, 0, len(e.Docs))
		for _, d := range e.Docs {
			sources = append(sources, d.Record)
		}
		ds.Samples = append(ds.Samples, dataset.Sample{
			ID:      e.QueryID,
			Query:   e.Query,
			Sources: sources,
		})
	}
	return ds
}

func ExportForAnnotation(pf *File, outputPath string) error {
	data, err := yaml.Marshal(AnnotationTemplate(pf))
	if err != nil {
		return fmt.Errorf("marshal annotation template: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write annotation template: %w", err)
	}
	return nil
}

// MergeAnnotations replaces the sources of every sample in ds that was annotated.
// Samples without an annotation keep their sources.
func MergeAnnotations(annotated, ds *dataset.Dataset) *dataset.Dataset {
	byID := make(map[string][]docid.Record, len(annotated.Samples))
	for _, s := range annotated.Samples {
		byID[s.ID] = s.Sources
	}

	merged := *ds
	merged.Samples = make([]dataset.Sample, len(ds.Samples))
	copy(merged.Samples, ds.Samples)

	for i, s := range merged.Samples {
		if sources, ok := byID[s.ID]; ok {
			merged.Samples[i].Sources = sources
		}
	}
	return &merged
}
