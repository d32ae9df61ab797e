package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const maxLineSize = 4 * 1024 * 1024

// LoadFromFile reads a .jsonl dataset (one sample per line) or a .yaml/.yml dataset.
func LoadFromFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset file: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return ParseJSONL(bytes.NewReader(data), name)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
}

func ParseJSONL(r io.Reader, name string) (*Dataset, error) {
	ds := &Dataset{Name: name}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()

		var s Sample
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("parse dataset line %d: %w", line, err)
		}
		if s.ID == "" {
			s.ID = fmt.Sprintf("q%d", line)
		}
		ds.Samples = append(ds.Samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan dataset: %w", err)
	}

	if err := validate(ds); err != nil {
		return nil, err
	}
	return ds, nil
}

func ParseYAML(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset YAML: %w", err)
	}
	for i := range ds.Samples {
		if ds.Samples[i].ID == "" {
			ds.Samples[i].ID = fmt.Sprintf("q%d", i+1)
		}
	}
	if err := validate(&ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// WriteYAML writes ds in the format ParseYAML reads.
func WriteYAML(ds *Dataset, path string) error {
	data, err := yaml.Marshal(ds)
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	return nil
}

func validate(ds *Dataset) error {
	if len(ds.Samples) == 0 {
		return fmt.Errorf("dataset has no samples")
	}

	seen := make(map[string]bool, len(ds.Samples))
	for _, s := range ds.Samples {
		if s.Text() == "" {
			return fmt.Errorf("sample %q has no query", s.ID)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate sample id %q", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}
