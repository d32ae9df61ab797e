package docid

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

var ErrMissingField = errors.New("missing identifier field")

// Record is a raw search result or ground truth entry as produced by a search backend
// or decoded from a dataset file.
type Record map[string]any

type FieldError struct {
	Field string
	Index int
	Err   error
}

func (e *FieldError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("record %d: field %q: %v", e.Index, e.Field, e.Err)
	}
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// FromRecord derives the identifier of r under the given scheme.
func FromRecord(r Record, scheme Scheme) (ID, error) {
	return fromRecord(r, scheme, -1)
}

// FromRecords converts records in order, failing on the first malformed one.
func FromRecords(records []Record, scheme Scheme) ([]ID, error) {
	ids := make([]ID, 0, len(records))
	for i, r := range records {
		id, err := fromRecord(r, scheme, i)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func fromRecord(r Record, scheme Scheme, idx int) (ID, error) {
	switch scheme {
	case SchemeURL:
		url, err := stringField(r, FieldURL, idx)
		if err != nil {
			return ID{}, err
		}
		return FromURL(url), nil
	case SchemeLocation:
		filename, err := stringField(r, FieldFilename, idx)
		if err != nil {
			return ID{}, err
		}
		raw, ok := r[FieldPageNumber]
		if !ok || raw == nil {
			return ID{}, &FieldError{Field: FieldPageNumber, Index: idx, Err: ErrMissingField}
		}
		page, err := pageString(raw)
		if err != nil {
			return ID{}, &FieldError{Field: FieldPageNumber, Index: idx, Err: err}
		}
		return FromLocation(filename, page), nil
	default:
		return ID{}, fmt.Errorf("unknown identifier scheme %q", scheme)
	}
}

func stringField(r Record, field string, idx int) (string, error) {
	raw, ok := r[field]
	if !ok || raw == nil {
		return "", &FieldError{Field: field, Index: idx, Err: ErrMissingField}
	}
	s, ok := raw.(string)
	if !ok {
		return "", &FieldError{Field: field, Index: idx, Err: fmt.Errorf("expected string, got %T", raw)}
	}
	return s, nil
}

// pageString renders a page number the way it is compared: as a decimal string.
func pageString(v any) (string, error) {
	switch p := v.(type) {
	case string:
		return p, nil
	case int:
		return strconv.Itoa(p), nil
	case int32:
		return strconv.FormatInt(int64(p), 10), nil
	case int64:
		return strconv.FormatInt(p, 10), nil
	case uint:
		return strconv.FormatUint(uint64(p), 10), nil
	case uint64:
		return strconv.FormatUint(p, 10), nil
	case float64:
		// int64 conversion is only defined inside its range.
		if p == math.Trunc(p) && math.Abs(p) < 1<<63 {
			return strconv.FormatInt(int64(p), 10), nil
		}
		return strconv.FormatFloat(p, 'f', -1, 64), nil
	case json.Number:
		return p.String(), nil
	default:
		return "", fmt.Errorf("unsupported page number type %T", v)
	}
}
