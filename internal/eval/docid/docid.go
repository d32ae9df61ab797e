package docid

import (
	"fmt"
	"strings"
)

type Scheme string

const (
	// SchemeURL identifies a document by its lower-cased url or path.
	SchemeURL Scheme = "url"
	// SchemeLocation identifies a page of a document by (filename, page_number).
	SchemeLocation Scheme = "location"
)

const (
	FieldURL        = "url"
	FieldFilename   = "filename"
	FieldPageNumber = "page_number"
)

func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case SchemeURL:
		return SchemeURL, nil
	case SchemeLocation, "":
		return SchemeLocation, nil
	default:
		return "", fmt.Errorf("unknown identifier scheme %q", s)
	}
}

// ID is the normalized identity every metric compares on.
// It is comparable and safe to use as a map key.
type ID struct {
	scheme Scheme
	key    string
	page   string
}

func FromURL(url string) ID {
	return ID{scheme: SchemeURL, key: strings.ToLower(url)}
}

func FromLocation(filename, page string) ID {
	return ID{
		scheme: SchemeLocation,
		key:    strings.ToLower(filename),
		page:   strings.ToLower(page),
	}
}

func (id ID) Scheme() Scheme { return id.scheme }
func (id ID) Key() string    { return id.key }
func (id ID) Page() string   { return id.page }

func (id ID) IsZero() bool {
	return id == ID{}
}

func (id ID) String() string {
	if id.scheme == SchemeLocation {
		return id.key + "#" + id.page
	}
	return id.key
}
