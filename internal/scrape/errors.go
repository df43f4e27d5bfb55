package scrape

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by the cache on an unconditional get for an absent key.
var ErrNotFound = errors.New("key not found")

// ErrUnauthorized marks a request whose token is missing or unknown.
var ErrUnauthorized = errors.New("unauthorized")

// FetchError is returned once the gateway has exhausted its retry budget
// without a successful response. LastStatus is zero when no response was
// obtained at all.
type FetchError struct {
	URL        string
	Attempts   int
	LastStatus int
	Err        error
}

func (e *FetchError) Error() string {
	if e.LastStatus != 0 {
		return fmt.Sprintf("fetch %s: %d attempts exhausted, last status %d", e.URL, e.Attempts, e.LastStatus)
	}
	return fmt.Sprintf("fetch %s: %d attempts exhausted: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError marks listing markup that lacks the expected structure.
type ExtractionError struct {
	Missing string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %s not found in markup", e.Missing)
}

// MalformedProductError marks a product cell missing an expected sub-element.
// Index is the zero-based position of the cell within the grid container.
type MalformedProductError struct {
	Index  int
	Reason string
}

func (e *MalformedProductError) Error() string {
	return fmt.Sprintf("malformed product at index %d: %s", e.Index, e.Reason)
}
