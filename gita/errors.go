package gita

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches a *NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrStructure matches a *StructureError.
	ErrStructure = errors.New("unexpected chapter structure")
)

// FetchError is a failed read of the remote source: either the transport
// failed (StatusCode 0, Err set) or the server answered with a non-2xx status.
type FetchError struct {
	Chapter    int
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch chapter %d: HTTP status %d", e.Chapter, e.StatusCode)
	}
	return fmt.Sprintf("fetch chapter %d: %v", e.Chapter, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means the response body was not valid JSON.
type ParseError struct {
	Chapter int
	URL     string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse chapter %d: %v", e.Chapter, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StructureError means the payload is not an object carrying the verse
// sequence.
type StructureError struct {
	Chapter int
	Reason  string
	Err     error
}

func (e *StructureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chapter %d: %s: %v", e.Chapter, e.Reason, e.Err)
	}
	return fmt.Sprintf("chapter %d: %s", e.Chapter, e.Reason)
}

func (e *StructureError) Is(target error) bool { return target == ErrStructure }
func (e *StructureError) Unwrap() error        { return e.Err }

// NotFoundError means the chapter payload has no record for the verse.
type NotFoundError struct {
	Chapter int
	Verse   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("verse %d not found in chapter %d", e.Verse, e.Chapter)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
