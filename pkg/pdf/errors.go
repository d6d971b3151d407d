package pdf

import (
	"errors"
	"fmt"
)

// ErrNoPages is returned for documents that open but contain no pages.
var ErrNoPages = errors.New("document has no pages")

// DocumentOpenError reports a PDF that could not be opened by any backend.
type DocumentOpenError struct {
	Path string
	Err  error
}

func (e *DocumentOpenError) Error() string {
	return fmt.Sprintf("open document %s: %v", e.Path, e.Err)
}

func (e *DocumentOpenError) Unwrap() error { return e.Err }

// PageRangeError reports a page index outside the document.
type PageRangeError struct {
	Index int
	Count int
}

func (e *PageRangeError) Error() string {
	return fmt.Sprintf("page index %d out of range [0, %d)", e.Index, e.Count)
}

func checkPageIndex(index, count int) error {
	if index < 0 || index >= count {
		return &PageRangeError{Index: index, Count: count}
	}
	return nil
}
