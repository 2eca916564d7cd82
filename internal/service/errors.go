package service

import (
	"errors"
	"fmt"
)

var (
	ErrNoText = errors.New("no text could be extracted from the PDF")
	ErrNotPDF = errors.New("not a PDF document (missing %PDF- header)")
)

// ExtractionError wraps a failure of the PDF text backend.
type ExtractionError struct {
	Backend string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Backend, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
