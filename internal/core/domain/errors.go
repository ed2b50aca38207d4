package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrSummaryNotFound  = errors.New("summary not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")

	ErrUpload            = errors.New("upload failed")
	ErrUnsupportedType   = errors.New("unsupported file type")
	ErrExtraction        = errors.New("text extraction failed")
	ErrEmptyExtraction   = errors.New("no text could be extracted from the document")
	ErrSummaryService    = errors.New("summary service failed")
	ErrPersistence       = errors.New("persistence failed")
	ErrIllegalTransition = errors.New("illegal stage transition")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// UserMessage renders a single human-readable line for the caller.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case IsKind(err, ErrEmptyExtraction):
		return "No text could be extracted from the document"
	case IsKind(err, ErrInvalidInput):
		return rootCause(err).Error()
	case IsKind(err, ErrUnsupportedType):
		return "Unsupported file type. Please upload a PDF or an image."
	case IsKind(err, ErrUpload):
		return "Failed to upload the document: " + err.Error()
	case IsKind(err, ErrExtraction):
		return "Failed to extract text from the document: " + err.Error()
	case IsKind(err, ErrSummaryService):
		return "Failed to generate summaries: " + err.Error()
	case IsKind(err, ErrPersistence):
		return "Failed to save the results: " + err.Error()
	default:
		return err.Error()
	}
}

// rootCause follows the detail branch of WrapError chains.
func rootCause(err error) error {
	for {
		joined, ok := err.(interface{ Unwrap() []error })
		if !ok {
			return err
		}
		errs := joined.Unwrap()
		if len(errs) != 2 {
			return err
		}
		err = errs[1]
	}
}
