package extraction

import (
	"errors"
	"fmt"
	"time"
)

// ErrExtractorUnavailable is returned when no matcher has been loaded.
var ErrExtractorUnavailable = errors.New("skill extractor not loaded")

// DataFormatError is returned when a taxonomy or hints source cannot be decoded.
type DataFormatError struct {
	Source  string
	Message string
	Cause   error
}

func (e *DataFormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed data in %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed data in %s: %s", e.Source, e.Message)
}

func (e *DataFormatError) Unwrap() error {
	return e.Cause
}

// MatcherUnavailableError means a matcher could not be built from the given resources.
type MatcherUnavailableError struct {
	Message string
	Cause   error
}

func (e *MatcherUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("matcher unavailable: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("matcher unavailable: %s", e.Message)
}

func (e *MatcherUnavailableError) Unwrap() error {
	return e.Cause
}

// ValidationError represents a rejected extraction request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ExtractionTimeoutError is returned when extraction exceeds its time ceiling.
type ExtractionTimeoutError struct {
	Limit time.Duration
}

func (e *ExtractionTimeoutError) Error() string {
	return fmt.Sprintf("extraction exceeded %s: text too long or too complex", e.Limit)
}

// ExtractionInternalError wraps unexpected failures during matching.
type ExtractionInternalError struct {
	Message string
	Cause   error
}

func (e *ExtractionInternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed: %s", e.Message)
}

func (e *ExtractionInternalError) Unwrap() error {
	return e.Cause
}
