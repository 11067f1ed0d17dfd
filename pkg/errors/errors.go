package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeExtractionMiss represents a selector chain that found nothing
	ErrorTypeExtractionMiss ErrorType = "extraction_miss"
	// ErrorTypeNavigation represents a page that could not be loaded
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeTimeout represents a navigation or selector wait that ran out of time
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeValidation represents a record or title that broke its output contract
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents a missing or invalid config
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeBrowser represents a browser or page that could not be created
	ErrorTypeBrowser ErrorType = "browser"
	// ErrorTypeSink represents a failure pushing records downstream
	ErrorTypeSink ErrorType = "sink"
)

var (
	ErrNoAdapter  = stderrors.New("no adapter found")
	ErrEmptyTitle = stderrors.New("empty title")
)

// ScrapeError represents a scraper-specific error
type ScrapeError struct {
	Type    ErrorType
	Brand   string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Brand, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Brand, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error must unwind to the entry point.
// Only resource acquisition failures do; everything else is recorded inline.
func (e *ScrapeError) IsFatal() bool {
	switch e.Type {
	case ErrorTypeConfiguration, ErrorTypeBrowser:
		return true
	default:
		return false
	}
}

// IsFatal reports whether err wraps a fatal ScrapeError
func IsFatal(err error) bool {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se.IsFatal()
	}
	return false
}

// TypeOf returns the ErrorType of a wrapped ScrapeError, or "" for other errors
func TypeOf(err error) ErrorType {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se.Type
	}
	return ""
}

// New creates a new ScrapeError
func New(errType ErrorType, brand, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Brand:   brand,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewExtractionMiss creates a new extraction miss error
func NewExtractionMiss(brand, message string) *ScrapeError {
	return New(ErrorTypeExtractionMiss, brand, message, nil)
}

// NewNavigation creates a new navigation error
func NewNavigation(brand, message string, err error) *ScrapeError {
	return New(ErrorTypeNavigation, brand, message, err)
}

// NewTimeout creates a new timeout error
func NewTimeout(brand, message string, err error) *ScrapeError {
	return New(ErrorTypeTimeout, brand, message, err)
}

// NewValidation creates a new validation error
func NewValidation(brand, message string) *ScrapeError {
	return New(ErrorTypeValidation, brand, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewBrowser creates a new browser error
func NewBrowser(brand, message string, err error) *ScrapeError {
	return New(ErrorTypeBrowser, brand, message, err)
}

// NewSink creates a new sink error
func NewSink(sink, message string, err error) *ScrapeError {
	return New(ErrorTypeSink, sink, message, err)
}
