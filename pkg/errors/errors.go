package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents unreachable hosts, timeouts and non-2xx responses
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents missing or malformed markup and structured data
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeAssembly represents a work that cannot be turned into an EPUB
	ErrorTypeAssembly ErrorType = "assembly"
	// ErrorTypeIO represents output write failures
	ErrorTypeIO ErrorType = "io"
	// ErrorTypeCache represents cache backend failures
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError is the error returned by every stage of the pipeline
type ScrapeError struct {
	Type    ErrorType
	Source  string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	prefix := fmt.Sprintf("[%s]", e.Type)
	if e.Source != "" {
		prefix += " " + e.Source + ":"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s", prefix, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// New creates a new ScrapeError
func New(errType ErrorType, source, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
	}
}

// NewNetwork creates a new network error
func NewNetwork(source, message string, err error) *ScrapeError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewAssembly creates a new assembly error
func NewAssembly(source, message string) *ScrapeError {
	return New(ErrorTypeAssembly, source, message, nil)
}

// NewIO creates a new output error
func NewIO(source, message string, err error) *ScrapeError {
	return New(ErrorTypeIO, source, message, err)
}

// NewCache creates a new cache error
func NewCache(source, message string, err error) *ScrapeError {
	return New(ErrorTypeCache, source, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// TypeOf returns the type of the first ScrapeError in the chain, or "".
func TypeOf(err error) ErrorType {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se.Type
	}
	return ""
}

// IsType reports whether err wraps a ScrapeError of the given type
func IsType(err error, t ErrorType) bool {
	return err != nil && TypeOf(err) == t
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch TypeOf(err) {
	case ErrorTypeNetwork:
		return 2
	case ErrorTypeParsing:
		return 3
	case ErrorTypeAssembly:
		return 4
	case ErrorTypeIO:
		return 5
	case ErrorTypeCache, ErrorTypeConfiguration:
		return 6
	default:
		return 1
	}
}
