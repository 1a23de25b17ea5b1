package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Configuration and data errors shared across seqshard packages.
// All of them are unrecoverable for a given input and configuration.
var (
	ErrSpecialIndexMismatch = errors.New("source and target vocabularies disagree on special token indices")
	ErrLineCountMismatch    = errors.New("different number of lines in parallel dataset")
	ErrBadBatchType         = errors.New("bad batch type")
	ErrInvalidConfig        = errors.New("invalid configuration")
	ErrEmptyCorpus          = errors.New("corpus has no lines")
	ErrTokenizerUnsupported = errors.New("unsupported tokenizer configuration")
	ErrPathEmpty            = errors.New("path cannot be empty")
)

// ValidationUtils provides common validation utilities used across packages
type ValidationUtils struct{}

// NewValidationUtils creates a new ValidationUtils instance
func NewValidationUtils() *ValidationUtils {
	return &ValidationUtils{}
}

// ValidateRequiredString validates that a string is not empty
func (vu *ValidationUtils) ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty: %w", fieldName, ErrInvalidConfig)
	}
	return nil
}

// ValidateNonNegative validates that an integer setting is >= 0
func (vu *ValidationUtils) ValidateNonNegative(value int, fieldName string) error {
	if value < 0 {
		return fmt.Errorf("%s must be >= 0, got %d: %w", fieldName, value, ErrInvalidConfig)
	}
	return nil
}

// ValidatePositive validates that an integer setting is > 0
func (vu *ValidationUtils) ValidatePositive(value int, fieldName string) error {
	if value <= 0 {
		return fmt.Errorf("%s must be > 0, got %d: %w", fieldName, value, ErrInvalidConfig)
	}
	return nil
}

// ErrorUtils provides common error handling utilities
type ErrorUtils struct{}

// NewErrorUtils creates a new ErrorUtils instance
func NewErrorUtils() *ErrorUtils {
	return &ErrorUtils{}
}

// WrapError wraps an error with additional context
func (eu *ErrorUtils) WrapError(err error, message string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	context := fmt.Sprintf(message, args...)
	return fmt.Errorf("%s: %w", context, err)
}

// LogAndWrapError logs an error at error level and wraps it with context
func (eu *ErrorUtils) LogAndWrapError(logger zerolog.Logger, err error, message string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	context := fmt.Sprintf(message, args...)
	logger.Error().Err(err).Msg(context)
	return fmt.Errorf("%s: %w", context, err)
}
