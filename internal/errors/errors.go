package errors

import (
	"errors"
	"fmt"
)

// Code identifies the class of a pipeline error. Statistical degeneracies
// (zero variance, empty baseline subset) are handled by documented fallbacks
// and never surface as errors.
type Code string

const (
	// CodeMalformedInput marks input missing a required column or carrying an
	// unparseable key.
	CodeMalformedInput Code = "MALFORMED_INPUT"
	// CodeEmptyInput marks input with zero usable rows or columns after
	// numeric coercion.
	CodeEmptyInput Code = "EMPTY_INPUT"
	// CodeNormalization marks normalization input that is structurally
	// malformed.
	CodeNormalization Code = "NORMALIZATION_FAILED"
)

// PipelineError is a structured error produced by a pipeline stage for one
// unit of work. Units fail independently: the stage logs the error, counts
// the failure, and continues with the remaining units.
type PipelineError struct {
	Code    Code
	Stage   string
	Unit    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Unit != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Unit)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped cause, if any.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// WithUnit returns a copy of the error tagged with the failing unit key.
func (e *PipelineError) WithUnit(unit string) *PipelineError {
	clone := *e
	clone.Unit = unit
	return &clone
}

// New creates a PipelineError with the given code and formatted message.
func New(code Code, stage, format string, args ...interface{}) *PipelineError {
	return &PipelineError{
		Code:    code,
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a PipelineError wrapping an underlying cause.
func Wrap(code Code, stage string, err error, format string, args ...interface{}) *PipelineError {
	return &PipelineError{
		Code:    code,
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// MalformedInput creates a malformed-input error.
func MalformedInput(stage, format string, args ...interface{}) *PipelineError {
	return New(CodeMalformedInput, stage, format, args...)
}

// EmptyInput creates an empty-input error.
func EmptyInput(stage, format string, args ...interface{}) *PipelineError {
	return New(CodeEmptyInput, stage, format, args...)
}

// Normalization creates a normalization error.
func Normalization(stage, format string, args ...interface{}) *PipelineError {
	return New(CodeNormalization, stage, format, args...)
}

// CodeOf extracts the code from an error chain, or "" when the chain holds no
// PipelineError.
func CodeOf(err error) Code {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsMalformedInput reports whether the error chain carries a malformed-input
// error.
func IsMalformedInput(err error) bool {
	return CodeOf(err) == CodeMalformedInput
}

// IsEmptyInput reports whether the error chain carries an empty-input error.
func IsEmptyInput(err error) bool {
	return CodeOf(err) == CodeEmptyInput
}

// IsNormalization reports whether the error chain carries a normalization
// error.
func IsNormalization(err error) bool {
	return CodeOf(err) == CodeNormalization
}
