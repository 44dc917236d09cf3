package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes for the four recoverable/fatal failure kinds of the analysis core.
const (
	CodeDataQuality         = "DATA_QUALITY"
	CodeInvalidArgument     = "INVALID_ARGUMENT"
	CodeWorkflowStep        = "WORKFLOW_STEP"
	CodeAnomalyCollaborator = "ANOMALY_COLLABORATOR"
	CodeInternal            = "INTERNAL_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with additional context, preserving an existing code
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode wraps an error under an explicit code
func WithCode(err error, code, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// CodeOf returns the code of the outermost AppError in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsDataQuality reports whether err is a data-quality error. These are
// recoverable: the caller skips the offending metric and continues.
func IsDataQuality(err error) bool {
	return CodeOf(err) == CodeDataQuality
}

// IsInvalidArgument reports whether err is an invalid-argument error.
func IsInvalidArgument(err error) bool {
	return CodeOf(err) == CodeInvalidArgument
}

// IsWorkflowStep reports whether err aborted a workflow step.
func IsWorkflowStep(err error) bool {
	return CodeOf(err) == CodeWorkflowStep
}

// IsAnomalyCollaborator reports whether err came from the anomaly collaborator
// boundary. These never abort a run; the neutral default is substituted.
func IsAnomalyCollaborator(err error) bool {
	return CodeOf(err) == CodeAnomalyCollaborator
}
