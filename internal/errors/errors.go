// Package errors provides standardized error handling for the
// application: common error kinds, helpers for creation and wrapping,
// and the per-item batch error used by bulk file operations.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-exported standard helpers for convenience.
var (
	Unwrap = errors.Unwrap
	Is     = errors.Is
	As     = errors.As
)

// ErrorKind represents the kind of error.
type ErrorKind int

// Error kinds.
const (
	Unknown ErrorKind = iota
	// File operation kinds
	FileNotFound
	FileExists
	FileOperationFailed
	// Search kinds
	SearchFailed
	SearchUnavailable
	// Coordinator kinds
	Superseded
	// Config kinds
	InvalidConfig
)

// ErrSuperseded is settled by latest-wins work that a newer submission
// displaced. Not a failure.
var ErrSuperseded = &ApplicationError{msg: "superseded by newer request", kind: Superseded}

// ApplicationError is the base error type for all application errors.
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message.
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error.
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error.
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// New creates a new error with a message.
func New(msg string) error {
	return &ApplicationError{msg: msg, kind: Unknown}
}

// Newf creates a new error with a formatted message.
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{msg: fmt.Sprintf(format, args...), kind: Unknown}
}

// NewKind creates a new error with an explicit kind.
func NewKind(kind ErrorKind, msg string) error {
	return &ApplicationError{msg: msg, kind: kind}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{msg: msg, err: err, kind: kindOf(err)}
}

// Wrapf wraps an existing error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{msg: fmt.Sprintf(format, args...), err: err, kind: kindOf(err)}
}

func kindOf(err error) ErrorKind {
	var app *ApplicationError
	if errors.As(err, &app) {
		return app.kind
	}
	return Unknown
}

// IsSuperseded reports whether err marks latest-wins work that was
// skipped in favor of a newer submission.
func IsSuperseded(err error) bool {
	return kindOf(err) == Superseded
}

// IsSearchFailure reports whether err came from a search provider call.
func IsSearchFailure(err error) bool {
	k := kindOf(err)
	return k == SearchFailed || k == SearchUnavailable
}

// FileError represents an error tied to one file path.
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error.
func NewFileError(msg, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{msg: msg, err: err, kind: kind},
		path:             path,
	}
}

// Error returns the file error message.
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error.
func (e *FileError) Path() string {
	return e.path
}

// ItemFailure is one failed item of a batch operation.
type ItemFailure struct {
	Path string
	Err  error
}

// BatchError aggregates per-item failures of a bulk operation. The batch
// itself keeps going; this only reports the items that failed.
type BatchError struct {
	Op    string
	Items []ItemFailure
}

// NewBatchError returns a BatchError, or nil when no items failed.
func NewBatchError(op string, items []ItemFailure) error {
	if len(items) == 0 {
		return nil
	}
	return &BatchError{Op: op, Items: items}
}

// Error returns a summary listing the failed paths.
func (e *BatchError) Error() string {
	paths := make([]string, len(e.Items))
	for i, it := range e.Items {
		paths[i] = it.Path
	}
	return fmt.Sprintf("%s failed for %d item(s): %s", e.Op, len(e.Items), strings.Join(paths, ", "))
}

// IsBatchError checks if the error aggregates per-item batch failures.
func IsBatchError(err error) bool {
	var batch *BatchError
	return errors.As(err, &batch)
}
