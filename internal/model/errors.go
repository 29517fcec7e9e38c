package model

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrMissingInput  = errors.New("missing input")
	ErrTransport     = errors.New("transport error")
	ErrFilesystem    = errors.New("filesystem error")
	ErrToolNotFound  = errors.New("tool not found")
	ErrToolExecution = errors.New("tool execution failed")
	ErrLogic         = errors.New("no file downloaded")
)

// Error carries the operation, the path involved and the underlying cause.
type Error struct {
	Kind error  // One of the Err* kinds above.
	Op   string // e.g. "fetch video", "rename", "mux"
	Path string // File or URL involved; may be empty.
	Err  error  // Underlying cause; may be nil.

	// Detail holds diagnostic text such as an HTTP body or ffmpeg stderr.
	Detail string
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	switch {
	case e.Err != nil:
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	case e.Kind != nil:
		msg = fmt.Sprintf("%s: %v", msg, e.Kind)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewError builds an *Error.
func NewError(kind error, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf returns the kind of err, or nil when err carries none.
func KindOf(err error) error {
	for _, k := range []error{ErrMissingInput, ErrTransport, ErrFilesystem, ErrToolNotFound, ErrToolExecution, ErrLogic} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
