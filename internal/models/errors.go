package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrParse ErrorType = iota
	ErrNotFound
	ErrInvalidPath
	ErrAlreadyInstalled
	ErrNotInstalled
	ErrHasConflicts
	ErrRequiredByOthers
	ErrDatabase
	ErrInvalidConfig
	ErrFileOp
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrParse:
		return "ParseError"
	case ErrNotFound:
		return "NotFound"
	case ErrInvalidPath:
		return "InvalidPath"
	case ErrAlreadyInstalled:
		return "AlreadyInstalled"
	case ErrNotInstalled:
		return "NotInstalled"
	case ErrHasConflicts:
		return "HasConflicts"
	case ErrRequiredByOthers:
		return "RequiredByOthers"
	case ErrDatabase:
		return "DatabaseError"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrFileOp:
		return "FileOp"
	default:
		return "Unknown"
	}
}

// Error lets an ErrorType be used as a sentinel with errors.Is
func (e ErrorType) Error() string {
	return e.String()
}

// MhwdError represents an error raised by a catalog query or a transaction check
type MhwdError struct {
	Type ErrorType
	// Config is the config name the operation was about, if any
	Config string
	// Path is the file the error refers to, if any
	Path string
	// Names lists the offending configs for HasConflicts and RequiredByOthers
	Names []string
	Err   error
}

// Error implements the error interface
func (e *MhwdError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", e.Type)
	if e.Config != "" {
		fmt.Fprintf(&b, " %s:", e.Config)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " %s:", e.Path)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, " %v", e.Err)
	}
	if len(e.Names) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Names, ", "))
	}
	return b.String()
}

// Unwrap returns the wrapped error
func (e *MhwdError) Unwrap() error {
	return e.Err
}

// Is matches an ErrorType sentinel against the error category
func (e *MhwdError) Is(target error) bool {
	t, ok := target.(ErrorType)
	return ok && t == e.Type
}

// NewError builds an MhwdError of the given type for a config
func NewError(t ErrorType, config string, err error) *MhwdError {
	return &MhwdError{Type: t, Config: config, Err: err}
}

// TypeOf returns the category of err, or false if err carries none
func TypeOf(err error) (ErrorType, bool) {
	var me *MhwdError
	if errors.As(err, &me) {
		return me.Type, true
	}
	var t ErrorType
	if errors.As(err, &t) {
		return t, true
	}
	return 0, false
}
