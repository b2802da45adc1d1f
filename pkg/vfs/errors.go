package vfs

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the class of a virtual filesystem failure.
// The gateway translates these into protocol-level replies; they never
// carry OS-level semantics because nothing here touches a real disk.
type ErrorCode int

const (
	// ErrDirectoryNotFound indicates a lookup on a directory path that was
	// never created in this session.
	ErrDirectoryNotFound ErrorCode = iota

	// ErrFileNotFound indicates a lookup on a file path with no finalized
	// upload buffer.
	ErrFileNotFound

	// ErrAppendNotSupported indicates an attempt to open a write sink in
	// append mode. Uploads are whole-file only.
	ErrAppendNotSupported

	// ErrNotSupported indicates an operation the virtual filesystem does not
	// implement (rename, permission changes, ...).
	ErrNotSupported
)

func (c ErrorCode) String() string {
	switch c {
	case ErrDirectoryNotFound:
		return "directory not found"
	case ErrFileNotFound:
		return "file not found"
	case ErrAppendNotSupported:
		return "append not supported"
	case ErrNotSupported:
		return "operation not supported"
	default:
		return "unknown error"
	}
}

// PathError is the structured error returned by all filesystem operations.
// It carries the error class and the normalized path it applies to, so
// callers can map it to a protocol reply without string matching.
type PathError struct {
	Code ErrorCode
	Path string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Path)
}

// newPathError builds a PathError for the given code and normalized path.
func newPathError(code ErrorCode, path string) *PathError {
	return &PathError{Code: code, Path: path}
}

// IsCode reports whether err is a PathError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var pe *PathError
	return errors.As(err, &pe) && pe.Code == code
}
