/*
 * Copyright (c) 2026, kvbus authors. All rights reserved.
 */
package cmn

import (
	"errors"
	"fmt"
)

// Error taxonomy for the dispatcher. Every raised error implements
// Status() so the service facade can always produce a response.

// FrameError covers header/payload malformed, too-large, decompression
// failure, and unexpected EOF conditions in the frame codec.
type FrameError struct {
	Op  string
	Err error
}

func (e *FrameError) Error() string { return fmt.Sprintf("frame: %s: %v", e.Op, e.Err) }
func (e *FrameError) Unwrap() error { return e.Err }

// EncodeError/DecodeError wrap serialization failures.
type EncodeError struct{ Err error }

func (e *EncodeError) Error() string { return fmt.Sprintf("encode: %v", e.Err) }
func (e *EncodeError) Unwrap() error { return e.Err }

type DecodeError struct{ Err error }

func (e *DecodeError) Error() string { return fmt.Sprintf("decode: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// StorageError wraps a backend-specific I/O failure.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage(%s): %v", e.Backend, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// NotFoundError is a logical absence that a command surfaces as 404.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }
func (e *NotFoundError) Status() uint32 { return StatusNotFound }

func NewNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// InvalidCommandError is an unknown or malformed request variant -> 422.
type InvalidCommandError struct {
	Message string
}

func (e *InvalidCommandError) Error() string  { return e.Message }
func (e *InvalidCommandError) Status() uint32 { return StatusUnprocessableEntity }

func NewInvalidCommand(format string, args ...interface{}) *InvalidCommandError {
	return &InvalidCommandError{Message: fmt.Sprintf(format, args...)}
}

// InternalError is everything else -> 500.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string  { return fmt.Sprintf("internal: %v", e.Err) }
func (e *InternalError) Unwrap() error  { return e.Err }
func (e *InternalError) Status() uint32 { return StatusInternalError }

func NewInternal(err error) *InternalError { return &InternalError{Err: err} }

// statuser is implemented by every error in the taxonomy that carries a
// response status.
type statuser interface {
	Status() uint32
}

// StatusOf maps any error to a response status, defaulting to 500 for
// errors outside the taxonomy.
func StatusOf(err error) uint32 {
	if err == nil {
		return StatusOK
	}
	var s statuser
	if errors.As(err, &s) {
		return s.Status()
	}
	return StatusInternalError
}
