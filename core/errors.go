// Copyright (c) 2026 titan3d
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"errors"

	vk "github.com/devblok/vulkan"
)

// ErrDriverUnavailable reports that the Vulkan driver library could not
// be loaded. Check for it with errors.Is.
var ErrDriverUnavailable = errors.New("vulkan driver library unavailable")

// GraphicsError is a driver-reported failure. The raw status code is
// propagated unchanged; it is not recoverable at this layer.
type GraphicsError struct {
	Op     string
	Result vk.Result
}

func (e *GraphicsError) Error() string {
	return e.Op + ": " + vk.Error(e.Result).Error()
}

// Error is a local failure: a missing parent handle, an unsupported
// queue family, a driver library that would not load. It optionally
// wraps a lower cause.
type Error struct {
	Message string
	Source  error
}

func (e *Error) Error() string {
	if e.Source != nil {
		return e.Message + ": " + e.Source.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Source
}

func newError(message string, source error) error {
	return &Error{Message: message, Source: source}
}

// Check translates a native status code, keeping raw integers from
// crossing the API surface. Sibling renderer packages route their
// driver calls through it so callers observe one error taxonomy.
func Check(op string, result vk.Result) error {
	if result != vk.Success {
		return &GraphicsError{Op: op, Result: result}
	}
	return nil
}
