// Package apperror holds the error kinds callers are allowed to tell apart.
// NotFound and Invalid are surfaced distinctly at the HTTP boundary;
// everything else is a generic failure of the current request.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrUpstream = errors.New("upstream failure")
	ErrInvalid  = errors.New("invalid input")
)

// NotFound wraps ErrNotFound with a description of the missing entity.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Upstream marks err as a failure of a collaborator (profile source, model, store).
func Upstream(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, ErrUpstream, err)
}

// Invalid rejects caller input before any work is done.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalid)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}
