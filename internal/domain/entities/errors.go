package entities

import (
	"errors"
	"fmt"
)

// Sentinel errors for input validation
var (
	ErrInvalidOption    = errors.New("invalid option")
	ErrUnknownPlatform  = errors.New("unknown platform")
	ErrInvalidReference = errors.New("invalid package reference")
)

// InvalidOptionError reports an unrecognized option key or a non-boolean value
type InvalidOptionError struct {
	Key    string
	Value  string
	Reason string
}

func (e *InvalidOptionError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid option %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("invalid option %s=%q: %s", e.Key, e.Value, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidOption)
func (e *InvalidOptionError) Unwrap() error {
	return ErrInvalidOption
}

// UnknownPlatformError reports a platform that is neither Windows nor POSIX
type UnknownPlatformError struct {
	Name string
}

func (e *UnknownPlatformError) Error() string {
	return fmt.Sprintf("unknown platform %q: cannot classify as windows or posix", e.Name)
}

// Unwrap allows errors.Is(err, ErrUnknownPlatform)
func (e *UnknownPlatformError) Unwrap() error {
	return ErrUnknownPlatform
}

// InvalidReferenceError reports a malformed name/version@user/channel string
type InvalidReferenceError struct {
	Reference string
	Reason    string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid package reference %q: %s", e.Reference, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidReference)
func (e *InvalidReferenceError) Unwrap() error {
	return ErrInvalidReference
}
