// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package errors provides typed, wrappable errors for the reconciler.
//
// Every failure in this module carries a Kind so that callers can branch
// on errors.Is/errors.As instead of matching error strings. The five kinds
// from the error-handling design (Config, Directory, ForgeTransient,
// ForgeKnown, Internal) determine whether a run aborts, skips an entity,
// or is demoted to a non-fatal log line.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the Dispatcher/Reconciler's fatal-vs-skip decision.
type Kind string

const (
	// KindConfig marks a missing or invalid configuration field. Always fatal,
	// before any network use.
	KindConfig Kind = "config"
	// KindDirectory marks an LDAP connect/bind/search failure. Always fatal;
	// partial directory data is unsafe to reconcile against.
	KindDirectory Kind = "directory"
	// KindForgeTransient marks a single-entity mutating-call failure. Skipped
	// when continueOnFail is set, otherwise fatal.
	KindForgeTransient Kind = "forge_transient"
	// KindForgeKnown marks a recognized, always-non-fatal forge error (e.g.
	// duplicate email on user creation).
	KindForgeKnown Kind = "forge_known"
	// KindInternal marks an invariant violation in input data. Logged and
	// the offending entity is skipped.
	KindInternal Kind = "internal"
)

// Sentinel errors used with Wrap/Is across the codebase.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConfigNotFound   = errors.New("config file not found")
	ErrInstanceNotFound = errors.New("gitlab instance not found")
)

// TypedError is a Kind-carrying error with optional key/value context for
// structured logging.
type TypedError struct {
	Kind    Kind
	Message string
	Context map[string]any
	Err     error
}

func (e *TypedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *TypedError) Unwrap() error {
	return e.Err
}

// New creates a TypedError of the given kind.
func New(kind Kind, message string) *TypedError {
	return &TypedError{Kind: kind, Message: message}
}

// Newf creates a TypedError of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *TypedError {
	return &TypedError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithContext attaches key/value context to a TypedError, returning the
// same pointer for chaining.
func (e *TypedError) WithContext(key string, value any) *TypedError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WrapKind wraps err as a TypedError of the given kind, preserving err for
// errors.Unwrap/errors.Is.
func WrapKind(kind Kind, err error, message string) *TypedError {
	if err == nil {
		return nil
	}
	return &TypedError{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of err if it (or something it wraps) is a
// *TypedError, and ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var te *TypedError
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return "", false
}

// Wrap returns target if err is nil, err if target is nil, or an error that
// wraps err and matches target via errors.Is otherwise.
func Wrap(err, target error) error {
	if err == nil {
		return target
	}
	if target == nil {
		return err
	}
	return fmt.Errorf("%w: %s", target, err.Error())
}

// WrapWithMessage wraps err with a message, preserving errors.Is/As against
// err. Returns nil if err is nil.
func WrapWithMessage(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether err matches target, per errors.Is semantics.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target's type.
func As(err error, target any) bool {
	return errors.As(err, target)
}
