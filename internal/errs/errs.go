// Package errs classifies failures of the remote store into the small
// set of categories the engines react to. Every remote failure path maps
// to exactly one Kind so recovery (reconcile vs. re-query vs. refuse)
// stays uniform.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies a failure category.
type Kind string

const (
	// KindNetwork indicates a transient transport or server failure.
	KindNetwork Kind = "network"
	// KindConflict indicates the mutation target no longer exists remotely.
	KindConflict Kind = "conflict"
	// KindValidation indicates the request would violate a stock bound.
	KindValidation Kind = "validation"
	// KindNotFound indicates a missing resource (e.g. no active cart yet).
	KindNotFound Kind = "not_found"
)

// E carries the classification plus an optional user-visible one-liner.
type E struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *E) Unwrap() error { return e.Err }

func New(kind Kind, op string, err error) *E {
	return &E{Kind: kind, Op: op, Err: err}
}

func Network(op string, err error) *E    { return New(KindNetwork, op, err) }
func Conflict(op string, err error) *E   { return New(KindConflict, op, err) }
func Validation(op string, err error) *E { return New(KindValidation, op, err) }
func NotFound(op string, err error) *E   { return New(KindNotFound, op, err) }

// WithMessage attaches a user-visible message and returns the error.
func (e *E) WithMessage(msg string) *E {
	e.Msg = msg
	return e
}

// KindOf reports the classification of err, defaulting to KindNetwork for
// unclassified failures so callers always take the conservative
// reconcile path.
func KindOf(err error) Kind {
	var e *E
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNetwork
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *E
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// UserMessage returns the attached user-visible message, or empty when
// none was set.
func UserMessage(err error) string {
	var e *E
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}
