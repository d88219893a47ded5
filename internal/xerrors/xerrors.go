// Package xerrors implements the error taxonomy the decision pipeline uses
// to decide what is fatal, what degrades a single component, and what simply
// becomes a NO_TRADE with a reason.
package xerrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error by how the pipeline must react to it. It is never
// used for string matching; callers branch with errors.Is against the
// sentinel values below.
type Kind int

const (
	// KindConfig is an invalid or missing configuration value. Fatal at startup.
	KindConfig Kind = iota
	// KindIO is a file-open/read failure in a ChartTail. Retried with backoff.
	KindIO
	// KindParse is a malformed record or unknown variant field. Skipped, counted.
	KindParse
	// KindDataQuality is a recoverable invariant violation (NBCV sum mismatch,
	// out-of-range level). Logged; the feature or level is dropped.
	KindDataQuality
	// KindTimeout is a decision-deadline overrun. Produces NO_TRADE.
	KindTimeout
	// KindLogic is an assertion the code is supposed to uphold. Fatal.
	KindLogic
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config_error"
	case KindIO:
		return "io_error"
	case KindParse:
		return "parse_error"
	case KindDataQuality:
		return "data_quality_warning"
	case KindTimeout:
		return "timeout_error"
	case KindLogic:
		return "logic_error"
	default:
		return "unknown_error"
	}
}

// Error wraps an underlying cause with a Kind so callers can inspect it with
// errors.Is/errors.As without parsing strings.
type Error struct {
	Kind Kind
	Op   string // component/operation that raised it, e.g. "ChartTail.readLine"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, xerrors.Config) style sentinel checks by matching
// on Kind rather than identity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func new(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Config, IO, Parse, DataQuality, Timeout, Logic construct a *Error of the
// matching Kind. Use with errors.Is(err, xerrors.Config(..., nil)) or, more
// simply, xerrors.Is(err, xerrors.KindConfig).
func Config(op string, err error) *Error      { return new(KindConfig, op, err) }
func IO(op string, err error) *Error          { return new(KindIO, op, err) }
func Parse(op string, err error) *Error       { return new(KindParse, op, err) }
func DataQuality(op string, err error) *Error { return new(KindDataQuality, op, err) }
func Timeout(op string, err error) *Error     { return new(KindTimeout, op, err) }
func Logic(op string, err error) *Error       { return new(KindLogic, op, err) }

// Is reports whether err is an *Error of the given Kind, walking the chain
// with errors.As.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// Fatal reports whether err belongs to a Kind that must terminate the
// process per spec.md §7 (only ConfigError and LogicError are fatal).
func Fatal(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindConfig || e.Kind == KindLogic
}
