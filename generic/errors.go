/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Every failure in a run falls into exactly one of three categories, and a
  run never recovers locally: the first error aborts the whole run.

ERROR CATEGORIES:
  1. Load errors  - Snapshot missing, unreadable, or structurally malformed
  2. Parse errors - A field exists but cannot be interpreted (vipList line,
                    non-numeric amount, unparseable timestamp)
  3. Write errors - Persisting the snapshot back failed

USAGE:
  Callers classify with errors.Is against the sentinels:

    if errors.Is(err, generic.ErrParse) {
        ...
    }

  or extract details with errors.As:

    var pe *generic.ParseError
    if errors.As(err, &pe) {
        log.Println(pe.Field)
    }

SEE ALSO:
  - snapshot/file.go: Produces LoadError and WriteError
  - vip/balances.go: Produces ParseError for vipList lines
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrLoad is the category of every snapshot loading failure.
	ErrLoad = errors.New("load failed")

	// ErrParse is the category of every field interpretation failure.
	ErrParse = errors.New("parse failed")

	// ErrWrite is the category of every persistence failure.
	ErrWrite = errors.New("write failed")

	// ErrMissingField is wrapped by ParseError when a required field is absent.
	ErrMissingField = errors.New("missing field")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// LoadError reports a snapshot that could not be read or has the wrong shape.
type LoadError struct {
	Path   string // empty when decoding from a stream
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	if e.Path != "" {
		return fmt.Sprintf("load %s: %s", e.Path, msg)
	}
	return "load snapshot: " + msg
}

func (e *LoadError) Is(target error) bool { return target == ErrLoad }
func (e *LoadError) Unwrap() error        { return e.Err }

// ParseError reports a field whose value cannot be interpreted.
type ParseError struct {
	Field string // location, e.g. "vipList line 3" or "orderHistory[2].date"
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("parse %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }
func (e *ParseError) Unwrap() error        { return e.Err }

// WriteError reports a failure persisting the snapshot.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Is(target error) bool { return target == ErrWrite }
func (e *WriteError) Unwrap() error        { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

func IsLoadError(err error) bool  { return errors.Is(err, ErrLoad) }
func IsParseError(err error) bool { return errors.Is(err, ErrParse) }
func IsWriteError(err error) bool { return errors.Is(err, ErrWrite) }
