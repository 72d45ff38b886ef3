// Package notaryerr defines the closed error taxonomy the notary core
// returns. Validation failures (bad signatures, mismatched digests) are
// never represented here — those come back as a plain bool, per the
// policy in spec §7. This package covers structural and I/O failures
// only.
package notaryerr

import (
	"errors"
	"fmt"
)

// Kind is one of the closed set of structural/I-O failure categories the
// notary core can report.
type Kind string

const (
	KindMalformedComponent   Kind = "malformed_component"
	KindUninitializedKey     Kind = "uninitialized_key"
	KindAlreadyInitialized   Kind = "already_initialized"
	KindUnsupportedProtocol  Kind = "unsupported_protocol"
	KindAuthenticationFailed Kind = "authentication_failed"
	KindStorageError         Kind = "storage_error"
	KindUnsupportedPlatform  Kind = "unsupported_platform"
)

// Sentinel errors for each Kind, so callers can use errors.Is against
// either the sentinel or an *Error wrapping it.
var (
	ErrMalformedComponent   = errors.New("malformed component")
	ErrUninitializedKey     = errors.New("uninitialized key")
	ErrAlreadyInitialized   = errors.New("already initialized")
	ErrUnsupportedProtocol  = errors.New("unsupported protocol")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrStorageError         = errors.New("storage error")
	ErrUnsupportedPlatform  = errors.New("unsupported platform")
)

var sentinelForKind = map[Kind]error{
	KindMalformedComponent:   ErrMalformedComponent,
	KindUninitializedKey:     ErrUninitializedKey,
	KindAlreadyInitialized:   ErrAlreadyInitialized,
	KindUnsupportedProtocol:  ErrUnsupportedProtocol,
	KindAuthenticationFailed: ErrAuthenticationFailed,
	KindStorageError:         ErrStorageError,
	KindUnsupportedPlatform:  ErrUnsupportedPlatform,
}

// Error is the typed error value every notary operation returns on
// structural or I/O failure. It carries the module and operation that
// failed, the failure Kind, and an optional wrapped cause — but never the
// private key, which must never appear in an error value.
type Error struct {
	Module string
	Op     string
	Kind   Kind
	Err    error
}

// New builds an Error for the given module/operation/kind, optionally
// wrapping a cause.
func New(module, op string, kind Kind, cause error) *Error {
	return &Error{Module: module, Op: op, Kind: kind, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Module, e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Module, e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, notaryerr.ErrUninitializedKey) succeed against
// any *Error of that Kind, regardless of what cause it wraps.
func (e *Error) Is(target error) bool {
	sentinel, ok := sentinelForKind[e.Kind]
	return ok && target == sentinel
}
