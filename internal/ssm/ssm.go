// Package ssm implements the Security Module abstraction (§4.3): the sole
// holder of the notary's private key, and the only component that ever
// touches it. SoftwareSecurityModule is the reference implementation; an
// HSM-backed adapter would implement the same SecurityModule interface
// and the notary core above it would be none the wiser.
package ssm

import (
	"context"

	"github.com/sealbound/notary/internal/domain"
	"github.com/sealbound/notary/internal/values"
)

// State is the SSM's lifecycle state (§4.3's state machine). The
// terminal state is Uninitialized; sign and decrypt are valid only in
// Active.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateActive        State = "active"
)

// SecurityModule is the contract the notary core depends on. Every
// operation that needs the private key flows through one of these
// methods — nothing above this package ever sees key bytes directly.
type SecurityModule interface {
	// Initialize loads any persisted key and certificate from storage. It
	// is idempotent and safe to call on an already-Active module.
	Initialize(ctx context.Context) error

	// State reports the module's current lifecycle state.
	State() State

	// Certificate returns the current notary certificate document, and
	// false if the module is Uninitialized.
	Certificate() (domain.Document, bool)

	// Citation returns a citation to the current certificate, and false
	// if the module is Uninitialized.
	Citation() (domain.Citation, bool)

	// GenerateKey creates the module's first key pair and self-signed
	// genesis certificate. Fails with AlreadyInitialized if a key is
	// already present.
	GenerateKey(ctx context.Context, accountID values.Tag, permissions values.Name) (domain.Document, error)

	// RotateKey replaces the current key with a freshly generated one,
	// producing a new certificate signed by the outgoing key and chained
	// to it via $previous. Fails with UninitializedKey if no key exists
	// yet.
	RotateKey(ctx context.Context) (domain.Document, error)

	// ForgetKey zeroes the in-memory key material and deletes the
	// persisted key and certificate files. Safe to call when already
	// Uninitialized.
	ForgetKey(ctx context.Context) error

	// Sign produces a detached signature over documentBytes using the
	// current private key. Fails with UninitializedKey if Uninitialized.
	Sign(ctx context.Context, documentBytes []byte) ([]byte, error)

	// Decrypt reverses an AEM encrypted for the current public key.
	// Fails with UninitializedKey if Uninitialized, UnsupportedProtocol
	// if no suite is registered for aem's protocol, and
	// AuthenticationFailed if the GCM tag does not verify.
	Decrypt(ctx context.Context, aem domain.AEM) ([]byte, error)
}
