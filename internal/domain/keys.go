// Package domain defines the notary protocol's fixed-shape artifacts
// (Certificate, Document, Citation, AEM) and the key-reference types the
// security module uses to name the key it holds. Each artifact is a thin,
// typed view over a values.Catalog — the core's only dependency on the
// external value framework is the Catalog/Value contract itself.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// KeyPurpose narrows a KeyRef to what the referenced key is used for.
// This notary has exactly one: signing/decrypting on behalf of an
// account's notary certificate.
type KeyPurpose string

const KeyPurposeNotarySigning KeyPurpose = "notary-signing"

// KeyRef names a specific key instance, the way the security module's
// structured logging refers to "the" key without ever naming it by its
// private material.
type KeyRef struct {
	AccountID string
	Purpose   KeyPurpose
	KID       string
}

// NewKeyRef builds the reference for the notary-signing key identified by
// publicKey, deriving KID the same way a rotation log names a key
// instance: the hex-encoded SHA-256 of its public bytes.
func NewKeyRef(accountID string, publicKey []byte) KeyRef {
	sum := sha256.Sum256(publicKey)
	return KeyRef{
		AccountID: accountID,
		Purpose:   KeyPurposeNotarySigning,
		KID:       hex.EncodeToString(sum[:]),
	}
}

// KeyStatus labels the SSM's current and immediately-prior key on its
// structured log records; it is not stored anywhere. This is not a
// revocation list (an explicit Non-goal) — it only ever describes the
// SSM's own key, not a registry of other parties' keys.
type KeyStatus string

const (
	KeyStatusActive  KeyStatus = "active"
	KeyStatusRetired KeyStatus = "retired"
)
