// Package suite implements the notary's algorithm suite contract: digest,
// key generation, sign/verify, and ECDH-based encrypt/decrypt, behind a
// closed set of versioned implementations a Protocol Registry dispatches
// to by name (§4.1, §4.5).
package suite

// KeyPair is a generated asymmetric key pair in its suite-native wire
// encoding (uncompressed SEC1 point for the public half, raw scalar for
// the private half).
type KeyPair struct {
	PublicKey  []byte
	PrivateKey []byte
}

// Suite is a single version of the algorithm suite: one fixed digest
// algorithm, one signature scheme, one AEAD, and one key-agreement
// scheme. Each version registered with a Registry implements this
// interface once, never changing behavior after it ships — a new
// algorithm choice is a new version, not a mutation of an old one.
type Suite interface {
	// Protocol is the version string this suite answers to, e.g. "v1".
	Protocol() string

	// Digest returns the suite's hash of payload.
	Digest(payload []byte) []byte

	// GenerateKeyPair produces a fresh asymmetric key pair.
	GenerateKeyPair() (KeyPair, error)

	// Sign produces a detached signature of payload under privateKey.
	Sign(privateKey []byte, payload []byte) ([]byte, error)

	// Verify reports whether sig is a valid signature of payload under
	// publicKey. An invalid signature is not an error (§7) — callers
	// distinguish "verification ran and failed" from "verification
	// could not run" by the returned error.
	Verify(publicKey []byte, payload []byte, sig []byte) (bool, error)

	// Encrypt seals plaintext for recipientPublicKey, returning the
	// sender's ephemeral public key (seed), the AEAD nonce (iv), the
	// authentication tag (auth), and the ciphertext.
	Encrypt(recipientPublicKey []byte, plaintext []byte) (seed, iv, auth, ciphertext []byte, err error)

	// Decrypt reverses Encrypt using the recipient's private key and the
	// sender's ephemeral public key (seed).
	Decrypt(recipientPrivateKey []byte, seed, iv, auth, ciphertext []byte) ([]byte, error)
}
