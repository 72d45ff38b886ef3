package suite

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha512"
	"errors"
	"fmt"
	"math/big"
)

// gcmNonceSize is the 96-bit nonce §4.1 mandates for AES-256-GCM.
const gcmNonceSize = 12

// v1 is the notary's first algorithm suite: SHA-512 digest, P-256 ECDSA
// signatures, and ECDH(P-256)+AES-256-GCM encryption, with the symmetric
// key taken as the first 32 bytes of the ECDH shared secret rather than
// run through an HKDF (§4.1's documented rationale: P-256 ECDH already
// yields a 32-byte shared secret, so deriving through HKDF would only add
// an interop hazard, not security margin).
type v1 struct{}

// V1 is the suite registered under protocol "v1".
var V1 Suite = v1{}

func (v1) Protocol() string { return "v1" }

func (v1) Digest(payload []byte) []byte {
	sum := sha512.Sum512(payload)
	return sum[:]
}

func (v1) GenerateKeyPair() (KeyPair, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("suite v1: generate key pair: %w", err)
	}
	return KeyPair{
		PublicKey:  marshalPublic(priv.X, priv.Y),
		PrivateKey: marshalPrivate(priv.D),
	}, nil
}

func (v1) Sign(privateKey []byte, payload []byte) ([]byte, error) {
	priv, err := ecdsaPrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("suite v1: sign: %w", err)
	}
	digest := v1{}.Digest(payload)
	sig, err := ecdsa.SignASN1(rand.Reader, priv, digest)
	if err != nil {
		return nil, fmt.Errorf("suite v1: sign: %w", err)
	}
	return sig, nil
}

func (v1) Verify(publicKey []byte, payload []byte, sig []byte) (bool, error) {
	pub, err := ecdsaPublicKey(publicKey)
	if err != nil {
		return false, fmt.Errorf("suite v1: verify: %w", err)
	}
	digest := v1{}.Digest(payload)
	return ecdsa.VerifyASN1(pub, digest, sig), nil
}

func (v1) Encrypt(recipientPublicKey []byte, plaintext []byte) (seed, iv, auth, ciphertext []byte, err error) {
	recipientPub, err := ecdsaPublicKey(recipientPublicKey)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("suite v1: encrypt: %w", err)
	}
	recipientECDH, err := recipientPub.ECDH()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("suite v1: encrypt: %w", err)
	}

	ephemeral, err := ecdhCurve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("suite v1: generate ephemeral key: %w", err)
	}
	shared, err := ephemeral.ECDH(recipientECDH)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("suite v1: ecdh: %w", err)
	}

	gcm, err := newGCM(symmetricKey(shared))
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("suite v1: %w", err)
	}
	nonce := make([]byte, gcmNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("suite v1: generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	ct, tag := splitTag(sealed, gcm.Overhead())
	return ephemeral.PublicKey().Bytes(), nonce, tag, ct, nil
}

func (v1) Decrypt(recipientPrivateKey []byte, seed, iv, auth, ciphertext []byte) ([]byte, error) {
	priv, err := ecdsaPrivateKey(recipientPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("suite v1: decrypt: %w", err)
	}
	recipientECDH, err := priv.ECDH()
	if err != nil {
		return nil, fmt.Errorf("suite v1: decrypt: %w", err)
	}
	ephemeralPub, err := ecdhCurve.NewPublicKey(seed)
	if err != nil {
		return nil, fmt.Errorf("suite v1: decrypt: invalid seed: %w", err)
	}
	shared, err := recipientECDH.ECDH(ephemeralPub)
	if err != nil {
		return nil, fmt.Errorf("suite v1: ecdh: %w", err)
	}

	gcm, err := newGCM(symmetricKey(shared))
	if err != nil {
		return nil, fmt.Errorf("suite v1: %w", err)
	}
	if len(iv) != gcmNonceSize {
		return nil, errors.New("suite v1: decrypt: invalid iv length")
	}
	sealed := append(append([]byte(nil), ciphertext...), auth...)
	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, errAuthenticationFailed
	}
	return plaintext, nil
}

// errAuthenticationFailed is the suite-local sentinel the ssm layer maps
// to notaryerr.ErrAuthenticationFailed; kept unexported so callers outside
// this package can't accidentally compare against the wrong error value.
var errAuthenticationFailed = errors.New("suite v1: gcm tag mismatch")

// IsAuthenticationFailure reports whether err is the tag-mismatch failure
// Decrypt returns.
func IsAuthenticationFailure(err error) bool {
	return errors.Is(err, errAuthenticationFailed)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new aes cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// symmetricKey takes the first 32 bytes of a P-256 ECDH shared secret.
// The shared secret computed by crypto/ecdh for P-256 is already exactly
// 32 bytes (the curve's x-coordinate), so this is a no-op slice in
// practice — written explicitly so the rule from §4.1 stays visible in
// the code rather than relying on an implementation detail of the shared
// secret's length.
func symmetricKey(shared []byte) []byte {
	if len(shared) > 32 {
		return shared[:32]
	}
	return shared
}

func splitTag(sealed []byte, tagSize int) (ciphertext, tag []byte) {
	n := len(sealed) - tagSize
	return sealed[:n], sealed[n:]
}

var ecdhCurve = ecdh.P256()

func marshalPublic(x, y *big.Int) []byte {
	return elliptic.Marshal(elliptic.P256(), x, y)
}

func marshalPrivate(d *big.Int) []byte {
	raw := make([]byte, 32)
	d.FillBytes(raw)
	return raw
}

func ecdsaPrivateKey(raw []byte) (*ecdsa.PrivateKey, error) {
	if len(raw) != 32 {
		return nil, errors.New("invalid private key length")
	}
	curve := elliptic.P256()
	d := new(big.Int).SetBytes(raw)
	x, y := curve.ScalarBaseMult(raw)
	return &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve, X: x, Y: y},
		D:         d,
	}, nil
}

func ecdsaPublicKey(raw []byte) (*ecdsa.PublicKey, error) {
	x, y := elliptic.Unmarshal(elliptic.P256(), raw)
	if x == nil {
		return nil, errors.New("invalid public key encoding")
	}
	return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}, nil
}
