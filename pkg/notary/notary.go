// Package notary is the public API of the digital notary: the handful
// of operations a caller needs — notarize, cite, verify, encrypt,
// decrypt — sitting on top of the Security Module and the Protocol
// Registry (§4.4). Everything below internal/ is an implementation
// detail; this package is the only one a host application imports.
package notary

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sealbound/notary/internal/domain"
	"github.com/sealbound/notary/internal/notaryerr"
	"github.com/sealbound/notary/internal/ssm"
	"github.com/sealbound/notary/internal/suite"
	"github.com/sealbound/notary/internal/values"
)

const module = "notary"

// Notary orchestrates a SecurityModule and a Protocol Registry into the
// caller-facing operations §4.4 defines. It holds no key material
// itself — every operation that needs the private key is delegated to
// the SecurityModule.
type Notary struct {
	ssm      ssm.SecurityModule
	registry *suite.Registry
	log      *zap.Logger
}

// New returns a Notary backed by ssm, dispatching algorithm operations
// through registry.
func New(sm ssm.SecurityModule, registry *suite.Registry, log *zap.Logger) *Notary {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notary{ssm: sm, registry: registry, log: log}
}

// Notarize canonicalizes component, envelopes it with the current
// certificate citation, timestamp, and protocol, and requests a
// signature from the Security Module. component must carry $tag,
// $version, $permissions, and $previous; missing any of them fails with
// MalformedComponent.
func (n *Notary) Notarize(ctx context.Context, component values.Parameterized) (domain.Document, error) {
	if missing := domain.ValidateComponentParameters(component); len(missing) > 0 {
		return domain.Document{}, notaryerr.New(module, "notarize", notaryerr.KindMalformedComponent,
			fmt.Errorf("component missing required parameters: %v", missing))
	}

	citation, hasCertificate := n.ssm.Citation()
	if !hasCertificate {
		return domain.Document{}, notaryerr.New(module, "notarize", notaryerr.KindUninitializedKey, nil)
	}
	suiteImpl, ok := n.registry.Preferred()
	if !ok {
		return domain.Document{}, notaryerr.New(module, "notarize", notaryerr.KindUnsupportedProtocol,
			fmt.Errorf("no algorithm suite registered"))
	}

	now := values.Now()
	envelope := domain.NewDocument(component, values.Name(suiteImpl.Protocol()), now, citation)
	unsigned, err := domain.EncodeDocument(envelope)
	if err != nil {
		return domain.Document{}, notaryerr.New(module, "notarize", notaryerr.KindStorageError, err)
	}
	sig, err := n.ssm.Sign(ctx, unsigned)
	if err != nil {
		return domain.Document{}, err
	}
	signed := envelope.WithSignature(values.Binary(sig))

	n.log.Info("notarize: document signed",
		zap.String("protocol", string(signed.Protocol())),
		zap.String("timestamp", now.String()),
	)
	return signed, nil
}

// Cite digests document's canonical bytes and reads the tag and version
// off its component's parameters, returning a Citation that later
// identifies this exact document version. Cite produces a new artifact,
// so per §4.5 it always digests under the registry's preferred suite,
// never the suite that originally produced document.
func (n *Notary) Cite(document domain.Document) (domain.Citation, error) {
	suiteImpl, ok := n.registry.Preferred()
	if !ok {
		return domain.Citation{}, notaryerr.New(module, "cite", notaryerr.KindUnsupportedProtocol,
			fmt.Errorf("no algorithm suite registered"))
	}
	return n.citeWith(suiteImpl, document)
}

func (n *Notary) citeWith(suiteImpl suite.Suite, document domain.Document) (domain.Citation, error) {
	component, ok := document.Component().(values.Parameterized)
	if !ok {
		return domain.Citation{}, notaryerr.New(module, "cite", notaryerr.KindMalformedComponent,
			fmt.Errorf("document component carries no parameters"))
	}
	tagValue, ok := component.Parameter(domain.ParamTag)
	tag, tagOK := tagValue.(values.Tag)
	versionValue, ok2 := component.Parameter(domain.ParamVersion)
	version, versionOK := versionValue.(values.Version)
	if !ok || !tagOK || !ok2 || !versionOK {
		return domain.Citation{}, notaryerr.New(module, "cite", notaryerr.KindMalformedComponent,
			fmt.Errorf("document component missing $tag or $version"))
	}

	encoded, err := domain.EncodeDocument(document)
	if err != nil {
		return domain.Citation{}, notaryerr.New(module, "cite", notaryerr.KindStorageError, err)
	}
	digest := suiteImpl.Digest(encoded)
	return domain.NewCitation(values.Name(suiteImpl.Protocol()), document.Timestamp(), tag, version, values.Binary(digest)), nil
}

// CitationMatches recomputes document's digest under the suite named by
// citation's own $protocol and compares against citation's digest,
// constant-time, the way §8's property 2 requires. citationMatches
// consumes an existing artifact, so per §4.5 it dispatches by citation's
// protocol rather than whatever suite is currently preferred.
func (n *Notary) CitationMatches(citation domain.Citation, document domain.Document) (bool, error) {
	suiteImpl, ok := n.registry.Lookup(string(citation.Protocol()))
	if !ok {
		return false, notaryerr.New(module, "citationMatches", notaryerr.KindUnsupportedProtocol, nil)
	}
	recomputed, err := n.citeWith(suiteImpl, document)
	if err != nil {
		return false, err
	}
	want, ok := citation.Digest().(values.Binary)
	got, ok2 := recomputed.Digest().(values.Binary)
	if !ok || !ok2 || len(want) != len(got) {
		return false, nil
	}
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// DocumentValid verifies document's signature against the public key
// carried by certificate's component. Returns false on any recoverable
// mismatch (missing signature, wrong key, tampered bytes); fails with
// UnsupportedProtocol if no suite is registered for document's protocol,
// with MalformedComponent if certificate's public key cannot be decoded,
// and with StorageError if document cannot be encoded. Chain validation is this same call with certificate set to
// the document's predecessor: C_n is valid iff it verifies under
// C_(n-1)'s public key, and C_0 is valid iff it verifies under its own.
func (n *Notary) DocumentValid(document domain.Document, certificate domain.Document) (bool, error) {
	suiteImpl, ok := n.registry.Lookup(string(document.Protocol()))
	if !ok {
		return false, notaryerr.New(module, "documentValid", notaryerr.KindUnsupportedProtocol, nil)
	}
	sig, ok := document.Signature()
	if !ok {
		return false, nil
	}
	signerComponent, ok := certificate.Component().(domain.Certificate)
	if !ok {
		return false, nil
	}
	unsigned, err := domain.EncodeDocument(document.WithoutSignature())
	if err != nil {
		return false, notaryerr.New(module, "documentValid", notaryerr.KindStorageError, err)
	}
	valid, err := suiteImpl.Verify(signerComponent.PublicKey(), unsigned, sig)
	if err != nil {
		return false, notaryerr.New(module, "documentValid", notaryerr.KindMalformedComponent, err)
	}
	n.log.Debug("documentValid: verification result",
		zap.Bool("valid", valid),
		zap.String("protocol", string(document.Protocol())),
	)
	return valid, nil
}

// EncryptComponent canonicalizes component and seals it under the
// preferred protocol for the public key carried by certificate's
// component.
func (n *Notary) EncryptComponent(component values.Value, certificate domain.Document) (domain.AEM, error) {
	recipient, ok := certificate.Component().(domain.Certificate)
	if !ok {
		return domain.AEM{}, notaryerr.New(module, "encryptComponent", notaryerr.KindMalformedComponent,
			fmt.Errorf("certificate document does not wrap a Certificate"))
	}
	suiteImpl, ok := n.registry.Preferred()
	if !ok {
		return domain.AEM{}, notaryerr.New(module, "encryptComponent", notaryerr.KindUnsupportedProtocol,
			fmt.Errorf("no algorithm suite registered"))
	}
	plaintext, err := values.Canonicalize(component)
	if err != nil {
		return domain.AEM{}, notaryerr.New(module, "encryptComponent", notaryerr.KindStorageError, err)
	}
	seed, iv, auth, ciphertext, err := suiteImpl.Encrypt(recipient.PublicKey(), plaintext)
	if err != nil {
		return domain.AEM{}, notaryerr.New(module, "encryptComponent", notaryerr.KindStorageError, err)
	}
	return domain.NewAEM(
		values.Name(suiteImpl.Protocol()),
		values.Now(),
		values.Binary(seed),
		values.Binary(iv),
		values.Binary(auth),
		values.Binary(ciphertext),
	), nil
}

// DecryptComponent reverses EncryptComponent through the Security
// Module, returning the original component's canonical bytes. Fails
// with UnsupportedProtocol unless aem's protocol matches the notary's
// current certificate protocol — decrypt only ever uses the live key,
// never a retired one.
func (n *Notary) DecryptComponent(ctx context.Context, aem domain.AEM) ([]byte, error) {
	certificate, ok := n.ssm.Certificate()
	if !ok {
		return nil, notaryerr.New(module, "decryptComponent", notaryerr.KindUninitializedKey, nil)
	}
	current, ok := certificate.Component().(domain.Certificate)
	if !ok || aem.Protocol() != current.Protocol() {
		return nil, notaryerr.New(module, "decryptComponent", notaryerr.KindUnsupportedProtocol, nil)
	}
	return n.ssm.Decrypt(ctx, aem)
}

// RotateIfDue rotates the current key if its certificate is older than
// interval, reporting whether a rotation happened. It is a read-before-
// write convenience on top of rotateKey (§9 Open Question (b)'s
// rotation-cadence room) — not an automatic background rotator; callers
// decide when to call it.
func (n *Notary) RotateIfDue(ctx context.Context, interval time.Duration) (domain.Document, bool, error) {
	certificate, ok := n.ssm.Certificate()
	if !ok {
		return domain.Document{}, false, notaryerr.New(module, "rotateIfDue", notaryerr.KindUninitializedKey, nil)
	}
	current, ok := certificate.Component().(domain.Certificate)
	if !ok {
		return domain.Document{}, false, notaryerr.New(module, "rotateIfDue", notaryerr.KindMalformedComponent, nil)
	}
	if time.Since(current.Timestamp().Time()) < interval {
		return domain.Document{}, false, nil
	}
	rotated, err := n.ssm.RotateKey(ctx)
	if err != nil {
		return domain.Document{}, false, err
	}
	return rotated, true, nil
}
