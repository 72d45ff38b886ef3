package ssm

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/sealbound/notary/internal/domain"
	"github.com/sealbound/notary/internal/keystore"
	"github.com/sealbound/notary/internal/notaryerr"
	"github.com/sealbound/notary/internal/suite"
	"github.com/sealbound/notary/internal/values"
)

const module = "ssm"

var _ SecurityModule = (*SoftwareSecurityModule)(nil)

// SoftwareSecurityModule is the reference SecurityModule: it generates
// and holds its key pair entirely in process memory, persisting through
// a keystore.Store. A golang.org/x/sync/semaphore.Weighted of capacity 1
// serializes the four mutating operations (initialize, generateKey,
// rotateKey, forgetKey) FIFO per §5's ordering rule; a read-write mutex
// guards the in-memory fields that Sign/Decrypt/Certificate/Citation read
// so those stay fast and don't contend with each other.
type SoftwareSecurityModule struct {
	store     *keystore.Store
	registry  *suite.Registry
	accountID string
	log       *zap.Logger

	sem *semaphore.Weighted

	mu          sync.RWMutex
	state       State
	privateKey  []byte
	certificate domain.Document
}

// New returns a SoftwareSecurityModule backed by store, dispatching
// algorithm operations through registry. accountID identifies the
// account subdirectory within the store this module's key lives in.
func New(store *keystore.Store, registry *suite.Registry, accountID string, log *zap.Logger) *SoftwareSecurityModule {
	if log == nil {
		log = zap.NewNop()
	}
	return &SoftwareSecurityModule{
		store:     store,
		registry:  registry,
		accountID: accountID,
		log:       log,
		sem:       semaphore.NewWeighted(1),
		state:     StateUninitialized,
	}
}

func (m *SoftwareSecurityModule) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *SoftwareSecurityModule) Certificate() (domain.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateActive {
		return domain.Document{}, false
	}
	return m.certificate, true
}

func (m *SoftwareSecurityModule) Citation() (domain.Citation, bool) {
	cert, ok := m.Certificate()
	if !ok {
		return domain.Citation{}, false
	}
	component, ok := certificateComponent(cert)
	if !ok {
		return domain.Citation{}, false
	}
	digest, err := m.documentDigest(cert)
	if err != nil {
		return domain.Citation{}, false
	}
	return component.Citation(values.Binary(digest)), true
}

func (m *SoftwareSecurityModule) Initialize(ctx context.Context) error {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return notaryerr.New(module, "initialize", notaryerr.KindStorageError, err)
	}
	defer m.sem.Release(1)

	keyBytes, hasKey, err := m.store.LoadKey(m.accountID)
	if err != nil {
		return notaryerr.New(module, "initialize", notaryerr.KindStorageError, err)
	}
	if !hasKey {
		m.log.Info("ssm initialize: no persisted key, staying uninitialized", zap.String("account", m.accountID))
		return nil
	}
	record, err := domain.DecodeKeyRecord(keyBytes)
	if err != nil {
		return notaryerr.New(module, "initialize", notaryerr.KindStorageError, err)
	}
	certBytes, hasCert, err := m.store.LoadCertificate(m.accountID)
	if err != nil {
		return notaryerr.New(module, "initialize", notaryerr.KindStorageError, err)
	}
	if !hasCert {
		return notaryerr.New(module, "initialize", notaryerr.KindStorageError,
			fmt.Errorf("key file present without a matching certificate file"))
	}
	cert, err := domain.DecodeCertificateDocument(certBytes)
	if err != nil {
		return notaryerr.New(module, "initialize", notaryerr.KindStorageError, err)
	}
	component, _ := certificateComponent(cert)
	ref := domain.NewKeyRef(m.accountID, component.PublicKey())

	m.mu.Lock()
	m.privateKey = record.PrivateKey()
	m.certificate = cert
	m.state = StateActive
	m.mu.Unlock()

	m.log.Info("ssm initialize: loaded persisted key",
		zap.String("account", m.accountID),
		zap.String("purpose", string(ref.Purpose)),
		zap.String("kid", ref.KID),
		zap.String("status", string(domain.KeyStatusActive)),
	)
	return nil
}

func (m *SoftwareSecurityModule) GenerateKey(ctx context.Context, accountID values.Tag, permissions values.Name) (domain.Document, error) {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return domain.Document{}, notaryerr.New(module, "generateKey", notaryerr.KindStorageError, err)
	}
	defer m.sem.Release(1)

	if m.State() == StateActive {
		return domain.Document{}, notaryerr.New(module, "generateKey", notaryerr.KindAlreadyInitialized, nil)
	}
	return m.generateOrRotate(ctx, false, accountID, permissions)
}

func (m *SoftwareSecurityModule) RotateKey(ctx context.Context) (domain.Document, error) {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return domain.Document{}, notaryerr.New(module, "rotateKey", notaryerr.KindStorageError, err)
	}
	defer m.sem.Release(1)

	if m.State() != StateActive {
		return domain.Document{}, notaryerr.New(module, "rotateKey", notaryerr.KindUninitializedKey, nil)
	}
	return m.generateOrRotate(ctx, true, values.Tag{}, "")
}

// generateOrRotate implements the ten-step generation/rotation algorithm
// from §4.3. Steps 1-8 build the new certificate in memory; step 9
// persists atomically and only then swaps in-memory state; step 10
// returns the new document. Callers hold the exclusivity semaphore.
func (m *SoftwareSecurityModule) generateOrRotate(ctx context.Context, isRotation bool, accountID values.Tag, permissions values.Name) (domain.Document, error) {
	suiteImpl, ok := m.registry.Preferred()
	if !ok {
		return domain.Document{}, notaryerr.New(module, "generateKey", notaryerr.KindUnsupportedProtocol,
			fmt.Errorf("no algorithm suite registered"))
	}

	kp, err := suiteImpl.GenerateKeyPair()
	if err != nil {
		return domain.Document{}, notaryerr.New(module, "generateKey", notaryerr.KindStorageError, err)
	}

	m.mu.RLock()
	oldPrivateKey := m.privateKey
	oldCertificate := m.certificate
	m.mu.RUnlock()

	var (
		tag                 values.Tag
		version             values.Version
		previousCitation    domain.Citation
		signingPrivateKey   []byte
		signingProtocol     = values.Name(suiteImpl.Protocol())
		certificateCitation values.Value = values.NONE
	)

	if isRotation {
		oldComponent, ok := certificateComponent(oldCertificate)
		if !ok {
			return domain.Document{}, notaryerr.New(module, "rotateKey", notaryerr.KindUninitializedKey, nil)
		}
		oldDigest, err := m.documentDigest(oldCertificate)
		if err != nil {
			return domain.Document{}, notaryerr.New(module, "rotateKey", notaryerr.KindStorageError, err)
		}
		oldCitation := oldComponent.Citation(values.Binary(oldDigest))

		tag = oldComponent.Tag()
		version = oldComponent.Version().Next()
		if permissions == "" {
			permissions = oldComponent.Permissions()
		}
		accountID = oldComponent.AccountID()
		previousCitation = oldCitation
		certificateCitation = oldCitation
		signingPrivateKey = oldPrivateKey
	} else {
		tag = values.NewTag()
		version = values.InitialVersion()
		if permissions == "" {
			permissions = values.Name(domain.DefaultPermissions)
		}
		previousCitation = domain.ProtoCitation(signingProtocol, values.Now(), tag, version)
		signingPrivateKey = kp.PrivateKey
	}

	now := values.Now()
	newCertificate := domain.NewCertificate(signingProtocol, now, accountID, values.Binary(kp.PublicKey), tag, version, permissions, previousCitation)

	envelope := domain.NewDocument(newCertificate, signingProtocol, now, certificateCitation)
	unsignedBytes, err := domain.EncodeDocument(envelope)
	if err != nil {
		return domain.Document{}, notaryerr.New(module, "generateKey", notaryerr.KindStorageError, err)
	}
	sig, err := suiteImpl.Sign(signingPrivateKey, unsignedBytes)
	if err != nil {
		return domain.Document{}, notaryerr.New(module, "generateKey", notaryerr.KindStorageError, err)
	}
	signed := envelope.WithSignature(values.Binary(sig))

	digest, err := m.documentDigest(signed)
	if err != nil {
		return domain.Document{}, notaryerr.New(module, "generateKey", notaryerr.KindStorageError, err)
	}
	newCitation := newCertificate.Citation(values.Binary(digest))

	record := domain.NewNotaryKeyRecord(signingProtocol, now, accountID, values.Binary(kp.PublicKey), values.Binary(kp.PrivateKey), newCitation)
	keyBytes, err := domain.EncodeKeyRecord(record)
	if err != nil {
		return domain.Document{}, notaryerr.New(module, "generateKey", notaryerr.KindStorageError, err)
	}
	certBytes, err := domain.EncodeDocument(signed)
	if err != nil {
		return domain.Document{}, notaryerr.New(module, "generateKey", notaryerr.KindStorageError, err)
	}

	if err := m.store.SaveKey(m.accountID, keyBytes); err != nil {
		return domain.Document{}, err
	}
	if err := m.store.SaveCertificate(m.accountID, certBytes); err != nil {
		return domain.Document{}, err
	}

	m.mu.Lock()
	m.privateKey = kp.PrivateKey
	m.certificate = signed
	m.state = StateActive
	m.mu.Unlock()

	newRef := domain.NewKeyRef(m.accountID, kp.PublicKey)
	op := "generateKey"
	if isRotation {
		op = "rotateKey"
		oldComponent, _ := certificateComponent(oldCertificate)
		oldRef := domain.NewKeyRef(m.accountID, oldComponent.PublicKey())
		m.log.Info("ssm rotateKey: previous key retired",
			zap.String("account", m.accountID),
			zap.String("purpose", string(oldRef.Purpose)),
			zap.String("kid", oldRef.KID),
			zap.String("status", string(domain.KeyStatusRetired)),
		)
		zeroBytes(oldPrivateKey)
	}
	m.log.Info("ssm "+op+": key committed",
		zap.String("account", m.accountID),
		zap.String("purpose", string(newRef.Purpose)),
		zap.String("kid", newRef.KID),
		zap.String("tag", tag.String()),
		zap.String("version", version.String()),
		zap.String("status", string(domain.KeyStatusActive)),
	)
	return signed, nil
}

func (m *SoftwareSecurityModule) ForgetKey(ctx context.Context) error {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return notaryerr.New(module, "forgetKey", notaryerr.KindStorageError, err)
	}
	defer m.sem.Release(1)

	m.mu.Lock()
	var component domain.Certificate
	hadCertificate := false
	if m.state == StateActive {
		component, hadCertificate = certificateComponent(m.certificate)
	}
	zeroBytes(m.privateKey)
	m.privateKey = nil
	m.certificate = domain.Document{}
	m.state = StateUninitialized
	m.mu.Unlock()

	if err := m.store.ForgetAccount(m.accountID); err != nil {
		return notaryerr.New(module, "forgetKey", notaryerr.KindStorageError, err)
	}
	fields := []zap.Field{zap.String("account", m.accountID)}
	if hadCertificate {
		ref := domain.NewKeyRef(m.accountID, component.PublicKey())
		fields = append(fields, zap.String("purpose", string(ref.Purpose)), zap.String("kid", ref.KID))
	}
	m.log.Info("ssm forgetKey: key destroyed", fields...)
	return nil
}

func (m *SoftwareSecurityModule) Sign(ctx context.Context, documentBytes []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateActive {
		return nil, notaryerr.New(module, "sign", notaryerr.KindUninitializedKey, nil)
	}
	component, _ := certificateComponent(m.certificate)
	suiteImpl, ok := m.registry.Lookup(string(component.Protocol()))
	if !ok {
		return nil, notaryerr.New(module, "sign", notaryerr.KindUnsupportedProtocol, nil)
	}
	sig, err := suiteImpl.Sign(m.privateKey, documentBytes)
	if err != nil {
		return nil, notaryerr.New(module, "sign", notaryerr.KindStorageError, err)
	}
	return sig, nil
}

func (m *SoftwareSecurityModule) Decrypt(ctx context.Context, aem domain.AEM) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateActive {
		return nil, notaryerr.New(module, "decrypt", notaryerr.KindUninitializedKey, nil)
	}
	suiteImpl, ok := m.registry.Lookup(string(aem.Protocol()))
	if !ok {
		return nil, notaryerr.New(module, "decrypt", notaryerr.KindUnsupportedProtocol, nil)
	}
	plaintext, err := suiteImpl.Decrypt(m.privateKey, aem.Seed(), aem.IV(), aem.Auth(), aem.Ciphertext())
	if err != nil {
		if suite.IsAuthenticationFailure(err) {
			return nil, notaryerr.New(module, "decrypt", notaryerr.KindAuthenticationFailed, err)
		}
		return nil, notaryerr.New(module, "decrypt", notaryerr.KindStorageError, err)
	}
	return plaintext, nil
}

// documentDigest digests doc using the suite named by doc's own
// $protocol — the suite that produced it — not whatever suite is
// currently preferred, so citations stay stable as new protocol
// versions are registered over time.
func (m *SoftwareSecurityModule) documentDigest(doc domain.Document) ([]byte, error) {
	bytes, err := domain.EncodeDocument(doc)
	if err != nil {
		return nil, err
	}
	suiteImpl, ok := m.registry.Lookup(string(doc.Protocol()))
	if !ok {
		return nil, fmt.Errorf("no algorithm suite registered for protocol %s", doc.Protocol())
	}
	return suiteImpl.Digest(bytes), nil
}

func certificateComponent(doc domain.Document) (domain.Certificate, bool) {
	v := doc.Component()
	cert, ok := v.(domain.Certificate)
	return cert, ok
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
