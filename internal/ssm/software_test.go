package ssm

import (
	"context"
	"errors"
	"testing"

	"github.com/sealbound/notary/internal/domain"
	"github.com/sealbound/notary/internal/keystore"
	"github.com/sealbound/notary/internal/notaryerr"
	"github.com/sealbound/notary/internal/suite"
	"github.com/sealbound/notary/internal/values"
)

func newTestModule(t *testing.T) *SoftwareSecurityModule {
	t.Helper()
	store := keystore.New(t.TempDir())
	registry := suite.NewDefaultRegistry()
	return New(store, registry, "acct-1", nil)
}

func TestGenerateKeyBuildsGenesisCertificate(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	doc, err := m.GenerateKey(ctx, values.Tag{}, "")
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	cert, ok := certificateComponent(doc)
	if !ok {
		t.Fatal("expected document component to be a Certificate")
	}
	if cert.Version().String() != "v1" {
		t.Fatalf("expected v1, got %s", cert.Version())
	}
	if !cert.IsGenesis() {
		t.Fatal("expected genesis certificate to report IsGenesis")
	}
	if _, ok := doc.CertificateCitation(); ok {
		t.Fatal("expected genesis document to carry no certificate citation")
	}
}

func TestGenerateKeyTwiceFailsAlreadyInitialized(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	if _, err := m.GenerateKey(ctx, values.Tag{}, ""); err != nil {
		t.Fatalf("first GenerateKey: %v", err)
	}
	_, err := m.GenerateKey(ctx, values.Tag{}, "")
	if !isKind(err, notaryerr.KindAlreadyInitialized) {
		t.Fatalf("expected AlreadyInitialized, got %v", err)
	}
}

func TestRotateKeyBeforeGenerateFailsUninitialized(t *testing.T) {
	m := newTestModule(t)
	_, err := m.RotateKey(context.Background())
	if !isKind(err, notaryerr.KindUninitializedKey) {
		t.Fatalf("expected UninitializedKey, got %v", err)
	}
}

func TestRotateKeyChainsToGenesis(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()

	genesis, err := m.GenerateKey(ctx, values.Tag{}, "")
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	genesisCert, _ := certificateComponent(genesis)

	rotated, err := m.RotateKey(ctx)
	if err != nil {
		t.Fatalf("RotateKey: %v", err)
	}
	rotatedCert, _ := certificateComponent(rotated)

	if rotatedCert.Version().String() != "v2" {
		t.Fatalf("expected v2, got %s", rotatedCert.Version())
	}
	if !rotatedCert.Tag().Equal(genesisCert.Tag()) {
		t.Fatal("expected tag to stay stable across rotation")
	}
	if rotatedCert.IsGenesis() {
		t.Fatal("rotated certificate should not report IsGenesis")
	}
	previous := rotatedCert.Previous()
	if !previous.Tag().Equal(genesisCert.Tag()) || previous.Version().String() != "v1" {
		t.Fatalf("expected previous citation to point at v1, got tag=%s version=%s", previous.Tag(), previous.Version())
	}
}

func TestSignBeforeGenerateFailsUninitialized(t *testing.T) {
	m := newTestModule(t)
	_, err := m.Sign(context.Background(), []byte("payload"))
	if !isKind(err, notaryerr.KindUninitializedKey) {
		t.Fatalf("expected UninitializedKey, got %v", err)
	}
}

func TestSignAfterForgetFails(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()
	if _, err := m.GenerateKey(ctx, values.Tag{}, ""); err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if err := m.ForgetKey(ctx); err != nil {
		t.Fatalf("ForgetKey: %v", err)
	}
	if _, err := m.Sign(ctx, []byte("payload")); !isKind(err, notaryerr.KindUninitializedKey) {
		t.Fatalf("expected UninitializedKey after forget, got %v", err)
	}
}

func TestEncryptDecryptThroughModule(t *testing.T) {
	m := newTestModule(t)
	ctx := context.Background()
	doc, err := m.GenerateKey(ctx, values.Tag{}, "")
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	cert, _ := certificateComponent(doc)

	seed, iv, auth, ct, err := suite.V1.Encrypt(cert.PublicKey(), []byte("for the notary's eyes only"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	aem := domain.NewAEM(cert.Protocol(), values.Now(), values.Binary(seed), values.Binary(iv), values.Binary(auth), values.Binary(ct))

	plaintext, err := m.Decrypt(ctx, aem)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(plaintext) != "for the notary's eyes only" {
		t.Fatalf("unexpected plaintext: %s", plaintext)
	}
}

func TestInitializeRecoversPersistedKey(t *testing.T) {
	dir := t.TempDir()
	store := keystore.New(dir)
	registry := suite.NewDefaultRegistry()
	ctx := context.Background()

	first := New(store, registry, "acct-1", nil)
	genesis, err := first.GenerateKey(ctx, values.Tag{}, "")
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	genesisCert, _ := certificateComponent(genesis)

	second := New(store, registry, "acct-1", nil)
	if err := second.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if second.State() != StateActive {
		t.Fatal("expected second module to recover into Active state")
	}
	recovered, ok := second.Certificate()
	if !ok {
		t.Fatal("expected recovered certificate")
	}
	recoveredCert, _ := certificateComponent(recovered)
	if !recoveredCert.Tag().Equal(genesisCert.Tag()) {
		t.Fatal("expected recovered certificate to carry the same tag")
	}

	sig, err := second.Sign(ctx, []byte("after restart"))
	if err != nil {
		t.Fatalf("Sign after recovery: %v", err)
	}
	ok2, err := suite.V1.Verify(genesisCert.PublicKey(), []byte("after restart"), sig)
	if err != nil || !ok2 {
		t.Fatalf("expected recovered key to produce a verifiable signature: ok=%v err=%v", ok2, err)
	}
}

func isKind(err error, kind notaryerr.Kind) bool {
	var nerr *notaryerr.Error
	return errors.As(err, &nerr) && nerr.Kind == kind
}
