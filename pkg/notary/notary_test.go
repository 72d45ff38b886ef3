package notary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sealbound/notary/internal/domain"
	"github.com/sealbound/notary/internal/keystore"
	"github.com/sealbound/notary/internal/notaryerr"
	"github.com/sealbound/notary/internal/ssm"
	"github.com/sealbound/notary/internal/suite"
	"github.com/sealbound/notary/internal/values"
)

func newTestNotary(t *testing.T) (*Notary, ssm.SecurityModule) {
	t.Helper()
	store := keystore.New(t.TempDir())
	registry := suite.NewDefaultRegistry()
	sm := ssm.New(store, registry, "acct-1", nil)
	if _, err := sm.GenerateKey(context.Background(), values.Tag{}, ""); err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return New(sm, registry, nil), sm
}

func sampleComponent() *values.Catalog {
	c := values.NewCatalog()
	c.SetAttribute("$payload", values.Text("hello, notary"))
	c.SetParameter(domain.ParamTag, values.NewTag())
	c.SetParameter(domain.ParamVersion, values.InitialVersion())
	c.SetParameter(domain.ParamPermissions, values.Name(domain.DefaultPermissions))
	c.SetParameter(domain.ParamPrevious, domain.ProtoCitation("v1", values.Now(), values.NewTag(), values.InitialVersion()))
	return c
}

func TestNotarizeRejectsMalformedComponent(t *testing.T) {
	n, _ := newTestNotary(t)
	bare := values.NewCatalog()
	_, err := n.Notarize(context.Background(), bare)
	var nerr *notaryerr.Error
	if !errors.As(err, &nerr) || nerr.Kind != notaryerr.KindMalformedComponent {
		t.Fatalf("expected MalformedComponent, got %v", err)
	}
}

func TestNotarizeBeforeGenerateKeyFails(t *testing.T) {
	store := keystore.New(t.TempDir())
	registry := suite.NewDefaultRegistry()
	sm := ssm.New(store, registry, "acct-1", nil)
	n := New(sm, registry, nil)

	_, err := n.Notarize(context.Background(), sampleComponent())
	var nerr *notaryerr.Error
	if !errors.As(err, &nerr) || nerr.Kind != notaryerr.KindUninitializedKey {
		t.Fatalf("expected UninitializedKey, got %v", err)
	}
}

func TestCiteMatchRoundTrip(t *testing.T) {
	n, _ := newTestNotary(t)
	doc, err := n.Notarize(context.Background(), sampleComponent())
	if err != nil {
		t.Fatalf("Notarize: %v", err)
	}
	citation, err := n.Cite(doc)
	if err != nil {
		t.Fatalf("Cite: %v", err)
	}
	matches, err := n.CitationMatches(citation, doc)
	if err != nil {
		t.Fatalf("CitationMatches: %v", err)
	}
	if !matches {
		t.Fatal("expected cite(d) to match d")
	}

	other, err := n.Notarize(context.Background(), sampleComponent())
	if err != nil {
		t.Fatalf("Notarize second component: %v", err)
	}
	mismatches, err := n.CitationMatches(citation, other)
	if err != nil {
		t.Fatalf("CitationMatches: %v", err)
	}
	if mismatches {
		t.Fatal("expected citation of d not to match a distinct document d'")
	}
}

func TestDocumentValidGenesisIsSelfSigned(t *testing.T) {
	n, sm := newTestNotary(t)
	genesis, ok := sm.Certificate()
	if !ok {
		t.Fatal("expected a genesis certificate")
	}
	valid, err := n.DocumentValid(genesis, genesis)
	if err != nil {
		t.Fatalf("DocumentValid: %v", err)
	}
	if !valid {
		t.Fatal("expected genesis certificate to verify under its own public key")
	}
}

func TestDocumentValidChainAcrossRotation(t *testing.T) {
	n, sm := newTestNotary(t)
	genesis, _ := sm.Certificate()

	rotated, err := sm.RotateKey(context.Background())
	if err != nil {
		t.Fatalf("RotateKey: %v", err)
	}

	valid, err := n.DocumentValid(rotated, genesis)
	if err != nil {
		t.Fatalf("DocumentValid: %v", err)
	}
	if !valid {
		t.Fatal("expected rotated certificate to verify under the previous certificate's public key")
	}

	invalid, err := n.DocumentValid(rotated, rotated)
	if err != nil {
		t.Fatalf("DocumentValid: %v", err)
	}
	if invalid {
		t.Fatal("expected rotated certificate to fail verification under its own public key")
	}
}

func TestDocumentValidDetectsTampering(t *testing.T) {
	n, sm := newTestNotary(t)
	doc, err := n.Notarize(context.Background(), sampleComponent())
	if err != nil {
		t.Fatalf("Notarize: %v", err)
	}
	sig, _ := doc.Signature()
	tamperedSig := append(values.Binary{}, sig...)
	tamperedSig[0] ^= 0xff
	bad := doc.WithoutSignature().WithSignature(tamperedSig)

	certDoc, ok := sm.Certificate()
	if !ok {
		t.Fatal("expected a certificate")
	}
	valid, err := n.DocumentValid(bad, certDoc)
	if err != nil {
		t.Fatalf("DocumentValid: %v", err)
	}
	if valid {
		t.Fatal("expected tampered signature to fail verification")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	n, sm := newTestNotary(t)
	certDoc, _ := sm.Certificate()

	aem, err := n.EncryptComponent(values.Text("for the notary's eyes only"), certDoc)
	if err != nil {
		t.Fatalf("EncryptComponent: %v", err)
	}
	plaintext, err := n.DecryptComponent(context.Background(), aem)
	if err != nil {
		t.Fatalf("DecryptComponent: %v", err)
	}
	want, err := values.Canonicalize(values.Text("for the notary's eyes only"))
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if string(plaintext) != string(want) {
		t.Fatalf("unexpected plaintext: %s", plaintext)
	}
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	n, sm := newTestNotary(t)
	certDoc, _ := sm.Certificate()

	aem, err := n.EncryptComponent(values.Text("secret"), certDoc)
	if err != nil {
		t.Fatalf("EncryptComponent: %v", err)
	}
	ciphertext := append(values.Binary{}, aem.Ciphertext()...)
	ciphertext[0] ^= 0xff
	tampered := domain.NewAEM(aem.Protocol(), aem.Timestamp(), aem.Seed(), aem.IV(), aem.Auth(), ciphertext)

	_, err = n.DecryptComponent(context.Background(), tampered)
	var nerr *notaryerr.Error
	if !errors.As(err, &nerr) || nerr.Kind != notaryerr.KindAuthenticationFailed {
		t.Fatalf("expected AuthenticationFailed, got %v", err)
	}
}

func TestDecryptRejectsStaleKeyAfterRotation(t *testing.T) {
	n, sm := newTestNotary(t)
	certDoc, _ := sm.Certificate()

	aem, err := n.EncryptComponent(values.Text("secret"), certDoc)
	if err != nil {
		t.Fatalf("EncryptComponent: %v", err)
	}
	if _, err := sm.RotateKey(context.Background()); err != nil {
		t.Fatalf("RotateKey: %v", err)
	}

	// aem's protocol still names the suite version, which remains
	// registered after rotation — only the *certificate* changed, not the
	// algorithm suite, so decrypt still runs but against the now-stale
	// key and fails with AuthenticationFailed rather than UnsupportedProtocol.
	_, err = n.DecryptComponent(context.Background(), aem)
	if err == nil {
		t.Fatal("expected decrypt to fail after the encrypting key was rotated away")
	}
	var nerr *notaryerr.Error
	if !errors.As(err, &nerr) || nerr.Kind != notaryerr.KindAuthenticationFailed {
		t.Fatalf("expected AuthenticationFailed, got %v", err)
	}
}

func TestRotateIfDueRespectsInterval(t *testing.T) {
	n, sm := newTestNotary(t)
	genesis, _ := sm.Certificate()
	genesisCert, _ := genesis.Component().(domain.Certificate)

	_, rotated, err := n.RotateIfDue(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("RotateIfDue: %v", err)
	}
	if rotated {
		t.Fatal("expected no rotation before the interval has elapsed")
	}

	_, rotated, err = n.RotateIfDue(context.Background(), -time.Second)
	if err != nil {
		t.Fatalf("RotateIfDue: %v", err)
	}
	if !rotated {
		t.Fatal("expected rotation once the interval has elapsed")
	}

	after, _ := sm.Certificate()
	afterCert, _ := after.Component().(domain.Certificate)
	if afterCert.Version().Equal(genesisCert.Version()) {
		t.Fatal("expected version to advance after RotateIfDue rotates")
	}
}
