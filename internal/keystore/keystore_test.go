package keystore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sealbound/notary/internal/notaryerr"
)

func TestLoadMissingReturnsNotFoundNotError(t *testing.T) {
	s := New(t.TempDir())
	_, ok, err := s.LoadKey("acct-1")
	if err != nil {
		t.Fatalf("expected no error for missing key, got %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for missing key")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	want := []byte("canonical notary key bytes")
	if err := s.SaveKey("acct-1", want); err != nil {
		t.Fatalf("SaveKey: %v", err)
	}
	got, ok, err := s.LoadKey("acct-1")
	if err != nil {
		t.Fatalf("LoadKey: %v", err)
	}
	if !ok {
		t.Fatal("expected key to exist after save")
	}
	if string(got) != string(want) {
		t.Fatalf("round trip mismatch: got %q want %q", got, want)
	}
}

func TestSaveEnforcesFilePermissions(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := s.SaveKey("acct-1", []byte("x")); err != nil {
		t.Fatalf("SaveKey: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "acct-1", NotaryKeyFilename))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != fileMode {
		t.Fatalf("expected mode %v, got %v", fileMode, info.Mode().Perm())
	}
	dirInfo, err := os.Stat(filepath.Join(dir, "acct-1"))
	if err != nil {
		t.Fatalf("stat dir: %v", err)
	}
	if dirInfo.Mode().Perm() != dirMode {
		t.Fatalf("expected dir mode %v, got %v", dirMode, dirInfo.Mode().Perm())
	}
}

func TestSaveLeavesNoTempFilesBehind(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	if err := s.SaveCertificate("acct-1", []byte("cert bytes")); err != nil {
		t.Fatalf("SaveCertificate: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "acct-1"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != NotaryCertificateFilename {
		t.Fatalf("expected only %s in account dir, got %v", NotaryCertificateFilename, entries)
	}
}

func TestForgetAccountRemovesBothFiles(t *testing.T) {
	s := New(t.TempDir())
	if err := s.SaveKey("acct-1", []byte("key bytes")); err != nil {
		t.Fatalf("SaveKey: %v", err)
	}
	if err := s.SaveCertificate("acct-1", []byte("cert bytes")); err != nil {
		t.Fatalf("SaveCertificate: %v", err)
	}

	if err := s.ForgetAccount("acct-1"); err != nil {
		t.Fatalf("ForgetAccount: %v", err)
	}

	if _, ok, err := s.LoadKey("acct-1"); err != nil || ok {
		t.Fatalf("LoadKey after forget: ok=%v err=%v, want ok=false err=nil", ok, err)
	}
	if _, ok, err := s.LoadCertificate("acct-1"); err != nil || ok {
		t.Fatalf("LoadCertificate after forget: ok=%v err=%v, want ok=false err=nil", ok, err)
	}
}

func TestForgetAccountOnUnknownAccountIsNoop(t *testing.T) {
	s := New(t.TempDir())
	if err := s.ForgetAccount("never-existed"); err != nil {
		t.Fatalf("ForgetAccount on unknown account: %v", err)
	}
}

func TestDefaultConfigDirJoinsBaliUnderHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory available: %v", err)
	}
	got, err := DefaultConfigDir()
	if err != nil {
		t.Fatalf("DefaultConfigDir: %v", err)
	}
	want := filepath.Join(home, ".bali")
	if got != want {
		t.Fatalf("DefaultConfigDir = %q, want %q", got, want)
	}
}

func TestLoadIOErrorIsStorageError(t *testing.T) {
	dir := t.TempDir()
	// Put a directory where the key file is expected, so os.ReadFile
	// fails with something other than fs.ErrNotExist.
	acctDir := filepath.Join(dir, "acct-1")
	if err := os.MkdirAll(filepath.Join(acctDir, NotaryKeyFilename), 0o700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	s := New(dir)
	_, _, err := s.load("acct-1", NotaryKeyFilename)
	if err == nil {
		t.Fatal("expected an error reading a directory as a file")
	}
	var nerr *notaryerr.Error
	if !errors.As(err, &nerr) || nerr.Kind != notaryerr.KindStorageError {
		t.Fatalf("expected KindStorageError, got %v", err)
	}
}
