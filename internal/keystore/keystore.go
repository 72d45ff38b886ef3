// Package keystore persists the SSM's own key material to the two flat
// files §6 defines: NotaryKey (private) and NotaryCertificate (public),
// one pair per account directory. All writes are atomic — temp file in
// the same directory, fsync, rename — and every file and directory this
// package creates is POSIX-mode-restricted; a platform that won't honor
// that mode is a hard failure, not a silent downgrade (§4.2, §7).
package keystore

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sealbound/notary/internal/notaryerr"
)

const (
	// NotaryKeyFilename is the private-key-and-certificate record file.
	NotaryKeyFilename = "NotaryKey"
	// NotaryCertificateFilename is the public certificate document file.
	NotaryCertificateFilename = "NotaryCertificate"

	dirMode  fs.FileMode = 0o700
	fileMode fs.FileMode = 0o600
)

const module = "keystore"

// Store is a single-writer, filesystem-backed key store rooted at a
// configuration directory, with one subdirectory per account.
type Store struct {
	configDir string
}

// New returns a Store rooted at configDir. The directory is created on
// first write, not here — an absent account directory just means "no key
// yet" (§4.2).
func New(configDir string) *Store {
	return &Store{configDir: configDir}
}

// DefaultConfigDir returns the caller's home directory joined with
// ".bali", the default root when no override is supplied (§6).
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", notaryerr.New(module, "DefaultConfigDir", notaryerr.KindStorageError, err)
	}
	return filepath.Join(home, ".bali"), nil
}

func (s *Store) accountDir(accountID string) string {
	return filepath.Join(s.configDir, accountID)
}

// LoadKey returns the raw canonical bytes of the account's NotaryKey
// file, and false if it does not exist.
func (s *Store) LoadKey(accountID string) ([]byte, bool, error) {
	return s.load(accountID, NotaryKeyFilename)
}

// LoadCertificate returns the raw canonical bytes of the account's
// NotaryCertificate file, and false if it does not exist.
func (s *Store) LoadCertificate(accountID string) ([]byte, bool, error) {
	return s.load(accountID, NotaryCertificateFilename)
}

func (s *Store) load(accountID, filename string) ([]byte, bool, error) {
	path := filepath.Join(s.accountDir(accountID), filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, notaryerr.New(module, "load", notaryerr.KindStorageError, err)
	}
	return data, true, nil
}

// SaveKey atomically writes data as the account's NotaryKey file.
func (s *Store) SaveKey(accountID string, data []byte) error {
	return s.save(accountID, NotaryKeyFilename, data)
}

// SaveCertificate atomically writes data as the account's
// NotaryCertificate file.
func (s *Store) SaveCertificate(accountID string, data []byte) error {
	return s.save(accountID, NotaryCertificateFilename, data)
}

// ForgetAccount deletes the account's NotaryKey and NotaryCertificate
// files. A missing account directory is not an error — forgetting an
// already-forgotten (or never-initialized) account is a no-op.
func (s *Store) ForgetAccount(accountID string) error {
	dir := s.accountDir(accountID)
	if err := os.Remove(filepath.Join(dir, NotaryKeyFilename)); err != nil && !os.IsNotExist(err) {
		return notaryerr.New(module, "forgetAccount", notaryerr.KindStorageError, err)
	}
	if err := os.Remove(filepath.Join(dir, NotaryCertificateFilename)); err != nil && !os.IsNotExist(err) {
		return notaryerr.New(module, "forgetAccount", notaryerr.KindStorageError, err)
	}
	return nil
}

func (s *Store) save(accountID, filename string, data []byte) error {
	dir := s.accountDir(accountID)
	if err := ensureDir(dir); err != nil {
		if err == errUnsupportedPlatform {
			return notaryerr.New(module, "save", notaryerr.KindUnsupportedPlatform, err)
		}
		return notaryerr.New(module, "save", notaryerr.KindStorageError, err)
	}
	path := filepath.Join(dir, filename)
	if err := atomicWriteFile(path, data, fileMode); err != nil {
		if err == errUnsupportedPlatform {
			return notaryerr.New(module, "save", notaryerr.KindUnsupportedPlatform, err)
		}
		return notaryerr.New(module, "save", notaryerr.KindStorageError, err)
	}
	return nil
}

// ensureDir creates dir (and parents) with owner-only permissions,
// verifying afterward that the mode actually took effect.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	if err := os.Chmod(dir, dirMode); err != nil {
		return fmt.Errorf("chmod %s: %w", dir, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if info.Mode().Perm() != dirMode {
		return errUnsupportedPlatform
	}
	return nil
}

// errUnsupportedPlatform signals that the underlying filesystem did not
// honor the requested POSIX mode bits.
var errUnsupportedPlatform = fmt.Errorf("keystore: platform does not support required file permissions")

// atomicWriteFile writes data to path by creating a temp file in the same
// directory, fsyncing, chmod-ing to perm, and renaming over path. If the
// resulting file's mode doesn't match perm, the platform can't enforce
// the permission model this store requires.
func atomicWriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".notary-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat written file: %w", err)
	}
	if info.Mode().Perm() != perm {
		return errUnsupportedPlatform
	}
	return nil
}
