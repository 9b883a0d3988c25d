// Package auth implements OAuth credential storage and the
// authorization-code login flow.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "dvnt"
	accountKey  = "dvnt::credentials"
)

// Credentials holds the OAuth tokens and metadata for the signed-in
// account. A save replaces the whole record.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // epoch milliseconds
	Scope        string `json:"scope,omitempty"`
	Username     string `json:"username,omitempty"`
}

// Store handles credential storage, preferring the system keychain with
// a 0600 file fallback.
type Store struct {
	useKeyring  bool
	fallbackDir string
	now         func() time.Time
}

// NewStore creates a credential store.
func NewStore(fallbackDir string) *Store {
	s := &Store{fallbackDir: fallbackDir, now: time.Now}

	// Skip keyring for tests or when explicitly disabled
	if os.Getenv("DVNT_NO_KEYRING") != "" {
		return s
	}

	// Test if keyring is available
	testKey := "dvnt::test"
	if err := keyring.Set(serviceName, testKey, "test"); err == nil {
		_ = keyring.Delete(serviceName, testKey) // Best-effort cleanup
		s.useKeyring = true
		return s
	}
	fmt.Fprintf(os.Stderr, "warning: system keyring unavailable, credentials stored in plaintext at %s\n",
		s.credentialsPath())
	return s
}

// Save computes the expiry from the server's expires_in and replaces
// the stored record.
func (s *Store) Save(accessToken, refreshToken string, expiresInSeconds int64, scope, username string) error {
	creds := &Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    s.now().UnixMilli() + expiresInSeconds*1000,
		Scope:        scope,
		Username:     username,
	}
	return s.put(creds)
}

// SaveRecord replaces the stored record as-is, without recomputing the
// expiry. Used when updating metadata on an otherwise valid credential.
func (s *Store) SaveRecord(creds *Credentials) error {
	return s.put(creds)
}

// Load retrieves the stored credentials, or nil when none exist.
func (s *Store) Load() (*Credentials, error) {
	var data []byte
	if s.useKeyring {
		raw, err := keyring.Get(serviceName, accountKey)
		if err != nil {
			if err == keyring.ErrNotFound {
				return nil, nil
			}
			return nil, fmt.Errorf("reading keychain: %w", err)
		}
		data = []byte(raw)
	} else {
		raw, err := os.ReadFile(s.credentialsPath())
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}
		data = raw
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}
	return &creds, nil
}

// Clear removes the stored credentials. Clearing an empty store is not
// an error.
func (s *Store) Clear() error {
	if s.useKeyring {
		if err := keyring.Delete(serviceName, accountKey); err != nil && err != keyring.ErrNotFound {
			return err
		}
		return nil
	}
	if err := os.Remove(s.credentialsPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Expired reports whether the stored access token has passed its expiry.
// Missing credentials count as expired.
func (s *Store) Expired() bool {
	creds, err := s.Load()
	if err != nil || creds == nil || creds.AccessToken == "" {
		return true
	}
	return creds.ExpiresAt <= s.now().UnixMilli()
}

// LoggedIn reports whether an unexpired access token is present.
func (s *Store) LoggedIn() bool {
	return !s.Expired()
}

// UsingKeyring returns true if the store is using the system keyring.
func (s *Store) UsingKeyring() bool {
	return s.useKeyring
}

func (s *Store) put(creds *Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	if s.useKeyring {
		return keyring.Set(serviceName, accountKey, string(data))
	}
	return s.writeFile(data)
}

func (s *Store) credentialsPath() string {
	return filepath.Join(s.fallbackDir, "credentials.json")
}

func (s *Store) writeFile(data []byte) error {
	if err := os.MkdirAll(s.fallbackDir, 0700); err != nil {
		return err
	}

	// Atomic write with randomized temp file name
	tmpFile, err := os.CreateTemp(s.fallbackDir, "credentials-*.json.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Chmod(0600); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	// Unix: rename atomically replaces the destination.
	// Windows: rename fails when destination exists. Try rename first to
	// preserve the old file on unrelated errors; only remove+retry on failure.
	destPath := s.credentialsPath()
	if err := os.Rename(tmpPath, destPath); err != nil {
		if runtime.GOOS == "windows" {
			_ = os.Remove(destPath)
			return os.Rename(tmpPath, destPath)
		}
		os.Remove(tmpPath) // Clean up stale temp on failure
		return err
	}
	return nil
}
