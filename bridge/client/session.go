package client

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/99designs/keyring"
)

// sessionRecord keeps the exported DSM session between runs so restarts do
// not burn a fresh login each time.
type sessionRecord struct {
	SessionID   string    `json:"sid"`
	DeviceToken string    `json:"did,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
}

// cacheKey returns a stable keyring key for a given host/user pair.
func cacheKey(host, user string) string {
	sum := sha1.Sum([]byte(host + "\x00" + user))
	return "dsm-mqtt-bridge:" + hex.EncodeToString(sum[:])
}

// openSessionRing opens a keyring according to the configured mode. Modes:
// auto, keyring, file, memory, off.
func openSessionRing(mode, path string) (keyring.Keyring, error) {
	cfg := keyring.Config{ServiceName: "dsm-mqtt-bridge"}
	switch mode {
	case "auto":
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.KeychainBackend, keyring.WinCredBackend,
			keyring.SecretServiceBackend, keyring.KWalletBackend,
			keyring.PassBackend, keyring.FileBackend,
		}
	case "keyring":
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.KeychainBackend, keyring.WinCredBackend,
			keyring.SecretServiceBackend, keyring.KWalletBackend,
		}
	case "file":
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	case "memory":
		return keyring.NewArrayKeyring(nil), nil
	default: // off
		return nil, fmt.Errorf("session cache disabled")
	}
	if path == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			path = filepath.Join(dir, "dsm-mqtt-bridge", "sessions")
		}
	}
	if path != "" {
		_ = os.MkdirAll(path, 0o700)
		cfg.FileDir = path
	}
	if r, err := keyring.Open(cfg); err == nil {
		return r, nil
	}
	// fall back to in-memory so runs still work without persistence
	return keyring.NewArrayKeyring(nil), nil
}

func readSession(r keyring.Keyring, key string) (*sessionRecord, error) {
	if r == nil {
		return nil, fmt.Errorf("no keyring")
	}
	it, err := r.Get(key)
	if err != nil {
		return nil, err
	}
	var rec sessionRecord
	if err := json.Unmarshal(it.Data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func writeSession(r keyring.Keyring, key string, rec sessionRecord) error {
	if r == nil {
		return fmt.Errorf("no keyring")
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.Set(keyring.Item{
		Key:                         key,
		Data:                        b,
		Label:                       "Synology DSM session for dsm-mqtt-bridge",
		KeychainNotTrustApplication: true,
	})
}
