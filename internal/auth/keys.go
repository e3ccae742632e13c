// Package auth issues and verifies access tokens and hashes passwords.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KeyFileName is the file under the data directory holding the generated token key.
const KeyFileName = "auth.key"

// ResolveKey returns the hex-encoded PASETO v4 key to use.
// A configured key wins. Otherwise the key is read from <dataDir>/auth.key,
// generating and saving a new one on first start.
func ResolveKey(configuredHex, dataDir string) (string, error) {
	if configuredHex != "" {
		if err := checkKeyHex(configuredHex); err != nil {
			return "", fmt.Errorf("ACCESS_TOKEN_KEY: %w", err)
		}
		return configuredHex, nil
	}

	keyPath := filepath.Join(dataDir, KeyFileName)

	//#nosec G304 -- key path is derived from the configured data directory
	if raw, err := os.ReadFile(keyPath); err == nil {
		keyHex := strings.TrimSpace(string(raw))
		if err := checkKeyHex(keyHex); err != nil {
			return "", fmt.Errorf("%s: %w", keyPath, err)
		}
		return keyHex, nil
	}

	key := make([]byte, keyBytesSize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate auth key: %w", err)
	}
	keyHex := hex.EncodeToString(key)

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(keyHex), 0o600); err != nil {
		return "", fmt.Errorf("failed to save auth key: %w", err)
	}
	return keyHex, nil
}

func checkKeyHex(keyHex string) error {
	if len(keyHex) != keyHexSize {
		return fmt.Errorf("expected %d hex characters, got %d", keyHexSize, len(keyHex))
	}
	if _, err := hex.DecodeString(keyHex); err != nil {
		return fmt.Errorf("not valid hex: %w", err)
	}
	return nil
}
