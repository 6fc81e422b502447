package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
)

// Argon2id parameters used when hashing client secrets. These follow the
// OWASP low-memory recommendation so the service stays usable on small
// containers.
const (
	memory      = 19 * 1024
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var (
	pepper     string
	pepperFile = "pepper"
)

// SetPepperPath overrides where the pepper is persisted. Must be called
// before the first secret is hashed or verified.
func SetPepperPath(file string) {
	pepperFile = file
}

// GetPepper returns the process-wide pepper, loading it from disk on first
// use and creating it if this is a fresh install. A pepper that cannot be
// loaded or created is fatal: hashing secrets without it would silently
// produce unverifiable records.
func GetPepper() string {
	if pepper != "" {
		return pepper
	}

	p, err := loadOrGeneratePepper(pepperFile)
	if err != nil {
		slog.Error("failed to load or generate pepper", "file", pepperFile, "error", err)
		os.Exit(1)
	}

	pepper = p
	return pepper
}

func loadOrGeneratePepper(file string) (string, error) {
	data, err := os.ReadFile(file)
	if err == nil {
		return string(data), nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}

	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return "", err
		}
	}

	buf := make([]byte, keyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	generated := base64.RawURLEncoding.EncodeToString(buf)

	if err := os.WriteFile(file, []byte(generated), 0600); err != nil {
		return "", err
	}

	return generated, nil
}
