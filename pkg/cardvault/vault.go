// Package cardvault is the only place card snapshots are sealed and opened.
// A snapshot survives the issuer redirect inside the authentication session
// and is deleted as soon as the session reaches a terminal state.
package cardvault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/hkdf"
)

var (
	ErrNoKey   = errors.New("cardvault: no key material")
	ErrDecrypt = errors.New("cardvault: decryption failed")
)

// keyInfo binds derived keys to this use so the same master material can be
// shared with other subsystems without key reuse.
const keyInfo = "threeds card snapshot v1"

// Vault seals card snapshots with AES-256-GCM. The associated data is the
// order reference, so a snapshot cannot be replayed against another order.
type Vault struct {
	aead      cipher.AEAD
	ephemeral bool
}

// KeySource describes where master key material comes from. Path wins over
// Material; with neither set an ephemeral random key is generated.
type KeySource struct {
	Path     string
	Material string
}

// New derives the vault key from the configured source.
func New(src KeySource) (*Vault, error) {
	material, ephemeral, err := loadMaterial(src)
	if err != nil {
		return nil, err
	}
	return newVault(material, ephemeral)
}

// NewWithKey builds a vault from raw master key material.
func NewWithKey(material []byte) (*Vault, error) {
	if len(material) == 0 {
		return nil, ErrNoKey
	}
	return newVault(material, false)
}

func newVault(material []byte, ephemeral bool) (*Vault, error) {
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, material, nil, []byte(keyInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("cardvault: derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cardvault: create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cardvault: create GCM: %w", err)
	}

	return &Vault{aead: gcm, ephemeral: ephemeral}, nil
}

// loadMaterial reads key material from a file, then the inline value, and
// falls back to 32 random bytes. Snapshots sealed with an ephemeral key do not
// survive a restart, which only matters for challenges in flight.
func loadMaterial(src KeySource) ([]byte, bool, error) {
	if src.Path != "" {
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, false, fmt.Errorf("cardvault: read key file: %w", err)
		}
		data = []byte(strings.TrimSpace(string(data)))
		if len(data) == 0 {
			return nil, false, ErrNoKey
		}
		return data, false, nil
	}

	if src.Material != "" {
		return []byte(src.Material), false, nil
	}

	material := make([]byte, 32)
	if _, err := rand.Read(material); err != nil {
		return nil, false, fmt.Errorf("cardvault: generate ephemeral key: %w", err)
	}
	return material, true, nil
}

// Ephemeral reports whether the key was generated at startup.
func (v *Vault) Ephemeral() bool { return v.ephemeral }

// Seal encrypts plaintext bound to aad.
// Output format: [nonce][ciphertext][tag].
func (v *Vault) Seal(plaintext []byte, aad string) ([]byte, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("cardvault: generate nonce: %w", err)
	}
	return v.aead.Seal(nonce, nonce, plaintext, []byte(aad)), nil
}

// Open decrypts data produced by Seal with the same aad.
func (v *Vault) Open(sealed []byte, aad string) ([]byte, error) {
	n := v.aead.NonceSize()
	if len(sealed) < n+v.aead.Overhead() {
		return nil, ErrDecrypt
	}

	plaintext, err := v.aead.Open(nil, sealed[:n], sealed[n:], []byte(aad))
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// SealJSON marshals v and seals the result.
func (v *Vault) SealJSON(value any, aad string) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("cardvault: marshal: %w", err)
	}
	return v.Seal(raw, aad)
}

// OpenJSON opens sealed and unmarshals it into out.
func (v *Vault) OpenJSON(sealed []byte, aad string, out any) error {
	raw, err := v.Open(sealed, aad)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("cardvault: unmarshal: %w", err)
	}
	return nil
}
