package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	algorithmID = "scrypt"

	minSaltLength = 16
	minKeyLength  = 32
)

// Config holds scrypt tuning parameters. N must be a power of two greater
// than one; the defaults follow current interactive-login guidance.
type Config struct {
	N          int
	R          int
	P          int
	SaltLength int
	KeyLength  int
}

// DefaultConfig returns the production parameters: N=32768, r=8, p=1,
// 16-byte salt, 64-byte derived key.
func DefaultConfig() Config {
	return Config{
		N:          1 << 15,
		R:          8,
		P:          1,
		SaltLength: 16,
		KeyLength:  64,
	}
}

// Hasher derives and verifies stored password hashes. Immutable after
// construction and safe for concurrent use; each call costs the full KDF
// work factor by design.
type Hasher struct {
	config Config
}

// NewHasher validates cfg and returns a Hasher.
func NewHasher(cfg Config) (*Hasher, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return &Hasher{config: cfg}, nil
}

// Hash generates a fresh random salt and returns the stored form
// "scrypt:<salt-hex>:<derived-key-hex>".
func (h *Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key, err := scrypt.Key([]byte(plaintext), salt, h.config.N, h.config.R, h.config.P, h.config.KeyLength)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s:%s:%s", algorithmID, hex.EncodeToString(salt), hex.EncodeToString(key)), nil
}

// Verify recomputes the derived key for plaintext against the stored hash
// and compares in constant time. It returns false — never an error — when
// the stored string is malformed, carries an unknown algorithm tag, or has
// mismatched lengths.
func (h *Hasher) Verify(plaintext, stored string) bool {
	salt, expected, err := parseStored(stored)
	if err != nil {
		return false
	}

	key, err := scrypt.Key([]byte(plaintext), salt, h.config.N, h.config.R, h.config.P, len(expected))
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(key, expected) == 1
}

func parseStored(stored string) (salt, key []byte, err error) {
	parts := strings.Split(stored, ":")
	if len(parts) != 3 {
		return nil, nil, errors.New("invalid stored hash format")
	}
	if parts[0] != algorithmID {
		return nil, nil, errors.New("unsupported algorithm")
	}

	salt, err = hex.DecodeString(parts[1])
	if err != nil {
		return nil, nil, errors.New("invalid salt encoding")
	}
	if len(salt) < minSaltLength {
		return nil, nil, errors.New("invalid salt length")
	}

	key, err = hex.DecodeString(parts[2])
	if err != nil {
		return nil, nil, errors.New("invalid key encoding")
	}
	if len(key) < minKeyLength {
		return nil, nil, errors.New("invalid key length")
	}

	return salt, key, nil
}

func validateConfig(cfg Config) error {
	if cfg.N <= 1 || cfg.N&(cfg.N-1) != 0 {
		return errors.New("scrypt N must be a power of two greater than one")
	}
	if cfg.R <= 0 || cfg.P <= 0 {
		return errors.New("scrypt r and p must be positive")
	}
	if cfg.SaltLength < minSaltLength {
		return fmt.Errorf("salt length must be at least %d bytes", minSaltLength)
	}
	if cfg.KeyLength < minKeyLength {
		return fmt.Errorf("key length must be at least %d bytes", minKeyLength)
	}
	return nil
}
