package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	SaltSize  = 32 // Salt size in bytes
	KeySize   = 32 // AES-256 key size
	NonceSize = 12 // GCM nonce size
	TagSize   = 16 // GCM authentication tag size

	DefaultTime    = 3         // Argon2id passes
	DefaultMemory  = 64 * 1024 // Argon2id memory in KiB
	DefaultThreads = 4         // Argon2id lanes
)

var (
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrAuthFailed        = errors.New("authentication failed")
)

// KDF holds the Argon2id parameters stored alongside a vault
type KDF struct {
	Salt    []byte
	Time    uint32
	Memory  uint32
	Threads uint8
}

// NewKDF creates a KDF with a random salt and default cost parameters
func NewKDF() (*KDF, error) {
	salt, err := GenerateRandom(SaltSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	return &KDF{
		Salt:    salt,
		Time:    DefaultTime,
		Memory:  DefaultMemory,
		Threads: DefaultThreads,
	}, nil
}

// DeriveKey derives an encryption key from a password
func (k *KDF) DeriveKey(password []byte) []byte {
	return argon2.IDKey(password, k.Salt, k.Time, k.Memory, k.Threads, KeySize)
}

// Sealer provides authenticated encryption bound to a context label.
// The label (snapshot name, or a fixed tag for vault metadata) is used as
// additional data, so a blob copied under another name fails to open.
type Sealer struct {
	key  []byte
	aead cipher.AEAD
}

// NewSealer creates a sealer for key. The sealer takes ownership of key.
func NewSealer(key []byte) (*Sealer, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Sealer{key: key, aead: aead}, nil
}

// Seal encrypts plaintext; the result is nonce || ciphertext || tag
func (s *Sealer) Seal(label string, plaintext []byte) ([]byte, error) {
	nonce, err := GenerateRandom(NonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, []byte(label)), nil
}

// Open decrypts data produced by Seal with the same label
func (s *Sealer) Open(label string, data []byte) ([]byte, error) {
	if len(data) < NonceSize+TagSize {
		return nil, ErrInvalidCiphertext
	}
	plaintext, err := s.aead.Open(nil, data[:NonceSize], data[NonceSize:], []byte(label))
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

// Destroy clears the key from memory
func (s *Sealer) Destroy() {
	ClearBytes(s.key)
}

// ClearBytes zeroes a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
