package backup

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize  = 32
	nonceSize = 12
	tagSize   = 16
	keySize   = 32

	// MinIterations is the floor for the PBKDF2 work factor. The KDF is
	// deliberately slow so brute-forcing a short password stays expensive.
	MinIterations = 100_000
)

var (
	// ErrEmptyPassword is returned when encrypting or decrypting with an
	// empty password.
	ErrEmptyPassword = errors.New("backup password cannot be empty")

	// ErrDecryptionFailed covers wrong password, corrupted container, and
	// tampering. GCM cannot distinguish these cases, and no partial
	// plaintext is ever returned.
	ErrDecryptionFailed = errors.New("backup decryption failed: wrong password or corrupted file")

	// ErrContainerTooShort is returned when the container cannot hold the
	// fixed-length salt, nonce, and tag fields.
	ErrContainerTooShort = errors.New("backup container too short")

	// ErrUnsupportedVersion is returned for unknown formatVersion values.
	ErrUnsupportedVersion = errors.New("unsupported backup format version")
)

// Codec encrypts and decrypts backup payloads. Stateless; instantiate per
// operation or share freely.
type Codec struct {
	iterations int
}

// NewCodec creates a codec with the default PBKDF2 work factor.
func NewCodec() *Codec {
	return &Codec{iterations: MinIterations}
}

// NewCodecWithIterations creates a codec with a custom work factor, clamped
// to MinIterations. Intended for configuration, not for weakening.
func NewCodecWithIterations(iterations int) *Codec {
	if iterations < MinIterations {
		iterations = MinIterations
	}
	return &Codec{iterations: iterations}
}

// Encrypt serializes the payload and seals it into a backup container.
// A fresh random salt and nonce are generated per export and never reused,
// even for the same password.
func (c *Codec) Encrypt(payload *Payload, password string) ([]byte, error) {
	if payload == nil {
		return nil, fmt.Errorf("payload cannot be nil")
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup payload: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	gcm, err := c.aead(password, salt)
	if err != nil {
		return nil, err
	}

	// Seal appends ciphertext then the 16-byte tag, which yields exactly the
	// salt ‖ nonce ‖ ciphertext ‖ tag container layout.
	container := make([]byte, 0, saltSize+nonceSize+len(plaintext)+tagSize)
	container = append(container, salt...)
	container = append(container, nonce...)
	container = gcm.Seal(container, nonce, plaintext, nil)

	return container, nil
}

// Decrypt opens a backup container and decodes the payload. Any
// authentication mismatch (wrong password, flipped bytes, truncation) fails
// the whole operation with ErrDecryptionFailed. Unknown format versions are
// rejected with ErrUnsupportedVersion.
func (c *Codec) Decrypt(container []byte, password string) (*Payload, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	if len(container) < saltSize+nonceSize+tagSize {
		return nil, ErrContainerTooShort
	}

	salt := container[:saltSize]
	nonce := container[saltSize : saltSize+nonceSize]
	sealed := container[saltSize+nonceSize:]

	gcm, err := c.aead(password, salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	var payload Payload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode backup payload: %w", err)
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	return &payload, nil
}

// aead derives the AES-256 key from password and salt and returns the GCM
// instance. Identical parameters on both sides of the round trip.
func (c *Codec) aead(password string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, c.iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
