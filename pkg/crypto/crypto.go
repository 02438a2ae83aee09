package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

const (
	nonceSize = 12
	tagSize   = 16

	minSecretLength = 32
)

// ErrDecryptFailed marks ciphertext that cannot be opened: tampered data,
// truncated data, or data encrypted under a different master key. Callers
// must treat it as "stored credentials unusable", never as "no credentials".
var ErrDecryptFailed = errors.New("credential decryption failed")

// Cipher encrypts OAuth credentials for storage with AES-256-GCM. The key is
// derived from the configured master secret with SHA-256, so the secret's
// literal length does not matter beyond the minimum.
type Cipher struct {
	key []byte
}

func New(secret string) (*Cipher, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("encryption secret must be at least %d characters, got %d", minSecretLength, len(secret))
	}
	sum := sha256.Sum256([]byte(secret))
	return &Cipher{key: sum[:]}, nil
}

// Encrypt returns base64(nonce || authTag || ciphertext) with a fresh random
// nonce per call.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	nonce := make([]byte, nonceSize)
	_, err = io.ReadFull(rand.Reader, nonce)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	// Seal appends the tag after the ciphertext; storage layout is
	// nonce || tag || ciphertext.
	sealed := aesGCM.Seal(nil, nonce, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	finalData := make([]byte, 0, nonceSize+len(sealed))
	finalData = append(finalData, nonce...)
	finalData = append(finalData, tag...)
	finalData = append(finalData, ct...)

	return base64.StdEncoding.EncodeToString(finalData), nil
}

// Decrypt reverses Encrypt. Any failure to authenticate or parse the input
// resolves to ErrDecryptFailed.
func (c *Cipher) Decrypt(encryptedData string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encryptedData)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("%w: not valid base64", ErrDecryptFailed)
	}

	if len(data) < nonceSize+tagSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryptFailed)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	nonce := data[:nonceSize]
	tag := data[nonceSize : nonceSize+tagSize]
	ct := data[nonceSize+tagSize:]

	sealed := make([]byte, 0, len(ct)+tagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := aesGCM.Open(nil, nonce, sealed, nil)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("%w: authentication failed", ErrDecryptFailed)
	}

	return string(plaintext), nil
}

// ValidateEncryption round-trips a known string and confirms a tampered
// ciphertext is rejected. Run at process startup.
func (c *Cipher) ValidateEncryption() error {
	const probe = "quizsquirrel-encryption-check"

	encrypted, err := c.Encrypt(probe)
	if err != nil {
		return fmt.Errorf("encryption self-test: encrypt: %w", err)
	}

	decrypted, err := c.Decrypt(encrypted)
	if err != nil {
		return fmt.Errorf("encryption self-test: decrypt: %w", err)
	}
	if decrypted != probe {
		return errors.New("encryption self-test: round trip mismatch")
	}

	raw, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return fmt.Errorf("encryption self-test: %w", err)
	}
	tampered := bytes.Clone(raw)
	tampered[len(tampered)-1] ^= 0x01
	if _, err := c.Decrypt(base64.StdEncoding.EncodeToString(tampered)); err == nil {
		return errors.New("encryption self-test: tampered ciphertext was accepted")
	}

	return nil
}
