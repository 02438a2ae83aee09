package crypto

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNew_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := New("too-short")
	assert.Error(t, err)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	t.Parallel()

	c, err := New(testSecret)
	require.NoError(t, err)

	for _, plaintext := range []string{
		"x",
		"oauth-access-token-value",
		"token with spaces and symbols &=?#",
		"emoji token 🐿️✓",
		strings.Repeat("long", 500),
	} {
		ct, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, ct)

		pt, err := c.Decrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, plaintext, pt)
	}
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	t.Parallel()

	c, err := New(testSecret)
	require.NoError(t, err)

	first, err := c.Encrypt("same input")
	require.NoError(t, err)
	second, err := c.Encrypt("same input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDecrypt_DetectsTamper(t *testing.T) {
	t.Parallel()

	c, err := New(testSecret)
	require.NoError(t, err)

	ct, err := c.Encrypt("top secret")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(ct)
	require.NoError(t, err)

	// Flip every byte position in turn; none may decrypt.
	for i := range raw {
		tampered := make([]byte, len(raw))
		copy(tampered, raw)
		tampered[i] ^= 0x01

		_, err := c.Decrypt(base64.StdEncoding.EncodeToString(tampered))
		require.Error(t, err, "flipped byte %d was accepted", i)
		assert.True(t, errors.Is(err, ErrDecryptFailed))
	}
}

func TestDecrypt_RejectsTruncatedInput(t *testing.T) {
	t.Parallel()

	c, err := New(testSecret)
	require.NoError(t, err)

	ct, err := c.Encrypt("top secret")
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(ct)
	require.NoError(t, err)

	for _, n := range []int{0, 1, nonceSize, nonceSize + tagSize - 1} {
		_, err := c.Decrypt(base64.StdEncoding.EncodeToString(raw[:n]))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDecryptFailed))
	}
}

func TestDecrypt_RejectsGarbageInput(t *testing.T) {
	t.Parallel()

	c, err := New(testSecret)
	require.NoError(t, err)

	_, err = c.Decrypt("not base64 at all %%%")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecryptFailed))
}

func TestDecrypt_FailsAfterKeyRotation(t *testing.T) {
	t.Parallel()

	oldCipher, err := New(testSecret)
	require.NoError(t, err)
	newCipher, err := New("a-completely-different-master-key-here")
	require.NoError(t, err)

	ct, err := oldCipher.Encrypt("credentials from before the rotation")
	require.NoError(t, err)

	_, err = newCipher.Decrypt(ct)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecryptFailed))
}

func TestValidateEncryption(t *testing.T) {
	t.Parallel()

	c, err := New(testSecret)
	require.NoError(t, err)
	assert.NoError(t, c.ValidateEncryption())
}
