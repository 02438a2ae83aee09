package utils

import (
	"crypto/subtle"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const stateLength = 32

// GenerateState returns an opaque random value used to correlate an OAuth
// redirect with its callback.
func GenerateState() (string, error) {
	return gonanoid.New(stateLength)
}

// SecureCompare reports whether two state values are equal without leaking
// the position of the first mismatch.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
