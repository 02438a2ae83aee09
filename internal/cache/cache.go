// Package cache holds short-lived OAuth handshake state between the redirect
// and callback steps. Entries are keyed by the CSRF state value, so two
// concurrent handshakes never read each other's secrets.
package cache

import "time"

type Cache interface {
	Get(k string) ([]byte, bool)
	Set(k string, v []byte, ttl time.Duration)
	Delete(k string)
}
