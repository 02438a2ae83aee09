package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemory_SetGetDelete(t *testing.T) {
	t.Parallel()

	m := NewMemory(time.Minute)

	_, ok := m.Get("missing")
	assert.False(t, ok)

	m.Set("state-a", []byte("secret-a"), time.Minute)
	m.Set("state-b", []byte("secret-b"), time.Minute)

	got, ok := m.Get("state-a")
	assert.True(t, ok)
	assert.Equal(t, []byte("secret-a"), got)

	got, ok = m.Get("state-b")
	assert.True(t, ok)
	assert.Equal(t, []byte("secret-b"), got)

	m.Delete("state-a")
	_, ok = m.Get("state-a")
	assert.False(t, ok)
}

func TestMemory_EntriesExpire(t *testing.T) {
	t.Parallel()

	m := NewMemory(time.Minute)
	m.Set("short-lived", []byte("v"), 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)

	_, ok := m.Get("short-lived")
	assert.False(t, ok)
}
