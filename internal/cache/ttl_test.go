package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTTL_ExpiryAndLRU(t *testing.T) {
	c := NewTTL(2, 50*time.Millisecond)

	c.Add("a", 1)
	c.Add("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	// "a" is now MRU; adding "c" evicts "b".
	c.Add("c", 3)
	_, ok = c.Get("b")
	require.False(t, ok)

	time.Sleep(60 * time.Millisecond)
	_, ok = c.Get("a")
	require.False(t, ok, "expired entry must miss")
	require.Equal(t, 1, c.Len()) // "c" still resident until touched
}
