package action

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContextSetGet(t *testing.T) {
	c := NewContext()

	_, ok := c.Get("missing")
	require.False(t, ok)

	c.Set("basket", []string{"water"})
	v, ok := c.Get("basket")
	require.True(t, ok)
	require.Equal(t, []string{"water"}, v)
}

func TestContextSetIgnoresEmptyKey(t *testing.T) {
	c := NewContext()
	c.Set("", "value")
	_, ok := c.Get("")
	require.False(t, ok)
}

func TestContextConcurrentAccess(t *testing.T) {
	c := NewContext()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Set("k", i)
			c.Get("k")
		}(i)
	}
	wg.Wait()
}
