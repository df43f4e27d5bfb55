package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpkgyl/catalog-scraper/internal/scrape"
)

func TestStore(t *testing.T) {
	t.Parallel()

	s := NewStore()

	t.Run("GetMissingKey", func(t *testing.T) {
		_, err := s.Get("absent")
		require.ErrorIs(t, err, scrape.ErrNotFound)
		assert.False(t, s.Contains("absent"))
	})

	t.Run("PutThenGet", func(t *testing.T) {
		s.Put("widget", 19.99)
		require.True(t, s.Contains("widget"))
		v, err := s.Get("widget")
		require.NoError(t, err)
		assert.Equal(t, 19.99, v)
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		s.Put("widget", 24.50)
		v, err := s.Get("widget")
		require.NoError(t, err)
		assert.Equal(t, 24.50, v)
		assert.Equal(t, 1, s.Len())
	})
}

func TestPriceCacheIsDifferent(t *testing.T) {
	t.Parallel()

	c := NewPriceCache()

	assert.True(t, c.IsDifferent("widget", 19.99), "unknown key is always different")

	c.Put("widget", 19.99)
	assert.False(t, c.IsDifferent("widget", 19.99), "same price is unchanged")
	assert.True(t, c.IsDifferent("widget", 24.50), "new price is different")

	c.Put("widget", 24.50)
	assert.False(t, c.IsDifferent("widget", 24.50), "cache tracks most recently accepted price")
}

func TestStoreConcurrentAccess(t *testing.T) {
	t.Parallel()

	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Put("shared", float64(n))
				s.Contains("shared")
				_, _ = s.Get("shared")
			}
		}(i)
	}
	wg.Wait()
	require.True(t, s.Contains("shared"))
}
