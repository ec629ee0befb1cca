package imagesearch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jknair0/beforeeach"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cache *Cache

func setUp() {
	cache = NewCache(0)
}

func tearDown() {
	cache = nil
}

var it = beforeeach.Create(setUp, tearDown)

func TestKey(t *testing.T) {
	testCases := []struct {
		name     string
		dish     string
		language string
		expected string
	}{
		{name: "lowercases and trims", dish: "  Paella  ", language: "Spanish", expected: "paella|spanish"},
		{name: "collapses inner whitespace", dish: "Pho   Bo", language: "Vietnamese", expected: "pho bo|vietnamese"},
		{name: "language disambiguates", dish: "Tortilla", language: "Mexican Spanish", expected: "tortilla|mexican spanish"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Key(tc.dish, tc.language))
		})
	}
}

func TestGetOrFetchCachesResult(t *testing.T) {
	it(func() {
		calls := 0
		fetch := func(ctx context.Context) ([]string, error) {
			calls++
			return []string{"https://example.com/paella.jpg"}, nil
		}

		urls, err := cache.GetOrFetch(context.Background(), "paella|spanish", fetch)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/paella.jpg"}, urls)

		// Warm cache: zero additional upstream calls, identical result.
		again, err := cache.GetOrFetch(context.Background(), "paella|spanish", fetch)
		require.NoError(t, err)
		assert.Equal(t, urls, again)
		assert.Equal(t, 1, calls)
		assert.Equal(t, 1, cache.Len())
	})
}

func TestGetOrFetchSingleFlight(t *testing.T) {
	it(func() {
		var calls atomic.Int32
		release := make(chan struct{})
		fetch := func(ctx context.Context) ([]string, error) {
			calls.Add(1)
			<-release
			return []string{"https://example.com/dish.jpg"}, nil
		}

		const waiters = 10
		var wg sync.WaitGroup
		results := make([][]string, waiters)
		for i := 0; i < waiters; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				urls, err := cache.GetOrFetch(context.Background(), "ramen|japanese", fetch)
				assert.NoError(t, err)
				results[i] = urls
			}(i)
		}

		// Give all waiters time to attach to the in-flight fetch.
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load(), "concurrent lookups must share one upstream call")
		for _, urls := range results {
			assert.Equal(t, []string{"https://example.com/dish.jpg"}, urls)
		}
	})
}

func TestGetOrFetchErrorNotCached(t *testing.T) {
	it(func() {
		calls := 0
		failing := func(ctx context.Context) ([]string, error) {
			calls++
			return nil, errors.New("search unavailable")
		}

		_, err := cache.GetOrFetch(context.Background(), "sushi|japanese", failing)
		assert.Error(t, err)
		assert.Equal(t, 0, cache.Len(), "failures must not be cached")

		// The next attempt is allowed to retry upstream.
		_, err = cache.GetOrFetch(context.Background(), "sushi|japanese", failing)
		assert.Error(t, err)
		assert.Equal(t, 2, calls)
	})
}

func TestCacheTTLExpiry(t *testing.T) {
	ttlCache := NewCache(10 * time.Millisecond)

	calls := 0
	fetch := func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"https://example.com/1.jpg"}, nil
	}

	_, err := ttlCache.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)

	_, ok := ttlCache.Get("k")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok = ttlCache.Get("k")
	assert.False(t, ok, "entry should have expired")
	assert.Equal(t, 0, ttlCache.Len(), "expired entries are evicted on read")

	_, err = ttlCache.GetOrFetch(context.Background(), "k", fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "expired entry triggers a fresh fetch")
}

func TestCacheStoresEmptyResult(t *testing.T) {
	it(func() {
		calls := 0
		fetch := func(ctx context.Context) ([]string, error) {
			calls++
			return []string{}, nil
		}

		urls, err := cache.GetOrFetch(context.Background(), "unphotogenic|latin", fetch)
		require.NoError(t, err)
		assert.Empty(t, urls)

		// "No images exist" is a valid, cacheable answer.
		_, err = cache.GetOrFetch(context.Background(), "unphotogenic|latin", fetch)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})
}
