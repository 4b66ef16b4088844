package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchJSONPopulatesAndServes(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (any, error) {
		loads++
		return []Line{{ID: 1, ProductID: 7, ProductName: "Widget"}}, nil
	}

	var first []Line
	require.NoError(t, cache.FetchJSON(ctx, "lines", &first, loader))
	require.Len(t, first, 1)
	require.Equal(t, 1, loads)

	var second []Line
	require.NoError(t, cache.FetchJSON(ctx, "lines", &second, loader))
	require.Equal(t, first, second)
	require.Equal(t, 1, loads, "second read must come from the cache")
}

func TestCacheBumpInvalidates(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (any, error) {
		loads++
		return []Line{{ID: int64(loads)}}, nil
	}

	var lines []Line
	require.NoError(t, cache.FetchJSON(ctx, "lines", &lines, loader))
	require.NoError(t, cache.Bump(ctx))
	require.NoError(t, cache.FetchJSON(ctx, "lines", &lines, loader))
	require.Equal(t, 2, loads, "bump must force a reload")
	require.Equal(t, int64(2), lines[0].ID)
}

func TestCacheVersionInitialises(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	ver, err := cache.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), ver)

	require.NoError(t, cache.Bump(ctx))
	ver, err = cache.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), ver)
}

func TestCacheNilClientDegradesToLoader(t *testing.T) {
	var cache *Cache
	loads := 0
	loader := func(context.Context) (any, error) {
		loads++
		return []Line{{ID: 5}}, nil
	}

	var lines []Line
	require.NoError(t, cache.FetchJSON(context.Background(), "lines", &lines, loader))
	require.Equal(t, 1, loads)
	require.Equal(t, int64(5), lines[0].ID)
}
