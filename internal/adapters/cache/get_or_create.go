package cache

import (
	"context"
	"fmt"

	"github.com/puttlog/puttlog/internal/logging"
)

// GetOrCreate returns the cached value for key, calling create on a miss.
//
// Concurrent callers for the same key wait for the first one instead of calling create.
func GetOrCreate[T any](ctx context.Context, cache Cache[T], key string, create func() (T, error)) (T, error) {
	// Clean up the cache if we claim an entry, but don't set it
	// This allows other callers to try again
	claimed := false
	set := false
	defer func() {
		if claimed && !set {
			cache.delete(key)
		}
	}()

	logger := logging.FromContext(ctx)

	for {
		result := cache.getOrClaim(key)

		if result.claimed {
			claimed = true

			logger.InfoContext(ctx, "Getting cached value", "cache", "miss", "key", key)

			data, err := create()
			if err != nil {
				var empty T
				return empty, fmt.Errorf("failed to create cache entry: %w", err)
			}

			cache.set(key, data)
			set = true

			return data, nil
		}

		if result.valid {
			logger.InfoContext(ctx, "Getting cached value", "cache", "hit", "key", key)
			return result.data, nil
		}

		logger.InfoContext(ctx, "Waiting for cache", "key", key)
		cache.wait()
	}
}
