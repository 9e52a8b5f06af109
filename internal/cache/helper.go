package cache

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/austinzumbro/nosql-social-api/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Get loads key into dest. Returns (true, nil) on a hit and (false, nil) on a miss
// or when caching is disabled.
func Get(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	raw, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores v under key with ttl.
func Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}
	return client.Set(ctx, key, buf.Bytes(), ttl).Err()
}

// Aside tries Redis first; on a miss it calls fetch, which must populate dest,
// then stores dest with ttl. Cache failures fall through to fetch.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	prefix := key
	if i := strings.IndexByte(key, ':'); i > 0 {
		prefix = key[:i]
	}

	found, err := Get(ctx, key, dest)
	if err != nil {
		slog.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if found {
		observability.CacheLookups.WithLabelValues(prefix, "hit").Inc()
		return nil
	}
	if client != nil {
		observability.CacheLookups.WithLabelValues(prefix, "miss").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := Set(ctx, key, dest, ttl); err != nil {
		slog.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}
