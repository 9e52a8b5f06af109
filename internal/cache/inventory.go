package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	UserKeyPrefix    = "user:%d"
	ThoughtKeyPrefix = "thought:%d"
)

const (
	UserTTL    = 5 * time.Minute
	ThoughtTTL = 30 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ThoughtKey(thoughtID uint) string {
	return fmt.Sprintf(ThoughtKeyPrefix, thoughtID)
}

// Invalidate drops the given keys. Failures are logged and otherwise ignored.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		slog.WarnContext(ctx, "cache invalidation failed", slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

func InvalidateUsers(ctx context.Context, userIDs ...uint) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, UserKey(id))
	}
	Invalidate(ctx, keys...)
}

func InvalidateThoughts(ctx context.Context, thoughtIDs ...uint) {
	keys := make([]string, 0, len(thoughtIDs))
	for _, id := range thoughtIDs {
		keys = append(keys, ThoughtKey(id))
	}
	Invalidate(ctx, keys...)
}
