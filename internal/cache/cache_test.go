package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/austinzumbro/nosql-social-api/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	require.NotNil(t, InitRedis(mr.Addr()))
	t.Cleanup(func() {
		_ = client.Close()
		SetClient(nil)
	})
	return mr
}

func TestInitRedis_Unreachable(t *testing.T) {
	assert.Nil(t, InitRedis("redis://127.0.0.1:1/0"))
	assert.Nil(t, GetClient())
	assert.Nil(t, InitRedis("redis://%zz"))
}

func TestAside_MissThenHit(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()
	owner := uint(2)

	calls := 0
	fetch := func(dest *models.Thought) func() error {
		return func() error {
			calls++
			*dest = models.Thought{
				ID:          1,
				ThoughtText: "hi",
				Username:    "ana",
				UserID:      &owner,
				Reactions:   models.Reactions{models.NewReaction("lol", "bo")},
				CreatedAt:   time.Date(2024, 1, 1, 10, 0, 0, 42, time.UTC),
			}
			return nil
		}
	}

	var first models.Thought
	require.NoError(t, Aside(ctx, ThoughtKey(1), &first, ThoughtTTL, fetch(&first)))
	assert.True(t, mr.Exists("thought:1"))
	assert.Equal(t, ThoughtTTL, mr.TTL("thought:1"))

	var second models.Thought
	require.NoError(t, Aside(ctx, ThoughtKey(1), &second, ThoughtTTL, fetch(&second)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first.Reactions[0].ReactionID, second.Reactions[0].ReactionID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	require.NotNil(t, second.UserID)
	assert.Equal(t, owner, *second.UserID)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr := setupRedis(t)
	var u models.User
	err := Aside(context.Background(), UserKey(9), &u, UserTTL, func() error {
		return models.NewNotFoundError("user", 9)
	})
	assert.True(t, models.IsNotFound(err))
	assert.False(t, mr.Exists("user:9"))
}

func TestAside_WithoutRedis(t *testing.T) {
	SetClient(nil)
	var u models.User
	err := Aside(context.Background(), UserKey(1), &u, UserTTL, func() error {
		u = models.User{ID: 1, Username: "ana"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)

	err = Aside(context.Background(), UserKey(1), &u, UserTTL, func() error { return errors.New("db down") })
	assert.Error(t, err)
}

func TestInvalidate(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, Set(ctx, UserKey(1), models.User{ID: 1}, UserTTL))
	require.NoError(t, Set(ctx, UserKey(2), models.User{ID: 2}, UserTTL))
	require.NoError(t, Set(ctx, ThoughtKey(5), models.Thought{ID: 5}, ThoughtTTL))

	InvalidateUsers(ctx, 1, 2)
	InvalidateThoughts(ctx, 5)
	InvalidateThoughts(ctx)

	assert.False(t, mr.Exists("user:1"))
	assert.False(t, mr.Exists("user:2"))
	assert.False(t, mr.Exists("thought:5"))
}
