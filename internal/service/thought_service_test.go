package service

import (
	"context"
	"strings"
	"testing"

	"github.com/austinzumbro/nosql-social-api/internal/models"
	"github.com/austinzumbro/nosql-social-api/internal/notifications"
	"github.com/austinzumbro/nosql-social-api/internal/observability"
	"github.com/austinzumbro/nosql-social-api/internal/repository"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersNamed(byName map[string]*models.User) *userRepoStub {
	repo := noopUserRepo()
	repo.getByUsernameFn = func(_ context.Context, name string) (*models.User, error) {
		if u, ok := byName[name]; ok {
			return u, nil
		}
		return nil, models.NewNotFoundError("user", name)
	}
	repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		for _, u := range byName {
			if u.ID == id {
				return u, nil
			}
		}
		return nil, models.NewNotFoundError("user", id)
	}
	return repo
}

// linkingThoughtRepo mimics the store: it assigns IDs and links owned thoughts.
func linkingThoughtRepo(owners map[uint]*models.User) *thoughtRepoStub {
	repo := noopThoughtRepo()
	next := uint(0)
	repo.createFn = func(_ context.Context, th *models.Thought) (*models.User, error) {
		next++
		th.ID = next
		if th.UserID == nil {
			return nil, nil
		}
		owner, ok := owners[*th.UserID]
		if !ok {
			return nil, models.NewNotFoundError("user", *th.UserID)
		}
		owner.Thoughts, _ = models.AddID(owner.Thoughts, th.ID)
		return owner, nil
	}
	return repo
}

func TestCreateThought_Validation(t *testing.T) {
	svc := NewThoughtService(noopThoughtRepo(), noopUserRepo(), nil)
	ctx := context.Background()

	_, err := svc.CreateThought(ctx, CreateThoughtInput{ThoughtText: "", Username: "ana"})
	assertValidationError(t, err)
	_, err = svc.CreateThought(ctx, CreateThoughtInput{ThoughtText: strings.Repeat("x", 281), Username: "ana"})
	assertValidationError(t, err)
	_, err = svc.CreateThought(ctx, CreateThoughtInput{ThoughtText: "hi"})
	assertValidationError(t, err)
	_, err = svc.CreateThought(ctx, CreateThoughtInput{ThoughtText: "hi", UserID: ptr(uint(999))})
	assertValidationError(t, err)

	res, err := svc.CreateThought(ctx, CreateThoughtInput{ThoughtText: strings.Repeat("x", 280), Username: "ana"})
	require.NoError(t, err)
	assert.Len(t, res.Thought.ThoughtText, 280)
}

func TestCreateThought_ResolvesOwnerByUsername(t *testing.T) {
	ana := &models.User{ID: 4, Username: "ana"}
	events := &eventRecorder{}
	svc := NewThoughtService(linkingThoughtRepo(map[uint]*models.User{4: ana}), usersNamed(map[string]*models.User{"ana": ana}), events)

	res, err := svc.CreateThought(context.Background(), CreateThoughtInput{ThoughtText: "hi", Username: "ana"})
	require.NoError(t, err)
	require.NotNil(t, res.User)
	require.NotNil(t, res.Thought.UserID)
	assert.Equal(t, uint(4), *res.Thought.UserID)
	assert.Equal(t, []uint{res.Thought.ID}, res.User.Thoughts)
	assert.NotNil(t, res.Thought.Reactions)
	assert.Equal(t, []string{notifications.EventThoughtCreated}, events.types())
	assert.Equal(t, uint(4), events.events[0].UserID)
}

func TestCreateThought_UserIDWinsOverUsername(t *testing.T) {
	ana := &models.User{ID: 4, Username: "ana"}
	bea := &models.User{ID: 5, Username: "bea"}
	owners := map[uint]*models.User{4: ana, 5: bea}
	svc := NewThoughtService(linkingThoughtRepo(owners), usersNamed(map[string]*models.User{"ana": ana, "bea": bea}), nil)

	res, err := svc.CreateThought(context.Background(), CreateThoughtInput{ThoughtText: "hi", Username: "ana", UserID: ptr(uint(5))})
	require.NoError(t, err)
	assert.Equal(t, uint(5), res.User.ID)
	assert.Equal(t, "bea", res.Thought.Username)
}

func TestCreateThought_Orphan(t *testing.T) {
	before := testutil.ToFloat64(observability.OrphanedThoughts)
	svc := NewThoughtService(linkingThoughtRepo(nil), usersNamed(nil), nil)

	res, err := svc.CreateThought(context.Background(), CreateThoughtInput{ThoughtText: "hi", Username: "ghost", UserID: ptr(uint(9))})
	require.NoError(t, err)
	assert.Nil(t, res.User)
	assert.Nil(t, res.Thought.UserID)
	assert.Equal(t, "ghost", res.Thought.Username)
	assert.Equal(t, before+1, testutil.ToFloat64(observability.OrphanedThoughts))
}

func TestCreateThought_OwnerDeletedBeforeLink(t *testing.T) {
	ana := &models.User{ID: 4, Username: "ana"}
	svc := NewThoughtService(linkingThoughtRepo(map[uint]*models.User{}), usersNamed(map[string]*models.User{"ana": ana}), nil)

	res, err := svc.CreateThought(context.Background(), CreateThoughtInput{ThoughtText: "hi", Username: "ana"})
	require.NoError(t, err)
	assert.Nil(t, res.User)
	assert.Nil(t, res.Thought.UserID)
}

func TestUpdateThought(t *testing.T) {
	ctx := context.Background()
	owned := &models.Thought{ID: 1, ThoughtText: "a", Username: "ana", UserID: ptr(uint(4))}
	orphan := &models.Thought{ID: 2, ThoughtText: "b", Username: "ghost"}

	repo := noopThoughtRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Thought, error) {
		switch id {
		case 1:
			return owned, nil
		case 2:
			return orphan, nil
		}
		return nil, models.NewNotFoundError("thought", id)
	}
	var got repository.ThoughtChanges
	repo.updateFn = func(_ context.Context, id uint, c repository.ThoughtChanges) (*models.Thought, error) {
		got = c
		return &models.Thought{ID: id}, nil
	}
	svc := NewThoughtService(repo, noopUserRepo(), nil)

	_, err := svc.UpdateThought(ctx, 1, UpdateThoughtInput{ThoughtText: ptr(strings.Repeat("x", 281))})
	assertValidationError(t, err)

	_, err = svc.UpdateThought(ctx, 1, UpdateThoughtInput{UserID: ptr(uint(5))})
	assertValidationError(t, err)

	_, err = svc.UpdateThought(ctx, 1, UpdateThoughtInput{Username: ptr("bea")})
	assertValidationError(t, err)

	_, err = svc.UpdateThought(ctx, 1, UpdateThoughtInput{ThoughtText: ptr("edited"), Username: ptr("ana"), UserID: ptr(uint(4))})
	require.NoError(t, err)
	assert.Equal(t, "edited", *got.ThoughtText)
	assert.Nil(t, got.Username)

	_, err = svc.UpdateThought(ctx, 2, UpdateThoughtInput{Username: ptr("casper")})
	require.NoError(t, err)
	assert.Equal(t, "casper", *got.Username)

	unchanged, err := svc.UpdateThought(ctx, 2, UpdateThoughtInput{})
	require.NoError(t, err)
	assert.Same(t, orphan, unchanged)

	_, err = svc.UpdateThought(ctx, 3, UpdateThoughtInput{ThoughtText: ptr("x")})
	assert.True(t, models.IsNotFound(err))
}

func TestDeleteThought(t *testing.T) {
	repo := noopThoughtRepo()
	repo.deleteFn = func(_ context.Context, id uint) (*models.Thought, *models.User, error) {
		return &models.Thought{ID: id}, &models.User{ID: 4, Thoughts: []uint{}}, nil
	}
	events := &eventRecorder{}
	svc := NewThoughtService(repo, noopUserRepo(), events)

	res, err := svc.DeleteThought(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint(3), res.Thought.ID)
	assert.Equal(t, uint(4), res.User.ID)
	assert.Equal(t, uint(4), events.events[0].UserID)

	_, err = NewThoughtService(noopThoughtRepo(), noopUserRepo(), nil).DeleteThought(context.Background(), 3)
	assert.True(t, models.IsNotFound(err))
}

func TestReactions(t *testing.T) {
	ctx := context.Background()
	stored := &models.Thought{ID: 1, Reactions: models.Reactions{}}
	repo := noopThoughtRepo()
	repo.addReactionFn = func(_ context.Context, _ uint, r models.Reaction) (*models.Thought, bool, error) {
		return stored, stored.AddReaction(r), nil
	}
	repo.removeReactionFn = func(_ context.Context, _ uint, id string) (*models.Thought, bool, error) {
		return stored, stored.RemoveReaction(id), nil
	}
	events := &eventRecorder{}
	svc := NewThoughtService(repo, noopUserRepo(), events)

	_, err := svc.AddReaction(ctx, 1, AddReactionInput{ReactionBody: "", Username: "ana"})
	assertValidationError(t, err)
	_, err = svc.AddReaction(ctx, 1, AddReactionInput{ReactionBody: "lol"})
	assertValidationError(t, err)

	th, err := svc.AddReaction(ctx, 1, AddReactionInput{ReactionBody: "lol", Username: "ana"})
	require.NoError(t, err)
	th, err = svc.AddReaction(ctx, 1, AddReactionInput{ReactionBody: "lol", Username: "ana"})
	require.NoError(t, err)
	require.Len(t, th.Reactions, 1)
	assert.NotEmpty(t, th.Reactions[0].ReactionID)

	th, err = svc.RemoveReaction(ctx, 1, "missing")
	require.NoError(t, err)
	assert.Len(t, th.Reactions, 1)

	th, err = svc.RemoveReaction(ctx, 1, th.Reactions[0].ReactionID)
	require.NoError(t, err)
	assert.Empty(t, th.Reactions)

	assert.Equal(t, []string{notifications.EventReactionAdded, notifications.EventReactionRemoved}, events.types())

	_, err = NewThoughtService(noopThoughtRepo(), noopUserRepo(), nil).RemoveReaction(ctx, 9, "x")
	assert.True(t, models.IsNotFound(err))
}
