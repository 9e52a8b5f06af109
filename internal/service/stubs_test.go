package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/austinzumbro/nosql-social-api/internal/models"
	"github.com/austinzumbro/nosql-social-api/internal/notifications"
	"github.com/austinzumbro/nosql-social-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	listFn          func(context.Context) ([]*models.User, error)
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	listByIDsFn     func(context.Context, []uint) ([]*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, uint, repository.UserChanges) (*models.User, error)
	deleteFn        func(context.Context, uint) (*models.User, []*models.Thought, error)
	addFriendFn     func(context.Context, uint, uint) (*models.User, error)
	removeFriendFn  func(context.Context, uint, uint) (*models.User, error)
}

func (s *userRepoStub) List(ctx context.Context) ([]*models.User, error) { return s.listFn(ctx) }
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) ListByIDs(ctx context.Context, ids []uint) ([]*models.User, error) {
	return s.listByIDsFn(ctx, ids)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, id uint, changes repository.UserChanges) (*models.User, error) {
	return s.updateFn(ctx, id, changes)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) (*models.User, []*models.Thought, error) {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) AddFriend(ctx context.Context, userID, friendID uint) (*models.User, error) {
	return s.addFriendFn(ctx, userID, friendID)
}
func (s *userRepoStub) RemoveFriend(ctx context.Context, userID, friendID uint) (*models.User, error) {
	return s.removeFriendFn(ctx, userID, friendID)
}

func noopUserRepo() *userRepoStub {
	notFound := func(id uint) error { return models.NewNotFoundError("user", id) }
	return &userRepoStub{
		listFn:    func(context.Context) ([]*models.User, error) { return nil, nil },
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) { return nil, notFound(id) },
		getByUsernameFn: func(_ context.Context, name string) (*models.User, error) {
			return nil, models.NewNotFoundError("user", name)
		},
		listByIDsFn: func(context.Context, []uint) ([]*models.User, error) { return nil, nil },
		createFn:    func(context.Context, *models.User) error { return nil },
		updateFn: func(_ context.Context, id uint, _ repository.UserChanges) (*models.User, error) {
			return nil, notFound(id)
		},
		deleteFn: func(_ context.Context, id uint) (*models.User, []*models.Thought, error) {
			return nil, nil, notFound(id)
		},
		addFriendFn:    func(_ context.Context, id, _ uint) (*models.User, error) { return nil, notFound(id) },
		removeFriendFn: func(_ context.Context, id, _ uint) (*models.User, error) { return nil, notFound(id) },
	}
}

// thoughtRepoStub is a stub for repository.ThoughtRepository.
type thoughtRepoStub struct {
	listFn           func(context.Context) ([]*models.Thought, error)
	getByIDFn        func(context.Context, uint) (*models.Thought, error)
	listByIDsFn      func(context.Context, []uint) ([]*models.Thought, error)
	createFn         func(context.Context, *models.Thought) (*models.User, error)
	updateFn         func(context.Context, uint, repository.ThoughtChanges) (*models.Thought, error)
	deleteFn         func(context.Context, uint) (*models.Thought, *models.User, error)
	addReactionFn    func(context.Context, uint, models.Reaction) (*models.Thought, bool, error)
	removeReactionFn func(context.Context, uint, string) (*models.Thought, bool, error)
}

func (s *thoughtRepoStub) List(ctx context.Context) ([]*models.Thought, error) { return s.listFn(ctx) }
func (s *thoughtRepoStub) GetByID(ctx context.Context, id uint) (*models.Thought, error) {
	return s.getByIDFn(ctx, id)
}
func (s *thoughtRepoStub) ListByIDs(ctx context.Context, ids []uint) ([]*models.Thought, error) {
	return s.listByIDsFn(ctx, ids)
}
func (s *thoughtRepoStub) Create(ctx context.Context, thought *models.Thought) (*models.User, error) {
	return s.createFn(ctx, thought)
}
func (s *thoughtRepoStub) Update(ctx context.Context, id uint, changes repository.ThoughtChanges) (*models.Thought, error) {
	return s.updateFn(ctx, id, changes)
}
func (s *thoughtRepoStub) Delete(ctx context.Context, id uint) (*models.Thought, *models.User, error) {
	return s.deleteFn(ctx, id)
}
func (s *thoughtRepoStub) AddReaction(ctx context.Context, id uint, r models.Reaction) (*models.Thought, bool, error) {
	return s.addReactionFn(ctx, id, r)
}
func (s *thoughtRepoStub) RemoveReaction(ctx context.Context, id uint, reactionID string) (*models.Thought, bool, error) {
	return s.removeReactionFn(ctx, id, reactionID)
}

func noopThoughtRepo() *thoughtRepoStub {
	notFound := func(id uint) error { return models.NewNotFoundError("thought", id) }
	return &thoughtRepoStub{
		listFn:      func(context.Context) ([]*models.Thought, error) { return nil, nil },
		getByIDFn:   func(_ context.Context, id uint) (*models.Thought, error) { return nil, notFound(id) },
		listByIDsFn: func(context.Context, []uint) ([]*models.Thought, error) { return nil, nil },
		createFn:    func(context.Context, *models.Thought) (*models.User, error) { return nil, nil },
		updateFn: func(_ context.Context, id uint, _ repository.ThoughtChanges) (*models.Thought, error) {
			return nil, notFound(id)
		},
		deleteFn: func(_ context.Context, id uint) (*models.Thought, *models.User, error) {
			return nil, nil, notFound(id)
		},
		addReactionFn: func(_ context.Context, id uint, _ models.Reaction) (*models.Thought, bool, error) {
			return nil, false, notFound(id)
		},
		removeReactionFn: func(_ context.Context, id uint, _ string) (*models.Thought, bool, error) {
			return nil, false, notFound(id)
		},
	}
}

// eventRecorder collects published events.
type eventRecorder struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (r *eventRecorder) Publish(_ context.Context, ev notifications.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func ptr[T any](v T) *T { return &v }
