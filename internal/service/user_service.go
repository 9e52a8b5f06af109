package service

import (
	"context"
	"strings"

	"github.com/austinzumbro/nosql-social-api/internal/featureflags"
	"github.com/austinzumbro/nosql-social-api/internal/models"
	"github.com/austinzumbro/nosql-social-api/internal/notifications"
	"github.com/austinzumbro/nosql-social-api/internal/repository"
)

// UserService provides user and friend business logic.
type UserService struct {
	userRepo    repository.UserRepository
	thoughtRepo repository.ThoughtRepository
	events      notifications.Publisher
	flags       *featureflags.Manager
}

type CreateUserInput struct {
	Username string
	Email    string
}

// UpdateUserInput is a partial update; nil fields are left alone.
type UpdateUserInput struct {
	Username *string
	Email    *string
}

// DeleteUserResult is the deleted user plus every thought removed with it.
type DeleteUserResult struct {
	User     *models.User
	Thoughts []*models.Thought
}

// NewUserService returns a new UserService. events and flags may be nil.
func NewUserService(
	userRepo repository.UserRepository,
	thoughtRepo repository.ThoughtRepository,
	events notifications.Publisher,
	flags *featureflags.Manager,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		thoughtRepo: thoughtRepo,
		events:      events,
		flags:       flags,
	}
}

func (s *UserService) ListUsers(ctx context.Context) (users []*models.User, err error) {
	ctx, end := begin(ctx, "user", "list")
	defer end(&err)
	return s.userRepo.List(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id uint) (user *models.User, err error) {
	ctx, end := begin(ctx, "user", "get")
	defer end(&err)
	return s.userRepo.GetByID(ctx, id)
}

// ShouldExpand decides whether GetUser responses resolve the ID sets.
// An explicit request choice wins over the expand_users flag.
func (s *UserService) ShouldExpand(userID uint, requested *bool) bool {
	if requested != nil {
		return *requested
	}
	return s.flags.Enabled(featureflags.ExpandUsers, userID)
}

// GetExpandedUser returns the user with its thoughts and friends resolved
// into documents. IDs that no longer resolve are skipped.
func (s *UserService) GetExpandedUser(ctx context.Context, id uint) (expanded *models.ExpandedUser, err error) {
	ctx, end := begin(ctx, "user", "get_expanded")
	defer end(&err)

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	thoughts, err := s.thoughtRepo.ListByIDs(ctx, user.Thoughts)
	if err != nil {
		return nil, err
	}
	friends, err := s.userRepo.ListByIDs(ctx, user.Friends)
	if err != nil {
		return nil, err
	}
	return &models.ExpandedUser{User: *user, Thoughts: thoughts, Friends: friends}, nil
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (user *models.User, err error) {
	ctx, end := begin(ctx, "user", "create")
	defer end(&err)

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if err := models.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := models.ValidateEmail(email); err != nil {
		return nil, err
	}

	user = &models.User{
		Username: username,
		Email:    email,
		Thoughts: []uint{},
		Friends:  []uint{},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	publish(ctx, s.events, notifications.Event{Type: notifications.EventUserCreated, UserID: user.ID})
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (user *models.User, err error) {
	ctx, end := begin(ctx, "user", "update")
	defer end(&err)

	var changes repository.UserChanges
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := models.ValidateUsername(username); err != nil {
			return nil, err
		}
		changes.Username = &username
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if err := models.ValidateEmail(email); err != nil {
			return nil, err
		}
		changes.Email = &email
	}
	if changes.Username == nil && changes.Email == nil {
		return s.userRepo.GetByID(ctx, id)
	}

	user, err = s.userRepo.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, notifications.Event{Type: notifications.EventUserUpdated, UserID: id})
	return user, nil
}

// DeleteUser removes the user and cascades to every thought it owns.
func (s *UserService) DeleteUser(ctx context.Context, id uint) (result *DeleteUserResult, err error) {
	ctx, end := begin(ctx, "user", "delete")
	defer end(&err)

	user, thoughts, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if thoughts == nil {
		thoughts = []*models.Thought{}
	}

	publish(ctx, s.events, notifications.Event{
		Type:   notifications.EventUserDeleted,
		UserID: id,
		Data:   map[string]any{"deletedThoughtCount": len(thoughts)},
	})
	return &DeleteUserResult{User: user, Thoughts: thoughts}, nil
}

// AddFriend adds friendID to the user's friends set. Only the initiating
// user's set changes.
func (s *UserService) AddFriend(ctx context.Context, userID, friendID uint) (user *models.User, err error) {
	ctx, end := begin(ctx, "user", "add_friend")
	defer end(&err)

	user, err = s.userRepo.AddFriend(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, notifications.Event{Type: notifications.EventFriendAdded, UserID: userID, FriendID: friendID})
	return user, nil
}

// RemoveFriend drops friendID from the user's friends set. Absent IDs are a no-op.
func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID uint) (user *models.User, err error) {
	ctx, end := begin(ctx, "user", "remove_friend")
	defer end(&err)

	user, err = s.userRepo.RemoveFriend(ctx, userID, friendID)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, notifications.Event{Type: notifications.EventFriendRemoved, UserID: userID, FriendID: friendID})
	return user, nil
}
