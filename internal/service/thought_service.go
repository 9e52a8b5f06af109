package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/austinzumbro/nosql-social-api/internal/models"
	"github.com/austinzumbro/nosql-social-api/internal/notifications"
	"github.com/austinzumbro/nosql-social-api/internal/observability"
	"github.com/austinzumbro/nosql-social-api/internal/repository"
)

// ThoughtService provides thought and reaction business logic.
type ThoughtService struct {
	thoughtRepo repository.ThoughtRepository
	userRepo    repository.UserRepository
	events      notifications.Publisher
}

type CreateThoughtInput struct {
	ThoughtText string
	Username    string
	UserID      *uint
}

// CreateThoughtResult carries the owner after the link, or nil for an orphan.
type CreateThoughtResult struct {
	Thought *models.Thought
	User    *models.User
}

// UpdateThoughtInput is a partial update; nil fields are left alone.
// UserID is accepted only to reject attempts to move a thought.
type UpdateThoughtInput struct {
	ThoughtText *string
	Username    *string
	UserID      *uint
}

type DeleteThoughtResult struct {
	Thought *models.Thought
	User    *models.User
}

type AddReactionInput struct {
	ReactionBody string
	Username     string
}

// NewThoughtService returns a new ThoughtService. events may be nil.
func NewThoughtService(
	thoughtRepo repository.ThoughtRepository,
	userRepo repository.UserRepository,
	events notifications.Publisher,
) *ThoughtService {
	return &ThoughtService{
		thoughtRepo: thoughtRepo,
		userRepo:    userRepo,
		events:      events,
	}
}

func (s *ThoughtService) ListThoughts(ctx context.Context) (thoughts []*models.Thought, err error) {
	ctx, end := begin(ctx, "thought", "list")
	defer end(&err)
	return s.thoughtRepo.List(ctx)
}

func (s *ThoughtService) GetThought(ctx context.Context, id uint) (thought *models.Thought, err error) {
	ctx, end := begin(ctx, "thought", "get")
	defer end(&err)
	return s.thoughtRepo.GetByID(ctx, id)
}

// CreateThought stores a thought and links it to its owner. The owner is the
// user named by UserID, else the user named by Username. When neither
// resolves the thought is stored without an owner.
func (s *ThoughtService) CreateThought(ctx context.Context, in CreateThoughtInput) (result *CreateThoughtResult, err error) {
	ctx, end := begin(ctx, "thought", "create")
	defer end(&err)

	if err := models.ValidateText("thoughtText", in.ThoughtText); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(in.Username)
	if username == "" && in.UserID == nil {
		return nil, models.NewValidationError("username is required")
	}
	if username != "" {
		if err := models.ValidateUsername(username); err != nil {
			return nil, err
		}
	}

	owner, err := s.resolveOwner(ctx, in.UserID, username)
	if err != nil {
		return nil, err
	}
	if owner == nil && username == "" {
		// an orphan has nothing but its username to name the author
		return nil, models.NewValidationError("username is required when userId does not match a user")
	}

	thought := &models.Thought{
		ThoughtText: in.ThoughtText,
		Username:    username,
		Reactions:   models.Reactions{},
	}
	if owner != nil {
		id := owner.ID
		thought.UserID = &id
		thought.Username = owner.Username
	}

	linked, err := s.thoughtRepo.Create(ctx, thought)
	if err != nil && owner != nil && models.IsNotFound(err) {
		// owner was deleted after resolution
		thought.UserID = nil
		linked, err = s.thoughtRepo.Create(ctx, thought)
	}
	if err != nil {
		return nil, err
	}
	if linked == nil {
		observability.OrphanedThoughts.Inc()
		observability.GlobalLogger.WarnContext(ctx, "thought stored without owner",
			slog.Uint64("thought_id", uint64(thought.ID)),
			slog.String("username", thought.Username),
		)
	}

	ev := notifications.Event{Type: notifications.EventThoughtCreated, ThoughtID: thought.ID}
	if linked != nil {
		ev.UserID = linked.ID
	}
	publish(ctx, s.events, ev)
	return &CreateThoughtResult{Thought: thought, User: linked}, nil
}

// resolveOwner returns nil, nil when no user matches.
func (s *ThoughtService) resolveOwner(ctx context.Context, userID *uint, username string) (*models.User, error) {
	if userID != nil {
		u, err := s.userRepo.GetByID(ctx, *userID)
		switch {
		case err == nil:
			return u, nil
		case !models.IsNotFound(err):
			return nil, err
		}
	}
	if username == "" {
		return nil, nil
	}
	u, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// UpdateThought edits thoughtText. The username of an owned thought follows
// its owner and cannot be set directly; orphans may be renamed.
func (s *ThoughtService) UpdateThought(ctx context.Context, id uint, in UpdateThoughtInput) (thought *models.Thought, err error) {
	ctx, end := begin(ctx, "thought", "update")
	defer end(&err)

	current, err := s.thoughtRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.UserID != nil && (current.UserID == nil || *current.UserID != *in.UserID) {
		return nil, models.NewValidationError("userId cannot be changed")
	}

	var changes repository.ThoughtChanges
	if in.ThoughtText != nil {
		if err := models.ValidateText("thoughtText", *in.ThoughtText); err != nil {
			return nil, err
		}
		changes.ThoughtText = in.ThoughtText
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := models.ValidateUsername(username); err != nil {
			return nil, err
		}
		if username != current.Username {
			if current.UserID != nil {
				return nil, models.NewValidationError("username of an owned thought follows its user")
			}
			changes.Username = &username
		}
	}
	if changes.ThoughtText == nil && changes.Username == nil {
		return current, nil
	}

	thought, err = s.thoughtRepo.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, notifications.Event{Type: notifications.EventThoughtUpdated, ThoughtID: id})
	return thought, nil
}

// DeleteThought removes the thought and unlinks it from its owner.
func (s *ThoughtService) DeleteThought(ctx context.Context, id uint) (result *DeleteThoughtResult, err error) {
	ctx, end := begin(ctx, "thought", "delete")
	defer end(&err)

	thought, owner, err := s.thoughtRepo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	ev := notifications.Event{Type: notifications.EventThoughtDeleted, ThoughtID: id}
	if owner != nil {
		ev.UserID = owner.ID
	}
	publish(ctx, s.events, ev)
	return &DeleteThoughtResult{Thought: thought, User: owner}, nil
}

// AddReaction appends a reaction unless one with the same body and username exists.
func (s *ThoughtService) AddReaction(ctx context.Context, thoughtID uint, in AddReactionInput) (thought *models.Thought, err error) {
	ctx, end := begin(ctx, "reaction", "add")
	defer end(&err)

	r := models.NewReaction(in.ReactionBody, strings.TrimSpace(in.Username))
	if err := r.Validate(); err != nil {
		return nil, err
	}

	thought, added, err := s.thoughtRepo.AddReaction(ctx, thoughtID, r)
	if err != nil {
		return nil, err
	}
	if added {
		publish(ctx, s.events, notifications.Event{
			Type:       notifications.EventReactionAdded,
			ThoughtID:  thoughtID,
			ReactionID: r.ReactionID,
		})
	}
	return thought, nil
}

// RemoveReaction drops the reaction with reactionID. Unknown IDs are a no-op.
func (s *ThoughtService) RemoveReaction(ctx context.Context, thoughtID uint, reactionID string) (thought *models.Thought, err error) {
	ctx, end := begin(ctx, "reaction", "remove")
	defer end(&err)

	thought, removed, err := s.thoughtRepo.RemoveReaction(ctx, thoughtID, reactionID)
	if err != nil {
		return nil, err
	}
	if removed {
		publish(ctx, s.events, notifications.Event{
			Type:       notifications.EventReactionRemoved,
			ThoughtID:  thoughtID,
			ReactionID: reactionID,
		})
	}
	return thought, nil
}
