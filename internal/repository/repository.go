// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"github.com/austinzumbro/nosql-social-api/internal/models"
)

// UserChanges is a partial update of a user. Nil fields are left alone.
type UserChanges struct {
	Username *string
	Email    *string
}

// ThoughtChanges is a partial update of a thought. Nil fields are left alone.
type ThoughtChanges struct {
	ThoughtText *string
	Username    *string
}

// UserRepository defines the interface for user data operations.
// Returned users carry their thoughts and friends ID sets.
type UserRepository interface {
	List(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ListByIDs(ctx context.Context, ids []uint) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) error
	// Update applies changes and copies a new username onto every owned thought.
	Update(ctx context.Context, id uint, changes UserChanges) (*models.User, error)
	// Delete removes the user, every thought it owns, and every reference to it.
	Delete(ctx context.Context, id uint) (*models.User, []*models.Thought, error)
	AddFriend(ctx context.Context, userID, friendID uint) (*models.User, error)
	RemoveFriend(ctx context.Context, userID, friendID uint) (*models.User, error)
}

// ThoughtRepository defines the interface for thought and embedded reaction operations.
type ThoughtRepository interface {
	List(ctx context.Context) ([]*models.Thought, error)
	GetByID(ctx context.Context, id uint) (*models.Thought, error)
	ListByIDs(ctx context.Context, ids []uint) ([]*models.Thought, error)
	// Create stores the thought and, when UserID is set, adds it to the owner's
	// thoughts set in the same unit of work. It returns the updated owner or nil.
	Create(ctx context.Context, thought *models.Thought) (*models.User, error)
	Update(ctx context.Context, id uint, changes ThoughtChanges) (*models.Thought, error)
	// Delete removes the thought and its set memberships. It returns the deleted
	// thought and its owner after the unlink (nil for orphans).
	Delete(ctx context.Context, id uint) (*models.Thought, *models.User, error)
	// AddReaction appends r unless an identical payload exists. The bool reports
	// whether the reactions changed.
	AddReaction(ctx context.Context, thoughtID uint, r models.Reaction) (*models.Thought, bool, error)
	RemoveReaction(ctx context.Context, thoughtID uint, reactionID string) (*models.Thought, bool, error)
}

// MaintenanceRepository covers store-wide operations used by health checks and seeding.
type MaintenanceRepository interface {
	Ping(ctx context.Context) error
	// Reset deletes every user, thought and link.
	Reset(ctx context.Context) error
}
