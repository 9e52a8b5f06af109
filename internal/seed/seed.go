// Package seed loads sample users, thoughts, reactions and friendships through
// the service layer, so seeded data obeys the same ownership rules as API writes.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/austinzumbro/nosql-social-api/internal/models"
	"github.com/austinzumbro/nosql-social-api/internal/observability"
	"github.com/austinzumbro/nosql-social-api/internal/repository"
	"github.com/austinzumbro/nosql-social-api/internal/service"
)

// Options configuration for the seeder
type Options struct {
	// Clean wipes every user and thought first.
	Clean bool
	// ExtraUsers adds generated users on top of the fixtures.
	ExtraUsers int
	// ThoughtsPerUser is the number of thoughts each generated user writes.
	ThoughtsPerUser int
	// Seed makes generated data reproducible. Zero is random.
	Seed int64
}

// Summary counts what a run created.
type Summary struct {
	Users     int
	Thoughts  int
	Reactions int
	Friends   int
}

// Seeder writes sample data through the services.
type Seeder struct {
	users       *service.UserService
	thoughts    *service.ThoughtService
	maintenance repository.MaintenanceRepository
}

// NewSeeder returns a Seeder.
func NewSeeder(users *service.UserService, thoughts *service.ThoughtService, maintenance repository.MaintenanceRepository) *Seeder {
	return &Seeder{users: users, thoughts: thoughts, maintenance: maintenance}
}

// Run loads the embedded fixtures, then any generated extras.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	fixtures, err := LoadFixtures()
	if err != nil {
		return nil, err
	}

	if opts.ExtraUsers > 0 {
		f := NewFactory(opts.Seed)
		existing := make([]string, 0, len(fixtures.Users)+opts.ExtraUsers)
		for _, u := range fixtures.Users {
			existing = append(existing, u.Username)
		}
		for i := 0; i < opts.ExtraUsers; i++ {
			u := f.User()
			fixtures.Users = append(fixtures.Users, u)
			existing = append(existing, u.Username)
			for j := 0; j < opts.ThoughtsPerUser; j++ {
				th := f.Thought(u.Username)
				th.Reactions = append(th.Reactions, f.Reaction(f.Pick(existing)))
				fixtures.Thoughts = append(fixtures.Thoughts, th)
			}
			fixtures.Friends = append(fixtures.Friends, FriendFixture{User: u.Username, Friend: f.Pick(existing)})
		}
	}

	return s.Apply(ctx, fixtures, opts.Clean)
}

// Apply writes fixtures. Thoughts are linked to their owners by username.
func (s *Seeder) Apply(ctx context.Context, fixtures *Fixtures, clean bool) (*Summary, error) {
	if clean {
		if err := s.maintenance.Reset(ctx); err != nil {
			return nil, fmt.Errorf("reset: %w", err)
		}
	}

	sum := &Summary{}
	ids := make(map[string]uint, len(fixtures.Users))
	for _, uf := range fixtures.Users {
		u, err := s.users.CreateUser(ctx, service.CreateUserInput{Username: uf.Username, Email: uf.Email})
		if err != nil {
			return sum, fmt.Errorf("create user %q: %w", uf.Username, err)
		}
		ids[u.Username] = u.ID
		sum.Users++
	}

	for _, tf := range fixtures.Thoughts {
		res, err := s.thoughts.CreateThought(ctx, service.CreateThoughtInput{
			ThoughtText: tf.ThoughtText,
			Username:    tf.Username,
		})
		if err != nil {
			return sum, fmt.Errorf("create thought for %q: %w", tf.Username, err)
		}
		sum.Thoughts++

		for _, rf := range tf.Reactions {
			if _, err := s.thoughts.AddReaction(ctx, res.Thought.ID, service.AddReactionInput{
				ReactionBody: rf.ReactionBody,
				Username:     rf.Username,
			}); err != nil {
				return sum, fmt.Errorf("add reaction to thought %d: %w", res.Thought.ID, err)
			}
			sum.Reactions++
		}
	}

	for _, ff := range fixtures.Friends {
		userID, ok := ids[ff.User]
		friendID, ok2 := ids[ff.Friend]
		if !ok || !ok2 {
			return sum, models.NewValidationError(fmt.Sprintf("friend fixture %s -> %s names an unknown user", ff.User, ff.Friend))
		}
		if _, err := s.users.AddFriend(ctx, userID, friendID); err != nil {
			return sum, fmt.Errorf("add friend %s -> %s: %w", ff.User, ff.Friend, err)
		}
		sum.Friends++
	}

	observability.GlobalLogger.InfoContext(ctx, "seed complete",
		slog.Int("users", sum.Users),
		slog.Int("thoughts", sum.Thoughts),
		slog.Int("reactions", sum.Reactions),
		slog.Int("friends", sum.Friends),
	)
	return sum, nil
}
