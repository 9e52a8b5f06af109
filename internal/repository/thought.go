package repository

import (
	"context"
	"errors"

	"github.com/austinzumbro/nosql-social-api/internal/cache"
	"github.com/austinzumbro/nosql-social-api/internal/models"
	"github.com/austinzumbro/nosql-social-api/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// thoughtRepository implements ThoughtRepository on gorm. Reactions live in a
// JSON column of the thought row.
type thoughtRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewThoughtRepository creates a new thought repository
func NewThoughtRepository(db *gorm.DB) ThoughtRepository {
	return &thoughtRepository{db: db, log: observability.NewRepoLogger("thoughts")}
}

func (r *thoughtRepository) List(ctx context.Context) (thoughts []*models.Thought, err error) {
	ctx, end := startOp(ctx, r.db, "thoughts", "List")
	defer end(&err)

	if err = r.db.WithContext(ctx).Order("id").Find(&thoughts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return thoughts, nil
}

func (r *thoughtRepository) GetByID(ctx context.Context, id uint) (thought *models.Thought, err error) {
	ctx, end := startOp(ctx, r.db, "thoughts", "GetByID")
	defer end(&err)

	var t models.Thought
	err = cache.Aside(ctx, cache.ThoughtKey(id), &t, cache.ThoughtTTL, func() error {
		return r.db.WithContext(ctx).First(&t, id).Error
	})
	if err != nil {
		return nil, wrapErr(err, "thought", id)
	}
	return &t, nil
}

func (r *thoughtRepository) ListByIDs(ctx context.Context, ids []uint) (thoughts []*models.Thought, err error) {
	ctx, end := startOp(ctx, r.db, "thoughts", "ListByIDs")
	defer end(&err)

	if len(ids) == 0 {
		return []*models.Thought{}, nil
	}
	var found []*models.Thought
	if err = r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	byID := make(map[uint]*models.Thought, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	thoughts = make([]*models.Thought, 0, len(found))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			thoughts = append(thoughts, t)
			delete(byID, id)
		}
	}
	return thoughts, nil
}

func (r *thoughtRepository) Create(ctx context.Context, thought *models.Thought) (owner *models.User, err error) {
	ctx, end := startOp(ctx, r.db, "thoughts", "Create")
	defer end(&err)

	if thought.Reactions == nil {
		thought.Reactions = models.Reactions{}
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if thought.UserID != nil {
			var u models.User
			if err := tx.First(&u, *thought.UserID).Error; err != nil {
				return wrapErr(err, "user", *thought.UserID)
			}
			owner = &u
		}

		if err := tx.Create(thought).Error; err != nil {
			return err
		}
		if owner == nil {
			return nil
		}

		link := models.UserThought{UserID: owner.ID, ThoughtID: thought.ID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return err
		}
		return attachUserSets(tx, owner)
	})
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return nil, wrapErr(err, "thought", thought.ID)
	}

	if owner != nil {
		cache.InvalidateUsers(ctx, owner.ID)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"id": thought.ID, "owner": thought.UserID})
	return owner, nil
}

func (r *thoughtRepository) Update(ctx context.Context, id uint, changes ThoughtChanges) (thought *models.Thought, err error) {
	ctx, end := startOp(ctx, r.db, "thoughts", "Update")
	defer end(&err)

	var t models.Thought
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, id).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if changes.ThoughtText != nil && *changes.ThoughtText != t.ThoughtText {
			updates["thought_text"] = *changes.ThoughtText
			t.ThoughtText = *changes.ThoughtText
		}
		if changes.Username != nil && *changes.Username != t.Username {
			updates["username"] = *changes.Username
			t.Username = *changes.Username
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&t).Updates(updates).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return nil, wrapErr(err, "thought", id)
	}

	cache.InvalidateThoughts(ctx, id)
	r.log.LogUpdate(ctx, map[string]interface{}{"id": id})
	return &t, nil
}

func (r *thoughtRepository) Delete(ctx context.Context, id uint) (thought *models.Thought, owner *models.User, err error) {
	ctx, end := startOp(ctx, r.db, "thoughts", "Delete")
	defer end(&err)

	var (
		t       models.Thought
		linkers []uint
	)
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.UserThought{}).Where("thought_id = ?", id).
			Pluck("user_id", &linkers).Error; err != nil {
			return err
		}
		if err := tx.Where("thought_id = ?", id).Delete(&models.UserThought{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Thought{}, id).Error; err != nil {
			return err
		}

		if t.UserID == nil {
			return nil
		}
		var u models.User
		if err := tx.First(&u, *t.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		owner = &u
		return attachUserSets(tx, owner)
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return nil, nil, wrapErr(err, "thought", id)
	}

	cache.InvalidateThoughts(ctx, id)
	if t.UserID != nil {
		linkers = append(linkers, *t.UserID)
	}
	cache.InvalidateUsers(ctx, models.UniqueIDs(linkers)...)
	r.log.LogDelete(ctx, map[string]interface{}{"id": id})
	return &t, owner, nil
}

func (r *thoughtRepository) AddReaction(ctx context.Context, thoughtID uint, reaction models.Reaction) (thought *models.Thought, added bool, err error) {
	ctx, end := startOp(ctx, r.db, "thoughts", "AddReaction")
	defer end(&err)

	var t models.Thought
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, thoughtID).Error; err != nil {
			return err
		}
		if added = t.AddReaction(reaction); !added {
			return nil
		}
		return tx.Model(&t).Update("reactions", t.Reactions).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "add_reaction")
		return nil, false, wrapErr(err, "thought", thoughtID)
	}

	if added {
		cache.InvalidateThoughts(ctx, thoughtID)
		r.log.LogUpdate(ctx, map[string]interface{}{"id": thoughtID, "reaction_added": reaction.ReactionID})
	}
	return &t, added, nil
}

func (r *thoughtRepository) RemoveReaction(ctx context.Context, thoughtID uint, reactionID string) (thought *models.Thought, removed bool, err error) {
	ctx, end := startOp(ctx, r.db, "thoughts", "RemoveReaction")
	defer end(&err)

	var t models.Thought
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, thoughtID).Error; err != nil {
			return err
		}
		if removed = t.RemoveReaction(reactionID); !removed {
			return nil
		}
		return tx.Model(&t).Update("reactions", t.Reactions).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "remove_reaction")
		return nil, false, wrapErr(err, "thought", thoughtID)
	}

	if removed {
		cache.InvalidateThoughts(ctx, thoughtID)
		r.log.LogUpdate(ctx, map[string]interface{}{"id": thoughtID, "reaction_removed": reactionID})
	}
	return &t, removed, nil
}
