package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/austinzumbro/nosql-social-api/internal/cache"
	"github.com/austinzumbro/nosql-social-api/internal/models"
	"github.com/austinzumbro/nosql-social-api/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository implements UserRepository on gorm.
type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) List(ctx context.Context) (users []*models.User, err error) {
	ctx, end := startOp(ctx, r.db, "users", "List")
	defer end(&err)

	db := r.db.WithContext(ctx)
	if err = db.Order("id").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err = attachUserSets(db, users...); err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (user *models.User, err error) {
	ctx, end := startOp(ctx, r.db, "users", "GetByID")
	defer end(&err)

	var u models.User
	err = cache.Aside(ctx, cache.UserKey(id), &u, cache.UserTTL, func() error {
		db := r.db.WithContext(ctx)
		if err := db.First(&u, id).Error; err != nil {
			return wrapErr(err, "user", id)
		}
		return attachUserSets(db, &u)
	})
	if err != nil {
		return nil, wrapErr(err, "user", id)
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (user *models.User, err error) {
	ctx, end := startOp(ctx, r.db, "users", "GetByUsername")
	defer end(&err)

	db := r.db.WithContext(ctx)
	var u models.User
	if err = db.Where("username = ?", strings.TrimSpace(username)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user", username)
		}
		return nil, models.NewInternalError(err)
	}
	if err = attachUserSets(db, &u); err != nil {
		return nil, models.NewInternalError(err)
	}
	return &u, nil
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []uint) (users []*models.User, err error) {
	ctx, end := startOp(ctx, r.db, "users", "ListByIDs")
	defer end(&err)

	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	db := r.db.WithContext(ctx)
	var found []*models.User
	if err = db.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err = attachUserSets(db, found...); err != nil {
		return nil, models.NewInternalError(err)
	}
	return orderUsers(found, ids), nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, end := startOp(ctx, r.db, "users", "Create")
	defer end(&err)

	user.Thoughts, user.Friends = []uint{}, []uint{}
	if err = r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		if IsUniqueViolation(err) {
			return usernameTaken(user.Username)
		}
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"id": user.ID, "username": user.Username})
	return nil
}

func (r *userRepository) Update(ctx context.Context, id uint, changes UserChanges) (user *models.User, err error) {
	ctx, end := startOp(ctx, r.db, "users", "Update")
	defer end(&err)

	var (
		u        models.User
		renamed  []uint
		newName  string
		isRename bool
	)
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&u, id).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if changes.Username != nil && *changes.Username != u.Username {
			newName = *changes.Username
			isRename = true
			updates["username"] = newName
		}
		if changes.Email != nil && *changes.Email != u.Email {
			updates["email"] = *changes.Email
		}
		if len(updates) > 0 {
			if err := tx.Model(&u).Updates(updates).Error; err != nil {
				return err
			}
			if v, ok := updates["email"].(string); ok {
				u.Email = v
			}
		}

		if isRename {
			u.Username = newName
			owned := tx.Model(&models.Thought{}).
				Where("user_id = ? OR id IN (?)", id,
					tx.Model(&models.UserThought{}).Select("thought_id").Where("user_id = ?", id))
			if err := owned.Pluck("id", &renamed).Error; err != nil {
				return err
			}
			if len(renamed) > 0 {
				if err := tx.Model(&models.Thought{}).Where("id IN ?", renamed).
					Update("username", newName).Error; err != nil {
					return err
				}
			}
		}
		return attachUserSets(tx, &u)
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, usernameTaken(newName)
		}
		r.log.LogError(ctx, err, "update")
		return nil, wrapErr(err, "user", id)
	}

	cache.InvalidateUsers(ctx, id)
	cache.InvalidateThoughts(ctx, renamed...)
	r.log.LogUpdate(ctx, map[string]interface{}{"id": id, "renamed_thoughts": len(renamed)})
	return &u, nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) (user *models.User, deleted []*models.Thought, err error) {
	ctx, end := startOp(ctx, r.db, "users", "Delete")
	defer end(&err)

	var (
		u        models.User
		affected []uint
	)
	deleted = []*models.Thought{}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, id).Error; err != nil {
			return err
		}
		if err := attachUserSets(tx, &u); err != nil {
			return err
		}

		owned := tx.Model(&models.UserThought{}).Select("thought_id").Where("user_id = ?", id)
		if err := tx.Where("user_id = ? OR id IN (?)", id, owned).Order("id").Find(&deleted).Error; err != nil {
			return err
		}
		thoughtIDs := make([]uint, 0, len(deleted))
		for _, t := range deleted {
			thoughtIDs = append(thoughtIDs, t.ID)
		}

		// Users whose cached sets mention this user or its thoughts.
		var followers, linkers []uint
		if err := tx.Model(&models.UserFriend{}).Where("friend_id = ? AND user_id <> ?", id, id).
			Pluck("user_id", &followers).Error; err != nil {
			return err
		}
		if len(thoughtIDs) > 0 {
			if err := tx.Model(&models.UserThought{}).Where("thought_id IN ? AND user_id <> ?", thoughtIDs, id).
				Pluck("user_id", &linkers).Error; err != nil {
				return err
			}
			if err := tx.Where("thought_id IN ?", thoughtIDs).Delete(&models.UserThought{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Thought{}, thoughtIDs).Error; err != nil {
				return err
			}
		}
		affected = models.UniqueIDs(followers, linkers)

		if err := tx.Where("user_id = ?", id).Delete(&models.UserThought{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? OR friend_id = ?", id, id).Delete(&models.UserFriend{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return nil, nil, wrapErr(err, "user", id)
	}

	cache.InvalidateUsers(ctx, append(affected, id)...)
	thoughtIDs := make([]uint, 0, len(deleted))
	for _, t := range deleted {
		thoughtIDs = append(thoughtIDs, t.ID)
	}
	cache.InvalidateThoughts(ctx, thoughtIDs...)

	r.log.LogDelete(ctx, map[string]interface{}{"id": id, "cascaded_thoughts": len(deleted)})
	return &u, deleted, nil
}

func (r *userRepository) AddFriend(ctx context.Context, userID, friendID uint) (user *models.User, err error) {
	ctx, end := startOp(ctx, r.db, "user_friends", "AddFriend")
	defer end(&err)

	var u models.User
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, userID).Error; err != nil {
			return wrapErr(err, "user", userID)
		}
		var n int64
		if err := tx.Model(&models.User{}).Where("id = ?", friendID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return models.NewNotFoundError("user", friendID)
		}
		link := models.UserFriend{UserID: userID, FriendID: friendID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
			return err
		}
		return attachUserSets(tx, &u)
	})
	if err != nil {
		return nil, wrapErr(err, "user", userID)
	}

	cache.InvalidateUsers(ctx, userID)
	r.log.LogUpdate(ctx, map[string]interface{}{"id": userID, "friend_added": friendID})
	return &u, nil
}

func (r *userRepository) RemoveFriend(ctx context.Context, userID, friendID uint) (user *models.User, err error) {
	ctx, end := startOp(ctx, r.db, "user_friends", "RemoveFriend")
	defer end(&err)

	var u models.User
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, userID).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND friend_id = ?", userID, friendID).
			Delete(&models.UserFriend{}).Error; err != nil {
			return err
		}
		return attachUserSets(tx, &u)
	})
	if err != nil {
		return nil, wrapErr(err, "user", userID)
	}

	cache.InvalidateUsers(ctx, userID)
	r.log.LogUpdate(ctx, map[string]interface{}{"id": userID, "friend_removed": friendID})
	return &u, nil
}

// orderUsers returns found in the order of ids, skipping ids that did not resolve.
func orderUsers(found []*models.User, ids []uint) []*models.User {
	byID := make(map[uint]*models.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}
	out := make([]*models.User, 0, len(found))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
			delete(byID, id)
		}
	}
	return out
}
