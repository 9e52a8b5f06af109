package mongostore

import (
	"context"
	"errors"
	"strings"

	"github.com/austinzumbro/nosql-social-api/internal/cache"
	"github.com/austinzumbro/nosql-social-api/internal/models"
	"github.com/austinzumbro/nosql-social-api/internal/observability"
	"github.com/austinzumbro/nosql-social-api/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type userStore struct {
	*Store
	log *observability.RepoLogger
}

func (s *userStore) List(ctx context.Context) (users []*models.User, err error) {
	ctx, end := startOp(ctx, usersCollection, "List")
	defer end(&err)

	cur, err := s.users().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	users = []*models.User{}
	if err = cur.All(ctx, &users); err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (s *userStore) GetByID(ctx context.Context, id uint) (user *models.User, err error) {
	ctx, end := startOp(ctx, usersCollection, "GetByID")
	defer end(&err)

	var u models.User
	err = cache.Aside(ctx, cache.UserKey(id), &u, cache.UserTTL, func() error {
		return s.users().FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	})
	if err != nil {
		return nil, wrapErr(err, "user", id)
	}
	return &u, nil
}

func (s *userStore) GetByUsername(ctx context.Context, username string) (user *models.User, err error) {
	ctx, end := startOp(ctx, usersCollection, "GetByUsername")
	defer end(&err)

	var u models.User
	if err = s.users().FindOne(ctx, bson.M{"username": strings.TrimSpace(username)}).Decode(&u); err != nil {
		return nil, wrapErr(err, "user", username)
	}
	return &u, nil
}

func (s *userStore) ListByIDs(ctx context.Context, ids []uint) (users []*models.User, err error) {
	ctx, end := startOp(ctx, usersCollection, "ListByIDs")
	defer end(&err)

	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	cur, err := s.users().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	var found []*models.User
	if err = cur.All(ctx, &found); err != nil {
		return nil, models.NewInternalError(err)
	}

	byID := make(map[uint]*models.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}
	users = make([]*models.User, 0, len(found))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			users = append(users, u)
			delete(byID, id)
		}
	}
	return users, nil
}

func (s *userStore) Create(ctx context.Context, user *models.User) (err error) {
	ctx, end := startOp(ctx, usersCollection, "Create")
	defer end(&err)

	id, err := s.nextID(ctx, usersCollection)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.ID = id
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	user.Thoughts, user.Friends = []uint{}, []uint{}

	if _, err = s.users().InsertOne(ctx, user); err != nil {
		s.log.LogError(ctx, err, "create")
		if mongo.IsDuplicateKeyError(err) {
			return models.NewValidationError("username '" + user.Username + "' is already taken")
		}
		return models.NewInternalError(err)
	}
	s.log.LogCreate(ctx, map[string]interface{}{"id": user.ID, "username": user.Username})
	return nil
}

func (s *userStore) Update(ctx context.Context, id uint, changes repository.UserChanges) (user *models.User, err error) {
	ctx, end := startOp(ctx, usersCollection, "Update")
	defer end(&err)

	var (
		u       models.User
		renamed []uint
	)
	err = s.withTransaction(ctx, func(ctx context.Context) error {
		renamed = nil
		if err := s.users().FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
			return err
		}

		set := bson.M{}
		rename := changes.Username != nil && *changes.Username != u.Username
		if rename {
			set["username"] = *changes.Username
		}
		if changes.Email != nil && *changes.Email != u.Email {
			set["email"] = *changes.Email
		}
		if len(set) == 0 {
			return nil
		}
		set["updatedAt"] = now()

		err := s.users().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
		if err != nil {
			return err
		}
		if !rename {
			return nil
		}

		filter := ownedThoughtsFilter(id, u.Thoughts)
		cur, err := s.thoughts().Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			return err
		}
		var docs []struct {
			ID uint `bson:"_id"`
		}
		if err := cur.All(ctx, &docs); err != nil {
			return err
		}
		for _, d := range docs {
			renamed = append(renamed, d.ID)
		}
		_, err = s.thoughts().UpdateMany(ctx, filter, bson.M{"$set": bson.M{"username": u.Username}})
		return err
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, models.NewValidationError("username '" + *changes.Username + "' is already taken")
		}
		s.log.LogError(ctx, err, "update")
		return nil, wrapErr(err, "user", id)
	}

	cache.InvalidateUsers(ctx, id)
	cache.InvalidateThoughts(ctx, renamed...)
	s.log.LogUpdate(ctx, map[string]interface{}{"id": id, "renamed_thoughts": len(renamed)})
	return &u, nil
}

func (s *userStore) Delete(ctx context.Context, id uint) (user *models.User, deleted []*models.Thought, err error) {
	ctx, end := startOp(ctx, usersCollection, "Delete")
	defer end(&err)

	var (
		u        models.User
		affected []uint
	)
	err = s.withTransaction(ctx, func(ctx context.Context) error {
		deleted = []*models.Thought{}
		affected = nil
		if err := s.users().FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
			return err
		}

		filter := ownedThoughtsFilter(id, u.Thoughts)
		cur, err := s.thoughts().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
		if err != nil {
			return err
		}
		if err := cur.All(ctx, &deleted); err != nil {
			return err
		}
		thoughtIDs := make([]uint, 0, len(deleted))
		for _, t := range deleted {
			thoughtIDs = append(thoughtIDs, t.ID)
		}

		refFilter := bson.M{"_id": bson.M{"$ne": id}, "$or": []bson.M{
			{"friends": id},
			{"thoughts": bson.M{"$in": thoughtIDs}},
		}}
		refCur, err := s.users().Find(ctx, refFilter, options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			return err
		}
		var refs []struct {
			ID uint `bson:"_id"`
		}
		if err := refCur.All(ctx, &refs); err != nil {
			return err
		}
		for _, r := range refs {
			affected = append(affected, r.ID)
		}

		if len(thoughtIDs) > 0 {
			if _, err := s.thoughts().DeleteMany(ctx, bson.M{"_id": bson.M{"$in": thoughtIDs}}); err != nil {
				return err
			}
		}
		if len(affected) > 0 {
			_, err = s.users().UpdateMany(ctx, bson.M{"_id": bson.M{"$in": affected}}, bson.M{
				"$pull": bson.M{
					"friends":  id,
					"thoughts": bson.M{"$in": thoughtIDs},
				},
			})
			if err != nil {
				return err
			}
		}
		_, err = s.users().DeleteOne(ctx, bson.M{"_id": id})
		return err
	})
	if err != nil {
		s.log.LogError(ctx, err, "delete")
		return nil, nil, wrapErr(err, "user", id)
	}

	cache.InvalidateUsers(ctx, append(affected, id)...)
	ids := make([]uint, 0, len(deleted))
	for _, t := range deleted {
		ids = append(ids, t.ID)
	}
	cache.InvalidateThoughts(ctx, ids...)
	s.log.LogDelete(ctx, map[string]interface{}{"id": id, "cascaded_thoughts": len(deleted)})
	return &u, deleted, nil
}

func (s *userStore) exists(ctx context.Context, id uint) (bool, error) {
	n, err := s.users().CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	return n > 0, err
}

func (s *userStore) AddFriend(ctx context.Context, userID, friendID uint) (user *models.User, err error) {
	ctx, end := startOp(ctx, usersCollection, "AddFriend")
	defer end(&err)

	var u models.User
	err = s.withTransaction(ctx, func(ctx context.Context) error {
		for _, id := range []uint{userID, friendID} {
			ok, err := s.exists(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return models.NewNotFoundError("user", id)
			}
		}
		return s.users().FindOneAndUpdate(ctx,
			bson.M{"_id": userID},
			bson.M{"$addToSet": bson.M{"friends": friendID}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&u)
	})
	if err != nil {
		return nil, wrapErr(err, "user", userID)
	}

	cache.InvalidateUsers(ctx, userID)
	s.log.LogUpdate(ctx, map[string]interface{}{"id": userID, "friend_added": friendID})
	return &u, nil
}

func (s *userStore) RemoveFriend(ctx context.Context, userID, friendID uint) (user *models.User, err error) {
	ctx, end := startOp(ctx, usersCollection, "RemoveFriend")
	defer end(&err)

	var u models.User
	err = s.users().FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"friends": friendID}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			s.log.LogError(ctx, err, "remove_friend")
		}
		return nil, wrapErr(err, "user", userID)
	}

	cache.InvalidateUsers(ctx, userID)
	s.log.LogUpdate(ctx, map[string]interface{}{"id": userID, "friend_removed": friendID})
	return &u, nil
}
