package mongostore

import (
	"context"
	"errors"

	"github.com/austinzumbro/nosql-social-api/internal/cache"
	"github.com/austinzumbro/nosql-social-api/internal/models"
	"github.com/austinzumbro/nosql-social-api/internal/observability"
	"github.com/austinzumbro/nosql-social-api/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type thoughtStore struct {
	*Store
	log *observability.RepoLogger
}

func (s *thoughtStore) List(ctx context.Context) (thoughts []*models.Thought, err error) {
	ctx, end := startOp(ctx, thoughtsCollection, "List")
	defer end(&err)

	cur, err := s.thoughts().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	thoughts = []*models.Thought{}
	if err = cur.All(ctx, &thoughts); err != nil {
		return nil, models.NewInternalError(err)
	}
	return thoughts, nil
}

func (s *thoughtStore) GetByID(ctx context.Context, id uint) (thought *models.Thought, err error) {
	ctx, end := startOp(ctx, thoughtsCollection, "GetByID")
	defer end(&err)

	var t models.Thought
	err = cache.Aside(ctx, cache.ThoughtKey(id), &t, cache.ThoughtTTL, func() error {
		return s.thoughts().FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	})
	if err != nil {
		return nil, wrapErr(err, "thought", id)
	}
	return &t, nil
}

func (s *thoughtStore) ListByIDs(ctx context.Context, ids []uint) (thoughts []*models.Thought, err error) {
	ctx, end := startOp(ctx, thoughtsCollection, "ListByIDs")
	defer end(&err)

	if len(ids) == 0 {
		return []*models.Thought{}, nil
	}
	cur, err := s.thoughts().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	var found []*models.Thought
	if err = cur.All(ctx, &found); err != nil {
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

func (s *thoughtStore) Create(ctx context.Context, thought *models.Thought) (owner *models.User, err error) {
	ctx, end := startOp(ctx, thoughtsCollection, "Create")
	defer end(&err)

	id, err := s.nextID(ctx, thoughtsCollection)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	thought.ID = id
	thought.CreatedAt = now()
	thought.UpdatedAt = thought.CreatedAt
	if thought.Reactions == nil {
		thought.Reactions = models.Reactions{}
	}

	if thought.UserID != nil {
		users := &userStore{Store: s.Store}
		ok, err := users.exists(ctx, *thought.UserID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if !ok {
			return nil, models.NewNotFoundError("user", *thought.UserID)
		}
	}

	err = s.withTransaction(ctx, func(ctx context.Context) error {
		owner = nil
		if _, err := s.thoughts().InsertOne(ctx, thought); err != nil {
			return err
		}
		if thought.UserID == nil {
			return nil
		}

		var u models.User
		err := s.users().FindOneAndUpdate(ctx,
			bson.M{"_id": *thought.UserID},
			bson.M{"$addToSet": bson.M{"thoughts": thought.ID}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&u)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return models.NewNotFoundError("user", *thought.UserID)
			}
			return err
		}
		owner = &u
		return nil
	})
	if err != nil {
		s.log.LogError(ctx, err, "create")
		return nil, wrapErr(err, "thought", id)
	}

	if owner != nil {
		cache.InvalidateUsers(ctx, owner.ID)
	}
	s.log.LogCreate(ctx, map[string]interface{}{"id": thought.ID, "owner": thought.UserID})
	return owner, nil
}

func (s *thoughtStore) Update(ctx context.Context, id uint, changes repository.ThoughtChanges) (thought *models.Thought, err error) {
	ctx, end := startOp(ctx, thoughtsCollection, "Update")
	defer end(&err)

	set := bson.M{"updatedAt": now()}
	if changes.ThoughtText != nil {
		set["thoughtText"] = *changes.ThoughtText
	}
	if changes.Username != nil {
		set["username"] = *changes.Username
	}

	var t models.Thought
	err = s.thoughts().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&t)
	if err != nil {
		return nil, wrapErr(err, "thought", id)
	}

	cache.InvalidateThoughts(ctx, id)
	s.log.LogUpdate(ctx, map[string]interface{}{"id": id})
	return &t, nil
}

func (s *thoughtStore) Delete(ctx context.Context, id uint) (thought *models.Thought, owner *models.User, err error) {
	ctx, end := startOp(ctx, thoughtsCollection, "Delete")
	defer end(&err)

	var (
		t       models.Thought
		linkers []uint
	)
	err = s.withTransaction(ctx, func(ctx context.Context) error {
		owner, linkers = nil, nil
		if err := s.thoughts().FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
			return err
		}

		cur, err := s.users().Find(ctx, bson.M{"thoughts": id}, options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			return err
		}
		var refs []struct {
			ID uint `bson:"_id"`
		}
		if err := cur.All(ctx, &refs); err != nil {
			return err
		}
		for _, r := range refs {
			linkers = append(linkers, r.ID)
		}
		if _, err := s.users().UpdateMany(ctx, bson.M{"thoughts": id}, bson.M{"$pull": bson.M{"thoughts": id}}); err != nil {
			return err
		}

		if t.UserID == nil {
			return nil
		}
		var u models.User
		if err := s.users().FindOne(ctx, bson.M{"_id": *t.UserID}).Decode(&u); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil
			}
			return err
		}
		owner = &u
		return nil
	})
	if err != nil {
		s.log.LogError(ctx, err, "delete")
		return nil, nil, wrapErr(err, "thought", id)
	}

	cache.InvalidateThoughts(ctx, id)
	if t.UserID != nil {
		linkers = append(linkers, *t.UserID)
	}
	cache.InvalidateUsers(ctx, models.UniqueIDs(linkers)...)
	s.log.LogDelete(ctx, map[string]interface{}{"id": id})
	return &t, owner, nil
}

func (s *thoughtStore) AddReaction(ctx context.Context, thoughtID uint, reaction models.Reaction) (thought *models.Thought, added bool, err error) {
	ctx, end := startOp(ctx, thoughtsCollection, "AddReaction")
	defer end(&err)

	var t models.Thought
	err = s.thoughts().FindOneAndUpdate(ctx, reactionAbsentFilter(thoughtID, reaction),
		bson.M{"$push": bson.M{"reactions": reaction}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&t)
	switch {
	case err == nil:
		cache.InvalidateThoughts(ctx, thoughtID)
		s.log.LogUpdate(ctx, map[string]interface{}{"id": thoughtID, "reaction_added": reaction.ReactionID})
		return &t, true, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		if err = s.thoughts().FindOne(ctx, bson.M{"_id": thoughtID}).Decode(&t); err != nil {
			return nil, false, wrapErr(err, "thought", thoughtID)
		}
		return &t, false, nil
	default:
		return nil, false, models.NewInternalError(err)
	}
}

// reactionAbsentFilter matches the thought only while it holds no reaction with
// the same body and username, so the check and the push are one document update.
func reactionAbsentFilter(thoughtID uint, reaction models.Reaction) bson.M {
	return bson.M{
		"_id": thoughtID,
		"reactions": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"reactionBody": reaction.ReactionBody,
			"username":     reaction.Username,
		}}},
	}
}

func (s *thoughtStore) RemoveReaction(ctx context.Context, thoughtID uint, reactionID string) (thought *models.Thought, removed bool, err error) {
	ctx, end := startOp(ctx, thoughtsCollection, "RemoveReaction")
	defer end(&err)

	var t models.Thought
	err = s.thoughts().FindOneAndUpdate(ctx,
		bson.M{"_id": thoughtID, "reactions.reactionId": reactionID},
		bson.M{"$pull": bson.M{"reactions": bson.M{"reactionId": reactionID}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&t)
	switch {
	case err == nil:
		cache.InvalidateThoughts(ctx, thoughtID)
		s.log.LogUpdate(ctx, map[string]interface{}{"id": thoughtID, "reaction_removed": reactionID})
		return &t, true, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		if err = s.thoughts().FindOne(ctx, bson.M{"_id": thoughtID}).Decode(&t); err != nil {
			return nil, false, wrapErr(err, "thought", thoughtID)
		}
		return &t, false, nil
	default:
		return nil, false, models.NewInternalError(err)
	}
}
