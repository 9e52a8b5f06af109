// Package mongostore implements the repository interfaces on MongoDB. Users keep
// their thoughts and friends sets as arrays and thoughts embed their reactions.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/austinzumbro/nosql-social-api/internal/models"
	"github.com/austinzumbro/nosql-social-api/internal/observability"
	"github.com/austinzumbro/nosql-social-api/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	usersCollection    = "users"
	thoughtsCollection = "thoughts"
	countersCollection = "counters"
)

// Store owns the client and database handle shared by the repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	// set once a deployment rejects multi-document transactions
	noTransactions atomic.Bool
}

// Connect dials uri, pings it and ensures indexes on dbName.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := New(client, dbName)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	observability.GlobalLogger.Info("MongoDB connected successfully")
	return s, nil
}

// New wraps an existing client.
func New(client *mongo.Client, dbName string) *Store {
	return &Store{client: client, db: client.Database(dbName)}
}

// EnsureIndexes creates the unique username index and the thought owner index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	_, err = s.thoughts().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "username", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create thoughts indexes: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Users returns the user repository backed by this store.
func (s *Store) Users() repository.UserRepository {
	return &userStore{Store: s, log: observability.NewRepoLogger(usersCollection)}
}

// Thoughts returns the thought repository backed by this store.
func (s *Store) Thoughts() repository.ThoughtRepository {
	return &thoughtStore{Store: s, log: observability.NewRepoLogger(thoughtsCollection)}
}

// Maintenance returns the health and reset operations.
func (s *Store) Maintenance() repository.MaintenanceRepository {
	return s
}

// Ping checks the primary.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Reset drops every document and the id counters.
func (s *Store) Reset(ctx context.Context) error {
	for _, c := range []*mongo.Collection{s.users(), s.thoughts(), s.counters()} {
		if _, err := c.DeleteMany(ctx, bson.M{}); err != nil {
			return models.NewInternalError(err)
		}
	}
	return nil
}

func (s *Store) users() *mongo.Collection    { return s.db.Collection(usersCollection) }
func (s *Store) thoughts() *mongo.Collection { return s.db.Collection(thoughtsCollection) }
func (s *Store) counters() *mongo.Collection { return s.db.Collection(countersCollection) }

// nextID increments the named sequence in the counters collection.
func (s *Store) nextID(ctx context.Context, name string) (uint, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters().FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return uint(doc.Seq), nil
}

// withTransaction runs fn in a multi-document transaction. Standalone servers
// do not support transactions; there fn runs as sequential writes.
func (s *Store) withTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.noTransactions.Load() {
		return fn(ctx)
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return fn(ctx)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc context.Context) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && transactionsUnsupported(err) {
		s.noTransactions.Store(true)
		observability.GlobalLogger.WarnContext(ctx, "MongoDB deployment has no transaction support, falling back to sequential writes")
		return fn(ctx)
	}
	return err
}

func transactionsUnsupported(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 20 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Transaction numbers are only allowed") ||
		strings.Contains(msg, "transactions are not supported")
}

// wrapErr classifies driver errors.
func wrapErr(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

func startOp(ctx context.Context, collection, method string) (context.Context, func(*error)) {
	ctx, span := observability.StartRepositorySpan(ctx, "mongodb", collection, method)
	done := observability.TrackQuery(method, collection)
	return ctx, func(errp *error) {
		done()
		observability.EndSpan(span, *errp)
	}
}

func now() time.Time {
	return time.Now().UTC()
}

// ownedThoughtsFilter matches thoughts owned by id or listed in its thoughts set.
func ownedThoughtsFilter(id uint, set []uint) bson.M {
	if len(set) == 0 {
		return bson.M{"userId": id}
	}
	return bson.M{"$or": []bson.M{
		{"userId": id},
		{"_id": bson.M{"$in": set}},
	}}
}
