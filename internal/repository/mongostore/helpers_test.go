package mongostore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/austinzumbro/nosql-social-api/internal/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestTransactionsUnsupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"illegal operation code", mongo.CommandError{Code: 20, Message: "not allowed"}, true},
		{"wrapped code", fmt.Errorf("start: %w", mongo.CommandError{Code: 20}), true},
		{"standalone message", errors.New("Transaction numbers are only allowed on a replica set member or mongos"), true},
		{"driver message", errors.New("transactions are not supported by this deployment"), true},
		{"other command error", mongo.CommandError{Code: 11000, Message: "duplicate key"}, false},
		{"plain error", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, transactionsUnsupported(tt.err))
		})
	}
}

func TestWithTransaction_SequentialFallback(t *testing.T) {
	s := &Store{}
	s.noTransactions.Store(true)

	calls := 0
	err := s.withTransaction(context.Background(), func(context.Context) error {
		calls++
		return models.NewNotFoundError("user", 3)
	})
	assert.Equal(t, 1, calls)
	assert.True(t, models.IsNotFound(err))
}

func TestOwnedThoughtsFilter(t *testing.T) {
	assert.Equal(t, bson.M{"userId": uint(7)}, ownedThoughtsFilter(7, nil))

	got := ownedThoughtsFilter(7, []uint{1, 2})
	assert.Equal(t, bson.M{"$or": []bson.M{
		{"userId": uint(7)},
		{"_id": bson.M{"$in": []uint{1, 2}}},
	}}, got)
}

func TestReactionAbsentFilter(t *testing.T) {
	r := models.Reaction{ReactionID: "abc", ReactionBody: "lol", Username: "ana"}

	got := reactionAbsentFilter(4, r)
	assert.Equal(t, uint(4), got["_id"])
	assert.Equal(t, bson.M{"$not": bson.M{"$elemMatch": bson.M{
		"reactionBody": "lol",
		"username":     "ana",
	}}}, got["reactions"])
	assert.NotContains(t, fmt.Sprint(got), "abc")
}
