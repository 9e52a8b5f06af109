package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/austinzumbro/nosql-social-api/internal/models"
	"github.com/austinzumbro/nosql-social-api/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// startOp opens a span and a latency timer for one repository call.
func startOp(ctx context.Context, db *gorm.DB, table, method string) (context.Context, func(*error)) {
	ctx, span := observability.StartRepositorySpan(ctx, db.Dialector.Name(), table, method)
	done := observability.TrackQuery(method, table)
	return ctx, func(errp *error) {
		done()
		observability.EndSpan(span, *errp)
	}
}

// IsUniqueViolation reports whether err is a unique-constraint failure from postgres or sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "duplicate key value")
}

// wrapErr keeps AppErrors and classifies everything else.
func wrapErr(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

func usernameTaken(username string) error {
	return models.NewValidationError("username '" + username + "' is already taken")
}

// attachUserSets loads the thoughts and friends sets of users from the link tables.
func attachUserSets(db *gorm.DB, users ...*models.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(users))
	byID := make(map[uint]*models.User, len(users))
	for _, u := range users {
		u.Thoughts = []uint{}
		u.Friends = []uint{}
		ids = append(ids, u.ID)
		byID[u.ID] = u
	}

	var thoughtLinks []models.UserThought
	if err := db.Where("user_id IN ?", ids).Order("user_id, thought_id").Find(&thoughtLinks).Error; err != nil {
		return err
	}
	for _, l := range thoughtLinks {
		if u := byID[l.UserID]; u != nil {
			u.Thoughts = append(u.Thoughts, l.ThoughtID)
		}
	}

	var friendLinks []models.UserFriend
	if err := db.Where("user_id IN ?", ids).Order("user_id, created_at, friend_id").Find(&friendLinks).Error; err != nil {
		return err
	}
	for _, l := range friendLinks {
		if u := byID[l.UserID]; u != nil {
			u.Friends = append(u.Friends, l.FriendID)
		}
	}
	return nil
}
