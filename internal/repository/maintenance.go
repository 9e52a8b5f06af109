package repository

import (
	"context"

	"github.com/austinzumbro/nosql-social-api/internal/cache"
	"github.com/austinzumbro/nosql-social-api/internal/models"

	"gorm.io/gorm"
)

type maintenanceRepository struct {
	db *gorm.DB
}

// NewMaintenanceRepository creates the health and reset operations for a gorm store.
func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *maintenanceRepository) Reset(ctx context.Context) error {
	var userIDs, thoughtIDs []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Pluck("id", &userIDs).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Thought{}).Pluck("id", &thoughtIDs).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{&models.UserFriend{}, &models.UserThought{}, &models.Thought{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUsers(ctx, userIDs...)
	cache.InvalidateThoughts(ctx, thoughtIDs...)
	return nil
}
