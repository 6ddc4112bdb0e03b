package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/emilythestrangee/reddit-clone/api/internal/apperrors"
	"github.com/emilythestrangee/reddit-clone/api/internal/database"
	"github.com/emilythestrangee/reddit-clone/api/internal/models"
)

// SubscriptionRepository defines the interface for subscription operations
type SubscriptionRepository interface {
	// Toggle subscribes the user when they are not subscribed and
	// unsubscribes them otherwise. It returns the new state.
	Toggle(ctx context.Context, userID, communityID uint) (bool, error)
	IsSubscribed(ctx context.Context, userID, communityID uint) (bool, error)
	CommunityIDs(ctx context.Context, userID uint) ([]uint, error)
}

type GormSubscriptionRepository struct {
	db *gorm.DB
}

func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// toggleRetries bounds how often a toggle that raced a concurrent insert of
// the same subscription is re-applied.
const toggleRetries = 2

func (r *GormSubscriptionRepository) Toggle(ctx context.Context, userID, communityID uint) (bool, error) {
	for attempt := 0; ; attempt++ {
		subscribed, err := r.toggle(ctx, userID, communityID)
		switch {
		case err == nil:
			return subscribed, nil
		case !database.IsUniqueViolation(err):
			return false, fmt.Errorf("toggling subscription: %w", err)
		case attempt >= toggleRetries:
			return false, fmt.Errorf("subscription to community %d kept racing: %w", communityID, apperrors.ErrConflict)
		}
		// Another toggle inserted the row first; apply this one on top of it.
	}
}

func (r *GormSubscriptionRepository) toggle(ctx context.Context, userID, communityID uint) (bool, error) {
	var subscribed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND community_id = ?", userID, communityID).
			Delete(&models.Subscription{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			subscribed = false
			return nil
		}

		subscribed = true
		return tx.Create(&models.Subscription{UserID: userID, CommunityID: communityID}).Error
	})
	return subscribed, err
}

func (r *GormSubscriptionRepository) IsSubscribed(ctx context.Context, userID, communityID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND community_id = ?", userID, communityID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormSubscriptionRepository) CommunityIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ?", userID).
		Order("community_id").
		Pluck("community_id", &ids).Error
	return ids, err
}
