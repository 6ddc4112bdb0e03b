package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/emilythestrangee/reddit-clone/api/internal/apperrors"
	"github.com/emilythestrangee/reddit-clone/api/internal/database"
	"github.com/emilythestrangee/reddit-clone/api/internal/models"
)

// CommunityStats are the derived counters shown next to a community.
type CommunityStats struct {
	Posts       int64
	Subscribers int64
}

type CommunityRepository interface {
	// Create stores the community and subscribes its creator.
	Create(ctx context.Context, community *models.Community) error
	FindByID(ctx context.Context, id uint) (*models.Community, error)
	FindByName(ctx context.Context, name string) (*models.Community, error)
	// List returns communities whose name or title contains search,
	// case-insensitively, ordered by name.
	List(ctx context.Context, search string, page Page) ([]models.Community, error)
	Stats(ctx context.Context, ids []uint) (map[uint]CommunityStats, error)
}

type GormCommunityRepository struct {
	db *gorm.DB
}

func NewGormCommunityRepository(db *gorm.DB) *GormCommunityRepository {
	return &GormCommunityRepository{db: db}
}

func (r *GormCommunityRepository) Create(ctx context.Context, community *models.Community) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(community).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return fmt.Errorf("community %q already exists: %w", community.Name, apperrors.ErrInvalidInput)
			}
			return fmt.Errorf("creating community: %w", err)
		}

		sub := models.Subscription{UserID: community.CreatorID, CommunityID: community.ID}
		if err := tx.Create(&sub).Error; err != nil {
			return fmt.Errorf("subscribing creator: %w", err)
		}
		return nil
	})
}

func (r *GormCommunityRepository) FindByID(ctx context.Context, id uint) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).First(&community, id).Error; err != nil {
		return nil, lookupErr(err, "community %d", id)
	}
	return &community, nil
}

func (r *GormCommunityRepository) FindByName(ctx context.Context, name string) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&community).Error; err != nil {
		return nil, lookupErr(err, "community %q", name)
	}
	return &community, nil
}

func (r *GormCommunityRepository) List(ctx context.Context, search string, page Page) ([]models.Community, error) {
	q := r.db.WithContext(ctx).Model(&models.Community{})
	if search != "" {
		pattern := containsPattern(search)
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(title) LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	var communities []models.Community
	if err := page.apply(q.Order("name ASC")).Find(&communities).Error; err != nil {
		return nil, fmt.Errorf("listing communities: %w", err)
	}
	return communities, nil
}

func (r *GormCommunityRepository) Stats(ctx context.Context, ids []uint) (map[uint]CommunityStats, error) {
	db := r.db.WithContext(ctx)

	posts, err := countBy(db, &models.Post{}, "community_id", ids)
	if err != nil {
		return nil, fmt.Errorf("counting posts: %w", err)
	}
	subs, err := countBy(db, &models.Subscription{}, "community_id", ids)
	if err != nil {
		return nil, fmt.Errorf("counting subscribers: %w", err)
	}

	stats := make(map[uint]CommunityStats, len(ids))
	for _, id := range ids {
		stats[id] = CommunityStats{Posts: posts[id], Subscribers: subs[id]}
	}
	return stats, nil
}
