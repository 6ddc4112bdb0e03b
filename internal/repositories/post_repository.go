package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/emilythestrangee/reddit-clone/api/internal/models"
)

// PostFilter narrows a post listing. Zero fields do not filter.
type PostFilter struct {
	CommunityID uint
	AuthorID    uint
	Page        Page
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// FindByID loads the post with its author and community.
	FindByID(ctx context.Context, id uint) (*models.Post, error)
	// List returns posts newest first with author and community loaded.
	List(ctx context.Context, filter PostFilter) ([]models.Post, error)
	Update(ctx context.Context, post *models.Post, req models.UpdatePostRequest) error
	// Delete removes the post, its comments, and every vote on either.
	Delete(ctx context.Context, id uint) error
	CommentCounts(ctx context.Context, postIDs []uint) (map[uint]int64, error)
}

type GormPostRepository struct {
	db *gorm.DB
}

func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("creating post: %w", err)
	}
	return nil
}

func (r *GormPostRepository) FindByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Community").
		First(&post, id).Error
	if err != nil {
		return nil, lookupErr(err, "post %d", id)
	}
	return &post, nil
}

func (r *GormPostRepository) List(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	q := r.db.WithContext(ctx).Preload("Author").Preload("Community")
	if filter.CommunityID != 0 {
		q = q.Where("community_id = ?", filter.CommunityID)
	}
	if filter.AuthorID != 0 {
		q = q.Where("author_id = ?", filter.AuthorID)
	}

	var posts []models.Post
	err := filter.Page.apply(q.Order("created_at DESC").Order("id DESC")).Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

func (r *GormPostRepository) Update(ctx context.Context, post *models.Post, req models.UpdatePostRequest) error {
	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if len(updates) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).Model(post).Updates(updates).Error; err != nil {
		return fmt.Errorf("updating post %d: %w", post.ID, err)
	}
	return nil
}

func (r *GormPostRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}

		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.Vote{}).Error; err != nil {
				return fmt.Errorf("deleting comment votes: %w", err)
			}
			if err := tx.Where("id IN ?", commentIDs).Delete(&models.Comment{}).Error; err != nil {
				return fmt.Errorf("deleting comments: %w", err)
			}
		}

		if err := tx.Where("post_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return fmt.Errorf("deleting post votes: %w", err)
		}

		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return fmt.Errorf("deleting post %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return lookupErr(gorm.ErrRecordNotFound, "post %d", id)
		}
		return nil
	})
}

func (r *GormPostRepository) CommentCounts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	counts, err := countBy(r.db.WithContext(ctx), &models.Comment{}, "post_id", postIDs)
	if err != nil {
		return nil, fmt.Errorf("counting comments: %w", err)
	}
	return counts, nil
}
