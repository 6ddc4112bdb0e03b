package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/emilythestrangee/reddit-clone/api/internal/models"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id uint) (*models.Comment, error)
	// ListByPost returns every comment on the post, oldest first, with
	// authors loaded.
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	UpdateContent(ctx context.Context, comment *models.Comment, content string) error
	// DeleteThread removes the comment, all of its replies at any depth, and
	// every vote on them. It returns the number of comments removed.
	DeleteThread(ctx context.Context, id uint) (int, error)
}

type GormCommentRepository struct {
	db *gorm.DB
}

func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("creating comment: %w", err)
	}
	return r.db.WithContext(ctx).Preload("Author").First(comment, comment.ID).Error
}

func (r *GormCommentRepository) FindByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, lookupErr(err, "comment %d", id)
	}
	return &comment, nil
}

func (r *GormCommentRepository) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("listing comments for post %d: %w", postID, err)
	}
	return comments, nil
}

func (r *GormCommentRepository) UpdateContent(ctx context.Context, comment *models.Comment, content string) error {
	if err := r.db.WithContext(ctx).Model(comment).Update("content", content).Error; err != nil {
		return fmt.Errorf("updating comment %d: %w", comment.ID, err)
	}
	comment.Content = content
	return nil
}

func (r *GormCommentRepository) DeleteThread(ctx context.Context, id uint) (int, error) {
	var removed int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root models.Comment
		if err := tx.Select("id", "post_id").First(&root, id).Error; err != nil {
			return lookupErr(err, "comment %d", id)
		}

		// Walk the reply tree one level at a time.
		thread := []uint{root.ID}
		frontier := []uint{root.ID}
		for len(frontier) > 0 {
			var children []uint
			err := tx.Model(&models.Comment{}).
				Where("post_id = ? AND parent_id IN ?", root.PostID, frontier).
				Pluck("id", &children).Error
			if err != nil {
				return err
			}
			thread = append(thread, children...)
			frontier = children
		}

		if err := tx.Where("comment_id IN ?", thread).Delete(&models.Vote{}).Error; err != nil {
			return fmt.Errorf("deleting comment votes: %w", err)
		}
		if err := tx.Where("id IN ?", thread).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("deleting comments: %w", err)
		}
		removed = len(thread)
		return nil
	})
	return removed, err
}
