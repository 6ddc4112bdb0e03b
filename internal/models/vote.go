package models

import (
	"time"

	"github.com/emilythestrangee/reddit-clone/api/internal/votes"
)

// Vote is one user's vote on exactly one post or comment. The unused target
// column stays NULL so the two unique indexes never collide. Deleting the
// voter or the target removes the vote with it.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_votes_user_post;uniqueIndex:idx_votes_user_comment" json:"userId"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PostID    *uint     `gorm:"uniqueIndex:idx_votes_user_post;index" json:"postId,omitempty"`
	Post      *Post     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CommentID *uint     `gorm:"uniqueIndex:idx_votes_user_comment;index" json:"commentId,omitempty"`
	Comment   *Comment  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Direction string    `gorm:"size:4;not null" json:"direction"` // UP or DOWN
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VoteRequest decodes through votes.Direction, so anything but "UP" or
// "DOWN" fails binding.
type VoteRequest struct {
	Direction votes.Direction `json:"direction" binding:"required"`
}
