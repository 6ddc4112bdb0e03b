package models

import "time"

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	AuthorID  uint      `gorm:"not null;index" json:"authorId"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"-"`
	PostID    uint      `gorm:"not null;index" json:"postId"`
	ParentID  *uint     `gorm:"index" json:"parentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required,min=1,max=10000"`
	PostID   uint   `json:"postId" binding:"required"`
	ParentID *uint  `json:"parentId"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=10000"`
}
