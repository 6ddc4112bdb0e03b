package models

import "time"

type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:300;not null" json:"title"`
	Content     string    `gorm:"type:text" json:"content"`
	ImageURL    string    `json:"imageUrl"`
	LinkURL     string    `json:"linkUrl"`
	AuthorID    uint      `gorm:"not null;index" json:"authorId"`
	Author      User      `gorm:"foreignKey:AuthorID" json:"-"`
	CommunityID uint      `gorm:"not null;index" json:"communityId"`
	Community   Community `gorm:"foreignKey:CommunityID" json:"-"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Kind reports how the post is rendered: image, link or plain text.
func (p Post) Kind() string {
	switch {
	case p.ImageURL != "":
		return "image"
	case p.LinkURL != "":
		return "link"
	default:
		return "text"
	}
}

type CreatePostRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=300"`
	Content     string `json:"content" binding:"omitempty,max=40000"`
	ImageURL    string `json:"imageUrl" binding:"omitempty,url"`
	LinkURL     string `json:"linkUrl" binding:"omitempty,url"`
	CommunityID uint   `json:"communityId" binding:"required"`
}

type UpdatePostRequest struct {
	Title   *string `json:"title" binding:"omitempty,min=1,max=300"`
	Content *string `json:"content" binding:"omitempty,max=40000"`
}
