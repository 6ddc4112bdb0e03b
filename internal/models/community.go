package models

import "time"

type Community struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:21;not null" json:"name"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"size:500" json:"description"`
	CreatorID   uint      `gorm:"index" json:"creatorId"`
	Creator     User      `gorm:"foreignKey:CreatorID" json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CommunitySummary is the community block embedded in posts.
type CommunitySummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

func (c Community) Summary() CommunitySummary {
	return CommunitySummary{ID: c.ID, Name: c.Name, Title: c.Title}
}

type CreateCommunityRequest struct {
	Name        string `json:"name" binding:"required,communityname"`
	Title       string `json:"title" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}
