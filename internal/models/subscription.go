package models

import "time"

// Subscription links a user to a community they follow.
type Subscription struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_subscriptions_user_community" json:"userId"`
	CommunityID uint      `gorm:"not null;uniqueIndex:idx_subscriptions_user_community;index" json:"communityId"`
	User        User      `gorm:"foreignKey:UserID" json:"-"`
	Community   Community `gorm:"foreignKey:CommunityID" json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}
