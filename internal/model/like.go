package model

import "time"

// Like 点赞；同时充当 Post.likes 与 User.likedPosts
type Like struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	PostID    string `gorm:"type:varchar(36);index:idx_like_pair,unique;not null"`
	UserID    string `gorm:"type:varchar(36);index:idx_like_pair,unique;index:idx_like_user;not null"`
	CreatedAt time.Time
}

func (Like) TableName() string { return "likes" }
