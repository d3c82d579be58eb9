package model

import "time"

// Post 帖子；text 与 image 至少有一个
type Post struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `gorm:"type:varchar(36);index:idx_post_user;not null"`
	Text      string    `gorm:"type:text"`
	Image     string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index:idx_post_created"`
	UpdatedAt time.Time
}

func (Post) TableName() string { return "posts" }
