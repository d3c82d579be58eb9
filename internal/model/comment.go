package model

import "time"

// Comment 评论，只追加；自增 ID 即追加顺序
type Comment struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	PostID    string `gorm:"type:varchar(36);index:idx_comment_post;not null"`
	UserID    string `gorm:"type:varchar(36);not null"`
	Text      string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (Comment) TableName() string { return "comments" }
