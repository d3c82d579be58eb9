package model

import "time"

// User 账号与资料；关注关系存放在 follows / fans 表
type User struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	Username   string    `gorm:"column:user_name;type:varchar(64);uniqueIndex;not null"`
	FullName   string    `gorm:"type:varchar(128);not null"`
	Email      string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password   string    `gorm:"type:varchar(255);not null" json:"-"`
	ProfileImg string    `gorm:"type:text"`
	CoverImg   string    `gorm:"type:text"`
	Bio        string    `gorm:"type:text"`
	Link       string    `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (User) TableName() string { return "users" }
