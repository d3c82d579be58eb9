package model

import "time"

type NotificationType string

const (
	NotificationLike   NotificationType = "like"
	NotificationFollow NotificationType = "follow"
)

// Valid reports whether t belongs to the closed set of notification types.
func (t NotificationType) Valid() bool {
	return t == NotificationLike || t == NotificationFollow
}

// Notification 点赞 / 关注事件，读取后由接收者批量清除
type Notification struct {
	ID        string           `gorm:"primaryKey;type:varchar(36)"`
	FromID    string           `gorm:"type:varchar(36);not null"`
	ToID      string           `gorm:"type:varchar(36);index:idx_notification_to;not null"`
	Type      NotificationType `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time        `gorm:"index"`
}

func (Notification) TableName() string { return "notifications" }
