package events

import (
	"time"
)

const NotificationCreated = "NOTIFICATION_CREATED"

// NotificationEvent 推送到 Kafka 的通知事件
type NotificationEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	CreatedAt time.Time `json:"created_at"`
}
