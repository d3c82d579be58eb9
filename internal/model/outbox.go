package model

import "time"

const (
	OutboxPending    = "pending"
	OutboxProcessing = "processing"
	OutboxDone       = "done"
)

// Outbox 通知事件外发盒（与通知同事务写入，由 relay 推送到 Kafka）
type Outbox struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	AggregateID string    `gorm:"type:varchar(36);uniqueIndex"`
	MessageKey  string    `gorm:"type:varchar(36)"`
	EventType   string    `gorm:"type:varchar(32)"`
	Payload     []byte
	CreatedAt   time.Time  `gorm:"index"`
	Status      string     `gorm:"type:varchar(16);index"` // pending, processing, done
	ClaimedAt   *time.Time `gorm:"index"`
	ProcessedAt *time.Time
}

func (Outbox) TableName() string { return "outbox" }
