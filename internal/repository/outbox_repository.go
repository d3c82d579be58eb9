package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialnet/internal/model"
)

type OutboxRepository interface {
	Create(ctx context.Context, o *model.Outbox) error
	// Claim 将至多 limit 条 pending 事件（以及租约超过 lease 仍未完成的 processing 事件）
	// 标记为 processing 并返回
	Claim(ctx context.Context, limit int, lease time.Duration) ([]*model.Outbox, error)
	MarkDone(ctx context.Context, id string) error
	// Release 发布失败时退回 pending，等待下一轮
	Release(ctx context.Context, id string) error
	WithTx(tx *gorm.DB) OutboxRepository
}

type outboxRepository struct{ db *gorm.DB }

func NewOutboxRepository(db *gorm.DB) OutboxRepository { return &outboxRepository{db: db} }

func (r *outboxRepository) WithTx(tx *gorm.DB) OutboxRepository { return &outboxRepository{db: tx} }

func (r *outboxRepository) Create(ctx context.Context, o *model.Outbox) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *outboxRepository) Claim(ctx context.Context, limit int, lease time.Duration) ([]*model.Outbox, error) {
	var batch []*model.Outbox
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// relay 崩溃时遗留的 processing 行在租约到期后重新领取
		q := tx.Where("status = ? OR (status = ? AND claimed_at < ?)",
			model.OutboxPending, model.OutboxProcessing, now.Add(-lease)).
			Order("created_at").Limit(limit)
		// SELECT ... FOR UPDATE SKIP LOCKED，多实例 relay 互不抢占
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		if err := q.Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		ids := make([]string, len(batch))
		for i, b := range batch {
			ids[i] = b.ID
		}
		return tx.Model(&model.Outbox{}).Where("id IN ?", ids).
			Updates(map[string]any{"status": model.OutboxProcessing, "claimed_at": now}).Error
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *outboxRepository) MarkDone(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.Outbox{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxDone, "processed_at": now}).Error
}

func (r *outboxRepository) Release(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.Outbox{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxPending, "claimed_at": nil}).Error
}
