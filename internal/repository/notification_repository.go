package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialnet/internal/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	// ListTo 接收者的全部通知，最新的在前
	ListTo(ctx context.Context, toID string) ([]*model.Notification, error)
	DeleteTo(ctx context.Context, toID string) (int64, error)
	WithTx(tx *gorm.DB) NotificationRepository
}

type notificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) WithTx(tx *gorm.DB) NotificationRepository {
	return &notificationRepository{db: tx}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) ListTo(ctx context.Context, toID string) ([]*model.Notification, error) {
	var res []*model.Notification
	err := r.db.WithContext(ctx).Where("to_id = ?", toID).Order("created_at DESC, id DESC").Find(&res).Error
	return res, err
}

func (r *notificationRepository) DeleteTo(ctx context.Context, toID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("to_id = ?", toID).Delete(&model.Notification{})
	return res.RowsAffected, res.Error
}
