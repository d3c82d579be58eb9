package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialnet/internal/cache"
	"github.com/d60-Lab/socialnet/internal/events"
	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/repository"
)

// NotificationService 通知服务
type NotificationService interface {
	// Notify 在调用方事务内记录一条通知（自己给自己的通知会被跳过）
	Notify(ctx context.Context, tx *gorm.DB, fromID, toID string, typ model.NotificationType) error
	List(ctx context.Context, userID string) ([]*model.NotificationView, error)
	Clear(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	notes  repository.NotificationRepository
	outbox repository.OutboxRepository
	users  *cache.UserCache
	// 为 true 时同事务写 outbox，供 relay 推送到 Kafka
	publish bool
}

func NewNotificationService(notes repository.NotificationRepository, outbox repository.OutboxRepository, users *cache.UserCache, publish bool) NotificationService {
	return &notificationService{notes: notes, outbox: outbox, users: users, publish: publish}
}

func (s *notificationService) Notify(ctx context.Context, tx *gorm.DB, fromID, toID string, typ model.NotificationType) error {
	if fromID == toID || !typ.Valid() {
		return nil
	}
	n := &model.Notification{ID: uuid.New().String(), FromID: fromID, ToID: toID, Type: typ}
	if err := s.notes.WithTx(tx).Create(ctx, n); err != nil {
		return err
	}
	if !s.publish {
		return nil
	}
	payload, err := json.Marshal(events.NotificationEvent{
		ID: n.ID, Type: string(n.Type), From: n.FromID, To: n.ToID, CreatedAt: n.CreatedAt,
	})
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, &model.Outbox{
		ID:          uuid.New().String(),
		AggregateID: n.ID,
		MessageKey:  n.ToID,
		EventType:   events.NotificationCreated,
		Payload:     payload,
		Status:      model.OutboxPending,
	})
}

func (s *notificationService) List(ctx context.Context, userID string) ([]*model.NotificationView, error) {
	notes, err := s.notes.ListTo(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(notes))
	for i, n := range notes {
		ids[i] = n.FromID
	}
	users, err := s.users.Load(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*model.NotificationView, 0, len(notes))
	for _, n := range notes {
		v := &model.NotificationView{ID: n.ID, To: n.ToID, Type: n.Type, CreatedAt: n.CreatedAt}
		if u, ok := users[n.FromID]; ok {
			v.From = &model.UserSummary{ID: u.ID, Username: u.Username, ProfileImg: u.ProfileImg}
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *notificationService) Clear(ctx context.Context, userID string) (int64, error) {
	return s.notes.DeleteTo(ctx, userID)
}
