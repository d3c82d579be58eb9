package repository

import "gorm.io/gorm"

// Repositories 聚合全部仓储，便于在 main 中一次性装配
type Repositories struct {
	Users         UserRepository
	Follows       FollowRepository
	Fans          FanRepository
	Posts         PostRepository
	Likes         LikeRepository
	Comments      CommentRepository
	Notifications NotificationRepository
	Outbox        OutboxRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Follows:       NewFollowRepository(db),
		Fans:          NewFanRepository(db),
		Posts:         NewPostRepository(db),
		Likes:         NewLikeRepository(db),
		Comments:      NewCommentRepository(db),
		Notifications: NewNotificationRepository(db),
		Outbox:        NewOutboxRepository(db),
	}
}
