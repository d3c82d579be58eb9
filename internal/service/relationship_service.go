package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialnet/internal/cache"
	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/repository"
	"github.com/d60-Lab/socialnet/pkg/logger"
)

type FollowState string

const (
	Followed   FollowState = "followed"
	Unfollowed FollowState = "unfollowed"
)

const (
	defaultSuggestions = 4
	maxSuggestions     = 50
	defaultPageSize    = 10
	maxPageSize        = 100
)

// RelationshipService 关系链服务
type RelationshipService interface {
	// FollowOrUnfollow 切换关注状态；follows 与 fans 两端在同一事务内写入
	FollowOrUnfollow(ctx context.Context, actorID, targetID string) (FollowState, error)
	Suggest(ctx context.Context, actorID string, n int) ([]*model.UserView, error)
	ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]string, error)
	ListFans(ctx context.Context, userID string, page, pageSize int) ([]string, error)
}

type relationshipService struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	fanRepo    repository.FanRepository
	notifier   NotificationService
	pop        *populator
}

func NewRelationshipService(db *gorm.DB, repos *repository.Repositories, users *cache.UserCache, notifier NotificationService) RelationshipService {
	return &relationshipService{
		db:         db,
		userRepo:   repos.Users,
		followRepo: repos.Follows,
		fanRepo:    repos.Fans,
		notifier:   notifier,
		pop:        newPopulator(repos, users),
	}
}

func (s *relationshipService) FollowOrUnfollow(ctx context.Context, actorID, targetID string) (FollowState, error) {
	if _, err := uuid.Parse(targetID); err != nil {
		return "", newError(ErrInvalidReference, "Invalid user id")
	}
	if actorID == targetID {
		return "", newError(ErrSelfReference, "You can't follow/unfollow yourself")
	}
	for _, id := range []string{targetID, actorID} {
		if _, err := s.userRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return "", notFoundError("User not found")
			}
			return "", err
		}
	}

	var state FollowState
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		follows, fans := s.followRepo.WithTx(tx), s.fanRepo.WithTx(tx)
		following, err := follows.Exists(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		if following {
			n1, err := follows.Delete(ctx, actorID, targetID)
			if err != nil {
				return err
			}
			n2, err := fans.Delete(ctx, targetID, actorID)
			if err != nil {
				return err
			}
			if n1 != n2 {
				// 两端不一致（历史遗留）；删除后两端都已不存在
				logger.Warn("follow edge repaired on unfollow",
					zap.String("follower", actorID), zap.String("followee", targetID),
					zap.Int64("follows", n1), zap.Int64("fans", n2))
			}
			state = Unfollowed
			return nil
		}
		inserted, err := follows.Create(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		if err := fans.Create(ctx, targetID, actorID); err != nil {
			return err
		}
		state = Followed
		if !inserted {
			// 并发请求已建立关系并发出通知
			return nil
		}
		return s.notifier.Notify(ctx, tx, actorID, targetID, model.NotificationFollow)
	})
	if err != nil {
		return "", err
	}
	return state, nil
}

func (s *relationshipService) Suggest(ctx context.Context, actorID string, n int) ([]*model.UserView, error) {
	if n <= 0 {
		n = defaultSuggestions
	}
	if n > maxSuggestions {
		n = maxSuggestions
	}
	users, err := s.userRepo.Sample(ctx, actorID, n)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	views, err := s.pop.userViews(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*model.UserView, 0, len(ids))
	for _, id := range ids {
		if v, ok := views[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID string, page, pageSize int) ([]string, error) {
	offset, pageSize := pageBounds(page, pageSize)
	items, err := s.followRepo.ListFollowings(ctx, userID, offset, pageSize)
	if err != nil {
		return nil, err
	}
	res := make([]string, len(items))
	for i, it := range items {
		res[i] = it.FolloweeID
	}
	return res, nil
}

func (s *relationshipService) ListFans(ctx context.Context, userID string, page, pageSize int) ([]string, error) {
	offset, pageSize := pageBounds(page, pageSize)
	items, err := s.fanRepo.ListFans(ctx, userID, offset, pageSize)
	if err != nil {
		return nil, err
	}
	res := make([]string, len(items))
	for i, it := range items {
		res[i] = it.FanID
	}
	return res, nil
}

func pageBounds(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return (page - 1) * pageSize, pageSize
}
