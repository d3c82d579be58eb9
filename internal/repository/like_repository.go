package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialnet/internal/model"
)

type LikeRepository interface {
	Create(ctx context.Context, postID, userID string) (inserted bool, err error)
	Delete(ctx context.Context, postID, userID string) error
	Exists(ctx context.Context, postID, userID string) (bool, error)
	DeleteByPost(ctx context.Context, postID string) error
	// LikerIDs post_id -> 点赞用户，按点赞时间
	LikerIDs(ctx context.Context, postIDs []string) (map[string][]string, error)
	// LikedPostIDs user_id -> 点赞过的帖子，按点赞时间
	LikedPostIDs(ctx context.Context, userIDs []string) (map[string][]string, error)
	WithTx(tx *gorm.DB) LikeRepository
}

type likeRepository struct{ db *gorm.DB }

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) WithTx(tx *gorm.DB) LikeRepository { return &likeRepository{db: tx} }

func (r *likeRepository) Create(ctx context.Context, postID, userID string) (bool, error) {
	l := &model.Like{ID: uuid.New().String(), PostID: postID, UserID: userID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(l)
	return res.RowsAffected > 0, res.Error
}

func (r *likeRepository) Delete(ctx context.Context, postID, userID string) error {
	return r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&model.Like{}).Error
}

func (r *likeRepository) Exists(ctx context.Context, postID, userID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *likeRepository) DeleteByPost(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&model.Like{}).Error
}

func (r *likeRepository) LikerIDs(ctx context.Context, postIDs []string) (map[string][]string, error) {
	return r.pairs(ctx, "post_id AS k, user_id AS v", "post_id IN ?", postIDs)
}

func (r *likeRepository) LikedPostIDs(ctx context.Context, userIDs []string) (map[string][]string, error) {
	return r.pairs(ctx, "user_id AS k, post_id AS v", "user_id IN ?", userIDs)
}

func (r *likeRepository) pairs(ctx context.Context, sel, where string, ids []string) (map[string][]string, error) {
	if len(ids) == 0 {
		return map[string][]string{}, nil
	}
	var rows []pair
	err := r.db.WithContext(ctx).
		Model(&model.Like{}).
		Select(sel).
		Where(where, ids).
		Order("created_at, id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return group(rows), nil
}
