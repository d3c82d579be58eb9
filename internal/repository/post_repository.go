package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialnet/internal/model"
)

// PostRepository 所有列表按 created_at 倒序
type PostRepository interface {
	Create(ctx context.Context, p *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]*model.Post, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Post, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.Post, error)
	// ListFollowingFeed 返回 userID 关注的人发布的帖子
	ListFollowingFeed(ctx context.Context, userID string) ([]*model.Post, error)
	WithTx(tx *gorm.DB) PostRepository
}

type postRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) WithTx(tx *gorm.DB) PostRepository { return &postRepository{db: tx} }

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Post{}).Error
}

func (r *postRepository) newest(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Order("created_at DESC, id DESC")
}

func (r *postRepository) ListAll(ctx context.Context) ([]*model.Post, error) {
	var res []*model.Post
	err := r.newest(ctx).Find(&res).Error
	return res, err
}

func (r *postRepository) ListByUser(ctx context.Context, userID string) ([]*model.Post, error) {
	var res []*model.Post
	err := r.newest(ctx).Where("user_id = ?", userID).Find(&res).Error
	return res, err
}

func (r *postRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.Post, error) {
	if len(ids) == 0 {
		return []*model.Post{}, nil
	}
	var res []*model.Post
	err := r.newest(ctx).Where("id IN ?", ids).Find(&res).Error
	return res, err
}

func (r *postRepository) ListFollowingFeed(ctx context.Context, userID string) ([]*model.Post, error) {
	var res []*model.Post
	following := r.db.Model(&model.Follow{}).Select("followee_id").Where("follower_id = ?", userID)
	err := r.newest(ctx).Where("user_id IN (?)", following).Find(&res).Error
	return res, err
}
