package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialnet/internal/model"
)

type CommentRepository interface {
	Create(ctx context.Context, c *model.Comment) error
	DeleteByPost(ctx context.Context, postID string) error
	// ListByPosts post_id -> 评论，按追加顺序
	ListByPosts(ctx context.Context, postIDs []string) (map[string][]*model.Comment, error)
	WithTx(tx *gorm.DB) CommentRepository
}

type commentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) WithTx(tx *gorm.DB) CommentRepository { return &commentRepository{db: tx} }

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *commentRepository) DeleteByPost(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&model.Comment{}).Error
}

func (r *commentRepository) ListByPosts(ctx context.Context, postIDs []string) (map[string][]*model.Comment, error) {
	out := make(map[string][]*model.Comment)
	if len(postIDs) == 0 {
		return out, nil
	}
	var rows []*model.Comment
	if err := r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, c := range rows {
		out[c.PostID] = append(out[c.PostID], c)
	}
	return out, nil
}
