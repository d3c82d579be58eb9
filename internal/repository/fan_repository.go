package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/socialnet/internal/model"
)

type FanRepository interface {
	Create(ctx context.Context, userID, fanID string) error
	Delete(ctx context.Context, userID, fanID string) (int64, error)
	ListFans(ctx context.Context, userID string, offset, limit int) ([]*model.Fan, error)
	// FanIDs 批量查询每个用户的 followers 集合
	FanIDs(ctx context.Context, userIDs []string) (map[string][]string, error)
	WithTx(tx *gorm.DB) FanRepository
}

type fanRepository struct{ db *gorm.DB }

func NewFanRepository(db *gorm.DB) FanRepository { return &fanRepository{db: db} }

func (r *fanRepository) WithTx(tx *gorm.DB) FanRepository { return &fanRepository{db: tx} }

func (r *fanRepository) Create(ctx context.Context, userID, fanID string) error {
	f := &model.Fan{ID: uuid.New().String(), UserID: userID, FanID: fanID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f).Error
}

func (r *fanRepository) Delete(ctx context.Context, userID, fanID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND fan_id = ?", userID, fanID).Delete(&model.Fan{})
	return res.RowsAffected, res.Error
}

func (r *fanRepository) ListFans(ctx context.Context, userID string, offset, limit int) ([]*model.Fan, error) {
	var res []*model.Fan
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at, id").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *fanRepository) FanIDs(ctx context.Context, userIDs []string) (map[string][]string, error) {
	if len(userIDs) == 0 {
		return map[string][]string{}, nil
	}
	var rows []pair
	err := r.db.WithContext(ctx).
		Model(&model.Fan{}).
		Select("user_id AS k, fan_id AS v").
		Where("user_id IN ?", userIDs).
		Order("created_at, id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return group(rows), nil
}
