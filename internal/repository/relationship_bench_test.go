package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"gorm.io/gorm"

	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/testutil"
)

func seedBenchUsers(b *testing.B, db *gorm.DB, n int) []model.User {
	users := make([]model.User, n)
	for i := range users {
		id := fmt.Sprintf("u%04d", i)
		users[i] = model.User{ID: id, Username: id, FullName: id, Email: id + "@example.com", Password: "p"}
	}
	if err := db.CreateInBatches(&users, 500).Error; err != nil {
		b.Fatalf("seed users: %v", err)
	}
	return users
}

func BenchmarkFollowEdgeWrite(b *testing.B) {
	db := testutil.NewDB(b)
	followRepo := NewFollowRepository(db)
	fanRepo := NewFanRepository(db)
	ctx := context.Background()
	users := seedBenchUsers(b, db, 1000)

	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		from := users[rng.Intn(len(users))].ID
		to := users[rng.Intn(len(users))].ID
		if from == to {
			continue
		}
		// 两端同事务
		_ = db.Transaction(func(tx *gorm.DB) error {
			if _, err := followRepo.WithTx(tx).Create(ctx, from, to); err != nil {
				return err
			}
			return fanRepo.WithTx(tx).Create(ctx, to, from)
		})
	}
}

func BenchmarkQueryFansAndFollowing(b *testing.B) {
	db := testutil.NewDB(b)
	followRepo := NewFollowRepository(db)
	fanRepo := NewFanRepository(db)
	ctx := context.Background()

	// 构造：u0 有 N 个粉丝，同时 u0 也关注 N 个用户
	const N = 2000
	users := seedBenchUsers(b, db, N+1)
	u0 := users[0].ID
	for _, u := range users[1:] {
		_, _ = followRepo.Create(ctx, u.ID, u0)
		_ = fanRepo.Create(ctx, u0, u.ID)
		_, _ = followRepo.Create(ctx, u0, u.ID)
		_ = fanRepo.Create(ctx, u.ID, u0)
	}

	b.ResetTimer()
	b.Run("ListFans", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = fanRepo.ListFans(ctx, u0, 0, 50)
		}
	})
	b.Run("ListFollowing", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = followRepo.ListFollowings(ctx, u0, 0, 50)
		}
	})
	b.Run("FanIDs", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = fanRepo.FanIDs(ctx, []string{u0})
		}
	})
}
