package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/testutil"
)

func TestUserRepository_Lookups(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	alice := testutil.SeedUser(t, db, "alice")

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	got, err = repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	dup := &model.User{ID: uuid.NewString(), Username: "alice", FullName: "x", Email: "other@example.com", Password: "h"}
	assert.Error(t, repo.Create(ctx, dup), "username is unique")
}

func TestUserRepository_SampleExcludesSelfAndFollowed(t *testing.T) {
	db := testutil.NewDB(t)
	users := NewUserRepository(db)
	follows := NewFollowRepository(db)
	ctx := context.Background()

	me := testutil.SeedUser(t, db, "me")
	followed := testutil.SeedUser(t, db, "followed")
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		testutil.SeedUser(t, db, name)
	}
	_, err := follows.Create(ctx, me.ID, followed.ID)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		res, err := users.Sample(ctx, me.ID, 4)
		require.NoError(t, err)
		assert.Len(t, res, 4)
		for _, u := range res {
			assert.NotEqual(t, me.ID, u.ID)
			assert.NotEqual(t, followed.ID, u.ID)
		}
	}
}

func TestFollowAndFanRepository_Edges(t *testing.T) {
	db := testutil.NewDB(t)
	follows := NewFollowRepository(db)
	fans := NewFanRepository(db)
	ctx := context.Background()

	inserted, err := follows.Create(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, inserted)
	inserted, err = follows.Create(ctx, "a", "b")
	require.NoError(t, err, "duplicate follow is a no-op")
	assert.False(t, inserted, "duplicate follow inserts nothing")
	_, err = follows.Create(ctx, "a", "c")
	require.NoError(t, err)
	require.NoError(t, fans.Create(ctx, "b", "a"))

	ok, err := follows.Exists(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)

	m, err := follows.FolloweeIDs(ctx, []string{"a", "z"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "c"}, m["a"])
	assert.Empty(t, m["z"])

	fm, err := fans.FanIDs(ctx, []string{"b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, fm["b"])

	n, err := follows.Delete(ctx, "a", "b")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = fans.Delete(ctx, "b", "a")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	list, err := follows.ListFollowings(ctx, "a", 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c", list[0].FolloweeID)
}

func TestPostRepository_NewestFirstAndFeed(t *testing.T) {
	db := testutil.NewDB(t)
	posts := NewPostRepository(db)
	follows := NewFollowRepository(db)
	ctx := context.Background()

	base := time.Now().UTC()
	older := &model.Post{ID: uuid.NewString(), UserID: "bob", Text: "old", CreatedAt: base.Add(-time.Hour)}
	newer := &model.Post{ID: uuid.NewString(), UserID: "bob", Text: "new", CreatedAt: base}
	other := &model.Post{ID: uuid.NewString(), UserID: "carol", Text: "hi", CreatedAt: base.Add(-time.Minute)}
	for _, p := range []*model.Post{older, newer, other} {
		require.NoError(t, posts.Create(ctx, p))
	}

	all, err := posts.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{newer.ID, other.ID, older.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	_, err = follows.Create(ctx, "alice", "bob")
	require.NoError(t, err)
	feed, err := posts.ListFollowingFeed(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, newer.ID, feed[0].ID)

	byUser, err := posts.ListByUser(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, byUser, 1)

	require.NoError(t, posts.Delete(ctx, other.ID))
	_, err = posts.GetByID(ctx, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLikeAndCommentRepository(t *testing.T) {
	db := testutil.NewDB(t)
	likes := NewLikeRepository(db)
	comments := NewCommentRepository(db)
	ctx := context.Background()

	for _, l := range [][2]string{{"p1", "u1"}, {"p1", "u2"}, {"p2", "u1"}} {
		inserted, err := likes.Create(ctx, l[0], l[1])
		require.NoError(t, err)
		assert.True(t, inserted)
	}
	inserted, err := likes.Create(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.False(t, inserted, "duplicate like inserts nothing")

	byPost, err := likes.LikerIDs(ctx, []string{"p1", "p2"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2"}, byPost["p1"])
	byUser, err := likes.LikedPostIDs(ctx, []string{"u1"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p2"}, byUser["u1"])

	for _, text := range []string{"first", "second", "third"} {
		require.NoError(t, comments.Create(ctx, &model.Comment{PostID: "p1", UserID: "u1", Text: text}))
	}
	cm, err := comments.ListByPosts(ctx, []string{"p1"})
	require.NoError(t, err)
	require.Len(t, cm["p1"], 3)
	assert.Equal(t, "first", cm["p1"][0].Text)
	assert.Equal(t, "third", cm["p1"][2].Text)

	require.NoError(t, likes.DeleteByPost(ctx, "p1"))
	require.NoError(t, comments.DeleteByPost(ctx, "p1"))
	ok, err := likes.Exists(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = likes.Exists(ctx, "p2", "u1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNotificationAndOutboxRepository(t *testing.T) {
	db := testutil.NewDB(t)
	notes := NewNotificationRepository(db)
	outbox := NewOutboxRepository(db)
	ctx := context.Background()

	base := time.Now().UTC()
	first := &model.Notification{ID: uuid.NewString(), FromID: "a", ToID: "b", Type: model.NotificationFollow, CreatedAt: base.Add(-time.Second)}
	second := &model.Notification{ID: uuid.NewString(), FromID: "c", ToID: "b", Type: model.NotificationLike, CreatedAt: base}
	require.NoError(t, notes.Create(ctx, first))
	require.NoError(t, notes.Create(ctx, second))

	list, err := notes.ListTo(ctx, "b")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	n, err := notes.DeleteTo(ctx, "b")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	for i := 0; i < 3; i++ {
		require.NoError(t, outbox.Create(ctx, &model.Outbox{
			ID: uuid.NewString(), AggregateID: uuid.NewString(), Status: model.OutboxPending,
		}))
	}
	claimed, err := outbox.Claim(ctx, 2, time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	again, err := outbox.Claim(ctx, 10, time.Minute)
	require.NoError(t, err)
	assert.Len(t, again, 1, "claimed rows are not handed out twice")

	require.NoError(t, outbox.Release(ctx, claimed[0].ID))
	require.NoError(t, outbox.MarkDone(ctx, claimed[1].ID))
	last, err := outbox.Claim(ctx, 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, claimed[0].ID, last[0].ID)
}

func TestOutboxRepository_ReclaimsExpiredLease(t *testing.T) {
	db := testutil.NewDB(t)
	outbox := NewOutboxRepository(db)
	ctx := context.Background()

	require.NoError(t, outbox.Create(ctx, &model.Outbox{
		ID: uuid.NewString(), AggregateID: uuid.NewString(), Status: model.OutboxPending,
	}))
	claimed, err := outbox.Claim(ctx, 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	none, err := outbox.Claim(ctx, 10, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, none, "lease still held")

	// relay 在领取后崩溃，租约过期
	require.NoError(t, db.Model(&model.Outbox{}).Where("id = ?", claimed[0].ID).
		Update("claimed_at", time.Now().Add(-time.Hour)).Error)
	again, err := outbox.Claim(ctx, 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, claimed[0].ID, again[0].ID)

	require.NoError(t, outbox.Release(ctx, again[0].ID))
	var row model.Outbox
	require.NoError(t, db.First(&row, "id = ?", again[0].ID).Error)
	assert.Equal(t, model.OutboxPending, row.Status)
	assert.Nil(t, row.ClaimedAt)
}
