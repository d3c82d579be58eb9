package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialnet/internal/events"
	"github.com/d60-Lab/socialnet/internal/model"
)

func TestNotificationService_NewestFirstAndClear(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")
	carol := e.signup(t, "carol")

	_, err := e.graph.FollowOrUnfollow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	post, err := e.posts.Create(ctx, alice.ID, "hi", "")
	require.NoError(t, err)
	_, err = e.posts.ToggleLike(ctx, carol.ID, post.ID)
	require.NoError(t, err)

	notes, err := e.notes.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, model.NotificationLike, notes[0].Type)
	assert.Equal(t, "carol", notes[0].From.Username)
	assert.Equal(t, model.NotificationFollow, notes[1].Type)
	assert.Equal(t, "bob", notes[1].From.Username)

	n, err := e.notes.Clear(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	notes, err = e.notes.List(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestNotificationService_OutboxOnlyWhenPublishing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")

	_, err := e.graph.FollowOrUnfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, e.countRows(t, &model.Outbox{}, "1 = 1"))
}

func TestOutboxRelay_PublishesOnce(t *testing.T) {
	e := newEnv(t, withPublish())
	ctx := context.Background()
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")

	_, err := e.graph.FollowOrUnfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, e.countRows(t, &model.Outbox{}, "status = ?", model.OutboxPending))

	pub := &fakePublisher{}
	relay := NewOutboxRelay(e.repos.Outbox, pub, 10, time.Hour)

	n, err := relay.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = relay.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, bob.ID, string(pub.msgs[0].key))
	var ev events.NotificationEvent
	require.NoError(t, json.Unmarshal(pub.msgs[0].value, &ev))
	assert.Equal(t, "follow", ev.Type)
	assert.Equal(t, alice.ID, ev.From)
	assert.Equal(t, bob.ID, ev.To)
	assert.EqualValues(t, 1, e.countRows(t, &model.Outbox{}, "status = ?", model.OutboxDone))
}

func TestOutboxRelay_ReleasesOnFailure(t *testing.T) {
	e := newEnv(t, withPublish())
	ctx := context.Background()
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")
	post, err := e.posts.Create(ctx, bob.ID, "like target", "")
	require.NoError(t, err)
	_, err = e.posts.ToggleLike(ctx, alice.ID, post.ID)
	require.NoError(t, err)

	pub := &fakePublisher{fail: true}
	relay := NewOutboxRelay(e.repos.Outbox, pub, 10, time.Hour)
	n, err := relay.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.EqualValues(t, 1, e.countRows(t, &model.Outbox{}, "status = ?", model.OutboxPending))

	pub.fail = false
	n, err = relay.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOutboxRelay_CancelMidBatchKeepsUnsentEvents(t *testing.T) {
	e := newEnv(t, withPublish())
	ctx := context.Background()
	star := e.signup(t, "star")
	for _, name := range []string{"f1", "f2", "f3"} {
		f := e.signup(t, name)
		_, err := e.graph.FollowOrUnfollow(ctx, f.ID, star.ID)
		require.NoError(t, err)
	}

	// 第一条发出后关停
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	pub := &fakePublisher{after: cancel}
	n, err := NewOutboxRelay(e.repos.Outbox, pub, 10, time.Hour).ProcessOnce(runCtx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, n)
	assert.EqualValues(t, 1, e.countRows(t, &model.Outbox{}, "status = ?", model.OutboxDone))
	assert.EqualValues(t, 2, e.countRows(t, &model.Outbox{}, "status = ?", model.OutboxPending))
	assert.Zero(t, e.countRows(t, &model.Outbox{}, "status = ?", model.OutboxProcessing))

	restarted := &fakePublisher{}
	n, err = NewOutboxRelay(e.repos.Outbox, restarted, 10, time.Hour).ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.EqualValues(t, 3, e.countRows(t, &model.Outbox{}, "status = ?", model.OutboxDone))
	assert.Len(t, pub.msgs, 1)
	assert.Len(t, restarted.msgs, 2)
}

func TestOutboxRelay_ReclaimsAbandonedBatch(t *testing.T) {
	e := newEnv(t, withPublish())
	ctx := context.Background()
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")
	_, err := e.graph.FollowOrUnfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// 另一个 relay 领取后崩溃
	abandoned, err := e.repos.Outbox.Claim(ctx, 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, abandoned, 1)

	pub := &fakePublisher{}
	relay := NewOutboxRelay(e.repos.Outbox, pub, 10, time.Hour)
	n, err := relay.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "lease still held")

	require.NoError(t, e.db.Model(&model.Outbox{}).Where("id = ?", abandoned[0].ID).
		Update("claimed_at", time.Now().Add(-time.Hour)).Error)
	n, err = relay.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.EqualValues(t, 1, e.countRows(t, &model.Outbox{}, "status = ?", model.OutboxDone))
}

func TestOutboxRelay_StartStop(t *testing.T) {
	e := newEnv(t, withPublish())
	ctx := context.Background()
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")
	_, err := e.graph.FollowOrUnfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	pub := &fakePublisher{}
	stop := NewOutboxRelay(e.repos.Outbox, pub, 10, 10*time.Millisecond).Start()
	require.Eventually(t, func() bool {
		pub.mu.Lock()
		defer pub.mu.Unlock()
		return len(pub.msgs) == 1
	}, 2*time.Second, 10*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, stop(stopCtx))
	require.NoError(t, stop(stopCtx), "stop is idempotent")
}
