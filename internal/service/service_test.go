package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/socialnet/internal/cache"
	"github.com/d60-Lab/socialnet/internal/media"
	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/repository"
	"github.com/d60-Lab/socialnet/internal/testutil"
)

const testSecret = "test-secret"

func TestMain(m *testing.M) {
	bcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type fakeRelay struct {
	mu      sync.Mutex
	n       int
	uploads []string
}

func (r *fakeRelay) Upload(_ context.Context, folder, payload string) (string, error) {
	if payload == "not-an-image" {
		return "", media.ErrNotImage
	}
	if payload == "huge" {
		return "", media.ErrTooLarge
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	url := fmt.Sprintf("https://media.test/%s/%d.png", folder, r.n)
	r.uploads = append(r.uploads, url)
	return url, nil
}

func (r *fakeRelay) Delete(context.Context, string) error { return nil }

type fakeCleaner struct {
	mu   sync.Mutex
	urls []string
}

func (c *fakeCleaner) Enqueue(url string) {
	if url == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urls = append(c.urls, url)
}

func (c *fakeCleaner) enqueued() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.urls...)
}

type message struct{ key, value []byte }

type fakePublisher struct {
	mu    sync.Mutex
	msgs  []message
	fail  bool
	after func() // 每次成功发布后调用
}

func (p *fakePublisher) Publish(_ context.Context, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.msgs = append(p.msgs, message{key: key, value: value})
	if p.after != nil {
		p.after()
	}
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type env struct {
	db       *gorm.DB
	repos    *repository.Repositories
	users    *cache.UserCache
	relay    *fakeRelay
	cleaner  *fakeCleaner
	notes    NotificationService
	graph    RelationshipService
	posts    PostService
	auth     AuthService
	profiles ProfileService
}

type envOption func(*envConfig)

type envConfig struct {
	publish bool
	redis   *redis.Client
}

func withPublish() envOption { return func(c *envConfig) { c.publish = true } }

func withRedis(rdb *redis.Client) envOption { return func(c *envConfig) { c.redis = rdb } }

func newEnv(t *testing.T, opts ...envOption) *env {
	t.Helper()
	var cfg envConfig
	for _, o := range opts {
		o(&cfg)
	}
	db := testutil.NewDB(t)
	repos := repository.NewRepositories(db)
	users := cache.NewUserCache(repos.Users, cfg.redis, time.Minute)
	relay := &fakeRelay{}
	cleaner := &fakeCleaner{}
	notes := NewNotificationService(repos.Notifications, repos.Outbox, users, cfg.publish)
	return &env{
		db:       db,
		repos:    repos,
		users:    users,
		relay:    relay,
		cleaner:  cleaner,
		notes:    notes,
		graph:    NewRelationshipService(db, repos, users, notes),
		posts:    NewPostService(db, repos, users, relay, cleaner, notes),
		auth:     NewAuthService(repos, users, testSecret, time.Hour),
		profiles: NewProfileService(repos, users, relay, cleaner),
	}
}

// signup registers name with a default password and returns the user view.
func (e *env) signup(t *testing.T, name string) *model.UserView {
	t.Helper()
	v, _, err := e.auth.Register(context.Background(), RegisterInput{
		Username: name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return v
}

func (e *env) profile(t *testing.T, name string) *model.UserView {
	t.Helper()
	v, err := e.profiles.GetProfile(context.Background(), name)
	require.NoError(t, err)
	return v
}

func (e *env) countRows(t *testing.T, m any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Where(query, args...).Count(&n).Error)
	return n
}
