// Command feedbench seeds a local database through the services and reports
// follow-toggle and feed-read latency percentiles.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/socialnet/config"
	"github.com/d60-Lab/socialnet/internal/cache"
	"github.com/d60-Lab/socialnet/internal/media"
	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/repository"
	"github.com/d60-Lab/socialnet/internal/service"
	"github.com/d60-Lab/socialnet/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func report(name string, total time.Duration, ds []time.Duration) {
	if len(ds) == 0 {
		return
	}
	fmt.Printf("%-22s n=%-6d total=%-12v p50=%-10v p95=%-10v p99=%v\n",
		name, len(ds), total, pct(ds, 0.50), pct(ds, 0.95), pct(ds, 0.99))
}

// timed runs fn for every i in [0,n) on conc workers and returns per-call latencies.
func timed(n, conc int, fn func(i int) error) (time.Duration, []time.Duration) {
	if conc > n {
		conc = n
	}
	feed := make(chan int, n)
	for i := 0; i < n; i++ {
		feed <- i
	}
	close(feed)

	var mu sync.Mutex
	out := make([]time.Duration, 0, n)
	var wg sync.WaitGroup
	start := time.Now()
	for w := 0; w < conc; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range feed {
				st := time.Now()
				if err := fn(i); err != nil {
					panic(err)
				}
				d := time.Since(st)
				mu.Lock()
				out = append(out, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return time.Since(start), out
}

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	ctx := context.Background()

	// 用户数、每人关注数、帖子数、feed 读取次数、并发
	N := envInt("N", 2000)
	FOLLOWS := envInt("FOLLOWS", 20)
	POSTS := envInt("POSTS", 2000)
	READS := envInt("READS", 200)
	CONC := envInt("CONC", 1)
	if FOLLOWS >= N {
		FOLLOWS = N - 1
	}

	repos := repository.NewRepositories(db)
	users := cache.NewUserCache(repos.Users, nil, time.Minute)
	janitor := media.NewJanitor(media.Disabled(), 1)
	notes := service.NewNotificationService(repos.Notifications, repos.Outbox, users, false)
	graph := service.NewRelationshipService(db, repos, users, notes)
	posts := service.NewPostService(db, repos, users, media.Disabled(), janitor, notes)

	// 用户直接批量写库；bcrypt 与这里要测的路径无关
	seeded := make([]model.User, N)
	for i := range seeded {
		id := uuid.New().String()
		seeded[i] = model.User{ID: id, Username: "u" + id[:12], FullName: "bench", Email: id[:12] + "@bench.local", Password: "x"}
	}
	must(0, db.CreateInBatches(&seeded, 1000).Error)

	followOps := N * FOLLOWS
	followDur, followLat := timed(followOps, CONC, func(i int) error {
		from := seeded[i/FOLLOWS]
		to := seeded[(i/FOLLOWS+1+i%FOLLOWS)%N]
		_, err := graph.FollowOrUnfollow(ctx, from.ID, to.ID)
		return err
	})

	postDur, postLat := timed(POSTS, CONC, func(i int) error {
		_, err := posts.Create(ctx, seeded[i%N].ID, fmt.Sprintf("bench post %d", i), "")
		return err
	})

	feedDur, feedLat := timed(READS, CONC, func(i int) error {
		_, err := posts.ListFollowingFeed(ctx, seeded[i%N].ID)
		return err
	})

	suggestDur, suggestLat := timed(READS, CONC, func(i int) error {
		_, err := graph.Suggest(ctx, seeded[i%N].ID, 4)
		return err
	})

	// 取消关注，验证往返后边表为空
	unfollowDur, unfollowLat := timed(followOps, CONC, func(i int) error {
		from := seeded[i/FOLLOWS]
		to := seeded[(i/FOLLOWS+1+i%FOLLOWS)%N]
		_, err := graph.FollowOrUnfollow(ctx, from.ID, to.ID)
		return err
	})
	var follows, fans int64
	must(0, db.Model(&model.Follow{}).Count(&follows).Error)
	must(0, db.Model(&model.Fan{}).Count(&fans).Error)

	fmt.Printf("N=%d FOLLOWS=%d POSTS=%d READS=%d CONC=%d driver=%s\n", N, FOLLOWS, POSTS, READS, CONC, cfg.Database.Driver)
	report("follow toggle", followDur, followLat)
	report("create post", postDur, postLat)
	report("following feed read", feedDur, feedLat)
	report("suggest", suggestDur, suggestLat)
	report("unfollow toggle", unfollowDur, unfollowLat)
	fmt.Printf("edges after round trip: follows=%d fans=%d\n", follows, fans)
}
