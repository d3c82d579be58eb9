// Command cachebench compares follower-page reads with and without the redis
// user snapshot cache.
package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/socialnet/config"
	"github.com/d60-Lab/socialnet/internal/cache"
	"github.com/d60-Lab/socialnet/internal/model"
	"github.com/d60-Lab/socialnet/internal/repository"
	"github.com/d60-Lab/socialnet/pkg/database"
)

type request struct {
	userID string
	page   int
	size   int
}

type scenarioResult struct {
	durations   []time.Duration
	hits        int64
	misses      int64
	cacheKeys   int
	memoryBytes int64
}

func main() {
	ctx := context.Background()
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))

	const (
		userCount = 20000
		requests  = 9000
	)

	fmt.Println("Setting up test data...")
	// 3 个明星用户，粉丝两两重叠 50%
	stars := make([]model.User, 3)
	for i := range stars {
		id := uuid.NewString()
		stars[i] = model.User{ID: id, Username: "star_" + id[:8], FullName: "star", Email: id[:8] + "@star.local", Password: "x"}
	}
	followers := make([]model.User, userCount)
	for i := range followers {
		id := uuid.NewString()
		followers[i] = model.User{ID: id, Username: "user_" + id[:12], FullName: fmt.Sprintf("user %d", i), Email: id[:12] + "@bench.local", Password: "x"}
	}
	mustDo(db.CreateInBatches(&stars, 100).Error)
	mustDo(db.CreateInBatches(&followers, 1000).Error)

	base := time.Now()
	fans := make([]model.Fan, 0, 3*userCount/2)
	for s, star := range stars {
		offset := s * userCount / 4
		for i := 0; i < userCount/2; i++ {
			fans = append(fans, model.Fan{
				ID:        uuid.NewString(),
				UserID:    star.ID,
				FanID:     followers[(i+offset)%userCount].ID,
				CreatedAt: base.Add(-time.Duration(i) * time.Second),
			})
		}
	}
	mustDo(db.CreateInBatches(&fans, 1000).Error)
	fmt.Println("Test data ready: 3 users with overlapping followers")

	redisAddr := cfg.Redis.Addr
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		redisAddr = v
	}
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("failed to connect to redis at %s: %v", redisAddr, err))
	}

	repos := repository.NewRepositories(db)
	reqs := makeRequests(stars, requests)

	noCache := runScenario(ctx, repos, cache.NewUserCache(repos.Users, nil, 0), client, reqs, false)
	cold := runScenario(ctx, repos, cache.NewUserCache(repos.Users, client, 10*time.Minute), client, reqs, false)
	warm := runScenario(ctx, repos, cache.NewUserCache(repos.Users, client, 10*time.Minute), client, reqs, true)

	fmt.Printf("\nFollower page latency (%d req across 3 users, %d users, %s + redis)\n", requests, userCount, cfg.Database.Driver)
	for _, row := range []struct {
		name string
		res  scenarioResult
	}{
		{"No cache", noCache},
		{"Cold cache", cold},
		{"Warm cache", warm},
	} {
		fmt.Printf("%-12s avg=%v p95=%v p99=%v hits=%d misses=%d cache_keys=%d mem=%s\n",
			row.name, avg(row.res.durations), pct(row.res.durations, 0.95), pct(row.res.durations, 0.99),
			row.res.hits, row.res.misses, row.res.cacheKeys, formatBytes(row.res.memoryBytes))
	}
}

// runScenario 读取粉丝 ID 页，再经 UserCache 批量取用户快照
func runScenario(ctx context.Context, repos *repository.Repositories, users *cache.UserCache, client *redis.Client, reqs []request, warm bool) scenarioResult {
	client.FlushDB(ctx)
	call := func(r request) error {
		page, err := repos.Fans.ListFans(ctx, r.userID, (r.page-1)*r.size, r.size)
		if err != nil {
			return err
		}
		ids := make([]string, len(page))
		for i, f := range page {
			ids[i] = f.FanID
		}
		_, err = users.Load(ctx, ids)
		return err
	}

	if warm {
		for _, r := range reqs {
			mustDo(call(r))
		}
	}
	h0, m0 := users.Counters()

	out := make([]time.Duration, 0, len(reqs))
	for _, r := range reqs {
		start := time.Now()
		mustDo(call(r))
		out = append(out, time.Since(start))
	}
	h1, m1 := users.Counters()

	keys, _ := client.DBSize(ctx).Result()
	var memBytes int64
	if info, err := client.Info(ctx, "memory").Result(); err == nil {
		memBytes = parseRedisMemory(info)
	}
	return scenarioResult{
		durations:   out,
		hits:        h1 - h0,
		misses:      m1 - m0,
		cacheKeys:   int(keys),
		memoryBytes: memBytes,
	}
}

// parseRedisMemory extracts used_memory from redis INFO output.
func parseRedisMemory(info string) int64 {
	for _, line := range strings.Split(info, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "used_memory:"); ok {
			n, _ := strconv.ParseInt(v, 10, 64)
			return n
		}
	}
	return 0
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func makeRequests(stars []model.User, n int) []request {
	sizes := []int{20, 40, 60}
	out := make([]request, n)
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < n; i++ {
		page := 1
		if rnd.Float64() > 0.72 {
			// 深翻页
			page = 2 + rnd.Intn(120)
		}
		out[i] = request{userID: stars[i%len(stars)].ID, page: page, size: sizes[rnd.Intn(len(sizes))]}
	}
	return out
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
