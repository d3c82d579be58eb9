package media

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/socialnet/pkg/logger"
)

// Janitor 异步删除已不再被引用的图片。记录先删，图片后清理；
// 队列满时丢弃并记录日志，孤儿图片可接受。
type Janitor struct {
	relay   Relay
	ch      chan string
	stopCh  chan struct{}
	wg      sync.WaitGroup
	timeout time.Duration
}

func NewJanitor(relay Relay, queueSize int) *Janitor {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &Janitor{relay: relay, ch: make(chan string, queueSize), stopCh: make(chan struct{}), timeout: 30 * time.Second}
}

// Start 启动 workers；返回停止函数，停止前会排空队列。
func (j *Janitor) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	for i := 0; i < workers; i++ {
		j.wg.Add(1)
		go func() {
			defer j.wg.Done()
			for {
				select {
				case url := <-j.ch:
					j.remove(url)
				case <-j.stopCh:
					for {
						select {
						case url := <-j.ch:
							j.remove(url)
						default:
							return
						}
					}
				}
			}
		}()
	}
	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() { close(j.stopCh) })
		done := make(chan struct{})
		go func() { j.wg.Wait(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (j *Janitor) remove(url string) {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	if err := j.relay.Delete(ctx, url); err != nil {
		logger.Warn("media delete failed, object orphaned", zap.String("url", url), zap.Error(err))
	}
}

// Enqueue schedules url for deletion. Empty urls are ignored.
func (j *Janitor) Enqueue(url string) {
	if url == "" {
		return
	}
	select {
	case j.ch <- url:
	default:
		logger.Warn("media janitor queue full, drop delete", zap.String("url", url))
	}
}

// QueueLen 返回当前队列长度（采样值）。
func (j *Janitor) QueueLen() int { return len(j.ch) }
